package domain

import "fmt"

// MatchMode selects how free-text input is compared with a question's answers.
type MatchMode string

// Supported match modes
const (
	MatchModeExact      MatchMode = "exact"
	MatchModeNormalized MatchMode = "normalized"
	MatchModeRegex      MatchMode = "regex"
)

// MatchRule is the tagged record attached to a question at authoring time.
// It is immutable once stored and is the on-the-wire and on-disk schema for
// rules: optional fields are pointers so that an absent flag and an explicit
// false survive a round trip unchanged.
type MatchRule struct {
	Mode                MatchMode `json:"mode"                           yaml:"mode"`
	CaseSensitive       *bool     `json:"case_sensitive,omitempty"       yaml:"case_sensitive,omitempty"`
	NormalizeWhitespace *bool     `json:"normalize_whitespace,omitempty" yaml:"normalize_whitespace,omitempty"`
	Pattern             string    `json:"pattern,omitempty"              yaml:"pattern,omitempty"`
}

// ExactRule returns an exact-mode rule.
func ExactRule(caseSensitive bool) MatchRule {
	return MatchRule{Mode: MatchModeExact, CaseSensitive: Bool(caseSensitive)}
}

// NormalizedRule returns a normalized-mode rule.
func NormalizedRule(caseSensitive, normalizeWhitespace bool) MatchRule {
	return MatchRule{
		Mode:                MatchModeNormalized,
		CaseSensitive:       Bool(caseSensitive),
		NormalizeWhitespace: Bool(normalizeWhitespace),
	}
}

// RegexRule returns a regex-mode rule.
func RegexRule(pattern string, caseSensitive bool) MatchRule {
	return MatchRule{Mode: MatchModeRegex, Pattern: pattern, CaseSensitive: Bool(caseSensitive)}
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

// IsCaseSensitive reports whether comparisons keep case. Defaults to false.
func (r MatchRule) IsCaseSensitive() bool {
	return r.CaseSensitive != nil && *r.CaseSensitive
}

// NormalizesWhitespace reports whether normalized mode trims and collapses
// whitespace. Defaults to true.
func (r MatchRule) NormalizesWhitespace() bool {
	return r.NormalizeWhitespace == nil || *r.NormalizeWhitespace
}

// Validate checks that the rule is well formed. It does not compile regex
// patterns; see match.Check for that.
func (r MatchRule) Validate() error {
	switch r.Mode {
	case MatchModeExact, MatchModeNormalized:
		return nil
	case MatchModeRegex:
		if r.Pattern == "" {
			return fmt.Errorf("%w: regex rule requires a pattern", ErrInvalidMatchRule)
		}
		return nil
	case "":
		return fmt.Errorf("%w: mode is required", ErrInvalidMatchRule)
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidMatchRule, r.Mode)
	}
}
