// Package match decides whether submitted free text satisfies a question's
// match rule. Evaluation is pure: the same input, answers and rule always
// produce the same result, independent of locale, time or randomness.
package match

import (
	"regexp"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/phrazzld/scry-rings/internal/domain"
)

// Evaluator judges answers against match rules. The zero value is ready to
// use and is safe for concurrent use; it memoizes compiled regex patterns,
// which never changes a result.
type Evaluator struct {
	patterns sync.Map // patternKey -> *regexp.Regexp
}

type patternKey struct {
	pattern       string
	caseSensitive bool
}

// NewEvaluator creates an Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

var defaultEvaluator = NewEvaluator()

// Evaluate judges input with a process-wide Evaluator.
func Evaluate(input string, validAnswers []string, rule domain.MatchRule) (bool, error) {
	return defaultEvaluator.Evaluate(input, validAnswers, rule)
}

// Check reports whether rule is usable: structurally valid and, for regex
// rules, compilable. Stack files are checked with it at load time so that a
// bad pattern is caught as a configuration error before any submission.
func Check(rule domain.MatchRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	if rule.Mode == domain.MatchModeRegex {
		_, err := defaultEvaluator.compile(rule.Pattern, rule.IsCaseSensitive())
		return err
	}
	return nil
}

// Evaluate reports whether input satisfies rule.
//
//   - exact: input equals any valid answer, case-folded unless case_sensitive.
//   - normalized: like exact, after trimming and collapsing whitespace on both
//     sides (unless normalize_whitespace is false).
//   - regex: the pattern must match the whole input; valid answers are ignored.
//
// A malformed rule yields a domain.ErrInvalidMatchRule error and an
// uncompilable pattern yields an *InvalidRuleError.
func (e *Evaluator) Evaluate(input string, validAnswers []string, rule domain.MatchRule) (bool, error) {
	if err := rule.Validate(); err != nil {
		return false, err
	}

	switch rule.Mode {
	case domain.MatchModeRegex:
		re, err := e.compile(rule.Pattern, rule.IsCaseSensitive())
		if err != nil {
			return false, err
		}
		return re.MatchString(input), nil

	case domain.MatchModeNormalized:
		norm := func(s string) string {
			if rule.NormalizesWhitespace() {
				s = collapseWhitespace(s)
			}
			if !rule.IsCaseSensitive() {
				s = fold(s)
			}
			return s
		}
		return anyEqual(norm(input), validAnswers, norm), nil

	default: // exact
		norm := func(s string) string {
			if !rule.IsCaseSensitive() {
				return fold(s)
			}
			return s
		}
		return anyEqual(norm(input), validAnswers, norm), nil
	}
}

func anyEqual(want string, candidates []string, norm func(string) string) bool {
	for _, c := range candidates {
		if norm(c) == want {
			return true
		}
	}
	return false
}

// compile anchors the pattern so it has to match the entire input.
func (e *Evaluator) compile(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	key := patternKey{pattern: pattern, caseSensitive: caseSensitive}
	if re, ok := e.patterns.Load(key); ok {
		return re.(*regexp.Regexp), nil
	}

	expr := `^(?:` + pattern + `)$`
	if !caseSensitive {
		expr = `(?i)` + expr
	}
	// Compile the bare pattern first so the reported error refers to what the
	// author wrote rather than the anchored wrapper.
	if _, err := regexp.Compile(pattern); err != nil {
		return nil, &InvalidRuleError{Pattern: pattern, Err: err}
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &InvalidRuleError{Pattern: pattern, Err: err}
	}

	actual, _ := e.patterns.LoadOrStore(key, re)
	return actual.(*regexp.Regexp), nil
}

// fold applies Unicode simple case folding. cases.Caser is stateful, so a
// fresh one is used per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
