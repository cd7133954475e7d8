package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-rings/internal/domain"
	"github.com/phrazzld/scry-rings/internal/domain/match"
)

const validFile = `
stacks:
  - id: capitals
    title: European capitals
    questions:
      - id: capitals-fr
        prompt: What is the capital of France?
        answers: [Paris]
        rule: {mode: normalized}
      - id: capitals-de
        answers: [Berlin]
        rule: {mode: exact, case_sensitive: false}
  - id: spelling
    questions:
      - id: spelling-color
        answers: [colour]
        rule: {mode: regex, pattern: "colou?r"}
`

func TestParseValidFile(t *testing.T) {
	stacks, err := Parse(strings.NewReader(validFile))
	require.NoError(t, err)
	require.Len(t, stacks, 2)

	capitals := stacks[0]
	assert.Equal(t, "capitals", capitals.ID)
	assert.Equal(t, "European capitals", capitals.Title)
	require.Len(t, capitals.Questions, 2)

	fr := capitals.Questions[0]
	assert.Equal(t, "capitals", fr.StackID)
	assert.Equal(t, "What is the capital of France?", fr.Prompt)
	assert.Equal(t, domain.MatchModeNormalized, fr.Rule.Mode)
	assert.Nil(t, fr.Rule.CaseSensitive, "absent flag stays absent")
	assert.Nil(t, fr.Rule.NormalizeWhitespace)

	de := capitals.Questions[1]
	require.NotNil(t, de.Rule.CaseSensitive, "explicit false is kept")
	assert.False(t, *de.Rule.CaseSensitive)

	color := stacks[1].Questions[0]
	assert.Equal(t, "colou?r", color.Rule.Pattern)
}

func TestParseRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{
			name:    "empty file",
			content: "",
		},
		{
			name:    "no stacks",
			content: "stacks: []\n",
		},
		{
			name: "unknown key",
			content: `
stacks:
  - id: s
    questions:
      - id: q
        answers: [a]
        rule: {mode: exact, case_sensitve: true}
`,
		},
		{
			name: "missing answers",
			content: `
stacks:
  - id: s
    questions:
      - id: q
        answers: []
        rule: {mode: exact}
`,
		},
		{
			name: "blank answer",
			content: `
stacks:
  - id: s
    questions:
      - id: q
        answers: [""]
        rule: {mode: exact}
`,
		},
		{
			name: "unknown mode",
			content: `
stacks:
  - id: s
    questions:
      - id: q
        answers: [a]
        rule: {mode: fuzzy}
`,
			target: domain.ErrInvalidMatchRule,
		},
		{
			name: "uncompilable regex",
			content: `
stacks:
  - id: s
    questions:
      - id: q
        answers: [a]
        rule: {mode: regex, pattern: "(unclosed"}
`,
			target: match.ErrInvalidRule,
		},
		{
			name: "question id reused across stacks",
			content: `
stacks:
  - id: s1
    questions:
      - id: q
        answers: [a]
        rule: {mode: exact}
  - id: s2
    questions:
      - id: q
        answers: [b]
        rule: {mode: exact}
`,
		},
		{
			name: "duplicate stack",
			content: `
stacks:
  - id: s
    questions:
      - id: q1
        answers: [a]
        rule: {mode: exact}
  - id: s
    questions:
      - id: q2
        answers: [b]
        rule: {mode: exact}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stacks, err := Parse(strings.NewReader(tt.content))
			require.Error(t, err)
			assert.Nil(t, stacks)
			assert.ErrorIs(t, err, ErrInvalidFile)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stacks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validFile), 0o600))

	stacks, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, stacks, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
