package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		"Alice@Example.com":  "a***e@example.com",
		"ab@example.com":     "a***@example.com",
		"x@example.com":      "x***@example.com",
		"not-an-email":       "***",
		"@example.com":       "***",
		"a@b@example.com":    "***",
		"  bob@school.edu  ": "b***b@school.edu",
	}
	for input, expected := range cases {
		require.Equal(t, expected, maskEmail(input), input)
	}
}

func TestSanitizeTextStripsMarkup(t *testing.T) {
	require.Equal(t, "hello", sanitizeText("  <b>hello</b> "))
	require.Equal(t, "", sanitizeText("<script>alert(1)</script>"))
}

func TestSanitizeTextKeepsPlainPunctuation(t *testing.T) {
	cases := map[string]string{
		"Prove that x < y && y > z, don't skip steps": "Prove that x < y && y > z, don't skip steps",
		`Say "hi" & wave`:                              `Say "hi" & wave`,
		"<i>Tom & Jerry</i>":                           "Tom & Jerry",
	}
	for input, expected := range cases {
		require.Equal(t, expected, sanitizeText(input), input)
	}
}
