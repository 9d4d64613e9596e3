// internal/utils/slug_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Product Color":        "product-color",
		"  Weight (grams)  ":   "weight-grams",
		"Already-a-slug":       "already-a-slug",
		"Mixed CASE & Symbols": "mixed-case-symbols",
		"--leading--trailing--": "leading-trailing",
		"42 Answers":           "42-answers",
	}

	for input, expected := range cases {
		assert.Equal(t, expected, Slugify(input), "input %q", input)
	}
}
