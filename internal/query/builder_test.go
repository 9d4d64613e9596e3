// internal/query/builder_test.go
package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereRejectsUnknownOperator(t *testing.T) {
	b := New(nil, "product", nil).Where("color", "LIKES", "red")

	_, err := b.AttributableIDs()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported operator")
}

func TestFirstErrorWins(t *testing.T) {
	b := New(nil, "product", nil).
		Where("color", "??", "red").
		Where("size", "!!", "L")

	_, err := b.AttributableIDs()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"??"`)
}

func TestOperatorNormalization(t *testing.T) {
	// Lowercase and padded operators are accepted.
	b := New(nil, "product", nil).Where("name", " like ", "%x%")
	assert.NoError(t, b.err)
}

func TestIntersect(t *testing.T) {
	a := map[uint]bool{1: true, 2: true, 3: true}
	b := map[uint]bool{2: true, 3: true, 4: true}

	out := intersect(a, b)
	assert.Equal(t, map[uint]bool{2: true, 3: true}, out)

	// Order of arguments does not matter.
	assert.Equal(t, out, intersect(b, a))

	assert.Empty(t, intersect(a, map[uint]bool{}))
}
