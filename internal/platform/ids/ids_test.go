package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsUniqueAndOrdered(t *testing.T) {
	first := New()
	second := New()

	assert.Len(t, first, 26)
	assert.NotEqual(t, first, second)
	assert.LessOrEqual(t, first, second)
}
