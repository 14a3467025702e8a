package identifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeReferenceGenerator_Next(t *testing.T) {
	gen, err := NewSnowflakeReferenceGenerator(1, "TXN")
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		ref := gen.Next()
		assert.True(t, strings.HasPrefix(ref, "TXN-"))
		assert.False(t, seen[ref], "reference %s issued twice", ref)
		seen[ref] = true
	}
}

func TestNewSnowflakeReferenceGenerator_InvalidNode(t *testing.T) {
	_, err := NewSnowflakeReferenceGenerator(-1, "TXN")
	assert.Error(t, err)
}

func TestNewSnowflakeReferenceGenerator_DefaultPrefix(t *testing.T) {
	gen, err := NewSnowflakeReferenceGenerator(2, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gen.Next(), "TXN-"))
}
