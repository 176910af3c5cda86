package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticResolver(t *testing.T) {
	r := NewStaticResolver(map[string]string{"0xABC": "alice.base"})

	name, err := r.Resolve(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, "alice.base", name)

	name, err = r.Resolve(context.Background(), "0xdef")
	require.NoError(t, err)
	assert.Empty(t, name)
}
