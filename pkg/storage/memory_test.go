package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAdapter_GetMissingKey(t *testing.T) {
	s := NewMemoryAdapter()
	_, found, err := s.Get(context.Background(), "acip.kernel.state.agent_1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryAdapter_SetThenGet(t *testing.T) {
	s := NewMemoryAdapter()
	require.NoError(t, s.Set(context.Background(), "k", "v1"))

	v, found, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v1", v)

	require.NoError(t, s.Set(context.Background(), "k", "v2"))
	v, found, err = s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v2", v)
}
