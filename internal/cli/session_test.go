package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyfob-dev/keyfob/internal/config"
)

func TestOpContext(t *testing.T) {
	t.Run("zero timeout leaves the context unbounded", func(t *testing.T) {
		ctx, cancel := opContext(context.Background(), &config.Config{})
		defer cancel()
		_, hasDeadline := ctx.Deadline()
		assert.False(t, hasDeadline)
	})

	t.Run("positive timeout sets a deadline", func(t *testing.T) {
		ctx, cancel := opContext(context.Background(), &config.Config{Timeout: time.Minute})
		defer cancel()
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
	})
}

func TestResolveIdentity(t *testing.T) {
	cfg := config.DefaultConfig()

	t.Run("bare strings get the default protocol", func(t *testing.T) {
		id, err := resolveIdentity(cfg, "example.com", false, 0)
		require.NoError(t, err)
		assert.Equal(t, "ssh", id.Protocol)
		assert.Equal(t, "ssh://example.com", id.String())
	})

	t.Run("explicit protocol wins", func(t *testing.T) {
		id, err := resolveIdentity(cfg, "https://accounts.example.com", false, 0)
		require.NoError(t, err)
		assert.Equal(t, "https", id.Protocol)
	})

	t.Run("default index applies unless the flag was set", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Identity.DefaultIndex = 5

		id, err := resolveIdentity(cfg, "example.com", false, 9)
		require.NoError(t, err)
		assert.Equal(t, uint32(5), id.Index)

		id, err = resolveIdentity(cfg, "example.com", true, 9)
		require.NoError(t, err)
		assert.Equal(t, uint32(9), id.Index)
	})
}
