package env_vars

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/hotswap/internal/registry"
	"github.com/vk/hotswap/internal/sandbox"
)

func TestEnvVars(t *testing.T) {
	t.Parallel()

	// Arrange
	m := &Module{Lookup: func(key string) (string, bool) {
		if key == "HOME" {
			return "/home/test", true
		}
		return "", false
	}}
	r := registry.New()
	ctx := context.Background()
	require.NoError(t, m.Register(ctx, r))

	// Act
	home, err := r.Invoke(ctx, "env_vars", sandbox.Bindings{"name": cty.StringVal("HOME")})
	require.NoError(t, err)
	unset, err := r.Invoke(ctx, "env_vars", sandbox.Bindings{"name": cty.StringVal("NOPE")})
	require.NoError(t, err)
	_, faultErr := r.Invoke(ctx, "env_vars", nil)

	// Assert
	assert.Equal(t, "/home/test", home.AsString())
	assert.True(t, sandbox.IsEmpty(unset))
	var ee *registry.ExecutionError
	require.True(t, errors.As(faultErr, &ee))
}
