package text

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

func TestText(t *testing.T) {
	t.Parallel()

	r := registry.New()
	ctx := context.Background()
	require.NoError(t, new(Module).Register(ctx, r))

	testCases := []struct {
		capability string
		args       sandbox.Bindings
		want       string
	}{
		{"echo", sandbox.Bindings{"message": cty.StringVal("hi there")}, "hi there"},
		{"echo", sandbox.Bindings{"message": cty.NumberIntVal(42)}, "42"},
		{"shout", sandbox.Bindings{"message": cty.StringVal("hi there")}, "HI THERE!"},
	}
	for _, tc := range testCases {
		t.Run(tc.capability+"/"+tc.want, func(t *testing.T) {
			got, err := r.Invoke(ctx, tc.capability, tc.args)

			require.NoError(t, err)
			assert.Equal(t, tc.want, got.AsString())
		})
	}
}

func TestText_MissingMessageFaults(t *testing.T) {
	t.Parallel()

	r := registry.New()
	ctx := context.Background()
	require.NoError(t, new(Module).Register(ctx, r))

	_, err := r.Invoke(ctx, "shout", sandbox.Bindings{"message": cty.ListValEmpty(cty.String)})

	var ee *registry.ExecutionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "shout", ee.Capability)
}
