// ABOUTME: Tests for identity context propagation
// ABOUTME: Verifies WithIdentity/FromContext/MustFromContext behavior

package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_RoundTrip(t *testing.T) {
	ctx := WithIdentity(context.Background(), testIdentity)

	got := FromContext(ctx)
	require.NotNil(t, got)
	assert.Equal(t, testIdentity, got)
}

func TestFromContext_Missing(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}

func TestMustFromContext_PanicsWhenMissing(t *testing.T) {
	assert.Panics(t, func() {
		MustFromContext(context.Background())
	})
}
