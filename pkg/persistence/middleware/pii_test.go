package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/dependents/pkg/adapters/memory"
	"github.com/aretw0/dependents/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlying := memory.NewSource(nil)
	mw, err := middleware.NewPIIMiddleware([]string{"(?i)password", "^ssn$"})
	require.NoError(t, err)
	source := mw(underlying)
	ctx := context.Background()

	require.NoError(t, source.Set(ctx, "admin_password", "hunter2"))
	require.NoError(t, source.Set(ctx, "user", map[string]any{
		"name": "ada",
		"ssn":  "000-00-0000",
		"profile": map[string]any{
			"Password": "secret",
		},
	}))
	original := map[string]any{"ssn": "keep-me"}
	require.NoError(t, source.Set(ctx, "other", original))

	got, err := underlying.Get(ctx, "admin_password")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, got)

	got, err = underlying.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":    "ada",
		"ssn":     middleware.Mask,
		"profile": map[string]any{"Password": middleware.Mask},
	}, got)

	assert.Equal(t, "keep-me", original["ssn"], "caller's map must not be modified")
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	underlying := memory.NewSource(nil)
	pii, err := middleware.NewPIIMiddleware([]string{"token"})
	require.NoError(t, err)
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	source := middleware.Chain(underlying, pii, enc)
	ctx := context.Background()
	require.NoError(t, source.Set(ctx, "creds", map[string]any{"token": "abc", "user": "ada"}))

	got, err := source.Get(ctx, "creds")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"token": middleware.Mask, "user": "ada"}, got)
}
