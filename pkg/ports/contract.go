package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/dependents/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunValueSourceContract runs a suite of tests to verify that a ValueSource implementation
// adheres to the defined interface contract.
func RunValueSourceContract(t *testing.T, source ValueSource) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405")

	t.Run("Set and Get", func(t *testing.T) {
		key := prefix + ".text"
		require.NoError(t, source.Set(ctx, key, "hello"), "Set should not return error")

		v, err := source.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, "hello", v)

		// Numbers may come back as float64 from JSON backed sources.
		require.NoError(t, source.Set(ctx, prefix+".count", 42))
		n, err := source.Get(ctx, prefix+".count")
		require.NoError(t, err)
		assert.EqualValues(t, 42, n)
	})

	t.Run("Overwrite", func(t *testing.T) {
		key := prefix + ".overwrite"
		require.NoError(t, source.Set(ctx, key, "first"))
		require.NoError(t, source.Set(ctx, key, "second"))

		v, err := source.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "second", v)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := source.Get(ctx, prefix+".missing")
		assert.ErrorIs(t, err, domain.ErrValueNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		key := prefix + ".deleted"
		require.NoError(t, source.Set(ctx, key, true))
		require.NoError(t, source.Delete(ctx, key), "Delete should not return error")

		_, err := source.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrValueNotFound, "Get after Delete should return ErrValueNotFound")

		assert.NoError(t, source.Delete(ctx, key), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		k1 := prefix + ".list.1"
		k2 := prefix + ".list.2"
		require.NoError(t, source.Set(ctx, k1, 1))
		require.NoError(t, source.Set(ctx, k2, 2))

		defer func() {
			_ = source.Delete(ctx, k1)
			_ = source.Delete(ctx, k2)
		}()

		keys, err := source.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}
