package cache

import (
	"context"
	"testing"

	"example.com/outcry/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledCache(t *testing.T) {
	c, err := NewRedisCache(config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	ctx := context.Background()
	var out []string
	assert.ErrorIs(t, c.Get(ctx, ProductCatalogKey, &out), ErrDisabled)
	assert.ErrorIs(t, c.Set(ctx, ProductCatalogKey, []string{"a"}, 0), ErrDisabled)
	assert.ErrorIs(t, c.Delete(ctx, ProductCatalogKey), ErrDisabled)
	assert.NoError(t, c.Close())
}

func TestProductCacheKey(t *testing.T) {
	assert.Equal(t, "catalog:product:12", ProductCacheKey(12))
}
