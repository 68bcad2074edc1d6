package cache

import (
	"context"
	"os"
	"testing"

	"bagrental/model"

	"github.com/stretchr/testify/require"
)

func TestTierOrAll(t *testing.T) {
	require.Equal(t, "all", tierOrAll(""))
	require.Equal(t, "prive", tierOrAll(model.TierPrive))
	require.Equal(t, "all", statusOrAll(""))
	require.Equal(t, "rented", statusOrAll(model.BagRented))
}

func TestNoop(t *testing.T) {
	c := NewNoop()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "", "", []model.Bag{{Name: "x"}}))
	_, hit, err := c.Get(ctx, "", "")
	require.NoError(t, err)
	require.False(t, hit)
	require.NoError(t, c.Invalidate(ctx))
}

func TestRedisCatalog_Invalidate(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	rdb, err := Connect(ctx, url)
	if err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	defer rdb.Close()

	c := NewRedis(rdb, 0)
	require.NoError(t, c.Set(ctx, model.TierSignature, "", []model.Bag{{Name: "Kelly"}}))

	bags, hit, err := c.Get(ctx, model.TierSignature, "")
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, bags, 1)

	require.NoError(t, c.Invalidate(ctx))
	_, hit, err = c.Get(ctx, model.TierSignature, "")
	require.NoError(t, err)
	require.False(t, hit)
}
