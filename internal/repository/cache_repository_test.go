package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
)

func TestCacheRepositoryWithoutRedis(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "dashboard:summary", &dest), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Set(ctx, "dashboard:summary", map[string]int{"users": 1}, time.Minute))
	require.NoError(t, repo.DeleteByPattern(ctx, "dashboard:*"))
}

func TestPresenceRepositoryWithoutRedis(t *testing.T) {
	repo := NewPresenceRepository(nil, "")
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "u1"))
	require.NoError(t, repo.Remove(ctx, "u1"))
	require.NoError(t, repo.Reset(ctx))
	members, err := repo.Members(ctx)
	require.NoError(t, err)
	assert.Empty(t, members)
}
