package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/libvisit-api/pkg/errors"
)

func TestCacheRepositoryWithoutClientIsAlwaysMiss(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "k", &dest), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))
	require.NoError(t, repo.DeleteByPattern(ctx, "k*"))
}
