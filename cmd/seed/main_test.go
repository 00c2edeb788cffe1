package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogsphere/internal/app"
	"blogsphere/internal/logging"
	"blogsphere/internal/model"
	"blogsphere/internal/repository"
	"blogsphere/internal/repository/memory"
)

func TestSeed_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	repos := app.MemoryRepositories(memory.New())
	log := logging.NewDiscard()
	users := []seedUser{
		{"Admin", "admin@example.com", model.RoleAdmin},
		{"Writer", "writer@example.com", model.RoleUser},
	}
	posts := []SeedPost{
		{"First Post", "hello", "tech", "published", 0},
		{"Second Post", "draft body", "health", "draft", 3},
	}

	created, skipped, err := seed(ctx, repos, log, users, "password123", posts)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Equal(t, 0, skipped)

	created, skipped, err = seed(ctx, repos, log, users, "password123", posts)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, 2, skipped)

	count, err := repos.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	published, err := repos.Posts.List(ctx, repository.PostQuery{Status: model.PostStatusPublished})
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "first-post", published[0].Slug)
	assert.Equal(t, sampleImage, published[0].Image)

	admin, err := repos.Users.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, admin.ID, published[0].AuthorID)
}
