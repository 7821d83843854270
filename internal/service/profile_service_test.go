package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/abdotaker608/golden-pens-api/internal/errors"
)

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := seedUser(t, env, "author@example.com")
	viewer := seedUser(t, env, "viewer@example.com")
	seedStory(t, env, author.ID, "A Story", time.Now())

	profile, err := env.profiles.GetProfile(ctx, author.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, profile.User.ID)
	assert.Equal(t, 1, profile.Author.StoryCount)
	assert.False(t, profile.InFollowers)

	_, err = env.store.ToggleFollow(ctx, author.ID, viewer.ID)
	require.NoError(t, err)

	profile, err = env.profiles.GetProfile(ctx, author.ID, viewer.ID)
	require.NoError(t, err)
	assert.True(t, profile.InFollowers)
	assert.Equal(t, 1, profile.Author.FollowerCount)

	_, err = env.profiles.GetProfile(ctx, "user-missing", "")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUpdateAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env, "author@example.com")

	req := UpdateAuthorRequest{Nickname: "inkwell"}
	req.Social.Facebook = "https://facebook.com/inkwell"
	req.Social.Twitter = "twitter.com/inkwell"

	author, err := env.profiles.UpdateAuthor(ctx, user.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "inkwell", author.Nickname)
	assert.Equal(t, "https://facebook.com/inkwell", author.Social.Facebook)
}

func TestUpdateAuthorNicknameTaken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := seedUser(t, env, "first@example.com")
	second := seedUser(t, env, "second@example.com")

	_, err := env.profiles.UpdateAuthor(ctx, first.ID, UpdateAuthorRequest{Nickname: "inkwell"})
	require.NoError(t, err)

	_, err = env.profiles.UpdateAuthor(ctx, second.ID, UpdateAuthorRequest{Nickname: "inkwell"})
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "nameExists", domainErr.Message)
}

func TestUpdateAuthorRejectsBadProfileURL(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "author@example.com")

	req := UpdateAuthorRequest{}
	req.Social.Instagram = "https://example.com/not-instagram"

	_, err := env.profiles.UpdateAuthor(context.Background(), user.ID, req)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestUpdateMedia(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "author@example.com")
	user.Cover = "https://cdn.test/old-cover.jpg"

	updated, err := env.profiles.UpdateMedia(context.Background(), user, UpdateMediaRequest{
		Picture: "https://cdn.test/me.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/me.jpg", updated.Picture)
	assert.Equal(t, "https://cdn.test/old-cover.jpg", updated.Cover, "unset fields stay put")
}

func TestToggleFollow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := seedUser(t, env, "author@example.com")
	reader := seedUser(t, env, "reader@example.com")

	// Following yourself is a no-op, not an error.
	result, err := env.profiles.ToggleFollow(ctx, author.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)

	result, err = env.profiles.ToggleFollow(ctx, author.ID, reader.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Following)

	result, err = env.profiles.ToggleFollow(ctx, author.ID, reader.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.Following, "second toggle unfollows")

	_, err = env.profiles.ToggleFollow(ctx, "user-missing", reader.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestListAuthorsByPopularity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	popular := seedUser(t, env, "popular@example.com")
	quiet := seedUser(t, env, "quiet@example.com")
	reader := seedUser(t, env, "reader@example.com")

	_, err := env.store.ToggleFollow(ctx, popular.ID, reader.ID)
	require.NoError(t, err)
	_, err = env.store.ToggleFollow(ctx, popular.ID, quiet.ID)
	require.NoError(t, err)

	page, err := env.profiles.ListAuthors(ctx, ListAuthorsRequest{ViewerID: reader.ID})
	require.NoError(t, err)
	require.Len(t, page.Results, 3)
	assert.Equal(t, popular.ID, page.Results[0].UserID, "most followed first")
	assert.True(t, page.Results[0].InFollowers)
	assert.Equal(t, 1, page.Total)
}

func TestListAuthorsSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	published := seedUser(t, env, "published@example.com")
	unpublished := seedUser(t, env, "unpublished@example.com")
	seedStory(t, env, published.ID, "A Story", time.Now())

	_, err := env.profiles.UpdateAuthor(ctx, published.ID, UpdateAuthorRequest{Nickname: "inkwell"})
	require.NoError(t, err)
	_, err = env.profiles.UpdateAuthor(ctx, unpublished.ID, UpdateAuthorRequest{Nickname: "inkworthy"})
	require.NoError(t, err)

	page, err := env.profiles.ListAuthors(ctx, ListAuthorsRequest{Search: "inkwell"})
	require.NoError(t, err)
	require.Len(t, page.Results, 1, "authors without stories never match a search")
	assert.Equal(t, published.ID, page.Results[0].UserID)
}

func TestListAuthorsPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := range 22 {
		seedUser(t, env, fmt.Sprintf("writer%02d@example.com", i))
	}

	first, err := env.profiles.ListAuthors(ctx, ListAuthorsRequest{Page: 1})
	require.NoError(t, err)
	assert.Len(t, first.Results, 20)
	assert.Equal(t, 2, first.Total)

	second, err := env.profiles.ListAuthors(ctx, ListAuthorsRequest{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second.Results, 2)
}
