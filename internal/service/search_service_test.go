package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdotaker608/golden-pens-api/internal/domain"
	domainerrors "github.com/abdotaker608/golden-pens-api/internal/errors"
	"github.com/abdotaker608/golden-pens-api/internal/id"
)

func titles(page *StoryPage) []string {
	out := make([]string, len(page.Results))
	for i, r := range page.Results {
		out[i] = r.Title
	}
	return out
}

func TestFindFuzzyMatchesTitle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := seedUser(t, env, "author@example.com")

	now := time.Now()
	seedStory(t, env, author.ID, "The Golden Compass", now)
	seedStory(t, env, author.ID, "A Winter Night", now)
	seedStory(t, env, author.ID, "Golden Years", now)

	page, err := env.search.Find(ctx, FindRequest{Search: "golden", Sort: SortRelevance})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"The Golden Compass", "Golden Years"}, titles(page))
}

func TestFindMatchesAuthorName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// seedUser names everyone "Amina Writer".
	author := seedUser(t, env, "author@example.com")
	seedStory(t, env, author.ID, "Unrelated Title", time.Now())

	page, err := env.search.Find(ctx, FindRequest{Search: "amina writer", Sort: SortRelevance})
	require.NoError(t, err)
	assert.Equal(t, []string{"Unrelated Title"}, titles(page))
}

func TestFindMatchesTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := seedUser(t, env, "author@example.com")

	story := &domain.Story{
		ID:        id.MustGenerate("story"),
		AuthorID:  author.ID,
		Title:     "Quiet Rivers",
		Tags:      []string{"adventure", "mystery"},
		Category:  domain.CategoryNovel,
		CreatedAt: time.Now(),
	}
	require.NoError(t, env.store.CreateStory(ctx, story))
	seedStory(t, env, author.ID, "Plain Bread", time.Now())

	page, err := env.search.Find(ctx, FindRequest{SubCategory: "mystery", Sort: SortRelevance})
	require.NoError(t, err)
	assert.Equal(t, []string{"Quiet Rivers"}, titles(page))
}

func TestFindRelevanceOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := seedUser(t, env, "author@example.com")

	now := time.Now()
	seedStory(t, env, author.ID, "Golden Pens and Other Tools", now)
	seedStory(t, env, author.ID, "Golden Pens", now)

	page, err := env.search.Find(ctx, FindRequest{Search: "golden pens", Sort: SortRelevance})
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "Golden Pens", page.Results[0].Title, "closer title wins")
}

func TestFindCategoryFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := seedUser(t, env, "author@example.com")

	now := time.Now()
	seedStory(t, env, author.ID, "A Novel", now)
	poem := &domain.Story{
		ID:        id.MustGenerate("story"),
		AuthorID:  author.ID,
		Title:     "A Poem",
		Tags:      []string{},
		Category:  domain.CategoryPoetry,
		CreatedAt: now,
	}
	require.NoError(t, env.store.CreateStory(ctx, poem))

	page, err := env.search.Find(ctx, FindRequest{Category: string(domain.CategoryPoetry)})
	require.NoError(t, err)
	assert.Equal(t, []string{"A Poem"}, titles(page))
}

func TestFindMostViewed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := seedUser(t, env, "author@example.com")

	now := time.Now()
	quiet := seedStory(t, env, author.ID, "Quiet", now.Add(-time.Hour))
	popular := seedStory(t, env, author.ID, "Popular", now.Add(-2*time.Hour))

	chapter := seedChapter(t, env, popular.ID)
	require.NoError(t, env.store.AddView(ctx, chapter.ID, "10.0.0.1"))
	require.NoError(t, env.store.AddView(ctx, chapter.ID, "10.0.0.2"))
	quietChapter := seedChapter(t, env, quiet.ID)
	require.NoError(t, env.store.AddView(ctx, quietChapter.ID, "10.0.0.1"))

	page, err := env.search.Find(ctx, FindRequest{Sort: SortMostViewed})
	require.NoError(t, err)
	assert.Equal(t, []string{"Popular", "Quiet"}, titles(page))
}

func TestFindPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := seedUser(t, env, "author@example.com")

	base := time.Now().Add(-time.Hour)
	for i := range 11 {
		seedStory(t, env, author.ID, fmt.Sprintf("Story %02d", i), base.Add(time.Duration(i)*time.Minute))
	}

	first, err := env.search.Find(ctx, FindRequest{Page: 1})
	require.NoError(t, err)
	assert.Len(t, first.Results, 9)
	assert.Equal(t, 2, first.Total, "total counts pages")
	assert.Equal(t, "Story 10", first.Results[0].Title, "newest first by default")

	second, err := env.search.Find(ctx, FindRequest{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second.Results, 2)

	empty, err := env.search.Find(ctx, FindRequest{Page: 5})
	require.NoError(t, err)
	assert.Empty(t, empty.Results)
	assert.Equal(t, 2, empty.Total)
}

func TestFindRejectsUnknownSort(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.search.Find(context.Background(), FindRequest{Sort: "author__pk"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestFindFieldSort(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := seedUser(t, env, "author@example.com")

	now := time.Now()
	seedStory(t, env, author.ID, "Bravo", now.Add(-time.Minute))
	seedStory(t, env, author.ID, "Alpha", now)

	page, err := env.search.Find(ctx, FindRequest{Sort: "title"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Bravo"}, titles(page))

	page, err = env.search.Find(ctx, FindRequest{Sort: "-title"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bravo", "Alpha"}, titles(page))

	page, err = env.search.Find(ctx, FindRequest{Sort: "created"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bravo", "Alpha"}, titles(page), "oldest first when ascending")
}

func TestFindEmptyResultStillOnePage(t *testing.T) {
	env := newTestEnv(t)

	page, err := env.search.Find(context.Background(), FindRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Results)
	assert.Equal(t, 1, page.Total)
}

func TestLatestFeedCapped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := seedUser(t, env, "author@example.com")

	base := time.Now().Add(-time.Hour)
	for i := range 12 {
		seedStory(t, env, author.ID, fmt.Sprintf("Story %02d", i), base.Add(time.Duration(i)*time.Minute))
	}

	feed, err := env.search.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 10)
	assert.Equal(t, "Story 11", feed[0].Title)
}

func TestTrendingFeedWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := seedUser(t, env, "author@example.com")

	old := seedStory(t, env, author.ID, "Old Hit", time.Now().Add(-30*24*time.Hour))
	oldChapter := seedChapter(t, env, old.ID)
	for i := range 5 {
		require.NoError(t, env.store.AddView(ctx, oldChapter.ID, fmt.Sprintf("10.0.0.%d", i+1)))
	}

	fresh := seedStory(t, env, author.ID, "Fresh", time.Now().Add(-time.Hour))
	freshChapter := seedChapter(t, env, fresh.ID)
	require.NoError(t, env.store.AddView(ctx, freshChapter.ID, "10.0.1.1"))

	feed, err := env.search.Trending(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1, "stories outside the window never trend")
	assert.Equal(t, "Fresh", feed[0].Title)
}

func TestPersonalAndFollowingFeeds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := seedUser(t, env, "author@example.com")
	other := seedUser(t, env, "other@example.com")
	reader := seedUser(t, env, "reader@example.com")

	seedStory(t, env, author.ID, "By Author", time.Now())
	seedStory(t, env, other.ID, "By Other", time.Now())

	personal, err := env.search.Personal(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, personal, 1)
	assert.Equal(t, "By Author", personal[0].Title)

	// Nothing followed yet.
	following, err := env.search.Following(ctx, reader.ID)
	require.NoError(t, err)
	assert.Empty(t, following)

	_, err = env.store.ToggleFollow(ctx, author.ID, reader.ID)
	require.NoError(t, err)

	following, err = env.search.Following(ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "By Author", following[0].Title)
}
