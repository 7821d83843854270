package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) createStory(t *testing.T, account AccountResponse, title string) StoryResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/stories", bearer(account), map[string]any{
		"title":    title,
		"tags":     []string{"adventure"},
		"category": "novel",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return decode[StoryResponse](t, resp.Body.Bytes())
}

func (ts *testServer) createChapter(t *testing.T, account AccountResponse, storyID, title string) ChapterResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/chapters", bearer(account), map[string]any{
		"story":   storyID,
		"title":   title,
		"content": "Once upon a time.",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return decode[ChapterResponse](t, resp.Body.Bytes())
}

func TestStoryLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	author := ts.registerAndVerify(t, "author@example.com")

	story := ts.createStory(t, author, "The Long Road")
	assert.Equal(t, author.ID, story.AuthorID)
	assert.Equal(t, "Amina Writer", story.PenName)

	// Anyone can read the overview.
	resp := ts.api.Get("/api/v1/stories/" + story.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	// Only the author can update.
	update := map[string]any{"title": "The Longer Road", "category": "novel"}
	resp = ts.api.Put("/api/v1/stories/"+story.ID, update)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Put("/api/v1/stories/"+story.ID, bearer(author), update)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "The Longer Road")

	// Edit payload round trip.
	resp = ts.api.Get("/api/v1/stories/"+story.ID+"/save", bearer(author))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "The Longer Road")

	resp = ts.api.Delete("/api/v1/stories/"+story.ID, bearer(author))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/stories/" + story.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestChapterReadingFlow(t *testing.T) {
	ts := setupTestServer(t)
	author := ts.registerAndVerify(t, "author@example.com")
	reader := ts.registerAndVerify(t, "reader@example.com")

	story := ts.createStory(t, author, "Serial")
	first := ts.createChapter(t, author, story.ID, "One")
	second := ts.createChapter(t, author, story.ID, "Two")
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 2, second.Number)

	// Chapter detail carries reading-order neighbors.
	resp := ts.api.Get("/api/v1/chapters/" + first.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	detail := decode[ChapterResponse](t, resp.Body.Bytes())
	assert.Equal(t, second.ID, detail.Next)
	assert.Empty(t, detail.Prev)

	// Views are deduplicated by client address and never fail.
	for range 2 {
		resp = ts.api.Get("/api/v1/chapters/"+first.ID+"/view", "X-Forwarded-For: 203.0.113.9")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "true")
	}
	resp = ts.api.Get("/api/v1/chapters/"+first.ID+"/view", "X-Forwarded-For: not-an-ip")
	require.Equal(t, http.StatusOK, resp.Code, "invalid addresses are dropped silently")

	resp = ts.api.Get("/api/v1/chapters/" + first.ID)
	detail = decode[ChapterResponse](t, resp.Body.Bytes())
	assert.Equal(t, 1, detail.Views)

	// Loving requires authentication; the viewer sees their own state.
	resp = ts.api.Post("/api/v1/chapters/" + first.ID + "/love")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/chapters/"+first.ID+"/love", bearer(reader))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"loved":true`)

	resp = ts.api.Get("/api/v1/chapters/"+first.ID, bearer(reader))
	detail = decode[ChapterResponse](t, resp.Body.Bytes())
	assert.True(t, detail.Loved)
	assert.Equal(t, 1, detail.Loves)
}

func TestReplyEndpoints(t *testing.T) {
	ts := setupTestServer(t)
	author := ts.registerAndVerify(t, "author@example.com")
	reader := ts.registerAndVerify(t, "reader@example.com")

	story := ts.createStory(t, author, "Serial")
	chapter := ts.createChapter(t, author, story.ID, "One")

	for i := range 7 {
		resp := ts.api.Post("/api/v1/replies", bearer(reader), map[string]any{
			"chapter": chapter.ID,
			"content": fmt.Sprintf("Reply %d", i),
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	resp := ts.api.Get("/api/v1/chapters/" + chapter.ID + "/replies?p=1")
	require.Equal(t, http.StatusOK, resp.Code)
	page := decode[RepliesPageResponse](t, resp.Body.Bytes())
	assert.Len(t, page.Results, 6)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, "Amina", page.Results[0].FirstName)

	// Only the commenter can edit or delete.
	target := page.Results[0]
	resp = ts.api.Put("/api/v1/replies/"+target.ID, bearer(author), map[string]any{"content": "Hijacked"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Put("/api/v1/replies/"+target.ID, bearer(reader), map[string]any{"content": "Edited"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete("/api/v1/replies/"+target.ID, bearer(reader))
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestListAndFeeds(t *testing.T) {
	ts := setupTestServer(t)
	author := ts.registerAndVerify(t, "author@example.com")
	reader := ts.registerAndVerify(t, "reader@example.com")

	ts.createStory(t, author, "The Golden Compass")
	ts.createStory(t, author, "A Winter Night")

	resp := ts.api.Get("/api/v1/stories/list?search=golden&sort=relevance")
	require.Equal(t, http.StatusOK, resp.Code)
	page := decode[StoriesPageResponse](t, resp.Body.Bytes())
	require.Len(t, page.Results, 1)
	assert.Equal(t, "The Golden Compass", page.Results[0].Title)
	assert.Equal(t, 1, page.Total)

	resp = ts.api.Get("/api/v1/stories/list?sort=author__pk")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Get("/api/v1/stories/list/latest")
	require.Equal(t, http.StatusOK, resp.Code)
	feed := decode[struct {
		Results []StoryResponse `json:"results"`
	}](t, resp.Body.Bytes())
	assert.Len(t, feed.Results, 2)

	// Nothing followed yet: no content.
	resp = ts.api.Get("/api/v1/stories/list/follow/" + reader.ID)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Post("/api/v1/follow", bearer(reader), map[string]any{"author": author.ID})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"success":true`)

	resp = ts.api.Get("/api/v1/stories/list/follow/" + reader.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	// Author's personal feed.
	resp = ts.api.Get("/api/v1/stories/list/author/" + author.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	// Self-follow is refused without error.
	resp = ts.api.Post("/api/v1/follow", bearer(author), map[string]any{"author": author.ID})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"success":false`)
}

func TestProfileAndDirectory(t *testing.T) {
	ts := setupTestServer(t)
	author := ts.registerAndVerify(t, "author@example.com")
	reader := ts.registerAndVerify(t, "reader@example.com")

	ts.createStory(t, author, "A Story")

	resp := ts.api.Post("/api/v1/follow", bearer(reader), map[string]any{"author": author.ID})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/profile/"+author.ID, bearer(reader))
	require.Equal(t, http.StatusOK, resp.Code)
	profile := decode[ProfileResponse](t, resp.Body.Bytes())
	assert.True(t, profile.InFollowers)
	assert.Equal(t, 1, profile.Author.StoryCount)

	resp = ts.api.Get("/api/v1/authors")
	require.Equal(t, http.StatusOK, resp.Code)
	directory := decode[AuthorsPageResponse](t, resp.Body.Bytes())
	require.Len(t, directory.Results, 2)
	assert.Equal(t, author.ID, directory.Results[0].UserID, "most followed first")
}

func TestReportEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	author := ts.registerAndVerify(t, "author@example.com")
	reader := ts.registerAndVerify(t, "reader@example.com")

	story := ts.createStory(t, author, "Suspicious")

	resp := ts.api.Post("/api/v1/reports", bearer(reader), map[string]any{
		"story":    story.ID,
		"original": "https://example.com/the-real-one",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/reports", map[string]any{
		"story":    story.ID,
		"original": "https://example.com/the-real-one",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
