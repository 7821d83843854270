package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/abdotaker608/golden-pens-api/internal/service"
	"github.com/abdotaker608/golden-pens-api/internal/store"
)

func (s *Server) registerStoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "create-story",
		Method:      http.MethodPost,
		Path:        "/api/v1/stories",
		Summary:     "Publish a story",
		Tags:        []string{"Stories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-story",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/{id}",
		Summary:     "Story overview",
		Description: "Returns the story with its author, aggregate engagement, and the viewer's follow state.",
		Tags:        []string{"Stories"},
	}, s.handleGetStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-story",
		Method:      http.MethodPut,
		Path:        "/api/v1/stories/{id}",
		Summary:     "Update a story",
		Tags:        []string{"Stories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-story",
		Method:      http.MethodDelete,
		Path:        "/api/v1/stories/{id}",
		Summary:     "Delete a story",
		Tags:        []string{"Stories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-story-edit",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/{id}/save",
		Summary:     "Fetch a story for editing",
		Description: "Returns the editable fields of a story for its author.",
		Tags:        []string{"Stories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetStoryEdit)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-story-chapters",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/{id}/chapters",
		Summary:     "List a story's chapters",
		Tags:        []string{"Stories"},
	}, s.handleListStoryChapters)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-stories",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/list",
		Summary:     "Search and list stories",
		Description: "Composable filtered, scored, sorted, paginated story listing.",
		Tags:        []string{"Stories"},
	}, s.handleListStories)

	huma.Register(s.api, huma.Operation{
		OperationID: "latest-stories",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/list/latest",
		Summary:     "Latest stories feed",
		Tags:        []string{"Stories"},
	}, s.handleLatestStories)

	huma.Register(s.api, huma.Operation{
		OperationID: "trending-stories",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/list/trending",
		Summary:     "Trending stories feed",
		Tags:        []string{"Stories"},
	}, s.handleTrendingStories)

	huma.Register(s.api, huma.Operation{
		OperationID: "author-stories",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/list/author/{id}",
		Summary:     "An author's latest stories",
		Tags:        []string{"Stories"},
	}, s.handleAuthorStories)

	huma.Register(s.api, huma.Operation{
		OperationID: "following-stories",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/list/follow/{id}",
		Summary:     "Stories from followed authors",
		Description: "Returns 204 when the user follows no one with published work.",
		Tags:        []string{"Stories"},
	}, s.handleFollowingStories)

	huma.Register(s.api, huma.Operation{
		OperationID: "report-story",
		Method:      http.MethodPost,
		Path:        "/api/v1/reports",
		Summary:     "Report a story",
		Description: "Files a plagiarism report pointing at the allegedly original work.",
		Tags:        []string{"Stories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReportStory)
}

// === DTOs ===

// StoryResponse is the story card payload used by listings and overviews.
type StoryResponse struct {
	ID          string    `json:"id" doc:"Story ID"`
	AuthorID    string    `json:"author_id" doc:"Author user ID"`
	PenName     string    `json:"pen_name" doc:"Author display name"`
	Title       string    `json:"title" doc:"Title"`
	Description string    `json:"description,omitempty" doc:"Description"`
	Tags        []string  `json:"tags" doc:"Tags"`
	Category    string    `json:"category" doc:"Category"`
	Cover       string    `json:"cover,omitempty" doc:"Cover image URL"`
	Finished    bool      `json:"finished" doc:"Whether the story is complete"`
	Created     time.Time `json:"created" doc:"Creation timestamp"`
	Views       int       `json:"views" doc:"Total chapter views"`
	Loves       int       `json:"loves" doc:"Total chapter loves"`
	Replies     int       `json:"replies" doc:"Total chapter replies"`
}

func mapStory(r *store.StoryRecord) StoryResponse {
	return StoryResponse{
		ID:          r.ID,
		AuthorID:    r.AuthorID,
		PenName:     r.PenName(),
		Title:       r.Title,
		Description: r.Description,
		Tags:        r.Tags,
		Category:    string(r.Category),
		Cover:       r.Cover,
		Finished:    r.Finished,
		Created:     r.CreatedAt,
		Views:       r.Views,
		Loves:       r.Loves,
		Replies:     r.Replies,
	}
}

func mapStories(records []*store.StoryRecord) []StoryResponse {
	out := make([]StoryResponse, len(records))
	for i, r := range records {
		out[i] = mapStory(r)
	}
	return out
}

// CreateStoryInput wraps the story creation request for Huma.
type CreateStoryInput struct {
	Body service.StoryRequest
}

// StoryOutput wraps a single story payload for Huma.
type StoryOutput struct {
	Body StoryResponse
}

func (s *Server) handleCreateStory(ctx context.Context, input *CreateStoryInput) (*StoryOutput, error) {
	user, err := GetUser(ctx)
	if err != nil {
		return nil, err
	}

	record, err := s.services.Stories.CreateStory(ctx, user.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &StoryOutput{Body: mapStory(record)}, nil
}

// StoryIDInput identifies a story by path.
type StoryIDInput struct {
	ID string `path:"id" doc:"Story ID"`
}

// StoryOverviewResponse is the story page payload.
type StoryOverviewResponse struct {
	Story StoryResponse `json:"story" doc:"The story"`
	// InFollowers reports whether the viewer follows the story's author.
	InFollowers bool `json:"inFollowers"`
}

// StoryOverviewOutput wraps the overview response for Huma.
type StoryOverviewOutput struct {
	Body StoryOverviewResponse
}

func (s *Server) handleGetStory(ctx context.Context, input *StoryIDInput) (*StoryOverviewOutput, error) {
	record, err := s.services.Stories.GetStory(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	out := &StoryOverviewOutput{Body: StoryOverviewResponse{Story: mapStory(record)}}
	if viewerID := currentUserID(ctx); viewerID != "" && viewerID != record.AuthorID {
		result, err := s.services.Profiles.GetProfile(ctx, record.AuthorID, viewerID)
		if err != nil {
			return nil, err
		}
		out.Body.InFollowers = result.InFollowers
	}
	return out, nil
}

// UpdateStoryInput wraps the story update request for Huma.
type UpdateStoryInput struct {
	ID            string `path:"id" doc:"Story ID"`
	Authorization string `header:"Authorization"`
	Body          service.StoryRequest
}

func (s *Server) handleUpdateStory(ctx context.Context, input *UpdateStoryInput) (*StoryOutput, error) {
	if _, err := s.authorize(ctx, input.Authorization, service.KindStory, input.ID); err != nil {
		return nil, err
	}

	record, err := s.services.Stories.UpdateStory(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &StoryOutput{Body: mapStory(record)}, nil
}

// DeleteStoryInput wraps the story deletion request for Huma.
type DeleteStoryInput struct {
	ID            string `path:"id" doc:"Story ID"`
	Authorization string `header:"Authorization"`
}

func (s *Server) handleDeleteStory(ctx context.Context, input *DeleteStoryInput) (*MessageOutput, error) {
	if _, err := s.authorize(ctx, input.Authorization, service.KindStory, input.ID); err != nil {
		return nil, err
	}

	if err := s.services.Stories.DeleteStory(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "saved"}}, nil
}

// StoryEditInput wraps the edit payload request for Huma.
type StoryEditInput struct {
	ID            string `path:"id" doc:"Story ID"`
	Authorization string `header:"Authorization"`
}

// StoryEditOutput carries the editable story fields.
type StoryEditOutput struct {
	Body service.StoryRequest
}

func (s *Server) handleGetStoryEdit(ctx context.Context, input *StoryEditInput) (*StoryEditOutput, error) {
	if _, err := s.authorize(ctx, input.Authorization, service.KindStory, input.ID); err != nil {
		return nil, err
	}

	record, err := s.services.Stories.GetStory(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &StoryEditOutput{Body: service.StoryRequest{
		Title:       record.Title,
		Description: record.Description,
		Tags:        record.Tags,
		Category:    string(record.Category),
		Cover:       record.Cover,
		Finished:    record.Finished,
	}}, nil
}

// ChapterSummary is a chapter as listed in a story's table of contents.
type ChapterSummary struct {
	ID     string `json:"id" doc:"Chapter ID"`
	Title  string `json:"title" doc:"Title"`
	Number int    `json:"number" doc:"Reading-order number"`
	Views  int    `json:"views" doc:"View count"`
	Loves  int    `json:"loves" doc:"Love count"`
}

// ChapterListOutput wraps the chapter list for Huma.
type ChapterListOutput struct {
	Body struct {
		Results []ChapterSummary `json:"results" doc:"Chapters in reading order"`
	}
}

func (s *Server) handleListStoryChapters(ctx context.Context, input *StoryIDInput) (*ChapterListOutput, error) {
	chapters, err := s.services.Stories.ListChapters(ctx, input.ID, currentUserID(ctx))
	if err != nil {
		return nil, err
	}

	out := &ChapterListOutput{}
	out.Body.Results = make([]ChapterSummary, len(chapters))
	for i, c := range chapters {
		out.Body.Results[i] = ChapterSummary{
			ID:     c.ID,
			Title:  c.Title,
			Number: c.Number,
			Views:  c.ViewCount,
			Loves:  c.LoveCount,
		}
	}
	return out, nil
}

// ListStoriesInput holds the composable listing query parameters.
type ListStoriesInput struct {
	Search   string `query:"search" doc:"Free-text query"`
	Category string `query:"cat" doc:"Exact category filter"`
	SubCat   string `query:"subCat" doc:"Sub-category tag query"`
	SubCatAr string `query:"subCatAr" doc:"Sub-category tag query, second language"`
	Sort     string `query:"sort" doc:"relevance, mostViewed, trending, or a field name"`
	Follower string `query:"onF" doc:"Restrict to authors this user follows"`
	Author   string `query:"author" doc:"Restrict to this author"`
	Page     int    `query:"page" doc:"1-based page"`
}

// StoriesPageResponse is one page of story results.
type StoriesPageResponse struct {
	Results []StoryResponse `json:"results" doc:"Page of stories"`
	Total   int             `json:"total" doc:"Total number of pages"`
}

// StoriesPageOutput wraps the listing page for Huma.
type StoriesPageOutput struct {
	Body StoriesPageResponse
}

func (s *Server) handleListStories(ctx context.Context, input *ListStoriesInput) (*StoriesPageOutput, error) {
	page, err := s.services.Search.Find(ctx, service.FindRequest{
		Search:         input.Search,
		Category:       input.Category,
		SubCategory:    input.SubCat,
		SubCategoryAlt: input.SubCatAr,
		Sort:           input.Sort,
		FollowerID:     input.Follower,
		AuthorID:       input.Author,
		Page:           input.Page,
	})
	if err != nil {
		return nil, err
	}
	return &StoriesPageOutput{Body: StoriesPageResponse{
		Results: mapStories(page.Results),
		Total:   page.Total,
	}}, nil
}

// FeedOutput wraps a fixed-size story feed for Huma.
type FeedOutput struct {
	Body struct {
		Results []StoryResponse `json:"results" doc:"Feed stories"`
	}
}

func feedOutput(records []*store.StoryRecord) *FeedOutput {
	out := &FeedOutput{}
	out.Body.Results = mapStories(records)
	return out
}

func (s *Server) handleLatestStories(ctx context.Context, _ *struct{}) (*FeedOutput, error) {
	records, err := s.services.Search.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return feedOutput(records), nil
}

func (s *Server) handleTrendingStories(ctx context.Context, _ *struct{}) (*FeedOutput, error) {
	records, err := s.services.Search.Trending(ctx)
	if err != nil {
		return nil, err
	}
	return feedOutput(records), nil
}

// UserIDInput identifies a user by path.
type UserIDInput struct {
	ID string `path:"id" doc:"User ID"`
}

func (s *Server) handleAuthorStories(ctx context.Context, input *UserIDInput) (*FeedOutput, error) {
	records, err := s.services.Search.Personal(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return feedOutput(records), nil
}

// FollowingFeedOutput is a feed that reports no content when the user
// follows no one with published work.
type FollowingFeedOutput struct {
	Status int
	Body   struct {
		Results []StoryResponse `json:"results,omitempty" doc:"Feed stories"`
		Message string          `json:"message,omitempty" doc:"noFollow when the feed is empty"`
	}
}

func (s *Server) handleFollowingStories(ctx context.Context, input *UserIDInput) (*FollowingFeedOutput, error) {
	records, err := s.services.Search.Following(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	out := &FollowingFeedOutput{Status: http.StatusOK}
	if len(records) == 0 {
		out.Status = http.StatusNoContent
		out.Body.Message = "noFollow"
		return out, nil
	}
	out.Body.Results = mapStories(records)
	return out, nil
}

// ReportInput wraps the report request for Huma.
type ReportInput struct {
	Body service.ReportRequest
}

func (s *Server) handleReportStory(ctx context.Context, input *ReportInput) (*MessageOutput, error) {
	user, err := GetUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Stories.Report(ctx, user.ID, input.Body); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "saved"}}, nil
}
