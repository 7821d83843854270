package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/abdotaker608/golden-pens-api/internal/domain"
	"github.com/abdotaker608/golden-pens-api/internal/service"
)

func (s *Server) registerChapterRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "create-chapter",
		Method:      http.MethodPost,
		Path:        "/api/v1/chapters",
		Summary:     "Append a chapter",
		Description: "Appends a chapter to a story. Numbers are assigned sequentially and never reused.",
		Tags:        []string{"Chapters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-chapter",
		Method:      http.MethodGet,
		Path:        "/api/v1/chapters/{id}",
		Summary:     "Read a chapter",
		Description: "Returns the chapter with its reading-order neighbors and the viewer's love state.",
		Tags:        []string{"Chapters"},
	}, s.handleGetChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-chapter",
		Method:      http.MethodPut,
		Path:        "/api/v1/chapters/{id}",
		Summary:     "Update a chapter",
		Tags:        []string{"Chapters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-chapter",
		Method:      http.MethodDelete,
		Path:        "/api/v1/chapters/{id}",
		Summary:     "Delete a chapter",
		Tags:        []string{"Chapters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "view-chapter",
		Method:      http.MethodGet,
		Path:        "/api/v1/chapters/{id}/view",
		Summary:     "Count a chapter view",
		Description: "Counts one view per client address. Always succeeds.",
		Tags:        []string{"Chapters"},
	}, s.handleViewChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "love-chapter",
		Method:      http.MethodPost,
		Path:        "/api/v1/chapters/{id}/love",
		Summary:     "Love or unlove a chapter",
		Tags:        []string{"Chapters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLoveChapter)
}

// === DTOs ===

// ChapterResponse is the full chapter payload.
type ChapterResponse struct {
	ID      string    `json:"id" doc:"Chapter ID"`
	StoryID string    `json:"story_id" doc:"Owning story ID"`
	Title   string    `json:"title" doc:"Title"`
	Content string    `json:"content" doc:"Chapter text"`
	Number  int       `json:"number" doc:"Reading-order number"`
	Created time.Time `json:"created" doc:"Creation timestamp"`
	Views   int       `json:"views" doc:"View count"`
	Loves   int       `json:"loves" doc:"Love count"`
	Loved   bool      `json:"loved" doc:"Whether the viewer loves this chapter"`
	Next    string    `json:"next,omitempty" doc:"Next chapter ID"`
	Prev    string    `json:"prev,omitempty" doc:"Previous chapter ID"`
}

func mapChapter(c *domain.Chapter) ChapterResponse {
	return ChapterResponse{
		ID:      c.ID,
		StoryID: c.StoryID,
		Title:   c.Title,
		Content: c.Content,
		Number:  c.Number,
		Created: c.CreatedAt,
		Views:   c.ViewCount,
		Loves:   c.LoveCount,
		Loved:   c.Loved,
	}
}

// CreateChapterInput wraps the chapter creation request for Huma.
type CreateChapterInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		StoryID string `json:"story" validate:"required" doc:"Owning story ID"`
		service.ChapterRequest
	}
}

// ChapterOutput wraps a single chapter payload for Huma.
type ChapterOutput struct {
	Body ChapterResponse
}

func (s *Server) handleCreateChapter(ctx context.Context, input *CreateChapterInput) (*ChapterOutput, error) {
	if _, err := s.authorize(ctx, input.Authorization, service.KindStory, input.Body.StoryID); err != nil {
		return nil, err
	}

	chapter, err := s.services.Stories.CreateChapter(ctx, input.Body.StoryID, input.Body.ChapterRequest)
	if err != nil {
		return nil, err
	}
	return &ChapterOutput{Body: mapChapter(chapter)}, nil
}

// ChapterIDInput identifies a chapter by path.
type ChapterIDInput struct {
	ID string `path:"id" doc:"Chapter ID"`
}

func (s *Server) handleGetChapter(ctx context.Context, input *ChapterIDInput) (*ChapterOutput, error) {
	detail, err := s.services.Stories.GetChapterDetail(ctx, input.ID, currentUserID(ctx))
	if err != nil {
		return nil, err
	}

	body := mapChapter(detail.Chapter)
	body.Next = detail.NextID
	body.Prev = detail.PrevID
	return &ChapterOutput{Body: body}, nil
}

// UpdateChapterInput wraps the chapter update request for Huma.
type UpdateChapterInput struct {
	ID            string `path:"id" doc:"Chapter ID"`
	Authorization string `header:"Authorization"`
	Body          service.ChapterRequest
}

func (s *Server) handleUpdateChapter(ctx context.Context, input *UpdateChapterInput) (*ChapterOutput, error) {
	if _, err := s.authorize(ctx, input.Authorization, service.KindChapter, input.ID); err != nil {
		return nil, err
	}

	chapter, err := s.services.Stories.UpdateChapter(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ChapterOutput{Body: mapChapter(chapter)}, nil
}

// DeleteChapterInput wraps the chapter deletion request for Huma.
type DeleteChapterInput struct {
	ID            string `path:"id" doc:"Chapter ID"`
	Authorization string `header:"Authorization"`
}

func (s *Server) handleDeleteChapter(ctx context.Context, input *DeleteChapterInput) (*MessageOutput, error) {
	if _, err := s.authorize(ctx, input.Authorization, service.KindChapter, input.ID); err != nil {
		return nil, err
	}

	if err := s.services.Stories.DeleteChapter(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "saved"}}, nil
}

// SuccessResponse reports whether a best-effort action was applied.
type SuccessResponse struct {
	Success bool `json:"success" doc:"Whether the action was applied"`
	Loved   bool `json:"loved,omitempty" doc:"Love state after a toggle"`
}

// SuccessOutput wraps the success response for Huma.
type SuccessOutput struct {
	Body SuccessResponse
}

func (s *Server) handleViewChapter(ctx context.Context, input *ChapterIDInput) (*SuccessOutput, error) {
	// Best effort: invalid addresses and storage failures are dropped.
	s.services.Stories.RecordView(ctx, input.ID, clientIP(ctx))
	return &SuccessOutput{Body: SuccessResponse{Success: true}}, nil
}

func (s *Server) handleLoveChapter(ctx context.Context, input *ChapterIDInput) (*SuccessOutput, error) {
	user, err := GetUser(ctx)
	if err != nil {
		return nil, err
	}

	loved, err := s.services.Stories.ToggleLove(ctx, input.ID, user.ID)
	if err != nil {
		return nil, err
	}
	return &SuccessOutput{Body: SuccessResponse{Success: true, Loved: loved}}, nil
}
