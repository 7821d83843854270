package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/abdotaker608/golden-pens-api/internal/service"
	"github.com/abdotaker608/golden-pens-api/internal/store"
)

func (s *Server) registerReplyRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-replies",
		Method:      http.MethodGet,
		Path:        "/api/v1/chapters/{id}/replies",
		Summary:     "List a chapter's replies",
		Description: "Pages through replies, newest first.",
		Tags:        []string{"Replies"},
	}, s.handleListReplies)

	huma.Register(s.api, huma.Operation{
		OperationID: "create-reply",
		Method:      http.MethodPost,
		Path:        "/api/v1/replies",
		Summary:     "Post a reply",
		Tags:        []string{"Replies"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateReply)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-reply",
		Method:      http.MethodPut,
		Path:        "/api/v1/replies/{id}",
		Summary:     "Edit a reply",
		Tags:        []string{"Replies"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateReply)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-reply",
		Method:      http.MethodDelete,
		Path:        "/api/v1/replies/{id}",
		Summary:     "Delete a reply",
		Tags:        []string{"Replies"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteReply)
}

// === DTOs ===

// ReplyResponse is a reply with its commenter's display fields.
type ReplyResponse struct {
	ID        string    `json:"id" doc:"Reply ID"`
	ChapterID string    `json:"chapter_id" doc:"Owning chapter ID"`
	UserID    string    `json:"user_id" doc:"Commenting user ID"`
	FirstName string    `json:"first_name" doc:"Commenter first name"`
	LastName  string    `json:"last_name" doc:"Commenter last name"`
	Picture   string    `json:"picture,omitempty" doc:"Commenter picture URL"`
	Content   string    `json:"content" doc:"Reply text"`
	Created   time.Time `json:"created" doc:"Creation timestamp"`
}

func mapReply(r *store.ReplyRecord) ReplyResponse {
	return ReplyResponse{
		ID:        r.ID,
		ChapterID: r.ChapterID,
		UserID:    r.UserID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Picture:   r.Picture,
		Content:   r.Content,
		Created:   r.CreatedAt,
	}
}

// ListRepliesInput identifies the chapter and page.
type ListRepliesInput struct {
	ID   string `path:"id" doc:"Chapter ID"`
	Page int    `query:"p" doc:"1-based page"`
}

// RepliesPageResponse is one page of replies.
type RepliesPageResponse struct {
	Results []ReplyResponse `json:"results" doc:"Page of replies, newest first"`
	Total   int             `json:"total" doc:"Total number of pages"`
}

// RepliesPageOutput wraps the replies page for Huma.
type RepliesPageOutput struct {
	Body RepliesPageResponse
}

func (s *Server) handleListReplies(ctx context.Context, input *ListRepliesInput) (*RepliesPageOutput, error) {
	page, err := s.services.Stories.ListReplies(ctx, input.ID, input.Page)
	if err != nil {
		return nil, err
	}

	results := make([]ReplyResponse, len(page.Results))
	for i, r := range page.Results {
		results[i] = mapReply(r)
	}
	return &RepliesPageOutput{Body: RepliesPageResponse{Results: results, Total: page.Total}}, nil
}

// CreateReplyInput wraps the reply creation request for Huma.
type CreateReplyInput struct {
	Body struct {
		ChapterID string `json:"chapter" validate:"required" doc:"Owning chapter ID"`
		service.ReplyRequest
	}
}

// SingleReplyOutput wraps a bare reply for Huma.
type SingleReplyOutput struct {
	Body struct {
		ID      string    `json:"id" doc:"Reply ID"`
		Content string    `json:"content" doc:"Reply text"`
		Created time.Time `json:"created" doc:"Creation timestamp"`
	}
}

func (s *Server) handleCreateReply(ctx context.Context, input *CreateReplyInput) (*SingleReplyOutput, error) {
	user, err := GetUser(ctx)
	if err != nil {
		return nil, err
	}

	reply, err := s.services.Stories.CreateReply(ctx, input.Body.ChapterID, user.ID, input.Body.ReplyRequest)
	if err != nil {
		return nil, err
	}

	out := &SingleReplyOutput{}
	out.Body.ID = reply.ID
	out.Body.Content = reply.Content
	out.Body.Created = reply.CreatedAt
	return out, nil
}

// UpdateReplyInput wraps the reply update request for Huma.
type UpdateReplyInput struct {
	ID            string `path:"id" doc:"Reply ID"`
	Authorization string `header:"Authorization"`
	Body          service.ReplyRequest
}

func (s *Server) handleUpdateReply(ctx context.Context, input *UpdateReplyInput) (*SingleReplyOutput, error) {
	if _, err := s.authorize(ctx, input.Authorization, service.KindReply, input.ID); err != nil {
		return nil, err
	}

	reply, err := s.services.Stories.UpdateReply(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}

	out := &SingleReplyOutput{}
	out.Body.ID = reply.ID
	out.Body.Content = reply.Content
	out.Body.Created = reply.CreatedAt
	return out, nil
}

// DeleteReplyInput wraps the reply deletion request for Huma.
type DeleteReplyInput struct {
	ID            string `path:"id" doc:"Reply ID"`
	Authorization string `header:"Authorization"`
}

func (s *Server) handleDeleteReply(ctx context.Context, input *DeleteReplyInput) (*MessageOutput, error) {
	if _, err := s.authorize(ctx, input.Authorization, service.KindReply, input.ID); err != nil {
		return nil, err
	}

	if err := s.services.Stories.DeleteReply(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "saved"}}, nil
}
