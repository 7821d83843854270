package service

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/abdotaker608/golden-pens-api/internal/config"
	"github.com/abdotaker608/golden-pens-api/internal/domain"
	domainerrors "github.com/abdotaker608/golden-pens-api/internal/errors"
	"github.com/abdotaker608/golden-pens-api/internal/id"
	"github.com/abdotaker608/golden-pens-api/internal/store"
	"github.com/abdotaker608/golden-pens-api/internal/validation"
)

// StoryService manages stories and everything hanging off them: chapters,
// replies, loves, views, and reports.
type StoryService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
	cfg       config.SearchConfig
}

// NewStoryService creates a new story service.
func NewStoryService(s store.Store, validator *validation.Validator, logger *slog.Logger, cfg config.SearchConfig) *StoryService {
	return &StoryService{store: s, validator: validator, logger: logger, cfg: cfg}
}

// StoryRequest contains story creation and update data.
type StoryRequest struct {
	Title       string   `json:"title" validate:"required,max=150"`
	Description string   `json:"description" validate:"max=2000"`
	Tags        []string `json:"tags" validate:"dive,max=50"`
	Category    string   `json:"category" validate:"required"`
	Cover       string   `json:"cover" validate:"omitempty,url"`
	Finished    bool     `json:"finished"`
}

func (s *StoryService) validateStory(req StoryRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	if !domain.Category(req.Category).Valid() {
		return domainerrors.Validationf("unknown category %q", req.Category)
	}
	if len(req.Tags) > domain.MaxStoryTags {
		return domainerrors.Validationf("at most %d tags allowed", domain.MaxStoryTags)
	}
	return nil
}

// CreateStory publishes a new story for the author.
func (s *StoryService) CreateStory(ctx context.Context, authorID string, req StoryRequest) (*store.StoryRecord, error) {
	if err := s.validateStory(req); err != nil {
		return nil, err
	}

	storyID, err := id.Generate("story")
	if err != nil {
		return nil, fmt.Errorf("generate story ID: %w", err)
	}

	story := &domain.Story{
		ID:          storyID,
		AuthorID:    authorID,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Category:    domain.Category(req.Category),
		Cover:       req.Cover,
		Finished:    req.Finished,
		CreatedAt:   time.Now(),
	}
	if story.Tags == nil {
		story.Tags = []string{}
	}

	if err := s.store.CreateStory(ctx, story); err != nil {
		return nil, fmt.Errorf("create story: %w", err)
	}

	s.logger.Info("story created", "story_id", story.ID, "author_id", authorID)
	return s.GetStory(ctx, story.ID)
}

// GetStory loads a story with its author fields and engagement counts.
func (s *StoryService) GetStory(ctx context.Context, storyID string) (*store.StoryRecord, error) {
	record, err := s.store.GetStory(ctx, storyID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("story not found")
		}
		return nil, fmt.Errorf("get story: %w", err)
	}
	return record, nil
}

// GetStoryStats aggregates views, loves, and replies across a story's
// chapters.
func (s *StoryService) GetStoryStats(ctx context.Context, storyID string) (*domain.StoryStats, error) {
	stats, err := s.store.GetStoryStats(ctx, storyID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("story not found")
		}
		return nil, fmt.Errorf("get story stats: %w", err)
	}
	return stats, nil
}

// UpdateStory edits a story's metadata. The author never changes.
func (s *StoryService) UpdateStory(ctx context.Context, storyID string, req StoryRequest) (*store.StoryRecord, error) {
	if err := s.validateStory(req); err != nil {
		return nil, err
	}

	record, err := s.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}

	story := record.Story
	story.Title = req.Title
	story.Description = req.Description
	story.Tags = req.Tags
	story.Category = domain.Category(req.Category)
	story.Cover = req.Cover
	story.Finished = req.Finished
	if story.Tags == nil {
		story.Tags = []string{}
	}

	if err := s.store.UpdateStory(ctx, &story); err != nil {
		return nil, fmt.Errorf("update story: %w", err)
	}
	return s.GetStory(ctx, storyID)
}

// DeleteStory removes a story and all chapters, replies, loves, and views
// under it.
func (s *StoryService) DeleteStory(ctx context.Context, storyID string) error {
	if _, err := s.GetStory(ctx, storyID); err != nil {
		return err
	}
	if err := s.store.DeleteStory(ctx, storyID); err != nil {
		return fmt.Errorf("delete story: %w", err)
	}
	s.logger.Info("story deleted", "story_id", storyID)
	return nil
}

// ChapterRequest contains chapter creation and update data.
type ChapterRequest struct {
	Title   string `json:"title" validate:"required,max=150"`
	Content string `json:"content" validate:"required"`
}

// CreateChapter appends a chapter to the story. Numbers are assigned
// sequentially and never reused, so a deleted chapter leaves a gap.
func (s *StoryService) CreateChapter(ctx context.Context, storyID string, req ChapterRequest) (*domain.Chapter, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	chapterID, err := id.Generate("chapter")
	if err != nil {
		return nil, fmt.Errorf("generate chapter ID: %w", err)
	}

	chapter := &domain.Chapter{
		ID:        chapterID,
		StoryID:   storyID,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}

	if err := s.store.CreateChapter(ctx, chapter); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("story not found")
		}
		return nil, fmt.Errorf("create chapter: %w", err)
	}

	s.logger.Info("chapter created", "chapter_id", chapter.ID, "story_id", storyID, "number", chapter.Number)
	return chapter, nil
}

// GetChapter loads a chapter. A non-empty viewerID marks whether the viewer
// loves it.
func (s *StoryService) GetChapter(ctx context.Context, chapterID, viewerID string) (*domain.Chapter, error) {
	chapter, err := s.store.GetChapter(ctx, chapterID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("chapter not found")
		}
		return nil, fmt.Errorf("get chapter: %w", err)
	}
	if viewerID != "" {
		chapter.Loved, err = s.store.HasLoved(ctx, chapterID, viewerID)
		if err != nil {
			return nil, fmt.Errorf("check love: %w", err)
		}
	}
	return chapter, nil
}

// ChapterDetail is a chapter plus its reading-order neighbors.
type ChapterDetail struct {
	*domain.Chapter
	// NextID and PrevID skip over numbering gaps left by deletions.
	NextID string `json:"next,omitempty"`
	PrevID string `json:"prev,omitempty"`
}

// GetChapterDetail loads a chapter with the ids of the chapters around it.
func (s *StoryService) GetChapterDetail(ctx context.Context, chapterID, viewerID string) (*ChapterDetail, error) {
	chapter, err := s.GetChapter(ctx, chapterID, viewerID)
	if err != nil {
		return nil, err
	}

	siblings, err := s.store.ListChapters(ctx, chapter.StoryID, "")
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}

	detail := &ChapterDetail{Chapter: chapter}
	for i, c := range siblings {
		if c.ID != chapter.ID {
			continue
		}
		if i > 0 {
			detail.PrevID = siblings[i-1].ID
		}
		if i < len(siblings)-1 {
			detail.NextID = siblings[i+1].ID
		}
		break
	}
	return detail, nil
}

// ListChapters returns a story's chapters in reading order.
func (s *StoryService) ListChapters(ctx context.Context, storyID, viewerID string) ([]*domain.Chapter, error) {
	if _, err := s.GetStory(ctx, storyID); err != nil {
		return nil, err
	}
	chapters, err := s.store.ListChapters(ctx, storyID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	return chapters, nil
}

// UpdateChapter edits a chapter's title and content. The number is fixed.
func (s *StoryService) UpdateChapter(ctx context.Context, chapterID string, req ChapterRequest) (*domain.Chapter, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	chapter, err := s.GetChapter(ctx, chapterID, "")
	if err != nil {
		return nil, err
	}

	chapter.Title = req.Title
	chapter.Content = req.Content
	if err := s.store.UpdateChapter(ctx, chapter); err != nil {
		return nil, fmt.Errorf("update chapter: %w", err)
	}
	return chapter, nil
}

// DeleteChapter removes a chapter, leaving a gap in the numbering.
func (s *StoryService) DeleteChapter(ctx context.Context, chapterID string) error {
	if _, err := s.GetChapter(ctx, chapterID, ""); err != nil {
		return err
	}
	if err := s.store.DeleteChapter(ctx, chapterID); err != nil {
		return fmt.Errorf("delete chapter: %w", err)
	}
	s.logger.Info("chapter deleted", "chapter_id", chapterID)
	return nil
}

// ToggleLove loves the chapter if not yet loved, otherwise takes it back.
func (s *StoryService) ToggleLove(ctx context.Context, chapterID, userID string) (bool, error) {
	if _, err := s.GetChapter(ctx, chapterID, ""); err != nil {
		return false, err
	}
	loved, err := s.store.ToggleLove(ctx, chapterID, userID)
	if err != nil {
		return false, fmt.Errorf("toggle love: %w", err)
	}
	return loved, nil
}

// RecordView counts one view of the chapter per client address. The remote
// string may be a bare IP or host:port. Anything that is not a valid IPv4
// address, or any storage failure, is dropped silently: view counting never
// fails a page load.
func (s *StoryService) RecordView(ctx context.Context, chapterID, remote string) {
	address := remote
	if host, _, err := net.SplitHostPort(remote); err == nil {
		address = host
	}

	ip := net.ParseIP(address)
	if ip == nil || ip.To4() == nil {
		s.logger.Debug("view skipped, not an IPv4 address", "chapter_id", chapterID, "remote", remote)
		return
	}

	if err := s.store.AddView(ctx, chapterID, ip.To4().String()); err != nil {
		s.logger.Debug("view not recorded", "chapter_id", chapterID, "error", err)
	}
}

// ReplyRequest contains reply creation and update data.
type ReplyRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// CreateReply posts a reader comment on a chapter.
func (s *StoryService) CreateReply(ctx context.Context, chapterID, userID string, req ReplyRequest) (*domain.Reply, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	replyID, err := id.Generate("reply")
	if err != nil {
		return nil, fmt.Errorf("generate reply ID: %w", err)
	}

	reply := &domain.Reply{
		ID:        replyID,
		ChapterID: chapterID,
		UserID:    userID,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}

	if err := s.store.CreateReply(ctx, reply); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("chapter not found")
		}
		return nil, fmt.Errorf("create reply: %w", err)
	}
	return reply, nil
}

// RepliesPage is one page of replies plus the total page count.
type RepliesPage struct {
	Results []*store.ReplyRecord
	// Total is the number of pages, not rows.
	Total int
}

// ListReplies pages through a chapter's replies, newest first.
func (s *StoryService) ListReplies(ctx context.Context, chapterID string, page int) (*RepliesPage, error) {
	if _, err := s.GetChapter(ctx, chapterID, ""); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	size := s.cfg.RepliesPageSize

	replies, count, err := s.store.ListReplies(ctx, chapterID, (page-1)*size, size)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}

	total := (count + size - 1) / size
	if total == 0 {
		total = 1
	}
	return &RepliesPage{Results: replies, Total: total}, nil
}

// UpdateReply edits a reply's content.
func (s *StoryService) UpdateReply(ctx context.Context, replyID string, req ReplyRequest) (*domain.Reply, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	reply, err := s.store.GetReply(ctx, replyID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("reply not found")
		}
		return nil, fmt.Errorf("get reply: %w", err)
	}

	reply.Content = req.Content
	if err := s.store.UpdateReply(ctx, reply); err != nil {
		return nil, fmt.Errorf("update reply: %w", err)
	}
	return reply, nil
}

// DeleteReply removes a reply.
func (s *StoryService) DeleteReply(ctx context.Context, replyID string) error {
	if _, err := s.store.GetReply(ctx, replyID); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("reply not found")
		}
		return fmt.Errorf("get reply: %w", err)
	}
	if err := s.store.DeleteReply(ctx, replyID); err != nil {
		return fmt.Errorf("delete reply: %w", err)
	}
	return nil
}

// ReportRequest flags a story as plagiarized or abusive.
type ReportRequest struct {
	StoryID  string `json:"story" validate:"required"`
	Original string `json:"original" validate:"required,url"`
	Comment  string `json:"comment" validate:"max=2000"`
}

// Report files a plagiarism report against a story.
func (s *StoryService) Report(ctx context.Context, userID string, req ReportRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	reportID, err := id.Generate("report")
	if err != nil {
		return fmt.Errorf("generate report ID: %w", err)
	}

	report := &domain.Report{
		ID:       reportID,
		UserID:   userID,
		StoryID:  req.StoryID,
		Original: req.Original,
		Comment:  req.Comment,
	}

	if err := s.store.CreateReport(ctx, report); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("story not found")
		}
		return fmt.Errorf("create report: %w", err)
	}

	s.logger.Info("story reported", "story_id", req.StoryID, "user_id", userID)
	return nil
}
