package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/abdotaker608/golden-pens-api/internal/config"
	domainerrors "github.com/abdotaker608/golden-pens-api/internal/errors"
	"github.com/abdotaker608/golden-pens-api/internal/search"
	"github.com/abdotaker608/golden-pens-api/internal/store"
)

// Sort modes for story listings. Anything else is treated as a field name,
// with a leading '-' meaning descending.
const (
	SortRelevance  = "relevance"
	SortMostViewed = "mostViewed"
	SortTrending   = "trending"
)

// SearchService builds filtered, scored, paginated story listings and the
// fixed-size discovery feeds.
type SearchService struct {
	store  store.Store
	cfg    config.SearchConfig
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(s store.Store, cfg config.SearchConfig, logger *slog.Logger) *SearchService {
	return &SearchService{store: s, cfg: cfg, logger: logger}
}

// FindRequest holds the composable listing parameters. All are optional.
type FindRequest struct {
	// Search is the free-text query scored against titles, author names,
	// tags, and the category.
	Search string
	// Category is an exact-match filter.
	Category string
	// SubCategory and SubCategoryAlt are tag queries, typically the same
	// sub-category in two languages.
	SubCategory    string
	SubCategoryAlt string
	// Sort is relevance, mostViewed, trending, or a field name.
	Sort string
	// FollowerID restricts to authors this user follows.
	FollowerID string
	// AuthorID restricts to this author's stories.
	AuthorID string
	// Page is 1-based.
	Page int
}

// StoryPage is one page of results plus the total page count.
type StoryPage struct {
	Results []*store.StoryRecord
	// Total is the number of pages, not rows.
	Total int
}

// scored pairs a story with its fuzzy match scores.
type scored struct {
	record *store.StoryRecord
	// similarity scores the title against the queries.
	similarity float64
	// nameSimilarity scores the author's names against the search.
	nameSimilarity float64
}

// Find runs the full listing pipeline: hard filters in the store, trigram
// scoring and retention, sorting, then pagination.
func (s *SearchService) Find(ctx context.Context, req FindRequest) (*StoryPage, error) {
	if !validSort(req.Sort) {
		return nil, domainerrors.Validationf("unknown sort %q", req.Sort)
	}

	filter := store.StoryFilter{
		AuthorID:   req.AuthorID,
		FollowerID: req.FollowerID,
		Category:   req.Category,
	}
	if req.Sort == SortTrending {
		filter.CreatedAfter = time.Now().Add(-s.cfg.TrendingWindow)
	}

	records, err := s.store.FindStories(ctx, filter)
	if err != nil {
		return nil, err
	}

	fuzzy := req.Search != "" || req.SubCategory != ""

	candidates := make([]scored, 0, len(records))
	for _, r := range records {
		c := scored{record: r}
		if fuzzy {
			c.similarity = search.Greatest(
				search.Similarity(r.Title, req.Search),
				search.Similarity(r.Title, req.SubCategory),
			)
			c.nameSimilarity = search.Greatest(
				search.Similarity(r.AuthorFirstName+" "+r.AuthorLastName, req.Search),
				search.Similarity(r.AuthorNickname, req.Search),
			)
			if !s.retain(&c, req) {
				continue
			}
		}
		candidates = append(candidates, c)
	}

	s.sortCandidates(candidates, req.Sort, fuzzy)

	return paginate(candidates, req.Page, s.cfg.PageSize), nil
}

// retain decides whether a scored candidate stays in a fuzzy result set:
// a strong title or author-name score, a category match, or any tag
// matching the search or either sub-category form.
func (s *SearchService) retain(c *scored, req FindRequest) bool {
	if c.similarity >= s.cfg.SimilarityThreshold || c.nameSimilarity >= s.cfg.SimilarityThreshold {
		return true
	}
	if req.Search != "" && search.Similar(string(c.record.Category), req.Search) {
		return true
	}
	for _, tag := range c.record.Tags {
		if req.Search != "" && search.Similar(tag, req.Search) {
			return true
		}
		if req.SubCategory != "" &&
			(search.Similar(tag, req.SubCategory) || search.Similar(tag, req.SubCategoryAlt)) {
			return true
		}
	}
	return false
}

// validSort reports whether the sort is a known mode or story field.
func validSort(sort string) bool {
	switch sort {
	case "", SortRelevance, SortMostViewed, SortTrending:
		return true
	}
	switch strings.TrimPrefix(sort, "-") {
	case "created", "title", "views":
		return true
	}
	return false
}

// sortCandidates orders the result set per the requested mode.
func (s *SearchService) sortCandidates(candidates []scored, mode string, fuzzy bool) {
	switch mode {
	case SortRelevance:
		if fuzzy {
			sort.SliceStable(candidates, func(i, j int) bool {
				if candidates[i].similarity != candidates[j].similarity {
					return candidates[i].similarity > candidates[j].similarity
				}
				return candidates[i].nameSimilarity > candidates[j].nameSimilarity
			})
		} else {
			sortByCreatedDesc(candidates)
		}

	case SortMostViewed, SortTrending:
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].record.Views != candidates[j].record.Views {
				return candidates[i].record.Views > candidates[j].record.Views
			}
			return candidates[i].record.CreatedAt.After(candidates[j].record.CreatedAt)
		})

	default:
		sortByField(candidates, mode)
	}
}

func sortByCreatedDesc(candidates []scored) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].record.CreatedAt.After(candidates[j].record.CreatedAt)
	})
}

// sortByField orders by a named story field; a leading '-' flips to
// descending. An empty field means the default order, newest first.
func sortByField(candidates []scored, field string) {
	desc := strings.HasPrefix(field, "-")
	field = strings.TrimPrefix(field, "-")

	var less func(a, b *store.StoryRecord) bool
	switch field {
	case "title":
		less = func(a, b *store.StoryRecord) bool { return a.Title < b.Title }
	case "created":
		less = func(a, b *store.StoryRecord) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "views":
		less = func(a, b *store.StoryRecord) bool { return a.Views < b.Views }
	default:
		sortByCreatedDesc(candidates)
		return
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if desc {
			return less(candidates[j].record, candidates[i].record)
		}
		return less(candidates[i].record, candidates[j].record)
	})
}

// paginate slices one page out of the candidate list. Total counts pages;
// an empty result set still reports one page.
func paginate(candidates []scored, page, size int) *StoryPage {
	if page < 1 {
		page = 1
	}

	total := (len(candidates) + size - 1) / size
	if total == 0 {
		total = 1
	}

	start := (page - 1) * size
	if start > len(candidates) {
		start = len(candidates)
	}
	end := start + size
	if end > len(candidates) {
		end = len(candidates)
	}

	results := make([]*store.StoryRecord, 0, end-start)
	for _, c := range candidates[start:end] {
		results = append(results, c.record)
	}
	return &StoryPage{Results: results, Total: total}
}

// Latest returns the newest stories, capped at the feed limit.
func (s *SearchService) Latest(ctx context.Context) ([]*store.StoryRecord, error) {
	records, err := s.store.FindStories(ctx, store.StoryFilter{})
	if err != nil {
		return nil, err
	}
	// The store already orders newest first.
	return capFeed(records, s.cfg.FeedLimit), nil
}

// Trending returns the most viewed stories created inside the trending
// window, capped at the feed limit.
func (s *SearchService) Trending(ctx context.Context) ([]*store.StoryRecord, error) {
	records, err := s.store.FindStories(ctx, store.StoryFilter{
		CreatedAfter: time.Now().Add(-s.cfg.TrendingWindow),
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]scored, len(records))
	for i, r := range records {
		candidates[i] = scored{record: r}
	}
	s.sortCandidates(candidates, SortTrending, false)

	out := make([]*store.StoryRecord, len(candidates))
	for i, c := range candidates {
		out[i] = c.record
	}
	return capFeed(out, s.cfg.FeedLimit), nil
}

// Personal returns an author's newest stories, capped at the feed limit.
func (s *SearchService) Personal(ctx context.Context, authorID string) ([]*store.StoryRecord, error) {
	records, err := s.store.FindStories(ctx, store.StoryFilter{AuthorID: authorID})
	if err != nil {
		return nil, err
	}
	return capFeed(records, s.cfg.FeedLimit), nil
}

// Following returns the newest stories from authors the user follows,
// capped at the feed limit. An empty result means the user follows no one
// with published work; the handler turns that into a no-content response.
func (s *SearchService) Following(ctx context.Context, userID string) ([]*store.StoryRecord, error) {
	records, err := s.store.FindStories(ctx, store.StoryFilter{FollowerID: userID})
	if err != nil {
		return nil, err
	}
	return capFeed(records, s.cfg.FeedLimit), nil
}

func capFeed(records []*store.StoryRecord, limit int) []*store.StoryRecord {
	if len(records) > limit {
		return records[:limit]
	}
	return records
}
