package domain

import "time"

// Category classifies a story. The list is fixed; the web client renders a
// localized label per value.
type Category string

const (
	CategoryNovel      Category = "novel"
	CategoryShortStory Category = "shortStory"
	CategoryPoetry     Category = "poetry"
	CategoryThoughts   Category = "thoughts"
	CategoryOther      Category = "other"
)

// Valid checks if the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryNovel, CategoryShortStory, CategoryPoetry, CategoryThoughts, CategoryOther:
		return true
	default:
		return false
	}
}

// MaxStoryTags caps the tag list on a story.
const MaxStoryTags = 30

// Story is an authored work made of ordered chapters.
// AuthorID never changes after creation.
type Story struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Category    Category  `json:"category"`
	Cover       string    `json:"cover,omitempty"`
	Finished    bool      `json:"finished"`
	CreatedAt   time.Time `json:"created"`
}

// StoryStats aggregates engagement across a story's chapters.
type StoryStats struct {
	Views   int `json:"views"`
	Loves   int `json:"loves"`
	Replies int `json:"replies"`
}

// Chapter is a numbered segment of a story. Numbers start at 1 and are
// assigned on creation; deleting a middle chapter leaves a gap.
type Chapter struct {
	ID        string    `json:"id"`
	StoryID   string    `json:"story_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Number    int       `json:"number"`
	CreatedAt time.Time `json:"created"`

	// Denormalized engagement populated on read.
	LoveCount int `json:"loves"`
	ViewCount int `json:"views"`
	// Loved reports whether the requesting user loves this chapter.
	Loved bool `json:"loved,omitempty"`
}

// Reply is a reader comment on a chapter.
type Reply struct {
	ID        string    `json:"id"`
	ChapterID string    `json:"chapter_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created"`
}

// Report flags a story as plagiarized or abusive. Original points at the
// allegedly original work.
type Report struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	StoryID  string `json:"story_id"`
	Original string `json:"original"`
	Comment  string `json:"comment,omitempty"`
}
