package model

import "time"

// Category is the closed set of video categories.
type Category string

const (
	CategoryMusic       Category = "Music"
	CategoryTutorial    Category = "Tutorial"
	CategoryGaming      Category = "Gaming"
	CategoryVlog        Category = "Vlog"
	CategoryDocumentary Category = "Documentary"
	CategoryOther       Category = "Other"
)

// ValidCategories are the allowed category values.
var ValidCategories = map[Category]bool{
	CategoryMusic:       true,
	CategoryTutorial:    true,
	CategoryGaming:      true,
	CategoryVlog:        true,
	CategoryDocumentary: true,
	CategoryOther:       true,
}

// Video is a media asset record. Engagement counts are never stored here;
// they are derived from the interactions table.
type Video struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	StorageID    *string   `json:"storageId,omitempty"`
	ThumbnailKey *string   `json:"-"`
	Duration     int       `json:"duration"`
	Category     Category  `json:"category"`
	Tags         []string  `json:"tags"`
	IsPublished  bool      `json:"isPublished"`
	UploadedBy   string    `json:"uploadedBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// VideoResponse is a video enriched with its aggregate.
type VideoResponse struct {
	Video
	Likes           int              `json:"likes"`
	Dislikes        int              `json:"dislikes"`
	Views           int              `json:"views"`
	UserInteraction *UserInteraction `json:"userInteraction,omitempty"`
	SavedAt         *time.Time       `json:"savedAt,omitempty"`
	ViewedAt        *time.Time       `json:"viewedAt,omitempty"`
}

// SortKey names a whitelisted catalog ordering.
type SortKey string

const (
	SortCreatedAt SortKey = "createdAt"
	SortViews     SortKey = "views"
	SortLikes     SortKey = "likes"
	SortTitle     SortKey = "title"
	SortDuration  SortKey = "duration"
)

// DefaultOrder is the natural direction of each sort key.
var DefaultOrder = map[SortKey]string{
	SortCreatedAt: "DESC",
	SortViews:     "DESC",
	SortLikes:     "DESC",
	SortTitle:     "ASC",
	SortDuration:  "DESC",
}

// VideoFilter describes a catalog query.
type VideoFilter struct {
	PublishedOnly bool
	Search        string
	Category      Category
	Tags          []string
	SortBy        SortKey
	Order         string
	Page          int
	Limit         int
}

// Offset returns the row offset for the filter's page.
func (f VideoFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// Pagination describes one page of a listing.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"totalPages"`
	TotalVideos int  `json:"totalVideos"`
	HasMore     bool `json:"hasMore"`
}

// NewPagination computes page metadata from the total row count.
func NewPagination(page, limit, total int) Pagination {
	p := Pagination{CurrentPage: page, Limit: limit, TotalVideos: total}
	if limit > 0 {
		p.TotalPages = (total + limit - 1) / limit
		p.HasMore = page*limit < total
	}
	return p
}

// VideoPage is the result of ListVideos.
type VideoPage struct {
	Items      []VideoResponse `json:"items"`
	Pagination Pagination      `json:"pagination"`
}

// VideoUpdate carries admin edits. Nil fields are left unchanged.
type VideoUpdate struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Category    *Category `json:"category"`
	Tags        *[]string `json:"tags"`
	IsPublished *bool     `json:"isPublished"`
}

// NewVideo is the metadata for an uploaded asset.
type NewVideo struct {
	Title        string
	Description  string
	Category     Category
	Tags         []string
	Duration     int
	VideoURL     string
	ThumbnailURL string
	StorageID    string
	ThumbnailKey string
	UploadedBy   string
}
