package models

// Page mirrors the envelope the mobile client already consumes: the
// current page of rows plus enough bookkeeping to render a pager.
type Page[T any] struct {
	CurrentPage int `json:"current_page"`
	Data        []T `json:"data"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

func NewPage[T any](data []T, page, perPage, total int) *Page[T] {
	if data == nil {
		data = []T{}
	}
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}
	return &Page[T]{
		CurrentPage: page,
		Data:        data,
		PerPage:     perPage,
		Total:       total,
		LastPage:    lastPage,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ValidationErrorResponse enumerates every violated field, not just the
// first one encountered.
type ValidationErrorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LikeResponse struct {
	Like        *Like `json:"like"`
	RecipeLikes int   `json:"recipe_likes"`
}

type BookmarkResponse struct {
	Bookmark        *Bookmark `json:"bookmark"`
	RecipeBookmarks int       `json:"recipe_bookmarks"`
}

type CommentResponse struct {
	Comment       *Comment `json:"comment"`
	RecipeComment int      `json:"recipe_comment"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
