package models

import "time"

// Like and Bookmark tie a user to a recipe. There is deliberately no
// uniqueness constraint on the (user, recipe) pair: the mobile client
// implements toggling with separate create/delete calls and tracks the
// row id itself.
type Like struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	RecipeID  int64     `json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Bookmark struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	RecipeID  int64     `json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`

	Recipe *Recipe `json:"recipe,omitempty"`
}

type Comment struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	RecipeID    int64     `json:"recipe_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	User *UserSummary `json:"user,omitempty"`
}
