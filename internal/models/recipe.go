package models

import "time"

// Recipe carries the denormalized like/bookmark/comment counters on the row
// itself; they are adjusted in the same transaction as the reaction rows.
type Recipe struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Duration    int       `json:"duration"`
	Servings    int       `json:"servings"`
	Image       *string   `json:"image"`
	Media       *string   `json:"media"`
	Like        int       `json:"like"`
	Bookmark    int       `json:"bookmark"`
	Comment     int       `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	User        *UserSummary `json:"user,omitempty"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
	Steps       []Step       `json:"steps,omitempty"`
}

// Ingredient and Step are owned exclusively by one recipe. Order is the
// 1-based position within the recipe's list; a list update replaces all
// rows and renumbers from 1.
type Ingredient struct {
	ID          int64  `json:"id"`
	RecipeID    int64  `json:"recipe_id"`
	Order       int    `json:"order"`
	Description string `json:"description"`
}

type Step struct {
	ID          int64  `json:"id"`
	RecipeID    int64  `json:"recipe_id"`
	Order       int    `json:"order"`
	Description string `json:"description"`
}
