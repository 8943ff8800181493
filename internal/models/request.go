package models

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ReactionRequest is the body for like/bookmark creation. The acting user
// comes from the verified token, never from the body.
type ReactionRequest struct {
	RecipeID int64 `json:"recipe_id"`
}

type CommentRequest struct {
	RecipeID    int64  `json:"recipe_id"`
	Description string `json:"description"`
}
