package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-api/internal/handlers"
	"recipe-api/internal/models"
)

func newLikeRouter(db *fakeDB, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handlers.NewLikesHandler(db)
	router := gin.New()
	authed := router.Group("", asUser(userID))
	authed.GET("/api/like", h.Lookup)
	authed.POST("/api/like", h.Create)
	authed.DELETE("/api/like/:id", h.Delete)
	return router
}

func postJSON(router *gin.Engine, target string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLikeCreateIncrementsCounter(t *testing.T) {
	db := newFakeDB()
	user := db.addUser("rosa")
	recipe := db.addRecipe(user.ID, "Sate Ayam", 5)
	router := newLikeRouter(db, user.ID)

	w := postJSON(router, "/api/like", gin.H{"recipe_id": recipe.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp models.LikeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 6, resp.RecipeLikes)
	assert.Equal(t, user.ID, resp.Like.UserID)
	assert.Equal(t, recipe.ID, resp.Like.RecipeID)
	assert.Equal(t, 6, db.recipes[recipe.ID].Like)
}

func TestLikeDeleteRestoresCounter(t *testing.T) {
	db := newFakeDB()
	user := db.addUser("rosa")
	recipe := db.addRecipe(user.ID, "Sate Ayam", 5)
	router := newLikeRouter(db, user.ID)

	w := postJSON(router, "/api/like", gin.H{"recipe_id": recipe.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.LikeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	req, _ := http.NewRequest("DELETE", "/api/like/3", nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)

	require.Equal(t, http.StatusOK, w2.Code)
	assert.Contains(t, w2.Body.String(), "Like was deleted")
	assert.Equal(t, 5, db.recipes[recipe.ID].Like)
}

func TestLikeCreateMissingRecipeLeavesNothing(t *testing.T) {
	db := newFakeDB()
	user := db.addUser("rosa")
	router := newLikeRouter(db, user.ID)

	w := postJSON(router, "/api/like", gin.H{"recipe_id": 42})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, db.likes)
}

func TestLikeCreateRequiresRecipeID(t *testing.T) {
	db := newFakeDB()
	user := db.addUser("rosa")
	router := newLikeRouter(db, user.ID)

	w := postJSON(router, "/api/like", gin.H{})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp models.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "recipe_id")
}

func TestLikeLookup(t *testing.T) {
	db := newFakeDB()
	user := db.addUser("rosa")
	recipe := db.addRecipe(user.ID, "Sate Ayam", 0)
	router := newLikeRouter(db, user.ID)

	req, _ := http.NewRequest("GET", "/api/like?recipe_id=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	postJSON(router, "/api/like", gin.H{"recipe_id": recipe.ID})

	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)
	var like models.Like
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &like))
	assert.Equal(t, user.ID, like.UserID)
}

func TestLikeDeleteForbiddenForOtherUser(t *testing.T) {
	db := newFakeDB()
	owner := db.addUser("rosa")
	recipe := db.addRecipe(owner.ID, "Sate Ayam", 0)
	router := newLikeRouter(db, owner.ID)
	postJSON(router, "/api/like", gin.H{"recipe_id": recipe.ID})

	other := db.addUser("budi")
	otherRouter := newLikeRouter(db, other.ID)
	req, _ := http.NewRequest("DELETE", "/api/like/3", nil)
	w := httptest.NewRecorder()
	otherRouter.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Len(t, db.likes, 1)
}
