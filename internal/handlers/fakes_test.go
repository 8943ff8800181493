package handlers_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"recipe-api/internal/database"
	"recipe-api/internal/middleware"
	"recipe-api/internal/models"
)

// fakeDB is an in-memory stand-in for *database.Client honoring the same
// contracts: reaction create/delete moves the parent counter with the
// row, and a missing recipe persists nothing.
type fakeDB struct {
	nextID int64

	users     map[int64]*models.User
	recipes   map[int64]*models.Recipe
	children  map[int64]childLists
	likes     map[int64]*models.Like
	bookmarks map[int64]*models.Bookmark
	comments  map[int64]*models.Comment
	tokens    map[string]int64
}

type childLists struct {
	ingredients []models.Ingredient
	steps       []models.Step
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:     make(map[int64]*models.User),
		recipes:   make(map[int64]*models.Recipe),
		children:  make(map[int64]childLists),
		likes:     make(map[int64]*models.Like),
		bookmarks: make(map[int64]*models.Bookmark),
		comments:  make(map[int64]*models.Comment),
		tokens:    make(map[string]int64),
	}
}

func (f *fakeDB) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeDB) addUser(name string) *models.User {
	user := &models.User{ID: f.id(), Name: name, Email: fmt.Sprintf("%s@example.com", name)}
	f.users[user.ID] = user
	return user
}

func (f *fakeDB) addRecipe(userID int64, name string, likes int) *models.Recipe {
	recipe := &models.Recipe{
		ID:        f.id(),
		UserID:    userID,
		Name:      name,
		Duration:  30,
		Servings:  2,
		Like:      likes,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.recipes[recipe.ID] = recipe
	return recipe
}

func (f *fakeDB) CreateRecipe(p database.CreateRecipeParams) (*models.Recipe, error) {
	recipe := &models.Recipe{
		ID:          f.id(),
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		Duration:    p.Duration,
		Servings:    p.Servings,
		Image:       &p.Image,
		Media:       p.Media,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.recipes[recipe.ID] = recipe
	f.setChildren(recipe.ID, p.Ingredients, p.Steps)

	out := *recipe
	lists := f.children[recipe.ID]
	out.Ingredients = lists.ingredients
	out.Steps = lists.steps
	return &out, nil
}

func (f *fakeDB) setChildren(recipeID int64, ingredients []models.Ingredient, steps []models.Step) {
	lists := f.children[recipeID]
	if ingredients != nil {
		lists.ingredients = make([]models.Ingredient, len(ingredients))
		for i, ing := range ingredients {
			ing.ID = f.id()
			ing.RecipeID = recipeID
			lists.ingredients[i] = ing
		}
	}
	if steps != nil {
		lists.steps = make([]models.Step, len(steps))
		for i, step := range steps {
			step.ID = f.id()
			step.RecipeID = recipeID
			lists.steps[i] = step
		}
	}
	f.children[recipeID] = lists
}

func (f *fakeDB) RecipeByID(id int64) (*models.Recipe, error) {
	recipe, ok := f.recipes[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	out := *recipe
	return &out, nil
}

func (f *fakeDB) RecipeDetail(id int64) (*models.Recipe, error) {
	recipe, err := f.RecipeByID(id)
	if err != nil {
		return nil, err
	}
	if owner, ok := f.users[recipe.UserID]; ok {
		recipe.User = &models.UserSummary{ID: owner.ID, Name: owner.Name, Image: owner.Image}
	}
	lists := f.children[id]
	recipe.Ingredients = append([]models.Ingredient{}, lists.ingredients...)
	recipe.Steps = append([]models.Step{}, lists.steps...)
	sort.Slice(recipe.Ingredients, func(i, j int) bool {
		return recipe.Ingredients[i].Order < recipe.Ingredients[j].Order
	})
	sort.Slice(recipe.Steps, func(i, j int) bool {
		return recipe.Steps[i].Order < recipe.Steps[j].Order
	})
	return recipe, nil
}

func (f *fakeDB) UpdateRecipe(id int64, p database.UpdateRecipeParams) (*models.Recipe, error) {
	recipe, ok := f.recipes[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	if p.Name != nil {
		recipe.Name = *p.Name
	}
	if p.Description != nil {
		recipe.Description = *p.Description
	}
	if p.Duration != nil {
		recipe.Duration = *p.Duration
	}
	if p.Servings != nil {
		recipe.Servings = *p.Servings
	}
	if p.Image != nil {
		recipe.Image = p.Image
	}
	if p.Media != nil {
		recipe.Media = p.Media
	}
	recipe.UpdatedAt = time.Now()
	f.setChildren(id, p.Ingredients, p.Steps)

	out := *recipe
	return &out, nil
}

func (f *fakeDB) DeleteRecipe(id int64) error {
	if _, ok := f.recipes[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.recipes, id)
	delete(f.children, id)
	return nil
}

func (f *fakeDB) ListRecipes(page, perPage int) (*models.Page[models.Recipe], error) {
	recipes := f.allRecipes()
	return models.NewPage(recipes, page, perPage, len(recipes)), nil
}

func (f *fakeDB) allRecipes() []models.Recipe {
	var recipes []models.Recipe
	for _, r := range f.recipes {
		recipes = append(recipes, *r)
	}
	sort.Slice(recipes, func(i, j int) bool { return recipes[i].ID > recipes[j].ID })
	return recipes
}

func (f *fakeDB) UserRecipes(userID int64) ([]models.Recipe, error) {
	var recipes []models.Recipe
	for _, r := range f.allRecipes() {
		if r.UserID == userID {
			recipes = append(recipes, r)
		}
	}
	return recipes, nil
}

func (f *fakeDB) BestRecipes(limit int) ([]models.Recipe, error) {
	recipes := f.allRecipes()
	sort.Slice(recipes, func(i, j int) bool { return recipes[i].Like > recipes[j].Like })
	if len(recipes) > limit {
		recipes = recipes[:limit]
	}
	return recipes, nil
}

func (f *fakeDB) SearchRecipes(query string, page, perPage int) (*models.Page[models.Recipe], error) {
	var matched []models.Recipe
	for _, r := range f.allRecipes() {
		if query == "" || containsFold(r.Name, query) || containsFold(r.Description, query) {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Like > matched[j].Like })
	return models.NewPage(matched, page, perPage, len(matched)), nil
}

func (f *fakeDB) FindLike(userID, recipeID int64) (*models.Like, error) {
	for _, like := range f.likes {
		if like.UserID == userID && like.RecipeID == recipeID {
			return like, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeDB) CreateLike(userID, recipeID int64) (*models.Like, int, error) {
	recipe, ok := f.recipes[recipeID]
	if !ok {
		return nil, 0, database.ErrRecipeNotFound
	}
	like := &models.Like{ID: f.id(), UserID: userID, RecipeID: recipeID, CreatedAt: time.Now()}
	f.likes[like.ID] = like
	recipe.Like++
	return like, recipe.Like, nil
}

func (f *fakeDB) LikeByID(id int64) (*models.Like, error) {
	like, ok := f.likes[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return like, nil
}

func (f *fakeDB) DeleteLike(id int64) error {
	like, ok := f.likes[id]
	if !ok {
		return database.ErrNotFound
	}
	f.recipes[like.RecipeID].Like--
	delete(f.likes, id)
	return nil
}

func (f *fakeDB) FindBookmark(userID, recipeID int64) (*models.Bookmark, error) {
	for _, bookmark := range f.bookmarks {
		if bookmark.UserID == userID && bookmark.RecipeID == recipeID {
			return bookmark, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeDB) ListUserBookmarks(userID int64) ([]models.Bookmark, error) {
	var bookmarks []models.Bookmark
	for _, b := range f.bookmarks {
		if b.UserID != userID {
			continue
		}
		out := *b
		if recipe, ok := f.recipes[b.RecipeID]; ok {
			r := *recipe
			out.Recipe = &r
		}
		bookmarks = append(bookmarks, out)
	}
	sort.Slice(bookmarks, func(i, j int) bool { return bookmarks[i].ID > bookmarks[j].ID })
	return bookmarks, nil
}

func (f *fakeDB) CreateBookmark(userID, recipeID int64) (*models.Bookmark, int, error) {
	recipe, ok := f.recipes[recipeID]
	if !ok {
		return nil, 0, database.ErrRecipeNotFound
	}
	bookmark := &models.Bookmark{ID: f.id(), UserID: userID, RecipeID: recipeID, CreatedAt: time.Now()}
	f.bookmarks[bookmark.ID] = bookmark
	recipe.Bookmark++
	return bookmark, recipe.Bookmark, nil
}

func (f *fakeDB) BookmarkByID(id int64) (*models.Bookmark, error) {
	bookmark, ok := f.bookmarks[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return bookmark, nil
}

func (f *fakeDB) DeleteBookmark(id int64) error {
	bookmark, ok := f.bookmarks[id]
	if !ok {
		return database.ErrNotFound
	}
	f.recipes[bookmark.RecipeID].Bookmark--
	delete(f.bookmarks, id)
	return nil
}

func (f *fakeDB) ListComments(recipeID int64, page, perPage int) (*models.Page[models.Comment], error) {
	var comments []models.Comment
	for _, c := range f.comments {
		if c.RecipeID != recipeID {
			continue
		}
		out := *c
		if user, ok := f.users[c.UserID]; ok {
			out.User = &models.UserSummary{ID: user.ID, Name: user.Name, Image: user.Image}
		}
		comments = append(comments, out)
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID > comments[j].ID })
	total := len(comments)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return models.NewPage(comments[start:end], page, perPage, total), nil
}

func (f *fakeDB) CreateComment(userID, recipeID int64, description string) (*models.Comment, int, error) {
	recipe, ok := f.recipes[recipeID]
	if !ok {
		return nil, 0, database.ErrRecipeNotFound
	}
	comment := &models.Comment{
		ID: f.id(), UserID: userID, RecipeID: recipeID,
		Description: description, CreatedAt: time.Now(),
	}
	f.comments[comment.ID] = comment
	recipe.Comment++
	return comment, recipe.Comment, nil
}

func (f *fakeDB) CommentByID(id int64) (*models.Comment, error) {
	comment, ok := f.comments[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return comment, nil
}

func (f *fakeDB) DeleteComment(id int64) error {
	comment, ok := f.comments[id]
	if !ok {
		return database.ErrNotFound
	}
	f.recipes[comment.RecipeID].Comment--
	delete(f.comments, id)
	return nil
}

func (f *fakeDB) CreateUser(name, email, passwordHash string) (*models.User, error) {
	user := &models.User{
		ID: f.id(), Name: name, Email: email, Password: passwordHash,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeDB) UserByEmail(email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeDB) UserByID(id int64) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return user, nil
}

func (f *fakeDB) UpdateUser(id int64, name string, image *string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	user.Name = name
	if image != nil {
		user.Image = image
	}
	out := *user
	return &out, nil
}

func (f *fakeDB) CreateToken(jti string, userID int64) error {
	f.tokens[jti] = userID
	return nil
}

func (f *fakeDB) TokenExists(jti string) (bool, error) {
	_, ok := f.tokens[jti]
	return ok, nil
}

func (f *fakeDB) DeleteToken(jti string) error {
	delete(f.tokens, jti)
	return nil
}

type fakeStorage struct {
	saved   map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: make(map[string][]byte)}
}

func (s *fakeStorage) Save(path string, data []byte, _ string) (string, error) {
	s.saved[path] = data
	return path, nil
}

func (s *fakeStorage) Delete(path string) error {
	s.deleted = append(s.deleted, path)
	return nil
}

func (s *fakeStorage) PublicURL(path string) string {
	return "/storage/" + path
}

// asUser stands in for the auth middleware.
func asUser(id int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, id)
		c.Next()
	}
}

func containsFold(haystack, needle string) bool {
	return bytes.Contains(bytes.ToLower([]byte(haystack)), bytes.ToLower([]byte(needle)))
}

// multipartForm builds a multipart body with repeated fields and an
// optional image file.
func multipartForm(fields map[string][]string, imageName string, imageData []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, values := range fields {
		for _, value := range values {
			writer.WriteField(name, value)
		}
	}
	if imageName != "" {
		part, _ := writer.CreateFormFile("image", imageName)
		part.Write(imageData)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func multipartRequest(method, target string, fields map[string][]string, imageName string, imageData []byte) *http.Request {
	body, contentType := multipartForm(fields, imageName, imageData)
	req, _ := http.NewRequest(method, target, body)
	req.Header.Set("Content-Type", contentType)
	return req
}
