package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"plateful/mealplan-app/internal/domain"
	"plateful/mealplan-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubShoppingService returns canned results and records the policy of the
// last generate call.
type stubShoppingService struct {
	list      *domain.ShoppingList
	err       error
	gotPolicy service.ConflictPolicy
}

func (s *stubShoppingService) GenerateFromPlan(_ context.Context, _, _ primitive.ObjectID, policy service.ConflictPolicy) (*domain.ShoppingList, error) {
	s.gotPolicy = policy
	return s.list, s.err
}

func (s *stubShoppingService) GetList(_ context.Context, _, _ primitive.ObjectID) (*domain.ShoppingList, error) {
	return s.list, s.err
}

func (s *stubShoppingService) GetMyLists(_ context.Context, _ primitive.ObjectID) ([]domain.ShoppingList, error) {
	if s.list == nil {
		return nil, s.err
	}
	return []domain.ShoppingList{*s.list}, s.err
}

func (s *stubShoppingService) SetItemChecked(_ context.Context, _, _, _ primitive.ObjectID, _ bool) (*domain.ShoppingList, error) {
	return s.list, s.err
}

func (s *stubShoppingService) DeleteList(_ context.Context, _, _ primitive.ObjectID) error {
	return s.err
}

func newShoppingRouter(svc service.ShoppingListService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextUserIDKey, primitive.NewObjectID().Hex())
		c.Set(ContextUserRoleKey, domain.RoleMember)
	})
	handler := NewShoppingHandler(svc)
	router.POST("/shopping-lists/generate", handler.GenerateList)
	return router
}

func TestGenerateListCreated(t *testing.T) {
	listID := primitive.NewObjectID()
	svc := &stubShoppingService{list: &domain.ShoppingList{
		ID:   listID,
		Name: "Week of 2026-02-02",
		Items: []domain.ShoppingListItem{
			{ID: primitive.NewObjectID(), Name: "Pasta", Quantity: 750, Unit: "g"},
		},
	}}
	router := newShoppingRouter(svc)

	body := `{"plan_id":"` + primitive.NewObjectID().Hex() + `","on_conflict":"replace"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/shopping-lists/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, service.ConflictReplace, svc.gotPolicy)

	var resp ShoppingListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, listID.Hex(), resp.ID)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Pasta", resp.Items[0].Name)
}

func TestGenerateListConflictNamesExistingList(t *testing.T) {
	existingID := primitive.NewObjectID()
	svc := &stubShoppingService{err: &service.ListExistsError{ListID: existingID}}
	router := newShoppingRouter(svc)

	body := `{"plan_id":"` + primitive.NewObjectID().Hex() + `"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/shopping-lists/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	// The body names the list in the way so clients can open it or retry
	// with on_conflict=replace.
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, existingID.Hex(), resp["existing_list_id"])
	assert.NotEmpty(t, resp["error"])
}

func TestGenerateListRejectsUnknownPolicy(t *testing.T) {
	svc := &stubShoppingService{}
	router := newShoppingRouter(svc)

	body := `{"plan_id":"` + primitive.NewObjectID().Hex() + `","on_conflict":"merge"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/shopping-lists/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}
