package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"plateful/mealplan-app/internal/calendar"
	"plateful/mealplan-app/internal/domain"
	"plateful/mealplan-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubPlanService returns canned results and records the arguments of the
// last call.
type stubPlanService struct {
	plan       *service.PlanWithEntries
	entry      *domain.MealPlanEntry
	err        error
	gotWeek    time.Time
	gotDate    time.Time
	gotMeal    domain.MealType
	gotEntryID primitive.ObjectID
}

func (s *stubPlanService) GetOrCreatePlanForWeek(_ context.Context, _ primitive.ObjectID, weekStart time.Time) (*service.PlanWithEntries, error) {
	s.gotWeek = weekStart
	if !calendar.IsMonday(weekStart) {
		return nil, service.ErrWeekNotMonday
	}
	return s.plan, s.err
}

func (s *stubPlanService) GetCurrentPlan(_ context.Context, _ primitive.ObjectID) (*service.PlanWithEntries, error) {
	return s.plan, s.err
}

func (s *stubPlanService) AssignEntry(_ context.Context, _, _ primitive.ObjectID, date time.Time, mealType domain.MealType, _ primitive.ObjectID) (*domain.MealPlanEntry, error) {
	s.gotDate = date
	s.gotMeal = mealType
	return s.entry, s.err
}

func (s *stubPlanService) RemoveEntry(_ context.Context, _, _ primitive.ObjectID, entryID primitive.ObjectID) error {
	s.gotEntryID = entryID
	return s.err
}

func newPlanRouter(svc service.MealPlanService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	// Inject an authenticated user the way AuthMiddleware would.
	router.Use(func(c *gin.Context) {
		c.Set(ContextUserIDKey, primitive.NewObjectID().Hex())
		c.Set(ContextUserRoleKey, domain.RoleMember)
	})
	handler := NewMealPlanHandler(svc)
	router.GET("/meal-plans/current", handler.GetCurrentPlan)
	router.GET("/meal-plans", handler.GetPlanForWeek)
	router.PUT("/meal-plans/:planId/entries", handler.AssignEntry)
	router.DELETE("/meal-plans/:planId/entries/:entryId", handler.RemoveEntry)
	return router
}

func testPlan() *service.PlanWithEntries {
	planID := primitive.NewObjectID()
	recipeID := primitive.NewObjectID()
	return &service.PlanWithEntries{
		Plan: domain.MealPlan{
			ID:        planID,
			WeekStart: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
		},
		Entries: []domain.MealPlanEntry{
			{
				ID:        primitive.NewObjectID(),
				PlanID:    planID,
				DayOfWeek: 2,
				MealType:  domain.MealDinner,
				Recipe: &domain.RecipeSnapshot{
					RecipeID:        recipeID,
					Title:           "Carbonara",
					CookTimeMinutes: 30,
					Servings:        4,
				},
			},
		},
	}
}

func TestGetPlanForWeekReturnsGrid(t *testing.T) {
	svc := &stubPlanService{plan: testPlan()}
	router := newPlanRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/meal-plans?week_start=2026-02-02", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp MealPlanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2026-02-02", resp.WeekStart)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, 2, resp.Entries[0].DayOfWeek)
	assert.Equal(t, "dinner", resp.Entries[0].MealType)
	assert.Equal(t, "Carbonara", resp.Entries[0].Recipe.Title)
}

func TestGetPlanForWeekValidation(t *testing.T) {
	svc := &stubPlanService{plan: testPlan()}
	router := newPlanRouter(svc)

	cases := []struct {
		name string
		url  string
	}{
		{"missing week_start", "/meal-plans"},
		{"malformed date", "/meal-plans?week_start=feb-2"},
		{"not a monday", "/meal-plans?week_start=2026-02-04"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestAssignEntryRoundTrip(t *testing.T) {
	plan := testPlan()
	svc := &stubPlanService{plan: plan, entry: &plan.Entries[0]}
	router := newPlanRouter(svc)

	body, _ := json.Marshal(AssignEntryRequest{
		Date:     "2026-02-04",
		MealType: "dinner",
		RecipeID: primitive.NewObjectID().Hex(),
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/meal-plans/"+plan.Plan.ID.Hex()+"/entries", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "2026-02-04", svc.gotDate.Format(calendar.ISODate))
	assert.Equal(t, domain.MealDinner, svc.gotMeal)

	var resp PlanEntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "dinner", resp.MealType)
	require.NotNil(t, resp.Recipe)
	assert.Equal(t, 30, resp.Recipe.CookTimeMinutes)
}

func TestAssignEntryRejectsUnknownMealType(t *testing.T) {
	plan := testPlan()
	svc := &stubPlanService{plan: plan, entry: &plan.Entries[0]}
	router := newPlanRouter(svc)

	body, _ := json.Marshal(map[string]string{
		"date":      "2026-02-04",
		"meal_type": "brunch",
		"recipe_id": primitive.NewObjectID().Hex(),
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/meal-plans/"+plan.Plan.ID.Hex()+"/entries", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestRemoveEntryStatusMapping(t *testing.T) {
	plan := testPlan()
	entryID := plan.Entries[0].ID

	svc := &stubPlanService{plan: plan}
	router := newPlanRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/meal-plans/"+plan.Plan.ID.Hex()+"/entries/"+entryID.Hex(), nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, entryID, svc.gotEntryID)

	svc.err = service.ErrEntryNotFound
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/meal-plans/"+plan.Plan.ID.Hex()+"/entries/"+entryID.Hex(), nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
