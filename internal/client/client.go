// Package client is a typed Go client for the meal plan HTTP API. It backs
// the week grid UI: fetching plans, assigning recipes to slots and clearing
// them, with DTOs mirroring the server's wire format.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"plateful/mealplan-app/internal/calendar"
	"plateful/mealplan-app/internal/domain"
	"plateful/mealplan-app/internal/planner"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// APIError carries the status code and message of a failed API call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// RecipeSnapshot is the denormalized recipe summary stored on a plan entry.
type RecipeSnapshot struct {
	RecipeID        string `json:"recipe_id"`
	Title           string `json:"title"`
	CookTimeMinutes int    `json:"cook_time_minutes"`
	Servings        int    `json:"servings"`
	Difficulty      string `json:"difficulty,omitempty"`
}

// PlanEntry is one filled slot of a weekly plan.
type PlanEntry struct {
	ID        string          `json:"id"`
	PlanID    string          `json:"plan_id"`
	DayOfWeek int             `json:"day_of_week"` // 0=Monday .. 6=Sunday
	MealType  string          `json:"meal_type"`
	Recipe    *RecipeSnapshot `json:"recipe,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Plan is a weekly meal plan with its entries.
type Plan struct {
	ID        string      `json:"id"`
	WeekStart string      `json:"week_start"` // YYYY-MM-DD, always a Monday
	Entries   []PlanEntry `json:"entries"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Grid reconciles the plan's entries into the 7x3 slot grid the calendar
// page renders. A nil plan yields an all-empty grid.
func (p *Plan) Grid() *planner.WeekGrid {
	if p == nil {
		return planner.BuildWeekGrid(nil)
	}
	entries := make([]domain.MealPlanEntry, len(p.Entries))
	for i, e := range p.Entries {
		entries[i] = e.toDomain()
	}
	return planner.BuildWeekGrid(entries)
}

// toDomain converts a wire entry into the shape the grid consumes. An ID
// that is not valid ObjectID hex decodes to the zero ID; the grid keys
// slots by day and meal type, so slot lookup is unaffected.
func (e PlanEntry) toDomain() domain.MealPlanEntry {
	entry := domain.MealPlanEntry{
		ID:        objectIDFromHex(e.ID),
		PlanID:    objectIDFromHex(e.PlanID),
		DayOfWeek: e.DayOfWeek,
		MealType:  domain.MealType(e.MealType),
		UpdatedAt: e.UpdatedAt,
	}
	if e.Recipe != nil {
		entry.Recipe = &domain.RecipeSnapshot{
			RecipeID:        objectIDFromHex(e.Recipe.RecipeID),
			Title:           e.Recipe.Title,
			CookTimeMinutes: e.Recipe.CookTimeMinutes,
			Servings:        e.Recipe.Servings,
			Difficulty:      e.Recipe.Difficulty,
		}
	}
	return entry
}

func objectIDFromHex(hex string) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

// Client talks to the meal plan API. It is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a Client for the given API base URL (e.g.
// "https://api.example.com/api/v1") and bearer token.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CurrentPlan fetches (creating if needed) the plan for the week
// containing today.
func (c *Client) CurrentPlan(ctx context.Context) (*Plan, error) {
	var plan Plan
	if err := c.do(ctx, http.MethodGet, "/meal-plans/current", nil, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// PlanForWeek fetches (creating if needed) the plan for an explicit week.
// weekStart must be a Monday.
func (c *Client) PlanForWeek(ctx context.Context, weekStart time.Time) (*Plan, error) {
	path := "/meal-plans?week_start=" + weekStart.Format(calendar.ISODate)
	var plan Plan
	if err := c.do(ctx, http.MethodGet, path, nil, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// AssignEntry puts a recipe into the slot named by date and mealType,
// replacing whatever occupied it.
func (c *Client) AssignEntry(ctx context.Context, planID string, date time.Time, mealType, recipeID string) (*PlanEntry, error) {
	body := map[string]string{
		"date":      date.Format(calendar.ISODate),
		"meal_type": mealType,
		"recipe_id": recipeID,
	}
	var entry PlanEntry
	if err := c.do(ctx, http.MethodPut, "/meal-plans/"+planID+"/entries", body, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// RemoveEntry clears a slot.
func (c *Client) RemoveEntry(ctx context.Context, planID, entryID string) error {
	return c.do(ctx, http.MethodDelete, "/meal-plans/"+planID+"/entries/"+entryID, nil, nil)
}

// do performs one JSON round trip. A non-2xx response decodes the server's
// error body into an APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		message := resp.Status
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil && errBody.Error != "" {
			message = errBody.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
