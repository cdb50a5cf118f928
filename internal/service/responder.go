// internal/service/responder.go
package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"plateful/mealplan-app/internal/calendar"
	"plateful/mealplan-app/internal/domain"
)

// ruleResponder is a deterministic keyword-driven Responder. It recognizes a
// small set of intents (scaling servings, adjusting cook time, assigning the
// recipe to a plan slot) and answers general questions from the recipe
// fields. It keeps the assistant usable without any external model service.
type ruleResponder struct {
	now func() time.Time
}

// NewRuleResponder creates the default Responder.
func NewRuleResponder() Responder {
	return &ruleResponder{now: time.Now}
}

var (
	servingsPattern = regexp.MustCompile(`(?i)\b(?:make|scale|adjust)?\s*(?:it|this|recipe)?\s*(?:for|to|serve)\s+(\d+)\s*(?:people|servings|portions)?\b`)
	doublePattern   = regexp.MustCompile(`(?i)\b(double|halve|triple)\b`)
	assignPattern   = regexp.MustCompile(`(?i)\b(?:add|assign|put|plan|schedule)\b.*\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	mealPattern     = regexp.MustCompile(`(?i)\b(breakfast|lunch|dinner)\b`)
)

var weekdayIndex = map[string]int{
	"monday": 0, "tuesday": 1, "wednesday": 2, "thursday": 3,
	"friday": 4, "saturday": 5, "sunday": 6,
}

func (r *ruleResponder) Respond(_ context.Context, recipe *domain.Recipe, _ []domain.ChatMessage, message string) (*Reply, error) {
	lower := strings.ToLower(message)

	if reply := r.tryScaleIntent(recipe, message, lower); reply != nil {
		return reply, nil
	}
	if reply := r.tryAssignIntent(recipe, lower); reply != nil {
		return reply, nil
	}
	return r.answerFromRecipe(recipe, lower), nil
}

// tryScaleIntent proposes a servings update when the message asks to resize
// the recipe.
func (r *ruleResponder) tryScaleIntent(recipe *domain.Recipe, message, lower string) *Reply {
	target := 0
	if m := servingsPattern.FindStringSubmatch(message); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			target = n
		}
	}
	if target == 0 {
		if m := doublePattern.FindStringSubmatch(lower); m != nil && recipe.Servings > 0 {
			switch m[1] {
			case "double":
				target = recipe.Servings * 2
			case "triple":
				target = recipe.Servings * 3
			case "halve":
				target = (recipe.Servings + 1) / 2
			}
		}
	}
	if target == 0 || target == recipe.Servings {
		return nil
	}

	factor := 1.0
	if recipe.Servings > 0 {
		factor = float64(target) / float64(recipe.Servings)
	}
	return &Reply{
		Content: fmt.Sprintf("I can scale %q from %d to %d servings, multiplying every ingredient by %.2g. Want me to apply that?",
			recipe.Title, recipe.Servings, target, factor),
		Proposals: []ProposedAction{{
			Kind:    domain.ProposalUpdateRecipe,
			Summary: fmt.Sprintf("Scale to %d servings", target),
			Payload: map[string]any{
				"servings":    target,
				"scaleFactor": factor,
			},
		}},
	}
}

// tryAssignIntent proposes putting the recipe on the weekly plan when the
// message names a weekday. Named days resolve within the current week; a
// day already past resolves to next week.
func (r *ruleResponder) tryAssignIntent(recipe *domain.Recipe, lower string) *Reply {
	m := assignPattern.FindStringSubmatch(lower)
	if m == nil {
		return nil
	}
	dayIndex := weekdayIndex[m[1]]

	mealType := domain.MealDinner
	if mm := mealPattern.FindStringSubmatch(lower); mm != nil {
		mealType = domain.MealType(mm[1])
	}

	now := r.now()
	weekStart := calendar.WeekStartFor(now)
	date := weekStart.AddDate(0, 0, dayIndex)
	if date.Before(calendar.UTCDate(now)) {
		date = date.AddDate(0, 0, 7)
	}

	return &Reply{
		Content: fmt.Sprintf("I can put %q down for %s on %s. Confirm to add it to your plan.",
			recipe.Title, mealType, date.Format("Monday, Jan 2")),
		Proposals: []ProposedAction{{
			Kind:    domain.ProposalAssignToPlan,
			Summary: fmt.Sprintf("Add to plan: %s %s", date.Format(calendar.ISODate), mealType),
			Payload: map[string]any{
				"date":     date.Format(calendar.ISODate),
				"mealType": string(mealType),
			},
		}},
	}
}

// answerFromRecipe handles plain questions with no actionable intent.
func (r *ruleResponder) answerFromRecipe(recipe *domain.Recipe, lower string) *Reply {
	switch {
	case strings.Contains(lower, "how long") || strings.Contains(lower, "cook time") || strings.Contains(lower, "time"):
		if recipe.CookTimeMinutes > 0 {
			return &Reply{Content: fmt.Sprintf("%q takes about %d minutes to cook.", recipe.Title, recipe.CookTimeMinutes)}
		}
		return &Reply{Content: fmt.Sprintf("%q has no cook time recorded yet.", recipe.Title)}
	case strings.Contains(lower, "ingredient"):
		if len(recipe.Ingredients) == 0 {
			return &Reply{Content: fmt.Sprintf("%q has no ingredients listed yet.", recipe.Title)}
		}
		names := make([]string, len(recipe.Ingredients))
		for i, ing := range recipe.Ingredients {
			names[i] = ing.Name
		}
		return &Reply{Content: fmt.Sprintf("You'll need: %s.", strings.Join(names, ", "))}
	case strings.Contains(lower, "difficult") || strings.Contains(lower, "hard"):
		if recipe.Difficulty != "" {
			return &Reply{Content: fmt.Sprintf("%q is rated %s.", recipe.Title, recipe.Difficulty)}
		}
		return &Reply{Content: fmt.Sprintf("%q has no difficulty rating yet.", recipe.Title)}
	}
	return &Reply{Content: fmt.Sprintf("I can answer questions about %q, scale its servings, or add it to your weekly plan. What would you like?", recipe.Title)}
}
