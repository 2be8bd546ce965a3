package planning

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nutrifit/nutrifit/internal/fitness"
	"github.com/nutrifit/nutrifit/internal/tools"
)

// Defaults for suggest_pre_post_workout_meals.
const (
	defaultMealDurationMin = 60
	defaultMealWeightKg    = 70
	defaultMealGoal        = "maintain"
)

type workoutMealsInput struct {
	WorkoutType string  `json:"workout_type" jsonschema:"Type of workout (strength cardio mixed or hiit)"`
	DurationMin int     `json:"duration_min,omitempty" jsonschema:"Workout duration in minutes (default 60)"`
	WeightKg    float64 `json:"weight_kg,omitempty" jsonschema:"Body weight in kilograms (default 70)"`
	Goal        string  `json:"goal,omitempty" jsonschema:"Fitness goal (lose_weight gain_muscle maintain or endurance; default maintain)"`
}

// mealOption is a single suggested meal with its timing window.
type mealOption struct {
	Meal     string   `json:"meal"`
	Foods    []string `json:"foods"`
	Timing   string   `json:"timing"`
	Benefits string   `json:"benefits"`
}

type workoutInfo struct {
	Type                    string  `json:"type"`
	DurationMinutes         int     `json:"duration_minutes"`
	EstimatedCaloriesBurned float64 `json:"estimated_calories_burned"`
	WeightKg                float64 `json:"weight_kg"`
	Goal                    string  `json:"goal"`
}

type mealWindow struct {
	TargetCalories    int          `json:"target_calories"`
	GeneralGuidelines []string     `json:"general_guidelines"`
	MealOptions       []mealOption `json:"meal_options"`
}

type hydrationStrategy struct {
	Before string `json:"before"`
	During string `json:"during"`
	After  string `json:"after"`
}

type workoutMealsResult struct {
	WorkoutInfo       workoutInfo       `json:"workout_info"`
	PreWorkout        mealWindow        `json:"pre_workout"`
	PostWorkout       mealWindow        `json:"post_workout"`
	HydrationStrategy hydrationStrategy `json:"hydration_strategy"`
}

// preWorkoutOptions holds curated pre-workout meals per workout type. Types
// without a dedicated entry fall back to the strength set.
var preWorkoutOptions = map[string][]mealOption{
	"strength": {
		{
			Meal:     "Banana with almond butter",
			Foods:    []string{"1 medium banana", "2 tbsp almond butter"},
			Timing:   "30-60 minutes before",
			Benefits: "Quick carbs for energy, healthy fats for sustained energy",
		},
		{
			Meal:     "Oatmeal with berries",
			Foods:    []string{"1/2 cup oats", "1/2 cup berries", "1 tbsp honey"},
			Timing:   "1-2 hours before",
			Benefits: "Complex carbs for sustained energy",
		},
	},
	"cardio": {
		{
			Meal:     "Toast with jam",
			Foods:    []string{"1 slice whole wheat bread", "1 tbsp jam"},
			Timing:   "30-45 minutes before",
			Benefits: "Quick carbs for immediate energy",
		},
		{
			Meal:     "Greek yogurt with fruit",
			Foods:    []string{"1 cup greek yogurt", "1/2 cup berries"},
			Timing:   "1-2 hours before",
			Benefits: "Protein + carbs for energy and muscle protection",
		},
	},
}

var postWorkoutOptions = map[string][]mealOption{
	"strength": {
		{
			Meal:     "Protein shake with banana",
			Foods:    []string{"1 scoop whey protein", "1 medium banana", "1 cup milk"},
			Timing:   "Within 30 minutes",
			Benefits: "Fast protein for muscle recovery, carbs to replenish glycogen",
		},
		{
			Meal:     "Chicken and rice bowl",
			Foods:    []string{"100g grilled chicken", "1/2 cup cooked rice", "vegetables"},
			Timing:   "Within 60 minutes",
			Benefits: "Complete protein and carbs for recovery",
		},
	},
	"cardio": {
		{
			Meal:     "Chocolate milk",
			Foods:    []string{"1 cup low-fat chocolate milk"},
			Timing:   "Within 30 minutes",
			Benefits: "3:1 carb to protein ratio ideal for recovery",
		},
		{
			Meal:     "Tuna sandwich",
			Foods:    []string{"2 slices whole wheat bread", "1 can tuna", "vegetables"},
			Timing:   "Within 60 minutes",
			Benefits: "Lean protein and complex carbs",
		},
	},
}

// mealCalorieTargets returns the pre and post-workout calorie budgets for a
// goal.
func mealCalorieTargets(goal string) (pre, post int) {
	switch goal {
	case "lose_weight":
		return 100, 150
	case "gain_muscle":
		return 200, 300
	case "endurance":
		return 250, 200
	default:
		return 150, 200
	}
}

func mealOptionsFor(table map[string][]mealOption, workoutType string) []mealOption {
	if opts, ok := table[strings.ToLower(workoutType)]; ok {
		return opts
	}
	return table["strength"]
}

func (t *Tools) handleWorkoutMeals(_ context.Context, _ *mcp.CallToolRequest, in workoutMealsInput) (*mcp.CallToolResult, any, error) {
	durationMin := in.DurationMin
	if durationMin == 0 {
		durationMin = defaultMealDurationMin
	}
	weightKg := in.WeightKg
	if weightKg == 0 {
		weightKg = defaultMealWeightKg
	}
	goal := in.Goal
	if goal == "" {
		goal = defaultMealGoal
	}

	caloriesBurned := fitness.CaloriesBurned(in.WorkoutType, weightKg, durationMin)
	preCalories, postCalories := mealCalorieTargets(goal)

	result := workoutMealsResult{
		WorkoutInfo: workoutInfo{
			Type:                    in.WorkoutType,
			DurationMinutes:         durationMin,
			EstimatedCaloriesBurned: fitness.Round0(caloriesBurned),
			WeightKg:                weightKg,
			Goal:                    goal,
		},
		PreWorkout: mealWindow{
			TargetCalories: preCalories,
			GeneralGuidelines: []string{
				"Eat 1-3 hours before workout",
				"Focus on carbohydrates for energy",
				"Include some protein if eating 2+ hours before",
				"Avoid high fat and fiber foods close to workout",
				"Stay hydrated",
			},
			MealOptions: mealOptionsFor(preWorkoutOptions, in.WorkoutType),
		},
		PostWorkout: mealWindow{
			TargetCalories: postCalories,
			GeneralGuidelines: []string{
				"Eat within 30-60 minutes after workout",
				"Include both protein and carbohydrates",
				"Aim for 3:1 or 4:1 carb to protein ratio",
				"Rehydrate with water or electrolyte drinks",
				"Include anti-inflammatory foods",
			},
			MealOptions: mealOptionsFor(postWorkoutOptions, in.WorkoutType),
		},
		HydrationStrategy: hydrationStrategy{
			Before: "500ml water 2-3 hours before workout",
			During: fmt.Sprintf("%.1fml every 15-20 minutes during workout", math.Round(150*float64(durationMin)/60)),
			After:  fmt.Sprintf("%.1fml to replace fluid losses", math.Round(caloriesBurned*1.5)),
		},
	}
	return tools.JSON(result), nil, nil
}
