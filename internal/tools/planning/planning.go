// Package planning provides the composite coaching tools that combine the
// nutrition math with the WGER exercise catalog.
//
// Three tools are exported via [Tools.Register]:
//   - "create_fitness_plan"             - full nutrition and workout plan.
//   - "suggest_pre_post_workout_meals"  - meal timing around a workout.
//   - "track_weekly_progress"           - weekly progress analysis.
//
// Exercise suggestions degrade through a fallback chain: the live catalog is
// tried first and a static bodyweight plan serves when it is unreachable.
package planning

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nutrifit/nutrifit/internal/fitness"
	"github.com/nutrifit/nutrifit/internal/observe"
	"github.com/nutrifit/nutrifit/internal/resilience"
	"github.com/nutrifit/nutrifit/internal/tools"
	"github.com/nutrifit/nutrifit/internal/tools/exercise"
	"github.com/nutrifit/nutrifit/internal/upstream"
	"github.com/nutrifit/nutrifit/internal/upstream/wger"
)

// Defaults applied when optional arguments are omitted.
const (
	defaultActivityLevel = "moderate"
	defaultWorkoutDays   = 4
	defaultEquipment     = "gym"

	// exercisesPerGroup bounds the catalog suggestions per muscle group.
	exercisesPerGroup = 3

	// descriptionMaxLen truncates catalog descriptions in plan output.
	descriptionMaxLen = 100
)

// planMuscleGroups lists the groups a plan covers, in output order.
var planMuscleGroups = []string{"chest", "back", "legs", "shoulders", "arms"}

// Tools bundles the planning tool handlers with their dependencies.
type Tools struct {
	wger    *wger.Client
	metrics *observe.Metrics

	// now is swapped in tests to pin projection dates.
	now func() time.Time
}

// New creates the planning tool set.
func New(w *wger.Client, metrics *observe.Metrics) *Tools {
	return &Tools{wger: w, metrics: metrics, now: time.Now}
}

// Register adds all planning tools to s.
func (t *Tools) Register(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "create_fitness_plan",
		Description: "Create a comprehensive fitness plan combining nutrition and workout recommendations",
	}, tools.Instrument(t.metrics, "create_fitness_plan", t.handleFitnessPlan))

	mcp.AddTool(s, &mcp.Tool{
		Name:        "suggest_pre_post_workout_meals",
		Description: "Suggest optimal pre and post-workout meals based on workout type and goals",
	}, tools.Instrument(t.metrics, "suggest_pre_post_workout_meals", t.handleWorkoutMeals))

	mcp.AddTool(s, &mcp.Tool{
		Name:        "track_weekly_progress",
		Description: "Track and analyze weekly fitness progress with recommendations",
	}, tools.Instrument(t.metrics, "track_weekly_progress", t.handleWeeklyProgress))
}

// --- create_fitness_plan ---

type fitnessPlanInput struct {
	Age           int     `json:"age" jsonschema:"Age in years"`
	Gender        string  `json:"gender" jsonschema:"Gender (male or female)"`
	WeightKg      float64 `json:"weight_kg" jsonschema:"Weight in kilograms"`
	HeightCm      float64 `json:"height_cm" jsonschema:"Height in centimeters"`
	Goal          string  `json:"goal" jsonschema:"Fitness goal (lose_weight gain_muscle maintain or athletic_performance)"`
	ActivityLevel string  `json:"activity_level,omitempty" jsonschema:"Current activity level (sedentary light moderate active or very_active; default moderate)"`
	WorkoutDays   int     `json:"workout_days,omitempty" jsonschema:"Number of workout days per week (default 4)"`
	Equipment     string  `json:"equipment,omitempty" jsonschema:"Available equipment (gym home bodyweight or minimal; default gym)"`
}

// planExercise is one exercise suggestion inside a plan day.
type planExercise struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type splitDay struct {
	Focus     string         `json:"focus"`
	Exercises []planExercise `json:"exercises"`
}

type personalProfile struct {
	Age           int     `json:"age"`
	Gender        string  `json:"gender"`
	WeightKg      float64 `json:"weight_kg"`
	HeightCm      float64 `json:"height_cm"`
	BMR           float64 `json:"bmr"`
	Goal          string  `json:"goal"`
	ActivityLevel string  `json:"activity_level"`
}

type dailyCalories struct {
	Maintenance float64 `json:"maintenance"`
	Target      float64 `json:"target"`
	Adjustment  int     `json:"adjustment"`
}

type macroTargets struct {
	Protein       string `json:"protein"`
	Carbohydrates string `json:"carbohydrates"`
	Fat           string `json:"fat"`
}

type sampleMeals struct {
	Breakfast []string `json:"breakfast"`
	Lunch     []string `json:"lunch"`
	Dinner    []string `json:"dinner"`
	Snacks    []string `json:"snacks"`
}

type nutritionPlan struct {
	DailyCalories  dailyCalories `json:"daily_calories"`
	MacroTargets   macroTargets  `json:"macronutrient_targets"`
	SampleMealPlan sampleMeals   `json:"sample_meal_plan"`
	Hydration      string        `json:"hydration"`
}

type workoutPlan struct {
	Frequency         string              `json:"frequency"`
	Equipment         string              `json:"equipment"`
	WeeklySplit       map[string]splitDay `json:"weekly_split"`
	GeneralGuidelines []string            `json:"general_guidelines"`
}

type weeklyGoals struct {
	WeightChange string `json:"weight_change"`
	Strength     string `json:"strength"`
	Measurements string `json:"measurements"`
}

type progressTracking struct {
	WeeklyGoals        weeklyGoals `json:"weekly_goals"`
	RecommendedMetrics []string    `json:"recommended_metrics"`
}

type fitnessPlan struct {
	PersonalProfile  personalProfile  `json:"personal_profile"`
	NutritionPlan    nutritionPlan    `json:"nutrition_plan"`
	WorkoutPlan      workoutPlan      `json:"workout_plan"`
	ProgressTracking progressTracking `json:"progress_tracking"`
}

// staticWorkoutStructure is the bodyweight plan served when the exercise
// catalog is unreachable.
func staticWorkoutStructure() map[string][]planExercise {
	return map[string][]planExercise{
		"chest":     {{Name: "Push-ups", Description: "Classic bodyweight chest exercise"}},
		"back":      {{Name: "Pull-ups", Description: "Upper body pulling exercise"}},
		"legs":      {{Name: "Squats", Description: "Fundamental lower body exercise"}},
		"shoulders": {{Name: "Pike Push-ups", Description: "Bodyweight shoulder exercise"}},
		"arms":      {{Name: "Tricep Dips", Description: "Bodyweight arm exercise"}},
	}
}

// truncateDescription strips markup and caps the description length for the
// compact plan listing. The cap counts runes so a multi-byte character is
// never split.
func truncateDescription(s string) string {
	s = exercise.StripDescription(s)
	if runes := []rune(s); len(runes) > descriptionMaxLen {
		s = string(runes[:descriptionMaxLen])
	}
	return s + "..."
}

// fetchWorkoutStructure builds per-group suggestions from the live catalog.
// A rejected request drops just that group; a transport failure aborts the
// whole fetch so the fallback chain can take over.
func (t *Tools) fetchWorkoutStructure(ctx context.Context) (map[string][]planExercise, error) {
	structure := map[string][]planExercise{}
	for _, group := range planMuscleGroups {
		ids := exercise.MuscleGroups[group]
		page, err := t.wger.Exercises(ctx, wger.ExerciseFilter{MuscleID: ids[0], Limit: exercisesPerGroup})
		if err != nil {
			var statusErr *upstream.StatusError
			if errors.As(err, &statusErr) {
				continue
			}
			return nil, err
		}
		entries := []planExercise{}
		for i, ex := range page.Results {
			if i >= exercisesPerGroup {
				break
			}
			entries = append(entries, planExercise{
				Name:        ex.Name,
				Description: truncateDescription(ex.Description),
			})
		}
		structure[group] = entries
	}
	return structure, nil
}

// firstN returns up to n leading elements of s.
func firstN(s []planExercise, n int) []planExercise {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// after returns the elements of s past index n, or an empty slice.
func after(s []planExercise, n int) []planExercise {
	if len(s) <= n {
		return []planExercise{}
	}
	return s[n:]
}

func concat(a, b []planExercise) []planExercise {
	out := make([]planExercise, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// buildWeeklySplit arranges the per-group suggestions into training days.
func buildWeeklySplit(structure map[string][]planExercise, workoutDays int) map[string]splitDay {
	if workoutDays >= 4 {
		split := map[string]splitDay{
			"day_1": {Focus: "Chest & Triceps", Exercises: concat(structure["chest"], firstN(structure["arms"], 2))},
			"day_2": {Focus: "Back & Biceps", Exercises: concat(structure["back"], after(structure["arms"], 1))},
			"day_3": {Focus: "Legs", Exercises: orEmpty(structure["legs"])},
			"day_4": {Focus: "Shoulders & Core", Exercises: orEmpty(structure["shoulders"])},
		}
		if workoutDays >= 5 {
			split["day_5"] = splitDay{
				Focus:     "Full Body / Cardio",
				Exercises: []planExercise{{Name: "30min cardio", Description: "Choose your preferred cardio activity"}},
			}
		}
		return split
	}
	return map[string]splitDay{
		"day_1": {Focus: "Upper Body", Exercises: concat(structure["chest"], structure["back"])},
		"day_2": {Focus: "Lower Body", Exercises: orEmpty(structure["legs"])},
		"day_3": {Focus: "Full Body", Exercises: concat(structure["shoulders"], structure["arms"])},
	}
}

func orEmpty(s []planExercise) []planExercise {
	if s == nil {
		return []planExercise{}
	}
	return s
}

// macroLine formats a macro target as grams plus its share of the calorie
// budget.
func macroLine(grams, kcalPerGram, targetCalories float64) string {
	return fmt.Sprintf("%.1fg (%.1f%%)",
		fitness.Round1(grams),
		fitness.MacroPercent(grams, kcalPerGram, targetCalories))
}

func (t *Tools) handleFitnessPlan(ctx context.Context, _ *mcp.CallToolRequest, in fitnessPlanInput) (*mcp.CallToolResult, any, error) {
	activityLevel := in.ActivityLevel
	if activityLevel == "" {
		activityLevel = defaultActivityLevel
	}
	workoutDays := in.WorkoutDays
	if workoutDays == 0 {
		workoutDays = defaultWorkoutDays
	}
	equipment := in.Equipment
	if equipment == "" {
		equipment = defaultEquipment
	}

	bmr := fitness.BMR(in.Gender, in.WeightKg, in.HeightCm, in.Age)
	maintenance := bmr * fitness.ActivityMultiplier(activityLevel)
	adjustment := fitness.GoalCalorieAdjustment(in.Goal)
	targetCalories := maintenance + adjustment

	proteinGrams := in.WeightKg * fitness.GoalProteinPerKg(in.Goal)
	macros := fitness.SplitMacros(targetCalories, proteinGrams)

	chain := resilience.NewFallbackChain("wger catalog", t.fetchWorkoutStructure)
	chain.AddFallback("static bodyweight plan", func(context.Context) (map[string][]planExercise, error) {
		return staticWorkoutStructure(), nil
	})
	structure, err := chain.Execute(ctx)
	if err != nil {
		return tools.Text(fmt.Sprintf("Error creating fitness plan: %v", err)), nil, nil
	}

	proteinPortion := math.Round(proteinGrams / 4)
	plan := fitnessPlan{
		PersonalProfile: personalProfile{
			Age:           in.Age,
			Gender:        in.Gender,
			WeightKg:      in.WeightKg,
			HeightCm:      in.HeightCm,
			BMR:           fitness.Round0(bmr),
			Goal:          in.Goal,
			ActivityLevel: activityLevel,
		},
		NutritionPlan: nutritionPlan{
			DailyCalories: dailyCalories{
				Maintenance: fitness.Round0(maintenance),
				Target:      fitness.Round0(targetCalories),
				Adjustment:  int(adjustment),
			},
			MacroTargets: macroTargets{
				Protein:       macroLine(proteinGrams, fitness.KcalPerGramProtein, targetCalories),
				Carbohydrates: macroLine(macros.CarbGrams, fitness.KcalPerGramCarb, targetCalories),
				Fat:           macroLine(macros.FatGrams, fitness.KcalPerGramFat, targetCalories),
			},
			SampleMealPlan: sampleMeals{
				Breakfast: []string{
					"3 eggs scrambled",
					"2 slices whole wheat toast",
					"1 medium banana",
					"1 cup coffee",
				},
				Lunch: []string{
					fmt.Sprintf("%.1fg grilled chicken breast", proteinPortion),
					"1 cup brown rice",
					"1 cup steamed vegetables",
					"1 tbsp olive oil",
				},
				Dinner: []string{
					fmt.Sprintf("%.1fg lean protein (fish/meat)", proteinPortion),
					"1 cup quinoa",
					"Mixed green salad",
					"1 tbsp dressing",
				},
				Snacks: []string{
					"1 cup greek yogurt",
					"1/4 cup nuts",
					"1 apple with 2 tbsp peanut butter",
				},
			},
			Hydration: fmt.Sprintf("%.1f liters water daily", fitness.Round1(fitness.WaterLiters(in.WeightKg))),
		},
		WorkoutPlan: workoutPlan{
			Frequency:   fmt.Sprintf("%d days per week", workoutDays),
			Equipment:   equipment,
			WeeklySplit: buildWeeklySplit(structure, workoutDays),
			GeneralGuidelines: []string{
				"Warm up 5-10 minutes before each workout",
				"Cool down and stretch after each workout",
				"Rest 48-72 hours between training the same muscle group",
				"Progressive overload: gradually increase weight/reps/sets",
				"Listen to your body and rest when needed",
			},
		},
		ProgressTracking: progressTracking{
			WeeklyGoals: weeklyGoals{
				WeightChange: weightChangeGoal(in.Goal),
				Strength:     "Increase weights by 2.5-5% when you can complete all sets with good form",
				Measurements: "Track waist, chest, arms, thighs weekly",
			},
			RecommendedMetrics: []string{
				"Daily weight (same time each day)",
				"Weekly body measurements",
				"Workout performance (weights, reps, sets)",
				"Energy levels (1-10 scale)",
				"Sleep quality (hours and quality)",
			},
		},
	}
	return tools.JSON(plan), nil, nil
}

func weightChangeGoal(goal string) string {
	switch goal {
	case "lose_weight":
		return "0.5-1kg per week"
	case "gain_muscle":
		return "0.25-0.5kg per week"
	default:
		return "maintain current weight"
	}
}
