// Package exercise provides the MCP tools backed by the WGER exercise
// catalog plus the Nutritionix exercise-calorie estimator.
//
// Five tools are exported via [Tools.Register]:
//   - "search_exercises"            - free-text search over the catalog.
//   - "get_exercises_by_muscle"     - exercises targeting a muscle group.
//   - "get_equipment_exercises"     - exercises for a piece of equipment.
//   - "get_workout_templates"       - public workout templates.
//   - "calculate_exercise_calories" - calories burned for a named activity.
//
// All handlers return their payload as text and are safe for concurrent use.
package exercise

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nutrifit/nutrifit/internal/observe"
	"github.com/nutrifit/nutrifit/internal/tools"
	"github.com/nutrifit/nutrifit/internal/upstream/nutritionix"
	"github.com/nutrifit/nutrifit/internal/upstream/wger"
)

// Defaults applied when optional arguments are omitted.
const (
	defaultSearchLimit    = 20
	defaultMuscleLimit    = 15
	defaultEquipmentLimit = 15
	defaultDifficulty     = "intermediate"
	defaultDurationMin    = 30
	defaultWeightKg       = 70

	// equipmentCatalogLimit bounds the equipment list fetched when resolving
	// an equipment name to its catalog ID.
	equipmentCatalogLimit = 50

	// templateFetchLimit bounds the workout template listing.
	templateFetchLimit = 20
)

// MuscleGroups maps the muscle group names accepted by
// get_exercises_by_muscle to WGER muscle IDs.
var MuscleGroups = map[string][]int{
	"chest":     {4},
	"back":      {12, 13},
	"shoulders": {2, 3},
	"arms":      {1, 5, 8},
	"legs":      {10, 11, 7, 9},
	"abs":       {14, 6},
	"core":      {14, 6},
}

// muscleGroupOrder fixes the listing order of group names in the
// invalid-group message.
var muscleGroupOrder = []string{"chest", "back", "shoulders", "arms", "legs", "abs", "core"}

// equipmentFallbackIDs resolves well-known equipment names when the live
// catalog lookup comes up empty.
var equipmentFallbackIDs = map[string]int{
	"dumbbell":   1,
	"barbell":    2,
	"bodyweight": 7,
	"machine":    3,
	"cable":      4,
	"kettlebell": 9,
}

// Tools bundles the exercise tool handlers with their dependencies.
type Tools struct {
	wger    *wger.Client
	nix     *nutritionix.Client
	metrics *observe.Metrics
}

// New creates the exercise tool set.
func New(w *wger.Client, nix *nutritionix.Client, metrics *observe.Metrics) *Tools {
	return &Tools{wger: w, nix: nix, metrics: metrics}
}

// Register adds all exercise tools to s.
func (t *Tools) Register(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "search_exercises",
		Description: "Search for exercises in the WGER database",
	}, tools.Instrument(t.metrics, "search_exercises", t.handleSearchExercises))

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_exercises_by_muscle",
		Description: "Get exercises targeting specific muscle groups",
	}, tools.Instrument(t.metrics, "get_exercises_by_muscle", t.handleExercisesByMuscle))

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_equipment_exercises",
		Description: "Get exercises that can be performed with specific equipment",
	}, tools.Instrument(t.metrics, "get_equipment_exercises", t.handleEquipmentExercises))

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_workout_templates",
		Description: "Get pre-made workout templates from WGER",
	}, tools.Instrument(t.metrics, "get_workout_templates", t.handleWorkoutTemplates))

	mcp.AddTool(s, &mcp.Tool{
		Name:        "calculate_exercise_calories",
		Description: "Calculate calories burned for exercises using the Nutritionix exercise API",
	}, tools.Instrument(t.metrics, "calculate_exercise_calories", t.handleExerciseCalories))
}

// StripDescription removes the paragraph tags WGER wraps descriptions in.
func StripDescription(s string) string {
	s = strings.ReplaceAll(s, "<p>", "")
	return strings.ReplaceAll(s, "</p>", "")
}

// --- search_exercises ---

type searchExercisesInput struct {
	Query string `json:"query" jsonschema:"Exercise search term (e.g. squat or bench press)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results to return (default 20)"`
}

type exerciseEntry struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    int    `json:"category"`
	Muscles     []int  `json:"muscles"`
	Secondary   []int  `json:"muscles_secondary"`
	Equipment   []int  `json:"equipment"`
}

type searchExercisesResult struct {
	Query      string          `json:"query"`
	TotalFound int             `json:"total_found"`
	Exercises  []exerciseEntry `json:"exercises"`
}

func (t *Tools) handleSearchExercises(ctx context.Context, _ *mcp.CallToolRequest, in searchExercisesInput) (*mcp.CallToolResult, any, error) {
	limit := in.Limit
	if limit == 0 {
		limit = defaultSearchLimit
	}

	page, err := t.wger.Exercises(ctx, wger.ExerciseFilter{Search: in.Query, Limit: limit})
	if err != nil {
		return tools.WGERError("searching exercises", err), nil, nil
	}

	result := searchExercisesResult{
		Query:      in.Query,
		TotalFound: page.Count,
		Exercises:  []exerciseEntry{},
	}
	for _, ex := range page.Results {
		result.Exercises = append(result.Exercises, exerciseEntry{
			ID:          ex.ID,
			Name:        ex.Name,
			Description: StripDescription(ex.Description),
			Category:    ex.Category,
			Muscles:     intsOrEmpty(ex.Muscles),
			Secondary:   intsOrEmpty(ex.MusclesSecondary),
			Equipment:   intsOrEmpty(ex.Equipment),
		})
	}
	return tools.JSON(result), nil, nil
}

// intsOrEmpty guards against null slices so JSON output carries [].
func intsOrEmpty(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}

// --- get_exercises_by_muscle ---

type exercisesByMuscleInput struct {
	MuscleGroup string `json:"muscle_group" jsonschema:"Target muscle group (chest back shoulders arms legs abs or core)"`
	Limit       int    `json:"limit,omitempty" jsonschema:"Maximum number of exercises to return (default 15)"`
}

type muscleExerciseEntry struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	PrimaryMuscles   []int  `json:"primary_muscles"`
	SecondaryMuscles []int  `json:"secondary_muscles"`
	Equipment        []int  `json:"equipment"`
}

type exercisesByMuscleResult struct {
	MuscleGroup    string                `json:"muscle_group"`
	TotalExercises int                   `json:"total_exercises"`
	Exercises      []muscleExerciseEntry `json:"exercises"`
}

// availableMuscleGroups returns the accepted group names for the
// invalid-group message.
func availableMuscleGroups() string {
	return strings.Join(muscleGroupOrder, ", ")
}

func (t *Tools) handleExercisesByMuscle(ctx context.Context, _ *mcp.CallToolRequest, in exercisesByMuscleInput) (*mcp.CallToolResult, any, error) {
	limit := in.Limit
	if limit == 0 {
		limit = defaultMuscleLimit
	}

	muscleIDs := MuscleGroups[strings.ToLower(in.MuscleGroup)]
	if len(muscleIDs) == 0 {
		return tools.Text("Invalid muscle group. Available groups: " + availableMuscleGroups()), nil, nil
	}

	// Each muscle ID gets an equal share of the requested budget.
	perMuscle := limit / len(muscleIDs)

	exercises := []muscleExerciseEntry{}
	for _, id := range muscleIDs {
		page, err := t.wger.Exercises(ctx, wger.ExerciseFilter{MuscleID: id, Limit: perMuscle})
		if err != nil {
			return tools.WGERError("getting exercises by muscle", err), nil, nil
		}
		for _, ex := range page.Results {
			exercises = append(exercises, muscleExerciseEntry{
				ID:               ex.ID,
				Name:             ex.Name,
				Description:      StripDescription(ex.Description),
				PrimaryMuscles:   intsOrEmpty(ex.Muscles),
				SecondaryMuscles: intsOrEmpty(ex.MusclesSecondary),
				Equipment:        intsOrEmpty(ex.Equipment),
			})
		}
	}

	total := len(exercises)
	if len(exercises) > limit {
		exercises = exercises[:limit]
	}
	return tools.JSON(exercisesByMuscleResult{
		MuscleGroup:    in.MuscleGroup,
		TotalExercises: total,
		Exercises:      exercises,
	}), nil, nil
}

// --- get_equipment_exercises ---

type equipmentExercisesInput struct {
	EquipmentName string `json:"equipment_name" jsonschema:"Equipment type (e.g. dumbbell barbell bodyweight machine cable kettlebell)"`
	Limit         int    `json:"limit,omitempty" jsonschema:"Maximum number of exercises to return (default 15)"`
}

type equipmentExercisesResult struct {
	Equipment      string                `json:"equipment"`
	TotalExercises int                   `json:"total_exercises"`
	Exercises      []muscleExerciseEntry `json:"exercises"`
}

// resolveEquipmentID finds the catalog ID for an equipment name: first by a
// case-insensitive substring match over the live equipment list, then via
// the static fallback table.
func (t *Tools) resolveEquipmentID(ctx context.Context, name string) (int, error) {
	page, err := t.wger.Equipment(ctx, equipmentCatalogLimit)
	if err != nil {
		return 0, err
	}
	lower := strings.ToLower(name)
	for _, eq := range page.Results {
		if strings.Contains(strings.ToLower(eq.Name), lower) {
			return eq.ID, nil
		}
	}
	return equipmentFallbackIDs[lower], nil
}

func (t *Tools) handleEquipmentExercises(ctx context.Context, _ *mcp.CallToolRequest, in equipmentExercisesInput) (*mcp.CallToolResult, any, error) {
	limit := in.Limit
	if limit == 0 {
		limit = defaultEquipmentLimit
	}

	equipmentID, err := t.resolveEquipmentID(ctx, in.EquipmentName)
	if err != nil {
		return tools.WGERError("getting equipment exercises", err), nil, nil
	}
	if equipmentID == 0 {
		return tools.Text(fmt.Sprintf("Equipment '%s' not found. Try: dumbbell, barbell, bodyweight, machine, cable, kettlebell", in.EquipmentName)), nil, nil
	}

	page, err := t.wger.Exercises(ctx, wger.ExerciseFilter{EquipmentID: equipmentID, Limit: limit})
	if err != nil {
		return tools.WGERError("getting equipment exercises", err), nil, nil
	}

	exercises := []muscleExerciseEntry{}
	for _, ex := range page.Results {
		exercises = append(exercises, muscleExerciseEntry{
			ID:               ex.ID,
			Name:             ex.Name,
			Description:      StripDescription(ex.Description),
			PrimaryMuscles:   intsOrEmpty(ex.Muscles),
			SecondaryMuscles: intsOrEmpty(ex.MusclesSecondary),
			Equipment:        intsOrEmpty(ex.Equipment),
		})
	}
	return tools.JSON(equipmentExercisesResult{
		Equipment:      in.EquipmentName,
		TotalExercises: len(exercises),
		Exercises:      exercises,
	}), nil, nil
}

// --- get_workout_templates ---

type workoutTemplatesInput struct {
	Difficulty string `json:"difficulty,omitempty" jsonschema:"Workout difficulty (beginner intermediate or advanced; default intermediate)"`
}

type workoutEntry struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	CreationDate *string `json:"creation_date"`
	Description  string  `json:"description"`
}

type workoutTemplatesResult struct {
	Difficulty        string         `json:"difficulty"`
	AvailableWorkouts int            `json:"available_workouts"`
	Workouts          []workoutEntry `json:"workouts"`
}

func (t *Tools) handleWorkoutTemplates(ctx context.Context, _ *mcp.CallToolRequest, in workoutTemplatesInput) (*mcp.CallToolResult, any, error) {
	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = defaultDifficulty
	}

	page, err := t.wger.Workouts(ctx, templateFetchLimit)
	if err != nil {
		return tools.WGERError("getting workout templates", err), nil, nil
	}

	// The public workout listing carries no difficulty attribute; the
	// requested difficulty is echoed so clients can keep their context.
	workouts := []workoutEntry{}
	for _, w := range page.Results {
		name := w.Name
		if name == "" {
			name = fmt.Sprintf("Workout %d", w.ID)
		}
		workouts = append(workouts, workoutEntry{
			ID:           w.ID,
			Name:         name,
			CreationDate: w.CreationDate,
			Description:  w.Comment,
		})
	}
	return tools.JSON(workoutTemplatesResult{
		Difficulty:        difficulty,
		AvailableWorkouts: len(workouts),
		Workouts:          workouts,
	}), nil, nil
}

// --- calculate_exercise_calories ---

type exerciseCaloriesInput struct {
	ExerciseName string  `json:"exercise_name" jsonschema:"Name of the exercise (e.g. running or cycling)"`
	DurationMin  int     `json:"duration_min,omitempty" jsonschema:"Duration in minutes (default 30)"`
	WeightKg     float64 `json:"weight_kg,omitempty" jsonschema:"Body weight in kilograms (default 70)"`
}

type exerciseCalorieEntry struct {
	Name         *string  `json:"name"`
	DurationMin  *float64 `json:"duration_min"`
	MET          *float64 `json:"met"`
	Calories     *float64 `json:"nf_calories"`
	UserWeightKg *float64 `json:"user_weight_kg"`
}

type exerciseCaloriesResult struct {
	Query               string                 `json:"query"`
	TotalCaloriesBurned float64                `json:"total_calories_burned"`
	Exercises           []exerciseCalorieEntry `json:"exercises"`
}

func (t *Tools) handleExerciseCalories(ctx context.Context, _ *mcp.CallToolRequest, in exerciseCaloriesInput) (*mcp.CallToolResult, any, error) {
	durationMin := in.DurationMin
	if durationMin == 0 {
		durationMin = defaultDurationMin
	}
	weightKg := in.WeightKg
	if weightKg == 0 {
		weightKg = defaultWeightKg
	}

	// The duration is prefixed only when it deviates from the default, so
	// "30 minutes running" stays just "running".
	query := in.ExerciseName
	if durationMin != defaultDurationMin {
		query = fmt.Sprintf("%d minutes %s", durationMin, in.ExerciseName)
	}

	data, err := t.nix.NaturalExercise(ctx, query, weightKg)
	if err != nil {
		return tools.NutritionixError("calculating exercise calories", err), nil, nil
	}
	if len(data.Exercises) == 0 {
		return tools.Text("No exercise information found for: " + query), nil, nil
	}

	result := exerciseCaloriesResult{
		Query:     query,
		Exercises: []exerciseCalorieEntry{},
	}
	for _, ex := range data.Exercises {
		result.Exercises = append(result.Exercises, exerciseCalorieEntry{
			Name:         ex.Name,
			DurationMin:  ex.DurationMin,
			MET:          ex.MET,
			Calories:     ex.Calories,
			UserWeightKg: ex.UserWeightKg,
		})
		if ex.Calories != nil {
			result.TotalCaloriesBurned += *ex.Calories
		}
	}
	return tools.JSON(result), nil, nil
}
