package planning

import (
	"context"
	"math"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nutrifit/nutrifit/internal/fitness"
	"github.com/nutrifit/nutrifit/internal/tools"
)

// Weekly pacing assumptions for track_weekly_progress.
const (
	idealWeeklyLossKg = 0.5
	idealWeeklyGainKg = 0.25

	// recommendedWorkouts is the weekly workout count progress is scored
	// against.
	recommendedWorkouts = 4
)

type weeklyProgressInput struct {
	CurrentWeight           float64 `json:"current_weight" jsonschema:"Current weight in kg"`
	TargetWeight            float64 `json:"target_weight" jsonschema:"Target weight in kg"`
	WeeklyWorkoutsCompleted int     `json:"weekly_workouts_completed" jsonschema:"Number of workouts completed this week"`
	Goal                    string  `json:"goal,omitempty" jsonschema:"Fitness goal (lose_weight gain_muscle or maintain; default lose_weight)"`
}

type currentStatus struct {
	CurrentWeightKg    float64 `json:"current_weight_kg"`
	TargetWeightKg     float64 `json:"target_weight_kg"`
	WeightDifferenceKg float64 `json:"weight_difference_kg"`
	Goal               string  `json:"goal"`
	ProgressStatus     string  `json:"progress_status"`
}

type weeklyPerformance struct {
	WorkoutsCompleted    int     `json:"workouts_completed"`
	WorkoutsRecommended  int     `json:"workouts_recommended"`
	CompletionPercentage float64 `json:"completion_percentage"`
	WorkoutStatus        string  `json:"workout_status"`
}

type projections struct {
	EstimatedWeeksToGoal int    `json:"estimated_weeks_to_goal"`
	TargetDate           string `json:"target_date"`
}

type nextWeekTargets struct {
	WeightTarget  float64  `json:"weight_target"`
	WorkoutTarget int      `json:"workout_target"`
	FocusAreas    []string `json:"focus_areas"`
}

type progressSummary struct {
	CurrentStatus     currentStatus     `json:"current_status"`
	WeeklyPerformance weeklyPerformance `json:"weekly_performance"`
	Projections       projections       `json:"projections"`
	Recommendations   []string          `json:"recommendations"`
	NextWeekTargets   nextWeekTargets   `json:"next_week_targets"`
}

func (t *Tools) handleWeeklyProgress(_ context.Context, _ *mcp.CallToolRequest, in weeklyProgressInput) (*mcp.CallToolResult, any, error) {
	goal := in.Goal
	if goal == "" {
		goal = "lose_weight"
	}

	weightDifference := in.CurrentWeight - in.TargetWeight

	var (
		progressStatus string
		weeksToGoal    int
		weightTarget   float64
	)
	switch goal {
	case "lose_weight":
		progressStatus = "Target reached"
		if math.Abs(weightDifference) > 0 {
			progressStatus = "On track"
		}
		if weightDifference > 0 {
			weeksToGoal = int(math.Max(1, math.Round(weightDifference/idealWeeklyLossKg)))
		}
		weightTarget = in.CurrentWeight - idealWeeklyLossKg
	case "gain_muscle":
		progressStatus = "Target reached"
		if weightDifference < 0 {
			progressStatus = "On track"
			weeksToGoal = int(math.Max(1, math.Round(math.Abs(weightDifference)/idealWeeklyGainKg)))
		}
		weightTarget = in.CurrentWeight + idealWeeklyGainKg
	default:
		progressStatus = "Adjustment needed"
		if math.Abs(weightDifference) <= 1 {
			progressStatus = "Maintaining"
		}
		weightTarget = in.CurrentWeight
	}

	workoutProgress := float64(in.WeeklyWorkoutsCompleted) / recommendedWorkouts * 100
	var workoutStatus string
	switch {
	case workoutProgress >= 100:
		workoutStatus = "Excellent - exceeded target"
	case workoutProgress >= 75:
		workoutStatus = "Good - on track"
	case workoutProgress >= 50:
		workoutStatus = "Fair - room for improvement"
	default:
		workoutStatus = "Poor - need to increase frequency"
	}

	recommendations := []string{}
	if in.WeeklyWorkoutsCompleted < recommendedWorkouts {
		recommendations = append(recommendations, "Increase workout frequency to reach your goals faster")
	}
	if goal == "lose_weight" && weightDifference > 0 {
		recommendations = append(recommendations, "Consider reducing daily calories by 100-200 or increasing cardio")
	} else if goal == "gain_muscle" && weightDifference < -1 {
		recommendations = append(recommendations, "You may be gaining weight too quickly - ensure it's muscle, not fat")
	}
	if workoutProgress < 75 {
		recommendations = append(recommendations, "Try to maintain consistency with your workout schedule")
	}

	targetDate := "Target achieved"
	if weeksToGoal > 0 {
		targetDate = t.now().Add(time.Duration(weeksToGoal) * 7 * 24 * time.Hour).Format("2006-01-02")
	}

	summary := progressSummary{
		CurrentStatus: currentStatus{
			CurrentWeightKg:    in.CurrentWeight,
			TargetWeightKg:     in.TargetWeight,
			WeightDifferenceKg: fitness.Round1(weightDifference),
			Goal:               goal,
			ProgressStatus:     progressStatus,
		},
		WeeklyPerformance: weeklyPerformance{
			WorkoutsCompleted:    in.WeeklyWorkoutsCompleted,
			WorkoutsRecommended:  recommendedWorkouts,
			CompletionPercentage: fitness.Round1(workoutProgress),
			WorkoutStatus:        workoutStatus,
		},
		Projections: projections{
			EstimatedWeeksToGoal: weeksToGoal,
			TargetDate:           targetDate,
		},
		Recommendations: recommendations,
		NextWeekTargets: nextWeekTargets{
			WeightTarget:  weightTarget,
			WorkoutTarget: recommendedWorkouts,
			FocusAreas: []string{
				"Maintain consistent workout schedule",
				"Track food intake accurately",
				"Get adequate sleep (7-9 hours)",
				"Stay hydrated",
				"Monitor energy levels",
			},
		},
	}
	return tools.JSON(summary), nil, nil
}
