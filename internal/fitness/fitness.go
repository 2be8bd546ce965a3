// Package fitness holds the deterministic arithmetic and lookup tables shared
// by the nutrition and planning tools: BMR via the Mifflin–St Jeor formula,
// activity multipliers, goal-based calorie and protein adjustments, MET
// values, and the macro-split derivation rules.
//
// Every table has a documented default for unrecognised keys; callers depend
// on those exact values, so changing them is a breaking change.
package fitness

import (
	"math"
	"strings"
)

// Energy densities in kcal per gram.
const (
	KcalPerGramProtein = 4
	KcalPerGramCarb    = 4
	KcalPerGramFat     = 9
)

// Fixed daily recommendations.
const (
	// SodiumMaxMg is the fixed daily sodium ceiling in milligrams.
	SodiumMaxMg = 2300

	// FiberGramsFemale and FiberGramsOther are the fixed daily fiber targets.
	FiberGramsFemale = 25
	FiberGramsOther  = 38

	// fatCalorieShare is the fraction of daily calories allotted to fat.
	fatCalorieShare = 0.25

	// sugarCalorieShare is the fraction of daily calories capping added sugar.
	sugarCalorieShare = 0.1

	// waterMlPerKg scales body weight to a daily water target.
	waterMlPerKg = 35
)

// defaultActivityMultiplier is applied when the activity level is not one of
// the five recognised values.
const defaultActivityMultiplier = 1.55

// activityMultipliers maps activity levels to TDEE multipliers.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// BMR computes the basal metabolic rate in kcal/day using the Mifflin–St Jeor
// formula. Any gender other than "male" (case-insensitive) uses the female
// constant.
func BMR(gender string, weightKg, heightCm float64, age int) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if strings.ToLower(gender) == "male" {
		return base + 5
	}
	return base - 161
}

// ActivityMultiplier returns the TDEE multiplier for the given activity level
// (case-insensitive), defaulting to 1.55 for unrecognised values.
func ActivityMultiplier(level string) float64 {
	if m, ok := activityMultipliers[strings.ToLower(level)]; ok {
		return m
	}
	return defaultActivityMultiplier
}

// MaintenanceCalories is BMR scaled by the activity multiplier.
func MaintenanceCalories(gender string, weightKg, heightCm float64, age int, activityLevel string) float64 {
	return BMR(gender, weightKg, heightCm, age) * ActivityMultiplier(activityLevel)
}

// GoalCalorieAdjustment returns the fixed daily calorie delta for a fitness
// goal: lose_weight −500, gain_muscle +300, maintain 0, athletic_performance
// +200. Unrecognised goals adjust by 0.
func GoalCalorieAdjustment(goal string) float64 {
	switch goal {
	case "lose_weight":
		return -500
	case "gain_muscle":
		return 300
	case "maintain":
		return 0
	case "athletic_performance":
		return 200
	}
	return 0
}

// GoalProteinPerKg returns grams of protein per kg of body weight for a
// fitness goal: gain_muscle 1.6, lose_weight 1.2, everything else 1.0.
func GoalProteinPerKg(goal string) float64 {
	switch goal {
	case "gain_muscle":
		return 1.6
	case "lose_weight":
		return 1.2
	}
	return 1.0
}

// defaultMET is applied for unrecognised workout types.
const defaultMET = 7.0

// metValues maps workout types to Metabolic Equivalent of Task values.
var metValues = map[string]float64{
	"strength": 6.0,
	"cardio":   8.0,
	"mixed":    7.0,
	"hiit":     10.0,
}

// MET returns the metabolic equivalent for a workout type
// (case-insensitive), defaulting to 7.0 for unrecognised types.
func MET(workoutType string) float64 {
	if m, ok := metValues[strings.ToLower(workoutType)]; ok {
		return m
	}
	return defaultMET
}

// CaloriesBurned estimates total energy expenditure for a workout:
// MET × weight × hours.
func CaloriesBurned(workoutType string, weightKg float64, durationMin int) float64 {
	return MET(workoutType) * weightKg * (float64(durationMin) / 60)
}

// MacroSplit holds daily macronutrient targets in grams derived from a
// calorie budget: protein fixed by the caller, fat at 25% of calories, and
// carbohydrate absorbing the remainder.
type MacroSplit struct {
	ProteinGrams float64
	FatGrams     float64
	CarbGrams    float64
}

// SplitMacros derives fat and carbohydrate targets from the daily calorie
// budget given a fixed protein allotment.
func SplitMacros(dailyCalories, proteinGrams float64) MacroSplit {
	fatGrams := dailyCalories * fatCalorieShare / KcalPerGramFat
	carbCalories := dailyCalories - proteinGrams*KcalPerGramProtein - fatGrams*KcalPerGramFat
	return MacroSplit{
		ProteinGrams: proteinGrams,
		FatGrams:     fatGrams,
		CarbGrams:    carbCalories / KcalPerGramCarb,
	}
}

// FiberGrams returns the fixed daily fiber target: 25 g for "female"
// (case-insensitive), 38 g otherwise.
func FiberGrams(gender string) float64 {
	if strings.ToLower(gender) == "female" {
		return FiberGramsFemale
	}
	return FiberGramsOther
}

// WaterLiters returns the daily hydration target in liters.
func WaterLiters(weightKg float64) float64 {
	return weightKg * waterMlPerKg / 1000
}

// SugarMaxGrams returns the daily added-sugar ceiling in grams: 10% of
// calories converted at 4 kcal/g.
func SugarMaxGrams(dailyCalories float64) float64 {
	return dailyCalories * sugarCalorieShare / KcalPerGramCarb
}

// MacroPercent returns grams' share of totalCalories as a percentage given
// the macro's energy density, rounded to one decimal.
func MacroPercent(grams, kcalPerGram, totalCalories float64) float64 {
	return Round1(grams * kcalPerGram / totalCalories * 100)
}

// Round1 rounds to one decimal place.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// Round0 rounds to the nearest integer, returned as a float so formatted
// output keeps its trailing ".0".
func Round0(x float64) float64 {
	return math.Round(x)
}
