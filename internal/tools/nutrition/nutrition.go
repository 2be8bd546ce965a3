// Package nutrition provides the MCP tools backed by the Nutritionix food
// database: food search, per-food nutrient reports, side-by-side comparison,
// whole-meal analysis, and daily-needs calculation.
//
// Five tools are exported via [Tools.Register]:
//   - "search_foods"          - instant search over common and branded foods.
//   - "get_food_nutrients"    - detailed nutrient report for a single food.
//   - "compare_foods"         - side-by-side comparison of two foods.
//   - "analyze_meal"          - aggregated totals for a list of foods.
//   - "calculate_daily_needs" - calorie and macro targets from personal data.
//
// All handlers return their payload as text and are safe for concurrent use.
package nutrition

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nutrifit/nutrifit/internal/fitness"
	"github.com/nutrifit/nutrifit/internal/observe"
	"github.com/nutrifit/nutrifit/internal/tools"
	"github.com/nutrifit/nutrifit/internal/upstream/nutritionix"
)

// Defaults applied when optional arguments are omitted.
const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
	defaultMealName    = "Custom Meal"
)

// Tools bundles the nutrition tool handlers with their dependencies.
type Tools struct {
	nix     *nutritionix.Client
	metrics *observe.Metrics
}

// New creates the nutrition tool set. metrics may not be nil; pass
// [observe.DefaultMetrics] outside of tests.
func New(nix *nutritionix.Client, metrics *observe.Metrics) *Tools {
	return &Tools{nix: nix, metrics: metrics}
}

// Register adds all nutrition tools to s.
func (t *Tools) Register(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "search_foods",
		Description: "Search for foods using the Nutritionix database",
	}, tools.Instrument(t.metrics, "search_foods", t.handleSearchFoods))

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_food_nutrients",
		Description: "Get detailed nutritional information for a specific food",
	}, tools.Instrument(t.metrics, "get_food_nutrients", t.handleGetFoodNutrients))

	mcp.AddTool(s, &mcp.Tool{
		Name:        "compare_foods",
		Description: "Compare nutritional information between two foods side by side",
	}, tools.Instrument(t.metrics, "compare_foods", t.handleCompareFoods))

	mcp.AddTool(s, &mcp.Tool{
		Name:        "analyze_meal",
		Description: "Analyze the total nutritional content of a complete meal",
	}, tools.Instrument(t.metrics, "analyze_meal", t.handleAnalyzeMeal))

	mcp.AddTool(s, &mcp.Tool{
		Name:        "calculate_daily_needs",
		Description: "Calculate daily caloric and nutritional needs based on personal characteristics",
	}, tools.Instrument(t.metrics, "calculate_daily_needs", t.handleCalculateDailyNeeds))
}

// naturalQuery builds the natural-language query sent to Nutritionix. The
// quantity and unit are prefixed only when they deviate from the defaults, so
// "1 serving apple" stays just "apple".
func naturalQuery(food string, quantity float64, unit string) string {
	if quantity != 1.0 || unit != "serving" {
		return formatQuantity(quantity) + " " + unit + " " + food
	}
	return food
}

// formatQuantity renders a quantity as a decimal literal, keeping a trailing
// ".0" on whole numbers so a quantity of 2 reads "2.0 cups rice" upstream.
func formatQuantity(q float64) string {
	s := strconv.FormatFloat(q, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// amount renders a numeric nutrient value without trailing zeros.
func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// calorieValue reads the nullable calorie count with a zero default for the
// arithmetic paths. Output fields keep the pointer so null survives.
func calorieValue(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// --- search_foods ---

type searchFoodsInput struct {
	Query string `json:"query" jsonschema:"The food search term (e.g. apple or chicken breast)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results to return (default 10 max 50)"`
}

type commonFoodEntry struct {
	FoodName    *string `json:"food_name"`
	ServingUnit *string `json:"serving_unit"`
	TagName     *string `json:"tag_name"`
	TagID       *string `json:"tag_id"`
}

type brandedFoodEntry struct {
	FoodName    *string  `json:"food_name"`
	BrandName   *string  `json:"brand_name"`
	ServingUnit *string  `json:"serving_unit"`
	Calories    *float64 `json:"nf_calories"`
	NixBrandID  *string  `json:"nix_brand_id"`
	NixItemID   *string  `json:"nix_item_id"`
}

type searchFoodsResult struct {
	Query        string             `json:"query"`
	CommonFoods  []commonFoodEntry  `json:"common_foods"`
	BrandedFoods []brandedFoodEntry `json:"branded_foods"`
}

func (t *Tools) handleSearchFoods(ctx context.Context, _ *mcp.CallToolRequest, in searchFoodsInput) (*mcp.CallToolResult, any, error) {
	limit := in.Limit
	if limit == 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	data, err := t.nix.InstantSearch(ctx, in.Query)
	if err != nil {
		return tools.NutritionixError("searching foods", err), nil, nil
	}

	// Each list gets half the budget.
	perList := limit / 2
	if perList < 0 {
		perList = 0
	}

	result := searchFoodsResult{
		Query:        in.Query,
		CommonFoods:  []commonFoodEntry{},
		BrandedFoods: []brandedFoodEntry{},
	}
	for _, f := range truncate(data.Common, perList) {
		result.CommonFoods = append(result.CommonFoods, commonFoodEntry{
			FoodName:    f.FoodName,
			ServingUnit: f.ServingUnit,
			TagName:     f.TagName,
			TagID:       f.TagID,
		})
	}
	for _, f := range truncate(data.Branded, perList) {
		result.BrandedFoods = append(result.BrandedFoods, brandedFoodEntry{
			FoodName:    f.FoodName,
			BrandName:   f.BrandName,
			ServingUnit: f.ServingUnit,
			Calories:    f.Calories,
			NixBrandID:  f.NixBrandID,
			NixItemID:   f.NixItemID,
		})
	}
	return tools.JSON(result), nil, nil
}

// truncate returns at most n leading elements of s.
func truncate(s []nutritionix.Food, n int) []nutritionix.Food {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// --- get_food_nutrients ---

type getFoodNutrientsInput struct {
	FoodName string  `json:"food_name" jsonschema:"Name of the food (e.g. 1 large apple or 100g chicken breast)"`
	Quantity float64 `json:"quantity,omitempty" jsonschema:"Amount of the food (default 1.0)"`
	Unit     string  `json:"unit,omitempty" jsonschema:"Unit of measurement (default serving)"`
}

type macroBreakdown struct {
	TotalFat          string `json:"total_fat"`
	SaturatedFat      string `json:"saturated_fat"`
	Cholesterol       string `json:"cholesterol"`
	Sodium            string `json:"sodium"`
	TotalCarbohydrate string `json:"total_carbohydrate"`
	DietaryFiber      string `json:"dietary_fiber"`
	Sugars            string `json:"sugars"`
	Protein           string `json:"protein"`
}

type vitaminBreakdown struct {
	Potassium  string `json:"potassium"`
	Phosphorus string `json:"phosphorus"`
}

type nutrientReport struct {
	FoodName           *string          `json:"food_name"`
	BrandName          *string          `json:"brand_name"`
	ServingQty         *float64         `json:"serving_qty"`
	ServingUnit        *string          `json:"serving_unit"`
	ServingWeightGrams *float64         `json:"serving_weight_grams"`
	Calories           *float64         `json:"calories"`
	Macronutrients     macroBreakdown   `json:"macronutrients"`
	VitaminsMinerals   vitaminBreakdown `json:"vitamins_minerals"`
	PhotoURL           string           `json:"photo_url,omitempty"`
}

func (t *Tools) handleGetFoodNutrients(ctx context.Context, _ *mcp.CallToolRequest, in getFoodNutrientsInput) (*mcp.CallToolResult, any, error) {
	quantity := in.Quantity
	if quantity == 0 {
		quantity = 1.0
	}
	unit := in.Unit
	if unit == "" {
		unit = "serving"
	}
	query := naturalQuery(in.FoodName, quantity, unit)

	data, err := t.nix.NaturalNutrients(ctx, query)
	if err != nil {
		return tools.NutritionixError("getting nutritional information", err), nil, nil
	}
	if len(data.Foods) == 0 {
		return tools.Text("No nutritional information found for: " + query), nil, nil
	}

	food := data.Foods[0]
	report := nutrientReport{
		FoodName:           food.FoodName,
		BrandName:          food.BrandName,
		ServingQty:         food.ServingQty,
		ServingUnit:        food.ServingUnit,
		ServingWeightGrams: food.ServingWeightGrams,
		Calories:           food.Calories,
		Macronutrients: macroBreakdown{
			TotalFat:          amount(food.TotalFat) + "g",
			SaturatedFat:      amount(food.SaturatedFat) + "g",
			Cholesterol:       amount(food.Cholesterol) + "mg",
			Sodium:            amount(food.Sodium) + "mg",
			TotalCarbohydrate: amount(food.Carbohydrate) + "g",
			DietaryFiber:      amount(food.DietaryFiber) + "g",
			Sugars:            amount(food.Sugars) + "g",
			Protein:           amount(food.Protein) + "g",
		},
		VitaminsMinerals: vitaminBreakdown{
			Potassium:  amount(food.Potassium) + "mg",
			Phosphorus: amount(food.Phosphorus) + "mg",
		},
	}
	if food.Photo != nil && food.Photo.Thumb != "" {
		report.PhotoURL = food.Photo.Thumb
	}
	return tools.JSON(report), nil, nil
}

// --- compare_foods ---

type compareFoodsInput struct {
	Food1    string  `json:"food1" jsonschema:"First food to compare"`
	Food2    string  `json:"food2" jsonschema:"Second food to compare"`
	Quantity float64 `json:"quantity,omitempty" jsonschema:"Amount for both foods (default 1.0)"`
	Unit     string  `json:"unit,omitempty" jsonschema:"Unit of measurement for both foods (default serving)"`
}

type foodSummary struct {
	Name     *string `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sodium   float64 `json:"sodium"`
}

type nutrientDeltas struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sodium   float64 `json:"sodium"`
}

type comparisonResult struct {
	ComparisonQuery string         `json:"comparison_query"`
	Food1           foodSummary    `json:"food1"`
	Food2           foodSummary    `json:"food2"`
	Differences     nutrientDeltas `json:"differences"`
}

func summarize(f nutritionix.Food) foodSummary {
	return foodSummary{
		Name:     f.FoodName,
		Calories: calorieValue(f.Calories),
		Protein:  f.Protein,
		Carbs:    f.Carbohydrate,
		Fat:      f.TotalFat,
		Fiber:    f.DietaryFiber,
		Sodium:   f.Sodium,
	}
}

func (t *Tools) handleCompareFoods(ctx context.Context, _ *mcp.CallToolRequest, in compareFoodsInput) (*mcp.CallToolResult, any, error) {
	quantity := in.Quantity
	if quantity == 0 {
		quantity = 1.0
	}
	unit := in.Unit
	if unit == "" {
		unit = "serving"
	}
	query1 := naturalQuery(in.Food1, quantity, unit)
	query2 := naturalQuery(in.Food2, quantity, unit)

	data1, err := t.nix.NaturalNutrients(ctx, query1)
	if err != nil {
		return tools.NutritionixError("comparing foods", err), nil, nil
	}
	data2, err := t.nix.NaturalNutrients(ctx, query2)
	if err != nil {
		return tools.NutritionixError("comparing foods", err), nil, nil
	}
	if len(data1.Foods) == 0 || len(data2.Foods) == 0 {
		return tools.Text("Could not find nutritional information for one or both foods"), nil, nil
	}

	f1 := data1.Foods[0]
	f2 := data2.Foods[0]
	result := comparisonResult{
		ComparisonQuery: query1 + " vs " + query2,
		Food1:           summarize(f1),
		Food2:           summarize(f2),
		Differences: nutrientDeltas{
			Calories: calorieValue(f2.Calories) - calorieValue(f1.Calories),
			Protein:  f2.Protein - f1.Protein,
			Carbs:    f2.Carbohydrate - f1.Carbohydrate,
			Fat:      f2.TotalFat - f1.TotalFat,
			Fiber:    f2.DietaryFiber - f1.DietaryFiber,
			Sodium:   f2.Sodium - f1.Sodium,
		},
	}
	return tools.JSON(result), nil, nil
}

// --- analyze_meal ---

type analyzeMealInput struct {
	FoodsList []string `json:"foods_list" jsonschema:"List of foods in the meal (e.g. 1 cup rice and 100g chicken)"`
	MealName  string   `json:"meal_name,omitempty" jsonschema:"Name for the meal (default Custom Meal)"`
}

type totalNutrition struct {
	Calories      float64 `json:"calories"`
	Protein       string  `json:"protein"`
	Carbohydrates string  `json:"carbohydrates"`
	Fat           string  `json:"fat"`
	Fiber         string  `json:"fiber"`
	Sodium        string  `json:"sodium"`
	Sugar         string  `json:"sugar"`
}

type foodBreakdownEntry struct {
	Name     *string  `json:"name"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
	Calories float64  `json:"calories"`
	Protein  float64  `json:"protein"`
	Carbs    float64  `json:"carbs"`
	Fat      float64  `json:"fat"`
	Fiber    float64  `json:"fiber"`
	Sodium   float64  `json:"sodium"`
	Sugar    float64  `json:"sugar"`
}

type mealAnalysis struct {
	MealName                  string               `json:"meal_name"`
	FoodsAnalyzed             int                  `json:"foods_analyzed"`
	TotalNutrition            totalNutrition       `json:"total_nutrition"`
	MacronutrientDistribution map[string]float64   `json:"macronutrient_distribution"`
	FoodBreakdown             []foodBreakdownEntry `json:"food_breakdown"`
}

func (t *Tools) handleAnalyzeMeal(ctx context.Context, _ *mcp.CallToolRequest, in analyzeMealInput) (*mcp.CallToolResult, any, error) {
	mealName := in.MealName
	if mealName == "" {
		mealName = defaultMealName
	}

	mealQuery := ""
	for i, f := range in.FoodsList {
		if i > 0 {
			mealQuery += ", "
		}
		mealQuery += f
	}

	data, err := t.nix.NaturalNutrients(ctx, mealQuery)
	if err != nil {
		return tools.NutritionixError("analyzing meal", err), nil, nil
	}
	if len(data.Foods) == 0 {
		return tools.Text("No nutritional information found for meal: " + mealQuery), nil, nil
	}

	var calories, protein, carbs, fat, fiber, sodium, sugar float64
	breakdown := make([]foodBreakdownEntry, 0, len(data.Foods))
	for _, food := range data.Foods {
		breakdown = append(breakdown, foodBreakdownEntry{
			Name:     food.FoodName,
			Quantity: food.ServingQty,
			Unit:     food.ServingUnit,
			Calories: calorieValue(food.Calories),
			Protein:  food.Protein,
			Carbs:    food.Carbohydrate,
			Fat:      food.TotalFat,
			Fiber:    food.DietaryFiber,
			Sodium:   food.Sodium,
			Sugar:    food.Sugars,
		})
		calories += calorieValue(food.Calories)
		protein += food.Protein
		carbs += food.Carbohydrate
		fat += food.TotalFat
		fiber += food.DietaryFiber
		sodium += food.Sodium
		sugar += food.Sugars
	}

	distribution := map[string]float64{}
	if calories > 0 {
		distribution["protein_percent"] = fitness.MacroPercent(protein, fitness.KcalPerGramProtein, calories)
		distribution["carbs_percent"] = fitness.MacroPercent(carbs, fitness.KcalPerGramCarb, calories)
		distribution["fat_percent"] = fitness.MacroPercent(fat, fitness.KcalPerGramFat, calories)
	}

	analysis := mealAnalysis{
		MealName:      mealName,
		FoodsAnalyzed: len(breakdown),
		TotalNutrition: totalNutrition{
			Calories:      fitness.Round1(calories),
			Protein:       fmt.Sprintf("%.1fg", fitness.Round1(protein)),
			Carbohydrates: fmt.Sprintf("%.1fg", fitness.Round1(carbs)),
			Fat:           fmt.Sprintf("%.1fg", fitness.Round1(fat)),
			Fiber:         fmt.Sprintf("%.1fg", fitness.Round1(fiber)),
			Sodium:        fmt.Sprintf("%.1fmg", fitness.Round1(sodium)),
			Sugar:         fmt.Sprintf("%.1fg", fitness.Round1(sugar)),
		},
		MacronutrientDistribution: distribution,
		FoodBreakdown:             breakdown,
	}
	return tools.JSON(analysis), nil, nil
}

// --- calculate_daily_needs ---

type dailyNeedsInput struct {
	Age           int     `json:"age" jsonschema:"Age in years"`
	Gender        string  `json:"gender" jsonschema:"male or female"`
	WeightKg      float64 `json:"weight_kg" jsonschema:"Weight in kilograms"`
	HeightCm      float64 `json:"height_cm" jsonschema:"Height in centimeters"`
	ActivityLevel string  `json:"activity_level,omitempty" jsonschema:"sedentary light moderate active or very_active (default moderate)"`
}

type personalInfo struct {
	Age           int     `json:"age"`
	Gender        string  `json:"gender"`
	WeightKg      float64 `json:"weight_kg"`
	HeightCm      float64 `json:"height_cm"`
	ActivityLevel string  `json:"activity_level"`
	BMR           float64 `json:"bmr"`
}

type macroTargets struct {
	Protein       string `json:"protein"`
	Carbohydrates string `json:"carbohydrates"`
	Fat           string `json:"fat"`
	Fiber         string `json:"fiber"`
}

type otherRecommendations struct {
	WaterLiters float64 `json:"water_liters"`
	SodiumMaxMg int     `json:"sodium_max_mg"`
	SugarMaxG   float64 `json:"sugar_max_g"`
}

type dailyNeedsReport struct {
	PersonalInfo         personalInfo         `json:"personal_info"`
	DailyCaloricNeeds    float64              `json:"daily_caloric_needs"`
	MacronutrientTargets macroTargets         `json:"macronutrient_targets"`
	OtherRecommendations otherRecommendations `json:"other_recommendations"`
}

// macroTarget renders a macro line like "56.0g (11.2%)".
func macroTarget(grams, kcalPerGram, dailyCalories float64) string {
	return fmt.Sprintf("%.1fg (%.1f%%)",
		fitness.Round1(grams),
		fitness.MacroPercent(grams, kcalPerGram, dailyCalories),
	)
}

func (t *Tools) handleCalculateDailyNeeds(_ context.Context, _ *mcp.CallToolRequest, in dailyNeedsInput) (*mcp.CallToolResult, any, error) {
	activityLevel := in.ActivityLevel
	if activityLevel == "" {
		activityLevel = "moderate"
	}

	bmr := fitness.BMR(in.Gender, in.WeightKg, in.HeightCm, in.Age)
	dailyCalories := bmr * fitness.ActivityMultiplier(activityLevel)

	// General daily targets use 0.8 g/kg protein; goal-driven targets live in
	// the fitness-plan tool.
	proteinGrams := in.WeightKg * 0.8
	split := fitness.SplitMacros(dailyCalories, proteinGrams)

	report := dailyNeedsReport{
		PersonalInfo: personalInfo{
			Age:           in.Age,
			Gender:        in.Gender,
			WeightKg:      in.WeightKg,
			HeightCm:      in.HeightCm,
			ActivityLevel: activityLevel,
			BMR:           fitness.Round1(bmr),
		},
		DailyCaloricNeeds: fitness.Round0(dailyCalories),
		MacronutrientTargets: macroTargets{
			Protein:       macroTarget(split.ProteinGrams, fitness.KcalPerGramProtein, dailyCalories),
			Carbohydrates: macroTarget(split.CarbGrams, fitness.KcalPerGramCarb, dailyCalories),
			Fat:           macroTarget(split.FatGrams, fitness.KcalPerGramFat, dailyCalories),
			Fiber:         fmt.Sprintf("%.0fg", fitness.FiberGrams(in.Gender)),
		},
		OtherRecommendations: otherRecommendations{
			WaterLiters: fitness.Round1(fitness.WaterLiters(in.WeightKg)),
			SodiumMaxMg: fitness.SodiumMaxMg,
			SugarMaxG:   fitness.Round1(fitness.SugarMaxGrams(dailyCalories)),
		},
	}
	return tools.JSON(report), nil, nil
}
