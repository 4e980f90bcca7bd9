package services

import (
	"fmt"
	"strings"

	"nutrimind_server/models"
)

// Prompt construction for the Gemini generation backend. Locale drives the
// natural-language text and the weekday/meal vocabulary the model is asked
// to answer with; the structural schemas below are locale-invariant.
// Builders never mutate the plan they describe.

// RegenerationOptions carries the per-request overrides for partial
// generation (single meal, single day, complete-the-day).
type RegenerationOptions struct {
	Prompt       string  `json:"prompt"`
	Budget       float64 `json:"budget,omitempty"`
	CookingLevel string  `json:"cookingLevel,omitempty"`
	MaxPrepTime  int     `json:"maxPrepTime,omitempty"`
	MealsToAdd   int     `json:"mealsToAdd,omitempty"`
}

func (o RegenerationOptions) budgetOr(fallback float64) float64 {
	if o.Budget > 0 {
		return o.Budget
	}
	return fallback
}

func (o RegenerationOptions) cookingLevelOr(fallback string) string {
	if o.CookingLevel != "" {
		return o.CookingLevel
	}
	return fallback
}

// ---- Response schemas (Gemini responseSchema format) ----

// MealSchema describes one generated meal.
func MealSchema() map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"name":          map[string]any{"type": "STRING", "description": "Name of the meal"},
			"type":          map[string]any{"type": "STRING", "description": "Type of meal (e.g. Breakfast, Lunch, Snack, Dinner)"},
			"description":   map[string]any{"type": "STRING", "description": "Short description of the meal"},
			"estimatedCost": map[string]any{"type": "STRING", "description": "Estimated cost per person in Euros, based on current prices in Paris, France. Example: '~5€'."},
			"macros": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"calories":      map[string]any{"type": "NUMBER", "description": "Total calories"},
					"protein":       map[string]any{"type": "NUMBER", "description": "Protein in grams"},
					"carbohydrates": map[string]any{"type": "NUMBER", "description": "Carbohydrates in grams"},
					"fat":           map[string]any{"type": "NUMBER", "description": "Fat in grams"},
				},
				"required": []string{"calories", "protein", "carbohydrates", "fat"},
			},
			"ingredients":  map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}, "description": "List of ingredients with quantities"},
			"instructions": map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}, "description": "Step-by-step preparation instructions"},
		},
		"required": []string{"name", "type", "description", "macros", "ingredients", "instructions", "estimatedCost"},
	}
}

// DailyPlanSchema describes one day of meals with its totals.
func DailyPlanSchema() map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"dayOfWeek": map[string]any{"type": "STRING", "description": "Day of the week"},
			"meals":     map[string]any{"type": "ARRAY", "items": MealSchema(), "description": "List of meals for the day."},
			"dailyTotals": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"calories":      map[string]any{"type": "NUMBER"},
					"protein":       map[string]any{"type": "NUMBER"},
					"carbohydrates": map[string]any{"type": "NUMBER"},
					"fat":           map[string]any{"type": "NUMBER"},
				},
				"required": []string{"calories", "protein", "carbohydrates", "fat"},
			},
		},
		"required": []string{"dayOfWeek", "meals", "dailyTotals"},
	}
}

// WeeklyPlanSchema wraps 7 daily plans under a "plan" array.
func WeeklyPlanSchema() map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"plan": map[string]any{"type": "ARRAY", "items": DailyPlanSchema(), "description": "Nutritional plan for all 7 days of the week."},
		},
		"required": []string{"plan"},
	}
}

// MultipleMealsSchema wraps a meal batch under a "meals" array.
func MultipleMealsSchema() map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"meals": map[string]any{"type": "ARRAY", "items": MealSchema(), "description": "List of generated meals."},
		},
		"required": []string{"meals"},
	}
}

// ShoppingListSchema describes the categorized, consolidated shopping list.
func ShoppingListSchema() map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"shoppingList": map[string]any{
				"type": "ARRAY",
				"items": map[string]any{
					"type": "OBJECT",
					"properties": map[string]any{
						"category": map[string]any{"type": "STRING", "description": "Category of the items (e.g. Fruits & Vegetables, Meat & Fish)."},
						"items": map[string]any{
							"type": "ARRAY",
							"items": map[string]any{
								"type": "OBJECT",
								"properties": map[string]any{
									"name":     map[string]any{"type": "STRING", "description": "Name of the ingredient."},
									"quantity": map[string]any{"type": "STRING", "description": "Consolidated quantity of the ingredient."},
								},
								"required": []string{"name", "quantity"},
							},
						},
					},
					"required": []string{"category", "items"},
				},
			},
		},
		"required": []string{"shoppingList"},
	}
}

// ---- Natural-language prompts ----

// WeeklyPlanPrompt builds the full-week generation instruction.
func WeeklyPlanPrompt(user models.UserProfile, language, customPrompt string) string {
	var b strings.Builder
	if language == models.LanguageEnglish {
		b.WriteString("Role: You are NutriMIND, an expert AI nutritional coach. Your mission is to create a detailed and personalized weekly meal plan.\n\n")
		b.WriteString("User Context:\n")
		fmt.Fprintf(&b, "- Gender: %s\n- Age: %d years\n- Height: %.0f cm\n- Weight: %.0f kg\n", user.Gender, user.Age, user.Height, user.Weight)
		fmt.Fprintf(&b, "- Activity Level: %s\n- Goal: %s\n- Meals per day: %d\n", user.ActivityLevel, user.Goal, user.MealsPerDay)
		fmt.Fprintf(&b, "- Basal Metabolic Rate (BMR): %.0f calories\n- Total Daily Energy Expenditure (TDEE): %.0f calories\n- Daily Caloric Target: %.0f calories\n", user.BMR, user.TDEE, user.TargetCalories)
		fmt.Fprintf(&b, "- Daily Meal Budget: ~€%.0f\n- Cooking Skill: %s\n", user.DailyBudget, user.CookingLevel)
		fmt.Fprintf(&b, "- Max preparation time (weekday lunch): %d minutes\n- Max preparation time (weekday dinner): %d minutes\n", user.MaxPrepTimeWeekLunch, user.MaxPrepTimeWeekDinner)
		fmt.Fprintf(&b, "- Max preparation time (weekend lunch): %d minutes\n- Max preparation time (weekend dinner): %d minutes\n", user.MaxPrepTimeWeekendLunch, user.MaxPrepTimeWeekendDinner)
		fmt.Fprintf(&b, "- Preferences/Allergies: %s\n- Likes and dislikes: %s\n- Specific remarks/constraints: %s\n", orNone(user.Preferences, "None"), orNone(user.Notes, "None"), orNone(user.Remarks, "None"))
		if customPrompt != "" {
			fmt.Fprintf(&b, "- User instruction: %s\n", customPrompt)
		}
		b.WriteString("\nTask:\nGenerate a varied and balanced meal plan for 7 days.\n")
		fmt.Fprintf(&b, "- Each day must include exactly %d meals.\n", user.MealsPerDay)
		b.WriteString("- Adhere strictly to the maximum preparation times provided, respecting the different times for weekday lunch, weekday dinner, weekend lunch and weekend dinner.\n")
		b.WriteString("- Take into account the user's specific remarks and constraints.\n")
		b.WriteString("- Appropriately name the meal types (e.g. Breakfast, Lunch, Dinner, Snack). If there are multiple snacks, number them (Snack 1, Snack 2).\n")
		fmt.Fprintf(&b, "- The total daily calorie count must be very close to the target of %.0f calories.\n", user.TargetCalories)
		b.WriteString("- For each meal, provide the name, type, a description, an estimated cost per person (estimatedCost) based on current prices in Paris, France, ingredients with quantities, preparation instructions, and a precise macronutrient breakdown.\n")
		b.WriteString("- Calculate and provide the total macronutrients for each day.\n")
		b.WriteString("- Consider the budget, cooking level, and likes/dislikes for the complexity and cost of ingredients.\n")
		b.WriteString("- The plan must start with Monday. The days of the week must be in English (Monday, Tuesday, etc.).\n\n")
		b.WriteString("Output Format:\nYou MUST return the response as a valid JSON object that strictly conforms to the provided schema. Do not include any text, explanations, or markdown formatting outside the JSON object.\n")
		return b.String()
	}

	b.WriteString("Role: Tu es NutriMIND, un coach nutritionnel expert en IA. Ta mission est de créer un plan de repas hebdomadaire détaillé et personnalisé.\n\n")
	b.WriteString("Contexte Utilisateur:\n")
	fmt.Fprintf(&b, "- Sexe: %s\n- Âge: %d ans\n- Taille: %.0f cm\n- Poids: %.0f kg\n", user.Gender, user.Age, user.Height, user.Weight)
	fmt.Fprintf(&b, "- Niveau d'activité: %s\n- Objectif: %s\n- Repas par jour: %d\n", user.ActivityLevel, user.Goal, user.MealsPerDay)
	fmt.Fprintf(&b, "- Métabolisme de base (BMR): %.0f calories\n- Dépense énergétique journalière (TDEE): %.0f calories\n- Objectif calorique quotidien: %.0f calories\n", user.BMR, user.TDEE, user.TargetCalories)
	fmt.Fprintf(&b, "- Budget repas journalier: ~%.0f euros\n- Niveau de cuisine: %s\n", user.DailyBudget, user.CookingLevel)
	fmt.Fprintf(&b, "- Temps de préparation max (déjeuner semaine): %d minutes\n- Temps de préparation max (dîner semaine): %d minutes\n", user.MaxPrepTimeWeekLunch, user.MaxPrepTimeWeekDinner)
	fmt.Fprintf(&b, "- Temps de préparation max (déjeuner weekend): %d minutes\n- Temps de préparation max (dîner weekend): %d minutes\n", user.MaxPrepTimeWeekendLunch, user.MaxPrepTimeWeekendDinner)
	fmt.Fprintf(&b, "- Préférences/Allergies: %s\n- Goûts et aversions: %s\n- Remarques/contraintes spécifiques: %s\n", orNone(user.Preferences, "Aucune"), orNone(user.Notes, "Aucun"), orNone(user.Remarks, "Aucune"))
	if customPrompt != "" {
		fmt.Fprintf(&b, "- Instruction utilisateur: %s\n", customPrompt)
	}
	b.WriteString("\nTâche:\nGénère un plan de repas varié et équilibré pour 7 jours.\n")
	fmt.Fprintf(&b, "- Chaque jour doit contenir exactement %d repas.\n", user.MealsPerDay)
	b.WriteString("- Respecte impérativement les temps de préparation maximums, en distinguant déjeuner de semaine, dîner de semaine, déjeuner du week-end et dîner du week-end.\n")
	b.WriteString("- Tiens compte des remarques et contraintes spécifiques de l'utilisateur.\n")
	b.WriteString("- Nomme les repas de façon appropriée (ex: Petit-déjeuner, Déjeuner, Dîner, Collation). S'il y a plusieurs collations, numérote-les (Collation 1, Collation 2).\n")
	fmt.Fprintf(&b, "- Le total calorique de chaque jour doit être très proche de l'objectif de %.0f calories.\n", user.TargetCalories)
	b.WriteString("- Pour chaque repas, fournis le nom, le type, une description, une estimation du coût par personne (estimatedCost) basée sur les prix actuels à Paris, France, les ingrédients avec quantités, les instructions de préparation, et une répartition précise des macronutriments.\n")
	b.WriteString("- Calcule et fournis le total des macronutriments pour chaque journée.\n")
	b.WriteString("- Tiens compte du budget, du niveau de cuisine et des goûts/aversions pour la complexité et le coût des ingrédients.\n")
	b.WriteString("- Le plan doit commencer par Lundi. Les jours de la semaine doivent être en français (Lundi, Mardi, etc.).\n\n")
	b.WriteString("Format de Sortie:\nTu DOIS retourner la réponse sous forme d'un objet JSON valide qui se conforme strictement au schéma fourni. N'inclus aucun texte, explication ou formatage markdown en dehors de l'objet JSON.\n")
	return b.String()
}

// ReplaceMealPrompt builds the single-meal replacement instruction. The
// replacement is sized to the residual: target minus the other meals.
func ReplaceMealPrompt(user models.UserProfile, language string, day models.DailyPlan, mealIndex int, opts RegenerationOptions) string {
	mealToReplace := day.Meals[mealIndex]
	residual := ResidualExcluding(day, mealIndex, user.TargetCalories)
	others := otherMealNames(day, mealIndex)
	consumed := user.TargetCalories - residual

	var b strings.Builder
	if language == models.LanguageEnglish {
		b.WriteString("Role: Expert nutritional coach.\nContext: A user wants to replace a meal in their day.\n")
		fmt.Fprintf(&b, "User Profile: Gender: %s, Age: %d, Goal: %s, Preferences/Allergies: %s, Likes/Dislikes: %s.\n", user.Gender, user.Age, user.Goal, user.Preferences, orNone(user.Notes, "None"))
		fmt.Fprintf(&b, "Preferences for this request: Budget: ~€%.0f, Cooking Skill: %s.\n", opts.budgetOr(user.DailyBudget), opts.cookingLevelOr(user.CookingLevel))
		if opts.MaxPrepTime > 0 {
			fmt.Fprintf(&b, "- Max preparation time for this meal: %d minutes.\n", opts.MaxPrepTime)
		}
		fmt.Fprintf(&b, "Current Day:\n- Existing meals: %s\n- Calories already consumed: %.0f\n- Daily caloric target: %.0f\n", strings.Join(others, ", "), consumed, user.TargetCalories)
		fmt.Fprintf(&b, "Meal to replace: %s - %q\n", mealToReplace.Type, mealToReplace.Name)
		fmt.Fprintf(&b, "User's instruction: %q\n\n", orNone(opts.Prompt, "I don't like this dish, suggest something else."))
		fmt.Fprintf(&b, "Task: Generate ONE new meal of type %q to replace the old one.\n", mealToReplace.Type)
		b.WriteString("- The new meal must be consistent with the user's profile and preferences for this request.\n")
		fmt.Fprintf(&b, "- Aim for around %.0f calories for this meal. A negative target means the user is over their goal, so generate a very light meal (around 100 kcal).\n", residual)
		b.WriteString("- Provide all details: name, type, description, estimated cost per person (based on Paris prices), macros, ingredients, instructions.\n\n")
		b.WriteString("Output Format: Respond with a single, valid JSON object, conforming to the provided meal schema. No extra text.\n")
		return b.String()
	}

	b.WriteString("Role: Coach nutritionnel expert.\nContexte: Un utilisateur veut remplacer un repas de sa journée.\n")
	fmt.Fprintf(&b, "Profil utilisateur: Sexe: %s, Âge: %d, Objectif: %s, Préférences/Allergies: %s, Goûts/Aversions: %s.\n", user.Gender, user.Age, user.Goal, user.Preferences, orNone(user.Notes, "Aucun"))
	fmt.Fprintf(&b, "Préférences pour cette demande: Budget: ~%.0f€, Niveau Cuisine: %s.\n", opts.budgetOr(user.DailyBudget), opts.cookingLevelOr(user.CookingLevel))
	if opts.MaxPrepTime > 0 {
		fmt.Fprintf(&b, "- Temps de préparation max pour ce repas: %d minutes.\n", opts.MaxPrepTime)
	}
	fmt.Fprintf(&b, "Journée actuelle:\n- Repas existants: %s\n- Calories déjà consommées: %.0f\n- Objectif calorique journalier: %.0f\n", strings.Join(others, ", "), consumed, user.TargetCalories)
	fmt.Fprintf(&b, "Repas à remplacer: %s - %q\n", mealToReplace.Type, mealToReplace.Name)
	fmt.Fprintf(&b, "Instruction de l'utilisateur: %q\n\n", orNone(opts.Prompt, "Je n'aime pas ce plat, propose-moi autre chose."))
	fmt.Fprintf(&b, "Tâche: Génère UN SEUL nouveau repas de type %q pour remplacer l'ancien.\n", mealToReplace.Type)
	b.WriteString("- Le nouveau repas doit être cohérent avec le profil et les préférences de l'utilisateur pour cette demande.\n")
	fmt.Fprintf(&b, "- Vise des calories autour de %.0f pour ce repas. Un objectif négatif signifie un dépassement, génère alors un repas très léger (environ 100 kcal).\n", residual)
	b.WriteString("- Fournis tous les détails: nom, type, description, coût estimé par personne (basé sur les prix à Paris), macros, ingrédients, instructions.\n\n")
	b.WriteString("Format de Sortie: Réponds avec un objet JSON unique et valide, conforme au schéma de repas fourni. Pas de texte supplémentaire.\n")
	return b.String()
}

// AddMealPrompt builds the instruction for adding one extra meal to a day,
// sized to the residual calories with a ~100 kcal floor.
func AddMealPrompt(user models.UserProfile, language string, day models.DailyPlan, opts RegenerationOptions) string {
	residual := ResidualCalories(day, user.TargetCalories)
	aim := residual
	if aim < 100 {
		aim = 100
	}
	names := allMealNames(day)
	consumed := SumMacros(day.Meals).Calories

	var b strings.Builder
	if language == models.LanguageEnglish {
		fmt.Fprintf(&b, "Role: Expert nutritional coach.\nContext: A user wants to add a new meal to their day. The current day already has %d meals.\n", len(day.Meals))
		fmt.Fprintf(&b, "User Profile: Gender: %s, Age: %d, Goal: %s, Preferences/Allergies: %s, Likes/Dislikes: %s.\n", user.Gender, user.Age, user.Goal, user.Preferences, orNone(user.Notes, "None"))
		fmt.Fprintf(&b, "Preferences for this request: Budget: ~€%.0f, Cooking Skill: %s.\n", opts.budgetOr(user.DailyBudget), opts.cookingLevelOr(user.CookingLevel))
		if opts.MaxPrepTime > 0 {
			fmt.Fprintf(&b, "- Max preparation time for this meal: %d minutes.\n", opts.MaxPrepTime)
		}
		fmt.Fprintf(&b, "Current Day:\n- Existing meals: %s\n- Calories already consumed: %.0f\n- Daily caloric target: %.0f\n", strings.Join(names, ", "), consumed, user.TargetCalories)
		fmt.Fprintf(&b, "User's instruction for the new meal: %q\n\n", orNone(opts.Prompt, "Suggest a light snack or a small meal."))
		b.WriteString("Task: Generate ONE new meal. It could be a snack or a small meal. Give it an appropriate type (e.g. \"Snack\", \"Late Snack\").\n")
		b.WriteString("- The new meal must be consistent with the user's profile and preferences.\n")
		fmt.Fprintf(&b, "- Aim for around %.0f calories for this meal. A negative target means the user is over their goal, so generate a very light snack (around 100-150 kcal).\n", aim)
		b.WriteString("- Provide all details: name, type, description, estimated cost per person (based on Paris prices), macros, ingredients, instructions.\n\n")
		b.WriteString("Output Format: Respond with a single, valid JSON object, conforming to the provided meal schema. No extra text.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Role: Coach nutritionnel expert.\nContexte: Un utilisateur veut ajouter un repas à sa journée. La journée contient déjà %d repas.\n", len(day.Meals))
	fmt.Fprintf(&b, "Profil utilisateur: Sexe: %s, Âge: %d, Objectif: %s, Préférences/Allergies: %s, Goûts/Aversions: %s.\n", user.Gender, user.Age, user.Goal, user.Preferences, orNone(user.Notes, "Aucun"))
	fmt.Fprintf(&b, "Préférences pour cette demande: Budget: ~%.0f€, Niveau Cuisine: %s.\n", opts.budgetOr(user.DailyBudget), opts.cookingLevelOr(user.CookingLevel))
	if opts.MaxPrepTime > 0 {
		fmt.Fprintf(&b, "- Temps de préparation max pour ce repas: %d minutes.\n", opts.MaxPrepTime)
	}
	fmt.Fprintf(&b, "Journée actuelle:\n- Repas existants: %s\n- Calories déjà consommées: %.0f\n- Objectif calorique journalier: %.0f\n", strings.Join(names, ", "), consumed, user.TargetCalories)
	fmt.Fprintf(&b, "Instruction de l'utilisateur pour le nouveau repas: %q\n\n", orNone(opts.Prompt, "Propose une collation ou un petit repas léger."))
	b.WriteString("Tâche: Génère UN SEUL nouveau repas. Ce pourrait être une collation ou un petit repas. Donne-lui un type approprié (ex: \"Collation\", \"Goûter\").\n")
	b.WriteString("- Le nouveau repas doit être cohérent avec le profil et les préférences de l'utilisateur.\n")
	fmt.Fprintf(&b, "- Vise des calories autour de %.0f. Un objectif négatif signifie un dépassement, génère alors une collation très légère (100-150 kcal).\n", aim)
	b.WriteString("- Fournis tous les détails: nom, type, description, coût estimé par personne (basé sur les prix à Paris), macros, ingrédients, instructions.\n\n")
	b.WriteString("Format de Sortie: Réponds avec un objet JSON unique et valide, conforme au schéma de repas fourni. Pas de texte supplémentaire.\n")
	return b.String()
}

// CompleteDayPrompt builds the multi-meal instruction that fills the
// remaining calorie deficit. Callers must check the deficit is positive
// before requesting generation.
func CompleteDayPrompt(user models.UserProfile, language string, day models.DailyPlan, deficit float64, opts RegenerationOptions) string {
	names := allMealNames(day)
	consumed := SumMacros(day.Meals).Calories

	var countInstruction string
	if language == models.LanguageEnglish {
		countInstruction = "You decide the optimal number of meals to add (e.g. one larger meal or a couple of snacks)."
		if opts.MealsToAdd > 0 {
			countInstruction = fmt.Sprintf("Generate exactly %d meal(s).", opts.MealsToAdd)
		}
	} else {
		countInstruction = "Tu décides du nombre optimal de repas à ajouter (par exemple, un repas plus conséquent ou plusieurs collations)."
		if opts.MealsToAdd > 0 {
			countInstruction = fmt.Sprintf("Génère exactement %d repas.", opts.MealsToAdd)
		}
	}

	var b strings.Builder
	if language == models.LanguageEnglish {
		b.WriteString("Role: Expert nutritional coach.\nContext: A user needs to add meals to their day to meet their caloric target.\n")
		fmt.Fprintf(&b, "User Profile: Gender: %s, Age: %d, Goal: %s, Preferences/Allergies: %s, Likes/Dislikes: %s.\n", user.Gender, user.Age, user.Goal, user.Preferences, orNone(user.Notes, "None"))
		fmt.Fprintf(&b, "Preferences for this request: Budget: ~€%.0f, Cooking Skill: %s.\n", opts.budgetOr(user.DailyBudget), opts.cookingLevelOr(user.CookingLevel))
		if opts.MaxPrepTime > 0 {
			fmt.Fprintf(&b, "- Max preparation time for these meals: %d minutes.\n", opts.MaxPrepTime)
		}
		fmt.Fprintf(&b, "Current Day's Summary:\n- Existing meals: %s\n- Calories already consumed: %.0f\n- Daily caloric target: %.0f\n- Calorie deficit to fill: %.0f calories.\n", strings.Join(names, ", "), consumed, user.TargetCalories, deficit)
		fmt.Fprintf(&b, "User's instruction: %q\n\n", orNone(opts.Prompt, "Suggest something to complete my day."))
		fmt.Fprintf(&b, "Task: Generate one or more new meals to fill the calorie deficit of %.0f calories.\n- %s\n", deficit, countInstruction)
		b.WriteString("- The total calories of the new meal(s) should be very close to the deficit.\n")
		b.WriteString("- The new meal(s) must be consistent with the user's profile and preferences.\n")
		b.WriteString("- For each meal, provide all details: name, type, description, estimated cost per person (based on Paris prices), macros, ingredients, instructions.\n\n")
		b.WriteString("Output Format: Respond with a single, valid JSON object, conforming to the provided schema containing a \"meals\" array. No extra text.\n")
		return b.String()
	}

	b.WriteString("Role: Coach nutritionnel expert.\nContexte: Un utilisateur a besoin d'ajouter des repas à sa journée pour atteindre son objectif calorique.\n")
	fmt.Fprintf(&b, "Profil utilisateur: Sexe: %s, Âge: %d, Objectif: %s, Préférences/Allergies: %s, Goûts/Aversions: %s.\n", user.Gender, user.Age, user.Goal, user.Preferences, orNone(user.Notes, "Aucun"))
	fmt.Fprintf(&b, "Préférences pour cette demande: Budget: ~%.0f€, Niveau Cuisine: %s.\n", opts.budgetOr(user.DailyBudget), opts.cookingLevelOr(user.CookingLevel))
	if opts.MaxPrepTime > 0 {
		fmt.Fprintf(&b, "- Temps de préparation max pour ces repas: %d minutes.\n", opts.MaxPrepTime)
	}
	fmt.Fprintf(&b, "Résumé de la journée actuelle:\n- Repas existants: %s\n- Calories déjà consommées: %.0f\n- Objectif calorique journalier: %.0f\n- Déficit calorique à combler: %.0f calories.\n", strings.Join(names, ", "), consumed, user.TargetCalories, deficit)
	fmt.Fprintf(&b, "Instruction de l'utilisateur: %q\n\n", orNone(opts.Prompt, "Suggère quelque chose pour compléter ma journée."))
	fmt.Fprintf(&b, "Tâche: Génère un ou plusieurs nouveaux repas pour combler le déficit calorique de %.0f calories.\n- %s\n", deficit, countInstruction)
	b.WriteString("- Le total calorique du ou des nouveaux repas doit être très proche du déficit.\n")
	b.WriteString("- Le ou les nouveaux repas doivent être cohérents avec le profil et les préférences de l'utilisateur.\n")
	b.WriteString("- Pour chaque repas, fournis tous les détails: nom, type, description, coût estimé par personne (basé sur les prix à Paris), macros, ingrédients, instructions.\n\n")
	b.WriteString("Format de Sortie: Réponds avec un objet JSON unique et valide, conforme au schéma fourni contenant une liste \"meals\". Pas de texte supplémentaire.\n")
	return b.String()
}

// RegenerateDayPrompt builds the single-day regeneration instruction.
func RegenerateDayPrompt(user models.UserProfile, language, dayOfWeek string, opts RegenerationOptions) string {
	var b strings.Builder
	if language == models.LanguageEnglish {
		b.WriteString("Role: Expert nutritional coach.\nContext: A user wants to regenerate an entire day's plan.\n")
		fmt.Fprintf(&b, "User Profile: Gender: %s, Age: %d, Height: %.0fcm, Weight: %.0fkg, Goal: %s, Meals per day: %d, Preferences/Allergies: %s, Likes/Dislikes: %s.\n",
			user.Gender, user.Age, user.Height, user.Weight, user.Goal, user.MealsPerDay, user.Preferences, orNone(user.Notes, "None"))
		fmt.Fprintf(&b, "Daily caloric target: %.0f calories.\n", user.TargetCalories)
		fmt.Fprintf(&b, "Preferences for this request: Budget: ~€%.0f, Cooking Skill: %s.\n", opts.budgetOr(user.DailyBudget), opts.cookingLevelOr(user.CookingLevel))
		if opts.MaxPrepTime > 0 {
			fmt.Fprintf(&b, "- Max preparation time for these meals: %d minutes.\n", opts.MaxPrepTime)
		}
		fmt.Fprintf(&b, "User instruction: %q\n\n", orNone(opts.Prompt, "I want completely different meals for this day."))
		fmt.Fprintf(&b, "Task: Generate a complete and detailed meal plan for ONE SINGLE day: %s.\n", dayOfWeek)
		fmt.Fprintf(&b, "- The plan must include exactly %d meals.\n", user.MealsPerDay)
		b.WriteString("- For each meal, include all details: name, type, description, estimated cost per person (based on Paris prices), macros, ingredients, and instructions.\n")
		fmt.Fprintf(&b, "- The total calorie count must be very close to %.0f.\n", user.TargetCalories)
		b.WriteString("- Calculate the total macros for the day.\n- Consider the budget, cooking level, and likes/dislikes.\n\n")
		b.WriteString("Output Format: Respond with a single, valid JSON object, conforming to the provided daily plan schema. No extra text.\n")
		return b.String()
	}

	b.WriteString("Role: Coach nutritionnel expert.\nContexte: Un utilisateur veut régénérer le plan d'une journée entière.\n")
	fmt.Fprintf(&b, "Profil utilisateur: Sexe: %s, Âge: %d, Taille: %.0fcm, Poids: %.0fkg, Objectif: %s, Repas par jour: %d, Préférences/Allergies: %s, Goûts/Aversions: %s.\n",
		user.Gender, user.Age, user.Height, user.Weight, user.Goal, user.MealsPerDay, user.Preferences, orNone(user.Notes, "Aucun"))
	fmt.Fprintf(&b, "Objectif calorique journalier: %.0f calories.\n", user.TargetCalories)
	fmt.Fprintf(&b, "Préférences pour cette demande: Budget: ~%.0f€, Niveau Cuisine: %s.\n", opts.budgetOr(user.DailyBudget), opts.cookingLevelOr(user.CookingLevel))
	if opts.MaxPrepTime > 0 {
		fmt.Fprintf(&b, "- Temps de préparation max pour ces repas: %d minutes.\n", opts.MaxPrepTime)
	}
	fmt.Fprintf(&b, "Instruction de l'utilisateur: %q\n\n", orNone(opts.Prompt, "Je veux des repas complètement différents pour cette journée."))
	fmt.Fprintf(&b, "Tâche: Génère un plan de repas complet et détaillé pour UN SEUL jour: %s.\n", dayOfWeek)
	fmt.Fprintf(&b, "- Le plan doit inclure exactement %d repas.\n", user.MealsPerDay)
	b.WriteString("- Pour chaque repas, inclus tous les détails: nom, type, description, coût estimé par personne (basé sur les prix à Paris), macros, ingrédients et instructions.\n")
	fmt.Fprintf(&b, "- Le total calorique doit être très proche de %.0f.\n", user.TargetCalories)
	b.WriteString("- Calcule le total des macros pour la journée.\n- Tiens compte du budget, du niveau de cuisine et des goûts/aversions.\n\n")
	b.WriteString("Format de Sortie: Réponds avec un objet JSON unique et valide, conforme au schéma de plan journalier fourni. Pas de texte supplémentaire.\n")
	return b.String()
}

// ShoppingListPrompt builds the consolidation instruction for a week's
// flattened ingredient list.
func ShoppingListPrompt(ingredients []string, language string) string {
	var b strings.Builder
	if language == models.LanguageEnglish {
		b.WriteString("Role: You are an intelligent shopping assistant. Here is a list of ingredients for a full week, extracted from a meal plan. Your task is to consolidate and organize it.\n")
		b.WriteString("1. Merge identical ingredients by summing their quantities (e.g. '1 onion' and '2 onions' becomes '3 onions'). Be smart about units (e.g. 200g + 300g = 500g).\n")
		b.WriteString("2. Categorize each consolidated ingredient into a relevant supermarket aisle (e.g. 'Fruits & Vegetables', 'Meat & Fish', 'Dairy & Eggs', 'Pantry', 'Bakery', 'Beverages', 'Frozen').\n")
		b.WriteString("3. Return the result as a valid JSON object matching the provided schema. Do not include any text outside the JSON object.\n\n")
		b.WriteString("Ingredients list:\n")
		b.WriteString(strings.Join(ingredients, "\n"))
		return b.String()
	}

	b.WriteString("Role: Tu es un assistant de courses intelligent. Voici une liste d'ingrédients pour une semaine complète, extraite d'un plan de repas. Ta tâche est de la consolider et de l'organiser.\n")
	b.WriteString("1. Fusionne les ingrédients identiques en additionnant leurs quantités (ex: '1 oignon' et '2 oignons' devient '3 oignons'). Sois malin avec les unités (ex: 200g + 300g = 500g).\n")
	b.WriteString("2. Catégorise chaque ingrédient consolidé dans un rayon de supermarché pertinent (ex: 'Fruits & Légumes', 'Viandes & Poissons', 'Produits Laitiers & Œufs', 'Épicerie', 'Boulangerie', 'Boissons', 'Surgelés').\n")
	b.WriteString("3. Retourne le résultat sous forme d'un objet JSON valide respectant le schéma fourni. N'inclus aucun texte en dehors de l'objet JSON.\n\n")
	b.WriteString("Liste d'ingrédients:\n")
	b.WriteString(strings.Join(ingredients, "\n"))
	return b.String()
}

// ImagePrompt builds the short descriptive prompt for meal images.
func ImagePrompt(mealName, language string) string {
	if language == models.LanguageEnglish {
		return fmt.Sprintf("Photorealistic image of a plate of %s, professional food photography, delicious looking", mealName)
	}
	return fmt.Sprintf("Image photoréaliste d'une assiette de %s, photographie culinaire professionnelle, aspect délicieux", mealName)
}

func orNone(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func allMealNames(day models.DailyPlan) []string {
	names := make([]string, 0, len(day.Meals))
	for _, meal := range day.Meals {
		names = append(names, meal.Name)
	}
	return names
}

func otherMealNames(day models.DailyPlan, excludeIndex int) []string {
	names := make([]string, 0, len(day.Meals))
	for i, meal := range day.Meals {
		if i == excludeIndex {
			continue
		}
		names = append(names, meal.Name)
	}
	return names
}
