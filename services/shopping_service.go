package services

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"nutrimind_server/models"
)

// Deterministic ingredient consolidation, used when the generation backend
// cannot be reached. It merges like ingredients, sums quantities across
// compatible units and groups the result into supermarket aisles.

var ingredientPattern = regexp.MustCompile(`^([\d]+(?:[.,]\d+)?)\s*(kg|g|mg|l|ml|cl|cuillères?|cuillere?s?|tbsp|tsp|tranches?|slices?|pincées?|pinch(?:es)?)?\s*(?:de\s+|d')?(.+)$`)

type parsedIngredient struct {
	amount   float64
	unit     string // normalized base unit, empty for countable items
	name     string // lowercased, singularized
	original string
}

// parseIngredient splits "200g de riz" or "2 onions" into amount, unit and
// name. Lines with no leading quantity come back with amount 0 and the
// whole line as the name.
func parseIngredient(line string) parsedIngredient {
	trimmed := strings.TrimSpace(line)
	lower := strings.ToLower(trimmed)

	m := ingredientPattern.FindStringSubmatch(lower)
	if m == nil {
		return parsedIngredient{name: singularize(lower), original: trimmed}
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return parsedIngredient{name: singularize(lower), original: trimmed}
	}

	unit, factor := normalizeUnit(m[2])
	return parsedIngredient{
		amount:   amount * factor,
		unit:     unit,
		name:     singularize(strings.TrimSpace(m[3])),
		original: trimmed,
	}
}

// normalizeUnit maps a unit token to its base unit and conversion factor.
// Weight converges on grams, volume on milliliters.
func normalizeUnit(unit string) (string, float64) {
	switch unit {
	case "kg":
		return "g", 1000
	case "g":
		return "g", 1
	case "mg":
		return "g", 0.001
	case "l":
		return "ml", 1000
	case "cl":
		return "ml", 10
	case "ml":
		return "ml", 1
	case "":
		return "", 1
	default:
		// spoons, slices, pinches and other countable-ish units keep
		// their own class so unlike units never merge
		return singularize(unit), 1
	}
}

// singularize strips a trailing plural marker so "onions"/"oignons" and
// "onion"/"oignon" collapse to one key. Crude but sufficient for the fr/en
// ingredient vocabulary in generated plans.
func singularize(word string) string {
	word = strings.TrimSpace(word)
	if strings.HasSuffix(word, "s") && len(word) > 3 && !strings.HasSuffix(word, "ss") {
		return word[:len(word)-1]
	}
	return word
}

func pluralize(word string, amount float64) string {
	if amount > 1 && !strings.HasSuffix(word, "s") {
		return word + "s"
	}
	return word
}

// formatAmount prints whole numbers without a decimal point.
func formatAmount(amount float64) string {
	if amount == float64(int64(amount)) {
		return strconv.FormatInt(int64(amount), 10)
	}
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

type aisleRule struct {
	category string
	keywords []string
}

var frenchAisles = []aisleRule{
	{"Fruits & Légumes", []string{"pomme", "banane", "orange", "citron", "fraise", "tomate", "oignon", "ail", "carotte", "courgette", "poivron", "salade", "épinard", "brocoli", "concombre", "avocat", "champignon", "patate", "pomme de terre", "légume", "fruit", "herbe", "persil", "basilic", "coriandre"}},
	{"Viandes & Poissons", []string{"poulet", "boeuf", "bœuf", "porc", "dinde", "agneau", "saumon", "thon", "cabillaud", "crevette", "poisson", "viande", "jambon", "steak", "escalope"}},
	{"Produits Laitiers & Œufs", []string{"lait", "yaourt", "fromage", "beurre", "crème", "creme", "oeuf", "œuf", "mozzarella", "parmesan", "feta", "skyr"}},
	{"Boulangerie", []string{"pain", "baguette", "brioche", "tortilla", "wrap"}},
	{"Boissons", []string{"eau", "jus", "thé", "café", "cafe"}},
	{"Surgelés", []string{"surgelé", "surgele", "glace"}},
	{"Épicerie", nil}, // fallback
}

var englishAisles = []aisleRule{
	{"Fruits & Vegetables", []string{"apple", "banana", "orange", "lemon", "strawberry", "tomato", "onion", "garlic", "carrot", "zucchini", "pepper", "lettuce", "spinach", "broccoli", "cucumber", "avocado", "mushroom", "potato", "vegetable", "fruit", "herb", "parsley", "basil", "cilantro"}},
	{"Meat & Fish", []string{"chicken", "beef", "pork", "turkey", "lamb", "salmon", "tuna", "cod", "shrimp", "fish", "meat", "ham", "steak"}},
	{"Dairy & Eggs", []string{"milk", "yogurt", "cheese", "butter", "cream", "egg", "mozzarella", "parmesan", "feta", "skyr"}},
	{"Bakery", []string{"bread", "baguette", "brioche", "tortilla", "wrap", "bun"}},
	{"Beverages", []string{"water", "juice", "tea", "coffee"}},
	{"Frozen", []string{"frozen", "ice"}},
	{"Pantry", nil}, // fallback
}

func categorize(name, language string) string {
	aisles := frenchAisles
	if language == models.LanguageEnglish {
		aisles = englishAisles
	}
	for _, rule := range aisles {
		for _, keyword := range rule.keywords {
			if strings.Contains(name, keyword) {
				return rule.category
			}
		}
	}
	return aisles[len(aisles)-1].category
}

// ConsolidateIngredients merges a flat ingredient list into categorized
// shopping entries. Like names with compatible units sum their amounts;
// unlike units stay as separate entries.
func ConsolidateIngredients(ingredients []string, language string) []models.ShoppingCategory {
	type bucket struct {
		parsed parsedIngredient
		count  int
	}

	merged := map[string]*bucket{}
	var order []string
	for _, line := range ingredients {
		if strings.TrimSpace(line) == "" {
			continue
		}
		p := parseIngredient(line)
		key := p.name + "|" + p.unit
		if b, ok := merged[key]; ok {
			b.parsed.amount += p.amount
			b.count++
		} else {
			merged[key] = &bucket{parsed: p, count: 1}
			order = append(order, key)
		}
	}

	categories := map[string][]models.ShoppingListItem{}
	var categoryOrder []string
	for _, key := range order {
		b := merged[key]
		p := b.parsed

		var name, quantity string
		switch {
		case p.amount == 0:
			// no parseable quantity, keep the raw line and count duplicates
			name = p.original
			quantity = fmt.Sprintf("x%d", b.count)
		case p.unit == "":
			name = pluralize(p.name, p.amount)
			quantity = formatAmount(p.amount)
		default:
			name = p.name
			quantity = formatAmount(p.amount) + " " + p.unit
		}

		category := categorize(p.name, language)
		if _, ok := categories[category]; !ok {
			categoryOrder = append(categoryOrder, category)
		}
		categories[category] = append(categories[category], models.ShoppingListItem{Name: name, Quantity: quantity})
	}

	sort.Strings(categoryOrder)
	out := make([]models.ShoppingCategory, 0, len(categoryOrder))
	for _, category := range categoryOrder {
		out = append(out, models.ShoppingCategory{Category: category, Items: categories[category]})
	}
	return out
}
