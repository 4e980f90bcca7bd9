package models

// ShoppingListItem is one consolidated ingredient line.
type ShoppingListItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

// ShoppingCategory groups consolidated items under a store-aisle category.
type ShoppingCategory struct {
	Category string             `json:"category"`
	Items    []ShoppingListItem `json:"items"`
}
