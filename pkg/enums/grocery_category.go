package enums

import "fmt"

// GroceryCategory buckets grocery items for the grouped list view.
type GroceryCategory string

const (
	GroceryCategoryProduce   GroceryCategory = "produce"
	GroceryCategoryDairy     GroceryCategory = "dairy"
	GroceryCategoryMeat      GroceryCategory = "meat"
	GroceryCategoryPantry    GroceryCategory = "pantry"
	GroceryCategoryFrozen    GroceryCategory = "frozen"
	GroceryCategoryBeverages GroceryCategory = "beverages"
	GroceryCategorySnacks    GroceryCategory = "snacks"
	GroceryCategoryHousehold GroceryCategory = "household"
	GroceryCategoryOther     GroceryCategory = "other"
)

// GroceryCategories lists every category in display order. The grouped list
// view iterates this slice so group ordering never depends on insertion order.
var GroceryCategories = []GroceryCategory{
	GroceryCategoryProduce,
	GroceryCategoryDairy,
	GroceryCategoryMeat,
	GroceryCategoryPantry,
	GroceryCategoryFrozen,
	GroceryCategoryBeverages,
	GroceryCategorySnacks,
	GroceryCategoryHousehold,
	GroceryCategoryOther,
}

// String implements fmt.Stringer.
func (g GroceryCategory) String() string {
	return string(g)
}

// IsValid reports whether the value matches a known GroceryCategory.
func (g GroceryCategory) IsValid() bool {
	for _, candidate := range GroceryCategories {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGroceryCategory converts raw input into a GroceryCategory.
func ParseGroceryCategory(value string) (GroceryCategory, error) {
	for _, candidate := range GroceryCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid grocery category %q", value)
}
