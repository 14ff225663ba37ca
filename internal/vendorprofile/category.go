package vendorprofile

import "strings"

// Category is a vendor's service category.
type Category string

const (
	CategoryGuide          Category = "GUIDE"
	CategoryAccommodation  Category = "ACCOMMODATION"
	CategoryFoodRestaurant Category = "FOOD_RESTAURANT"
	CategoryTransportation Category = "TRANSPORTATION"
	CategoryActivity       Category = "ACTIVITY"
)

var Categories = []Category{
	CategoryGuide,
	CategoryAccommodation,
	CategoryFoodRestaurant,
	CategoryTransportation,
	CategoryActivity,
}

// ParseCategory accepts any casing plus the short "TRANSPORT" alias used by
// older clients. The second return is false for anything else.
func ParseCategory(raw string) (Category, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	if normalized == "TRANSPORT" {
		return CategoryTransportation, true
	}
	for _, c := range Categories {
		if string(c) == normalized {
			return c, true
		}
	}
	return "", false
}

func (c Category) String() string {
	return string(c)
}
