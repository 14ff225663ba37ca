package payment

import (
	"fmt"

	"github.com/sharath018/jharkhand-tourism-backend/internal/vendorprofile"
)

// minimumFees are registration fees in paise.
var minimumFees = map[vendorprofile.Category]int64{
	vendorprofile.CategoryGuide:          10000,
	vendorprofile.CategoryAccommodation:  50000,
	vendorprofile.CategoryFoodRestaurant: 25000,
	vendorprofile.CategoryTransportation: 20000,
	vendorprofile.CategoryActivity:       15000,
}

// MinimumFee returns the registration fee for a category, in paise.
func MinimumFee(category vendorprofile.Category) (int64, error) {
	fee, ok := minimumFees[category]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return fee, nil
}
