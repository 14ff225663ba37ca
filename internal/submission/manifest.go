package submission

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sharath018/jharkhand-tourism-backend/internal/contentstore"
	"github.com/sharath018/jharkhand-tourism-backend/internal/vendorprofile"
)

const uploadConcurrency = 4

// highlightCategories lists, per vendor category, the form keys whose first
// file is the highlight document.
var highlightCategories = map[vendorprofile.Category][]string{
	vendorprofile.CategoryGuide:          {"photo", "profilePhoto"},
	vendorprofile.CategoryAccommodation:  {"propertyPhotos"},
	vendorprofile.CategoryFoodRestaurant: {"restaurantPhotos"},
	vendorprofile.CategoryTransportation: {"vehiclePhotos"},
	vendorprofile.CategoryActivity:       {"activityPhotos"},
}

// uploadDocuments pins every file and builds the manifest. Any failed
// upload fails the whole call; files already pinned are left in place.
func uploadDocuments(ctx context.Context, store ContentStore, files Files, uploadedAt time.Time) (Manifest, error) {
	categories := make([]string, 0, len(files))
	for category := range files {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	results := make(map[string][]contentstore.UploadedFile, len(files))
	for _, category := range categories {
		results[category] = make([]contentstore.UploadedFile, len(files[category]))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for _, category := range categories {
		for i, file := range files[category] {
			slot := &results[category][i]
			g.Go(func() error {
				uploaded, err := store.UploadFile(gctx, file)
				if err != nil {
					return fmt.Errorf("%s/%s: %w", category, file.Name, err)
				}
				*slot = uploaded
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return Manifest{}, err
	}

	return Manifest{UploadedAt: uploadedAt, Documents: results}, nil
}

func findHighlight(category vendorprofile.Category, m Manifest) *Highlight {
	for _, key := range highlightCategories[category] {
		if files := m.Documents[key]; len(files) > 0 {
			return &Highlight{Category: key, File: files[0]}
		}
	}
	return nil
}
