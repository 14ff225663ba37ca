package submission

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sharath018/jharkhand-tourism-backend/internal/application"
	"github.com/sharath018/jharkhand-tourism-backend/internal/ledger/vendorreg"
	"github.com/sharath018/jharkhand-tourism-backend/internal/vendorprofile"
)

// sensitiveFields never leave the process; the PAN reaches the legacy
// registry only as a hash.
var sensitiveFields = map[string]bool{
	"panNumber":     true,
	"pan":           true,
	"aadhaarNumber": true,
	"accountNumber": true,
	"ifscCode":      true,
}

// sanitize returns a copy of the form without sensitive fields, stamped
// with the resolved category.
func sanitize(form FormData, category vendorprofile.Category) map[string]interface{} {
	clean := make(map[string]interface{}, len(form)+1)
	for key, value := range form {
		if sensitiveFields[key] {
			continue
		}
		clean[key] = value
	}
	clean["vendorType"] = string(category)
	return clean
}

// field returns the first non-empty value among keys, stringified.
func (f FormData) field(keys ...string) string {
	for _, key := range keys {
		value, ok := f[key]
		if !ok || value == nil {
			continue
		}
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			s = fmt.Sprint(v)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func registration(form FormData, user *vendorprofile.User, category vendorprofile.Category, paymentID string) vendorreg.VendorRegistration {
	return vendorreg.VendorRegistration{
		Name:            firstNonEmpty(form.field("businessName", "fullName", "name"), user.FullName),
		Email:           firstNonEmpty(form.field("email"), user.Email),
		Contact:         firstNonEmpty(form.field("phone", "contactNumber", "mobile"), user.Phone),
		VendorType:      string(category),
		BusinessAddress: form.field("businessAddress", "address"),
		PaymentID:       paymentID,
	}
}

// applyEvidence sets the category-specific evidence field: the highlight
// photo for guides, the licence number for transport and the GST number
// for everyone else.
func applyEvidence(app *application.Application, category vendorprofile.Category, form FormData, highlight *Highlight) {
	switch category {
	case vendorprofile.CategoryGuide:
		if highlight != nil {
			hash := highlight.File.Hash
			app.Photo = &hash
		}
	case vendorprofile.CategoryTransportation:
		if license := form.field("licenseNumber", "drivingLicenseNumber"); license != "" {
			app.LicenseNumber = &license
		}
	default:
		if gst := form.field("gstNumber"); gst != "" {
			app.GSTNumber = &gst
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
