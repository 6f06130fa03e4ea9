package domain

import "strings"

// Validation is the outcome of checking a candidate record or file.
type Validation struct {
	Valid  bool
	Errors []string
}

// Err returns nil for a valid result and a *ValidationError otherwise.
func (v Validation) Err() error {
	if v.Valid {
		return nil
	}
	return NewValidationError(v.Errors...)
}

func newValidation(errs []string) Validation {
	return Validation{Valid: len(errs) == 0, Errors: errs}
}

const (
	msgNameRequired        = "Item name is required"
	msgDescriptionRequired = "Item description is required"
	msgLocationRequired    = "Location is required"
	msgDateRequired        = "Date is required"
	msgStatusRequired      = "Valid status is required"
)

// Validate checks every rule for a new item and reports all violations.
func Validate(it NewItem) Validation {
	var errs []string
	if blank(it.Name) {
		errs = append(errs, msgNameRequired)
	}
	if blank(it.Description) {
		errs = append(errs, msgDescriptionRequired)
	}
	if blank(it.Location) {
		errs = append(errs, msgLocationRequired)
	}
	if blank(it.Date) {
		errs = append(errs, msgDateRequired)
	}
	if !it.Status.Valid() {
		errs = append(errs, msgStatusRequired)
	}
	return newValidation(errs)
}

// ValidateUpdate applies the text rules to the fields u supplies.
func ValidateUpdate(u ItemUpdate) Validation {
	var errs []string
	if u.Name != nil && blank(*u.Name) {
		errs = append(errs, msgNameRequired)
	}
	if u.Description != nil && blank(*u.Description) {
		errs = append(errs, msgDescriptionRequired)
	}
	if u.Location != nil && blank(*u.Location) {
		errs = append(errs, msgLocationRequired)
	}
	if u.Date != nil && blank(*u.Date) {
		errs = append(errs, msgDateRequired)
	}
	return newValidation(errs)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
