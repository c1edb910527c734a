// Package productform validates and submits the admin product dialog.
package productform

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matthieukhl/storefront/internal/models"
)

// Field names, matching the JSON names of models.Product.
const (
	FieldImage             = "image"
	FieldTitle             = "title"
	FieldDescription       = "description"
	FieldPrice             = "price"
	FieldAvailableQuantity = "availableQuantity"
	FieldProductType       = "productType"
)

// Form is the content of the product dialog. An empty ID means create.
type Form struct {
	ID                string
	Title             string
	Description       string
	Price             float64
	AvailableQuantity int
	ProductType       string
	Image             string
}

// FromProduct pre-fills a form for editing.
func FromProduct(p models.Product) Form {
	return Form{
		ID:                p.ID,
		Title:             p.Title,
		Description:       p.Description,
		Price:             p.Price,
		AvailableQuantity: p.AvailableQuantity,
		ProductType:       p.ProductType,
		Image:             p.Image,
	}
}

// Product converts the form into the payload sent to the API.
func (f Form) Product() models.Product {
	return models.Product{
		ID:                f.ID,
		Title:             strings.TrimSpace(f.Title),
		Description:       strings.TrimSpace(f.Description),
		Price:             f.Price,
		AvailableQuantity: f.AvailableQuantity,
		ProductType:       f.ProductType,
		Image:             strings.TrimSpace(f.Image),
	}
}

// IsEdit reports whether submitting the form updates an existing product.
func (f Form) IsEdit() bool {
	return f.ID != ""
}

// FieldErrors maps a field name to its message.
type FieldErrors map[string]string

// Fields returns the failing field names in a stable order.
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}

// ValidationError is returned when a form is submitted with field errors.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields.Fields() {
		parts = append(parts, f+": "+e.Fields[f])
	}
	return "invalid product: " + strings.Join(parts, "; ")
}

// Validate checks the form against the required-field and range rules.
// categories is the accepted productType set. The result is empty when
// the form can be submitted.
func Validate(f Form, categories []string) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Image) == "" {
		errs[FieldImage] = "image URL is required"
	}
	if strings.TrimSpace(f.Title) == "" {
		errs[FieldTitle] = "title is required"
	}
	if strings.TrimSpace(f.Description) == "" {
		errs[FieldDescription] = "description is required"
	}
	if !(f.Price > 0) || math.IsInf(f.Price, 1) {
		errs[FieldPrice] = "price must be greater than 0"
	}
	if f.AvailableQuantity < 0 {
		errs[FieldAvailableQuantity] = "available quantity cannot be negative"
	}
	switch {
	case f.ProductType == "":
		errs[FieldProductType] = "product type is required"
	case f.ProductType == models.CategoryAll || !slices.Contains(categories, f.ProductType):
		errs[FieldProductType] = fmt.Sprintf("unknown product type %q", f.ProductType)
	}
	return errs
}

// Input is the dialog content as typed, before numbers are parsed.
type Input struct {
	ID                string
	Title             string
	Description       string
	Price             string
	AvailableQuantity string
	ProductType       string
	Image             string
}

// InputFromForm renders a form back into editable text.
func InputFromForm(f Form) Input {
	in := Input{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		ProductType: f.ProductType,
		Image:       f.Image,
	}
	if f.Price != 0 {
		in.Price = strconv.FormatFloat(f.Price, 'f', -1, 64)
	}
	in.AvailableQuantity = strconv.Itoa(f.AvailableQuantity)
	return in
}

// Parse converts typed input into a Form. Numbers that do not parse are
// reported as field errors; the remaining rules are left to Validate.
func (in Input) Parse() (Form, FieldErrors) {
	f := Form{
		ID:          strings.TrimSpace(in.ID),
		Title:       in.Title,
		Description: in.Description,
		ProductType: strings.TrimSpace(in.ProductType),
		Image:       in.Image,
	}
	errs := FieldErrors{}

	if s := strings.TrimSpace(in.Price); s != "" {
		price, err := strconv.ParseFloat(s, 64)
		if err != nil {
			errs[FieldPrice] = "price must be a number"
		} else {
			f.Price = price
		}
	}
	if s := strings.TrimSpace(in.AvailableQuantity); s != "" {
		qty, err := strconv.Atoi(s)
		if err != nil {
			errs[FieldAvailableQuantity] = "available quantity must be a whole number"
		} else {
			f.AvailableQuantity = qty
		}
	}
	return f, errs
}

// ParseAndValidate runs Parse and Validate, keeping the parse message for
// fields that failed both.
func (in Input) ParseAndValidate(categories []string) (Form, FieldErrors) {
	f, errs := in.Parse()
	for field, msg := range Validate(f, categories) {
		if _, ok := errs[field]; !ok {
			errs[field] = msg
		}
	}
	return f, errs
}
