package domain

import (
	"time"

	"github.com/google/uuid"
)

type Advertisement struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"created_at"` // always UTC, microsecond precision
}

// CreateAdvertisementInput uses pointers so that a missing key can be told
// apart from a zero value.
type CreateAdvertisementInput struct {
	Title       *string  `json:"title" validate:"required,min=1"`
	Description *string  `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Author      *string  `json:"author" validate:"required"`
}

func (in CreateAdvertisementInput) Validate() error {
	return validateStruct(in)
}

// UpdateAdvertisementInput carries only the fields present in a PATCH body.
type UpdateAdvertisementInput struct {
	Title       Optional[string]  `json:"title"`
	Description Optional[string]  `json:"description"`
	Price       Optional[float64] `json:"price" validate:"omitempty,gte=0"`
	Author      Optional[string]  `json:"author"`
}

func (in UpdateAdvertisementInput) Validate() error {
	var fields []FieldError
	for _, f := range []struct {
		name string
		null bool
	}{
		{"title", in.Title.Null},
		{"description", in.Description.Null},
		{"price", in.Price.Null},
		{"author", in.Author.Null},
	} {
		if f.null {
			fields = append(fields, FieldError{Field: f.name, Code: "INVALID_NULL", Message: f.name + " must not be null"})
		}
	}
	// omitempty would skip a present empty string, so title is checked by hand
	if in.Title.Present() && in.Title.Value == "" {
		fields = append(fields, FieldError{Field: "title", Code: "INVALID_MIN|1", Message: "title must not be empty"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return validateStruct(in)
}

// Apply copies the present fields onto ad. ID and CreatedAt are never touched.
func (in UpdateAdvertisementInput) Apply(ad *Advertisement) {
	if in.Title.Present() {
		ad.Title = in.Title.Value
	}
	if in.Description.Present() {
		ad.Description = in.Description.Value
	}
	if in.Price.Present() {
		ad.Price = in.Price.Value
	}
	if in.Author.Present() {
		ad.Author = in.Author.Value
	}
}
