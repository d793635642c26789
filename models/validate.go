package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Normalize canonicalizes the category and fills defaults left blank by the form.
func (d *Draft) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Author = strings.TrimSpace(d.Author)
	if d.Author == "" {
		d.Author = DefaultAuthor
	}
	if d.Category == "" {
		d.Category = CategoryNews
	}
	if c, ok := ParseCategory(string(d.Category)); ok {
		d.Category = c
	}
}

// Validate reports the fields a draft is missing, naming them by their JSON name.
func (d Draft) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return fmt.Errorf("missing or invalid fields: %s", strings.Join(fields, ", "))
}
