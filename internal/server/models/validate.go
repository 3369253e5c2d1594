// Package models defines the typed records the vault stores: users, sessions,
// directories, file records and metadata index entries. Constructors validate
// their input with go-playground/validator.
package models

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks v against its `validate` tags. Failures wrap
// common.ErrorValidation and name the first offending field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return fmt.Errorf("%w: %s failed on '%s'", common.ErrorValidation, e.Namespace(), e.Tag())
	}
	return fmt.Errorf("%w: %v", common.ErrorValidation, err)
}
