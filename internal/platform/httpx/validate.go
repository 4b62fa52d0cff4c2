package httpx

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/lokafin/lokafin/internal/shared"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs validator tags against a request DTO and converts
// failures into the shared validation kind.
func ValidateStruct(target any) error {
	err := validate.Struct(target)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return shared.Validationf("field %s failed on %s", fe.Field(), fe.Tag())
	}
	return fmt.Errorf("%w: %v", shared.ErrValidation, err)
}
