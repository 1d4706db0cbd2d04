package middleware

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var errorMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"max":      "is too long",
	"doctor":   "is not a doctor at this clinic",
	"duration": "is not an offered appointment length",
}

// RegisterValidators installs the roster-aware "doctor" and "duration" tags on
// gin's validator and reports field names by their form or json tag.
func RegisterValidators(doctors []string, durations []int) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	roster := make(map[string]struct{}, len(doctors))
	for _, d := range doctors {
		roster[d] = struct{}{}
	}
	offered := make(map[int64]struct{}, len(durations))
	for _, d := range durations {
		offered[int64(d)] = struct{}{}
	}

	if err := v.RegisterValidation("doctor", func(fl validator.FieldLevel) bool {
		_, ok := roster[fl.Field().String()]
		return ok
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		_, ok := offered[fl.Field().Int()]
		return ok
	}); err != nil {
		return err
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return nil
}

// ValidationErrors translates a binding error into per-field messages. It
// returns nil when err is not a validation failure.
func ValidationErrors(err error) []ValidationError {
	var errs validator.ValidationErrors
	if !stderrors.As(err, &errs) {
		return nil
	}
	out := make([]ValidationError, 0, len(errs))
	for _, e := range errs {
		msg, ok := errorMessages[e.Tag()]
		if !ok {
			msg = "is invalid"
		}
		out = append(out, ValidationError{Field: e.Field(), Message: msg})
	}
	return out
}

// Validation answers 400 with per-field messages when a handler attached a
// validation failure with c.Error.
func Validation() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		var validationErrors []ValidationError
		for _, e := range c.Errors {
			validationErrors = append(validationErrors, ValidationErrors(e.Err)...)
		}
		if len(validationErrors) > 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"errors": validationErrors,
			})
		}
	}
}
