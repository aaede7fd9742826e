package handler

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parkseva/internal/model"
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is returned by RequestValidator.Validate.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Field + ": " + e.Message
	}
	return strings.Join(msgs, "; ")
}

// RequestValidator adapts go-playground/validator to echo.Validator.  It
// registers the ev_type and vehicle_size tags.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator builds the validator installed on the Echo instance.
func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	mustRegister(v, "ev_type", func(fl validator.FieldLevel) bool {
		return model.EVType(fl.Field().String()).Valid()
	})
	mustRegister(v, "vehicle_size", func(fl validator.FieldLevel) bool {
		return model.VehicleSize(fl.Field().String()).Valid()
	})
	return &RequestValidator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

// Validate implements echo.Validator.
func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gtfield":
		return "must be after " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "ev_type":
		return "must be one of: none level1 level2 dc_fast"
	case "vehicle_size":
		return "must be one of: compact standard large motorcycle"
	}
	return "is invalid"
}

// bindValid binds the request body into req and validates it.  On failure
// it writes the 400 response itself and returns false.
func bindValid(c echo.Context, req interface{}) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		var details ValidationErrors
		if ve, ok := err.(ValidationErrors); ok {
			details = ve
		}
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "details": details})
	}
	return true, nil
}
