package lending

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"Gin_postgres_redis_av_lending/db"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCreateFailed       = errors.New("could not create record")
	ErrSelfDelete         = errors.New("cannot delete yourself")

	ErrItemUnavailable = db.ErrItemUnavailable
	ErrHasLoans        = db.ErrHasLoans
	ErrItemInUse       = db.ErrItemInUse
	ErrAlreadyReturned = errors.New("loan already returned")
	ErrLoanClosed      = errors.New("loan is already closed")
	ErrLoanNotPending  = errors.New("loan is not pending")
)

// ValidationError carries field-scoped messages; nothing was written.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// notFound 把 gorm 的 not found（可能带 "item: " 之类前缀）换成 ErrNotFound
func notFound(err error) error {
	if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	what := strings.TrimSuffix(err.Error(), ": "+gorm.ErrRecordNotFound.Error())
	if what == gorm.ErrRecordNotFound.Error() {
		return ErrNotFound
	}
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}()

func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{Fields: map[string]string{}}
	for _, fe := range verrs {
		ve.Fields[fe.Field()] = fieldMessage(fe)
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "is invalid"
}
