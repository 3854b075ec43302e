// Package validation checks the enumerated and date fields of a todo before
// anything reaches the database.
package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"todo-service/internal/models"
)

const (
	FieldStatus   = "status"
	FieldPriority = "priority"
	FieldCategory = "category"
	FieldDueDate  = "dueDate"
)

// Error is a failed check on a single field. Message is the text returned
// to the client.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrInvalidStatus   = &Error{Field: FieldStatus, Message: "Invalid Todo Status"}
	ErrInvalidPriority = &Error{Field: FieldPriority, Message: "Invalid Todo Priority"}
	ErrInvalidCategory = &Error{Field: FieldCategory, Message: "Invalid Todo Category"}
	ErrInvalidDueDate  = &Error{Field: FieldDueDate, Message: "Invalid Due Date"}
)

var validate = validator.New()

// Enum validates a field restricted to a closed set of string values.
type Enum struct {
	Field  string
	Values []string
	err    *Error
	tag    string
}

func NewEnum(field string, err *Error, values ...string) *Enum {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}

	return &Enum{
		Field:  field,
		Values: values,
		err:    err,
		tag:    "oneof=" + strings.Join(quoted, " "),
	}
}

var (
	Status   = NewEnum(FieldStatus, ErrInvalidStatus, models.Statuses...)
	Priority = NewEnum(FieldPriority, ErrInvalidPriority, models.Priorities...)
	Category = NewEnum(FieldCategory, ErrInvalidCategory, models.Categories...)
)

// Validate requires value to be one of the enumerated values.
func (e *Enum) Validate(value string) error {
	if err := validate.Var(value, e.tag); err != nil {
		return e.err
	}
	return nil
}

// ValidateFilter accepts the empty string as "no restriction".
func (e *Enum) ValidateFilter(value string) error {
	if err := validate.Var(value, "omitempty,"+e.tag); err != nil {
		return e.err
	}
	return nil
}

// First returns the first non-nil error, preserving check order.
func First(checks ...func() error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}
