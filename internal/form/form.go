// Package form validates submitted records before they reach the store.
//
// Every check that depends on who is submitting takes an explicit Context;
// nothing is read from the request.
package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"silant-backend/internal/access"
	e "silant-backend/internal/errors"
	"silant-backend/internal/model"
	"silant-backend/internal/parse"
)

const (
	msgRequired    = "this field is required"
	msgInvalidDate = "enter a valid date in YYYY-MM-DD format"
	msgNegative    = "must be a non-negative number"
	msgChoice      = "select a valid choice"
	msgDateOrder   = "must not be earlier than the refusal date"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonName)
	}
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// Context is who the form is being filled in for.
type Context struct {
	Principal access.Principal
}

// Lookup is what validation needs from storage.
type Lookup interface {
	ReferenceExists(ctx context.Context, table string, id int64) (bool, error)
	GetMachine(ctx context.Context, p access.Principal, id int64) (model.Machine, error)
}

// BindError converts a gin binding failure into a field-keyed ValidationError.
func BindError(err error) error {
	verr := &e.ValidationError{}

	var fieldErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), fieldMessage(fe))
		}
	case errors.As(err, &typeErr):
		verr.Add(typeErr.Field, "invalid value type, expected "+typeErr.Type.String())
	case errors.As(err, &syntaxErr):
		verr.Add("body", "malformed JSON")
	default:
		verr.Add("body", "request body must be a JSON object")
	}
	return verr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "max":
		return fmt.Sprintf("ensure this value has at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("ensure this value has at least %s characters", fe.Param())
	case "gt":
		return msgChoice
	default:
		return "invalid value"
	}
}

// checker collects field errors across one submission.
type checker struct {
	ctx    context.Context
	lookup Lookup
	errs   e.ValidationError
	err    error // storage failure, reported instead of field errors
}

func (c *checker) date(field, raw string) time.Time {
	t, err := parse.Date(raw)
	if err != nil {
		c.errs.Add(field, msgInvalidDate)
	}
	return t
}

func (c *checker) nonNegative(field string, v *int) int {
	if v == nil {
		c.errs.Add(field, msgRequired)
		return 0
	}
	if *v < 0 {
		c.errs.Add(field, msgNegative)
	}
	return *v
}

func (c *checker) exists(field, table string, id int64) {
	if c.err != nil {
		return
	}
	ok, err := c.lookup.ReferenceExists(c.ctx, table, id)
	if err != nil {
		c.err = err
		return
	}
	if !ok {
		c.errs.Add(field, msgChoice)
	}
}

// machine checks that id is one of the machines fc may choose from.
func (c *checker) machine(field string, fc Context, id int64) {
	if c.err != nil {
		return
	}
	_, err := c.lookup.GetMachine(c.ctx, fc.Principal, id)
	switch {
	case errors.Is(err, e.ErrNotFound):
		c.errs.Add(field, msgChoice)
	case err != nil:
		c.err = err
	}
}

func (c *checker) result() error {
	if c.err != nil {
		return c.err
	}
	if c.errs.Empty() {
		return nil
	}
	return &c.errs
}
