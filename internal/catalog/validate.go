package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// identifierRegex restricts names used as identifiers across the catalog.
var identifierRegex = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return identifierRegex.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("catalog: registering identifier validation: %v", err))
	}
	return v
}

// Validate performs structural checks on every definition and returns all
// problems found joined together. Cross references (unknown factors or
// functions, cycles, missing data paths) are checked by the planning
// packages, which report them with typed errors.
func (c *Catalog) Validate() error {
	var errs []error

	for _, def := range c.Indicators() {
		if err := validate.Struct(def); err != nil {
			errs = append(errs, describe(fmt.Sprintf("indicator %q", def.DataPath), err))
		}
	}
	for _, def := range c.Classes() {
		if err := validate.Struct(def); err != nil {
			errs = append(errs, describe(fmt.Sprintf("class %q", def.Name), err))
		}
	}
	for _, def := range c.Functions() {
		if err := validate.Struct(def); err != nil {
			errs = append(errs, describe(fmt.Sprintf("function %q", def.Name), err))
		}
	}
	for _, def := range c.Factors() {
		if err := validate.Struct(def); err != nil {
			errs = append(errs, describe(fmt.Sprintf("factor %q", def.Name), err))
		}
		seen := make(map[string]struct{}, len(def.Sources))
		for _, src := range def.Sources {
			if _, dup := seen[src.DataPath]; dup {
				errs = append(errs, fmt.Errorf("factor %q declares data path %q more than once", def.Name, src.DataPath))
			}
			seen[src.DataPath] = struct{}{}
		}
	}

	return errors.Join(errs...)
}

// describe flattens validator output into a single readable error.
func describe(owner string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%s: %w", owner, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("field %s failed %q (%s)", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("field %s failed %q", field, fe.Tag()))
		}
	}
	return fmt.Errorf("%s: %s", owner, strings.Join(msgs, "; "))
}
