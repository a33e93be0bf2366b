// Package filter evaluates client-side record filters. The expression
// language sees the record's fields as variables, so operators can write
// filters the org's query language cannot express, e.g.
// `Industry == "Banking" and AnnualRevenue > 1000000`.
package filter

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/sfseed/sfseed/pkg/models"
)

// Filter is a compiled record predicate.
type Filter struct {
	source  string
	program *vm.Program
}

// Compile compiles an expression into a Filter. Field names not present
// on a record evaluate as nil rather than failing.
func Compile(source string) (*Filter, error) {
	program, err := expr.Compile(source,
		expr.Env(map[string]interface{}{}),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return &Filter{source: source, program: program}, nil
}

// Match evaluates the filter against one record.
func (f *Filter) Match(record models.SObject) (bool, error) {
	out, err := expr.Run(f.program, map[string]interface{}(record))
	if err != nil {
		return false, fmt.Errorf("filter evaluation failed: %w", err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Apply returns the records the filter accepts. Evaluation errors fail
// the whole batch so a typo does not silently seed everything.
func (f *Filter) Apply(records []models.SObject) ([]models.SObject, error) {
	out := make([]models.SObject, 0, len(records))
	for _, rec := range records {
		ok, err := f.Match(rec)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Source returns the original expression text.
func (f *Filter) Source() string {
	return f.source
}
