package soql

import (
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	pkgErrors "github.com/sfseed/sfseed/pkg/errors"
)

// Validator checks operator-supplied WHERE fragments before they are
// embedded into a composed query.
type Validator struct {
	parser *parser.Parser
}

// NewValidator creates a new Validator
func NewValidator() *Validator {
	return &Validator{parser: parser.New()}
}

// ValidateWhere validates a WHERE fragment. SOQL's filter grammar is close
// enough to SQL that a probe statement parses for ordinary fragments; when
// it does, exactly one SELECT must come back. Fragments using SOQL-only
// syntax (date literals, semi-joins) fail the parse and fall back to a
// token scan that rejects statement separators and comment markers.
func (v *Validator) ValidateWhere(fragment string) error {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil
	}

	probe := "SELECT Id FROM probe WHERE " + fragment
	stmts, _, err := v.parser.Parse(probe, "", "")
	if err != nil {
		return scanFragment(fragment)
	}

	if len(stmts) != 1 {
		return pkgErrors.NewValidationError("where", "only a single filter expression is allowed")
	}
	if _, ok := stmts[0].(*ast.SelectStmt); !ok {
		return pkgErrors.NewValidationError("where", "fragment must stay a filter expression")
	}
	return nil
}

// scanFragment is the fallback check for fragments the SQL parser cannot
// read: it rejects anything that could terminate the statement or open a
// comment.
func scanFragment(fragment string) error {
	for _, marker := range []string{";", "--", "/*", "#"} {
		if strings.Contains(fragment, marker) {
			return pkgErrors.NewValidationError("where", "fragment contains disallowed token "+marker)
		}
	}
	return nil
}
