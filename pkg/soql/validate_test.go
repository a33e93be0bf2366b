package soql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pkgErrors "github.com/sfseed/sfseed/pkg/errors"
)

func TestValidateWhere(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name     string
		fragment string
		ok       bool
	}{
		{"empty", "", true},
		{"simple equality", "Industry = 'Banking'", true},
		{"boolean combination", "Industry = 'Banking' AND AnnualRevenue > 1000000", true},
		{"parenthesized", "(Name LIKE 'A%' OR Name LIKE 'B%') AND IsActive = true", true},
		{"soql date literal falls back to scan", "CreatedDate = LAST_N_DAYS:30", true},
		{"statement injection", "1 = 1; DELETE FROM Account", false},
		{"soql-only syntax with comment marker", "CreatedDate = LAST_N_DAYS:30 -- drop", false},
		{"soql-only syntax with block comment", "CreatedDate = LAST_N_DAYS:30 /* x */", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateWhere(tt.fragment)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.True(t, pkgErrors.IsValidation(err))
			}
		})
	}
}
