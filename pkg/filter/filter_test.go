package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfseed/sfseed/pkg/models"
)

func TestCompileRejectsBadExpressions(t *testing.T) {
	_, err := Compile(`Industry == `)
	assert.Error(t, err)
}

func TestMatch(t *testing.T) {
	f, err := Compile(`Industry == "Banking" and AnnualRevenue > 1000000`)
	require.NoError(t, err)

	ok, err := f.Match(models.SObject{"Industry": "Banking", "AnnualRevenue": 2000000})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Match(models.SObject{"Industry": "Energy", "AnnualRevenue": 2000000})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchTreatsMissingFieldsAsNil(t *testing.T) {
	f, err := Compile(`Industry == "Banking"`)
	require.NoError(t, err)

	ok, err := f.Match(models.SObject{"Name": "Acme"})
	require.NoError(t, err)
	assert.False(t, ok, "a record without the field never matches")
}

func TestApplyKeepsMatchesOnly(t *testing.T) {
	f, err := Compile(`Amount > 100`)
	require.NoError(t, err)

	records := []models.SObject{
		{"Id": "1", "Amount": 50},
		{"Id": "2", "Amount": 150},
		{"Id": "3", "Amount": 200},
	}
	got, err := f.Apply(records)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].GetString("Id"))
}

func TestSource(t *testing.T) {
	f, err := Compile(`Name != nil`)
	require.NoError(t, err)
	assert.Equal(t, `Name != nil`, f.Source())
}
