package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required,min=2"`
	URL   string `json:"url" validate:"omitempty,slug"`
	Start string `json:"start_time" validate:"omitempty,clock"`
	Level int    `json:"level" validate:"gte=0,lte=100"`
}

func TestValidateStructReportsJSONNames(t *testing.T) {
	err := ValidateStruct(sample{URL: "Not A Slug", Start: "25:00", Level: 101})
	require.Error(t, err)

	msgs := FormatValidationErrors(err)
	assert.Equal(t, "name is required", msgs["name"])
	assert.Contains(t, msgs["url"], "dashes")
	assert.Contains(t, msgs["start_time"], "HH:MM")
	assert.Contains(t, msgs["level"], "less than or equal")
}

func TestValidateStructAccepts(t *testing.T) {
	assert.NoError(t, ValidateStruct(sample{Name: "ok", URL: "algebra-i", Start: "09:30", Level: 40}))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  a\x00bc \n"))
}
