package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "required": ["utterance"],
  "properties": {
    "utterance": {"type": "string", "minLength": 1, "maxLength": 50},
    "limit": {"type": "integer", "minimum": 0}
  }
}`

func TestValidate(t *testing.T) {
	schema := MustCompile(testSchema)

	tests := []struct {
		name      string
		document  interface{}
		valid     bool
		errField  string
		errorCode string
	}{
		{
			name:     "valid map",
			document: map[string]interface{}{"utterance": "show brokers", "limit": 5},
			valid:    true,
		},
		{
			name:      "missing utterance",
			document:  map[string]interface{}{"limit": 5},
			errField:  "utterance",
			errorCode: "REQUIRED",
		},
		{
			name:      "empty utterance",
			document:  map[string]interface{}{"utterance": ""},
			errField:  "utterance",
			errorCode: "STRING_GTE",
		},
		{
			name:      "negative limit",
			document:  map[string]interface{}{"utterance": "x", "limit": -1},
			errField:  "limit",
			errorCode: "NUMBER_GTE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := schema.Validate(tt.document)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.True(t, result.HasErrors(tt.errField), "errors: %v", result.GetErrorMessages())
				assert.Equal(t, tt.errorCode, result.GetErrorsForField(tt.errField)[0].Code)
			}
		})
	}
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
}
