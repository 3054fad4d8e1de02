// internal/llm/schema.go
package llm

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// extractionSchema is the structured-output contract for trip-field
// extraction. Model output failing this schema is an extraction failure, not
// a crash.
const extractionSchema = `{
  "type": "object",
  "properties": {
    "departure_date": {"type": ["string", "null"], "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
    "origin": {"type": ["string", "null"]},
    "destination": {"type": ["string", "null"]},
    "cabin_class": {"type": ["string", "null"]},
    "duration": {"type": ["integer", "null"], "minimum": 1, "maximum": 365},
    "followup_question": {"type": ["string", "null"]},
    "needs_followup": {"type": "boolean"},
    "info_complete": {"type": "boolean"}
  },
  "required": ["needs_followup", "info_complete"],
  "additionalProperties": true
}`

var extractionLoader = gojsonschema.NewStringLoader(extractionSchema)

// ValidateExtraction checks a raw model payload against the extraction
// contract before it is allowed to touch conversation state.
func ValidateExtraction(raw []byte) error {
	result, err := gojsonschema.Validate(extractionLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if !result.Valid() {
		first := ""
		if errs := result.Errors(); len(errs) > 0 {
			first = errs[0].String()
		}
		return fmt.Errorf("%w: schema violation: %s", ErrBadResponse, first)
	}
	return nil
}
