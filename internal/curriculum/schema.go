package curriculum

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// classFormatSchema describes the persisted shape of a class format: an
// ordered array of {type, level} slots. This is the one bit-exact format the
// store depends on, since overrides and resolution index into it positionally.
const classFormatSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "array",
	"minItems": 1,
	"maxItems": 6,
	"items": {
		"type": "object",
		"required": ["type", "level"],
		"properties": {
			"type": {"enum": ["vocab", "listening", "reading", "grammar", "empty"]},
			"level": {"type": "integer", "minimum": 0, "maximum": 9}
		}
	}
}`

var classFormatLoader = gojsonschema.NewStringLoader(classFormatSchema)

// validateClassFormat checks a raw class-format JSON document against the
// schema before it is decoded. Guards against rows written by older or
// foreign tooling.
func validateClassFormat(doc []byte) error {
	result, err := gojsonschema.Validate(classFormatLoader, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validating class format: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("invalid class format document: %s", strings.Join(msgs, "; "))
}
