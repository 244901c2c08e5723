package registry

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const maxAnswerLength = 4000

// Schema builds the JSON schema for a phase's answers: every question key
// required, non-empty strings, no extras.
func Schema(phase Phase) map[string]interface{} {
	questions := Questions(phase)

	properties := make(map[string]interface{}, len(questions))
	required := make([]string, 0, len(questions))
	for _, q := range questions {
		properties[q.Key] = map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"maxLength": maxAnswerLength,
		}
		if q.Required {
			required = append(required, q.Key)
		}
	}

	return map[string]interface{}{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// ValidateAnswers checks a phase submission against its schema and returns a
// single error describing every violation.
func ValidateAnswers(phase Phase, answers map[string]string) error {
	doc := make(map[string]interface{}, len(answers))
	for k, v := range answers {
		doc[k] = v
	}

	schemaLoader := gojsonschema.NewGoLoader(Schema(phase))
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, resErr := range result.Errors() {
		messages = append(messages, resErr.String())
	}
	return fmt.Errorf("invalid answers: %s", strings.Join(messages, "; "))
}
