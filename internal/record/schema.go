package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/JulianCode-PC/oa-docket/constants"
)

const datePattern = `^\d{4}-\d{2}-\d{2}$`

// Schema returns the JSON Schema of a serialized Result as a generic map.
func Schema() map[string]any {
	nullableDate := map[string]any{"type": []string{"string", "null"}, "pattern": datePattern}
	nullableString := map[string]any{"type": []string{"string", "null"}}
	score := map[string]any{"type": []string{"number", "null"}, "minimum": 0.0, "maximum": 1.0}
	stringList := map[string]any{"type": []string{"array", "null"}, "items": map[string]any{"type": "string"}}

	input := object(map[string]any{
		"doc_id":            map[string]any{"type": "string", "minLength": 1},
		"file_name":         map[string]any{"type": "string"},
		"file_path":         map[string]any{"type": "string"},
		"file_uri":          map[string]any{"type": "string"},
		"received_at":       map[string]any{"type": "string", "minLength": 1},
		"ocr_text":          map[string]any{"type": "string"},
		"ocr_confidence":    score,
		"extraction_method": map[string]any{"type": "string"},
		"pages":             map[string]any{"type": "integer", "minimum": 0},
		"status":            map[string]any{"type": "string"},
	}, "doc_id", "file_name", "received_at", "ocr_text", "status")

	oa := object(map[string]any{
		"oa_id":          map[string]any{"type": "string", "minLength": 1},
		"doc_id":         map[string]any{"type": "string", "minLength": 1},
		"document_type":  map[string]any{"type": "string"},
		"is_oa":          map[string]any{"type": "boolean"},
		"oa_type":        map[string]any{"enum": []any{string(constants.OATypeNonFinal), string(constants.OATypeFinal), string(constants.OATypeUnknown)}},
		"mailing_date":   nullableDate,
		"due_date":       nullableDate,
		"due_basis":      map[string]any{"enum": []any{nil, string(constants.BasisMailingDate), string(constants.BasisReceivedAt), string(constants.BasisUnknown)}},
		"issues_summary": map[string]any{"type": "array", "items": map[string]any{"type": "string", "maxLength": 180}},
		"confidence":     score,
		"case_ref":       nullableString,
	}, "oa_id", "doc_id", "is_oa", "oa_type", "mailing_date", "due_date", "issues_summary", "confidence")

	next := object(map[string]any{
		"plan_id":          map[string]any{"type": "string", "minLength": 1},
		"oa_id":            map[string]any{"type": "string", "minLength": 1},
		"recommended_path": map[string]any{"enum": []any{string(constants.PathArgue), string(constants.PathAmend), string(constants.PathNeedMoreInfo)}},
		"action_items":     stringList,
		"required_inputs":  stringList,
		"risk_note":        map[string]any{"type": "string"},
		"created_at":       map[string]any{"type": "string", "minLength": 1},
	}, "plan_id", "oa_id", "recommended_path", "action_items", "required_inputs", "risk_note", "created_at")

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"input_document": input,
			"oa_record":      oa,
			"next_step_plan": next,
			"docket":         map[string]any{"type": "object"},
		},
		"required": []string{"input_document", "oa_record", "next_step_plan"},
	}
}

func object(props map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

// Validate checks the JSON form of r against Schema.
func Validate(r Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return ValidateJSON(data)
}

// ValidateJSON validates raw JSON against Schema.
func ValidateJSON(data []byte) error {
	return validateAgainst(Schema(), data)
}

func validateAgainst(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("result.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("result.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("result does not match schema: %w", err)
	}
	return nil
}
