package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/GaoLiyu/kb-system-back-sub000/constants"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
)

func located() map[string]any {
	return map[string]any{"$ref": "#/definitions/located"}
}

// Schema returns the JSON schema of the dictionary form. It checks the
// envelope, the located-value shape and the role/diagnostic lists; the
// per-family field sets are left open.
func Schema() map[string]any {
	position := map[string]any{
		"type":     "object",
		"required": []any{"table_index", "row_index", "col_index"},
		"properties": map[string]any{
			"table_index": map[string]any{"type": "integer", "minimum": -1},
			"row_index":   map[string]any{"type": "integer", "minimum": -1},
			"col_index":   map[string]any{"type": "integer", "minimum": -1},
		},
	}
	unit := map[string]any{
		"type": "object",
		"required": []any{
			"address", "building_area", "price", "location_factors", "physical_factors", "rights_factors",
		},
		"properties": map[string]any{
			"address":        located(),
			"building_area":  located(),
			"price":          located(),
			"adjusted_price": located(),
			"location_factors": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"$ref": "#/definitions/factor"},
			},
			"physical_factors": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"$ref": "#/definitions/factor"},
			},
			"rights_factors": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"$ref": "#/definitions/factor"},
			},
		},
	}
	caseDef := map[string]any{
		"allOf": []any{
			map[string]any{"$ref": "#/definitions/unit"},
			map[string]any{
				"type":       "object",
				"required":   []any{"case_id"},
				"properties": map[string]any{"case_id": map[string]any{"type": "string", "minLength": 1}},
			},
		},
	}
	families := make([]any, 0, 4)
	for _, f := range constants.FamiliesAsStrings() {
		families = append(families, f)
	}
	return map[string]any{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "object",
		"required": []any{
			"source_file", "type", "report_type", "price_unit", "roles", "diagnostics",
		},
		"properties": map[string]any{
			"source_file": map[string]any{"type": "string"},
			"type":        map[string]any{"enum": families},
			"report_type": map[string]any{"enum": families},
			"price_unit":  map[string]any{"type": "string"},
			"subject":     map[string]any{"$ref": "#/definitions/unit"},
			"cases": map[string]any{
				"type":  "array",
				"items": map[string]any{"$ref": "#/definitions/case"},
			},
			"case_groups": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":  "array",
					"items": map[string]any{"$ref": "#/definitions/case"},
				},
			},
			"subjects": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"seq", "address", "total_price"},
					"properties": map[string]any{
						"seq":          located(),
						"address":      located(),
						"total_price":  located(),
						"floor_factor": map[string]any{"type": "number"},
					},
				},
			},
			"final_unit_price":  located(),
			"final_total_price": located(),
			"floor_factor":      map[string]any{"type": "number"},
			"roles": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"role", "table_index", "source"},
					"properties": map[string]any{
						"role":        map[string]any{"type": "string", "minLength": 1},
						"table_index": map[string]any{"type": "integer"},
						"source":      map[string]any{"enum": []any{"detected", "fallback", "default"}},
					},
				},
			},
			"diagnostics": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"table_index", "row_index", "col_index", "field", "reason"},
				},
			},
		},
		"definitions": map[string]any{
			"position": position,
			"located": map[string]any{
				"type":     "object",
				"required": []any{"value", "position", "raw_text"},
				"properties": map[string]any{
					"position": map[string]any{"$ref": "#/definitions/position"},
					"raw_text": map[string]any{"type": "string"},
				},
			},
			"factor": map[string]any{
				"type":     "object",
				"required": []any{"name", "description", "level", "index", "index_normalized"},
				"properties": map[string]any{
					"name":             map[string]any{"type": "string"},
					"description":      map[string]any{"type": "string"},
					"level":            map[string]any{"type": "string"},
					"index":            map[string]any{"type": "number"},
					"index_normalized": map[string]any{"type": "number"},
					"ratio":            map[string]any{"type": "number"},
				},
			},
			"unit": unit,
			"case": caseDef,
		},
	}
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func reportSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = compileSchema(Schema())
	})
	return compiled, compileErr
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateJSON checks encoded dictionary data against Schema.
func ValidateJSON(data []byte) error {
	schema, err := reportSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// Validate serializes r and checks it against Schema.
func Validate(r entity.Report) error {
	b, err := JSON(r)
	if err != nil {
		return err
	}
	return ValidateJSON(b)
}
