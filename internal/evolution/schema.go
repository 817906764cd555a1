// Schema contract for the evolution.report event. Downstream consumers
// (advisor, crisis, UI — all external) validate against this, so changes here
// are breaking changes.
package evolution

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const reportSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "deeptime/evolution.report.schema.json",
  "type": "object",
  "required": ["civ_id", "turn", "era", "year", "people_changes", "animal_changes", "environment_changes", "net_layer_changes", "status"],
  "properties": {
    "civ_id": {"type": "string", "minLength": 36, "maxLength": 36},
    "turn": {"type": "integer", "minimum": 0},
    "era": {"type": "string"},
    "year": {"type": "number", "minimum": 0},
    "people_changes": {"type": "object"},
    "animal_changes": {"type": "object"},
    "environment_changes": {"type": "object"},
    "cascade_effects": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["source_layer", "target_layer", "magnitude", "cascade_depth"],
        "properties": {
          "source_layer": {"type": "integer", "minimum": 0, "maximum": 2},
          "target_layer": {"type": "integer", "minimum": 0, "maximum": 2},
          "magnitude": {"type": "number", "minimum": -1, "maximum": 1},
          "cascade_depth": {"type": "integer", "minimum": 0}
        }
      }
    },
    "net_layer_changes": {
      "type": "object",
      "required": ["people", "animal", "environment"],
      "properties": {
        "people": {"type": "number"},
        "animal": {"type": "number"},
        "environment": {"type": "number"}
      }
    },
    "status": {"enum": ["OK", "DEGRADED", "PARTIAL", "FATAL"]},
    "warnings": {"type": "array", "items": {"type": "string"}},
    "policy_conflict": {"type": "string"},
    "fallback_applied": {"type": "boolean"},
    "instabilities": {"type": "integer", "minimum": 0}
  }
}`

var compiledReportSchema = jsonschema.MustCompileString("evolution.report.schema.json", reportSchema)

// ValidateReport checks a report against the published event schema.
func ValidateReport(rep *Report) error {
	raw, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("reparse report: %w", err)
	}
	if err := compiledReportSchema.Validate(doc); err != nil {
		return fmt.Errorf("report schema: %w", err)
	}
	return nil
}
