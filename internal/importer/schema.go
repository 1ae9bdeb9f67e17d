package importer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/qri-io/jsonschema"
)

// JSON Schema for the mapping specification as it arrives over the API.
// Structural validation happens here; semantic validation (known canonical
// fields, compilable separators) is EspecificacionMapeo.Validar.
const esquemaMapeoJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["reglas"],
  "properties": {
    "reglas": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["columna", "accion"],
        "properties": {
          "columna": {"type": "string", "minLength": 1},
          "accion": {"type": "string", "enum": ["ignorar", "asignar", "dividir"]},
          "campo": {"type": "string"},
          "separador": {"type": "string"},
          "campos": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

// ValidarEspecificacionJSON checks a raw mapping-specification payload
// against the embedded schema before it is decoded.
func ValidarEspecificacionJSON(ctx context.Context, payload []byte) error {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(esquemaMapeoJSON), rs); err != nil {
		return fmt.Errorf("compile mapping schema: %w", err)
	}

	keyErrs, err := rs.ValidateBytes(ctx, payload)
	if err != nil {
		return fmt.Errorf("validate mapping spec: %w", err)
	}
	if len(keyErrs) > 0 {
		return fmt.Errorf("especificación de mapeo inválida: %s", keyErrs[0].Message)
	}

	return nil
}
