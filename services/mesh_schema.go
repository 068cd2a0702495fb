// services/mesh_schema.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"

	"mission-console/models"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// meshSchemaJSON only pins the document shape. Entries are checked one by one
// so a single bad entry written by another client costs that entry, not the board.
const meshSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "commanders": {"type": ["array", "null"]},
    "signals":    {"type": ["array", "null"]}
  }
}`

const commanderSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "username", "xp"],
  "properties": {
    "rank":       {"type": "integer"},
    "username":   {"type": "string"},
    "xp":         {"type": "integer", "minimum": 0},
    "avatar":     {"type": "string"},
    "id":         {"type": "string", "minLength": 1},
    "lastActive": {"type": "integer"}
  }
}`

const signalSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "commander", "action", "timestamp"],
  "properties": {
    "id":        {"type": "string"},
    "commander": {"type": "string"},
    "action":    {"type": "string"},
    "timestamp": {"type": "integer"}
  }
}`

var (
	meshSchema      = jsonschema.MustCompileString("mesh.schema.json", meshSchemaJSON)
	commanderSchema = jsonschema.MustCompileString("commander.schema.json", commanderSchemaJSON)
	signalSchema    = jsonschema.MustCompileString("signal.schema.json", signalSchemaJSON)
)

type rawMesh struct {
	Commanders []json.RawMessage `json:"commanders"`
	Signals    []json.RawMessage `json:"signals"`
}

// decodeEntry validates one array element and decodes it into out.
func decodeEntry(schema *jsonschema.Schema, raw json.RawMessage, out any) error {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	if err := schema.Validate(generic); err != nil {
		return err
	}
	// the schema accepts 650.0 as an integer, int64 fields do not
	return json.Unmarshal(raw, out)
}

// DecodeMesh decodes the shared document. A body that is not a JSON object with
// array fields is an error. Entries that fail validation are dropped and
// counted in dropped; the rest of the document is kept.
func DecodeMesh(raw []byte) (m *models.Mesh, dropped int, err error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return models.EmptyMesh(), 0, nil
	}

	var generic any
	if err := json.Unmarshal(trimmed, &generic); err != nil {
		return nil, 0, fmt.Errorf("mesh document is not JSON: %w", err)
	}
	if err := meshSchema.Validate(generic); err != nil {
		return nil, 0, fmt.Errorf("mesh document failed validation: %w", err)
	}

	var doc rawMesh
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, 0, fmt.Errorf("failed to decode mesh document: %w", err)
	}

	m = models.EmptyMesh()
	for _, entry := range doc.Commanders {
		var c models.Commander
		if err := decodeEntry(commanderSchema, entry, &c); err != nil {
			dropped++
			continue
		}
		// synthetic entries only exist in local views
		c.Synthetic = false
		m.Commanders = append(m.Commanders, c)
	}
	for _, entry := range doc.Signals {
		var s models.Signal
		if err := decodeEntry(signalSchema, entry, &s); err != nil {
			dropped++
			continue
		}
		s.Synthetic = false
		m.Signals = append(m.Signals, s)
	}
	return m, dropped, nil
}
