package device

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed schema/loads.schema.json
var loadsSchemaDoc []byte

const loadsSchemaURL = "loads.schema.json"

var (
	loadsSchemaOnce sync.Once
	loadsSchema     *jsonschema.Schema
	loadsSchemaErr  error
)

// loadsFile is the top-level layout of a loads configuration file.
type loadsFile struct {
	Loads []Definition `json:"loads"`
}

// LoadDefinitions reads device definitions from a YAML file.
//
// The document is checked against the embedded loads schema before it is
// decoded, so structural mistakes are reported with their location in the
// file. Semantic checks (duplicate IDs, schedule invariants) are applied
// by ValidateDefinitions.
func LoadDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted configuration
	if err != nil {
		return nil, fmt.Errorf("reading loads file: %w", err)
	}

	defs, err := ParseDefinitions(data)
	if err != nil {
		return nil, fmt.Errorf("loads file %s: %w", path, err)
	}
	return defs, nil
}

// ParseDefinitions decodes and validates a YAML loads document.
func ParseDefinitions(data []byte) ([]Definition, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing yaml: %w", ErrInvalidConfiguration, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: document is empty", ErrInvalidConfiguration)
	}

	// Round-trip through JSON so the schema sees plain JSON values.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: converting document: %w", ErrInvalidConfiguration, err)
	}

	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return nil, fmt.Errorf("%w: converting document: %w", ErrInvalidConfiguration, err)
	}

	schema, err := compiledLoadsSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	var file loadsFile
	dec := json.NewDecoder(bytes.NewReader(encoded))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: decoding loads: %w", ErrInvalidConfiguration, err)
	}

	if err := ValidateDefinitions(file.Loads); err != nil {
		return nil, err
	}
	return file.Loads, nil
}

func compiledLoadsSchema() (*jsonschema.Schema, error) {
	loadsSchemaOnce.Do(func() {
		var schemaMap any
		if err := json.Unmarshal(loadsSchemaDoc, &schemaMap); err != nil {
			loadsSchemaErr = fmt.Errorf("unmarshalling loads schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(loadsSchemaURL, schemaMap); err != nil {
			loadsSchemaErr = fmt.Errorf("adding loads schema: %w", err)
			return
		}
		loadsSchema, loadsSchemaErr = c.Compile(loadsSchemaURL)
	})
	return loadsSchema, loadsSchemaErr
}
