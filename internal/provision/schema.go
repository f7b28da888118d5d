package provision

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/boshu2/swarmkit/embedded"
)

const settingsSchemaResource = "settings.schema.json"

var (
	settingsSchemaOnce sync.Once
	settingsSchema     *jsonschema.Schema
	settingsSchemaErr  error
)

func compiledSettingsSchema() (*jsonschema.Schema, error) {
	settingsSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(embedded.SettingsSchema))
		if err != nil {
			settingsSchemaErr = fmt.Errorf("parse settings schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(settingsSchemaResource, doc); err != nil {
			settingsSchemaErr = fmt.Errorf("add settings schema: %w", err)
			return
		}
		settingsSchema, settingsSchemaErr = c.Compile(settingsSchemaResource)
	})
	return settingsSchema, settingsSchemaErr
}

// ValidateSettings checks a rendered settings document against the embedded schema.
func ValidateSettings(data []byte) error {
	sch, err := compiledSettingsSchema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: not valid JSON: %v", ErrInvalidSettings, err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}
