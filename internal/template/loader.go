package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/finvoice-bridge/internal/common"
)

type templateFile struct {
	Templates []templateDef `json:"templates"`
}

type templateDef struct {
	ID      string    `json:"id"`
	Signals []string  `json:"signals"`
	Rules   []ruleDef `json:"rules"`
}

type ruleDef struct {
	Field    string `json:"field"`
	Pattern  string `json:"pattern"`
	Required bool   `json:"required"`
}

// LoadFile reads a template definitions file and builds the registry.
func LoadFile(path string, logger *slog.Logger) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewConfigError(fmt.Sprintf("read templates file %s", path), err)
	}
	return Load(raw, logger)
}

// Load validates raw JSON against the templates schema, compiles every
// pattern, and constructs the registry. Any failure here is a startup
// failure; nothing partial is ever returned.
func Load(raw []byte, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	schema, err := jsonschema.CompileString("templates.schema.json", TemplatesJSONSchema)
	if err != nil {
		return nil, common.NewConfigError("compile templates schema", err)
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, common.NewConfigError("decode templates file", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, common.NewConfigError("templates file failed schema validation", err)
	}

	var file templateFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, common.NewConfigError("decode templates file", err)
	}

	templates := make([]Template, 0, len(file.Templates))
	for _, def := range file.Templates {
		rules := make([]FieldRule, 0, len(def.Rules))
		for _, r := range def.Rules {
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				return nil, common.NewConfigError(
					fmt.Sprintf("template %q field %q: bad pattern %q", def.ID, r.Field, r.Pattern), err)
			}
			rules = append(rules, FieldRule{Name: r.Field, Pattern: re, Required: r.Required})
		}
		templates = append(templates, Template{ID: def.ID, Signals: def.Signals, Rules: rules})
	}

	reg, err := NewRegistry(templates)
	if err != nil {
		return nil, err
	}
	logger.Info("templates loaded", "count", reg.Len())
	return reg, nil
}
