package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/finvoice-bridge/internal/common"
	"github.com/joseph-ayodele/finvoice-bridge/internal/finvoice"
	"github.com/joseph-ayodele/finvoice-bridge/internal/invoice"
)

// Options configures the whole pipeline: normalization locale, the match
// confidence gate, and the Finvoice output profile. Loaded from a YAML file
// when one is configured; every field has a sensible default.
type Options struct {
	Normalization invoice.Options `yaml:"normalization"`
	// MinConfidence gates template matching. Zero means the default gate:
	// at least one identification signal must match.
	MinConfidence float64         `yaml:"min_confidence"`
	Finvoice      finvoice.Config `yaml:"finvoice"`
}

// LoadOptions reads the YAML options file at path. An empty path yields
// defaults, which the component constructors fill in.
func LoadOptions(path string) (Options, error) {
	var opts Options
	if path == "" {
		return opts, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return opts, common.NewConfigError(fmt.Sprintf("read pipeline options %s", path), err)
	}
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return opts, common.NewConfigError("decode pipeline options", err)
	}
	return opts, nil
}
