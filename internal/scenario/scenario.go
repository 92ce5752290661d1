// internal/scenario/scenario.go
// Package scenario loads calculation inputs from JSON or YAML files.
package scenario

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mwiater/voi/internal/analysis"
	"github.com/mwiater/voi/internal/decision"
	"github.com/mwiater/voi/internal/distribution"
	"github.com/mwiater/voi/internal/experiment"
	"github.com/mwiater/voi/internal/validate"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

// Format is the encoding of a scenario document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// File is the on-disk shape of a scenario.
type File struct {
	Name       string            `json:"name,omitempty" yaml:"name,omitempty"`
	Decision   decision.Inputs   `json:"decision" yaml:"decision"`
	Prior      distribution.Spec `json:"prior" yaml:"prior"`
	Experiment experiment.Design `json:"experiment" yaml:"experiment"`
}

// FormatFor picks a format from a file extension; anything that is not
// .yaml or .yml is treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ReadFile reads and schema-checks the document at path. An unnamed
// scenario takes the file's base name.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read scenario %q: %w", path, err)
	}
	f, err := Parse(data, FormatFor(path))
	if err != nil {
		return File{}, err
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return f, nil
}

// Parse decodes a document, checks it against the scenario schema and
// returns the typed file. YAML is normalized to JSON before validation so
// both encodings obey the same schema.
func Parse(data []byte, format Format) (File, error) {
	doc := data
	if format == FormatYAML {
		var generic any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return File{}, validate.Errorf("scenario", "malformed YAML: %v", err)
		}
		converted, err := json.Marshal(generic)
		if err != nil {
			return File{}, validate.Errorf("scenario", "unsupported YAML content: %v", err)
		}
		doc = converted
	}

	if err := checkSchema(doc); err != nil {
		return File{}, err
	}

	var f File
	if err := json.Unmarshal(doc, &f); err != nil {
		return File{}, validate.Errorf("scenario", "malformed JSON: %v", err)
	}
	return f, nil
}

// checkSchema validates doc and folds every violation into one InputError.
func checkSchema(doc []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return validate.Errorf("scenario", "schema validation error: %v", err)
	}
	if result.Valid() {
		return nil
	}
	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return validate.Errorf("scenario", "%s", strings.Join(errs, "; "))
}

// Build converts the file into a validated analysis scenario.
func (f File) Build() (analysis.Scenario, error) {
	prior, err := f.Prior.Build()
	if err != nil {
		return analysis.Scenario{}, err
	}
	sc := analysis.Scenario{
		Name:   f.Name,
		Inputs: f.Decision,
		Prior:  prior,
		Design: f.Experiment,
	}
	if err := sc.Validate(); err != nil {
		return analysis.Scenario{}, err
	}
	return sc, nil
}

// FromScenario is the inverse of Build. Interval priors come back as the
// normal they resolved to.
func FromScenario(sc analysis.Scenario) File {
	return File{
		Name:       sc.Name,
		Decision:   sc.Inputs,
		Prior:      distribution.SpecOf(sc.Prior),
		Experiment: sc.Design,
	}
}

// Encode writes f in the requested format.
func Encode(f File, format Format) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(f)
	}
	return json.MarshalIndent(f, "", "  ")
}
