// Package config — .gridlate.yaml configuration file support.
//
// When a .gridlate.yaml file exists in the working directory, gridlate uses
// it as the source of defaults for translation runs. Command-line flags
// override file values; every target must be explicitly declared.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = ".gridlate.yaml"

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .gridlate.yaml structure.
type File struct {
	// Language is the target language for all targets (can be overridden
	// per target).
	Language string `yaml:"language"`
	// Model is the generative model identifier (default gemini-2.0-flash).
	Model string `yaml:"model,omitempty"`
	// Tier: "free" (rate-limited, inter-batch delay) or "paid".
	Tier string `yaml:"tier,omitempty"`
	// Output: "replace" or "newSheet".
	Output string `yaml:"output,omitempty"`
	// Targets is the list of ranges to translate.
	Targets []Target `yaml:"targets"`
}

// Target describes one workbook range to translate.
type Target struct {
	// Name is a human-readable label shown in status/logs.
	Name string `yaml:"name,omitempty"`
	// Path is the workbook file, relative to the config file.
	Path string `yaml:"path"`
	// Sheet is the worksheet name (default: the workbook's first sheet).
	Sheet string `yaml:"sheet,omitempty"`
	// Range is the A1-notation range to translate (default: used range).
	Range string `yaml:"range,omitempty"`
	// Language overrides the global target language.
	Language string `yaml:"language,omitempty"`
	// SheetNames, when true, also translates the worksheet name.
	SheetNames bool `yaml:"sheet_names,omitempty"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads and validates .gridlate.yaml from the given directory.
// Returns nil if no config file exists.
func Load(dir string) (*File, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	// Defaults
	if f.Tier == "" {
		f.Tier = "free"
	}
	if f.Output == "" {
		f.Output = "replace"
	}

	// Validate
	switch f.Tier {
	case "free", "paid":
	default:
		return nil, fmt.Errorf("%s: tier must be \"free\" or \"paid\", got %q", path, f.Tier)
	}
	switch f.Output {
	case "replace", "newSheet":
	default:
		return nil, fmt.Errorf("%s: output must be \"replace\" or \"newSheet\", got %q", path, f.Output)
	}

	for i := range f.Targets {
		t := &f.Targets[i]
		if t.Path == "" {
			return nil, fmt.Errorf("%s: target #%d has no path", path, i+1)
		}
		if t.Language == "" {
			t.Language = f.Language
		}
		if t.Language == "" {
			return nil, fmt.Errorf("%s: target #%d has no language and no global language is set", path, i+1)
		}
		if t.Name == "" {
			t.Name = t.Path
		}
	}

	return &f, nil
}
