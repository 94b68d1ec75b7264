package codegen

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Options configures module emission.
type Options struct {
	// PackageName, when set together with HeaderName, adds an
	// "import <pkg>::*;" line after the header include.
	PackageName string `toml:"package"`
	// HeaderName, when set, adds an `include directive before the module.
	HeaderName string `toml:"header"`
}

type optionsManifest struct {
	Emit Options `toml:"emit"`
}

// LoadOptions reads emission options from the [emit] section of a TOML
// manifest.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, err
	}
	var manifest optionsManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return Options{}, err
	}
	return manifest.Emit, nil
}
