package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// CargoFragment is the build-config fragment merged into the editor
// checkout's .cargo/config.toml: a native-library link-search path and
// an alias carrying the feature flags for the default build.
type CargoFragment struct {
	Build CargoBuild        `toml:"build"`
	Alias map[string]string `toml:"alias,omitempty"`
}

type CargoBuild struct {
	Rustflags []string `toml:"rustflags"`
}

// Cargo renders the fragment. The link-search path is normalized to
// forward slashes so the fragment is identical regardless of the host's
// path-separator style.
func Cargo(linkSearch string, features []string) ([]byte, error) {
	frag := CargoFragment{
		Build: CargoBuild{
			Rustflags: []string{"-L", normalizePath(linkSearch)},
		},
	}
	if len(features) > 0 {
		frag.Alias = map[string]string{
			"build-editor": "build --release --features " + strings.Join(features, ","),
		}
	}
	data, err := toml.Marshal(frag)
	if err != nil {
		return nil, fmt.Errorf("marshal cargo fragment: %w", err)
	}
	return data, nil
}

// ParseCargo reads a fragment back. Used by verification.
func ParseCargo(data []byte) (CargoFragment, error) {
	var frag CargoFragment
	if err := toml.Unmarshal(data, &frag); err != nil {
		return CargoFragment{}, fmt.Errorf("parse cargo fragment: %w", err)
	}
	return frag, nil
}

// LinkSearch extracts the link-search path from the rustflags, or ""
// when the fragment carries none.
func (f CargoFragment) LinkSearch() string {
	for i, flag := range f.Build.Rustflags {
		if flag == "-L" && i+1 < len(f.Build.Rustflags) {
			return f.Build.Rustflags[i+1]
		}
	}
	return ""
}

func normalizePath(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
}
