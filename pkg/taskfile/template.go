// SPDX-License-Identifier: MPL-2.0

package taskfile

import (
	_ "embed"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed templates/release.cue
var releaseTemplate []byte

// ReleaseTemplate returns the qcsv release task file in the requested format.
// The CUE form is returned verbatim, comments included; YAML and TOML are
// rendered from the parsed template.
func ReleaseTemplate(format Format) ([]byte, error) {
	if format == FormatCUE {
		return append([]byte(nil), releaseTemplate...), nil
	}
	tf, err := Parse(releaseTemplate, "templates/release.cue")
	if err != nil {
		return nil, fmt.Errorf("internal error: release template: %w", err)
	}
	return Encode(tf, format)
}

// Encode renders a task file as YAML or TOML.
func Encode(tf *Taskfile, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(tf)
	case FormatTOML:
		return toml.Marshal(tf)
	default:
		return nil, fmt.Errorf("%w: cannot encode %q", ErrUnsupportedFormat, format)
	}
}
