// SPDX-License-Identifier: MPL-2.0

package taskfile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/qcsv/qtask/pkg/cueutil"
)

const (
	// FormatCUE is the native task file format.
	FormatCUE Format = "cue"
	// FormatYAML is accepted for projects that already keep YAML tooling config.
	FormatYAML Format = "yaml"
	// FormatTOML is accepted for projects that already keep TOML tooling config.
	FormatTOML Format = "toml"

	// BaseName is the task file name without extension.
	BaseName = "qtask"

	schemaRoot = "#Taskfile"
)

var (
	//go:embed taskfile_schema.cue
	taskfileSchema []byte

	// ErrTaskfileNotFound is returned by Find when no task file exists.
	ErrTaskfileNotFound = errors.New("task file not found")
	// ErrUnsupportedFormat is returned for unknown task file extensions.
	ErrUnsupportedFormat = errors.New("unsupported task file format")

	// searchOrder lists candidate file names, most preferred first.
	searchOrder = []string{
		BaseName + ".cue",
		BaseName + ".yaml",
		BaseName + ".yml",
		BaseName + ".toml",
	}
)

// Format names a task file syntax.
type Format string

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return FormatCUE, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// FileName returns the conventional task file name for the format.
func (f Format) FileName() string {
	return BaseName + "." + string(f)
}

// Load reads, parses and validates the task file at path. The syntax is
// chosen from the extension.
func Load(path string) (*Taskfile, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file at %s: %w", path, err)
	}

	tf, err := ParseFormat(format, data, path)
	if err != nil {
		return nil, err
	}
	return tf, nil
}

// ParseFormat parses and validates task file content in the given syntax.
func ParseFormat(format Format, data []byte, filename string) (*Taskfile, error) {
	switch format {
	case FormatCUE:
		return Parse(data, filename)
	case FormatYAML:
		return ParseYAML(data, filename)
	case FormatTOML:
		return ParseTOML(data, filename)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Parse parses and validates CUE task file content.
func Parse(data []byte, filename string) (*Taskfile, error) {
	result, err := cueutil.ParseAndDecode[Taskfile](
		taskfileSchema,
		data,
		schemaRoot,
		cueutil.WithFilename(filename),
	)
	if err != nil {
		return nil, err
	}
	return finish(result.Value, filename)
}

// ParseYAML parses and validates YAML task file content.
func ParseYAML(data []byte, filename string) (*Taskfile, error) {
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, filename); err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return decodeGeneric(raw, filename)
}

// ParseTOML parses and validates TOML task file content.
func ParseTOML(data []byte, filename string) (*Taskfile, error) {
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, filename); err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return decodeGeneric(raw, filename)
}

func decodeGeneric(raw map[string]any, filename string) (*Taskfile, error) {
	if raw == nil {
		raw = map[string]any{}
	}
	result, err := cueutil.EncodeAndDecode[Taskfile](
		taskfileSchema,
		raw,
		schemaRoot,
		cueutil.WithFilename(filename),
	)
	if err != nil {
		return nil, err
	}
	return finish(result.Value, filename)
}

func finish(tf *Taskfile, filename string) (*Taskfile, error) {
	if filename != "" && !strings.HasPrefix(filename, "<") {
		tf.FilePath = filename
	}
	if err := tf.Validate(); err != nil {
		return nil, err
	}
	return tf, nil
}

// Find looks for a task file in dir, trying qtask.cue, qtask.yaml,
// qtask.yml and qtask.toml in that order.
func Find(dir string) (string, error) {
	for _, name := range searchOrder {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s)", ErrTaskfileNotFound, dir, strings.Join(searchOrder, ", "))
}
