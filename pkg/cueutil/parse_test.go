// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#TestConfig: {
	name:         string
	count:        int
	enabled:      bool
	description?: string
}
`

type TestConfig struct {
	Name        string `json:"name"`
	Count       int    `json:"count"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("valid config parses successfully", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
name: "test"
count: 42
enabled: true
description: "A test config"
`)
		result, err := ParseAndDecode[TestConfig]([]byte(testSchema), data, "#TestConfig")
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}
		if result.Value.Name != "test" || result.Value.Count != 42 || !result.Value.Enabled {
			t.Errorf("unexpected value: %+v", result.Value)
		}
		if result.Value.Description != "A test config" {
			t.Errorf("expected description='A test config', got %q", result.Value.Description)
		}
	})

	t.Run("optional field can be omitted", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
name: "minimal"
count: 1
enabled: false
`)
		result, err := ParseAndDecode[TestConfig]([]byte(testSchema), data, "#TestConfig")
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}
		if result.Value.Description != "" {
			t.Errorf("expected empty description, got %q", result.Value.Description)
		}
	})

	t.Run("invalid type returns error with filename", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
name: "test"
count: "not a number"
enabled: true
`)
		_, err := ParseAndDecode[TestConfig]([]byte(testSchema), data, "#TestConfig", WithFilename("my-config.cue"))
		if err == nil {
			t.Fatal("expected error for invalid type")
		}
		if !strings.Contains(err.Error(), "my-config.cue") {
			t.Errorf("error should contain filename, got: %v", err)
		}
	})

	t.Run("missing required field returns error", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
name: "test"
enabled: true
`)
		if _, err := ParseAndDecode[TestConfig]([]byte(testSchema), data, "#TestConfig"); err == nil {
			t.Error("expected error for missing required field")
		}
	})

	t.Run("missing required field accepted when not concrete", func(t *testing.T) {
		t.Parallel()

		data := []byte(`name: "partial"`)
		if _, err := ParseAndDecode[TestConfig]([]byte(testSchema), data, "#TestConfig", WithConcrete(false)); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("file size limit is enforced", func(t *testing.T) {
		t.Parallel()

		data := []byte(`name: "test", count: 1, enabled: true`)
		_, err := ParseAndDecode[TestConfig]([]byte(testSchema), data, "#TestConfig", WithMaxFileSize(4))
		if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
			t.Errorf("expected size error, got %v", err)
		}
	})

	t.Run("unknown schema path is an internal error", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[TestConfig]([]byte(testSchema), []byte(`{}`), "#Missing")
		if err == nil || !strings.Contains(err.Error(), "internal error") {
			t.Errorf("expected internal error, got %v", err)
		}
	})
}

func TestEncodeAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("generic map validates against schema", func(t *testing.T) {
		t.Parallel()

		data := map[string]any{"name": "from-yaml", "count": 3, "enabled": true}
		result, err := EncodeAndDecode[TestConfig]([]byte(testSchema), data, "#TestConfig")
		if err != nil {
			t.Fatalf("EncodeAndDecode failed: %v", err)
		}
		if result.Value.Name != "from-yaml" || result.Value.Count != 3 {
			t.Errorf("unexpected value: %+v", result.Value)
		}
	})

	t.Run("closed definition rejects unknown fields", func(t *testing.T) {
		t.Parallel()

		data := map[string]any{"name": "x", "count": 1, "enabled": true, "bogus": 1}
		_, err := EncodeAndDecode[TestConfig]([]byte(testSchema), data, "#TestConfig", WithFilename("qtask.yaml"))
		if err == nil {
			t.Fatal("expected error for unknown field")
		}
		if !strings.Contains(err.Error(), "qtask.yaml") {
			t.Errorf("error should contain filename, got: %v", err)
		}
	})
}
