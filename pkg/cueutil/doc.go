// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// The package consolidates the 3-step CUE parsing pattern used by the
// taskfile and config packages:
//
//  1. Compile the embedded schema
//  2. Compile (or encode) user data and unify with schema
//  3. Validate and decode to Go struct
//
// # Usage
//
//	//go:embed taskfile_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseAndDecode[Taskfile](
//	    schemaBytes,
//	    userFileBytes,
//	    "#Taskfile",
//	    cueutil.WithFilename("qtask.cue"),
//	)
//	if err != nil {
//	    return nil, err  // Error includes CUE path for debugging
//	}
//	return result.Value, nil
//
// Task files written in YAML or TOML are first decoded into generic Go values
// and then validated against the same schema with EncodeAndDecode.
package cueutil
