// SPDX-License-Identifier: MPL-2.0

// Package benchmark holds benchmarks for the qtask hot paths:
//   - task file parsing and schema validation (CUE, YAML, TOML)
//   - prerequisite planning
//   - native and virtual runtime execution
//   - a full runner invocation
//
// The output can seed a PGO profile:
//
//	go test -run '^$' -bench . -cpuprofile default.pgo ./internal/benchmark
package benchmark
