// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, runtime metrics and debug introspection layer for memlab.
//
// Provides:
//   - Typed scenario configuration with functional options and validation
//   - A concurrent-safe metrics registry with Prometheus text export
//   - Debug probe registration and state dumps
//
// This package is cross-platform and build-tag-partitioned as needed.
package control
