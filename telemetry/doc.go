// Package telemetry wires logging, metrics and tracing for quarkxr.
//
// Logging is zerolog, metrics are Prometheus collectors on a private registry, and
// tracing is OpenTelemetry with an optional stdout exporter. Every constructor
// returns something usable when its feature is disabled, so callers never branch on
// configuration.
package telemetry
