// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trialerr defines the error taxonomy shared by the analysis pipeline.
// Callers inspect errors with errors.As or the Is* helpers.
package trialerr

import (
	"errors"
	"fmt"
	"strings"
)

// InvalidInputError reports an empty or malformed organization name or drug
// code. It is never retried.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConfigurationError reports an invalid registry module list. It is raised at
// construction and the process should not serve requests afterwards.
type ConfigurationError struct {
	Reason  string
	Missing []string
	Invalid []string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("configuration error: ")
	b.WriteString(e.Reason)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, " (missing: %s)", strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		fmt.Fprintf(&b, " (invalid: %s)", strings.Join(e.Invalid, ", "))
	}
	return b.String()
}

// RegistryFetchError reports a registry request that exhausted its retries
// or returned a payload that could not be decoded.
type RegistryFetchError struct {
	Endpoint string
	// StatusCode is the last HTTP status seen, or 0 for transport and
	// decode failures.
	StatusCode int
	Attempts   int
	Err        error
}

func (e *RegistryFetchError) Error() string {
	msg := "registry fetch " + e.Endpoint + " failed"
	if e.Attempts > 0 {
		msg += fmt.Sprintf(" after %d attempt(s)", e.Attempts)
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RegistryFetchError) Unwrap() error { return e.Err }

// AggregationError reports a record with an unexpected shape. Aggregation
// skips such records rather than aborting.
type AggregationError struct {
	Identifier string
	Reason     string
}

func (e *AggregationError) Error() string {
	if e.Identifier == "" {
		return "malformed record: " + e.Reason
	}
	return fmt.Sprintf("malformed record %s: %s", e.Identifier, e.Reason)
}

// IsInvalidInput reports whether err wraps an *InvalidInputError.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

// IsConfiguration reports whether err wraps a *ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsRegistryFetch reports whether err wraps a *RegistryFetchError.
func IsRegistryFetch(err error) bool {
	var target *RegistryFetchError
	return errors.As(err, &target)
}

// IsAggregation reports whether err wraps an *AggregationError.
func IsAggregation(err error) bool {
	var target *AggregationError
	return errors.As(err, &target)
}
