// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeCommandFailure indicates the cluster query itself could not complete
	// (transport error, exec stream failure, API error).
	ErrCodeCommandFailure ErrorCode = "COMMAND_FAILURE"
	// ErrCodeResourceNotReady indicates an expected condition was false or a
	// resource never reached its target phase within the allotted time.
	ErrCodeResourceNotReady ErrorCode = "RESOURCE_NOT_READY"
	// ErrCodeResourceMissing indicates a required namespace, node or workload is absent.
	ErrCodeResourceMissing ErrorCode = "RESOURCE_MISSING"
	// ErrCodeDNSProbeFailure indicates every name resolution technique was exhausted.
	ErrCodeDNSProbeFailure ErrorCode = "DNS_PROBE_FAILURE"
	// ErrCodeCleanupFailure indicates an ephemeral resource could not be deleted.
	// It is only ever logged.
	ErrCodeCleanupFailure ErrorCode = "CLEANUP_FAILURE"
	// ErrCodeSkippedPrecondition indicates a step does not apply to this cluster.
	ErrCodeSkippedPrecondition ErrorCode = "SKIPPED_PRECONDITION"
	// ErrCodeUnsupportedVersion indicates the server is older than the configured minimum.
	ErrCodeUnsupportedVersion ErrorCode = "UNSUPPORTED_VERSION"
	// ErrCodeUnauthorized indicates authentication or authorization failure.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeTimeout indicates an operation exceeded its time limit.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
	// ErrCodeInvalidRequest indicates malformed or invalid input.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
)

// StructuredError provides structured error information for better observability.
// It includes an error code for programmatic handling, a human-readable message,
// the underlying cause, and optional context for debugging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// CodeOf returns the code of the outermost StructuredError in err's chain.
// Errors that carry no code are reported as ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// IsRetryable reports whether a failure with the given code may clear up on
// a later pipeline attempt. Version, authorization and input errors will not.
func IsRetryable(code ErrorCode) bool {
	switch code {
	case ErrCodeCommandFailure,
		ErrCodeResourceNotReady,
		ErrCodeResourceMissing,
		ErrCodeDNSProbeFailure,
		ErrCodeTimeout,
		ErrCodeInternal:
		return true
	default:
		return false
	}
}
