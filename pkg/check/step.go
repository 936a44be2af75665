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

package check

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/NVIDIA/cluster-validator/pkg/cluster"
	"github.com/NVIDIA/cluster-validator/pkg/errors"
)

// Step is one atomic validation unit. Execute reads fresh cluster state
// through the executor and never retries on its own.
type Step interface {
	Name() string
	Execute(ctx context.Context, exec cluster.Executor) Result
}

// Outcome represents the outcome of a single step.
type Outcome string

const (
	// OutcomePassed indicates the step's condition held.
	OutcomePassed Outcome = "passed"

	// OutcomeFailed indicates the step's condition did not hold.
	OutcomeFailed Outcome = "failed"

	// OutcomeSkipped indicates the step does not apply to this cluster.
	OutcomeSkipped Outcome = "skipped"
)

// Result is the outcome of one step execution.
type Result struct {
	// Step is the name of the step that produced the result.
	Step string `json:"step" yaml:"step"`

	// Outcome is passed, failed or skipped.
	Outcome Outcome `json:"outcome" yaml:"outcome"`

	// Message is a human-readable reason.
	Message string `json:"message" yaml:"message"`

	// Code classifies failures and skips.
	Code errors.ErrorCode `json:"code,omitempty" yaml:"code,omitempty"`

	// Warnings are non-fatal findings.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Diagnostics is optional structured context for post-mortem.
	Diagnostics map[string]any `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`

	// Duration is how long the step took.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Passed reports whether the step passed.
func (r Result) Passed() bool { return r.Outcome == OutcomePassed }

// Failed reports whether the step failed.
func (r Result) Failed() bool { return r.Outcome == OutcomeFailed }

// Pass returns a passing result.
func Pass(message string) Result {
	return Result{Outcome: OutcomePassed, Message: message}
}

// Skip returns a skipped result.
func Skip(message string) Result {
	return Result{Outcome: OutcomeSkipped, Message: message, Code: errors.ErrCodeSkippedPrecondition}
}

// Fail returns a failing result with code.
func Fail(code errors.ErrorCode, message string) Result {
	return Result{Outcome: OutcomeFailed, Message: message, Code: code}
}

// FromError converts an error into a result. SKIPPED_PRECONDITION becomes a
// skip; every other code fails. Structured context becomes diagnostics.
func FromError(err error) Result {
	code := errors.CodeOf(err)
	msg := err.Error()
	var details map[string]any

	var se *errors.StructuredError
	if stderrors.As(err, &se) {
		msg = se.Message
		if se.Cause != nil {
			msg += ": " + se.Cause.Error()
		}
		details = se.Context
	}

	if code == errors.ErrCodeSkippedPrecondition {
		r := Skip(msg)
		r.Diagnostics = details
		return r
	}
	r := Fail(code, msg)
	r.Diagnostics = details
	return r
}

// WithWarnings returns r with warnings appended.
func (r Result) WithWarnings(warnings ...string) Result {
	r.Warnings = append(r.Warnings, warnings...)
	return r
}

// WithDiagnostics returns r with a diagnostic entry set.
func (r Result) WithDiagnostics(key string, value any) Result {
	if r.Diagnostics == nil {
		r.Diagnostics = make(map[string]any)
	}
	r.Diagnostics[key] = value
	return r
}

// Run executes step and stamps the result with its name and duration.
func Run(ctx context.Context, step Step, exec cluster.Executor) Result {
	start := time.Now()
	r := step.Execute(ctx, exec)
	r.Step = step.Name()
	r.Duration = time.Since(start)
	return r
}
