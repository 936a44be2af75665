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

package pipeline

import (
	"fmt"
	"time"

	"github.com/NVIDIA/cluster-validator/pkg/check"
	"github.com/NVIDIA/cluster-validator/pkg/errors"
	"github.com/NVIDIA/cluster-validator/pkg/header"
)

// APIVersion is the schema version of serialized reports.
const APIVersion = "validator.nvidia.com/v1alpha1"

// Phase is the state of a pipeline run. A run moves from Idle to Running,
// through Retrying back to Running for each retry, and ends in Succeeded,
// Failed or GivenUp.
type Phase string

const (
	PhaseIdle      Phase = "Idle"
	PhaseRunning   Phase = "Running"
	PhaseRetrying  Phase = "Retrying"
	PhaseSucceeded Phase = "Succeeded"
	PhaseFailed    Phase = "Failed"
	PhaseGivenUp   Phase = "GivenUp"
)

// Status is the overall verdict of a run.
type Status string

const (
	// StatusPass indicates every step passed or was skipped.
	StatusPass Status = "pass"

	// StatusFail indicates the run ended without a passing attempt.
	StatusFail Status = "fail"
)

// Attempt records one full pass over the steps.
type Attempt struct {
	Number     int              `json:"number" yaml:"number"`
	Outcome    check.Outcome    `json:"outcome" yaml:"outcome"`
	FailedStep string           `json:"failedStep,omitempty" yaml:"failedStep,omitempty"`
	Code       errors.ErrorCode `json:"code,omitempty" yaml:"code,omitempty"`
	Message    string           `json:"message,omitempty" yaml:"message,omitempty"`
	Duration   time.Duration    `json:"duration" yaml:"duration"`

	// Delay is the pause taken after this attempt, zero for the last one.
	Delay time.Duration `json:"delay,omitempty" yaml:"delay,omitempty"`
}

// Summary contains aggregate statistics of the final attempt.
type Summary struct {
	Passed   int           `json:"passed" yaml:"passed"`
	Failed   int           `json:"failed" yaml:"failed"`
	Skipped  int           `json:"skipped" yaml:"skipped"`
	Warnings int           `json:"warnings" yaml:"warnings"`
	Total    int           `json:"total" yaml:"total"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Report is the outcome of one validation run.
type Report struct {
	header.Header `json:",inline" yaml:",inline"`

	Status  Status  `json:"status" yaml:"status"`
	Phase   Phase   `json:"phase" yaml:"phase"`
	Message string  `json:"message" yaml:"message"`
	Summary Summary `json:"summary" yaml:"summary"`

	// Attempts lists every attempt in order.
	Attempts []Attempt `json:"attempts" yaml:"attempts"`

	// Results holds the step results of the final attempt.
	Results []check.Result `json:"results" yaml:"results"`
}

// NewReport creates an empty report stamped with the tool version.
func NewReport(version string) *Report {
	r := &Report{
		Phase:    PhaseIdle,
		Attempts: make([]Attempt, 0),
		Results:  make([]check.Result, 0),
	}
	r.Init(header.KindValidationReport, APIVersion, version)
	return r
}

// Passed reports whether the run succeeded.
func (r *Report) Passed() bool {
	return r.Status == StatusPass
}

// ExitCode maps the report to a process exit status.
func (r *Report) ExitCode() int {
	if r.Passed() {
		return 0
	}
	return 1
}

func (r *Report) setResults(results []check.Result, elapsed time.Duration) {
	r.Results = results
	s := Summary{Total: len(results), Duration: elapsed}
	for _, res := range results {
		switch res.Outcome {
		case check.OutcomePassed:
			s.Passed++
		case check.OutcomeFailed:
			s.Failed++
		case check.OutcomeSkipped:
			s.Skipped++
		}
		s.Warnings += len(res.Warnings)
	}
	r.Summary = s
}

// failureMessage names the attempt count and the last failing step.
func failureMessage(attempts int, failed check.Result) string {
	return fmt.Sprintf("validation failed after %d attempt(s): step %q: %s", attempts, failed.Step, failed.Message)
}

// Columns implements serializer.TableRenderer.
func (r *Report) Columns() []string {
	return []string{"STEP", "OUTCOME", "CODE", "DURATION", "MESSAGE"}
}

// Rows implements serializer.TableRenderer. Warnings follow their step as
// indented rows.
func (r *Report) Rows() [][]string {
	rows := make([][]string, 0, len(r.Results)+1)
	for _, res := range r.Results {
		rows = append(rows, []string{
			res.Step,
			string(res.Outcome),
			string(res.Code),
			res.Duration.Round(time.Millisecond).String(),
			res.Message,
		})
		for _, w := range res.Warnings {
			rows = append(rows, []string{"", "warning", "", "", w})
		}
	}
	return rows
}

// Footer implements serializer.TableRenderer.
func (r *Report) Footer() string {
	return fmt.Sprintf("%s (%s): %s", r.Status, r.Phase, r.Message)
}
