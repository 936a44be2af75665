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
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/NVIDIA/cluster-validator/pkg/check"
	"github.com/NVIDIA/cluster-validator/pkg/cluster"
	"github.com/NVIDIA/cluster-validator/pkg/errors"
)

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Orchestrator runs the steps in order and retries the whole sequence on
// failure according to its RetryPolicy.
type Orchestrator struct {
	cfg     Config
	exec    cluster.Executor
	policy  RetryPolicy
	sleep   SleepFunc
	version string
}

// Option is a functional option for configuring Orchestrator instances.
type Option func(*Orchestrator)

// WithPolicy replaces DefaultPolicy.
func WithPolicy(p RetryPolicy) Option {
	return func(o *Orchestrator) {
		o.policy = p
	}
}

// WithSleeper replaces the context-aware timer used between attempts.
func WithSleeper(fn SleepFunc) Option {
	return func(o *Orchestrator) {
		o.sleep = fn
	}
}

// WithVersion stamps reports with the tool version.
func WithVersion(version string) Option {
	return func(o *Orchestrator) {
		o.version = version
	}
}

// New creates an Orchestrator. The config is validated and copied.
func New(cfg Config, exec cluster.Executor, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &Orchestrator{
		cfg:    cfg,
		exec:   exec,
		policy: DefaultPolicy{},
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run executes steps until an attempt passes, the policy gives up or
// escalates, or ctx is cancelled. Every attempt restarts from the first step
// and stops at the first failing step.
func (o *Orchestrator) Run(ctx context.Context, steps []check.Step) *Report {
	report := NewReport(o.version)
	rc := newRetryContext(o.cfg)
	start := time.Now()

	for {
		rc.Attempt++
		report.Phase = PhaseRunning
		slog.Info("attempt started", "attempt", rc.Attempt, "maxAttempts", rc.MaxAttempts, "steps", len(steps))

		attemptStart := time.Now()
		results, failed := o.runAttempt(ctx, steps)
		attempt := Attempt{Number: rc.Attempt, Outcome: check.OutcomePassed, Duration: time.Since(attemptStart)}
		report.setResults(results, time.Since(start))

		if failed == nil {
			report.Attempts = append(report.Attempts, attempt)
			report.Status = StatusPass
			report.Phase = PhaseSucceeded
			report.Message = fmt.Sprintf("validation passed on attempt %d of %d", rc.Attempt, rc.MaxAttempts)
			slog.Info("validation passed", "attempt", rc.Attempt)
			return report
		}

		attempt.Outcome = check.OutcomeFailed
		attempt.FailedStep = failed.Step
		attempt.Code = failed.Code
		attempt.Message = failed.Message
		rc.LastStep = failed.Step
		rc.LastErr = errors.New(failed.Code, failed.Message)

		report.Status = StatusFail
		report.Message = failureMessage(rc.Attempt, *failed)

		if err := ctx.Err(); err != nil {
			report.Attempts = append(report.Attempts, attempt)
			report.Phase = PhaseFailed
			report.Message = fmt.Sprintf("validation interrupted after %d attempt(s): %v", rc.Attempt, err)
			slog.Error("validation interrupted", "attempt", rc.Attempt, "error", err)
			return report
		}

		decision := o.policy.Decide(rc, failed.Code)
		slog.Warn("attempt failed",
			"attempt", rc.Attempt, "step", failed.Step, "code", failed.Code,
			"message", failed.Message, "decision", decision.String())

		switch decision {
		case DecisionEscalate:
			report.Attempts = append(report.Attempts, attempt)
			report.Phase = PhaseFailed
			slog.Error("validation failed", "reason", "non-retryable failure", "code", failed.Code)
			return report

		case DecisionGiveUp:
			report.Attempts = append(report.Attempts, attempt)
			report.Phase = PhaseGivenUp
			slog.Error("validation failed", "reason", "attempts exhausted", "attempts", rc.Attempt)
			return report
		}

		delay := rc.NextDelay()
		attempt.Delay = delay
		report.Attempts = append(report.Attempts, attempt)
		report.Phase = PhaseRetrying
		slog.Info("retrying validation", "nextAttempt", rc.Attempt+1, "delay", delay)

		if err := o.sleep(ctx, delay); err != nil {
			report.Phase = PhaseFailed
			report.Message = fmt.Sprintf("validation interrupted after %d attempt(s): %v", rc.Attempt, err)
			slog.Error("validation interrupted", "attempt", rc.Attempt, "error", err)
			return report
		}
	}
}

// runAttempt runs steps in order and returns at the first failure.
func (o *Orchestrator) runAttempt(ctx context.Context, steps []check.Step) ([]check.Result, *check.Result) {
	results := make([]check.Result, 0, len(steps))
	for _, step := range steps {
		slog.Debug("step started", "step", step.Name())
		r := check.Run(ctx, step, o.exec)
		results = append(results, r)

		attrs := []any{"step", r.Step, "outcome", r.Outcome, "duration", r.Duration, "message", r.Message}
		for _, w := range r.Warnings {
			slog.Warn("step warning", "step", r.Step, "warning", w)
		}

		if r.Failed() {
			slog.Info("step completed", append(attrs, "code", r.Code)...)
			return results, &results[len(results)-1]
		}
		slog.Info("step completed", attrs...)
	}
	return results, nil
}

// sleepContext waits for d unless ctx is done first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
