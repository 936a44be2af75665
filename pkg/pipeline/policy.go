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
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/NVIDIA/cluster-validator/pkg/errors"
)

// Decision is the retry policy's verdict on a failed attempt.
type Decision int

const (
	// DecisionRetry schedules another full attempt after the backoff delay.
	DecisionRetry Decision = iota

	// DecisionGiveUp ends the run because attempts are exhausted.
	DecisionGiveUp

	// DecisionEscalate ends the run because the failure cannot clear up.
	DecisionEscalate
)

func (d Decision) String() string {
	switch d {
	case DecisionRetry:
		return "retry"
	case DecisionGiveUp:
		return "give-up"
	case DecisionEscalate:
		return "escalate"
	default:
		return "unknown"
	}
}

// RetryContext is the retry state of one run.
type RetryContext struct {
	Attempt     int
	MaxAttempts int
	LastStep    string
	LastErr     error

	backoff wait.Backoff
}

func newRetryContext(cfg Config) *RetryContext {
	return &RetryContext{
		MaxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff.state(cfg.MaxAttempts),
	}
}

// NextDelay returns the pause before the next attempt and advances the
// backoff state. Exponential delays never exceed the configured cap.
func (rc *RetryContext) NextDelay() time.Duration {
	d := rc.backoff.Step()
	if c := rc.backoff.Cap; c > 0 && (d > c || d < 0) {
		return c
	}
	return d
}

// Remaining returns how many attempts are left.
func (rc *RetryContext) Remaining() int {
	return rc.MaxAttempts - rc.Attempt
}

// RetryPolicy decides what happens after a failed attempt.
type RetryPolicy interface {
	Decide(rc *RetryContext, code errors.ErrorCode) Decision
}

// DefaultPolicy escalates non-retryable codes and gives up once attempts
// are exhausted.
type DefaultPolicy struct{}

// Decide implements RetryPolicy.
func (DefaultPolicy) Decide(rc *RetryContext, code errors.ErrorCode) Decision {
	if !errors.IsRetryable(code) {
		return DecisionEscalate
	}
	if rc.Remaining() <= 0 {
		return DecisionGiveUp
	}
	return DecisionRetry
}
