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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/cluster-validator/pkg/check"
	"github.com/NVIDIA/cluster-validator/pkg/cluster"
	"github.com/NVIDIA/cluster-validator/pkg/cluster/fake"
	"github.com/NVIDIA/cluster-validator/pkg/errors"
)

// scriptedStep returns its results in order, repeating the last one.
type scriptedStep struct {
	name    string
	results []check.Result
	calls   int
}

func (s *scriptedStep) Name() string { return s.name }

func (s *scriptedStep) Execute(context.Context, cluster.Executor) check.Result {
	i := s.calls
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.calls++
	return s.results[i]
}

func passing(name string) *scriptedStep {
	return &scriptedStep{name: name, results: []check.Result{check.Pass("ok")}}
}

func failing(name string, code errors.ErrorCode, msg string) *scriptedStep {
	return &scriptedStep{name: name, results: []check.Result{check.Fail(code, msg)}}
}

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func newTestOrchestrator(t *testing.T, cfg Config, rec *sleepRecorder) *Orchestrator {
	t.Helper()
	o, err := New(cfg, &fake.Executor{}, WithSleeper(rec.sleep), WithVersion("v0.0.0-test"))
	require.NoError(t, err)
	return o
}

func fixed(attempts int, base time.Duration) Config {
	return Config{MaxAttempts: attempts, Backoff: Backoff{Kind: BackoffFixed, Base: base}}
}

func TestRun_AllPassSucceedsAfterOneAttempt(t *testing.T) {
	rec := &sleepRecorder{}
	a, b, c := passing("api-server"), passing("nodes"), passing("namespaces")

	report := newTestOrchestrator(t, fixed(3, time.Second), rec).Run(context.Background(), []check.Step{a, b, c})

	assert.Equal(t, StatusPass, report.Status)
	assert.Equal(t, PhaseSucceeded, report.Phase)
	assert.Equal(t, 0, report.ExitCode())
	assert.Len(t, report.Attempts, 1)
	assert.Empty(t, rec.delays)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, c.calls)
	assert.Equal(t, 3, report.Summary.Passed)
	assert.Equal(t, "v0.0.0-test", report.Metadata["version"])
}

func TestRun_ExhaustsAttempts(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5} {
		rec := &sleepRecorder{}
		first := passing("api-server")
		bad := failing("namespaces", errors.ErrCodeResourceMissing, "required namespace(s) missing: kube-public")
		after := passing("dns")

		report := newTestOrchestrator(t, fixed(n, 10*time.Second), rec).
			Run(context.Background(), []check.Step{first, bad, after})

		assert.Equal(t, StatusFail, report.Status)
		assert.Equal(t, PhaseGivenUp, report.Phase)
		assert.Equal(t, 1, report.ExitCode())
		assert.Len(t, report.Attempts, n)
		assert.Len(t, rec.delays, n-1)
		assert.Equal(t, n, first.calls, "every attempt restarts from the first step")
		assert.Equal(t, n, bad.calls)
		assert.Zero(t, after.calls, "steps after a failure are not run")
		assert.Equal(t,
			fmt.Sprintf(`validation failed after %d attempt(s): step "namespaces": required namespace(s) missing: kube-public`, n),
			report.Message)
	}
}

func TestRun_SucceedsOnRetry(t *testing.T) {
	rec := &sleepRecorder{}
	flaky := &scriptedStep{name: "nodes", results: []check.Result{
		check.Fail(errors.ErrCodeResourceNotReady, "1 of 2 node(s) not ready"),
		check.Pass("all 2 node(s) ready"),
	}}

	report := newTestOrchestrator(t, fixed(3, time.Second), rec).Run(context.Background(), []check.Step{flaky})

	assert.Equal(t, PhaseSucceeded, report.Phase)
	require.Len(t, report.Attempts, 2)
	assert.Equal(t, check.OutcomeFailed, report.Attempts[0].Outcome)
	assert.Equal(t, "nodes", report.Attempts[0].FailedStep)
	assert.Equal(t, time.Second, report.Attempts[0].Delay)
	assert.Equal(t, check.OutcomePassed, report.Attempts[1].Outcome)
	assert.Equal(t, []time.Duration{time.Second}, rec.delays)
	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Passed(), "results reflect the final attempt")
}

func TestRun_EscalatesNonRetryable(t *testing.T) {
	for _, code := range []errors.ErrorCode{
		errors.ErrCodeUnsupportedVersion,
		errors.ErrCodeUnauthorized,
		errors.ErrCodeInvalidRequest,
	} {
		t.Run(string(code), func(t *testing.T) {
			rec := &sleepRecorder{}
			step := failing("dns", code, "denied")

			report := newTestOrchestrator(t, fixed(5, time.Second), rec).Run(context.Background(), []check.Step{step})

			assert.Equal(t, PhaseFailed, report.Phase)
			assert.Equal(t, StatusFail, report.Status)
			assert.Len(t, report.Attempts, 1)
			assert.Empty(t, rec.delays)
			assert.Equal(t, code, report.Attempts[0].Code)
		})
	}
}

func TestRun_SkipDoesNotHalt(t *testing.T) {
	rec := &sleepRecorder{}
	etcd := &scriptedStep{name: "etcd", results: []check.Result{check.Skip("no pods match component=etcd")}}
	kubelet := passing("kubelet-logs")

	report := newTestOrchestrator(t, fixed(3, time.Second), rec).Run(context.Background(), []check.Step{etcd, kubelet})

	assert.Equal(t, PhaseSucceeded, report.Phase)
	assert.Equal(t, 1, kubelet.calls)
	assert.Equal(t, 1, report.Summary.Skipped)
}

func TestRun_ExponentialBackoff(t *testing.T) {
	rec := &sleepRecorder{}
	cfg := Config{MaxAttempts: 5, Backoff: Backoff{Kind: BackoffExponential, Base: time.Second, Max: 5 * time.Second}}
	step := failing("api-server", errors.ErrCodeCommandFailure, "connection refused")

	newTestOrchestrator(t, cfg, rec).Run(context.Background(), []check.Step{step})

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second}, rec.delays)
}

func TestRun_BackoffBounds(t *testing.T) {
	tests := []struct {
		name    string
		backoff Backoff
		want    []time.Duration
	}{
		{
			name:    "base above cap starts at cap",
			backoff: Backoff{Kind: BackoffExponential, Base: 10 * time.Second, Max: 5 * time.Second},
			want:    []time.Duration{5 * time.Second, 5 * time.Second},
		},
		{
			name:    "fixed ignores cap",
			backoff: Backoff{Kind: BackoffFixed, Base: 10 * time.Second, Max: 5 * time.Second},
			want:    []time.Duration{10 * time.Second, 10 * time.Second},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &sleepRecorder{}
			step := failing("api-server", errors.ErrCodeCommandFailure, "connection refused")
			newTestOrchestrator(t, Config{MaxAttempts: 3, Backoff: tt.backoff}, rec).
				Run(context.Background(), []check.Step{step})
			assert.Equal(t, tt.want, rec.delays)
		})
	}
}

func TestRun_UncappedBackoffSaturates(t *testing.T) {
	rec := &sleepRecorder{}
	cfg := Config{MaxAttempts: 40, Backoff: Backoff{Kind: BackoffExponential, Base: 10 * time.Second}}
	step := failing("api-server", errors.ErrCodeCommandFailure, "connection refused")

	newTestOrchestrator(t, cfg, rec).Run(context.Background(), []check.Step{step})

	require.Len(t, rec.delays, 39)
	for i, d := range rec.delays {
		assert.Positive(t, d, "delay %d", i)
		if i > 0 {
			assert.GreaterOrEqual(t, d, rec.delays[i-1], "delay %d", i)
		}
	}
	assert.Equal(t, maxBackoffDelay, rec.delays[len(rec.delays)-1])
}

func TestRun_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	step := failing("api-server", errors.ErrCodeCommandFailure, "connection refused")

	o, err := New(fixed(3, time.Hour), &fake.Executor{}, WithSleeper(func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepContext(ctx, d)
	}))
	require.NoError(t, err)

	report := o.Run(ctx, []check.Step{step})
	assert.Equal(t, PhaseFailed, report.Phase)
	assert.Len(t, report.Attempts, 1)
	assert.Contains(t, report.Message, "interrupted after 1 attempt(s)")
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy{}
	rc := &RetryContext{Attempt: 1, MaxAttempts: 3}

	assert.Equal(t, DecisionRetry, p.Decide(rc, errors.ErrCodeDNSProbeFailure))
	assert.Equal(t, DecisionEscalate, p.Decide(rc, errors.ErrCodeUnauthorized))

	rc.Attempt = 3
	assert.Equal(t, DecisionGiveUp, p.Decide(rc, errors.ErrCodeResourceMissing))
	assert.Equal(t, "give-up", DecisionGiveUp.String())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, fixed(0, time.Second).Validate())
	assert.Error(t, Config{MaxAttempts: 1, Backoff: Backoff{Kind: "linear"}}.Validate())
	assert.Error(t, fixed(1, -time.Second).Validate())

	_, err := New(fixed(0, 0), &fake.Executor{})
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
}

func TestReportRows(t *testing.T) {
	r := NewReport("v1")
	r.Status, r.Phase, r.Message = StatusPass, PhaseSucceeded, "validation passed on attempt 1 of 3"
	r.setResults([]check.Result{
		{Step: "nodes", Outcome: check.OutcomePassed, Message: "all 2 node(s) ready", Warnings: []string{"node a reports DiskPressure"}},
		{Step: "etcd", Outcome: check.OutcomeSkipped, Code: errors.ErrCodeSkippedPrecondition, Message: "no pods"},
	}, time.Second)

	rows := r.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "nodes", rows[0][0])
	assert.Equal(t, []string{"", "warning", "", "", "node a reports DiskPressure"}, rows[1])
	assert.Equal(t, "SKIPPED_PRECONDITION", rows[2][2])
	assert.Len(t, r.Columns(), len(rows[0]))
	assert.Equal(t, "pass (Succeeded): validation passed on attempt 1 of 3", r.Footer())
	assert.Equal(t, 1, r.Summary.Warnings)
}
