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

package dns

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"

	"github.com/NVIDIA/cluster-validator/pkg/cluster"
	"github.com/NVIDIA/cluster-validator/pkg/cluster/fake"
	"github.com/NVIDIA/cluster-validator/pkg/errors"
	"github.com/NVIDIA/cluster-validator/pkg/k8s/ephemeral"
)

type stubTechnique struct {
	name   string
	answer Answer
	err    error
	calls  int
}

func (s *stubTechnique) Name() string { return s.name }

func (s *stubTechnique) Probe(context.Context, string) (Answer, error) {
	s.calls++
	return s.answer, s.err
}

func resolved(name string) *stubTechnique {
	return &stubTechnique{name: name, answer: Answer{Resolved: true, Addresses: []string{"10.96.0.1"}}}
}

func unresolved(name, reason string) *stubTechnique {
	return &stubTechnique{name: name, answer: Answer{Reason: reason}}
}

func TestChain_FirstMatchShortCircuits(t *testing.T) {
	t1, t2, t3 := resolved("t1"), unresolved("t2", "x"), resolved("t3")
	chain := NewChain([]Technique{t1, t2, t3})

	res, err := chain.Resolve(context.Background(), "kubernetes.default")
	require.NoError(t, err)
	assert.Equal(t, "t1", res.Technique)
	assert.Equal(t, 1, t1.calls)
	assert.Zero(t, t2.calls)
	assert.Zero(t, t3.calls)
}

func TestChain_LaterMatchDiscardsEarlierFailures(t *testing.T) {
	t1 := unresolved("t1", "NXDOMAIN")
	t2 := &stubTechnique{name: "t2", err: stderrors.New("exec stream failed")}
	t3 := resolved("t3")

	diagCalled := false
	chain := NewChain([]Technique{t1, t2, t3}, WithDiagnostics(func(context.Context) (string, error) {
		diagCalled = true
		return "", nil
	}))

	res, err := chain.Resolve(context.Background(), "kubernetes.default")
	require.NoError(t, err)
	assert.Equal(t, Resolution{Target: "kubernetes.default", Technique: "t3", Addresses: []string{"10.96.0.1"}}, res)
	assert.False(t, diagCalled, "diagnostics are only collected on failure")
}

func TestChain_AllFail(t *testing.T) {
	t1 := unresolved("t1", "** server can't find kubernetes.default: NXDOMAIN")
	t2 := &stubTechnique{name: "t2", err: stderrors.New("probe pod unavailable")}

	chain := NewChain([]Technique{t1, t2}, WithDiagnostics(func(context.Context) (string, error) {
		return "[ERROR] plugin/errors: 2 kubernetes.default. A: read udp: i/o timeout", nil
	}))

	_, err := chain.Resolve(context.Background(), "kubernetes.default")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDNSProbeFailure, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "2 technique(s)")

	var se *errors.StructuredError
	require.True(t, stderrors.As(err, &se))
	assert.Equal(t, []string{
		"t1: ** server can't find kubernetes.default: NXDOMAIN",
		"t2: probe pod unavailable",
	}, se.Context["techniques"])
	assert.Contains(t, se.Context["resolverLogs"], "i/o timeout")
}

func TestChain_DiagnosticsError(t *testing.T) {
	chain := NewChain([]Technique{unresolved("t1", "bad address")},
		WithDiagnostics(func(context.Context) (string, error) {
			return "", stderrors.New("forbidden")
		}))

	_, err := chain.Resolve(context.Background(), "kubernetes.default")
	var se *errors.StructuredError
	require.True(t, stderrors.As(err, &se))
	assert.Equal(t, "unavailable: forbidden", se.Context["resolverLogs"])
}

func TestChain_CancelledContextSkipsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t1 := resolved("t1")
	_, err := NewChain([]Technique{t1}).Resolve(ctx, "kubernetes.default")
	require.Error(t, err)
	assert.Zero(t, t1.calls)
}

func TestChain_Empty(t *testing.T) {
	_, err := NewChain(nil).Resolve(context.Background(), "kubernetes.default")
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
}

const (
	nslookupOK = "Server:\t\t10.96.0.10\nAddress:\t10.96.0.10:53\n\nName:\tkubernetes.default.svc.cluster.local\nAddress: 10.96.0.1\n"
	nslookupNX = "Server:\t\t10.96.0.10\nAddress:\t10.96.0.10:53\n\n** server can't find kubernetes.default: NXDOMAIN\n"
)

// newCluster returns a fake cluster where lookup pods complete and probe
// pods run, with a CoreDNS pod present.
func newCluster(lookupLogs string) *fake.Executor {
	return &fake.Executor{
		Pods: map[string][]cluster.PodRecord{
			ResolverNamespace: {fake.RunningPod(ResolverNamespace, "coredns-5d78c9869d-abcde", map[string]string{"k8s-app": "kube-dns"})},
		},
		OnCreate: func(pod *corev1.Pod) cluster.PodRecord {
			if pod.Labels[ephemeral.NameLabel] == "dns-lookup" {
				return cluster.PodRecord{Phase: corev1.PodSucceeded}
			}
			return fake.RunningPod(pod.Namespace, pod.Name, nil)
		},
		OnPodLogs: func(_, pod string) (string, error) {
			if strings.HasPrefix(pod, "coredns") {
				return "[INFO] plugin/reload: Running configuration SHA512 = abc\n", nil
			}
			return lookupLogs, nil
		},
	}
}

func newManager(f *fake.Executor) *ephemeral.Manager {
	return ephemeral.NewManager(f, ephemeral.WithPollInterval(time.Millisecond))
}

func testConfig() Config {
	return Config{ReadyTimeout: 50 * time.Millisecond, ExecTimeout: time.Second}
}

func TestResolve_LookupPodPasses(t *testing.T) {
	f := newCluster(nslookupOK)

	res, err := Resolve(context.Background(), newManager(f), testConfig(), "kubernetes.default")
	require.NoError(t, err)
	assert.Equal(t, "lookup-pod", res.Technique)
	assert.Equal(t, []string{"10.96.0.1"}, res.Addresses)

	require.Len(t, f.Created, 1, "the shared probe pod must not be created")
	assert.True(t, strings.HasPrefix(f.Created[0], "dns-lookup-"))
	assert.Equal(t, 1, f.DeleteCount(f.Created[0]))
	assert.Empty(t, f.Execs)
}

func TestResolve_FallsBackToExecTechniques(t *testing.T) {
	f := newCluster(nslookupNX)
	f.OnExec = func(_, _ string, cmd []string) (cluster.ExecResult, error) {
		switch cmd[0] {
		case "wget":
			return cluster.ExecResult{Stderr: "wget: bad address 'kubernetes.default'\n", ExitCode: 1}, nil
		case "ping":
			return cluster.ExecResult{Stdout: "PING kubernetes.default (10.96.0.1): 56 data bytes\n", ExitCode: 1}, nil
		}
		t.Fatalf("unexpected exec %v", cmd)
		return cluster.ExecResult{}, nil
	}

	res, err := Resolve(context.Background(), newManager(f), testConfig(), "kubernetes.default")
	require.NoError(t, err)
	assert.Equal(t, "exec-ping", res.Technique)

	require.Len(t, f.Created, 2)
	assert.True(t, strings.HasPrefix(f.Created[1], "dns-probe-"))
	for _, name := range f.Created {
		assert.Equal(t, 1, f.DeleteCount(name), name)
	}
	assert.Len(t, f.Execs, 2, "exec-nc must not run after exec-ping resolves")
}

func TestResolve_Exhausted(t *testing.T) {
	f := newCluster(nslookupNX)
	f.OnExec = func(_, _ string, cmd []string) (cluster.ExecResult, error) {
		return cluster.ExecResult{Stderr: cmd[0] + ": bad address 'kubernetes.default'\n", ExitCode: 1}, nil
	}

	_, err := Resolve(context.Background(), newManager(f), testConfig(), "kubernetes.default")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDNSProbeFailure, errors.CodeOf(err))

	var se *errors.StructuredError
	require.True(t, stderrors.As(err, &se))
	assert.Len(t, se.Context["techniques"], 4)
	assert.Contains(t, se.Context["resolverLogs"], "==> kube-system/coredns-5d78c9869d-abcde <==")
	assert.Contains(t, se.Context["resolverLogs"], "plugin/reload")

	for _, name := range f.Created {
		assert.Equal(t, 1, f.DeleteCount(name), name)
	}
}

func TestResolve_ProbePodNeverReady(t *testing.T) {
	f := newCluster(nslookupNX)
	f.OnCreate = func(pod *corev1.Pod) cluster.PodRecord {
		if pod.Labels[ephemeral.NameLabel] == "dns-lookup" {
			return cluster.PodRecord{Phase: corev1.PodSucceeded}
		}
		return cluster.PodRecord{Phase: corev1.PodPending}
	}

	_, err := Resolve(context.Background(), newManager(f), testConfig(), "kubernetes.default")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDNSProbeFailure, errors.CodeOf(err))

	var se *errors.StructuredError
	require.True(t, stderrors.As(err, &se))
	reasons, ok := se.Context["techniques"].([]string)
	require.True(t, ok)
	require.Len(t, reasons, 4)
	for _, r := range reasons[1:] {
		assert.Contains(t, r, "probe pod unavailable")
	}

	require.Len(t, f.Created, 2, "readiness failure is memoized across exec techniques")
	assert.Empty(t, f.Execs)
	for _, name := range f.Created {
		assert.Equal(t, 1, f.DeleteCount(name), name)
	}
}
