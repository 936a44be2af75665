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
	"fmt"
	"log/slog"
	"time"

	"github.com/NVIDIA/cluster-validator/pkg/cluster"
	"github.com/NVIDIA/cluster-validator/pkg/k8s/ephemeral"
)

// Technique is one independent way of checking that a name resolves.
// A returned error means the technique could not run; an unresolved Answer
// means it ran and the name did not resolve. The chain treats both alike.
type Technique interface {
	Name() string
	Probe(ctx context.Context, target string) (Answer, error)
}

// LookupPod runs nslookup in a one-shot pod and parses its log.
type LookupPod struct {
	manager      *ephemeral.Manager
	template     ephemeral.Template
	readyTimeout time.Duration
}

// NewLookupPod returns the lookup-pod technique. The template command is
// replaced per probe; its readiness mode is forced to ReadyCompleted.
func NewLookupPod(m *ephemeral.Manager, tmpl ephemeral.Template, readyTimeout time.Duration) *LookupPod {
	tmpl.Readiness = ephemeral.ReadyCompleted
	return &LookupPod{manager: m, template: tmpl, readyTimeout: readyTimeout}
}

// Name implements Technique.
func (l *LookupPod) Name() string { return "lookup-pod" }

// Probe implements Technique.
func (l *LookupPod) Probe(ctx context.Context, target string) (Answer, error) {
	tmpl := l.template
	tmpl.Command = []string{"nslookup", target}

	return ephemeral.WithTestResource(ctx, l.manager, tmpl, l.readyTimeout,
		func(ctx context.Context, res *ephemeral.Resource) (Answer, error) {
			logs, err := l.manager.Executor().PodLogs(ctx, res.Namespace, res.Name, 0)
			if err != nil {
				return Answer{}, err
			}
			slog.Debug("lookup pod output", "pod", res.String(), "output", logs)
			return ParseNSLookup(logs), nil
		})
}

// ExecProbe runs a command inside the shared long-lived probe pod.
type ExecProbe struct {
	name        string
	exec        cluster.Executor
	lease       *ephemeral.Lease
	execTimeout time.Duration
	command     func(target string) []string
	parse       Parser
}

// Name implements Technique.
func (e *ExecProbe) Name() string { return e.name }

// Probe implements Technique. The first call through the lease creates the
// pod and waits for readiness; a readiness failure fails this technique only.
func (e *ExecProbe) Probe(ctx context.Context, target string) (Answer, error) {
	res, err := e.lease.Acquire(ctx)
	if err != nil {
		return Answer{}, fmt.Errorf("probe pod unavailable: %w", err)
	}

	execCtx, cancel := context.WithTimeout(ctx, e.execTimeout)
	defer cancel()

	cmd := e.command(target)
	out, err := e.exec.Exec(execCtx, res.Namespace, res.Name, res.Container, cmd)
	if err != nil {
		return Answer{}, err
	}
	slog.Debug("exec probe output",
		"technique", e.name, "pod", res.String(), "exitCode", out.ExitCode, "output", out.Combined())

	return e.parse(out.Combined()), nil
}

// NewExecWget returns the exec-wget technique.
func NewExecWget(exec cluster.Executor, lease *ephemeral.Lease, timeout time.Duration) *ExecProbe {
	return &ExecProbe{
		name: "exec-wget", exec: exec, lease: lease, execTimeout: timeout,
		command: func(target string) []string {
			return []string{"wget", "--spider", "-T", "5", "http://" + target}
		},
		parse: ParseWget,
	}
}

// NewExecPing returns the exec-ping technique.
func NewExecPing(exec cluster.Executor, lease *ephemeral.Lease, timeout time.Duration) *ExecProbe {
	return &ExecProbe{
		name: "exec-ping", exec: exec, lease: lease, execTimeout: timeout,
		command: func(target string) []string {
			return []string{"ping", "-c", "1", "-W", "2", target}
		},
		parse: ParsePing,
	}
}

// NewExecNC returns the exec-nc raw connect technique.
func NewExecNC(exec cluster.Executor, lease *ephemeral.Lease, timeout time.Duration) *ExecProbe {
	return &ExecProbe{
		name: "exec-nc", exec: exec, lease: lease, execTimeout: timeout,
		command: func(target string) []string {
			return []string{"nc", "-z", "-v", "-w", "2", target, "443"}
		},
		parse: ParseNC,
	}
}
