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
	"strings"
	"time"

	"github.com/NVIDIA/cluster-validator/pkg/cluster"
	"github.com/NVIDIA/cluster-validator/pkg/defaults"
	"github.com/NVIDIA/cluster-validator/pkg/k8s/ephemeral"
)

const (
	// ResolverNamespace hosts the cluster DNS pods.
	ResolverNamespace = "kube-system"

	// ResolverSelector matches CoreDNS and kube-dns pods.
	ResolverSelector = "k8s-app=kube-dns"
)

// Config shapes the default probe chain.
type Config struct {
	Namespace       string
	Image           string
	ReadyTimeout    time.Duration
	ExecTimeout     time.Duration
	ResolverLogTail int64
}

func (c Config) withDefaults() Config {
	if c.Namespace == "" {
		c.Namespace = defaults.ProbeNamespace
	}
	if c.Image == "" {
		c.Image = defaults.ProbeImage
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = defaults.K8sPodReadyTimeout
	}
	if c.ExecTimeout <= 0 {
		c.ExecTimeout = defaults.K8sExecTimeout
	}
	if c.ResolverLogTail <= 0 {
		c.ResolverLogTail = defaults.ResolverLogTailLines
	}
	return c
}

func (c Config) template(prefix string, readiness ephemeral.Readiness, command ...string) ephemeral.Template {
	return ephemeral.Template{
		Namespace:  c.Namespace,
		NamePrefix: prefix,
		Image:      c.Image,
		Command:    command,
		Readiness:  readiness,
	}
}

// DefaultTechniques returns lookup-pod followed by the three exec
// techniques that share lease.
func DefaultTechniques(m *ephemeral.Manager, lease *ephemeral.Lease, cfg Config) []Technique {
	cfg = cfg.withDefaults()
	exec := m.Executor()
	return []Technique{
		NewLookupPod(m, cfg.template("dns-lookup", ephemeral.ReadyCompleted, "nslookup"), cfg.ReadyTimeout),
		NewExecWget(exec, lease, cfg.ExecTimeout),
		NewExecPing(exec, lease, cfg.ExecTimeout),
		NewExecNC(exec, lease, cfg.ExecTimeout),
	}
}

// ProbeTemplate is the long-lived pod the exec techniques share.
func ProbeTemplate(cfg Config) ephemeral.Template {
	cfg = cfg.withDefaults()
	return cfg.template("dns-probe", ephemeral.ReadyRunning, "sleep", "3600")
}

// Resolve runs the default chain for target. The shared probe pod is
// created only if an exec technique is reached and is deleted before
// Resolve returns.
func Resolve(ctx context.Context, m *ephemeral.Manager, cfg Config, target string) (Resolution, error) {
	cfg = cfg.withDefaults()

	lease := m.NewLease(ProbeTemplate(cfg), cfg.ReadyTimeout)
	defer lease.Release(ctx)

	chain := NewChain(DefaultTechniques(m, lease, cfg),
		WithDiagnostics(ResolverLogs(m.Executor(), cfg.ResolverLogTail)))
	return chain.Resolve(ctx, target)
}

// ResolverLogs returns a collector for the log tail of every cluster DNS pod.
func ResolverLogs(exec cluster.Executor, tailLines int64) DiagnosticsFunc {
	return func(ctx context.Context) (string, error) {
		pods, err := exec.ListPods(ctx, ResolverNamespace, ResolverSelector)
		if err != nil {
			return "", err
		}
		if len(pods) == 0 {
			return "", fmt.Errorf("no pods match %s in %s", ResolverSelector, ResolverNamespace)
		}

		var b strings.Builder
		for _, p := range pods {
			fmt.Fprintf(&b, "==> %s/%s <==\n", p.Namespace, p.Name)
			logs, err := exec.PodLogs(ctx, p.Namespace, p.Name, tailLines)
			if err != nil {
				fmt.Fprintf(&b, "(logs unavailable: %v)\n", err)
				continue
			}
			b.WriteString(strings.TrimRight(logs, "\n"))
			b.WriteString("\n")
		}
		return b.String(), nil
	}
}
