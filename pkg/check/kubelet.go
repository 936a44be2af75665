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
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/cluster-validator/pkg/cluster"
	"github.com/NVIDIA/cluster-validator/pkg/defaults"
)

// DefaultKubeletPatterns mark certificate trouble in kubelet logs.
var DefaultKubeletPatterns = []string{"x509", "certificate", "tls:"}

// KubeletLogs scans each node's kubelet log for certificate entries. It
// always passes; findings are warnings.
type KubeletLogs struct {
	TailLines int64
	Patterns  []string

	// Concurrency bounds parallel node log fetches.
	Concurrency int

	// Timeout bounds the unit query, the node list and each node log fetch.
	Timeout time.Duration

	// Units reports kubelet.service state when set. Errors are ignored.
	Units UnitStater
}

// Name implements Step.
func (KubeletLogs) Name() string { return "kubelet-logs" }

// Execute implements Step.
func (s KubeletLogs) Execute(ctx context.Context, exec cluster.Executor) Result {
	tailLines := s.TailLines
	if tailLines <= 0 {
		tailLines = defaults.KubeletLogTailLines
	}
	patterns := s.Patterns
	if len(patterns) == 0 {
		patterns = DefaultKubeletPatterns
	}

	r := Pass("kubelet log scan completed")

	if s.Units != nil {
		uctx, cancel := withTimeout(ctx, s.Timeout)
		state, err := s.Units.UnitState(uctx, KubeletUnit)
		cancel()
		if err != nil {
			slog.Debug("kubelet unit state unavailable", "error", err)
		} else {
			r = r.WithDiagnostics("kubeletUnit", state)
			if state.ActiveState != "active" {
				r = r.WithWarnings(fmt.Sprintf("%s is %s (%s)", KubeletUnit, state.ActiveState, state.SubState))
			}
		}
	}

	lctx, cancel := withTimeout(ctx, s.Timeout)
	nodes, err := exec.ListNodes(lctx)
	cancel()
	if err != nil {
		return r.WithWarnings(fmt.Sprintf("node list unavailable: %v", err))
	}

	limit := s.Concurrency
	if limit <= 0 {
		limit = defaults.KubeletLogConcurrency
	}

	type fetched struct {
		logs string
		err  error
	}
	results := make([]fetched, len(nodes))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, n := range nodes {
		g.Go(func() error {
			fctx, cancel := withTimeout(ctx, s.Timeout)
			defer cancel()
			logs, err := exec.NodeLogs(fctx, n.Name, tailLines)
			results[i] = fetched{logs: logs, err: err}
			return nil
		})
	}
	_ = g.Wait()

	matches := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if err := results[i].err; err != nil {
			r = r.WithWarnings(fmt.Sprintf("node %s: kubelet log unavailable: %v", n.Name, err))
			continue
		}

		count, last := scan(results[i].logs, patterns)
		matches[n.Name] = count
		if count > 0 {
			r = r.WithWarnings(fmt.Sprintf("node %s: %d certificate-related kubelet log entr%s, last: %s",
				n.Name, count, plural(count, "y", "ies"), last))
		}
	}

	if len(r.Warnings) > 0 {
		r.Message = fmt.Sprintf("kubelet log scan completed with %d warning(s)", len(r.Warnings))
	}
	return r.WithDiagnostics("matches", matches)
}

// scan counts lines that contain any pattern and returns the last one.
func scan(logs string, patterns []string) (int, string) {
	count := 0
	last := ""
	for _, line := range strings.Split(logs, "\n") {
		lower := strings.ToLower(line)
		for _, p := range patterns {
			if strings.Contains(lower, strings.ToLower(p)) {
				count++
				last = strings.TrimSpace(line)
				break
			}
		}
	}
	return count, last
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
