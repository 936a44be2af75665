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

	"github.com/NVIDIA/cluster-validator/pkg/errors"
)

// Resolution describes the technique that resolved a name.
type Resolution struct {
	Target    string   `json:"target" yaml:"target"`
	Technique string   `json:"technique,omitempty" yaml:"technique,omitempty"`
	Addresses []string `json:"addresses,omitempty" yaml:"addresses,omitempty"`
}

// DiagnosticsFunc collects extra context when every technique fails.
type DiagnosticsFunc func(ctx context.Context) (string, error)

// Chain tries techniques in order until one resolves the target.
type Chain struct {
	techniques  []Technique
	diagnostics DiagnosticsFunc
}

// ChainOption is a functional option for configuring Chain instances.
type ChainOption func(*Chain)

// WithDiagnostics attaches a collector whose output is added to the
// failure context under "resolverLogs".
func WithDiagnostics(fn DiagnosticsFunc) ChainOption {
	return func(c *Chain) {
		c.diagnostics = fn
	}
}

// NewChain creates a chain over techniques, tried in the given order.
func NewChain(techniques []Technique, opts ...ChainOption) *Chain {
	c := &Chain{techniques: techniques}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve returns at the first technique whose answer resolves. Failures of
// earlier techniques are dropped. If all techniques fail, the returned
// DNS_PROBE_FAILURE error carries every technique's reason in order.
func (c *Chain) Resolve(ctx context.Context, target string) (Resolution, error) {
	if len(c.techniques) == 0 {
		return Resolution{Target: target}, errors.New(errors.ErrCodeInvalidRequest, "dns chain has no techniques")
	}

	reasons := make([]string, 0, len(c.techniques))
	for _, t := range c.techniques {
		if err := ctx.Err(); err != nil {
			reasons = append(reasons, fmt.Sprintf("%s: not attempted: %v", t.Name(), err))
			continue
		}

		ans, err := t.Probe(ctx, target)
		switch {
		case err != nil:
			reasons = append(reasons, fmt.Sprintf("%s: %v", t.Name(), err))
			slog.Debug("dns technique failed", "technique", t.Name(), "target", target, "error", err)
		case ans.Resolved:
			slog.Debug("dns technique resolved",
				"technique", t.Name(), "target", target, "addresses", ans.Addresses)
			return Resolution{Target: target, Technique: t.Name(), Addresses: ans.Addresses}, nil
		default:
			reasons = append(reasons, fmt.Sprintf("%s: %s", t.Name(), ans.Reason))
			slog.Debug("dns technique did not resolve", "technique", t.Name(), "target", target, "reason", ans.Reason)
		}
	}

	details := map[string]any{
		"target":     target,
		"techniques": reasons,
	}
	if c.diagnostics != nil {
		logs, err := c.diagnostics(ctx)
		if err != nil {
			logs = fmt.Sprintf("unavailable: %v", err)
		}
		details["resolverLogs"] = logs
	}

	return Resolution{Target: target}, errors.NewWithContext(errors.ErrCodeDNSProbeFailure,
		fmt.Sprintf("%s did not resolve with any of %d technique(s)", target, len(c.techniques)), details)
}
