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
	"sort"
	"strings"
	"time"

	"github.com/NVIDIA/cluster-validator/pkg/cluster"
	"github.com/NVIDIA/cluster-validator/pkg/errors"
)

// Nodes checks that every registered node is Ready. Pressure conditions are
// reported as warnings.
type Nodes struct {
	Timeout time.Duration
}

// Name implements Step.
func (Nodes) Name() string { return "nodes" }

// Execute implements Step.
func (s Nodes) Execute(ctx context.Context, exec cluster.Executor) Result {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	nodes, err := exec.ListNodes(ctx)
	if err != nil {
		return FromError(err)
	}
	if len(nodes) == 0 {
		return Fail(errors.ErrCodeResourceMissing, "no nodes registered")
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })

	var (
		notReady []string
		warnings []string
	)
	capacity := make(map[string]map[string]string, len(nodes))
	roles := make(map[string]string)

	for _, n := range nodes {
		capacity[n.Name] = n.Capacity
		if n.Role != "" {
			roles[n.Name] = n.Role
		}
		if !n.IsReady() {
			notReady = append(notReady, fmt.Sprintf("%s (Ready=%s)", n.Name, n.Ready))
		}
		if p := n.ActivePressure(); len(p) > 0 {
			warnings = append(warnings, fmt.Sprintf("node %s reports %s", n.Name, strings.Join(p, ", ")))
		}
	}

	r := Pass(fmt.Sprintf("all %d node(s) ready", len(nodes)))
	if len(notReady) > 0 {
		r = Fail(errors.ErrCodeResourceNotReady,
			fmt.Sprintf("%d of %d node(s) not ready: %s", len(notReady), len(nodes), strings.Join(notReady, ", ")))
	}
	r = r.WithWarnings(warnings...).WithDiagnostics("capacity", capacity)
	if len(roles) > 0 {
		r = r.WithDiagnostics("roles", roles)
	}
	return r
}
