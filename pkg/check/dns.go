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
	"strings"

	"github.com/NVIDIA/cluster-validator/pkg/cluster"
	"github.com/NVIDIA/cluster-validator/pkg/defaults"
	"github.com/NVIDIA/cluster-validator/pkg/dns"
	"github.com/NVIDIA/cluster-validator/pkg/k8s/ephemeral"
)

// DNSResolution checks in-cluster name resolution with the probe chain.
// Probe pods are created in Config.Namespace and removed before Execute
// returns.
type DNSResolution struct {
	Target  string
	Config  dns.Config
	Options []ephemeral.Option
}

// Name implements Step.
func (DNSResolution) Name() string { return "dns" }

// Execute implements Step.
func (s DNSResolution) Execute(ctx context.Context, exec cluster.Executor) Result {
	target := s.Target
	if target == "" {
		target = defaults.DNSTarget
	}
	ns := s.Config.Namespace
	if ns == "" {
		ns = defaults.ProbeNamespace
	}

	m := ephemeral.NewManager(exec, s.Options...)

	if _, err := m.CheckPermissions(ctx, ephemeral.RequiredPermissions(ns, true)); err != nil {
		return FromError(err)
	}

	res, err := dns.Resolve(ctx, m, s.Config, target)
	if err != nil {
		return FromError(err)
	}

	return Pass(fmt.Sprintf("%s resolved to %s via %s", target, strings.Join(res.Addresses, ", "), res.Technique)).
		WithDiagnostics("technique", res.Technique)
}
