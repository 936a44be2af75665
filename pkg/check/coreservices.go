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
	"time"

	"github.com/NVIDIA/cluster-validator/pkg/cluster"
	"github.com/NVIDIA/cluster-validator/pkg/errors"
)

// SystemNamespace hosts the control-plane workloads.
const SystemNamespace = "kube-system"

// DefaultCoreServices are the control-plane workloads expected in kube-system.
var DefaultCoreServices = []string{"kube-apiserver", "kube-controller-manager", "kube-scheduler"}

// CoreServices checks that each required workload name prefixes at least
// one Running pod in the system namespace.
type CoreServices struct {
	Namespace string
	Required  []string
	Timeout   time.Duration
}

// Name implements Step.
func (CoreServices) Name() string { return "core-services" }

// Execute implements Step.
func (s CoreServices) Execute(ctx context.Context, exec cluster.Executor) Result {
	ns := s.Namespace
	if ns == "" {
		ns = SystemNamespace
	}
	required := s.Required
	if len(required) == 0 {
		required = DefaultCoreServices
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	pods, err := exec.ListPods(ctx, ns, "")
	if err != nil {
		return FromError(err)
	}

	found := make(map[string]string, len(required))
	var missing []string
	for _, svc := range required {
		for _, p := range pods {
			if p.IsRunning() && strings.HasPrefix(p.Name, svc) {
				found[svc] = p.Name
				break
			}
		}
		if _, ok := found[svc]; !ok {
			missing = append(missing, svc)
		}
	}

	r := Pass(fmt.Sprintf("all %d core service(s) running in %s", len(required), ns))
	if len(missing) > 0 {
		r = Fail(errors.ErrCodeResourceMissing,
			fmt.Sprintf("core service(s) not running in %s: %s", ns, strings.Join(missing, ", ")))
	}
	return r.WithDiagnostics("pods", found)
}
