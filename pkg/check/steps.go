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
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/NVIDIA/cluster-validator/pkg/dns"
	"github.com/NVIDIA/cluster-validator/pkg/errors"
	"github.com/NVIDIA/cluster-validator/pkg/k8s/ephemeral"
)

// Config parameterizes the default step list.
type Config struct {
	// MinVersion enables the server-version step when set.
	MinVersion string

	RequiredNamespaces []string
	CoreServices       []string

	DNSTarget string
	DNS       dns.Config

	// PodOptions configure the manager of short-lived lookup pods.
	PodOptions []ephemeral.Option

	QueryTimeout     time.Duration
	KubeletTailLines int64
	Units            UnitStater
}

// DefaultSteps returns the validation steps in execution order.
func DefaultSteps(cfg Config) []Step {
	steps := []Step{APIServer{Timeout: cfg.QueryTimeout}}
	if cfg.MinVersion != "" {
		steps = append(steps, ServerVersion{Minimum: cfg.MinVersion, Timeout: cfg.QueryTimeout})
	}
	return append(steps,
		Nodes{Timeout: cfg.QueryTimeout},
		Namespaces{Required: cfg.RequiredNamespaces, Timeout: cfg.QueryTimeout},
		CoreServices{Required: cfg.CoreServices, Timeout: cfg.QueryTimeout},
		DNSResolution{Target: cfg.DNSTarget, Config: cfg.DNS, Options: cfg.PodOptions},
		Etcd{Timeout: cfg.QueryTimeout},
		KubeletLogs{TailLines: cfg.KubeletTailLines, Units: cfg.Units, Timeout: cfg.QueryTimeout},
	)
}

// StepNames lists every step name DefaultSteps can produce.
var StepNames = []string{
	APIServer{}.Name(),
	ServerVersion{}.Name(),
	Nodes{}.Name(),
	Namespaces{}.Name(),
	CoreServices{}.Name(),
	DNSResolution{}.Name(),
	Etcd{}.Name(),
	KubeletLogs{}.Name(),
}

// Filter drops the steps named in skip, keeping order. Unknown names are
// rejected so typos do not silently run a step.
func Filter(steps []Step, skip []string) ([]Step, error) {
	if len(skip) == 0 {
		return steps, nil
	}

	drop := make(map[string]bool, len(skip))
	for _, name := range skip {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !slices.Contains(StepNames, name) {
			return nil, errors.New(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("unknown step %q, valid steps: %s", name, strings.Join(StepNames, ", ")))
		}
		drop[name] = true
	}

	kept := make([]Step, 0, len(steps))
	for _, s := range steps {
		if !drop[s.Name()] {
			kept = append(kept, s)
		}
	}
	return kept, nil
}
