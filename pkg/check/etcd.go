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

// EtcdSelector matches static etcd pods on kubeadm-style control planes.
const EtcdSelector = "component=etcd"

// Etcd checks every etcd pod is Running with all containers ready. Managed
// control planes expose no etcd pods; the step is skipped there.
type Etcd struct {
	Namespace string
	Selector  string
	Timeout   time.Duration
}

// Name implements Step.
func (Etcd) Name() string { return "etcd" }

// Execute implements Step.
func (s Etcd) Execute(ctx context.Context, exec cluster.Executor) Result {
	ns := s.Namespace
	if ns == "" {
		ns = SystemNamespace
	}
	selector := s.Selector
	if selector == "" {
		selector = EtcdSelector
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	pods, err := exec.ListPods(ctx, ns, selector)
	if err != nil {
		return FromError(err)
	}
	if len(pods) == 0 {
		return Skip(fmt.Sprintf("no pods match %s in %s", selector, ns))
	}

	var unhealthy []string
	for _, p := range pods {
		if p.IsRunning() && p.AllContainersReady() {
			continue
		}
		detail := fmt.Sprintf("%s (phase %s", p.Name, p.Phase)
		if unready := p.UnreadyContainers(); len(unready) > 0 {
			detail += ", unready: " + strings.Join(unready, ",")
		}
		unhealthy = append(unhealthy, detail+")")
	}

	if len(unhealthy) > 0 {
		return Fail(errors.ErrCodeResourceNotReady,
			fmt.Sprintf("%d of %d etcd pod(s) unhealthy: %s", len(unhealthy), len(pods), strings.Join(unhealthy, "; ")))
	}
	return Pass(fmt.Sprintf("%d etcd pod(s) healthy", len(pods)))
}
