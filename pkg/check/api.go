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
	"github.com/NVIDIA/cluster-validator/pkg/defaults"
	"github.com/NVIDIA/cluster-validator/pkg/errors"
)

// HealthToken is the body a healthy API server returns from /healthz.
const HealthToken = "ok"

// APIServer checks control-plane reachability.
type APIServer struct {
	Timeout time.Duration
}

// Name implements Step.
func (APIServer) Name() string { return "api-server" }

// Execute implements Step.
func (s APIServer) Execute(ctx context.Context, exec cluster.Executor) Result {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	body, err := exec.APIHealth(ctx)
	if err != nil {
		return FromError(err)
	}

	if got := strings.TrimSpace(body); got != HealthToken {
		return Fail(errors.ErrCodeResourceNotReady,
			fmt.Sprintf("API server health endpoint returned %q, expected %q", got, HealthToken))
	}
	return Pass("API server is healthy")
}

// withTimeout bounds a read-only query. Zero uses the default query timeout.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = defaults.K8sQueryTimeout
	}
	return context.WithTimeout(ctx, d)
}
