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

// DefaultNamespaces every conformant cluster carries.
var DefaultNamespaces = []string{"default", "kube-system", "kube-public", "kube-node-lease"}

// Namespaces checks that every required namespace exists.
type Namespaces struct {
	Required []string
	Timeout  time.Duration
}

// Name implements Step.
func (Namespaces) Name() string { return "namespaces" }

// Execute implements Step.
func (s Namespaces) Execute(ctx context.Context, exec cluster.Executor) Result {
	required := s.Required
	if len(required) == 0 {
		required = DefaultNamespaces
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	names, err := exec.ListNamespaces(ctx)
	if err != nil {
		return FromError(err)
	}

	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	var missing []string
	for _, ns := range required {
		if !present[ns] {
			missing = append(missing, ns)
		}
	}

	if len(missing) > 0 {
		return Fail(errors.ErrCodeResourceMissing,
			fmt.Sprintf("required namespace(s) missing: %s", strings.Join(missing, ", ")))
	}
	return Pass(fmt.Sprintf("all %d required namespace(s) present", len(required)))
}
