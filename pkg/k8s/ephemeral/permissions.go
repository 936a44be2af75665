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

package ephemeral

import (
	"context"
	"fmt"
	"strings"

	"github.com/NVIDIA/cluster-validator/pkg/cluster"
	"github.com/NVIDIA/cluster-validator/pkg/errors"
)

// PermissionCheck is the result of one access review.
type PermissionCheck struct {
	Permission cluster.Permission
	Allowed    bool
	Reason     string
}

// RequiredPermissions lists the access a probe run needs in namespace.
// withExec adds pods/exec for techniques that run inside a long-lived pod.
func RequiredPermissions(namespace string, withExec bool) []cluster.Permission {
	perms := []cluster.Permission{
		{Verb: "create", Resource: "pods", Namespace: namespace},
		{Verb: "get", Resource: "pods", Namespace: namespace},
		{Verb: "delete", Resource: "pods", Namespace: namespace},
		{Verb: "get", Resource: "pods", Subresource: "log", Namespace: namespace},
	}
	if withExec {
		perms = append(perms, cluster.Permission{
			Verb: "create", Resource: "pods", Subresource: "exec", Namespace: namespace,
		})
	}
	return perms
}

// CheckPermissions reviews every permission and returns UNAUTHORIZED naming
// the ones that are denied.
func (m *Manager) CheckPermissions(ctx context.Context, perms []cluster.Permission) ([]PermissionCheck, error) {
	checks := make([]PermissionCheck, 0, len(perms))
	var missing []string

	for _, p := range perms {
		allowed, reason, err := m.exec.CanI(ctx, p)
		if err != nil {
			return checks, errors.Wrap(errors.ErrCodeCommandFailure,
				fmt.Sprintf("failed to check permission %s", p), err)
		}

		checks = append(checks, PermissionCheck{Permission: p, Allowed: allowed, Reason: reason})
		if !allowed {
			missing = append(missing, p.String())
		}
	}

	if len(missing) > 0 {
		return checks, errors.NewWithContext(errors.ErrCodeUnauthorized,
			fmt.Sprintf("missing required permissions: %s", strings.Join(missing, ", ")),
			map[string]any{"missing": missing})
	}
	return checks, nil
}
