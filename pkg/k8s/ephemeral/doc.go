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

/*
Package ephemeral manages short-lived probe pods.

Every pod is created from a Template, polled until it reaches the state its
Readiness mode asks for, and deleted before the owning scope returns.

# Scoped Acquisition

WithTestResource wraps the full lifecycle around a callback:

	addr, err := ephemeral.WithTestResource(ctx, mgr, tmpl, time.Minute,
	    func(ctx context.Context, res *ephemeral.Resource) (string, error) {
	        out, err := exec.Exec(ctx, res.Namespace, res.Name, res.Container, cmd)
	        ...
	    })

A Lease does the same for a pod shared by several callers. It is created on
first Acquire and deleted by a deferred Release:

	lease := mgr.NewLease(tmpl, time.Minute)
	defer lease.Release(ctx)

# Cleanup

Deletion runs on a context detached from the caller's cancellation and bounded
by the cleanup timeout, so an interrupted run still removes its pods. Delete
failures are logged with code CLEANUP_FAILURE and never returned.

# Labels

All pods carry app.kubernetes.io/managed-by=cluster-validator, so leftovers
can be found with:

	kubectl get pods -A -l app.kubernetes.io/managed-by=cluster-validator
*/
package ephemeral
