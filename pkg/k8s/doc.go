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

// Package k8s groups the Kubernetes integration of the cluster validator.
//
// # Sub-packages
//
// client: builds a clientset and rest.Config from a kubeconfig or the
// in-cluster service account.
//
//	clientset, config, err := client.BuildKubeClient(client.Options{Context: "prod"})
//	if err != nil {
//	    return err
//	}
//
// ephemeral: short-lived probe pods with bounded readiness polling and
// guaranteed deletion.
//
//	addr, err := ephemeral.WithTestResource(ctx, manager, tmpl, timeout,
//	    func(ctx context.Context, res *ephemeral.Resource) (string, error) {
//	        return lookup(ctx, res)
//	    })
//
// # Usage Patterns
//
// Checks do not use these packages directly. They go through cluster.Executor,
// which wraps the clientset, so tests can swap in an in-memory fake.
package k8s
