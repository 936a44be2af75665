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

// Package client builds the Kubernetes client used by the cluster validator.
//
// Unlike long-running services, the validator talks to exactly one cluster per
// run, so the client is built once by the CLI and passed down explicitly.
// Exec streams need the rest.Config as well, so both are returned:
//
//	clientset, config, err := client.BuildKubeClient(client.Options{
//	    Kubeconfig: kubeconfig,
//	    Context:    kubeContext,
//	    UserAgent:  "cvctl/" + version,
//	})
//	if err != nil {
//	    return fmt.Errorf("failed to build kubernetes client: %w", err)
//	}
//
// # Authentication Modes
//
// Out-of-cluster: the explicit path, then KUBECONFIG, then ~/.kube/config.
// A context other than the current one may be selected.
//
// In-cluster: when no kubeconfig is found, the pod service account is used.
// This is how the validator runs as a post-deploy Job.
package client
