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
Package cluster wraps the Kubernetes API behind the Executor interface used by
every validation step.

Checks never talk to client-go directly. They ask the Executor for fresh
snapshots (NodeRecord, PodRecord) and submit the few mutations the validator
needs: creating and deleting probe pods and executing commands inside them.
All failures are returned as COMMAND_FAILURE structured errors so the pipeline
can retry them.

# Usage

	clientset, restConfig, err := client.BuildKubeClient(client.Options{})
	if err != nil {
	    return err
	}

	exec := cluster.NewKubeExecutor(clientset,
	    cluster.WithRestConfig(restConfig),
	    cluster.WithRateLimit(20, 40),
	)

	nodes, err := exec.ListNodes(ctx)

# Rate Limiting

KubeExecutor throttles its own calls with a token bucket in addition to the
client-side limits of the rest.Config, so tight readiness polling loops cannot
flood the API server.
*/
package cluster
