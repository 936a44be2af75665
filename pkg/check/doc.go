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
Package check implements the individual cluster validation steps.

Each Step is a pure function of cluster state: it queries the executor,
evaluates one condition and returns a Result with outcome passed, failed or
skipped. Steps never retry and never exit the process; the pipeline decides
what a failure means.

# Steps

	api-server      /healthz body equals "ok"
	server-version  server git version >= --min-kube-version (optional)
	nodes           every node Ready; pressure conditions are warnings
	namespaces      default, kube-system, kube-public, kube-node-lease exist
	core-services   kube-apiserver, kube-controller-manager, kube-scheduler running
	dns             kubernetes.default resolves from inside the cluster
	etcd            component=etcd pods Running and ready; skipped when absent
	kubelet-logs    certificate entries in kubelet logs; never fails

# Failure Codes

Failed results carry an errors.ErrorCode. RESOURCE_NOT_READY, RESOURCE_MISSING,
COMMAND_FAILURE and DNS_PROBE_FAILURE are retryable; UNSUPPORTED_VERSION and
UNAUTHORIZED are not.
*/
package check
