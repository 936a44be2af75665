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

package defaults

import "time"

const (
	// MaxAttempts is the number of full pipeline runs before giving up.
	MaxAttempts = 3

	// RetryDelay is the base pause between pipeline attempts.
	RetryDelay = 10 * time.Second

	// MaxRetryDelay caps exponential backoff. Zero means uncapped.
	MaxRetryDelay = 2 * time.Minute

	// BackoffKind is the default backoff policy name.
	BackoffKind = "fixed"
)

const (
	// K8sPodReadyTimeout is the timeout for waiting for probe pods to be ready.
	K8sPodReadyTimeout = 60 * time.Second

	// K8sPodPollInterval is the fixed interval between probe pod status reads.
	K8sPodPollInterval = 2 * time.Second

	// K8sCleanupTimeout is the timeout for deleting probe pods.
	// Cleanup runs on a context detached from caller cancellation.
	K8sCleanupTimeout = 30 * time.Second

	// K8sExecTimeout bounds a single exec into the probe pod.
	K8sExecTimeout = 20 * time.Second

	// K8sQueryTimeout bounds read-only API queries issued by checks.
	K8sQueryTimeout = 30 * time.Second
)

const (
	// ExecutorQPS is the steady-state API request rate of the executor.
	ExecutorQPS = 20

	// ExecutorBurst is the token bucket size of the executor rate limiter.
	ExecutorBurst = 40
)

const (
	// DNSTarget is the service name resolved by the DNS step.
	DNSTarget = "kubernetes.default"

	// ProbeNamespace hosts the ephemeral DNS probe pods.
	ProbeNamespace = "default"

	// ProbeImage runs the lookup and exec techniques. It must ship nslookup,
	// wget, ping and nc.
	ProbeImage = "busybox:1.36"

	// ResolverLogTailLines is how many resolver log lines are attached to a
	// failed DNS probe.
	ResolverLogTailLines = 20

	// KubeletLogTailLines is how many kubelet log lines are scanned per node.
	KubeletLogTailLines = 500

	// KubeletLogConcurrency bounds parallel node log fetches.
	KubeletLogConcurrency = 4
)
