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
Package dns checks in-cluster name resolution with an ordered chain of probe
techniques.

# Techniques

The default chain, in order:

  - lookup-pod: a one-shot pod runs nslookup; its log is parsed
  - exec-wget: wget --spider inside a long-lived probe pod
  - exec-ping: ping -c 1 inside the same pod
  - exec-nc: nc -z to port 443 inside the same pod

Each technique has its own parser that yields an Answer. A name resolves when
the output carries an address and none of the NotFoundMarkers.

# Chain Semantics

The chain stops at the first technique that resolves and drops the failures
collected so far. When every technique fails it returns a DNS_PROBE_FAILURE
error whose context lists each technique's reason and the log tail of the
cluster resolver pods (k8s-app=kube-dns in kube-system).

The exec techniques share one pod through an ephemeral.Lease. It is created
only when the chain reaches them, so a successful lookup-pod never starts it.
A readiness failure of the shared pod fails each exec technique in turn
without a second create.

# Usage

	res, err := dns.Resolve(ctx, manager, dns.Config{}, "kubernetes.default")
	if err != nil {
	    // errors.CodeOf(err) == errors.ErrCodeDNSProbeFailure
	}
	slog.Info("resolved", "technique", res.Technique, "addresses", res.Addresses)
*/
package dns
