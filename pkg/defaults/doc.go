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

// Package defaults provides centralized configuration constants for the cluster validator.
//
// This package defines retry parameters, Kubernetes timeouts and probe settings
// used across the codebase. The values are compiled in; the CLI may override
// the retry and probe settings through flags or environment variables, but no
// configuration file is read.
//
// # Categories
//
//   - Retry: pipeline attempt count and backoff timing
//   - Kubernetes: probe pod readiness, polling, cleanup and exec timeouts
//   - Executor: API client throttling
//   - Probe: DNS target, namespace, image and log tail sizes
//
// # Usage
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.K8sQueryTimeout)
//	defer cancel()
package defaults
