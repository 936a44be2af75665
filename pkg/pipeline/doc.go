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
Package pipeline runs validation steps in order and retries the whole run.

# State Machine

	Idle -> Running -> Succeeded
	                -> Retrying -> Running ...
	                -> GivenUp   (retryable failure, attempts exhausted)
	                -> Failed    (non-retryable failure or cancellation)

Each attempt starts again from the first step and stops at the first failing
step. Between attempts the Orchestrator sleeps for the backoff delay: Base for
fixed backoff, Base * 2^(attempt-1) capped at Max for exponential backoff.
The sleep returns early when the context is cancelled.

# Retry Policy

DefaultPolicy consults errors.IsRetryable on the failing step's code:

	RESOURCE_NOT_READY, RESOURCE_MISSING,
	COMMAND_FAILURE, DNS_PROBE_FAILURE     retry until MaxAttempts, then give up
	UNSUPPORTED_VERSION, UNAUTHORIZED,
	INVALID_REQUEST                        escalate immediately

# Usage

	orch, err := pipeline.New(pipeline.DefaultConfig(), exec, pipeline.WithVersion(version))
	if err != nil {
	    return err
	}
	report := orch.Run(ctx, check.DefaultSteps(check.Config{}))
	os.Exit(report.ExitCode())
*/
package pipeline
