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

import (
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		// Retry timing
		{"RetryDelay", RetryDelay, 1 * time.Second, 60 * time.Second},
		{"MaxRetryDelay", MaxRetryDelay, 30 * time.Second, 10 * time.Minute},

		// K8s timeouts
		{"K8sPodReadyTimeout", K8sPodReadyTimeout, 30 * time.Second, 120 * time.Second},
		{"K8sPodPollInterval", K8sPodPollInterval, 500 * time.Millisecond, 10 * time.Second},
		{"K8sCleanupTimeout", K8sCleanupTimeout, 10 * time.Second, 60 * time.Second},
		{"K8sExecTimeout", K8sExecTimeout, 5 * time.Second, 60 * time.Second},
		{"K8sQueryTimeout", K8sQueryTimeout, 10 * time.Second, 60 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s (%v) is below minimum expected value (%v)", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s (%v) is above maximum expected value (%v)", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}
}

func TestPollIntervalFitsReadyTimeout(t *testing.T) {
	// Readiness polling must get several reads within its budget
	if K8sPodPollInterval*5 > K8sPodReadyTimeout {
		t.Errorf("K8sPodPollInterval (%v) too coarse for K8sPodReadyTimeout (%v)",
			K8sPodPollInterval, K8sPodReadyTimeout)
	}
}

func TestRetryDefaults(t *testing.T) {
	if MaxAttempts < 1 {
		t.Errorf("MaxAttempts must be at least 1, got %d", MaxAttempts)
	}
	if MaxRetryDelay != 0 && MaxRetryDelay < RetryDelay {
		t.Errorf("MaxRetryDelay (%v) should not be below RetryDelay (%v)", MaxRetryDelay, RetryDelay)
	}
	if ExecutorBurst < ExecutorQPS {
		t.Errorf("ExecutorBurst (%d) should not be below ExecutorQPS (%d)", ExecutorBurst, ExecutorQPS)
	}
}
