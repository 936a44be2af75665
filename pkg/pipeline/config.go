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

package pipeline

import (
	"fmt"
	"math"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/NVIDIA/cluster-validator/pkg/defaults"
	"github.com/NVIDIA/cluster-validator/pkg/errors"
)

// BackoffKind selects how the delay between attempts grows.
type BackoffKind string

const (
	// BackoffFixed waits Base between every attempt.
	BackoffFixed BackoffKind = "fixed"

	// BackoffExponential waits Base * 2^(attempt-1), capped at Max.
	BackoffExponential BackoffKind = "exponential"
)

// SupportedBackoffKinds returns the accepted backoff kind names.
func SupportedBackoffKinds() []string {
	return []string{string(BackoffFixed), string(BackoffExponential)}
}

// Backoff describes the pause between pipeline attempts.
type Backoff struct {
	Kind BackoffKind   `json:"kind" yaml:"kind"`
	Base time.Duration `json:"base" yaml:"base"`

	// Max caps exponential growth, including the first delay. Zero means
	// uncapped, which saturates at maxBackoffDelay.
	Max time.Duration `json:"max,omitempty" yaml:"max,omitempty"`
}

// maxBackoffDelay bounds uncapped exponential growth well below the point
// where doubling a time.Duration overflows.
const maxBackoffDelay = time.Duration(math.MaxInt64 / 4)

// ceiling returns the largest delay the backoff may yield, or zero when
// delays never grow.
func (b Backoff) ceiling() time.Duration {
	if b.Kind != BackoffExponential {
		return 0
	}
	if b.Max > 0 && b.Max < maxBackoffDelay {
		return b.Max
	}
	return maxBackoffDelay
}

// state returns the apimachinery backoff that yields successive delays.
func (b Backoff) state(steps int) wait.Backoff {
	if b.Kind != BackoffExponential {
		return wait.Backoff{Duration: b.Base, Factor: 1.0, Steps: steps}
	}
	base, ceiling := b.Base, b.ceiling()
	if base > ceiling {
		base = ceiling
	}
	return wait.Backoff{
		Duration: base,
		Factor:   2.0,
		Steps:    steps,
		Cap:      ceiling,
	}
}

// Config is the immutable retry configuration of an Orchestrator.
type Config struct {
	MaxAttempts int     `json:"maxAttempts" yaml:"maxAttempts"`
	Backoff     Backoff `json:"backoff" yaml:"backoff"`
}

// DefaultConfig returns the compiled-in retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: defaults.MaxAttempts,
		Backoff: Backoff{
			Kind: BackoffKind(defaults.BackoffKind),
			Base: defaults.RetryDelay,
			Max:  defaults.MaxRetryDelay,
		},
	}
}

// Validate checks the configuration for impossible values.
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("max attempts must be at least 1, got %d", c.MaxAttempts))
	}
	switch c.Backoff.Kind {
	case BackoffFixed, BackoffExponential:
	default:
		return errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown backoff %q, supported: fixed, exponential", c.Backoff.Kind))
	}
	if c.Backoff.Base < 0 || c.Backoff.Max < 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "backoff delays must not be negative")
	}
	return nil
}
