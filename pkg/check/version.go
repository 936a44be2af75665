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

package check

import (
	"context"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/version"

	"github.com/NVIDIA/cluster-validator/pkg/cluster"
	"github.com/NVIDIA/cluster-validator/pkg/errors"
)

// ServerVersion checks the API server is at least Minimum, e.g. "1.28".
type ServerVersion struct {
	Minimum string
	Timeout time.Duration
}

// Name implements Step.
func (ServerVersion) Name() string { return "server-version" }

// Execute implements Step.
func (s ServerVersion) Execute(ctx context.Context, exec cluster.Executor) Result {
	minimum, err := version.ParseGeneric(s.Minimum)
	if err != nil {
		return Fail(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid minimum version %q: %v", s.Minimum, err))
	}

	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	raw, err := exec.ServerVersion(ctx)
	if err != nil {
		return FromError(err)
	}

	// ParseGeneric drops vendor suffixes such as -eks-7f9249a.
	got, err := version.ParseGeneric(raw)
	if err != nil {
		return Fail(errors.ErrCodeInternal, fmt.Sprintf("unparseable server version %q: %v", raw, err))
	}

	r := Pass(fmt.Sprintf("server version %s satisfies minimum %s", raw, minimum))
	if !got.AtLeast(minimum) {
		r = Fail(errors.ErrCodeUnsupportedVersion,
			fmt.Sprintf("server version %s is older than minimum %s", raw, minimum))
	}
	return r.WithDiagnostics("serverVersion", raw)
}
