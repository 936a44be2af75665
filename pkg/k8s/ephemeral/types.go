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

package ephemeral

import (
	"fmt"
	"time"

	"github.com/NVIDIA/cluster-validator/pkg/cluster"
	"github.com/NVIDIA/cluster-validator/pkg/errors"
)

const (
	// ManagedByLabel marks every pod the validator creates.
	ManagedByLabel = "app.kubernetes.io/managed-by"

	// ManagedByValue is the value of ManagedByLabel.
	ManagedByValue = "cluster-validator"

	// NameLabel carries the template name prefix.
	NameLabel = "app.kubernetes.io/name"

	// ContainerName is the name of the single probe container.
	ContainerName = "probe"

	// DefaultActiveDeadline bounds how long a leaked probe pod can live.
	DefaultActiveDeadline = 10 * time.Minute
)

// Readiness selects the pod state WaitReady waits for.
type Readiness int

const (
	// ReadyRunning waits for phase Running with all containers ready.
	ReadyRunning Readiness = iota

	// ReadyCompleted waits for phase Succeeded or Failed. Used for one-shot pods.
	ReadyCompleted
)

// String returns the readiness mode name.
func (r Readiness) String() string {
	switch r {
	case ReadyRunning:
		return "running"
	case ReadyCompleted:
		return "completed"
	default:
		return fmt.Sprintf("readiness(%d)", int(r))
	}
}

// Template describes a probe pod. Only Image and Command matter to the
// workload; the rest shapes identity and lifecycle.
type Template struct {
	Namespace  string
	NamePrefix string
	Image      string
	Command    []string
	Readiness  Readiness

	// Labels are merged over the managed-by and name labels.
	Labels map[string]string

	// ActiveDeadline overrides DefaultActiveDeadline when positive.
	ActiveDeadline time.Duration
}

// Validate checks the template for missing required fields.
func (t Template) Validate() error {
	switch {
	case t.Namespace == "":
		return errors.New(errors.ErrCodeInvalidRequest, "probe template requires a namespace")
	case t.NamePrefix == "":
		return errors.New(errors.ErrCodeInvalidRequest, "probe template requires a name prefix")
	case t.Image == "":
		return errors.New(errors.ErrCodeInvalidRequest, "probe template requires an image")
	case len(t.Command) == 0:
		return errors.New(errors.ErrCodeInvalidRequest, "probe template requires a command")
	}
	return nil
}

// Resource is a created probe pod.
type Resource struct {
	Namespace string
	Name      string
	Container string
	Readiness Readiness

	// Status is the last observed pod status, set by WaitReady.
	Status *cluster.PodRecord
}

// String returns namespace/name.
func (r *Resource) String() string {
	return r.Namespace + "/" + r.Name
}
