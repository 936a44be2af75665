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

package cluster

import (
	"context"
	"sort"
	"strings"

	corev1 "k8s.io/api/core/v1"
)

// Executor issues single read-only queries and mutations against the cluster.
// Every call returns a fresh snapshot; nothing is cached between calls.
type Executor interface {
	// APIHealth returns the raw body of the API server health endpoint.
	APIHealth(ctx context.Context) (string, error)

	// ServerVersion returns the API server git version (e.g. v1.31.2-eks-7f9249a).
	ServerVersion(ctx context.Context) (string, error)

	// ListNodes returns every registered node.
	ListNodes(ctx context.Context) ([]NodeRecord, error)

	// ListNamespaces returns the names of all namespaces.
	ListNamespaces(ctx context.Context) ([]string, error)

	// ListPods returns the pods in namespace matching the label selector.
	// An empty selector matches all pods.
	ListPods(ctx context.Context, namespace, selector string) ([]PodRecord, error)

	// CreatePod submits a pod manifest.
	CreatePod(ctx context.Context, pod *corev1.Pod) error

	// GetPod returns the current status of a single pod.
	GetPod(ctx context.Context, namespace, name string) (*PodRecord, error)

	// DeletePod deletes a pod. Deleting a pod that is already gone succeeds.
	DeletePod(ctx context.Context, namespace, name string) error

	// Exec runs command in a container and captures its output. A non-zero
	// exit code is reported in the result, not as an error.
	Exec(ctx context.Context, namespace, pod, container string, command []string) (ExecResult, error)

	// PodLogs returns the last tailLines lines of a pod's log.
	PodLogs(ctx context.Context, namespace, pod string, tailLines int64) (string, error)

	// NodeLogs returns the last tailLines lines of the kubelet log of a node,
	// read through the API server node proxy.
	NodeLogs(ctx context.Context, node string, tailLines int64) (string, error)

	// CanI reports whether the current identity holds a permission.
	CanI(ctx context.Context, p Permission) (bool, string, error)
}

// PressureConditions are the node conditions reported as warnings by the node step.
var PressureConditions = []corev1.NodeConditionType{
	corev1.NodeDiskPressure,
	corev1.NodeMemoryPressure,
	corev1.NodePIDPressure,
}

// NodeRecord is a read-only view of one node.
type NodeRecord struct {
	Name string `json:"name" yaml:"name"`

	// Role joins the node-role.kubernetes.io/<role> label suffixes, sorted.
	Role string `json:"role,omitempty" yaml:"role,omitempty"`

	// Ready is the status of the Ready condition: True, False or Unknown.
	Ready corev1.ConditionStatus `json:"ready" yaml:"ready"`

	// Pressure maps each pressure condition type to whether it is True.
	Pressure map[corev1.NodeConditionType]bool `json:"pressure,omitempty" yaml:"pressure,omitempty"`

	// Capacity holds cpu, memory and pods capacity as quantity strings.
	Capacity map[string]string `json:"capacity,omitempty" yaml:"capacity,omitempty"`
}

// IsReady reports whether the Ready condition is True.
func (n NodeRecord) IsReady() bool {
	return n.Ready == corev1.ConditionTrue
}

// ActivePressure returns the sorted names of pressure conditions that are True.
func (n NodeRecord) ActivePressure() []string {
	var active []string
	for t, on := range n.Pressure {
		if on {
			active = append(active, string(t))
		}
	}
	sort.Strings(active)
	return active
}

// ContainerRecord is the readiness of one container in a pod.
type ContainerRecord struct {
	Name  string `json:"name" yaml:"name"`
	Ready bool   `json:"ready" yaml:"ready"`
}

// PodRecord is a read-only view of one pod.
type PodRecord struct {
	Name       string            `json:"name" yaml:"name"`
	Namespace  string            `json:"namespace" yaml:"namespace"`
	Phase      corev1.PodPhase   `json:"phase" yaml:"phase"`
	Message    string            `json:"message,omitempty" yaml:"message,omitempty"`
	Labels     map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Containers []ContainerRecord `json:"containers,omitempty" yaml:"containers,omitempty"`
}

// IsRunning reports whether the pod phase is Running.
func (p PodRecord) IsRunning() bool {
	return p.Phase == corev1.PodRunning
}

// IsTerminal reports whether the pod has finished, successfully or not.
func (p PodRecord) IsTerminal() bool {
	return p.Phase == corev1.PodSucceeded || p.Phase == corev1.PodFailed
}

// AllContainersReady reports whether the pod has container statuses and
// every one of them is ready.
func (p PodRecord) AllContainersReady() bool {
	if len(p.Containers) == 0 {
		return false
	}
	for _, c := range p.Containers {
		if !c.Ready {
			return false
		}
	}
	return true
}

// UnreadyContainers returns the names of containers that are not ready.
func (p PodRecord) UnreadyContainers() []string {
	var names []string
	for _, c := range p.Containers {
		if !c.Ready {
			names = append(names, c.Name)
		}
	}
	return names
}

// ExecResult is the captured output of an exec.
type ExecResult struct {
	Stdout   string `json:"stdout" yaml:"stdout"`
	Stderr   string `json:"stderr,omitempty" yaml:"stderr,omitempty"`
	ExitCode int    `json:"exitCode" yaml:"exitCode"`
}

// Combined returns stdout followed by stderr. Busybox tools print part of
// their diagnostics on stderr, so parsers look at both.
func (r ExecResult) Combined() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return strings.TrimRight(r.Stdout, "\n") + "\n" + r.Stderr
}

// Permission is a single access review request.
type Permission struct {
	Verb        string `json:"verb" yaml:"verb"`
	Resource    string `json:"resource" yaml:"resource"`
	Subresource string `json:"subresource,omitempty" yaml:"subresource,omitempty"`
	Namespace   string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

func (p Permission) String() string {
	res := p.Resource
	if p.Subresource != "" {
		res += "/" + p.Subresource
	}
	if p.Namespace == "" {
		return p.Verb + " " + res + " (cluster-scoped)"
	}
	return p.Verb + " " + res + " (namespace " + p.Namespace + ")"
}
