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

// Package fake provides a scriptable in-memory cluster.Executor for tests.
package fake

import (
	"context"
	"fmt"
	"strings"
	"sync"

	corev1 "k8s.io/api/core/v1"

	"github.com/NVIDIA/cluster-validator/pkg/cluster"
	"github.com/NVIDIA/cluster-validator/pkg/errors"
)

// Executor is an in-memory cluster.Executor. Zero value answers every read
// with an empty snapshot. Set the exported fields to script a cluster.
type Executor struct {
	mu sync.Mutex

	Health     string
	Version    string
	Nodes      []cluster.NodeRecord
	Namespaces []string

	// Pods holds pre-existing pods keyed by namespace. Selectors are matched
	// as a single key=value pair against labels.
	Pods map[string][]cluster.PodRecord

	// Denied lists permissions (by Permission.String) that CanI rejects.
	Denied map[string]bool

	// Errors injects a failure for a method name, e.g. "ListNodes".
	Errors map[string]error

	// OnCreate derives the status GetPod reports for a created pod. The
	// default is Running with every container ready.
	OnCreate func(pod *corev1.Pod) cluster.PodRecord

	// OnExec answers Exec calls. The default exits 0 with no output.
	OnExec func(namespace, pod string, command []string) (cluster.ExecResult, error)

	// OnPodLogs answers PodLogs calls. The default returns "".
	OnPodLogs func(namespace, pod string) (string, error)

	// OnNodeLogs answers NodeLogs calls. The default returns "".
	OnNodeLogs func(node string) (string, error)

	created map[string]cluster.PodRecord
	calls   []string

	// Created and Deleted record pod names in call order.
	Created []string
	Deleted []string
	Execs   [][]string
}

var _ cluster.Executor = (*Executor)(nil)

func key(namespace, name string) string {
	return namespace + "/" + name
}

func (f *Executor) record(method string) error {
	f.calls = append(f.calls, method)
	if err, ok := f.Errors[method]; ok {
		return err
	}
	return nil
}

// Calls returns the names of executor methods invoked so far.
func (f *Executor) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// DeleteCount returns how many times DeletePod was called for name.
func (f *Executor) DeleteCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, d := range f.Deleted {
		if d == name {
			n++
		}
	}
	return n
}

// APIHealth implements cluster.Executor.
func (f *Executor) APIHealth(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("APIHealth"); err != nil {
		return "", err
	}
	return f.Health, nil
}

// ServerVersion implements cluster.Executor.
func (f *Executor) ServerVersion(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ServerVersion"); err != nil {
		return "", err
	}
	return f.Version, nil
}

// ListNodes implements cluster.Executor.
func (f *Executor) ListNodes(_ context.Context) ([]cluster.NodeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListNodes"); err != nil {
		return nil, err
	}
	return append([]cluster.NodeRecord(nil), f.Nodes...), nil
}

// ListNamespaces implements cluster.Executor.
func (f *Executor) ListNamespaces(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListNamespaces"); err != nil {
		return nil, err
	}
	return append([]string(nil), f.Namespaces...), nil
}

// ListPods implements cluster.Executor.
func (f *Executor) ListPods(_ context.Context, namespace, selector string) ([]cluster.PodRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListPods"); err != nil {
		return nil, err
	}

	var out []cluster.PodRecord
	for _, p := range f.Pods[namespace] {
		if matches(p.Labels, selector) {
			out = append(out, p)
		}
	}
	return out, nil
}

func matches(labels map[string]string, selector string) bool {
	if selector == "" {
		return true
	}
	k, v, ok := strings.Cut(selector, "=")
	if !ok {
		_, has := labels[k]
		return has
	}
	return labels[k] == v
}

// CreatePod implements cluster.Executor.
func (f *Executor) CreatePod(_ context.Context, pod *corev1.Pod) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreatePod"); err != nil {
		return err
	}
	if f.created == nil {
		f.created = make(map[string]cluster.PodRecord)
	}
	k := key(pod.Namespace, pod.Name)
	if _, ok := f.created[k]; ok {
		return errors.New(errors.ErrCodeCommandFailure, fmt.Sprintf("pod %s already exists", k))
	}

	rec := cluster.PodRecord{
		Name:       pod.Name,
		Namespace:  pod.Namespace,
		Phase:      corev1.PodRunning,
		Labels:     pod.Labels,
		Containers: []cluster.ContainerRecord{{Name: "probe", Ready: true}},
	}
	if f.OnCreate != nil {
		rec = f.OnCreate(pod)
		rec.Name, rec.Namespace = pod.Name, pod.Namespace
	}
	f.created[k] = rec
	f.Created = append(f.Created, pod.Name)
	return nil
}

// GetPod implements cluster.Executor.
func (f *Executor) GetPod(_ context.Context, namespace, name string) (*cluster.PodRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetPod"); err != nil {
		return nil, err
	}
	rec, ok := f.created[key(namespace, name)]
	if !ok {
		return nil, errors.New(errors.ErrCodeCommandFailure, fmt.Sprintf("pod %s not found", key(namespace, name)))
	}
	return &rec, nil
}

// DeletePod implements cluster.Executor.
func (f *Executor) DeletePod(_ context.Context, namespace, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, name)
	if err := f.record("DeletePod"); err != nil {
		return err
	}
	delete(f.created, key(namespace, name))
	return nil
}

// Exec implements cluster.Executor.
func (f *Executor) Exec(_ context.Context, namespace, pod, _ string, command []string) (cluster.ExecResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Exec"); err != nil {
		return cluster.ExecResult{}, err
	}
	f.Execs = append(f.Execs, command)
	if f.OnExec == nil {
		return cluster.ExecResult{}, nil
	}
	return f.OnExec(namespace, pod, command)
}

// PodLogs implements cluster.Executor.
func (f *Executor) PodLogs(_ context.Context, namespace, pod string, _ int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("PodLogs"); err != nil {
		return "", err
	}
	if f.OnPodLogs == nil {
		return "", nil
	}
	return f.OnPodLogs(namespace, pod)
}

// NodeLogs implements cluster.Executor.
func (f *Executor) NodeLogs(_ context.Context, node string, _ int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("NodeLogs"); err != nil {
		return "", err
	}
	if f.OnNodeLogs == nil {
		return "", nil
	}
	return f.OnNodeLogs(node)
}

// CanI implements cluster.Executor.
func (f *Executor) CanI(_ context.Context, p cluster.Permission) (bool, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CanI"); err != nil {
		return false, "", err
	}
	if f.Denied[p.String()] {
		return false, "denied by test", nil
	}
	return true, "", nil
}

// ReadyNode returns a Ready node record without pressure.
func ReadyNode(name string) cluster.NodeRecord {
	return cluster.NodeRecord{
		Name:     name,
		Ready:    corev1.ConditionTrue,
		Pressure: map[corev1.NodeConditionType]bool{},
		Capacity: map[string]string{"cpu": "4", "memory": "16Gi", "pods": "110"},
	}
}

// RunningPod returns a Running pod record with a single ready container.
func RunningPod(namespace, name string, labels map[string]string) cluster.PodRecord {
	return cluster.PodRecord{
		Name:       name,
		Namespace:  namespace,
		Phase:      corev1.PodRunning,
		Labels:     labels,
		Containers: []cluster.ContainerRecord{{Name: name, Ready: true}},
	}
}
