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
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/NVIDIA/cluster-validator/pkg/cluster"
	"github.com/NVIDIA/cluster-validator/pkg/defaults"
	"github.com/NVIDIA/cluster-validator/pkg/errors"
)

// Manager creates, polls and deletes probe pods through an Executor.
type Manager struct {
	exec           cluster.Executor
	pollInterval   time.Duration
	cleanupTimeout time.Duration
}

// Option is a functional option for configuring Manager instances.
type Option func(*Manager)

// WithPollInterval sets the fixed interval between pod status reads.
func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.pollInterval = d
		}
	}
}

// WithCleanupTimeout bounds each pod deletion.
func WithCleanupTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.cleanupTimeout = d
		}
	}
}

// NewManager creates a Manager with default polling and cleanup settings.
func NewManager(exec cluster.Executor, opts ...Option) *Manager {
	m := &Manager{
		exec:           exec,
		pollInterval:   defaults.K8sPodPollInterval,
		cleanupTimeout: defaults.K8sCleanupTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Executor returns the executor the manager drives.
func (m *Manager) Executor() cluster.Executor {
	return m.exec
}

// Create renders and submits a probe pod for the template. The returned
// Resource is non-nil whenever a create request was issued, even if it
// failed, so callers can still attempt cleanup.
func (m *Manager) Create(ctx context.Context, tmpl Template) (*Resource, error) {
	name := NewName(tmpl.NamePrefix, time.Now())
	pod, err := BuildPod(tmpl, name)
	if err != nil {
		return nil, err
	}

	res := &Resource{
		Namespace: pod.Namespace,
		Name:      pod.Name,
		Container: ContainerName,
		Readiness: tmpl.Readiness,
	}

	slog.Debug("creating probe pod", "pod", res.String(), "image", pod.Spec.Containers[0].Image)
	if err := m.exec.CreatePod(ctx, pod); err != nil {
		return res, err
	}
	return res, nil
}

// WaitReady polls the pod at a fixed interval until it reaches the state its
// readiness mode asks for, or timeout elapses. A pod that terminates while
// ReadyRunning is expected fails immediately.
func (m *Manager) WaitReady(ctx context.Context, res *Resource, timeout time.Duration) error {
	var (
		last    *cluster.PodRecord
		lastErr error
		polls   int
	)

	err := wait.PollUntilContextTimeout(ctx, m.pollInterval, timeout, true,
		func(ctx context.Context) (bool, error) {
			polls++
			rec, err := m.exec.GetPod(ctx, res.Namespace, res.Name)
			if err != nil {
				lastErr = err
				slog.Debug("probe pod status unavailable", "pod", res.String(), "poll", polls, "error", err)
				return false, nil
			}
			last = rec

			if res.Readiness == ReadyCompleted {
				return rec.IsTerminal(), nil
			}

			if rec.IsTerminal() {
				return false, errors.NewWithContext(errors.ErrCodeResourceNotReady,
					fmt.Sprintf("probe pod %s terminated in phase %s before becoming ready", res, rec.Phase),
					map[string]any{"pod": res.String(), "phase": string(rec.Phase), "message": rec.Message})
			}
			return rec.IsRunning() && rec.AllContainersReady(), nil
		})

	res.Status = last
	if err == nil {
		slog.Debug("probe pod ready", "pod", res.String(), "mode", res.Readiness.String(), "polls", polls)
		return nil
	}

	var se *errors.StructuredError
	if stderrors.As(err, &se) {
		return err
	}

	details := map[string]any{
		"pod":     res.String(),
		"mode":    res.Readiness.String(),
		"timeout": timeout.String(),
		"polls":   polls,
	}
	if last != nil {
		details["phase"] = string(last.Phase)
		if unready := last.UnreadyContainers(); len(unready) > 0 {
			details["unreadyContainers"] = strings.Join(unready, ",")
		}
	}
	if lastErr != nil {
		details["lastError"] = lastErr.Error()
	}

	return errors.WrapWithContext(errors.ErrCodeResourceNotReady,
		fmt.Sprintf("probe pod %s not %s within %v", res, res.Readiness, timeout), err, details)
}

// Delete removes the pod on a context detached from the caller's
// cancellation. Failures are logged as CLEANUP_FAILURE and never returned.
func (m *Manager) Delete(ctx context.Context, res *Resource) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cleanupTimeout)
	defer cancel()

	if err := m.exec.DeletePod(cleanupCtx, res.Namespace, res.Name); err != nil {
		cerr := errors.WrapWithContext(errors.ErrCodeCleanupFailure, "failed to delete probe pod", err,
			map[string]any{"pod": res.String()})
		slog.Warn("probe pod cleanup failed", "pod", res.String(), "code", cerr.Code, "error", cerr)
		return
	}
	slog.Debug("probe pod deleted", "pod", res.String())
}
