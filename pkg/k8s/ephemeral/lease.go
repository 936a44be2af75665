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
	"time"
)

// Lease is a lazily acquired probe pod shared by several callers within one
// scope. The first Acquire creates the pod and waits for readiness; the
// outcome is memoized so later callers get the same pod or the same error.
// Release deletes the pod exactly once if a create was ever issued.
//
// A Lease is not safe for concurrent use.
type Lease struct {
	m       *Manager
	tmpl    Template
	timeout time.Duration

	acquired bool
	released bool
	res      *Resource
	err      error
}

// NewLease returns an unacquired lease. Nothing is created until Acquire.
func (m *Manager) NewLease(tmpl Template, readinessTimeout time.Duration) *Lease {
	return &Lease{m: m, tmpl: tmpl, timeout: readinessTimeout}
}

// Acquire returns the ready resource, creating it on first use.
func (l *Lease) Acquire(ctx context.Context) (*Resource, error) {
	if l.acquired {
		return l.res, l.err
	}
	l.acquired = true

	res, err := l.m.Create(ctx, l.tmpl)
	l.res = res
	if err != nil {
		l.err = err
		return nil, err
	}

	if err := l.m.WaitReady(ctx, res, l.timeout); err != nil {
		l.err = err
		return nil, err
	}
	return res, nil
}

// Created reports whether a create request was issued.
func (l *Lease) Created() bool {
	return l.res != nil
}

// Release deletes the resource if one was created. Later calls are no-ops.
func (l *Lease) Release(ctx context.Context) {
	if l.released {
		return
	}
	l.released = true
	if l.res == nil {
		return
	}
	l.m.Delete(ctx, l.res)
}

// WithTestResource creates a probe pod from tmpl, waits for it to become
// ready, and calls fn with it. The pod is deleted when WithTestResource
// returns, whether fn succeeds, fails or panics, and also when readiness
// times out.
func WithTestResource[T any](ctx context.Context, m *Manager, tmpl Template, readinessTimeout time.Duration,
	fn func(ctx context.Context, res *Resource) (T, error)) (T, error) {

	lease := m.NewLease(tmpl, readinessTimeout)
	defer lease.Release(ctx)

	res, err := lease.Acquire(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return fn(ctx, res)
}
