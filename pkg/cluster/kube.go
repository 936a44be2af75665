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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
	authv1 "k8s.io/api/authorization/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/version"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/cluster-validator/pkg/defaults"
	"github.com/NVIDIA/cluster-validator/pkg/errors"
)

const (
	healthzPath = "/healthz"
	versionPath = "/version"
)

// NodeRoleLabelPrefix is the well-known label prefix that carries node roles.
const NodeRoleLabelPrefix = "node-role.kubernetes.io/"

// KubeExecutor implements Executor with client-go.
type KubeExecutor struct {
	clientset kubernetes.Interface
	config    *rest.Config
	limiter   *rate.Limiter
}

// Option is a functional option for configuring KubeExecutor instances.
type Option func(*KubeExecutor)

// WithRestConfig sets the rest.Config used to open exec streams.
// Without it Exec always fails.
func WithRestConfig(config *rest.Config) Option {
	return func(e *KubeExecutor) {
		e.config = config
	}
}

// WithRateLimit throttles API calls with a token bucket. A zero limit
// disables throttling.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(e *KubeExecutor) {
		if limit <= 0 {
			e.limiter = nil
			return
		}
		e.limiter = rate.NewLimiter(limit, burst)
	}
}

// NewKubeExecutor creates an executor over the given clientset.
func NewKubeExecutor(clientset kubernetes.Interface, opts ...Option) *KubeExecutor {
	e := &KubeExecutor{
		clientset: clientset,
		limiter:   rate.NewLimiter(rate.Limit(defaults.ExecutorQPS), defaults.ExecutorBurst),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// throttle blocks until the rate limiter admits one more API call.
func (e *KubeExecutor) throttle(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeCommandFailure, "rate limiter wait aborted", err)
	}
	return nil
}

// APIHealth implements Executor.
func (e *KubeExecutor) APIHealth(ctx context.Context) (string, error) {
	if err := e.throttle(ctx); err != nil {
		return "", err
	}

	rc := e.clientset.Discovery().RESTClient()
	if isNilRESTClient(rc) {
		return "", errors.New(errors.ErrCodeCommandFailure, "discovery REST client unavailable")
	}

	body, err := rc.Get().AbsPath(healthzPath).DoRaw(ctx)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeCommandFailure,
			fmt.Sprintf("failed to query %s", healthzPath), err)
	}
	return string(body), nil
}

// ServerVersion implements Executor.
func (e *KubeExecutor) ServerVersion(ctx context.Context) (string, error) {
	if err := e.throttle(ctx); err != nil {
		return "", err
	}

	rc := e.clientset.Discovery().RESTClient()
	if isNilRESTClient(rc) {
		// Fake clientsets answer discovery without a transport.
		info, err := e.clientset.Discovery().ServerVersion()
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeCommandFailure, "failed to get server version", err)
		}
		return info.GitVersion, nil
	}

	body, err := rc.Get().AbsPath(versionPath).Do(ctx).Raw()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeCommandFailure, "failed to get server version", err)
	}
	var info version.Info
	if err := json.Unmarshal(body, &info); err != nil {
		return "", errors.Wrap(errors.ErrCodeCommandFailure,
			fmt.Sprintf("failed to decode %s response", versionPath), err)
	}
	return info.GitVersion, nil
}

// ListNodes implements Executor.
func (e *KubeExecutor) ListNodes(ctx context.Context) ([]NodeRecord, error) {
	if err := e.throttle(ctx); err != nil {
		return nil, err
	}

	list, err := e.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCommandFailure, "failed to list nodes", err)
	}

	nodes := make([]NodeRecord, 0, len(list.Items))
	for i := range list.Items {
		nodes = append(nodes, toNodeRecord(&list.Items[i]))
	}
	return nodes, nil
}

// ListNamespaces implements Executor.
func (e *KubeExecutor) ListNamespaces(ctx context.Context) ([]string, error) {
	if err := e.throttle(ctx); err != nil {
		return nil, err
	}

	list, err := e.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCommandFailure, "failed to list namespaces", err)
	}

	names := make([]string, 0, len(list.Items))
	for _, ns := range list.Items {
		names = append(names, ns.Name)
	}
	return names, nil
}

// ListPods implements Executor.
func (e *KubeExecutor) ListPods(ctx context.Context, namespace, selector string) ([]PodRecord, error) {
	if err := e.throttle(ctx); err != nil {
		return nil, err
	}

	list, err := e.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector,
	})
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeCommandFailure, "failed to list pods", err,
			map[string]any{"namespace": namespace, "selector": selector})
	}

	pods := make([]PodRecord, 0, len(list.Items))
	for i := range list.Items {
		pods = append(pods, toPodRecord(&list.Items[i]))
	}
	return pods, nil
}

// CreatePod implements Executor.
func (e *KubeExecutor) CreatePod(ctx context.Context, pod *corev1.Pod) error {
	if err := e.throttle(ctx); err != nil {
		return err
	}

	if _, err := e.clientset.CoreV1().Pods(pod.Namespace).Create(ctx, pod, metav1.CreateOptions{}); err != nil {
		return errors.WrapWithContext(errors.ErrCodeCommandFailure, "failed to create pod", err,
			map[string]any{"namespace": pod.Namespace, "pod": pod.Name})
	}
	return nil
}

// GetPod implements Executor.
func (e *KubeExecutor) GetPod(ctx context.Context, namespace, name string) (*PodRecord, error) {
	if err := e.throttle(ctx); err != nil {
		return nil, err
	}

	pod, err := e.clientset.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeCommandFailure, "failed to get pod", err,
			map[string]any{"namespace": namespace, "pod": name})
	}
	rec := toPodRecord(pod)
	return &rec, nil
}

// DeletePod implements Executor.
func (e *KubeExecutor) DeletePod(ctx context.Context, namespace, name string) error {
	if err := e.throttle(ctx); err != nil {
		return err
	}

	err := e.clientset.CoreV1().Pods(namespace).Delete(ctx, name, metav1.DeleteOptions{
		GracePeriodSeconds: ptr.To(int64(0)),
	})
	if ignoreNotFound(err) != nil {
		return errors.WrapWithContext(errors.ErrCodeCommandFailure, "failed to delete pod", err,
			map[string]any{"namespace": namespace, "pod": name})
	}
	return nil
}

// PodLogs implements Executor.
func (e *KubeExecutor) PodLogs(ctx context.Context, namespace, pod string, tailLines int64) (string, error) {
	if err := e.throttle(ctx); err != nil {
		return "", err
	}

	opts := &corev1.PodLogOptions{}
	if tailLines > 0 {
		opts.TailLines = ptr.To(tailLines)
	}

	logs, err := e.clientset.CoreV1().Pods(namespace).GetLogs(pod, opts).Stream(ctx)
	if err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeCommandFailure, "failed to stream logs", err,
			map[string]any{"namespace": namespace, "pod": pod})
	}
	defer logs.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, logs); err != nil {
		return "", errors.Wrap(errors.ErrCodeCommandFailure, "failed to read logs", err)
	}
	return buf.String(), nil
}

// NodeLogs implements Executor. It prefers the node log query endpoint and
// falls back to the kubelet.log file for nodes without journald.
func (e *KubeExecutor) NodeLogs(ctx context.Context, node string, tailLines int64) (string, error) {
	if err := e.throttle(ctx); err != nil {
		return "", err
	}

	rc := e.clientset.CoreV1().RESTClient()
	if isNilRESTClient(rc) {
		return "", errors.New(errors.ErrCodeCommandFailure, "core REST client unavailable")
	}

	body, err := rc.Get().
		Resource("nodes").
		Name(node).
		SubResource("proxy").
		Suffix("logs/").
		Param("query", "kubelet").
		Param("tailLines", strconv.FormatInt(tailLines, 10)).
		DoRaw(ctx)
	if err == nil {
		return string(body), nil
	}

	if err := e.throttle(ctx); err != nil {
		return "", err
	}
	body, fileErr := rc.Get().
		Resource("nodes").
		Name(node).
		SubResource("proxy").
		Suffix("logs/kubelet.log").
		DoRaw(ctx)
	if fileErr != nil {
		return "", errors.WrapWithContext(errors.ErrCodeCommandFailure, "failed to read kubelet logs", fileErr,
			map[string]any{"node": node, "queryError": err.Error()})
	}
	return tail(string(body), tailLines), nil
}

// CanI implements Executor.
func (e *KubeExecutor) CanI(ctx context.Context, p Permission) (bool, string, error) {
	if err := e.throttle(ctx); err != nil {
		return false, "", err
	}

	review := &authv1.SelfSubjectAccessReview{
		Spec: authv1.SelfSubjectAccessReviewSpec{
			ResourceAttributes: &authv1.ResourceAttributes{
				Verb:        p.Verb,
				Resource:    p.Resource,
				Subresource: p.Subresource,
				Namespace:   p.Namespace,
			},
		},
	}

	result, err := e.clientset.AuthorizationV1().SelfSubjectAccessReviews().Create(ctx, review, metav1.CreateOptions{})
	if err != nil {
		return false, "", errors.Wrap(errors.ErrCodeCommandFailure,
			fmt.Sprintf("failed to review permission %s", p), err)
	}
	return result.Status.Allowed, result.Status.Reason, nil
}

func toNodeRecord(node *corev1.Node) NodeRecord {
	rec := NodeRecord{
		Name:     node.Name,
		Role:     nodeRole(node.Labels),
		Ready:    corev1.ConditionUnknown,
		Pressure: make(map[corev1.NodeConditionType]bool, len(PressureConditions)),
		Capacity: make(map[string]string),
	}

	for _, cond := range node.Status.Conditions {
		switch cond.Type {
		case corev1.NodeReady:
			rec.Ready = cond.Status
		case corev1.NodeDiskPressure, corev1.NodeMemoryPressure, corev1.NodePIDPressure:
			rec.Pressure[cond.Type] = cond.Status == corev1.ConditionTrue
		}
	}

	for _, name := range []corev1.ResourceName{corev1.ResourceCPU, corev1.ResourceMemory, corev1.ResourcePods} {
		if q, ok := node.Status.Capacity[name]; ok {
			rec.Capacity[string(name)] = q.String()
		}
	}

	return rec
}

func nodeRole(labels map[string]string) string {
	var roles []string
	for k := range labels {
		if role, ok := strings.CutPrefix(k, NodeRoleLabelPrefix); ok && role != "" {
			roles = append(roles, role)
		}
	}
	sort.Strings(roles)
	return strings.Join(roles, ",")
}

func toPodRecord(pod *corev1.Pod) PodRecord {
	rec := PodRecord{
		Name:      pod.Name,
		Namespace: pod.Namespace,
		Phase:     pod.Status.Phase,
		Message:   pod.Status.Message,
		Labels:    pod.Labels,
	}
	for _, cs := range pod.Status.ContainerStatuses {
		rec.Containers = append(rec.Containers, ContainerRecord{Name: cs.Name, Ready: cs.Ready})
	}
	return rec
}

// ignoreNotFound returns nil if the error is "not found", otherwise returns the error.
// Used to make resource deletion idempotent.
func ignoreNotFound(err error) error {
	if apierrors.IsNotFound(err) {
		return nil
	}
	return err
}

// isNilRESTClient guards against the typed nil returned by fake clientsets.
func isNilRESTClient(rc rest.Interface) bool {
	if rc == nil {
		return true
	}
	c, ok := rc.(*rest.RESTClient)
	return ok && c == nil
}

// tail returns the last n lines of s. n <= 0 returns s unchanged.
func tail(s string, n int64) string {
	if n <= 0 {
		return s
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if int64(len(lines)) <= n {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[int64(len(lines))-n:], "\n")
}
