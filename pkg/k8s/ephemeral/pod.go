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
	"maps"
	"strings"
	"time"

	"github.com/distribution/reference"
	"github.com/google/uuid"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/cluster-validator/pkg/errors"
)

// NewName returns a unique pod name: prefix, unix seconds and a random
// fragment, e.g. dns-lookup-1736936400-3f2a9c1b.
func NewName(prefix string, now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s-%d-%s", prefix, now.Unix(), id[:8])
}

// NormalizeImage validates an image reference and returns its fully
// qualified form. A missing tag resolves to latest.
func NormalizeImage(image string) (string, error) {
	named, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid probe image reference", err,
			map[string]any{"image": image})
	}
	return reference.TagNameOnly(named).String(), nil
}

// BuildPod renders the pod manifest for a template under the given name.
func BuildPod(tmpl Template, name string) (*corev1.Pod, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	if msgs := validation.IsDNS1123Subdomain(name); len(msgs) > 0 {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid probe pod name %q: %s", name, strings.Join(msgs, "; ")),
			map[string]any{"name": name})
	}

	image, err := NormalizeImage(tmpl.Image)
	if err != nil {
		return nil, err
	}

	deadline := tmpl.ActiveDeadline
	if deadline <= 0 {
		deadline = DefaultActiveDeadline
	}

	labels := map[string]string{
		ManagedByLabel: ManagedByValue,
		NameLabel:      tmpl.NamePrefix,
	}
	maps.Copy(labels, tmpl.Labels)

	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: tmpl.Namespace,
			Labels:    labels,
		},
		Spec: corev1.PodSpec{
			RestartPolicy:                 corev1.RestartPolicyNever,
			TerminationGracePeriodSeconds: ptr.To(int64(0)),
			ActiveDeadlineSeconds:         ptr.To(int64(deadline.Seconds())),
			AutomountServiceAccountToken:  ptr.To(false),
			Containers: []corev1.Container{
				{
					Name:            ContainerName,
					Image:           image,
					ImagePullPolicy: corev1.PullIfNotPresent,
					Command:         append([]string(nil), tmpl.Command...),
				},
			},
		},
	}, nil
}
