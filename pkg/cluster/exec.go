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
	stderrors "errors"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/remotecommand"
	utilexec "k8s.io/client-go/util/exec"

	"github.com/NVIDIA/cluster-validator/pkg/errors"
)

// Exec implements Executor over an SPDY exec stream.
func (e *KubeExecutor) Exec(ctx context.Context, namespace, pod, container string, command []string) (ExecResult, error) {
	if e.config == nil {
		return ExecResult{}, errors.New(errors.ErrCodeCommandFailure, "exec requires a rest config")
	}
	if err := e.throttle(ctx); err != nil {
		return ExecResult{}, err
	}

	rc := e.clientset.CoreV1().RESTClient()
	if isNilRESTClient(rc) {
		return ExecResult{}, errors.New(errors.ErrCodeCommandFailure, "core REST client unavailable")
	}

	req := rc.Post().
		Resource("pods").
		Namespace(namespace).
		Name(pod).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: container,
			Command:   command,
			Stdout:    true,
			Stderr:    true,
		}, scheme.ParameterCodec)

	exec, err := remotecommand.NewSPDYExecutor(e.config, "POST", req.URL())
	if err != nil {
		return ExecResult{}, errors.Wrap(errors.ErrCodeCommandFailure, "failed to create exec stream", err)
	}

	var stdout, stderr bytes.Buffer
	err = exec.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdout: &stdout,
		Stderr: &stderr,
	})

	result := ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}

	// The command ran and exited non-zero; callers interpret the code.
	var exitErr utilexec.ExitError
	if stderrors.As(err, &exitErr) && exitErr.Exited() {
		result.ExitCode = exitErr.ExitStatus()
		return result, nil
	}

	return result, errors.WrapWithContext(errors.ErrCodeCommandFailure, "exec stream failed", err,
		map[string]any{"namespace": namespace, "pod": pod, "command": command})
}
