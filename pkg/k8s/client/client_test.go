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

package client

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKubeconfig = `apiVersion: v1
kind: Config
clusters:
- cluster:
    server: https://prod.example.com:6443
  name: prod
- cluster:
    server: https://staging.example.com:6443
  name: staging
contexts:
- context:
    cluster: prod
    user: admin
  name: prod
- context:
    cluster: staging
    user: admin
  name: staging
current-context: prod
users:
- name: admin
  user:
    token: abc123
`

func writeKubeconfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kubeconfig")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestResolveKubeconfig(t *testing.T) {
	t.Setenv("KUBECONFIG", "/from/env")
	assert.Equal(t, "/explicit", resolveKubeconfig("/explicit"))
	assert.Equal(t, "/from/env", resolveKubeconfig(""))
}

func TestBuildRestConfig_CurrentContext(t *testing.T) {
	path := writeKubeconfig(t, testKubeconfig)

	config, err := BuildRestConfig(Options{Kubeconfig: path, UserAgent: "cvctl/test", QPS: 7, Burst: 9})
	require.NoError(t, err)

	assert.Equal(t, "https://prod.example.com:6443", config.Host)
	assert.Equal(t, "cvctl/test", config.UserAgent)
	assert.InDelta(t, 7, config.QPS, 0.001)
	assert.Equal(t, 9, config.Burst)
}

func TestBuildRestConfig_ContextOverride(t *testing.T) {
	path := writeKubeconfig(t, testKubeconfig)

	config, err := BuildRestConfig(Options{Kubeconfig: path, Context: "staging"})
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com:6443", config.Host)
}

func TestBuildKubeClient_Errors(t *testing.T) {
	tests := []struct {
		name          string
		kubeconfig    string
		errorContains string
	}{
		{
			name:          "explicit invalid path",
			kubeconfig:    "/nonexistent/path/to/kubeconfig",
			errorContains: "failed to build kube config",
		},
		{
			name:          "invalid content",
			kubeconfig:    "invalid",
			errorContains: "failed to build kube config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.kubeconfig
			if path == "invalid" {
				path = writeKubeconfig(t, "invalid yaml content")
			}

			_, _, err := BuildKubeClient(Options{Kubeconfig: path})
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.errorContains), "got %v", err)
		})
	}
}

func TestBuildKubeClient_Success(t *testing.T) {
	path := writeKubeconfig(t, testKubeconfig)

	clientset, config, err := BuildKubeClient(Options{Kubeconfig: path})
	require.NoError(t, err)
	assert.NotNil(t, clientset)
	assert.NotNil(t, config)
}
