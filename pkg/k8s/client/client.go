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
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// Interface is an alias for kubernetes.Interface to allow easier mocking in tests.
// This enables using fake.NewClientset() which returns kubernetes.Interface.
type Interface = kubernetes.Interface

// Options tunes the client built by BuildKubeClient.
type Options struct {
	// Kubeconfig is the path to a kubeconfig file. Empty triggers discovery.
	Kubeconfig string

	// Context selects a kubeconfig context other than the current one.
	Context string

	// UserAgent is sent with every API request.
	UserAgent string

	// QPS and Burst configure client-side throttling in client-go.
	QPS   float32
	Burst int
}

// resolveKubeconfig applies the discovery order: explicit path, KUBECONFIG,
// ~/.kube/config when it exists. An empty result means in-cluster config.
func resolveKubeconfig(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	home := filepath.Join(homedir.HomeDir(), ".kube", "config")
	if _, err := os.Stat(home); err == nil {
		return home
	}
	return ""
}

// BuildRestConfig resolves the rest.Config for the given options.
func BuildRestConfig(opts Options) (*rest.Config, error) {
	kubeconfig := resolveKubeconfig(opts.Kubeconfig)

	var (
		config *rest.Config
		err    error
	)

	// Use InClusterConfig directly when no kubeconfig is available
	// This avoids the warning: "Neither --kubeconfig nor --master was specified"
	if kubeconfig == "" {
		if opts.Context != "" {
			return nil, fmt.Errorf("context %q requested but no kubeconfig found", opts.Context)
		}
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to get in-cluster config: %w", err)
		}
	} else {
		rules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfig}
		overrides := &clientcmd.ConfigOverrides{CurrentContext: opts.Context}
		config, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to build kube config from %s: %w", kubeconfig, err)
		}
	}

	if opts.UserAgent != "" {
		config.UserAgent = opts.UserAgent
	}
	if opts.QPS > 0 {
		config.QPS = opts.QPS
	}
	if opts.Burst > 0 {
		config.Burst = opts.Burst
	}

	return config, nil
}

// BuildKubeClient creates a Kubernetes client and returns it together with the
// rest.Config it was built from. The config is needed for exec streams.
//
// The client automatically discovers configuration from:
//   - Options.Kubeconfig
//   - KUBECONFIG environment variable
//   - ~/.kube/config (default location)
//   - In-cluster service account (when running as Kubernetes Pod)
func BuildKubeClient(opts Options) (Interface, *rest.Config, error) {
	config, err := BuildRestConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return clientset, config, nil
}
