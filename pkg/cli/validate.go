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

package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
	utilversion "k8s.io/apimachinery/pkg/util/version"

	"github.com/NVIDIA/cluster-validator/pkg/check"
	"github.com/NVIDIA/cluster-validator/pkg/cluster"
	"github.com/NVIDIA/cluster-validator/pkg/defaults"
	"github.com/NVIDIA/cluster-validator/pkg/dns"
	"github.com/NVIDIA/cluster-validator/pkg/k8s/client"
	"github.com/NVIDIA/cluster-validator/pkg/k8s/ephemeral"
	"github.com/NVIDIA/cluster-validator/pkg/pipeline"
	"github.com/NVIDIA/cluster-validator/pkg/serializer"
)

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:                  "validate",
		EnableShellCompletion: true,
		Usage:                 "Run the cluster readiness checks (default command)",
		Description: fmt.Sprintf(`Run every readiness check in order, restarting the whole list after a
retryable failure until it passes or the attempt budget is spent.

# Steps

  %s

Use --skip to leave steps out. server-version only runs with --min-kube-version.

# Examples

Validate the current kubeconfig context:
  cvctl

Validate a named context, retrying five times with exponential backoff:
  cvctl validate --context prod --max-attempts 5 --backoff exponential

Write a YAML report to a file:
  cvctl validate --format yaml --output report.yaml

Skip the kubelet log scan on managed control planes:
  cvctl validate --skip kubelet-logs,etcd`, strings.Join(check.StepNames, "\n  ")),
		Action: runValidate,
	}
}

func validateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "kubeconfig",
			Aliases: []string{"k"},
			Usage:   "Path to kubeconfig file (overrides KUBECONFIG env and default ~/.kube/config)",
			Sources: cli.EnvVars("CVCTL_KUBECONFIG"),
		},
		&cli.StringFlag{
			Name:    "context",
			Usage:   "Kubeconfig context to use instead of the current one",
			Sources: cli.EnvVars("CVCTL_CONTEXT"),
		},
		&cli.IntFlag{
			Name:    "max-attempts",
			Usage:   "Number of full validation runs before giving up",
			Value:   defaults.MaxAttempts,
			Sources: cli.EnvVars("CVCTL_MAX_ATTEMPTS"),
		},
		&cli.DurationFlag{
			Name:    "retry-delay",
			Usage:   "Base delay between attempts",
			Value:   defaults.RetryDelay,
			Sources: cli.EnvVars("CVCTL_RETRY_DELAY"),
		},
		&cli.StringFlag{
			Name: "backoff",
			Usage: fmt.Sprintf("Delay growth between attempts (supported values: %s)",
				strings.Join(pipeline.SupportedBackoffKinds(), ", ")),
			Value:   defaults.BackoffKind,
			Sources: cli.EnvVars("CVCTL_BACKOFF"),
		},
		&cli.DurationFlag{
			Name:    "max-retry-delay",
			Usage:   "Upper bound for exponential backoff, 0 for none",
			Value:   defaults.MaxRetryDelay,
			Sources: cli.EnvVars("CVCTL_MAX_RETRY_DELAY"),
		},
		&cli.StringFlag{
			Name:    "dns-target",
			Usage:   "Service name the DNS step resolves from inside the cluster",
			Value:   defaults.DNSTarget,
			Sources: cli.EnvVars("CVCTL_DNS_TARGET"),
		},
		&cli.StringFlag{
			Name:    "probe-namespace",
			Usage:   "Namespace for ephemeral DNS probe pods",
			Value:   defaults.ProbeNamespace,
			Sources: cli.EnvVars("CVCTL_PROBE_NAMESPACE"),
		},
		&cli.StringFlag{
			Name:    "probe-image",
			Usage:   "Image for probe pods, must provide nslookup, wget, ping and nc",
			Value:   defaults.ProbeImage,
			Sources: cli.EnvVars("CVCTL_PROBE_IMAGE"),
		},
		&cli.DurationFlag{
			Name:    "probe-timeout",
			Usage:   "How long to wait for a probe pod to become ready",
			Value:   defaults.K8sPodReadyTimeout,
			Sources: cli.EnvVars("CVCTL_PROBE_TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:    "pod-poll-interval",
			Usage:   "Interval between status reads of lookup pods",
			Value:   defaults.K8sPodPollInterval,
			Sources: cli.EnvVars("CVCTL_POD_POLL_INTERVAL"),
		},
		&cli.DurationFlag{
			Name:    "cleanup-timeout",
			Usage:   "Upper bound for deleting each lookup pod",
			Value:   defaults.K8sCleanupTimeout,
			Sources: cli.EnvVars("CVCTL_CLEANUP_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:    "min-kube-version",
			Usage:   "Minimum server version (e.g. v1.28), enables the server-version step",
			Sources: cli.EnvVars("CVCTL_MIN_KUBE_VERSION"),
		},
		&cli.StringSliceFlag{
			Name:    "skip",
			Usage:   fmt.Sprintf("Steps to leave out (any of: %s)", strings.Join(check.StepNames, ", ")),
			Sources: cli.EnvVars("CVCTL_SKIP"),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Report file path, stdout when empty or -",
			Sources: cli.EnvVars("CVCTL_OUTPUT"),
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"t"},
			Usage: fmt.Sprintf("Report format (supported values: %s)",
				strings.Join(serializer.SupportedFormats(), ", ")),
			Value:   string(serializer.FormatTable),
			Sources: cli.EnvVars("CVCTL_FORMAT"),
		},
	}
}

// runOptions is everything a validation run needs, resolved from flags.
type runOptions struct {
	Client   client.Options
	Pipeline pipeline.Config
	Checks   check.Config
	Skip     []string
	Format   serializer.Format
	Output   string
}

func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(strings.ToLower(strings.TrimSpace(cmd.String("format"))))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format %q, supported: %s",
			cmd.String("format"), strings.Join(serializer.SupportedFormats(), ", "))
	}
	return f, nil
}

// splitList flattens repeated and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func parseRunOptions(cmd *cli.Command) (*runOptions, error) {
	format, err := parseOutputFormat(cmd)
	if err != nil {
		return nil, err
	}

	pcfg := pipeline.Config{
		MaxAttempts: cmd.Int("max-attempts"),
		Backoff: pipeline.Backoff{
			Kind: pipeline.BackoffKind(strings.ToLower(cmd.String("backoff"))),
			Base: cmd.Duration("retry-delay"),
			Max:  cmd.Duration("max-retry-delay"),
		},
	}
	if err := pcfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry configuration: %w", err)
	}

	minVersion := strings.TrimSpace(cmd.String("min-kube-version"))
	if minVersion != "" {
		if _, err := utilversion.ParseGeneric(minVersion); err != nil {
			return nil, fmt.Errorf("invalid --min-kube-version %q: %w", minVersion, err)
		}
	}

	dnsTarget := strings.TrimSpace(cmd.String("dns-target"))
	if dnsTarget == "" {
		return nil, stderrors.New("--dns-target must not be empty")
	}

	pollInterval, cleanupTimeout := cmd.Duration("pod-poll-interval"), cmd.Duration("cleanup-timeout")
	if pollInterval <= 0 || cleanupTimeout <= 0 {
		return nil, fmt.Errorf("--pod-poll-interval and --cleanup-timeout must be positive, got %s and %s",
			pollInterval, cleanupTimeout)
	}

	return &runOptions{
		Client: client.Options{
			Kubeconfig: cmd.String("kubeconfig"),
			Context:    cmd.String("context"),
			UserAgent:  fmt.Sprintf("%s/%s", name, version),
			QPS:        float32(defaults.ExecutorQPS),
			Burst:      defaults.ExecutorBurst,
		},
		Pipeline: pcfg,
		Checks: check.Config{
			MinVersion: minVersion,
			DNSTarget:  dnsTarget,
			DNS: dns.Config{
				Namespace:    cmd.String("probe-namespace"),
				Image:        cmd.String("probe-image"),
				ReadyTimeout: cmd.Duration("probe-timeout"),
			},
			PodOptions: []ephemeral.Option{
				ephemeral.WithPollInterval(pollInterval),
				ephemeral.WithCleanupTimeout(cleanupTimeout),
			},
			QueryTimeout:     defaults.K8sQueryTimeout,
			KubeletTailLines: defaults.KubeletLogTailLines,
			Units:            check.SystemdUnits{},
		},
		Skip:   splitList(cmd.StringSlice("skip")),
		Format: format,
		Output: cmd.String("output"),
	}, nil
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	opts, err := parseRunOptions(cmd)
	if err != nil {
		return err
	}

	steps, err := check.Filter(check.DefaultSteps(opts.Checks), opts.Skip)
	if err != nil {
		return fmt.Errorf("invalid --skip: %w", err)
	}

	clientset, restConfig, err := client.BuildKubeClient(opts.Client)
	if err != nil {
		return fmt.Errorf("failed to build kubernetes client: %w", err)
	}

	exec := cluster.NewKubeExecutor(clientset,
		cluster.WithRestConfig(restConfig),
		cluster.WithRateLimit(rate.Limit(defaults.ExecutorQPS), defaults.ExecutorBurst),
	)

	orch, err := pipeline.New(opts.Pipeline, exec, pipeline.WithVersion(version))
	if err != nil {
		return err
	}

	slog.Info("validation started",
		"steps", len(steps),
		"maxAttempts", opts.Pipeline.MaxAttempts,
		"backoff", opts.Pipeline.Backoff.Kind)

	report := orch.Run(ctx, steps)

	ser := serializer.NewFileWriterOrStdout(opts.Format, opts.Output)
	defer func() {
		if err := ser.Close(); err != nil {
			slog.Warn("failed to close serializer", "error", err)
		}
	}()

	if err := ser.Serialize(ctx, report); err != nil {
		return fmt.Errorf("failed to serialize validation report: %w", err)
	}

	slog.Info("validation completed",
		"status", report.Status,
		"phase", report.Phase,
		"attempts", len(report.Attempts),
		"passed", report.Summary.Passed,
		"failed", report.Summary.Failed,
		"skipped", report.Summary.Skipped,
		"warnings", report.Summary.Warnings)

	if !report.Passed() {
		return stderrors.New(report.Message)
	}
	return nil
}
