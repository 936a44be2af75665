package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/cluster-validator/pkg/defaults"
	"github.com/NVIDIA/cluster-validator/pkg/pipeline"
	"github.com/NVIDIA/cluster-validator/pkg/serializer"
)

// runFlags parses args against the validate flags and returns the resolved options.
func runFlags(t *testing.T, args ...string) (*runOptions, error) {
	t.Helper()
	var (
		opts     *runOptions
		parseErr error
	)
	cmd := &cli.Command{
		Name:  "test",
		Flags: validateFlags(),
		Action: func(_ context.Context, c *cli.Command) error {
			opts, parseErr = parseRunOptions(c)
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
	return opts, parseErr
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		wantFormat serializer.Format
		wantErr    bool
	}{
		{name: "yaml", format: "yaml", wantFormat: serializer.FormatYAML},
		{name: "json", format: "json", wantFormat: serializer.FormatJSON},
		{name: "table", format: "table", wantFormat: serializer.FormatTable},
		{name: "upper case", format: "JSON", wantFormat: serializer.FormatJSON},
		{name: "xml", format: "xml", wantErr: true},
		{name: "empty", format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: tt.format},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					got, err := parseOutputFormat(c)
					if tt.wantErr {
						assert.Error(t, err)
						return nil
					}
					assert.NoError(t, err)
					assert.Equal(t, tt.wantFormat, got)
					return nil
				},
			}
			require.NoError(t, cmd.Run(context.Background(), []string{"test"}))
		})
	}
}

func TestParseRunOptions_Defaults(t *testing.T) {
	opts, err := runFlags(t)
	require.NoError(t, err)

	assert.Equal(t, pipeline.DefaultConfig(), opts.Pipeline)
	assert.Equal(t, serializer.FormatTable, opts.Format)
	assert.Empty(t, opts.Output)
	assert.Empty(t, opts.Skip)

	assert.Empty(t, opts.Checks.MinVersion)
	assert.Equal(t, defaults.DNSTarget, opts.Checks.DNSTarget)
	assert.Equal(t, defaults.ProbeNamespace, opts.Checks.DNS.Namespace)
	assert.Equal(t, defaults.ProbeImage, opts.Checks.DNS.Image)
	assert.Equal(t, defaults.K8sPodReadyTimeout, opts.Checks.DNS.ReadyTimeout)
	assert.Equal(t, defaults.K8sQueryTimeout, opts.Checks.QueryTimeout)
	assert.NotNil(t, opts.Checks.Units)
	assert.Len(t, opts.Checks.PodOptions, 2)
	assert.True(t, strings.HasPrefix(opts.Client.UserAgent, name+"/"))
	assert.InDelta(t, defaults.ExecutorQPS, opts.Client.QPS, 0.001)
	assert.Equal(t, defaults.ExecutorBurst, opts.Client.Burst)
}

func TestParseRunOptions_Overrides(t *testing.T) {
	opts, err := runFlags(t,
		"--kubeconfig", "/tmp/kc",
		"--context", "prod",
		"--max-attempts", "5",
		"--retry-delay", "2s",
		"--backoff", "exponential",
		"--max-retry-delay", "30s",
		"--dns-target", "kubernetes.default.svc.cluster.local",
		"--probe-namespace", "validation",
		"--probe-image", "registry.local/busybox:1.36",
		"--probe-timeout", "90s",
		"--min-kube-version", "v1.28",
		"--skip", "etcd,kubelet-logs",
		"--skip", "core-services",
		"--output", "report.yaml",
		"--format", "yaml",
	)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/kc", opts.Client.Kubeconfig)
	assert.Equal(t, "prod", opts.Client.Context)
	assert.Equal(t, pipeline.Config{
		MaxAttempts: 5,
		Backoff: pipeline.Backoff{
			Kind: pipeline.BackoffExponential,
			Base: 2 * time.Second,
			Max:  30 * time.Second,
		},
	}, opts.Pipeline)
	assert.Equal(t, "kubernetes.default.svc.cluster.local", opts.Checks.DNSTarget)
	assert.Equal(t, "validation", opts.Checks.DNS.Namespace)
	assert.Equal(t, "registry.local/busybox:1.36", opts.Checks.DNS.Image)
	assert.Equal(t, 90*time.Second, opts.Checks.DNS.ReadyTimeout)
	assert.Equal(t, "v1.28", opts.Checks.MinVersion)
	assert.Equal(t, []string{"etcd", "kubelet-logs", "core-services"}, opts.Skip)
	assert.Equal(t, "report.yaml", opts.Output)
	assert.Equal(t, serializer.FormatYAML, opts.Format)
}

func TestParseRunOptions_EnvOverrides(t *testing.T) {
	t.Setenv("CVCTL_MAX_ATTEMPTS", "7")
	t.Setenv("CVCTL_BACKOFF", "exponential")
	t.Setenv("CVCTL_FORMAT", "json")

	opts, err := runFlags(t)
	require.NoError(t, err)
	assert.Equal(t, 7, opts.Pipeline.MaxAttempts)
	assert.Equal(t, pipeline.BackoffExponential, opts.Pipeline.Backoff.Kind)
	assert.Equal(t, serializer.FormatJSON, opts.Format)
}

func TestParseRunOptions_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{"unknown format", []string{"--format", "xml"}, "unknown output format"},
		{"zero attempts", []string{"--max-attempts", "0"}, "max attempts must be at least 1"},
		{"unknown backoff", []string{"--backoff", "linear"}, "unknown backoff"},
		{"negative delay", []string{"--retry-delay=-1s"}, "must not be negative"},
		{"bad min version", []string{"--min-kube-version", "latest"}, "invalid --min-kube-version"},
		{"empty dns target", []string{"--dns-target", " "}, "--dns-target must not be empty"},
		{"zero poll interval", []string{"--pod-poll-interval", "0s"}, "must be positive"},
		{"negative cleanup timeout", []string{"--cleanup-timeout=-1s"}, "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runFlags(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(nil))
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", "", " c ,"}))
}

func TestRunValidate_UnknownSkip(t *testing.T) {
	root := newRootCmd()
	err := root.Run(context.Background(), []string{name, "--skip", "no-such-step"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --skip")
	assert.Contains(t, err.Error(), "no-such-step")
}

func TestVersionCmd(t *testing.T) {
	var buf bytes.Buffer
	root := newRootCmd()
	root.Writer = &buf

	require.NoError(t, root.Run(context.Background(), []string{name, "version"}))
	assert.Contains(t, buf.String(), name+" "+version)
	assert.Contains(t, buf.String(), "commit "+commit)
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unset", nil, ""},
		{"explicit", []string{"--log-level", "warn"}, "warn"},
		{"debug wins", []string{"--log-level", "warn", "--debug"}, "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Name:  "test",
				Flags: loggingFlags(),
				Action: func(_ context.Context, c *cli.Command) error {
					assert.Equal(t, tt.want, logLevel(c))
					assert.True(t, c.Bool("log-json"))
					return nil
				},
			}
			require.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, tt.args...)))
		})
	}
}
