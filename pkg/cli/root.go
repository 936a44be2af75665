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
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/cluster-validator/pkg/logging"
)

const (
	name           = "cvctl"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Execute runs the root command with os.Args and exits non-zero when
// validation fails or the command cannot run.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Validate that a Kubernetes cluster is ready for workloads",
		Version:               version,
		EnableShellCompletion: true,
		Description: fmt.Sprintf(`cvctl - Kubernetes cluster validator

Version: %s
Commit:  %s
Built:   %s

Runs an ordered list of readiness checks (API server, nodes, namespaces,
core services, in-cluster DNS, etcd, kubelet logs) and retries the whole
list with backoff until it passes or the retry budget is spent.

Exit status is 0 when the cluster passed and 1 otherwise.`, version, commit, date),
		Flags:  append(loggingFlags(), validateFlags()...),
		Before: initLogger,
		Action: runValidate,
		Commands: []*cli.Command{
			validateCmd(),
			versionCmd(),
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log level (debug, info, warn, error), LOG_LEVEL is used when unset",
			Sources: cli.EnvVars("CVCTL_LOG_LEVEL"),
		},
		&cli.BoolFlag{
			Name:    "debug",
			Usage:   "shorthand for --log-level=debug",
			Sources: cli.EnvVars("CVCTL_DEBUG"),
		},
		&cli.BoolFlag{
			Name:    "log-json",
			Usage:   "emit JSON log records, set to false for text",
			Value:   true,
			Sources: cli.EnvVars("CVCTL_LOG_JSON"),
		},
	}
}

// logLevel resolves the effective level flag. An empty result defers to LOG_LEVEL.
func logLevel(cmd *cli.Command) string {
	if cmd.Bool("debug") {
		return "debug"
	}
	return cmd.String("log-level")
}

// initLogger configures slog after flags are parsed so overrides like
// --log-level take effect before any command executes.
func initLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level := logLevel(cmd)
	if cmd.Bool("log-json") {
		logging.SetDefaultStructuredLoggerWithLevel(name, version, level)
	} else {
		logging.SetDefaultTextLoggerWithLevel(name, version, level)
	}
	slog.Debug("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
		"logLevel", level)
	return ctx, nil
}

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintf(cmd.Root().Writer, "%s %s (commit %s, built %s)\n", name, version, commit, date)
			return err
		},
	}
}
