// Package cli implements the cvctl command-line interface.
//
// # Overview
//
// cvctl checks that a Kubernetes cluster is ready to accept workloads. Running it
// without a subcommand runs validation against the current kubeconfig context.
//
// # Commands
//
// validate - Run the readiness checks (default):
//
//	cvctl [validate] [--context NAME] [--format table|json|yaml] [--output FILE]
//
// The steps run in order: api-server, server-version (only with
// --min-kube-version), nodes, namespaces, core-services, dns, etcd and
// kubelet-logs. A failing step ends the attempt. Retryable failures restart
// the whole list after the configured backoff.
//
// version - Print build information:
//
//	cvctl version
//
// # Retry Flags
//
//	--max-attempts     full runs before giving up (default 3)
//	--retry-delay      base delay between runs (default 10s)
//	--backoff          fixed or exponential (default fixed)
//	--max-retry-delay  cap for exponential growth (default 2m)
//
// # Environment Variables
//
// Every flag can also be set with a CVCTL_ prefixed variable, for example
// CVCTL_MAX_ATTEMPTS=5 or CVCTL_FORMAT=json. LOG_LEVEL is consulted when
// neither --log-level nor --debug is given.
//
// # Exit Status
//
//	0  the cluster passed
//	1  validation failed, or the command could not run
//
// Cancelling with SIGINT or SIGTERM stops at the next step boundary, deletes
// any probe pods and still writes the report.
package cli
