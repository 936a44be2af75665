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

package dns

import (
	"net/netip"
	"strings"
)

// NotFoundMarkers are substrings that mean the resolver rejected the name.
// Matching is case-insensitive.
var NotFoundMarkers = []string{
	"can't find",
	"can't resolve",
	"nxdomain",
	"bad address",
	"unknown host",
	"not found",
}

// Answer is the typed result of parsing one technique's output.
type Answer struct {
	Resolved  bool     `json:"resolved" yaml:"resolved"`
	Addresses []string `json:"addresses,omitempty" yaml:"addresses,omitempty"`
	Reason    string   `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Parser turns raw probe output into an Answer.
type Parser func(output string) Answer

// notFound returns the first line containing a not-found marker.
func notFound(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		lower := strings.ToLower(line)
		for _, m := range NotFoundMarkers {
			if strings.Contains(lower, m) {
				return strings.TrimSpace(line), true
			}
		}
	}
	return "", false
}

func decide(output string, addrs []string) Answer {
	if line, ok := notFound(output); ok {
		return Answer{Addresses: addrs, Reason: line}
	}
	if len(addrs) == 0 {
		return Answer{Reason: "no address in output: " + firstLine(output)}
	}
	return Answer{Resolved: true, Addresses: addrs}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "<empty>"
	}
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

// parseAddr accepts an IP with an optional port.
func parseAddr(s string) (string, bool) {
	s = strings.Trim(strings.TrimSpace(s), "(),")
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().String(), true
	}
	if a, err := netip.ParseAddr(s); err == nil {
		return a.String(), true
	}
	return "", false
}

// ParseNSLookup reads nslookup output. The server block is skipped: only
// Address lines following the first Name line count as answers.
//
//	Server:    10.96.0.10
//	Address:   10.96.0.10:53
//
//	Name:      kubernetes.default.svc.cluster.local
//	Address:   10.96.0.1
//
// Busybox queries A and AAAA separately and reports an empty AAAA set as
// "*** Can't find <name>: No answer". Those lines are ignored once an
// address was found.
func ParseNSLookup(output string) Answer {
	var addrs, kept []string
	inAnswer := false
	for _, raw := range strings.Split(output, "\n") {
		if !strings.Contains(strings.ToLower(raw), "no answer") {
			kept = append(kept, raw)
		}
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "Name:") {
			inAnswer = true
			continue
		}
		if !inAnswer || !strings.HasPrefix(line, "Address") {
			continue
		}
		_, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		// Older busybox prints "Address 1: 10.96.0.1 kubernetes.default..."
		for _, f := range strings.Fields(rest) {
			if a, ok := parseAddr(f); ok {
				addrs = append(addrs, a)
				break
			}
		}
	}
	if len(addrs) > 0 {
		output = strings.Join(kept, "\n")
	}
	return decide(output, addrs)
}

// parenAddress extracts the address in the first parenthesized group of a
// line that starts with prefix, e.g. "PING host (10.96.0.1): 56 data bytes".
func parenAddress(output, prefix string) []string {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if prefix != "" && !strings.HasPrefix(line, prefix) {
			continue
		}
		open := strings.IndexByte(line, '(')
		end := strings.IndexByte(line, ')')
		if open < 0 || end <= open {
			continue
		}
		if a, ok := parseAddr(line[open+1 : end]); ok {
			return []string{a}
		}
	}
	return nil
}

// ParseWget reads wget --spider output. Resolution shows up as
// "Connecting to host (10.96.0.1:80)" whatever the HTTP outcome, so HTTP
// status lines such as "404 Not Found" are not treated as resolver errors.
func ParseWget(output string) Answer {
	var kept []string
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "server returned error") {
			continue
		}
		kept = append(kept, line)
	}
	filtered := strings.Join(kept, "\n")
	return decide(filtered, parenAddress(filtered, "Connecting to"))
}

// ParsePing reads the ping banner. Service IPs rarely answer ICMP, so only
// the resolved address in "PING host (10.96.0.1): ..." is considered.
func ParsePing(output string) Answer {
	return decide(output, parenAddress(output, "PING"))
}

// ParseNC reads nc -v output, e.g. "kubernetes.default (10.96.0.1:443) open".
func ParseNC(output string) Answer {
	return decide(output, parenAddress(output, ""))
}
