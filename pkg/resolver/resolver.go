// Copyright 2023 The Kubetunnel Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package resolver resolves hostnames inside the cluster so that cloud-local
// addresses are routed through the tunnel instead of their public ones.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"

	"github.com/kubetunnel/kubetunnel/pkg/cache"
	"github.com/kubetunnel/kubetunnel/pkg/errors"
	"github.com/kubetunnel/kubetunnel/pkg/log"
	"github.com/kubetunnel/kubetunnel/pkg/model"
)

// Executor runs a command inside a cluster container and returns its stdout.
type Executor interface {
	Run(ctx context.Context, remote *model.RemoteInfo, command []string) (string, error)
}

// resolveScript resolves each argument with the cluster's DNS and prints the
// results to stdout as a JSON array, one entry per argument, in argument order.
const resolveScript = `
import socket, sys, json

result = []
for host in sys.argv[1:]:
    result.append(socket.gethostbyname(host))
sys.stdout.write(json.dumps(result))
sys.stdout.flush()
`

// Resolve classifies targets into IP/CIDR literals, which pass through
// unchanged, and hostnames, which are resolved inside the remote container.
// Resolved addresses are cached in ipCache per hostname; remote resolution is
// all-or-nothing, a single failing hostname fails the whole call.
func Resolve(ctx context.Context, executor Executor, remote *model.RemoteInfo, ipCache *cache.Bucket, targets []string) ([]string, error) {
	hostnames := []string{}
	ipRanges := []string{}

	for _, target := range targets {
		if isIPOrCIDR(target) {
			ipRanges = append(ipRanges, target)
			continue
		}
		if ip, ok := ipCache.GetString(target); ok {
			ipRanges = append(ipRanges, ip)
			continue
		}
		hostnames = append(hostnames, target)
	}

	resolved := []string{}
	if len(hostnames) > 0 {
		command := append([]string{"python3", "-c", resolveScript}, hostnames...)
		out, err := executor.Run(ctx, remote, command)
		if err != nil {
			log.Infof("in-cluster resolution of %s failed: %s", strings.Join(hostnames, ", "), err)
			return nil, errors.UserError{
				E:    fmt.Errorf("failed to do a DNS lookup inside the cluster for the hostname(s) you listed (%s)", strings.Join(targets, ", ")),
				Hint: "Maybe you mistyped one of them?",
			}
		}
		if err := json.Unmarshal([]byte(out), &resolved); err != nil {
			return nil, fmt.Errorf("malformed response from the in-cluster resolver: %w", err)
		}
		for i, host := range hostnames {
			if i < len(resolved) {
				ipCache.SetString(host, resolved[i])
			}
		}
	}

	return append(resolved, ipRanges...), nil
}

func isIPOrCIDR(s string) bool {
	if _, _, err := net.ParseCIDR(s); err == nil {
		return true
	}
	return net.ParseIP(s) != nil
}
