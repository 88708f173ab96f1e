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

// Package tunnel spawns the external process that routes the discovered
// ranges into the cluster and waits for it to come up. The tunnel itself is
// opaque; readiness is observed through local DNS starting to answer.
package tunnel

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"runtime"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/kubetunnel/kubetunnel/pkg/errors"
	"github.com/kubetunnel/kubetunnel/pkg/log"
)

const (
	tunnelBinary = "sshuttle"

	// dnsForwardTarget is the DNS proxy listening on the remote pod
	dnsForwardTarget = "127.0.0.1:9053"

	probeAttempts  = 25
	probeInterval  = 100 * time.Millisecond
	probeCountdown = 3
)

// Probe resolves a hostname on the local system.
type Probe interface {
	LookupHost(name string) error
}

type systemProbe struct{}

func (systemProbe) LookupHost(name string) error {
	_, err := net.LookupHost(name)
	return err
}

// Session is a tunnel process and the routes it serves. The process outlives
// the session setup; only spawn and the readiness probe are managed here.
type Session struct {
	User   string
	Port   int
	Routes []string

	binary   string
	probe    Probe
	interval time.Duration
	cmd      *exec.Cmd
}

// New returns a session that tunnels the given routes over the
// pre-authenticated ssh endpoint at 127.0.0.1:port.
func New(user string, port int, routes []string) *Session {
	return &Session{
		User:     user,
		Port:     port,
		Routes:   routes,
		binary:   tunnelBinary,
		probe:    systemProbe{},
		interval: probeInterval,
	}
}

// Start spawns the tunnel process. It is detached from the current session so
// that its interactive privilege escalation isn't tied to our lifecycle.
func (s *Session) Start() error {
	method := "auto"
	if runtime.GOOS == "linux" {
		// tproxy mode has issues on linux
		method = "nat"
	}

	args := []string{
		"-v",
		"--dns",
		"--method", method,
		"-e", "ssh -oStrictHostKeyChecking=no -oUserKnownHostsFile=/dev/null -F /dev/null",
		"--to-ns", dnsForwardTarget,
		"-r", fmt.Sprintf("%s@127.0.0.1:%d", s.User, s.Port),
	}
	args = append(args, s.Routes...)

	cmd := exec.Command(s.binary, args...)
	cmd.Stdout = log.FileWriter()
	cmd.Stderr = log.FileWriter()
	detach(cmd)

	log.Infof("launching the tunnel: %s %s", s.binary, shellquote.Join(args...))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start the tunnel process: %w", err)
	}
	s.cmd = cmd
	return nil
}

// WaitUntilReady polls local DNS until the tunnel answers or the probe window
// closes. It needs probeCountdown successful resolutions so a single spurious
// answer from a stale cache doesn't declare the tunnel live.
func (s *Session) WaitUntilReady(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	countdown := probeCountdown
	for i := 0; i < probeAttempts; i++ {
		// a fresh single-label name per attempt defeats OS-level
		// caching of negative answers
		name := fmt.Sprintf("hellokubetunnel-%d", i)
		log.Debugf("waiting for the tunnel connection: %s", name)
		if err := s.probe.LookupHost(name); err == nil {
			countdown--
			log.Debugf("resolved %s, %d more", name, countdown)
			if countdown == 0 {
				return nil
			}
		}

		// some resolvers never answer single-label names; this one is
		// unresolvable but shows up in the DNS proxy logs for
		// troubleshooting and never affects the outcome
		_ = s.probe.LookupHost(fmt.Sprintf("%s.a.sanity.check.kubetunnel.io", name))

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return errors.ErrTunnelTimeout
}
