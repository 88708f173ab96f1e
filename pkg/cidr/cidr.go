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

// Package cidr computes covering networks for sets of IPv4 addresses.
// Every input is widened to its /24 before collapsing, so the result is a
// best-effort approximation that may include address space that was never
// observed.
package cidr

import (
	"fmt"
	"net"
	"sort"

	"github.com/kubetunnel/kubetunnel/pkg/errors"
)

// minPrefix is the widest granularity assumed per address.
const minPrefix = 24

type ipNet struct {
	base uint32
	ones int
}

func (n ipNet) size() uint64 {
	return uint64(1) << uint(32-n.ones)
}

func (n ipNet) contains(o ipNet) bool {
	return o.ones >= n.ones && o.base >= n.base && uint64(o.base)+o.size() <= uint64(n.base)+n.size()
}

func (n ipNet) supernet() ipNet {
	if n.ones == 0 {
		return n
	}
	parent := ipNet{ones: n.ones - 1}
	parent.base = n.base &^ uint32(parent.size()-1)
	return parent
}

func (n ipNet) String() string {
	return fmt.Sprintf("%d.%d.%d.%d/%d", byte(n.base>>24), byte(n.base>>16), byte(n.base>>8), byte(n.base), n.ones)
}

func parseIPv4(s string) (uint32, error) {
	ip := net.ParseIP(s)
	if ip != nil {
		ip = ip.To4()
	}
	if ip == nil {
		return 0, fmt.Errorf("'%s' is not a valid IPv4 address", s)
	}
	return uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3]), nil
}

func networkOf(addr uint32, ones int) ipNet {
	n := ipNet{ones: ones}
	n.base = addr &^ uint32(n.size()-1)
	return n
}

// collapse merges duplicate, contained and sibling blocks until no two blocks
// can be combined, returning the remainder in ascending address order.
func collapse(nets []ipNet) []ipNet {
	for {
		sort.Slice(nets, func(i, j int) bool {
			if nets[i].base != nets[j].base {
				return nets[i].base < nets[j].base
			}
			return nets[i].ones < nets[j].ones
		})

		out := make([]ipNet, 0, len(nets))
		for _, n := range nets {
			if len(out) == 0 {
				out = append(out, n)
				continue
			}
			last := out[len(out)-1]
			if last.contains(n) {
				continue
			}
			if last.ones == n.ones && last.supernet() == n.supernet() {
				out[len(out)-1] = last.supernet()
				continue
			}
			out = append(out, n)
		}

		if len(out) == len(nets) {
			return out
		}
		nets = out
	}
}

// Cover returns the smallest network block, at /24 granularity, that contains
// every address in ips.
func Cover(ips []string) (string, error) {
	if len(ips) == 0 {
		return "", errors.ErrEmptyAddressSet
	}

	nets := make([]ipNet, 0, len(ips))
	for _, ip := range ips {
		addr, err := parseIPv4(ip)
		if err != nil {
			return "", err
		}
		nets = append(nets, networkOf(addr, minPrefix))
	}

	// Increase network size until a single block covers everything
	nets = collapse(nets)
	for len(nets) > 1 {
		nets[0] = nets[0].supernet()
		nets = collapse(nets)
	}

	return nets[0].String(), nil
}
