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

package cidr

import (
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/kubetunnel/kubetunnel/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCover(t *testing.T) {
	tests := []struct {
		name     string
		ips      []string
		expected string
	}{
		{
			name:     "single address yields its /24",
			ips:      []string{"192.168.1.5"},
			expected: "192.168.1.0/24",
		},
		{
			name:     "same subnet",
			ips:      []string{"192.168.1.5", "192.168.1.200"},
			expected: "192.168.1.0/24",
		},
		{
			name:     "sibling subnets merge",
			ips:      []string{"10.0.0.1", "10.0.1.1"},
			expected: "10.0.0.0/23",
		},
		{
			name:     "spread subnets grow until covered",
			ips:      []string{"10.0.0.1", "10.0.4.1"},
			expected: "10.0.0.0/21",
		},
		{
			name:     "duplicates are ignored",
			ips:      []string{"10.0.0.1", "10.0.0.1", "10.0.0.200"},
			expected: "10.0.0.0/24",
		},
		{
			name:     "order does not matter",
			ips:      []string{"10.0.4.1", "10.0.0.1"},
			expected: "10.0.0.0/21",
		},
		{
			name:     "four adjacent subnets",
			ips:      []string{"10.0.0.1", "10.0.1.1", "10.0.2.1", "10.0.3.1"},
			expected: "10.0.0.0/22",
		},
		{
			name:     "distant ranges over-cover",
			ips:      []string{"10.0.0.1", "10.128.0.1"},
			expected: "10.0.0.0/8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Cover(tt.ips)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCoverContainsEveryInput(t *testing.T) {
	samples := [][]string{
		{"172.16.0.9"},
		{"10.1.1.5", "10.1.2.7", "10.1.3.200"},
		{"192.168.0.1", "192.168.255.254"},
		{"10.0.0.1", "10.64.3.2", "10.128.9.9"},
	}

	for _, ips := range samples {
		result, err := Cover(ips)
		require.NoError(t, err)

		_, network, err := net.ParseCIDR(result)
		require.NoError(t, err)

		ones, _ := network.Mask.Size()
		assert.LessOrEqual(t, ones, 24, "prefix of %s is narrower than /24", result)
		for _, ip := range ips {
			assert.True(t, network.Contains(net.ParseIP(ip)), "%s does not contain %s", result, ip)
		}
	}
}

func TestCoverEmptyInput(t *testing.T) {
	_, err := Cover(nil)
	assert.ErrorIs(t, err, errors.ErrEmptyAddressSet)
}

func TestCoverInvalidAddress(t *testing.T) {
	_, err := Cover([]string{"10.0.0.1", "not-an-ip"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-an-ip")

	_, err = Cover([]string{"fd00::1"})
	assert.Error(t, err)
}

func TestSupernetStopsAtZero(t *testing.T) {
	n := ipNet{base: 0, ones: 0}
	assert.Equal(t, n, n.supernet())
}

func TestNetString(t *testing.T) {
	n := networkOf(mustParse(t, "10.96.13.7"), 24)
	parts := strings.SplitN(n.String(), "/", 2)
	assert.Equal(t, "10.96.13.0", parts[0])
	ones, err := strconv.Atoi(parts[1])
	require.NoError(t, err)
	assert.Equal(t, 24, ones)
}

func mustParse(t *testing.T, s string) uint32 {
	t.Helper()
	addr, err := parseIPv4(s)
	require.NoError(t, err)
	return addr
}
