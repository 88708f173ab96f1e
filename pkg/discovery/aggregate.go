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

// Package discovery figures out which IP ranges of a cluster a session must
// route through the tunnel: the pod network, the service network and any
// hosts the user asked to proxy.
package discovery

import (
	"context"
	"sort"
	"time"

	"github.com/kubetunnel/kubetunnel/pkg/cache"
	"github.com/kubetunnel/kubetunnel/pkg/log"
	"github.com/kubetunnel/kubetunnel/pkg/model"
	"github.com/kubetunnel/kubetunnel/pkg/resolver"
	"k8s.io/client-go/kubernetes"
)

// Discoverer aggregates the routed ranges for one cluster context. The Cache
// bucket must be scoped to that context; pod and service discovery run at
// most once per context and are served from it afterwards.
type Discoverer struct {
	Client    kubernetes.Interface
	Executor  resolver.Executor
	Cache     *cache.Bucket
	Namespace string
	Chatty    bool
}

// ProxyCIDRs returns the union of the resolved user hosts, the pod ranges and
// the service range, without duplicates.
func (d *Discoverer) ProxyCIDRs(ctx context.Context, remote *model.RemoteInfo, hostsOrIPs []string) ([]string, error) {
	start := time.Now()

	result := map[string]bool{}

	resolved, err := resolver.Resolve(ctx, d.Executor, remote, d.Cache.Child("ips"), hostsOrIPs)
	if err != nil {
		return nil, err
	}
	for _, r := range resolved {
		result[r] = true
	}

	podCIDRs, err := cache.Lookup(d.Cache, "podCIDRs", func() ([]string, error) {
		return PodCIDRs(ctx, d.Namespace, d.Client), nil
	})
	if err != nil {
		return nil, err
	}
	for _, c := range podCIDRs {
		result[c] = true
	}

	serviceCIDR, err := cache.Lookup(d.Cache, "serviceCIDR", func() (string, error) {
		return ServiceCIDR(ctx, d.Namespace, d.Client, d.Chatty)
	})
	if err != nil {
		return nil, err
	}
	result[serviceCIDR] = true

	list := make([]string, 0, len(result))
	for c := range result {
		list = append(list, c)
	}
	sort.Strings(list)

	log.Debugf("aggregated %d proxied range(s) in %s", len(list), time.Since(start))
	return list, nil
}
