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

package discovery

import (
	"context"
	"sort"

	"github.com/kubetunnel/kubetunnel/pkg/cidr"
	"github.com/kubetunnel/kubetunnel/pkg/k8s/nodes"
	"github.com/kubetunnel/kubetunnel/pkg/k8s/pods"
	"github.com/kubetunnel/kubetunnel/pkg/log"
	"k8s.io/client-go/kubernetes"
)

// PodCIDRs returns the pod ranges declared on the cluster's nodes. If nodes
// can't be listed, typically for lack of RBAC, it falls back to a covering
// network over the observed pod IPs. No data at all is not an error.
func PodCIDRs(ctx context.Context, namespace string, c kubernetes.Interface) []string {
	nodeItems, err := nodes.List(ctx, c)
	if err != nil {
		log.Infof("failed to get nodes: %s", err)
		return podCIDRsFromPodIPs(ctx, namespace, c)
	}

	set := map[string]bool{}
	for _, node := range nodeItems {
		if node.Spec.PodCIDR != "" {
			set[node.Spec.PodCIDR] = true
		}
	}

	cidrs := make([]string, 0, len(set))
	for podCIDR := range set {
		cidrs = append(cidrs, podCIDR)
	}
	sort.Strings(cidrs)
	return cidrs
}

func podCIDRsFromPodIPs(ctx context.Context, namespace string, c kubernetes.Interface) []string {
	podItems, err := pods.List(ctx, namespace, c)
	if err != nil {
		log.Infof("failed to get pods: %s", err)
		return nil
	}

	podIPs := []string{}
	skipped := 0
	for _, pod := range podItems {
		// pods without an assigned IP happen on some distributions
		if pod.Status.PodIP == "" {
			skipped++
			continue
		}
		podIPs = append(podIPs, pod.Status.PodIP)
	}
	if skipped > 0 {
		log.Debugf("ignored %d pod(s) without an assigned IP", skipped)
	}
	if len(podIPs) == 0 {
		return nil
	}

	covering, err := cidr.Cover(podIPs)
	if err != nil {
		log.Infof("failed to compute a covering network for the pod IPs: %s", err)
		return nil
	}
	return []string{covering}
}
