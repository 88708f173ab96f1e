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
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kubetunnel/kubetunnel/pkg/cidr"
	"github.com/kubetunnel/kubetunnel/pkg/config"
	"github.com/kubetunnel/kubetunnel/pkg/k8s/services"
	"github.com/kubetunnel/kubetunnel/pkg/log"
	"k8s.io/client-go/kubernetes"
)

// minServiceSamples is how many cluster IPs the heuristic wants before
// guessing the service range.
const minServiceSamples = 8

const headlessClusterIP = "None"

// ServiceCIDR infers the cluster's service range by sampling live cluster IPs.
// There is no API to query the range directly, so the guess assumes allocation
// is roughly dense; services created later may fall outside the returned
// block. If fewer than minServiceSamples services exist, disposable probe
// services are created to widen the sample and deleted before returning.
func ServiceCIDR(ctx context.Context, namespace string, c kubernetes.Interface, chatty bool) (string, error) {
	clusterIPs, err := serviceIPs(ctx, namespace, c)
	if err != nil {
		return "", err
	}

	probes := []string{}
	defer func() {
		// cleanup must run even when the covering computation fails,
		// probe services would otherwise leak on the cluster
		for _, name := range probes {
			if err := services.Destroy(ctx, namespace, name, c); err != nil {
				log.Infof("failed to delete probe service %s: %s", name, err)
			}
		}
	}()

	for len(clusterIPs)+len(probes) < minServiceSamples {
		name := probeName()
		if err := services.Create(ctx, services.TranslateProbe(name, namespace), c); err != nil {
			return "", fmt.Errorf("failed to create probe service %s: %w", name, err)
		}
		probes = append(probes, name)
	}
	if len(probes) > 0 {
		clusterIPs, err = serviceIPs(ctx, namespace, c)
		if err != nil {
			return "", err
		}
	}

	serviceCIDR, err := cidr.Cover(clusterIPs)
	if err != nil {
		return "", err
	}

	if chatty {
		log.Information("Guessing that the service IP range is %s. Services started after this point will be inaccessible if they are outside this range; restart %s if you can't access a new service.", serviceCIDR, config.GetBinaryName())
	}
	return serviceCIDR, nil
}

func serviceIPs(ctx context.Context, namespace string, c kubernetes.Interface) ([]string, error) {
	svcItems, err := services.List(ctx, namespace, c)
	if err != nil {
		return nil, err
	}

	ips := []string{}
	for _, svc := range svcItems {
		// headless services carry the "None" sentinel instead of an IP
		if svc.Spec.ClusterIP == "" || svc.Spec.ClusterIP == headlessClusterIP {
			continue
		}
		ips = append(ips, svc.Spec.ClusterIP)
	}
	return ips, nil
}

func probeName() string {
	return fmt.Sprintf("kubetunnel-probe-%s", strings.Split(uuid.NewString(), "-")[0])
}
