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
	"testing"

	"github.com/stretchr/testify/assert"
	apiv1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

func node(name, podCIDR string) *apiv1.Node {
	return &apiv1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Spec:       apiv1.NodeSpec{PodCIDR: podCIDR},
	}
}

func pod(name, namespace, podIP string) *apiv1.Pod {
	return &apiv1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Status:     apiv1.PodStatus{PodIP: podIP},
	}
}

func TestPodCIDRsFromNodes(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		node("node-1", "10.1.0.0/24"),
		node("node-2", "10.1.1.0/24"),
		node("node-3", "10.1.0.0/24"),
		node("node-4", ""),
	)

	cidrs := PodCIDRs(context.Background(), "test", clientset)

	assert.Equal(t, []string{"10.1.0.0/24", "10.1.1.0/24"}, cidrs)
}

func TestPodCIDRsFallsBackToPodIPs(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		pod("api", "test", "10.1.1.5"),
		pod("db", "test", "10.1.2.7"),
		pod("pending", "test", ""),
	)
	clientset.PrependReactor("list", "nodes", func(action k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, fmt.Errorf("nodes is forbidden")
	})

	cidrs := PodCIDRs(context.Background(), "test", clientset)

	assert.Equal(t, []string{"10.1.0.0/22"}, cidrs)
}

func TestPodCIDRsNoData(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	clientset.PrependReactor("list", "nodes", func(action k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, fmt.Errorf("nodes is forbidden")
	})

	assert.Empty(t, PodCIDRs(context.Background(), "test", clientset))
}

func TestPodCIDRsPodListFails(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	clientset.PrependReactor("list", "nodes", func(action k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, fmt.Errorf("nodes is forbidden")
	})
	clientset.PrependReactor("list", "pods", func(action k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, fmt.Errorf("pods is forbidden")
	})

	assert.Empty(t, PodCIDRs(context.Background(), "test", clientset))
}
