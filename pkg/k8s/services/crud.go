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

package services

import (
	"context"

	apiv1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// List returns the list of services in the given namespace
func List(ctx context.Context, namespace string, c kubernetes.Interface) ([]apiv1.Service, error) {
	svcList, err := c.CoreV1().Services(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	return svcList.Items, nil
}

// Get returns a service by name
func Get(ctx context.Context, namespace, name string, c kubernetes.Interface) (*apiv1.Service, error) {
	return c.CoreV1().Services(namespace).Get(ctx, name, metav1.GetOptions{})
}

// Create deploys the given service
func Create(ctx context.Context, svc *apiv1.Service, c kubernetes.Interface) error {
	_, err := c.CoreV1().Services(svc.Namespace).Create(ctx, svc, metav1.CreateOptions{})
	return err
}

// Destroy removes the given service
func Destroy(ctx context.Context, namespace, name string, c kubernetes.Interface) error {
	return c.CoreV1().Services(namespace).Delete(ctx, name, metav1.DeleteOptions{})
}
