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

package client

import (
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

var (
	client    *kubernetes.Clientset
	config    *rest.Config
	namespace string
)

func getClientConfig() clientcmd.ClientConfig {
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		clientcmd.NewDefaultClientConfigLoadingRules(),
		&clientcmd.ConfigOverrides{ClusterInfo: clientcmdapi.Cluster{Server: ""}})
}

// Get returns a kubernetes client for the active context of the local
// configuration. It will detect if KUBECONFIG is defined.
func Get() (*kubernetes.Clientset, *rest.Config, string, error) {
	if client == nil {
		var err error

		clientConfig := getClientConfig()

		namespace, _, err = clientConfig.Namespace()
		if err != nil {
			return nil, nil, "", err
		}

		config, err = clientConfig.ClientConfig()
		if err != nil {
			return nil, nil, "", err
		}

		client, err = kubernetes.NewForConfig(config)
		if err != nil {
			return nil, nil, "", err
		}
	}
	return client, config, namespace, nil
}

// GetContext returns the name of the active context of the local configuration
func GetContext() (string, error) {
	c, err := getClientConfig().RawConfig()
	if err != nil {
		return "", err
	}
	return c.CurrentContext, nil
}
