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

package cmd

import (
	"context"

	"github.com/kubetunnel/kubetunnel/pkg/cache"
	"github.com/kubetunnel/kubetunnel/pkg/config"
	"github.com/kubetunnel/kubetunnel/pkg/discovery"
	"github.com/kubetunnel/kubetunnel/pkg/errors"
	"github.com/kubetunnel/kubetunnel/pkg/k8s/client"
	k8sexec "github.com/kubetunnel/kubetunnel/pkg/k8s/exec"
	"github.com/kubetunnel/kubetunnel/pkg/log"
	"github.com/kubetunnel/kubetunnel/pkg/model"
	"github.com/kubetunnel/kubetunnel/pkg/tunnel"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Connect discovers the cluster's networks and brings up the tunnel
func Connect() *cobra.Command {
	var pod string
	var container string
	var sshUser string
	var sshPort int
	var alsoProxy []string
	var chatty bool

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Route the cluster's networks through the tunnel",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			c, restConfig, namespace, err := client.Get()
			if err != nil {
				return err
			}
			kubeContext, err := client.GetContext()
			if err != nil {
				return err
			}

			store := cache.Open(afero.NewOsFs(), config.GetCachePath())
			defer func() {
				if err := store.Save(); err != nil {
					log.Infof("failed to save the cache: %s", err)
				}
			}()

			d := &discovery.Discoverer{
				Client:    c,
				Executor:  &k8sexec.CommandExecutor{Client: c, Config: restConfig},
				Cache:     store.Child(kubeContext),
				Namespace: namespace,
				Chatty:    chatty,
			}
			remote := &model.RemoteInfo{
				Namespace:     namespace,
				PodName:       pod,
				ContainerName: container,
			}

			routes, err := d.ProxyCIDRs(ctx, remote, alsoProxy)
			if err != nil {
				return err
			}

			session := tunnel.New(sshUser, sshPort, routes)
			if err := session.Start(); err != nil {
				return err
			}
			if err := session.WaitUntilReady(ctx); err != nil {
				return errors.UserError{
					E:    err,
					Hint: "Check the connectivity to your cluster and try again",
				}
			}

			log.Success("tunnel is up, routing %d network(s)", len(routes))
			return nil
		},
	}

	cmd.Flags().StringVar(&pod, "pod", "", "remote pod where in-cluster commands run")
	cmd.Flags().StringVar(&container, "container", "", "remote container where in-cluster commands run")
	cmd.Flags().StringVar(&sshUser, "ssh-user", "kubetunnel", "user of the local ssh endpoint the tunnel rides on")
	cmd.Flags().IntVar(&sshPort, "ssh-port", 0, "port of the local ssh endpoint the tunnel rides on")
	cmd.Flags().StringSliceVar(&alsoProxy, "also-proxy", nil, "extra hosts or IP ranges to route through the tunnel")
	cmd.Flags().BoolVar(&chatty, "chatty", true, "print advisory messages")
	if err := cmd.MarkFlagRequired("pod"); err != nil {
		log.Infof("failed to mark --pod as required: %s", err)
	}
	if err := cmd.MarkFlagRequired("ssh-port"); err != nil {
		log.Infof("failed to mark --ssh-port as required: %s", err)
	}

	return cmd
}
