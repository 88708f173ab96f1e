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
	"fmt"

	"github.com/kubetunnel/kubetunnel/pkg/config"
	"github.com/spf13/cobra"
)

// Version returns information about the binary
func Version() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "View the version of the kubetunnel binary",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("%s version %s\n", config.GetBinaryName(), config.VersionString)
			return nil
		},
	}
}
