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

package main

import (
	"fmt"
	"os"

	"github.com/kubetunnel/kubetunnel/cmd"
	"github.com/kubetunnel/kubetunnel/pkg/config"
	"github.com/kubetunnel/kubetunnel/pkg/errors"
	"github.com/kubetunnel/kubetunnel/pkg/log"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/util/runtime"
)

func init() {
	// override client-go error handlers to downgrade the "logging before flag.Parse" error
	runtime.ErrorHandlers = []func(error){
		func(err error) {
			log.Debugf("unhandled error: %s", err)
		},
	}
}

func main() {
	log.Init(logrus.WarnLevel)
	var logLevel string

	root := &cobra.Command{
		Use:           fmt.Sprintf("%s COMMAND [ARG...]", config.GetBinaryName()),
		Short:         "Transparent network access into a remote cluster",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(ccmd *cobra.Command, args []string) {
			log.SetLevel(logLevel)
			ccmd.SilenceUsage = true
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "loglevel", "warn", "amount of information output (debug, info, warn, error)")

	root.AddCommand(
		cmd.Connect(),
		cmd.Version(),
	)

	if err := root.Execute(); err != nil {
		log.Fail(err.Error())
		if uErr, ok := err.(errors.UserError); ok && uErr.Hint != "" {
			log.Hint("💡 %s", uErr.Hint)
		}
		os.Exit(1)
	}
}
