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

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const kubetunnelFolderName = ".kubetunnel"

var fs = afero.NewOsFs()

// VersionString the version of the cli
var VersionString string

// GetBinaryName returns the name of the binary
func GetBinaryName() string {
	return filepath.Base(GetBinaryFullPath())
}

// GetBinaryFullPath returns the full path of the binary
func GetBinaryFullPath() string {
	return os.Args[0]
}

// GetKubetunnelHome returns the path of the kubetunnel folder, creating it if needed.
// It can be overridden with the KUBETUNNEL_FOLDER environment variable.
func GetKubetunnelHome() string {
	home := os.Getenv("KUBETUNNEL_FOLDER")
	if home == "" {
		home = filepath.Join(GetUserHomeDir(), kubetunnelFolderName)
	}

	if err := fs.MkdirAll(home, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create %s: %s\n", home, err)
		os.Exit(1)
	}

	return home
}

// GetUserHomeDir returns the home of the user
func GetUserHomeDir() string {
	if v, ok := os.LookupEnv("KUBETUNNEL_HOME"); ok {
		return v
	}

	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get the home directory: %s\n", err)
		os.Exit(1)
	}

	return home
}

// GetCachePath returns the path of the per-context discovery cache
func GetCachePath() string {
	return filepath.Join(GetKubetunnelHome(), "cache.json")
}

// GetLogFile returns the path of the log file
func GetLogFile() string {
	return filepath.Join(GetKubetunnelHome(), fmt.Sprintf("%s.log", GetBinaryName()))
}

// FileExists returns true if the file at path exists
func FileExists(path string) bool {
	ok, err := afero.Exists(fs, path)
	if err != nil {
		return false
	}
	return ok
}
