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

package errors

import (
	"errors"
	"strings"
)

// UserError is meant for errors displayed to the user. It can include a message and a hint
type UserError struct {
	E    error
	Hint string
}

// Error returns the error message
func (u UserError) Error() string {
	return u.E.Error()
}

func (u UserError) Unwrap() error {
	return u.E
}

var (
	// ErrEmptyAddressSet is raised when a covering network is requested for zero addresses
	ErrEmptyAddressSet = errors.New("can't compute a covering network for an empty address set")

	// ErrTunnelTimeout is raised when the tunnel doesn't answer DNS queries before the probe window closes
	ErrTunnelTimeout = errors.New("tunnel did not connect")

	// ErrNotFound is raised when an object is not found
	ErrNotFound = errors.New("not found")
)

// IsNotFound returns true if err is of the type not found
func IsNotFound(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "not found") || strings.Contains(err.Error(), "doesn't exist") || strings.Contains(err.Error(), "not-found"))
}
