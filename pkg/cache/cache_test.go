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

package cache

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupComputesOnce(t *testing.T) {
	store := Open(afero.NewMemMapFs(), "/cache.json")
	bucket := store.Child("minikube")

	calls := 0
	compute := func() ([]string, error) {
		calls++
		return []string{"10.1.0.0/16"}, nil
	}

	first, err := Lookup(bucket, "podCIDRs", compute)
	require.NoError(t, err)
	second, err := Lookup(bucket, "podCIDRs", compute)
	require.NoError(t, err)

	assert.Equal(t, []string{"10.1.0.0/16"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestLookupDoesNotCacheErrors(t *testing.T) {
	store := Open(afero.NewMemMapFs(), "/cache.json")
	bucket := store.Child("minikube")

	calls := 0
	_, err := Lookup(bucket, "serviceCIDR", func() (string, error) {
		calls++
		return "", fmt.Errorf("boom")
	})
	require.Error(t, err)

	value, err := Lookup(bucket, "serviceCIDR", func() (string, error) {
		calls++
		return "10.96.0.0/12", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "10.96.0.0/12", value)
	assert.Equal(t, 2, calls)
}

func TestPersistence(t *testing.T) {
	fs := afero.NewMemMapFs()

	store := Open(fs, "/home/.kubetunnel/cache.json")
	bucket := store.Child("minikube")
	_, err := Lookup(bucket, "podCIDRs", func() ([]string, error) {
		return []string{"10.1.0.0/16", "10.2.0.0/16"}, nil
	})
	require.NoError(t, err)
	bucket.Child("ips").SetString("db.internal", "10.1.2.9")
	require.NoError(t, store.Save())

	reloaded := Open(fs, "/home/.kubetunnel/cache.json")
	rbucket := reloaded.Child("minikube")

	cidrs, err := Lookup(rbucket, "podCIDRs", func() ([]string, error) {
		t.Fatal("compute should not run for a cached entry")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"10.1.0.0/16", "10.2.0.0/16"}, cidrs)

	ip, ok := rbucket.Child("ips").GetString("db.internal")
	assert.True(t, ok)
	assert.Equal(t, "10.1.2.9", ip)
}

func TestChildIsolation(t *testing.T) {
	store := Open(afero.NewMemMapFs(), "/cache.json")

	store.Child("ctx-a").SetString("key", "a")
	store.Child("ctx-b").SetString("key", "b")

	a, _ := store.Child("ctx-a").GetString("key")
	b, _ := store.Child("ctx-b").GetString("key")
	assert.Equal(t, "a", a)
	assert.Equal(t, "b", b)
}

func TestOpenCorruptCache(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cache.json", []byte("{not json"), 0600))

	store := Open(fs, "/cache.json")
	store.Child("minikube").SetString("key", "value")
	require.NoError(t, store.Save())
}

func TestSaveSkipsWhenClean(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	store := Open(fs, "/cache.json")
	// nothing changed, so the read-only filesystem is never written
	require.NoError(t, store.Save())
}
