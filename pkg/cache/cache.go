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

// Package cache implements the JSON-backed key-value store that keeps
// per-cluster-context discovery results and resolved hostnames between
// sessions. Access is single-threaded: one session-setup flow owns the store.
package cache

import (
	"encoding/json"
	"path/filepath"

	"github.com/kubetunnel/kubetunnel/pkg/log"
	"github.com/spf13/afero"
)

// Store is a hierarchical key-value cache persisted as a single JSON file.
type Store struct {
	fs    afero.Fs
	path  string
	root  map[string]interface{}
	dirty bool
}

// Bucket is a scoped view into a Store.
type Bucket struct {
	store *Store
	data  map[string]interface{}
}

// Open loads the cache at path. A missing or unreadable file yields an empty
// cache; persistence is best effort.
func Open(fs afero.Fs, path string) *Store {
	s := &Store{
		fs:   fs,
		path: path,
		root: map[string]interface{}{},
	}

	b, err := afero.ReadFile(fs, path)
	if err != nil {
		log.Debugf("no cache at %s: %s", path, err)
		return s
	}
	if err := json.Unmarshal(b, &s.root); err != nil {
		log.Infof("discarding corrupt cache %s: %s", path, err)
		s.root = map[string]interface{}{}
	}
	return s
}

// Save writes the cache back to disk if it changed.
func (s *Store) Save() error {
	if !s.dirty {
		return nil
	}

	b, err := json.MarshalIndent(s.root, "", "  ")
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	if err := afero.WriteFile(s.fs, s.path, b, 0600); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Child returns the bucket stored under key at the top level, creating it if
// needed.
func (s *Store) Child(key string) *Bucket {
	return childOf(s, s.root, key)
}

// Child returns the nested bucket stored under key, creating it if needed.
func (b *Bucket) Child(key string) *Bucket {
	return childOf(b.store, b.data, key)
}

func childOf(s *Store, parent map[string]interface{}, key string) *Bucket {
	if m, ok := parent[key].(map[string]interface{}); ok {
		return &Bucket{store: s, data: m}
	}
	m := map[string]interface{}{}
	parent[key] = m
	s.dirty = true
	return &Bucket{store: s, data: m}
}

// GetString returns the string stored under key.
func (b *Bucket) GetString(key string) (string, bool) {
	v, ok := b.data[key].(string)
	return v, ok
}

// SetString stores value under key.
func (b *Bucket) SetString(key, value string) {
	b.data[key] = value
	b.store.dirty = true
}

// Lookup returns the value stored in b under key, calling compute to fill the
// entry the first time. Errors from compute are returned without caching
// anything. Values loaded from disk are normalized through JSON into T.
func Lookup[T any](b *Bucket, key string, compute func() (T, error)) (T, error) {
	var value T

	if cached, ok := b.data[key]; ok {
		raw, err := json.Marshal(cached)
		if err == nil {
			if err := json.Unmarshal(raw, &value); err == nil {
				return value, nil
			}
		}
		log.Infof("dropping unreadable cache entry '%s'", key)
		delete(b.data, key)
	}

	value, err := compute()
	if err != nil {
		return value, err
	}
	b.data[key] = value
	b.store.dirty = true
	return value, nil
}
