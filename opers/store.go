// Copyright 2026 The Tailstream Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package opers

import (
	"sync"

	"github.com/tailstream-io/tailstream/common"
)

// StateStore holds serialized accumulator state keyed by encoded group key.
// A nil value from Get means no state exists for the key.
type StateStore interface {
	Get(key []byte) ([]byte, error)
	Put(key []byte, value []byte) error
}

// MemStateStore is an in process StateStore. It can be shared between
// operators so it takes a lock even though each operator is single threaded.
type MemStateStore struct {
	lock    sync.RWMutex
	entries map[string][]byte
}

func NewMemStateStore() *MemStateStore {
	return &MemStateStore{
		entries: map[string][]byte{},
	}
}

func (m *MemStateStore) Get(key []byte) ([]byte, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	value, ok := m.entries[common.ByteSliceToStringZeroCopy(key)]
	if !ok {
		return nil, nil
	}
	return value, nil
}

func (m *MemStateStore) Put(key []byte, value []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.entries[string(key)] = value
	return nil
}

func (m *MemStateStore) Size() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.entries)
}
