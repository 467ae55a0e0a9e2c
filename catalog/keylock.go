// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package catalog

import (
	"sort"
	"sync"
)

// a set of named mutexes, created on demand and removed when unused
type keyLock struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu    sync.Mutex
	users int
}

func newKeyLock() *keyLock {
	return &keyLock{
		entries: make(map[string]*lockEntry),
	}
}

// Lock - acquire all names in sorted order and return the release function
func (k *keyLock) Lock(names ...string) func() {
	sorted := append([]string{}, names...)
	sort.Strings(sorted)

	held := make([]string, 0, len(sorted))
	for i, name := range sorted {
		if i > 0 && name == sorted[i-1] {
			continue
		}
		k.acquire(name)
		held = append(held, name)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i -= 1 {
			k.release(held[i])
		}
	}
}

func (k *keyLock) acquire(name string) {
	k.mu.Lock()
	e, ok := k.entries[name]
	if !ok {
		e = &lockEntry{}
		k.entries[name] = e
	}
	e.users += 1
	k.mu.Unlock()

	e.mu.Lock()
}

func (k *keyLock) release(name string) {
	k.mu.Lock()
	e := k.entries[name]
	e.users -= 1
	if 0 == e.users {
		delete(k.entries, name)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}

// number of names currently held or waited for
func (k *keyLock) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
