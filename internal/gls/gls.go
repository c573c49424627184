/*
 * Copyright 2024 The Prodrule Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package gls provides a goroutine-local ambient slot, used by the engine
// package to give a firing rule's consequence access to the current
// EvaluationContext without threading it through Rule.Fire's signature.
//
// Go has no native thread-local storage. This package uses the same
// trade-off the teacher's ChainEngine makes with unsafe.Pointer atomics for
// its hot-swap publish: reach for a low-level, slightly unconventional
// primitive when the standard library doesn't offer a direct answer. Here
// that primitive is parsing the calling goroutine's id out of a runtime
// stack trace, which is enough to key a slot per goroutine without
// requiring cooperation from the caller.
package gls

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

var (
	mu   sync.RWMutex
	slot = make(map[uint64]interface{})
)

// goroutineID parses "goroutine 123 [running]:" off the top of a stack
// trace captured for just this goroutine.
func goroutineID() uint64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	i := bytes.IndexByte(buf, ' ')
	if i < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(buf[:i]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Set stores v in the calling goroutine's slot.
func Set(v interface{}) {
	id := goroutineID()
	mu.Lock()
	slot[id] = v
	mu.Unlock()
}

// Get returns the calling goroutine's slot value, or nil, ok=false if
// nothing was set (or the setting goroutine has since cleared it).
func Get() (interface{}, bool) {
	id := goroutineID()
	mu.RLock()
	v, ok := slot[id]
	mu.RUnlock()
	return v, ok
}

// Clear removes the calling goroutine's slot value. Callers must always
// defer Clear immediately after Set to avoid leaking slots for goroutines
// that exit without clearing.
func Clear() {
	id := goroutineID()
	mu.Lock()
	delete(slot, id)
	mu.Unlock()
}
