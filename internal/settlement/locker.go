/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package settlement

import "sync"

// AssetLocker serializes work on a single asset. Purchase submission and
// confirmation for the same asset never run concurrently; different assets
// proceed in parallel.
type AssetLocker struct {
	mutex sync.Mutex
	locks map[string]*assetLock
}

type assetLock struct {
	sync.Mutex
	refs int
}

func NewAssetLocker() *AssetLocker {
	return &AssetLocker{locks: make(map[string]*assetLock)}
}

// Lock blocks until the asset is free and returns the matching unlock function
func (l *AssetLocker) Lock(assetId string) func() {
	l.mutex.Lock()
	lock, ok := l.locks[assetId]
	if !ok {
		lock = &assetLock{}
		l.locks[assetId] = lock
	}
	lock.refs++
	l.mutex.Unlock()

	lock.Lock()

	return func() {
		lock.Unlock()

		l.mutex.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, assetId)
		}
		l.mutex.Unlock()
	}
}

// held reports how many callers currently hold or wait on a lock
func (l *AssetLocker) held() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.locks)
}
