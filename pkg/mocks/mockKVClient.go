/*
 * Copyright 2018-present Open Networking Foundation

 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at

 * http://www.apache.org/licenses/LICENSE-2.0

 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

//Package mocks provides the mocks for asfvolt16-adapter.
package mocks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/opencord/voltha-lib-go/v7/pkg/db/kvstore"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
)

// MockKVClient is an in-memory kvstore.Client
type MockKVClient struct {
	mutex sync.RWMutex
	data  map[string]interface{}
	// FailPut makes every Put return an error
	FailPut bool
}

// NewMockKVClient returns an empty in-memory KV client
func NewMockKVClient() *MockKVClient {
	return &MockKVClient{data: make(map[string]interface{})}
}

func (kvclient *MockKVClient) store() map[string]interface{} {
	if kvclient.data == nil {
		kvclient.data = make(map[string]interface{})
	}
	return kvclient.data
}

// List mock function implementation for KVClient
func (kvclient *MockKVClient) List(ctx context.Context, key string) (map[string]*kvstore.KVPair, error) {
	if key == "" {
		return nil, errors.New("key didn't find")
	}
	kvclient.mutex.RLock()
	defer kvclient.mutex.RUnlock()
	pairs := make(map[string]*kvstore.KVPair)
	for k, v := range kvclient.store() {
		if strings.HasPrefix(k, key) {
			pairs[k] = kvstore.NewKVPair(k, v, "mock", 0, 1)
		}
	}
	return pairs, nil
}

// Get mock function implementation for KVClient
func (kvclient *MockKVClient) Get(ctx context.Context, key string) (*kvstore.KVPair, error) {
	logger.Debugw(ctx, "Get of MockKVClient called", log.Fields{"key": key})
	if key == "" {
		return nil, errors.New("key didn't find")
	}
	kvclient.mutex.RLock()
	defer kvclient.mutex.RUnlock()
	if v, ok := kvclient.store()[key]; ok {
		return kvstore.NewKVPair(key, v, "mock", 0, 1), nil
	}
	return nil, nil
}

// GetWithPrefix mock function implementation for KVClient
func (kvclient *MockKVClient) GetWithPrefix(ctx context.Context, prefixKey string) (map[string]*kvstore.KVPair, error) {
	return kvclient.List(ctx, prefixKey)
}

// GetWithPrefixKeysOnly mock function implementation for KVClient
func (kvclient *MockKVClient) GetWithPrefixKeysOnly(ctx context.Context, prefixKey string) ([]string, error) {
	pairs, err := kvclient.List(ctx, prefixKey)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	return keys, nil
}

// KeyExists mock function implementation for KVClient
func (kvclient *MockKVClient) KeyExists(ctx context.Context, key string) (bool, error) {
	kvclient.mutex.RLock()
	defer kvclient.mutex.RUnlock()
	_, ok := kvclient.store()[key]
	return ok, nil
}

// Put mock function implementation for KVClient
func (kvclient *MockKVClient) Put(ctx context.Context, key string, value interface{}) error {
	if key == "" {
		return errors.New("key didn't find")
	}
	if kvclient.FailPut {
		return errors.New("put-failed")
	}
	kvclient.mutex.Lock()
	defer kvclient.mutex.Unlock()
	kvclient.store()[key] = value
	return nil
}

// Delete mock function implementation for KVClient
func (kvclient *MockKVClient) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("key didn't find")
	}
	kvclient.mutex.Lock()
	defer kvclient.mutex.Unlock()
	delete(kvclient.store(), key)
	return nil
}

// DeleteWithPrefix mock function implementation for KVClient
func (kvclient *MockKVClient) DeleteWithPrefix(ctx context.Context, prefixKey string) error {
	if prefixKey == "" {
		return errors.New("key didn't find")
	}
	kvclient.mutex.Lock()
	defer kvclient.mutex.Unlock()
	for k := range kvclient.store() {
		if strings.HasPrefix(k, prefixKey) {
			delete(kvclient.data, k)
		}
	}
	return nil
}

// Reserve mock function implementation for KVClient
func (kvclient *MockKVClient) Reserve(ctx context.Context, key string, value interface{}, ttl time.Duration) (interface{}, error) {
	if key == "" {
		return nil, errors.New("key didn't find")
	}
	return value, nil
}

// ReleaseReservation mock function implementation for KVClient
func (kvclient *MockKVClient) ReleaseReservation(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("key didn't find")
	}
	return nil
}

// ReleaseAllReservations mock function implementation for KVClient
func (kvclient *MockKVClient) ReleaseAllReservations(ctx context.Context) error {
	return nil
}

// RenewReservation mock function implementation for KVClient
func (kvclient *MockKVClient) RenewReservation(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("key didn't find")
	}
	return nil
}

// Watch mock function implementation for KVClient
func (kvclient *MockKVClient) Watch(ctx context.Context, key string, withPrefix bool) chan *kvstore.Event {
	return nil
}

// AcquireLock mock function implementation for KVClient
func (kvclient *MockKVClient) AcquireLock(ctx context.Context, lockName string, timeout time.Duration) error {
	return nil
}

// ReleaseLock mock function implementation for KVClient
func (kvclient *MockKVClient) ReleaseLock(lockName string) error {
	return nil
}

// IsConnectionUp mock function implementation for KVClient
func (kvclient *MockKVClient) IsConnectionUp(ctx context.Context) bool {
	return true
}

// CloseWatch mock function implementation for KVClient
func (kvclient *MockKVClient) CloseWatch(ctx context.Context, key string, ch chan *kvstore.Event) {
}

// Close mock function implementation for KVClient
func (kvclient *MockKVClient) Close(ctx context.Context) {
}
