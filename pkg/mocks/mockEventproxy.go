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

package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/opencord/voltha-protos/v5/go/voltha"
)

// RecordedEvent is a device event seen by MockEventProxy
type RecordedEvent struct {
	Event       *voltha.DeviceEvent
	Category    voltha.EventCategory_Types
	SubCategory voltha.EventSubCategory_Types
	RaisedTs    int64
}

// MockEventProxy records the device events sent through it
type MockEventProxy struct {
	mutex  sync.Mutex
	events []RecordedEvent
	// Fail makes SendDeviceEvent return an error
	Fail bool
}

// SendDeviceEvent mocks the SendDeviceEvent function
func (me *MockEventProxy) SendDeviceEvent(ctx context.Context, deviceEvent *voltha.DeviceEvent, category voltha.EventCategory_Types,
	subCategory voltha.EventSubCategory_Types, raisedTs int64) error {
	if raisedTs == 0 {
		return errors.New("raisedTS cannot be zero")
	}
	if me.Fail {
		return errors.New("event-send-failed")
	}
	me.mutex.Lock()
	defer me.mutex.Unlock()
	me.events = append(me.events, RecordedEvent{
		Event:       deviceEvent,
		Category:    category,
		SubCategory: subCategory,
		RaisedTs:    raisedTs,
	})
	return nil
}

// Events returns the events sent so far
func (me *MockEventProxy) Events() []RecordedEvent {
	me.mutex.Lock()
	defer me.mutex.Unlock()
	return append([]RecordedEvent(nil), me.events...)
}

// EventNames returns the names of the events sent so far
func (me *MockEventProxy) EventNames() []string {
	var names []string
	for _, e := range me.Events() {
		names = append(names, e.Event.DeviceEventName)
	}
	return names
}
