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

package core

import (
	"context"
	"reflect"
	"runtime"
	"sync"

	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/olterrors"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
)

// DeviceState OLT Device state
type DeviceState int

const (
	// deviceStateNull OLT is not instantiated
	deviceStateNull DeviceState = iota
	// deviceStateInit OLT record is populated and the agent is connected
	deviceStateInit
	// deviceStateActivating OLT activation was requested
	deviceStateActivating
	// deviceStateUp OLT reported a successful activation
	deviceStateUp
	// deviceStateFailed OLT activation failed, a retry is pending
	deviceStateFailed
)

var deviceStateNames = map[DeviceState]string{
	deviceStateNull:       "null",
	deviceStateInit:       "init",
	deviceStateActivating: "activating",
	deviceStateUp:         "up",
	deviceStateFailed:     "failed",
}

func (s DeviceState) String() string {
	return deviceStateNames[s]
}

// Trigger for changing the state
type Trigger int

const (
	// DeviceInit Go to Device init state
	DeviceInit Trigger = iota
	// ActivateOlt Go to activating state
	ActivateOlt
	// OltActivated Go to Device up state
	OltActivated
	// OltActivationFailed Go to failed state
	OltActivationFailed
)

// TransitionHandler function type for handling transition
type TransitionHandler func(ctx context.Context) error

// Transition to store state machine
type Transition struct {
	previousState []DeviceState
	currentState  DeviceState
	before        []TransitionHandler
	after         []TransitionHandler
}

// TransitionMap to store all the states and current device state
type TransitionMap struct {
	mutex              sync.Mutex
	transitions        map[Trigger]Transition
	currentDeviceState DeviceState
}

//    ASFvOLT16 device state machine:
//
//        null ----> init ----> activating ----> up
//                     |          ^    |         |
//                     |    retry |    v         |
//                     +-------> failed <--------+
//
//    An up indication moves any non-null state to up.

// NewTransitionMap create a new state machine with all the transitions
func NewTransitionMap(dh *DeviceHandler) *TransitionMap {
	var transitionMap TransitionMap
	transitionMap.currentDeviceState = deviceStateNull
	transitionMap.transitions = make(map[Trigger]Transition)
	// In doStateInit populate the device record and connect to the agent
	transitionMap.transitions[DeviceInit] =
		Transition{
			previousState: []DeviceState{deviceStateNull},
			currentState:  deviceStateInit,
			before:        []TransitionHandler{dh.doStateInit},
			after:         []TransitionHandler{dh.postInit}}
	// Activation is requested on first adoption and on every retry
	transitionMap.transitions[ActivateOlt] =
		Transition{
			previousState: []DeviceState{deviceStateInit, deviceStateFailed},
			currentState:  deviceStateActivating,
			before:        []TransitionHandler{dh.doStateActivating}}
	// Once the olt UP is indication received, then do state up
	transitionMap.transitions[OltActivated] =
		Transition{
			previousState: []DeviceState{deviceStateInit, deviceStateActivating, deviceStateUp, deviceStateFailed},
			currentState:  deviceStateUp,
			before:        []TransitionHandler{dh.doStateUp}}
	// A failed activation marks the device failed and schedules the retry
	transitionMap.transitions[OltActivationFailed] =
		Transition{
			previousState: []DeviceState{deviceStateInit, deviceStateActivating, deviceStateUp, deviceStateFailed},
			currentState:  deviceStateFailed,
			before:        []TransitionHandler{dh.doStateFailed}}

	return &transitionMap
}

// funcName gets the handler function name
func funcName(f interface{}) string {
	p := reflect.ValueOf(f).Pointer()
	rf := runtime.FuncForPC(p)
	return rf.Name()
}

// isValidTransition checks for the new state transition is valid from current state
func (tMap *TransitionMap) isValidTransition(trigger Trigger) bool {
	// Validate the state transition
	for _, state := range tMap.transitions[trigger].previousState {
		if tMap.currentDeviceState == state {
			return true
		}
	}
	return false
}

// CurrentState returns the state the device is in
func (tMap *TransitionMap) CurrentState() DeviceState {
	tMap.mutex.Lock()
	defer tMap.mutex.Unlock()
	return tMap.currentDeviceState
}

// Handle moves the state machine to next state based on the trigger and invokes the before and
// after handlers if the transition is a valid transition. A failing before handler leaves the
// state unchanged.
func (tMap *TransitionMap) Handle(ctx context.Context, trigger Trigger) error {
	tMap.mutex.Lock()
	defer tMap.mutex.Unlock()

	// Check whether the transtion is valid from current state
	if !tMap.isValidTransition(trigger) {
		logger.Errorw(ctx, "invalid-transition-triggered",
			log.Fields{
				"current-state": tMap.currentDeviceState,
				"trigger":       trigger})
		return olterrors.ErrStateTransition
	}

	// Invoke the before handlers
	beforeHandlers := tMap.transitions[trigger].before
	if beforeHandlers == nil {
		logger.Debugw(ctx, "no-handlers-for-before", log.Fields{"trigger": trigger})
	}
	for _, handler := range beforeHandlers {
		logger.Debugw(ctx, "running-before-handler", log.Fields{"handler": funcName(handler)})
		if err := handler(ctx); err != nil {
			logger.Errorw(ctx, "before-handler-failed", log.Fields{"trigger": trigger, "error": err})
			return err
		}
	}

	// Update the state
	tMap.currentDeviceState = tMap.transitions[trigger].currentState
	logger.Debugw(ctx, "updated-device-state ", log.Fields{"current-device-state": tMap.currentDeviceState})

	// Invoke the after handlers
	afterHandlers := tMap.transitions[trigger].after
	if afterHandlers == nil {
		logger.Debugw(ctx, "no-handlers-for-after", log.Fields{"trigger": trigger})
	}
	for _, handler := range afterHandlers {
		logger.Debugw(ctx, "running-after-handler", log.Fields{"handler": funcName(handler)})
		if err := handler(ctx); err != nil {
			logger.Errorw(ctx, "after-handler-failed", log.Fields{"trigger": trigger, "error": err})
			return err
		}
	}
	return nil
}
