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
	"fmt"
	"strconv"

	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/olterrors"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-protos/v5/go/voltha"
)

const (
	oltActivationFailEvent   = "OLT_ACTIVATION_FAILURE"
	onuDiscoveryEvent        = "ONU_DISCOVERY"
	onuActivationCompleEvent = "ONU_ACTIVATION_COMPLETED"
)

const (
	pon           = voltha.EventSubCategory_PON
	olt           = voltha.EventSubCategory_OLT
	onu           = voltha.EventSubCategory_ONU
	equipment     = voltha.EventCategory_EQUIPMENT
	communication = voltha.EventCategory_COMMUNICATION
)

const (
	// operationStateUp represents operation state Up
	operationStateUp = "up"
	// operationStateDown represents operation state Down
	operationStateDown = "down"
	// base10 represents base 10 conversion
	base10 = 10
)

// EventSender publishes device events; eventif.EventProxy satisfies it
type EventSender interface {
	SendDeviceEvent(ctx context.Context, deviceEvent *voltha.DeviceEvent, category voltha.EventCategory_Types,
		subCategory voltha.EventSubCategory_Types, raisedTs int64) error
}

// OltEventMgr raises the device events of one OLT
type OltEventMgr struct {
	eventProxy EventSender
	handler    *DeviceHandler
}

// NewEventMgr is a Function to get a new event manager struct for the OLT to process and publish events
func NewEventMgr(eventProxy EventSender, handler *DeviceHandler) *OltEventMgr {
	var em OltEventMgr
	em.eventProxy = eventProxy
	em.handler = handler
	return &em
}

func (em *OltEventMgr) send(ctx context.Context, de *voltha.DeviceEvent, category voltha.EventCategory_Types,
	subCategory voltha.EventSubCategory_Types, raisedTs int64) error {
	if em.eventProxy == nil {
		logger.Debugw(ctx, "no-event-proxy-event-dropped", log.Fields{"event": de.DeviceEventName})
		return nil
	}
	return em.eventProxy.SendDeviceEvent(ctx, de, category, subCategory, raisedTs)
}

// oltActivationEvent raises the activation failure event when the OLT fails to come up and clears it once it does
func (em *OltEventMgr) oltActivationEvent(ctx context.Context, deviceID string, operState string, raisedTs int64) error {
	var de voltha.DeviceEvent
	context := make(map[string]string)
	/* Populating event context */
	context["oper-state"] = operState
	/* Populating device event body */
	de.Context = context
	de.ResourceId = deviceID
	if operState == operationStateDown {
		de.DeviceEventName = fmt.Sprintf("%s_%s", oltActivationFailEvent, "RAISE_EVENT")
	} else {
		de.DeviceEventName = fmt.Sprintf("%s_%s", oltActivationFailEvent, "CLEAR_EVENT")
	}
	/* Send event to KAFKA */
	if err := em.send(ctx, &de, communication, olt, raisedTs); err != nil {
		return olterrors.NewErrCommunication("send-olt-event", log.Fields{"device-id": deviceID}, err)
	}
	logger.Debugw(ctx, "olt-activation-event-sent-to-kafka", log.Fields{"device-id": deviceID, "oper-state": operState})
	return nil
}

// OnuDiscoveryIndication is an exported method to handle ONU discovery event
func (em *OltEventMgr) OnuDiscoveryIndication(ctx context.Context, deviceID string, intfID uint32, serialNumber string, raisedTs int64) error {
	var de voltha.DeviceEvent
	context := make(map[string]string)
	/* Populating event context */
	context["intf-id"] = strconv.FormatUint(uint64(intfID), base10)
	context["serial-number"] = serialNumber
	/* Populating device event body */
	de.Context = context
	de.ResourceId = deviceID
	de.DeviceEventName = fmt.Sprintf("%s_%s", onuDiscoveryEvent, "RAISE_EVENT")
	/* Send event to KAFKA */
	if err := em.send(ctx, &de, equipment, pon, raisedTs); err != nil {
		return olterrors.NewErrCommunication("send-onu-discovery-event", log.Fields{"serial-number": serialNumber, "intf-id": intfID}, err)
	}
	logger.Debugw(ctx, "onu-discovery-event-sent-to-kafka", log.Fields{"serial-number": serialNumber, "intf-id": intfID})
	return nil
}

// onuActivationIndication reports the outcome of an ONU activation
func (em *OltEventMgr) onuActivationIndication(ctx context.Context, deviceID string, child *voltha.Device, operState string, raisedTs int64) error {
	var de voltha.DeviceEvent
	context := make(map[string]string)
	/* Populating event context */
	context["onu-id"] = strconv.FormatUint(uint64(child.ProxyAddress.GetOnuId()), base10)
	context["intf-id"] = strconv.FormatUint(uint64(child.ProxyAddress.GetChannelId()), base10)
	context["serial-number"] = child.SerialNumber
	context["oper-state"] = operState
	/* Populating device event body */
	de.Context = context
	de.ResourceId = deviceID
	if operState == operationStateUp {
		de.DeviceEventName = fmt.Sprintf("%s_%s", onuActivationCompleEvent, "RAISE_EVENT")
	} else {
		de.DeviceEventName = fmt.Sprintf("%s_%s", onuActivationCompleEvent, "CLEAR_EVENT")
	}
	/* Send event to KAFKA */
	if err := em.send(ctx, &de, communication, onu, raisedTs); err != nil {
		return olterrors.NewErrCommunication("send-onu-activation-event", log.Fields{
			"onu-id":  child.ProxyAddress.GetOnuId(),
			"intf-id": child.ProxyAddress.GetChannelId()}, err)
	}
	logger.Debugw(ctx, "onu-activation-event-sent-to-kafka", log.Fields{"child-device-id": child.Id, "oper-state": operState})
	return nil
}
