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
	"encoding/hex"
	"time"

	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/xpon"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-protos/v5/go/common"
	oop "github.com/opencord/voltha-protos/v5/go/openolt"
	"github.com/opencord/voltha-protos/v5/go/voltha"
)

// Sub-events of a subscriber terminal indication
const (
	SubGroupOnuDiscovery      = "onu_discovery"
	SubGroupSubTermIndication = "sub_term_indication"
)

// SubscriberTerminalIndication is an ONU event reported by the OLT
type SubscriberTerminalIndication struct {
	SubGroup             string
	PonID                uint32
	OnuID                uint32
	VendorID             string
	VendorSpecific       string
	ActivationSuccessful bool
}

// SerialNumber is the ONU serial number the indication refers to
func (ind *SubscriberTerminalIndication) SerialNumber() string {
	return ind.VendorID + ind.VendorSpecific
}

type onuStateHandler func(dh *DeviceHandler, ctx context.Context, child *voltha.Device, ind *SubscriberTerminalIndication)

// onuStateHandlers dispatches an indication on the operational state of the ONU it refers to
var onuStateHandlers = map[common.OperStatus_Types]onuStateHandler{
	common.OperStatus_UNKNOWN:    (*DeviceHandler).onuNotStarted,
	common.OperStatus_FAILED:     (*DeviceHandler).onuNotStarted,
	common.OperStatus_ACTIVATING: (*DeviceHandler).onuActivating,
	common.OperStatus_ACTIVE:     (*DeviceHandler).onuActive,
	common.OperStatus_DISCOVERED: (*DeviceHandler).onuDiscovered,
}

// HandleSubscriberTerminalIndication dispatches ind on the operational state of the ONU it refers to
func (dh *DeviceHandler) HandleSubscriberTerminalIndication(ctx context.Context, ind *SubscriberTerminalIndication) {
	dh.lockDevice.Lock()
	defer dh.lockDevice.Unlock()

	serialNumber := ind.SerialNumber()
	child, err := dh.coreProxy.GetChildDeviceBySerial(ctx, dh.device.Id, serialNumber)
	if err != nil || child == nil {
		logger.Warnw(ctx, "onu-is-not-configured", log.Fields{
			"device-id":     dh.device.Id,
			"serial-number": serialNumber,
			"sub-group":     ind.SubGroup})
		return
	}
	handler, ok := onuStateHandlers[child.OperStatus]
	if !ok {
		logger.Warnw(ctx, "invalid-onu-state", log.Fields{
			"child-device-id": child.Id,
			"oper-status":     child.OperStatus,
			"sub-group":       ind.SubGroup})
		return
	}
	handler(dh, ctx, child, ind)
}

func (dh *DeviceHandler) onuNotStarted(ctx context.Context, child *voltha.Device, ind *SubscriberTerminalIndication) {
	if ind.SubGroup == SubGroupOnuDiscovery {
		logger.Infow(ctx, "onu-discovered", log.Fields{
			"child-device-id": child.Id,
			"serial-number":   ind.SerialNumber(),
			"pon-id":          ind.PonID})
		return
	}
	logger.Warnw(ctx, "invalid-onu-event", log.Fields{"child-device-id": child.Id, "sub-group": ind.SubGroup})
}

func (dh *DeviceHandler) onuActivating(ctx context.Context, child *voltha.Device, ind *SubscriberTerminalIndication) {
	logger.Infow(ctx, "onu-activating", log.Fields{"child-device-id": child.Id, "sub-group": ind.SubGroup})
}

func (dh *DeviceHandler) onuActive(ctx context.Context, child *voltha.Device, ind *SubscriberTerminalIndication) {
	logger.Infow(ctx, "onu-active", log.Fields{"child-device-id": child.Id, "sub-group": ind.SubGroup})
}

func (dh *DeviceHandler) onuDiscovered(ctx context.Context, child *voltha.Device, ind *SubscriberTerminalIndication) {
	switch ind.SubGroup {
	case SubGroupOnuDiscovery:
		logger.Infow(ctx, "onu-activation-in-progress", log.Fields{
			"child-device-id": child.Id,
			"serial-number":   ind.SerialNumber()})
	case SubGroupSubTermIndication:
		dh.onuActivationCompleted(ctx, child, ind)
	default:
		logger.Warnw(ctx, "invalid-onu-event", log.Fields{"child-device-id": child.Id, "sub-group": ind.SubGroup})
	}
}

// onuActivationCompleted tells the ONU adapter about the activation outcome and,
// when it succeeded, creates the upstream schedulers of the ONU's TCONTs
func (dh *DeviceHandler) onuActivationCompleted(ctx context.Context, child *voltha.Device, ind *SubscriberTerminalIndication) {
	operState := operationStateDown
	if ind.ActivationSuccessful {
		operState = operationStateUp
	}
	onuInd := &oop.OnuIndication{
		IntfId:    ind.PonID,
		OnuId:     child.ProxyAddress.GetOnuId(),
		OperState: operState,
		SerialNumber: &oop.SerialNumber{
			VendorId:       []byte(ind.VendorID),
			VendorSpecific: vendorSpecificBytes(ind.VendorSpecific),
		},
	}
	if dh.publisher != nil {
		if err := dh.publisher.PublishOnuIndication(ctx, child, onuInd); err != nil {
			logger.Errorw(ctx, "failed-to-publish-onu-indication", log.Fields{"child-device-id": child.Id, "error": err})
		}
	}
	if err := dh.eventMgr.onuActivationIndication(ctx, dh.device.Id, child, operState, time.Now().Unix()); err != nil {
		logger.Warnw(ctx, "failed-to-send-onu-activation-event", log.Fields{"child-device-id": child.Id, "error": err})
	}
	if !ind.ActivationSuccessful {
		return
	}
	for _, vOntAni := range dh.graph.VOntAnisByOnuID(child.ProxyAddress.GetOnuId()) {
		for _, tcont := range vOntAni.Tconts() {
			_ = dh.createTcontScheduler(ctx, child, tcont)
		}
	}
}

// createTcontScheduler creates the upstream scheduler of tcont on child
func (dh *DeviceHandler) createTcontScheduler(ctx context.Context, child *voltha.Device, tcont *xpon.TcontConfig) error {
	owner := SchedulerOwner{
		Type:    aggPortOwner,
		IntfID:  child.ProxyAddress.GetChannelId(),
		OnuID:   child.ProxyAddress.GetOnuId(),
		AllocID: tcont.AllocID,
	}
	if err := dh.driver.CreateScheduler(ctx, tcont.AllocID, Upstream, owner, dh.schedulerQueueDepth); err != nil {
		logger.Errorw(ctx, "failed-to-create-scheduler", log.Fields{
			"tcont":    tcont.Name,
			"alloc-id": tcont.AllocID,
			"onu-id":   owner.OnuID,
			"error":    err})
		return err
	}
	return nil
}

func serialNumberString(sn *oop.SerialNumber) (string, string) {
	if sn == nil {
		return "", ""
	}
	return string(sn.GetVendorId()), hex.EncodeToString(sn.GetVendorSpecific())
}

// subscriberTerminalFromDiscovery maps an ONU discovery indication
func subscriberTerminalFromDiscovery(onuDiscInd *oop.OnuDiscIndication) *SubscriberTerminalIndication {
	vendorID, vendorSpecific := serialNumberString(onuDiscInd.GetSerialNumber())
	return &SubscriberTerminalIndication{
		SubGroup:       SubGroupOnuDiscovery,
		PonID:          onuDiscInd.GetIntfId(),
		VendorID:       vendorID,
		VendorSpecific: vendorSpecific,
	}
}

// subscriberTerminalFromOnuIndication maps an ONU activation outcome
func subscriberTerminalFromOnuIndication(onuInd *oop.OnuIndication) *SubscriberTerminalIndication {
	vendorID, vendorSpecific := serialNumberString(onuInd.GetSerialNumber())
	return &SubscriberTerminalIndication{
		SubGroup:             SubGroupSubTermIndication,
		PonID:                onuInd.GetIntfId(),
		OnuID:                onuInd.GetOnuId(),
		VendorID:             vendorID,
		VendorSpecific:       vendorSpecific,
		ActivationSuccessful: onuInd.GetOperState() == operationStateUp,
	}
}
