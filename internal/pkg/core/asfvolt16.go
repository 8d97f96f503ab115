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

//Package core provides the flow translation and ONU lifecycle handling of ASFvOLT16 devices
package core

import (
	"context"
	"sync"

	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/config"
	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/olterrors"
	rsrcMgr "github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/resourcemanager"
	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/xpon"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	ia "github.com/opencord/voltha-protos/v5/go/inter_adapter"
	ofp "github.com/opencord/voltha-protos/v5/go/openflow_13"
	"github.com/opencord/voltha-protos/v5/go/voltha"
)

// DriverFactory returns the hardware driver of a newly adopted OLT
type DriverFactory func() HardwareDriver

// ResourceMgrFactory returns the resource manager of a newly adopted OLT
type ResourceMgrFactory func(ctx context.Context, deviceID string) (*rsrcMgr.AsfResourceMgr, error)

//Asfvolt16 structure holds the device handlers of the adopted OLTs
type Asfvolt16 struct {
	deviceHandlers        map[string]*DeviceHandler
	lockDeviceHandlersMap sync.RWMutex
	coreProxy             CoreProxy
	publisher             InterAdapterPublisher
	eventProxy            EventSender
	config                *config.AdapterFlags
	newDriver             DriverFactory
	newResourceMgr        ResourceMgrFactory
	bundle                *xpon.Bundle
}

//NewAsfvolt16 returns a new instance of Asfvolt16. newResourceMgr may be nil to run without persistence.
func NewAsfvolt16(cp CoreProxy, publisher InterAdapterPublisher, ep EventSender, cfg *config.AdapterFlags,
	newDriver DriverFactory, newResourceMgr ResourceMgrFactory) *Asfvolt16 {
	return &Asfvolt16{
		deviceHandlers: make(map[string]*DeviceHandler),
		coreProxy:      cp,
		publisher:      publisher,
		eventProxy:     ep,
		config:         cfg,
		newDriver:      newDriver,
		newResourceMgr: newResourceMgr,
	}
}

// SetProvisioningBundle sets the configs applied to every OLT adopted afterwards
func (a *Asfvolt16) SetProvisioningBundle(b *xpon.Bundle) {
	a.lockDeviceHandlersMap.Lock()
	defer a.lockDeviceHandlersMap.Unlock()
	a.bundle = b
}

func (a *Asfvolt16) addDeviceHandlerToMap(agent *DeviceHandler) bool {
	a.lockDeviceHandlersMap.Lock()
	defer a.lockDeviceHandlersMap.Unlock()
	if _, exist := a.deviceHandlers[agent.device.Id]; exist {
		return false
	}
	a.deviceHandlers[agent.device.Id] = agent
	return true
}

// GetDeviceHandler returns the handler of the OLT deviceID, nil when the OLT was not adopted
func (a *Asfvolt16) GetDeviceHandler(deviceID string) *DeviceHandler {
	a.lockDeviceHandlersMap.RLock()
	defer a.lockDeviceHandlersMap.RUnlock()
	return a.deviceHandlers[deviceID]
}

// AdoptDevice creates a new device handler if not present already and then adopts the device
func (a *Asfvolt16) AdoptDevice(ctx context.Context, device *voltha.Device) error {
	if device == nil {
		return olterrors.NewErrInvalidValue(log.Fields{"device": nil}, nil).Log()
	}
	logger.Infow(ctx, "adopt-device", log.Fields{"device-id": device.Id})
	if a.GetDeviceHandler(device.Id) != nil {
		return nil
	}

	var rm *rsrcMgr.AsfResourceMgr
	if a.newResourceMgr != nil {
		var err error
		if rm, err = a.newResourceMgr(ctx, device.Id); err != nil {
			logger.Errorw(ctx, "resource-manager-unavailable", log.Fields{"device-id": device.Id, "error": err})
		}
	}
	handler := NewDeviceHandler(a.coreProxy, a.publisher, a.eventProxy, a.newDriver(), rm, device, a.config)
	if !a.addDeviceHandlerToMap(handler) {
		return nil
	}

	a.lockDeviceHandlersMap.RLock()
	bundle := a.bundle
	a.lockDeviceHandlersMap.RUnlock()

	adoptCtx := log.WithSpanFromContext(context.Background(), ctx)
	go func() {
		if err := handler.AdoptDevice(adoptCtx); err != nil {
			logger.Errorw(adoptCtx, "failed-to-adopt-device", log.Fields{"device-id": device.Id, "error": err})
			return
		}
		if bundle != nil {
			handler.ApplyBundle(adoptCtx, bundle)
		}
	}()
	return nil
}

// ProxyOmciMessage forwards an OMCI request of an ONU adapter to the parent OLT
func (a *Asfvolt16) ProxyOmciMessage(ctx context.Context, request *ia.OmciMessage) error {
	if request == nil {
		return olterrors.NewErrInvalidValue(log.Fields{"request": nil}, nil).Log()
	}
	handler := a.GetDeviceHandler(request.ParentDeviceId)
	if handler == nil {
		return olterrors.NewErrNotFound("device-handler", log.Fields{"device-id": request.ParentDeviceId}, nil)
	}
	return handler.SendProxiedMessage(ctx, request.ProxyAddress, request.Message)
}

// UpdateFlowsBulk installs the full flow table of device
func (a *Asfvolt16) UpdateFlowsBulk(ctx context.Context, device *voltha.Device, flowList []*ofp.OfpFlowStats) error {
	if device == nil {
		return olterrors.NewErrInvalidValue(log.Fields{"device": nil}, nil).Log()
	}
	logger.Infow(ctx, "update-flows-bulk", log.Fields{"device-id": device.Id, "flows": len(flowList)})
	handler := a.GetDeviceHandler(device.Id)
	if handler == nil {
		return olterrors.NewErrNotFound("device-handler", log.Fields{"device-id": device.Id}, nil)
	}
	return flowUpdateError(device.Id, handler.UpdateFlowTable(ctx, flowList))
}

// UpdateFlowsIncrementally installs the added flows of device. Flow removal is not
// supported by the device and is only logged.
func (a *Asfvolt16) UpdateFlowsIncrementally(ctx context.Context, device *voltha.Device, changes *ofp.FlowChanges) error {
	if device == nil {
		return olterrors.NewErrInvalidValue(log.Fields{"device": nil}, nil).Log()
	}
	logger.Infow(ctx, "update-flows-incrementally", log.Fields{"device-id": device.Id, "flows": changes})
	handler := a.GetDeviceHandler(device.Id)
	if handler == nil {
		return olterrors.NewErrNotFound("device-handler", log.Fields{"device-id": device.Id}, nil)
	}
	if removed := changes.GetToRemove().GetItems(); len(removed) > 0 {
		logger.Warnw(ctx, "flow-removal-not-supported", log.Fields{"device-id": device.Id, "flows": len(removed)})
	}
	return flowUpdateError(device.Id, handler.UpdateFlowTable(ctx, changes.GetToAdd().GetItems()))
}

func flowUpdateError(deviceID string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return olterrors.NewErrAdapter("flow-update-failed", log.Fields{"device-id": deviceID, "failed-flows": len(errs)}, errs[0])
}

// ReceivePacketOut sends a packet out of the UNI egressPortNo of deviceID
func (a *Asfvolt16) ReceivePacketOut(ctx context.Context, deviceID string, egressPortNo uint32, packet *ofp.OfpPacketOut) error {
	logger.Debugw(ctx, "receive-packet-out", log.Fields{"device-id": deviceID, "egress-port-no": egressPortNo})
	handler := a.GetDeviceHandler(deviceID)
	if handler == nil {
		return olterrors.NewErrNotFound("device-handler", log.Fields{"device-id": deviceID}, nil)
	}
	return handler.PacketOut(ctx, egressPortNo, packet.GetData())
}

//Stop stops every device handler
func (a *Asfvolt16) Stop(ctx context.Context) error {
	logger.Info(ctx, "stopping-device-manager")
	a.lockDeviceHandlersMap.RLock()
	defer a.lockDeviceHandlersMap.RUnlock()
	for _, handler := range a.deviceHandlers {
		handler.Stop(ctx)
	}
	logger.Info(ctx, "device-manager-stopped")
	return nil
}
