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
	"time"

	vgrpc "github.com/opencord/voltha-lib-go/v7/pkg/grpc"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-protos/v5/go/common"
	ca "github.com/opencord/voltha-protos/v5/go/core_adapter"
	"github.com/opencord/voltha-protos/v5/go/voltha"
)

// CoreProxy is the view of the voltha core the device handler works against
type CoreProxy interface {
	GetDevice(ctx context.Context, deviceID string) (*voltha.Device, error)
	UpdateDevice(ctx context.Context, device *voltha.Device) error
	AddPort(ctx context.Context, port *voltha.Port) error
	GetPortsByType(ctx context.Context, deviceID string, portType voltha.Port_PortType) ([]*voltha.Port, error)
	GetChildDeviceBySerial(ctx context.Context, parentID string, serialNumber string) (*voltha.Device, error)
	GetChildDeviceByOnuID(ctx context.Context, parentID string, onuID uint32) (*voltha.Device, error)
	SendPacketIn(ctx context.Context, deviceID string, port uint32, packet []byte) error
}

// coreClientProxy implements CoreProxy over the core gRPC service
type coreClientProxy struct {
	coreClient *vgrpc.Client
	rpcTimeout time.Duration
}

// NewCoreProxy returns a CoreProxy backed by the core client cc
func NewCoreProxy(cc *vgrpc.Client, rpcTimeout time.Duration) CoreProxy {
	return &coreClientProxy{coreClient: cc, rpcTimeout: rpcTimeout}
}

func (cp *coreClientProxy) GetDevice(ctx context.Context, deviceID string) (*voltha.Device, error) {
	cClient, err := cp.coreClient.GetCoreServiceClient()
	if err != nil || cClient == nil {
		return nil, err
	}
	subCtx, cancel := context.WithTimeout(log.WithSpanFromContext(context.Background(), ctx), cp.rpcTimeout)
	defer cancel()
	return cClient.GetDevice(subCtx, &common.ID{Id: deviceID})
}

// UpdateDevice pushes the device record and its state and reason to the core
func (cp *coreClientProxy) UpdateDevice(ctx context.Context, device *voltha.Device) error {
	cClient, err := cp.coreClient.GetCoreServiceClient()
	if err != nil || cClient == nil {
		return err
	}
	subCtx, cancel := context.WithTimeout(log.WithSpanFromContext(context.Background(), ctx), cp.rpcTimeout)
	defer cancel()
	if _, err = cClient.DeviceUpdate(subCtx, device); err != nil {
		return err
	}
	if _, err = cClient.DeviceStateUpdate(subCtx, &ca.DeviceStateFilter{
		DeviceId:   device.Id,
		OperStatus: device.OperStatus,
		ConnStatus: device.ConnectStatus,
	}); err != nil {
		return err
	}
	if device.Reason != "" {
		_, err = cClient.DeviceReasonUpdate(subCtx, &ca.DeviceReason{DeviceId: device.Id, Reason: device.Reason})
	}
	return err
}

func (cp *coreClientProxy) AddPort(ctx context.Context, port *voltha.Port) error {
	cClient, err := cp.coreClient.GetCoreServiceClient()
	if err != nil || cClient == nil {
		return err
	}
	subCtx, cancel := context.WithTimeout(log.WithSpanFromContext(context.Background(), ctx), cp.rpcTimeout)
	defer cancel()
	_, err = cClient.PortCreated(subCtx, port)
	return err
}

func (cp *coreClientProxy) GetPortsByType(ctx context.Context, deviceID string, portType voltha.Port_PortType) ([]*voltha.Port, error) {
	cClient, err := cp.coreClient.GetCoreServiceClient()
	if err != nil || cClient == nil {
		return nil, err
	}
	subCtx, cancel := context.WithTimeout(log.WithSpanFromContext(context.Background(), ctx), cp.rpcTimeout)
	defer cancel()
	ports, err := cClient.ListDevicePorts(subCtx, &common.ID{Id: deviceID})
	if err != nil {
		return nil, err
	}
	var matched []*voltha.Port
	for _, port := range ports.GetItems() {
		if port.Type == portType {
			matched = append(matched, port)
		}
	}
	return matched, nil
}

func (cp *coreClientProxy) getChildDevice(ctx context.Context, filter *ca.ChildDeviceFilter) (*voltha.Device, error) {
	cClient, err := cp.coreClient.GetCoreServiceClient()
	if err != nil || cClient == nil {
		return nil, err
	}
	subCtx, cancel := context.WithTimeout(log.WithSpanFromContext(context.Background(), ctx), cp.rpcTimeout)
	defer cancel()
	return cClient.GetChildDevice(subCtx, filter)
}

func (cp *coreClientProxy) GetChildDeviceBySerial(ctx context.Context, parentID string, serialNumber string) (*voltha.Device, error) {
	return cp.getChildDevice(ctx, &ca.ChildDeviceFilter{ParentId: parentID, SerialNumber: serialNumber})
}

func (cp *coreClientProxy) GetChildDeviceByOnuID(ctx context.Context, parentID string, onuID uint32) (*voltha.Device, error) {
	return cp.getChildDevice(ctx, &ca.ChildDeviceFilter{ParentId: parentID, OnuId: onuID})
}

func (cp *coreClientProxy) SendPacketIn(ctx context.Context, deviceID string, port uint32, packet []byte) error {
	cClient, err := cp.coreClient.GetCoreServiceClient()
	if err != nil || cClient == nil {
		return err
	}
	subCtx, cancel := context.WithTimeout(log.WithSpanFromContext(context.Background(), ctx), cp.rpcTimeout)
	defer cancel()
	_, err = cClient.SendPacketIn(subCtx, &ca.PacketIn{DeviceId: deviceID, Port: port, Packet: packet})
	return err
}
