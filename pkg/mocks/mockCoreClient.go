/*
 * Copyright 2021-present Open Networking Foundation

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

	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes/empty"
	vgrpc "github.com/opencord/voltha-lib-go/v7/pkg/grpc"
	"github.com/opencord/voltha-protos/v5/go/common"
	ca "github.com/opencord/voltha-protos/v5/go/core_adapter"
	"github.com/opencord/voltha-protos/v5/go/health"
	"github.com/opencord/voltha-protos/v5/go/voltha"
	"google.golang.org/grpc"
)

// NewMockCoreClient creates a new mock core client for a given core service
func NewMockCoreClient(coreService *MockCoreService) *vgrpc.Client {
	cc, _ := vgrpc.NewClient("mock-local-endpoint", "mock-remote-endpoint", nil)
	cc.SetService(coreService)
	return cc
}

// MockCoreService is an in-memory core service. Device records and ports are
// kept by device id; the calls the adapter makes are recorded for assertions.
type MockCoreService struct {
	mutex        sync.Mutex
	Devices      map[string]*voltha.Device
	DevicePorts  map[string][]*voltha.Port
	StateUpdates []*ca.DeviceStateFilter
	Reasons      []*ca.DeviceReason
	PacketsIn    []*ca.PacketIn
	// FailPacketIn makes SendPacketIn return an error
	FailPacketIn bool
}

// NewMockCoreService returns a core service knowing the given devices
func NewMockCoreService(devices ...*voltha.Device) *MockCoreService {
	mcs := &MockCoreService{
		Devices:     make(map[string]*voltha.Device),
		DevicePorts: make(map[string][]*voltha.Port),
	}
	for _, d := range devices {
		mcs.Devices[d.Id] = d
	}
	return mcs
}

// Device returns the last record stored for id
func (mcs *MockCoreService) Device(id string) *voltha.Device {
	mcs.mutex.Lock()
	defer mcs.mutex.Unlock()
	return mcs.Devices[id]
}

// Ports returns the ports created for id
func (mcs *MockCoreService) Ports(id string) []*voltha.Port {
	mcs.mutex.Lock()
	defer mcs.mutex.Unlock()
	return append([]*voltha.Port(nil), mcs.DevicePorts[id]...)
}

// AddChild stores child as a device of parent
func (mcs *MockCoreService) AddChild(parentID string, child *voltha.Device) {
	mcs.mutex.Lock()
	defer mcs.mutex.Unlock()
	child.ParentId = parentID
	mcs.Devices[child.Id] = child
}

// AddPorts stores ports for device id
func (mcs *MockCoreService) AddPorts(id string, ports ...*voltha.Port) {
	mcs.mutex.Lock()
	defer mcs.mutex.Unlock()
	mcs.DevicePorts[id] = append(mcs.DevicePorts[id], ports...)
}

// GetHealthStatus implements mock GetHealthStatus
func (mcs *MockCoreService) GetHealthStatus(ctx context.Context, in *common.Connection, opts ...grpc.CallOption) (*health.HealthStatus, error) {
	return &health.HealthStatus{State: health.HealthStatus_HEALTHY}, nil
}

// RegisterAdapter implements mock RegisterAdapter
func (mcs *MockCoreService) RegisterAdapter(ctx context.Context, in *ca.AdapterRegistration, opts ...grpc.CallOption) (*empty.Empty, error) {
	if ctx == nil || in.Adapter == nil || in.DTypes == nil {
		return nil, errors.New("registerAdapter func parameters cannot be nil")
	}
	return &empty.Empty{}, nil
}

// DeviceUpdate implements mock DeviceUpdate
func (mcs *MockCoreService) DeviceUpdate(ctx context.Context, in *voltha.Device, opts ...grpc.CallOption) (*empty.Empty, error) {
	if in.Id == "" {
		return nil, errors.New("no Device")
	}
	mcs.mutex.Lock()
	defer mcs.mutex.Unlock()
	mcs.Devices[in.Id] = proto.Clone(in).(*voltha.Device)
	return &empty.Empty{}, nil
}

// PortCreated implements mock PortCreated
func (mcs *MockCoreService) PortCreated(ctx context.Context, in *voltha.Port, opts ...grpc.CallOption) (*empty.Empty, error) {
	if in.DeviceId == "" {
		return nil, errors.New("no deviceID")
	}
	if in.Type > 7 {
		return nil, errors.New("invalid porttype")
	}
	mcs.mutex.Lock()
	defer mcs.mutex.Unlock()
	mcs.DevicePorts[in.DeviceId] = append(mcs.DevicePorts[in.DeviceId], in)
	return &empty.Empty{}, nil
}

// PortsStateUpdate implements mock PortsStateUpdate
func (mcs *MockCoreService) PortsStateUpdate(ctx context.Context, in *ca.PortStateFilter, opts ...grpc.CallOption) (*empty.Empty, error) {
	if in.DeviceId == "" {
		return nil, errors.New("no Device")
	}
	return &empty.Empty{}, nil
}

// DeleteAllPorts implements mock DeleteAllPorts
func (mcs *MockCoreService) DeleteAllPorts(ctx context.Context, in *common.ID, opts ...grpc.CallOption) (*empty.Empty, error) {
	if in.Id == "" {
		return nil, errors.New("no Device id")
	}
	mcs.mutex.Lock()
	defer mcs.mutex.Unlock()
	delete(mcs.DevicePorts, in.Id)
	return &empty.Empty{}, nil
}

// GetDevicePort implements mock GetDevicePort
func (mcs *MockCoreService) GetDevicePort(ctx context.Context, in *ca.PortFilter, opts ...grpc.CallOption) (*voltha.Port, error) {
	mcs.mutex.Lock()
	defer mcs.mutex.Unlock()
	for _, port := range mcs.DevicePorts[in.DeviceId] {
		if port.PortNo == in.Port {
			return port, nil
		}
	}
	return nil, errors.New("device/port not found")
}

// ListDevicePorts implements mock ListDevicePorts
func (mcs *MockCoreService) ListDevicePorts(ctx context.Context, in *common.ID, opts ...grpc.CallOption) (*voltha.Ports, error) {
	mcs.mutex.Lock()
	defer mcs.mutex.Unlock()
	ports, have := mcs.DevicePorts[in.Id]
	if !have {
		return nil, errors.New("device id not found")
	}
	return &voltha.Ports{Items: ports}, nil
}

// DeviceStateUpdate implements mock DeviceStateUpdate
func (mcs *MockCoreService) DeviceStateUpdate(ctx context.Context, in *ca.DeviceStateFilter, opts ...grpc.CallOption) (*empty.Empty, error) {
	if in.DeviceId == "" {
		return nil, errors.New("no Device id")
	}
	mcs.mutex.Lock()
	defer mcs.mutex.Unlock()
	mcs.StateUpdates = append(mcs.StateUpdates, in)
	return &empty.Empty{}, nil
}

// DevicePMConfigUpdate implements mock DevicePMConfigUpdate
func (mcs *MockCoreService) DevicePMConfigUpdate(ctx context.Context, in *voltha.PmConfigs, opts ...grpc.CallOption) (*empty.Empty, error) {
	return &empty.Empty{}, nil
}

// ChildDeviceDetected implements mock ChildDeviceDetected
func (mcs *MockCoreService) ChildDeviceDetected(ctx context.Context, in *ca.DeviceDiscovery, opts ...grpc.CallOption) (*voltha.Device, error) {
	if in.ParentId == "" {
		return nil, errors.New("no deviceID")
	}
	return nil, errors.New("child detection is not supported")
}

// ChildDevicesLost implements mock ChildDevicesLost
func (mcs *MockCoreService) ChildDevicesLost(ctx context.Context, in *common.ID, opts ...grpc.CallOption) (*empty.Empty, error) {
	if in.Id == "" {
		return nil, errors.New("no device id")
	}
	return &empty.Empty{}, nil
}

// ChildDevicesDetected implements mock ChildDevicesDetected
func (mcs *MockCoreService) ChildDevicesDetected(ctx context.Context, in *common.ID, opts ...grpc.CallOption) (*empty.Empty, error) {
	if in.Id == "" {
		return nil, errors.New("no device id")
	}
	return &empty.Empty{}, nil
}

// GetDevice implements mock GetDevice
func (mcs *MockCoreService) GetDevice(ctx context.Context, in *common.ID, opts ...grpc.CallOption) (*voltha.Device, error) {
	if in.Id == "" {
		return &voltha.Device{}, errors.New("no deviceID")
	}
	mcs.mutex.Lock()
	defer mcs.mutex.Unlock()
	if d, ok := mcs.Devices[in.Id]; ok {
		return d, nil
	}
	return nil, errors.New("device detection failed")
}

// GetChildDevice implements mock GetChildDevice. A non-empty serial number
// takes precedence over the ONU id.
func (mcs *MockCoreService) GetChildDevice(ctx context.Context, in *ca.ChildDeviceFilter, opts ...grpc.CallOption) (*voltha.Device, error) {
	if in.ParentId == "" {
		return nil, errors.New("device detection failed")
	}
	mcs.mutex.Lock()
	defer mcs.mutex.Unlock()
	for _, val := range mcs.Devices {
		if val.ParentId != in.ParentId {
			continue
		}
		if in.SerialNumber != "" {
			if val.SerialNumber == in.SerialNumber {
				return val, nil
			}
			continue
		}
		if val.ProxyAddress != nil && val.ProxyAddress.OnuId == in.OnuId {
			return val, nil
		}
	}
	return nil, errors.New("device detection failed")
}

// GetChildDevices implements mock GetChildDevices
func (mcs *MockCoreService) GetChildDevices(ctx context.Context, in *common.ID, opts ...grpc.CallOption) (*voltha.Devices, error) {
	if in.Id == "" {
		return nil, errors.New("no deviceID")
	}
	mcs.mutex.Lock()
	defer mcs.mutex.Unlock()
	onuDevices := make([]*voltha.Device, 0)
	for _, val := range mcs.Devices {
		if val != nil && val.ParentId == in.Id {
			onuDevices = append(onuDevices, val)
		}
	}
	if len(onuDevices) > 0 {
		return &voltha.Devices{Items: onuDevices}, nil
	}
	return nil, errors.New("device detection failed")
}

// SendPacketIn implements mock SendPacketIn
func (mcs *MockCoreService) SendPacketIn(ctx context.Context, in *ca.PacketIn, opts ...grpc.CallOption) (*empty.Empty, error) {
	if in.DeviceId == "" {
		return nil, errors.New("no Device ID")
	}
	mcs.mutex.Lock()
	defer mcs.mutex.Unlock()
	if mcs.FailPacketIn {
		return nil, errors.New("packet-in-failed")
	}
	mcs.PacketsIn = append(mcs.PacketsIn, in)
	return &empty.Empty{}, nil
}

// ReceivedPacketsIn returns the packets sent up so far
func (mcs *MockCoreService) ReceivedPacketsIn() []*ca.PacketIn {
	mcs.mutex.Lock()
	defer mcs.mutex.Unlock()
	return append([]*ca.PacketIn(nil), mcs.PacketsIn...)
}

// DeviceReasonUpdate implements mock DeviceReasonUpdate
func (mcs *MockCoreService) DeviceReasonUpdate(ctx context.Context, in *ca.DeviceReason, opts ...grpc.CallOption) (*empty.Empty, error) {
	if in.DeviceId == "" {
		return nil, errors.New("no Device ID")
	}
	mcs.mutex.Lock()
	defer mcs.mutex.Unlock()
	mcs.Reasons = append(mcs.Reasons, in)
	return &empty.Empty{}, nil
}

// PortStateUpdate implements mock PortStateUpdate
func (mcs *MockCoreService) PortStateUpdate(ctx context.Context, in *ca.PortState, opts ...grpc.CallOption) (*empty.Empty, error) {
	if in.DeviceId == "" {
		return nil, errors.New("no Device")
	}
	return &empty.Empty{}, nil
}

// ReconcileChildDevices implements mock ReconcileChildDevices
func (mcs *MockCoreService) ReconcileChildDevices(ctx context.Context, in *common.ID, opts ...grpc.CallOption) (*empty.Empty, error) {
	return &empty.Empty{}, nil
}

// GetChildDeviceWithProxyAddress implements mock GetChildDeviceWithProxyAddress
func (mcs *MockCoreService) GetChildDeviceWithProxyAddress(ctx context.Context, in *voltha.Device_ProxyAddress, opts ...grpc.CallOption) (*voltha.Device, error) {
	return nil, nil
}

// GetPorts implements mock GetPorts
func (mcs *MockCoreService) GetPorts(ctx context.Context, in *ca.PortFilter, opts ...grpc.CallOption) (*voltha.Ports, error) {
	mcs.mutex.Lock()
	defer mcs.mutex.Unlock()
	var ports []*voltha.Port
	for _, port := range mcs.DevicePorts[in.DeviceId] {
		if port.Type == in.PortType {
			ports = append(ports, port)
		}
	}
	return &voltha.Ports{Items: ports}, nil
}

// ChildrenStateUpdate implements mock ChildrenStateUpdate
func (mcs *MockCoreService) ChildrenStateUpdate(ctx context.Context, in *ca.DeviceStateFilter, opts ...grpc.CallOption) (*empty.Empty, error) {
	return &empty.Empty{}, nil
}

// UpdateImageDownload implements mock UpdateImageDownload
func (mcs *MockCoreService) UpdateImageDownload(ctx context.Context, in *voltha.ImageDownload, opts ...grpc.CallOption) (*empty.Empty, error) {
	return &empty.Empty{}, nil
}
