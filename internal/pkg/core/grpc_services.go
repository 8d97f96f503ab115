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

	"github.com/golang/protobuf/ptypes/empty"
	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/olterrors"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-protos/v5/go/adapter_service"
	"github.com/opencord/voltha-protos/v5/go/common"
	ca "github.com/opencord/voltha-protos/v5/go/core_adapter"
	"github.com/opencord/voltha-protos/v5/go/health"
	ia "github.com/opencord/voltha-protos/v5/go/inter_adapter"
	oltia "github.com/opencord/voltha-protos/v5/go/olt_inter_adapter_service"
	"github.com/opencord/voltha-protos/v5/go/voltha"
)

// AdapterService exposes device adoption, flow updates and packet out to the core.
// Other device lifecycle requests answer Unimplemented.
type AdapterService struct {
	adapter_service.UnimplementedAdapterServiceServer
	oltAdapter *Asfvolt16
}

// NewAdapterService returns the core facing service of oltAdapter
func NewAdapterService(oltAdapter *Asfvolt16) *AdapterService {
	return &AdapterService{oltAdapter: oltAdapter}
}

// AdoptDevice adopts an ASFvOLT16 device
func (as *AdapterService) AdoptDevice(ctx context.Context, device *voltha.Device) (*empty.Empty, error) {
	if err := as.oltAdapter.AdoptDevice(ctx, device); err != nil {
		return nil, err
	}
	return &empty.Empty{}, nil
}

// UpdateFlowsBulk installs the complete flow table of a device
func (as *AdapterService) UpdateFlowsBulk(ctx context.Context, flows *ca.BulkFlows) (*empty.Empty, error) {
	if err := as.oltAdapter.UpdateFlowsBulk(ctx, flows.GetDevice(), flows.GetFlows().GetItems()); err != nil {
		return nil, err
	}
	return &empty.Empty{}, nil
}

// UpdateFlowsIncrementally installs the flows added to a device
func (as *AdapterService) UpdateFlowsIncrementally(ctx context.Context, incrFlows *ca.IncrementalFlows) (*empty.Empty, error) {
	if err := as.oltAdapter.UpdateFlowsIncrementally(ctx, incrFlows.GetDevice(), incrFlows.GetFlows()); err != nil {
		return nil, err
	}
	return &empty.Empty{}, nil
}

// SendPacketOut sends a controller packet to a UNI port
func (as *AdapterService) SendPacketOut(ctx context.Context, packet *ca.PacketOut) (*empty.Empty, error) {
	if err := as.oltAdapter.ReceivePacketOut(ctx, packet.GetDeviceId(), packet.GetEgressPortNo(), packet.GetPacket()); err != nil {
		return nil, err
	}
	return &empty.Empty{}, nil
}

// OltInterAdapterService serves the requests ONU adapters send to their parent OLT
type OltInterAdapterService struct {
	oltia.UnimplementedOltInterAdapterServiceServer
	oltAdapter *Asfvolt16
}

// NewOltInterAdapterService returns the ONU adapter facing service of oltAdapter
func NewOltInterAdapterService(oltAdapter *Asfvolt16) *OltInterAdapterService {
	return &OltInterAdapterService{oltAdapter: oltAdapter}
}

// GetHealthStatus is used as a service readiness validation as a grpc connection
func (oi *OltInterAdapterService) GetHealthStatus(ctx context.Context, conn *common.Connection) (*health.HealthStatus, error) {
	return &health.HealthStatus{State: health.HealthStatus_HEALTHY}, nil
}

// ProxyOmciRequest proxies an OMCI request from the child adapter
func (oi *OltInterAdapterService) ProxyOmciRequest(ctx context.Context, request *ia.OmciMessage) (*empty.Empty, error) {
	if err := oi.oltAdapter.ProxyOmciMessage(ctx, request); err != nil {
		return nil, err
	}
	return &empty.Empty{}, nil
}

// GetTechProfileInstance is not supported, ASFvOLT16 schedulers come from the provisioning graph
func (oi *OltInterAdapterService) GetTechProfileInstance(ctx context.Context, request *ia.TechProfileInstanceRequestMessage) (*ia.TechProfileDownloadMessage, error) {
	logger.Warnw(ctx, "tech-profile-request-not-supported", log.Fields{"request": request})
	return nil, olterrors.ErrNotImplemented
}
