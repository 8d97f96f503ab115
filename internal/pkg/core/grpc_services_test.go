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
	"errors"
	"testing"
	"time"

	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/olterrors"
	fu "github.com/opencord/voltha-lib-go/v7/pkg/flows"
	"github.com/opencord/voltha-protos/v5/go/common"
	ca "github.com/opencord/voltha-protos/v5/go/core_adapter"
	"github.com/opencord/voltha-protos/v5/go/health"
	ia "github.com/opencord/voltha-protos/v5/go/inter_adapter"
	ofp "github.com/opencord/voltha-protos/v5/go/openflow_13"
	"github.com/opencord/voltha-protos/v5/go/voltha"
	"github.com/stretchr/testify/assert"
)

func TestAdapterService_AdoptDevice(t *testing.T) {
	ta := newTestAdapter(nil)
	defer func() { _ = ta.adapter.Stop(context.Background()) }()
	svc := NewAdapterService(ta.adapter)

	resp, err := svc.AdoptDevice(context.Background(), nil)
	assert.Nil(t, resp)
	assert.Error(t, err)

	resp, err = svc.AdoptDevice(context.Background(), newTestOlt())
	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.NotNil(t, ta.adapter.GetDeviceHandler(testOltID))
}

func TestOltInterAdapterService(t *testing.T) {
	ta := newTestAdapter(nil)
	defer func() { _ = ta.adapter.Stop(context.Background()) }()
	ctx := context.Background()
	svc := NewOltInterAdapterService(ta.adapter)

	status, err := svc.GetHealthStatus(ctx, &common.Connection{Endpoint: "onu-adapter"})
	assert.NoError(t, err)
	assert.Equal(t, health.HealthStatus_HEALTHY, status.State)

	_, err = svc.GetTechProfileInstance(ctx, &ia.TechProfileInstanceRequestMessage{})
	assert.True(t, errors.Is(err, olterrors.ErrNotImplemented))

	request := &ia.OmciMessage{
		ParentDeviceId: "olt-9",
		ProxyAddress:   &voltha.Device_ProxyAddress{DeviceId: "olt-9", OnuId: 1},
		Message:        []byte{0x01},
	}
	_, err = svc.ProxyOmciRequest(ctx, request)
	var nf *olterrors.ErrNotFound
	assert.True(t, errors.As(err, &nf))
}

// newAdoptedAdapter adopts the test OLT and provisions the subscriber of ONU 1 on it
func newAdoptedAdapter(t *testing.T) (*testAdapter, *DeviceHandler) {
	ta := newTestAdapter(nil)
	ta.coreService.AddChild(testOltID, newTestOnu(common.OperStatus_ACTIVE))
	assert.NoError(t, ta.adapter.AdoptDevice(context.Background(), newTestOlt()))
	handler := ta.adapter.GetDeviceHandler(testOltID)
	assert.NotNil(t, handler)
	assert.Eventually(t, func() bool {
		return handler.transitionMap.CurrentState() == deviceStateActivating
	}, 5*time.Second, 10*time.Millisecond)
	provisionSubscriber(t, &testEnv{dh: handler})
	return ta, handler
}

func TestAdapterService_UpdateFlowsBulk(t *testing.T) {
	unsupported := mkFlow(t, []*ofp.OfpOxmOfbField{fu.TunnelId(536870912)}, []*ofp.OfpAction{fu.Output(50)})
	tests := []struct {
		name    string
		flows   func(t *testing.T) *ca.BulkFlows
		wantErr func(err error) bool
		wantIDs []uint64
	}{
		{"eapol",
			func(t *testing.T) *ca.BulkFlows {
				return &ca.BulkFlows{Device: newTestOlt(), Flows: &ofp.Flows{Items: []*ofp.OfpFlowStats{eapolFlow(t, 21)}}}
			},
			nil, []uint64{8193, 8202}},
		{"unsupported-then-eapol",
			func(t *testing.T) *ca.BulkFlows {
				return &ca.BulkFlows{Device: newTestOlt(), Flows: &ofp.Flows{Items: []*ofp.OfpFlowStats{unsupported, eapolFlow(t, 21)}}}
			},
			func(err error) bool { var e *olterrors.ErrUnsupportedField; return errors.As(err, &e) },
			[]uint64{8193, 8202}},
		{"unknown-device",
			func(t *testing.T) *ca.BulkFlows {
				return &ca.BulkFlows{Device: &voltha.Device{Id: "olt-9"}, Flows: &ofp.Flows{Items: []*ofp.OfpFlowStats{eapolFlow(t, 21)}}}
			},
			func(err error) bool { var e *olterrors.ErrNotFound; return errors.As(err, &e) },
			nil},
		{"no-device",
			func(t *testing.T) *ca.BulkFlows { return &ca.BulkFlows{} },
			func(err error) bool { var e *olterrors.ErrInvalidValue; return errors.As(err, &e) },
			nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta, _ := newAdoptedAdapter(t)
			defer func() { _ = ta.adapter.Stop(context.Background()) }()
			svc := NewAdapterService(ta.adapter)

			resp, err := svc.UpdateFlowsBulk(context.Background(), tt.flows(t))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				assert.NotNil(t, resp)
			} else {
				assert.Nil(t, resp)
				assert.True(t, tt.wantErr(err))
			}
			assert.Equal(t, tt.wantIDs, ta.lastDriver().addedFlowIDs())
		})
	}
}

func TestAdapterService_UpdateFlowsIncrementally(t *testing.T) {
	ta, _ := newAdoptedAdapter(t)
	defer func() { _ = ta.adapter.Stop(context.Background()) }()
	ctx := context.Background()
	svc := NewAdapterService(ta.adapter)

	// removals are ignored and only the added flows reach the device
	changes := &ofp.FlowChanges{
		ToAdd:    &ofp.Flows{Items: []*ofp.OfpFlowStats{eapolFlow(t, 21)}},
		ToRemove: &ofp.Flows{Items: []*ofp.OfpFlowStats{pushVlanFlow(t, 21)}},
	}
	resp, err := svc.UpdateFlowsIncrementally(ctx, &ca.IncrementalFlows{Device: newTestOlt(), Flows: changes})
	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, []uint64{8193, 8202}, ta.lastDriver().addedFlowIDs())

	_, err = svc.UpdateFlowsIncrementally(ctx, &ca.IncrementalFlows{Device: &voltha.Device{Id: "olt-9"}, Flows: changes})
	var nf *olterrors.ErrNotFound
	assert.True(t, errors.As(err, &nf))
	assert.Len(t, ta.lastDriver().addedFlows(), 2)
}

func TestAdapterService_SendPacketOut(t *testing.T) {
	ta, _ := newAdoptedAdapter(t)
	defer func() { _ = ta.adapter.Stop(context.Background()) }()
	ctx := context.Background()
	svc := NewAdapterService(ta.adapter)
	frame := untaggedFrame(t)

	resp, err := svc.SendPacketOut(ctx, &ca.PacketOut{DeviceId: testOltID, EgressPortNo: 21, Packet: &ofp.OfpPacketOut{Data: frame}})
	assert.NoError(t, err)
	assert.NotNil(t, resp)

	_, err = svc.SendPacketOut(ctx, &ca.PacketOut{DeviceId: "olt-9", EgressPortNo: 21, Packet: &ofp.OfpPacketOut{Data: frame}})
	var nf *olterrors.ErrNotFound
	assert.True(t, errors.As(err, &nf))

	_, err = svc.SendPacketOut(ctx, &ca.PacketOut{DeviceId: testOltID, EgressPortNo: 4095, Packet: &ofp.OfpPacketOut{Data: frame}})
	var iv *olterrors.ErrInvalidValue
	assert.True(t, errors.As(err, &iv))

	d := ta.lastDriver()
	d.mutex.Lock()
	defer d.mutex.Unlock()
	assert.Len(t, d.packetsOut, 1)
	assert.Equal(t, uint32(21), d.packetsOut[0].egressPort)
	port, untagged, ok := popDoubleTag(d.packetsOut[0].payload)
	assert.True(t, ok)
	assert.Equal(t, uint16(21), port)
	assert.Equal(t, frame, untagged)
}
