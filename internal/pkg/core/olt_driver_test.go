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

	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/olterrors"
	"github.com/opencord/voltha-asfvolt16-adapter/pkg/mocks"
	oop "github.com/opencord/voltha-protos/v5/go/openolt"
	tp_pb "github.com/opencord/voltha-protos/v5/go/tech_profile"
	"github.com/opencord/voltha-protos/v5/go/voltha"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newMockDriver(t *testing.T) (*openoltDriver, *mocks.MockOpenoltClient) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockOpenoltClient(ctrl)
	return newOpenoltDriverWithClient(client), client
}

func TestOpenoltDriver_NotConnected(t *testing.T) {
	d := NewOpenoltDriver(0).(*openoltDriver)
	ctx := context.Background()
	var comm *olterrors.ErrCommunication

	tests := []struct {
		name string
		call func() error
	}{
		{"activate-olt", func() error { return d.ActivateOlt(ctx) }},
		{"activate-pon", func() error { return d.ActivatePonPort(ctx, testOltID, 0) }},
		{"activate-onu", func() error { return d.ActivateOnu(ctx, OnuInfo{}) }},
		{"scheduler", func() error { return d.CreateScheduler(ctx, 1024, Upstream, SchedulerOwner{}, 8) }},
		{"add-flow", func() error { return d.AddFlow(ctx, &oop.Flow{}) }},
		{"omci", func() error { return d.SendOmciRequest(ctx, &voltha.Device_ProxyAddress{}, nil) }},
		{"packet-out", func() error { return d.PacketOut(ctx, 1, 21, nil) }},
		{"indications", func() error { _, err := d.Indications(ctx); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.As(tt.call(), &comm))
		})
	}
}

func TestOpenoltDriver_ActivateOlt(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"enabled", nil, false},
		{"already-enabled", status.Error(codes.AlreadyExists, "enabled"), false},
		{"unavailable", status.Error(codes.Unavailable, "down"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, client := newMockDriver(t)
			client.EXPECT().ReenableOlt(gomock.Any(), gomock.Any()).Return(&oop.Empty{}, tt.err)
			err := d.ActivateOlt(context.Background())
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestOpenoltDriver_ActivatePonPort(t *testing.T) {
	d, client := newMockDriver(t)
	client.EXPECT().EnablePonIf(gomock.Any(), &oop.Interface{IntfId: 3}).Return(&oop.Empty{}, nil)
	assert.NoError(t, d.ActivatePonPort(context.Background(), testOltID, 3))

	client.EXPECT().EnablePonIf(gomock.Any(), gomock.Any()).Return(nil, errors.New("failed"))
	assert.Error(t, d.ActivatePonPort(context.Background(), testOltID, 4))
}

func TestOpenoltDriver_ActivateOnu(t *testing.T) {
	d, client := newMockDriver(t)
	want := &oop.Onu{
		IntfId:       0,
		OnuId:        1,
		SerialNumber: &oop.SerialNumber{VendorId: []byte("BRCM"), VendorSpecific: []byte{0x12, 0x34, 0x56, 0x78}},
	}
	client.EXPECT().ActivateOnu(gomock.Any(), want).Return(&oop.Empty{}, nil)
	client.EXPECT().ActivateOnu(gomock.Any(), gomock.Any()).Return(nil, status.Error(codes.AlreadyExists, "in progress"))
	client.EXPECT().ActivateOnu(gomock.Any(), gomock.Any()).Return(nil, status.Error(codes.Internal, "failed"))

	onu := OnuInfo{PonID: 0, OnuID: 1, VendorID: "BRCM", VendorSpecific: "12345678"}
	assert.NoError(t, d.ActivateOnu(context.Background(), onu))
	assert.NoError(t, d.ActivateOnu(context.Background(), onu))
	assert.Error(t, d.ActivateOnu(context.Background(), onu))
}

func TestVendorSpecificBytes(t *testing.T) {
	assert.Equal(t, []byte{0x12, 0x34, 0x56, 0x78}, vendorSpecificBytes("12345678"))
	assert.Equal(t, []byte("XYZ"), vendorSpecificBytes("XYZ"))
}

func TestOpenoltDriver_CreateScheduler(t *testing.T) {
	d, client := newMockDriver(t)
	want := &tp_pb.TrafficSchedulers{
		IntfId: 0,
		OnuId:  1,
		TrafficScheds: []*tp_pb.TrafficScheduler{{
			Direction: tp_pb.Direction_UPSTREAM,
			AllocId:   1024,
			Scheduler: &tp_pb.SchedulerConfig{
				Direction:    tp_pb.Direction_UPSTREAM,
				AdditionalBw: tp_pb.AdditionalBW_AdditionalBW_BestEffort,
				SchedPolicy:  tp_pb.SchedulingPolicy_WRR,
			},
		}},
	}
	client.EXPECT().CreateTrafficSchedulers(gomock.Any(), want).Return(&oop.Empty{}, nil)
	owner := SchedulerOwner{Type: aggPortOwner, IntfID: 0, OnuID: 1, AllocID: 1024}
	assert.NoError(t, d.CreateScheduler(context.Background(), 1024, Upstream, owner, 8))
	assert.Equal(t, tp_pb.Direction_DOWNSTREAM, schedulerDirection(Downstream))
}

func TestOpenoltDriver_AddFlow(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"added", nil, false},
		{"already-exists", status.Error(codes.AlreadyExists, "exists"), false},
		{"rejected", status.Error(codes.InvalidArgument, "bad"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, client := newMockDriver(t)
			flow := &oop.Flow{FlowId: 8193}
			client.EXPECT().FlowAdd(gomock.Any(), flow).Return(&oop.Empty{}, tt.err)
			err := d.AddFlow(context.Background(), flow)
			if tt.wantErr {
				var flowErr *olterrors.ErrFlowOp
				assert.True(t, errors.As(err, &flowErr))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpenoltDriver_SendOmciRequest(t *testing.T) {
	d, client := newMockDriver(t)
	client.EXPECT().OmciMsgOut(gomock.Any(), &oop.OmciMsg{IntfId: 2, OnuId: 1, Pkt: []byte("cafe")}).Return(&oop.Empty{}, nil)
	assert.NoError(t, d.SendOmciRequest(context.Background(), &voltha.Device_ProxyAddress{ChannelId: 2, OnuId: 1}, []byte{0xca, 0xfe}))
}

func TestOpenoltDriver_PacketOut(t *testing.T) {
	d, client := newMockDriver(t)
	client.EXPECT().OnuPacketOut(gomock.Any(), &oop.OnuPacket{OnuId: 1, PortNo: 21, Pkt: []byte{0x01}}).Return(&oop.Empty{}, nil)
	client.EXPECT().OnuPacketOut(gomock.Any(), gomock.Any()).Return(nil, errors.New("failed"))
	assert.NoError(t, d.PacketOut(context.Background(), 1, 21, []byte{0x01}))
	var comm *olterrors.ErrCommunication
	assert.True(t, errors.As(d.PacketOut(context.Background(), 1, 21, []byte{0x01}), &comm))
}

func TestOpenoltDriver_Indications(t *testing.T) {
	d, client := newMockDriver(t)
	client.EXPECT().EnableIndication(gomock.Any(), gomock.Any()).Return(nil, errors.New("unavailable"))
	_, err := d.Indications(context.Background())
	var comm *olterrors.ErrCommunication
	assert.True(t, errors.As(err, &comm))
}
