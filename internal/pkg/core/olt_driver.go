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

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_opentracing "github.com/grpc-ecosystem/go-grpc-middleware/tracing/opentracing"
	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/olterrors"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	oop "github.com/opencord/voltha-protos/v5/go/openolt"
	tp_pb "github.com/opencord/voltha-protos/v5/go/tech_profile"
	"github.com/opencord/voltha-protos/v5/go/voltha"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// aggPortOwner is the scheduler owner type of a TCONT
	aggPortOwner = "agg_port"
)

// OnuInfo identifies an ONU to be activated on a PON port
type OnuInfo struct {
	PonID          uint32
	OnuID          uint32
	VendorID       string
	VendorSpecific string
}

// SchedulerOwner describes the entity a hardware scheduler is attached to
type SchedulerOwner struct {
	Type    string
	IntfID  uint32
	OnuID   uint32
	AllocID uint32
}

// IndicationStream is a source of hardware indications
type IndicationStream interface {
	Recv() (*oop.Indication, error)
}

// HardwareDriver is the set of calls the adapter makes into the OLT
type HardwareDriver interface {
	ConnectOlt(ctx context.Context, address string, oltID string) error
	ActivateOlt(ctx context.Context) error
	ActivatePonPort(ctx context.Context, oltID string, ponID uint32) error
	ActivateOnu(ctx context.Context, onu OnuInfo) error
	CreateScheduler(ctx context.Context, id uint32, direction string, owner SchedulerOwner, queueDepth uint32) error
	AddFlow(ctx context.Context, flow *oop.Flow) error
	SendOmciRequest(ctx context.Context, proxyAddress *voltha.Device_ProxyAddress, payload []byte) error
	PacketOut(ctx context.Context, onuID uint32, egressPort uint32, payload []byte) error
	Indications(ctx context.Context) (IndicationStream, error)
}

// openoltClient is the subset of oop.OpenoltClient used by the driver
type openoltClient interface {
	ReenableOlt(ctx context.Context, in *oop.Empty, opts ...grpc.CallOption) (*oop.Empty, error)
	EnablePonIf(ctx context.Context, in *oop.Interface, opts ...grpc.CallOption) (*oop.Empty, error)
	ActivateOnu(ctx context.Context, in *oop.Onu, opts ...grpc.CallOption) (*oop.Empty, error)
	CreateTrafficSchedulers(ctx context.Context, in *tp_pb.TrafficSchedulers, opts ...grpc.CallOption) (*oop.Empty, error)
	FlowAdd(ctx context.Context, in *oop.Flow, opts ...grpc.CallOption) (*oop.Empty, error)
	OmciMsgOut(ctx context.Context, in *oop.OmciMsg, opts ...grpc.CallOption) (*oop.Empty, error)
	OnuPacketOut(ctx context.Context, in *oop.OnuPacket, opts ...grpc.CallOption) (*oop.Empty, error)
	EnableIndication(ctx context.Context, in *oop.Empty, opts ...grpc.CallOption) (oop.Openolt_EnableIndicationClient, error)
}

// openoltDriver implements HardwareDriver over the openolt gRPC API
type openoltDriver struct {
	clientCon   *grpc.ClientConn
	client      openoltClient
	oltID       string
	dialTimeout time.Duration
}

// NewOpenoltDriver returns a driver that is connected by ConnectOlt
func NewOpenoltDriver(dialTimeout time.Duration) HardwareDriver {
	return &openoltDriver{dialTimeout: dialTimeout}
}

func newOpenoltDriverWithClient(client openoltClient) *openoltDriver {
	return &openoltDriver{client: client}
}

func isAlreadyExists(err error) bool {
	st, _ := status.FromError(err)
	return st.Code() == codes.AlreadyExists
}

// ConnectOlt dials the agent at address
func (d *openoltDriver) ConnectOlt(ctx context.Context, address string, oltID string) error {
	var err error

	// if the connection is already available, close the previous connection (olt reboot case)
	if d.clientCon != nil {
		if err = d.clientCon.Close(); err != nil {
			logger.Errorw(ctx, "failed-to-close-previous-connection", log.Fields{"device-id": oltID})
		}
	}

	logger.Debugw(ctx, "dialing-grpc", log.Fields{"device-id": oltID, "host-and-port": address})
	dialCtx, cancel := context.WithTimeout(ctx, d.dialTimeout)
	defer cancel()
	// Use Interceptors to automatically inject and publish Open Tracing Spans by this GRPC client
	d.clientCon, err = grpc.DialContext(dialCtx, address,
		grpc.WithInsecure(),
		grpc.WithBlock(),
		grpc.WithStreamInterceptor(grpc_middleware.ChainStreamClient(
			grpc_opentracing.StreamClientInterceptor(grpc_opentracing.WithTracer(log.ActiveTracerProxy{})),
		)),
		grpc.WithUnaryInterceptor(grpc_middleware.ChainUnaryClient(
			grpc_opentracing.UnaryClientInterceptor(grpc_opentracing.WithTracer(log.ActiveTracerProxy{})),
		)))
	if err != nil {
		return olterrors.NewErrCommunication("dial-failure", log.Fields{
			"device-id":     oltID,
			"host-and-port": address}, err)
	}
	d.client = oop.NewOpenoltClient(d.clientCon)
	d.oltID = oltID
	return nil
}

func (d *openoltDriver) connected() error {
	if d.client == nil {
		return olterrors.NewErrCommunication("no-connection", log.Fields{"device-id": d.oltID}, nil)
	}
	return nil
}

// ActivateOlt enables the OLT
func (d *openoltDriver) ActivateOlt(ctx context.Context) error {
	if err := d.connected(); err != nil {
		return err
	}
	if _, err := d.client.ReenableOlt(log.WithSpanFromContext(context.Background(), ctx), &oop.Empty{}); err != nil && !isAlreadyExists(err) {
		return olterrors.NewErrAdapter("olt-activate-failed", log.Fields{"device-id": d.oltID}, err)
	}
	return nil
}

// ActivatePonPort enables the PON interface ponID
func (d *openoltDriver) ActivatePonPort(ctx context.Context, oltID string, ponID uint32) error {
	if err := d.connected(); err != nil {
		return err
	}
	ponIntf := &oop.Interface{IntfId: ponID}
	if _, err := d.client.EnablePonIf(log.WithSpanFromContext(context.Background(), ctx), ponIntf); err != nil && !isAlreadyExists(err) {
		return olterrors.NewErrAdapter("pon-port-enable-failed", log.Fields{
			"device-id": oltID,
			"intf-id":   ponID}, err)
	}
	logger.Infow(ctx, "enabled-pon-port", log.Fields{"device-id": oltID, "intf-id": ponID})
	return nil
}

func vendorSpecificBytes(vendorSpecific string) []byte {
	if decoded, err := hex.DecodeString(vendorSpecific); err == nil {
		return decoded
	}
	return []byte(vendorSpecific)
}

// ActivateOnu activates the ONU described by onu
func (d *openoltDriver) ActivateOnu(ctx context.Context, onu OnuInfo) error {
	if err := d.connected(); err != nil {
		return err
	}
	Onu := oop.Onu{
		IntfId: onu.PonID,
		OnuId:  onu.OnuID,
		SerialNumber: &oop.SerialNumber{
			VendorId:       []byte(onu.VendorID),
			VendorSpecific: vendorSpecificBytes(onu.VendorSpecific),
		},
	}
	if _, err := d.client.ActivateOnu(log.WithSpanFromContext(context.Background(), ctx), &Onu); err != nil {
		if isAlreadyExists(err) {
			logger.Debugw(ctx, "onu-activation-in-progress", log.Fields{"intf-id": onu.PonID, "onu-id": onu.OnuID})
			return nil
		}
		return olterrors.NewErrAdapter("onu-activate-failed", log.Fields{"intf-id": onu.PonID, "onu-id": onu.OnuID}, err)
	}
	logger.Infow(ctx, "activated-onu", log.Fields{"intf-id": onu.PonID, "onu-id": onu.OnuID, "vendor-id": onu.VendorID})
	return nil
}

func schedulerDirection(direction string) tp_pb.Direction {
	if direction == Downstream {
		return tp_pb.Direction_DOWNSTREAM
	}
	return tp_pb.Direction_UPSTREAM
}

// CreateScheduler creates a scheduler with the given id for owner. The agent sizes
// its queues itself so queueDepth is only reported.
func (d *openoltDriver) CreateScheduler(ctx context.Context, id uint32, direction string, owner SchedulerOwner, queueDepth uint32) error {
	if err := d.connected(); err != nil {
		return err
	}
	dir := schedulerDirection(direction)
	scheds := &tp_pb.TrafficSchedulers{
		IntfId: owner.IntfID,
		OnuId:  owner.OnuID,
		TrafficScheds: []*tp_pb.TrafficScheduler{{
			Direction: dir,
			AllocId:   id,
			Scheduler: &tp_pb.SchedulerConfig{
				Direction:    dir,
				AdditionalBw: tp_pb.AdditionalBW_AdditionalBW_BestEffort,
				SchedPolicy:  tp_pb.SchedulingPolicy_WRR,
			},
		}},
	}
	logger.Debugw(ctx, "creating-traffic-scheduler", log.Fields{
		"sched-id":    id,
		"direction":   direction,
		"owner-type":  owner.Type,
		"intf-id":     owner.IntfID,
		"onu-id":      owner.OnuID,
		"alloc-id":    owner.AllocID,
		"queue-depth": queueDepth})
	if _, err := d.client.CreateTrafficSchedulers(log.WithSpanFromContext(context.Background(), ctx), scheds); err != nil && !isAlreadyExists(err) {
		return olterrors.NewErrAdapter("failed-to-create-traffic-schedulers", log.Fields{
			"sched-id": id,
			"intf-id":  owner.IntfID,
			"onu-id":   owner.OnuID}, err)
	}
	return nil
}

// AddFlow installs flow on the device
func (d *openoltDriver) AddFlow(ctx context.Context, flow *oop.Flow) error {
	if err := d.connected(); err != nil {
		return err
	}
	_, err := d.client.FlowAdd(log.WithSpanFromContext(context.Background(), ctx), flow)
	if err != nil {
		if isAlreadyExists(err) {
			logger.Debugw(ctx, "flow-already-exists", log.Fields{"flow-id": flow.FlowId})
			return nil
		}
		return olterrors.NewErrFlowOp("add", flow.FlowId, log.Fields{"flow": flow}, err)
	}
	logger.Debugw(ctx, "flow-added-to-device-successfully", log.Fields{"flow-id": flow.FlowId, "flow-type": flow.FlowType})
	return nil
}

// SendOmciRequest relays an OMCI message to the ONU behind proxyAddress
func (d *openoltDriver) SendOmciRequest(ctx context.Context, proxyAddress *voltha.Device_ProxyAddress, payload []byte) error {
	if err := d.connected(); err != nil {
		return err
	}
	// The agent expects a hex encoded OMCI message
	hexPkt := make([]byte, hex.EncodedLen(len(payload)))
	hex.Encode(hexPkt, payload)
	omciMessage := &oop.OmciMsg{IntfId: proxyAddress.GetChannelId(), OnuId: proxyAddress.GetOnuId(), Pkt: hexPkt}
	if _, err := d.client.OmciMsgOut(log.WithSpanFromContext(context.Background(), ctx), omciMessage); err != nil {
		return olterrors.NewErrCommunication("omci-send-failed", log.Fields{
			"intf-id": proxyAddress.GetChannelId(),
			"onu-id":  proxyAddress.GetOnuId()}, err)
	}
	return nil
}

// PacketOut sends payload to the UNI egressPort of ONU onuID
func (d *openoltDriver) PacketOut(ctx context.Context, onuID uint32, egressPort uint32, payload []byte) error {
	if err := d.connected(); err != nil {
		return err
	}
	onuPkt := oop.OnuPacket{OnuId: onuID, PortNo: egressPort, Pkt: payload}
	if _, err := d.client.OnuPacketOut(log.WithSpanFromContext(context.Background(), ctx), &onuPkt); err != nil {
		return olterrors.NewErrCommunication("packet-out-send", log.Fields{
			"destination":        "onu",
			"egress-port-number": egressPort,
			"onu-id":             onuID,
			"packet":             hex.EncodeToString(payload)}, err)
	}
	return nil
}

// Indications subscribes to the device indication stream
func (d *openoltDriver) Indications(ctx context.Context) (IndicationStream, error) {
	if err := d.connected(); err != nil {
		return nil, err
	}
	indications, err := d.client.EnableIndication(ctx, new(oop.Empty))
	if err != nil {
		return nil, olterrors.NewErrCommunication("indication-read-failure", log.Fields{"device-id": d.oltID}, err)
	}
	return indications, nil
}
