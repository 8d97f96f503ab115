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
	"sync"
	"time"

	"github.com/cenkalti/backoff/v3"
	"github.com/gogo/protobuf/proto"
	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/config"
	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/olterrors"
	rsrcMgr "github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/resourcemanager"
	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/xpon"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	ofp "github.com/opencord/voltha-protos/v5/go/openflow_13"
	oop "github.com/opencord/voltha-protos/v5/go/openolt"
	"github.com/opencord/voltha-protos/v5/go/voltha"
)

const (
	oltVendor = "Edgecore"
	oltModel  = "ASFvOLT16"

	nniPortLabel = "NNI facing Ethernet port"

	reasonNoHostAndPort   = "No host_and_port field provided"
	reasonActivated       = "OLT activated successfully"
	reasonActivationError = "Failed to Intialize OLT"
)

// retryScheduler runs f once after d has elapsed
type retryScheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// AccessTerminalIndication is the outcome of an OLT activation
type AccessTerminalIndication struct {
	ActivationSuccessful bool
}

//DeviceHandler will interact with the OLT device.
type DeviceHandler struct {
	device        *voltha.Device
	cfg           *config.AdapterFlags
	coreProxy     CoreProxy
	publisher     InterAdapterPublisher
	driver        HardwareDriver
	eventMgr      *OltEventMgr
	graph         *xpon.Graph
	resourceMgr   *rsrcMgr.AsfResourceMgr
	flowMgr       *OltFlowMgr
	transitionMap *TransitionMap
	// lockDevice serialises graph mutation, flow updates and packet out
	lockDevice sync.Mutex

	nniPort             uint32
	packetInVlan        uint32
	gemTrafficClass     uint32
	schedulerQueueDepth uint32

	retry              retryScheduler
	resolveDestination DestinationResolver
	oltConnected       bool

	stopIndications chan bool
}

// NewDeviceHandler creates a new device handler. resourceMgr may be nil, in
// which case nothing is persisted.
func NewDeviceHandler(cp CoreProxy, publisher InterAdapterPublisher, ep EventSender, driver HardwareDriver,
	resourceMgr *rsrcMgr.AsfResourceMgr, device *voltha.Device, cfg *config.AdapterFlags) *DeviceHandler {
	var dh DeviceHandler
	dh.coreProxy = cp
	dh.publisher = publisher
	dh.driver = driver
	dh.resourceMgr = resourceMgr
	cloned := (proto.Clone(device)).(*voltha.Device)
	dh.device = cloned
	dh.cfg = cfg
	dh.nniPort = uint32(cfg.NniPort)
	dh.packetInVlan = uint32(cfg.PacketInVlan)
	dh.gemTrafficClass = uint32(cfg.GemTrafficClass)
	dh.schedulerQueueDepth = uint32(cfg.SchedulerQueueDepth)
	dh.graph = xpon.NewGraph(uint32(cfg.UniPortBase), uint32(cfg.MaxGemPortID))
	dh.eventMgr = NewEventMgr(ep, &dh)
	dh.flowMgr = NewFlowManager(&dh)
	dh.transitionMap = NewTransitionMap(&dh)
	dh.retry = timerScheduler{}
	dh.resolveDestination = defaultDestinationResolver
	dh.stopIndications = make(chan bool, 1)
	return &dh
}

// AdoptDevice populates the device record and activates the OLT
func (dh *DeviceHandler) AdoptDevice(ctx context.Context) error {
	logger.Infow(ctx, "adopting-device", log.Fields{"device-id": dh.device.Id})
	if err := dh.transitionMap.Handle(ctx, DeviceInit); err != nil {
		return err
	}
	dh.Activate(ctx)
	return nil
}

// Activate connects to and activates the OLT. A failure moves the device to
// FAILED and schedules the next attempt.
func (dh *DeviceHandler) Activate(ctx context.Context) {
	err := dh.transitionMap.Handle(ctx, ActivateOlt)
	if err == nil {
		return
	}
	if errors.Is(err, olterrors.ErrStateTransition) {
		logger.Infow(ctx, "activation-not-required", log.Fields{
			"device-id": dh.device.Id,
			"state":     dh.transitionMap.CurrentState().String()})
		return
	}
	logger.Errorw(ctx, "olt-activation-failed", log.Fields{"device-id": dh.device.Id, "error": err})
	if err := dh.transitionMap.Handle(ctx, OltActivationFailed); err != nil {
		logger.Errorw(ctx, "failed-to-mark-activation-failure", log.Fields{"device-id": dh.device.Id, "error": err})
	}
}

func (dh *DeviceHandler) updateDevice(ctx context.Context) error {
	if err := dh.coreProxy.UpdateDevice(ctx, dh.device); err != nil {
		return olterrors.NewErrAdapter("device-update-failed", log.Fields{"device-id": dh.device.Id}, err)
	}
	return nil
}

func (dh *DeviceHandler) addPort(ctx context.Context, portNo uint32, portType voltha.Port_PortType, label string) error {
	port := &voltha.Port{
		PortNo:     portNo,
		Label:      label,
		Type:       portType,
		AdminState: voltha.AdminState_ENABLED,
		OperStatus: voltha.OperStatus_ACTIVE,
		DeviceId:   dh.device.Id,
	}
	if err := dh.coreProxy.AddPort(ctx, port); err != nil {
		return olterrors.NewErrAdapter("failed-to-add-port", log.Fields{
			"device-id": dh.device.Id,
			"port-no":   portNo,
			"port-type": portType,
			"label":     label}, err)
	}
	logger.Debugw(ctx, "port-added", log.Fields{"device-id": dh.device.Id, "port-no": portNo, "label": label})
	return nil
}

// doStateInit fills in the device record and registers the NNI port
func (dh *DeviceHandler) doStateInit(ctx context.Context) error {
	if dh.device.GetHostAndPort() == "" {
		dh.device.OperStatus = voltha.OperStatus_FAILED
		dh.device.Reason = reasonNoHostAndPort
		if err := dh.updateDevice(ctx); err != nil {
			logger.Errorw(ctx, "failed-to-update-device", log.Fields{"device-id": dh.device.Id, "error": err})
		}
		return olterrors.NewErrInvalidValue(log.Fields{
			"device-id":     dh.device.Id,
			"host-and-port": ""}, nil).Log()
	}
	dh.device.Root = true
	dh.device.Vendor = oltVendor
	dh.device.Model = oltModel
	dh.device.SerialNumber = dh.device.GetHostAndPort()
	if err := dh.updateDevice(ctx); err != nil {
		return err
	}
	return dh.addPort(ctx, dh.nniPort, voltha.Port_ETHERNET_NNI, nniPortLabel)
}

// postInit rebuilds the provisioning graph from the kv store and starts reading indications
func (dh *DeviceHandler) postInit(ctx context.Context) error {
	dh.restoreProvisioning(ctx)
	go func() {
		if err := dh.readIndications(log.WithSpanFromContext(context.Background(), ctx)); err != nil {
			_ = olterrors.NewErrAdapter("read-indications-failure", log.Fields{"device-id": dh.device.Id}, err).Log()
		}
	}()
	return nil
}

// doStateActivating connects to the agent if needed and activates the OLT
func (dh *DeviceHandler) doStateActivating(ctx context.Context) error {
	if !dh.oltConnected {
		if err := dh.driver.ConnectOlt(ctx, dh.device.GetHostAndPort(), dh.device.Id); err != nil {
			return err
		}
		dh.oltConnected = true
	}
	if err := dh.driver.ActivateOlt(ctx); err != nil {
		return err
	}
	dh.device.ConnectStatus = voltha.ConnectStatus_REACHABLE
	dh.device.OperStatus = voltha.OperStatus_ACTIVATING
	return dh.updateDevice(ctx)
}

// doStateUp marks the device active and clears the activation failure event
func (dh *DeviceHandler) doStateUp(ctx context.Context) error {
	dh.device.ConnectStatus = voltha.ConnectStatus_REACHABLE
	dh.device.OperStatus = voltha.OperStatus_ACTIVE
	dh.device.Reason = reasonActivated
	if err := dh.updateDevice(ctx); err != nil {
		return err
	}
	if err := dh.eventMgr.oltActivationEvent(ctx, dh.device.Id, operationStateUp, time.Now().Unix()); err != nil {
		logger.Warnw(ctx, "failed-to-clear-activation-event", log.Fields{"device-id": dh.device.Id, "error": err})
	}
	return nil
}

// doStateFailed marks the device failed and schedules one more activation attempt.
// There is no retry limit.
func (dh *DeviceHandler) doStateFailed(ctx context.Context) error {
	dh.device.OperStatus = voltha.OperStatus_FAILED
	dh.device.Reason = reasonActivationError
	if err := dh.updateDevice(ctx); err != nil {
		logger.Errorw(ctx, "failed-to-update-device", log.Fields{"device-id": dh.device.Id, "error": err})
	}
	if err := dh.eventMgr.oltActivationEvent(ctx, dh.device.Id, operationStateDown, time.Now().Unix()); err != nil {
		logger.Warnw(ctx, "failed-to-raise-activation-event", log.Fields{"device-id": dh.device.Id, "error": err})
	}

	delay := backoff.NewConstantBackOff(dh.cfg.ActivationRetryInterval).NextBackOff()
	retryCtx := log.WithSpanFromContext(context.Background(), ctx)
	logger.Infow(ctx, "scheduling-activation-retry", log.Fields{"device-id": dh.device.Id, "delay": delay})
	dh.retry.AfterFunc(delay, func() {
		dh.Activate(retryCtx)
	})
	return nil
}

// HandleAccessTerminalIndication moves the device to ACTIVE or FAILED
func (dh *DeviceHandler) HandleAccessTerminalIndication(ctx context.Context, ind *AccessTerminalIndication) error {
	logger.Infow(ctx, "access-terminal-indication", log.Fields{
		"device-id":             dh.device.Id,
		"activation-successful": ind.ActivationSuccessful})
	if ind.ActivationSuccessful {
		return dh.transitionMap.Handle(ctx, OltActivated)
	}
	return dh.transitionMap.Handle(ctx, OltActivationFailed)
}

// UpdateFlowTable translates and installs the logical flows of the device
func (dh *DeviceHandler) UpdateFlowTable(ctx context.Context, flows []*ofp.OfpFlowStats) []error {
	dh.lockDevice.Lock()
	defer dh.lockDevice.Unlock()
	logger.Debugw(ctx, "update-flow-table", log.Fields{"device-id": dh.device.Id, "flow-count": len(flows)})
	return dh.flowMgr.UpdateFlowTable(ctx, flows)
}

func (dh *DeviceHandler) storeInterface(ctx context.Context, itf xpon.InterfaceConfig, uniPortNo uint32) {
	if dh.resourceMgr == nil {
		return
	}
	if err := dh.resourceMgr.StoreInterface(ctx, itf, uniPortNo); err != nil {
		logger.Warnw(ctx, "failed-to-store-interface", log.Fields{"name": itf.InterfaceName(), "error": err})
	}
}

// CreateInterface adds an xPON interface config to the provisioning graph. A config whose
// name is already known is ignored. Port registration and hardware activation happen only
// for new configs; their failures are logged and never returned.
func (dh *DeviceHandler) CreateInterface(ctx context.Context, itf xpon.InterfaceConfig) error {
	dh.lockDevice.Lock()
	defer dh.lockDevice.Unlock()

	var (
		added     bool
		uniPortNo uint32
		err       error
	)
	switch cfg := itf.(type) {
	case *xpon.ChannelGroupConfig:
		added = dh.graph.AddChannelGroup(*cfg)
	case *xpon.ChannelPartitionConfig:
		added = dh.graph.AddChannelPartition(*cfg)
	case *xpon.ChannelPairConfig:
		added = dh.graph.AddChannelPair(*cfg)
	case *xpon.ChannelTerminationConfig:
		if added = dh.graph.AddChannelTermination(*cfg); added {
			err = dh.createChannelTermination(ctx, cfg)
		}
	case *xpon.VOntAniConfig:
		if added = dh.graph.AddVOntAni(*cfg); added {
			err = dh.activateOnu(ctx, cfg)
		}
	case *xpon.OntAniConfig:
		added = dh.graph.AddOntAni(*cfg)
	case *xpon.VEnetConfig:
		if uniPortNo, added = dh.graph.AddVEnet(*cfg); added {
			err = dh.addPort(ctx, uniPortNo, voltha.Port_ETHERNET_UNI, cfg.PortLabel())
		}
	default:
		return olterrors.NewErrInvalidValue(log.Fields{"device-id": dh.device.Id, "interface": itf}, nil).Log()
	}
	if added {
		dh.storeInterface(ctx, itf, uniPortNo)
	}
	if err != nil {
		logger.Errorw(ctx, "interface-side-effect-failed", log.Fields{
			"device-id": dh.device.Id,
			"kind":      itf.Kind().String(),
			"name":      itf.InterfaceName(),
			"error":     err})
	}
	return nil
}

func (dh *DeviceHandler) createChannelTermination(ctx context.Context, cfg *xpon.ChannelTerminationConfig) error {
	if err := dh.addPort(ctx, cfg.XgsPonID, voltha.Port_PON_OLT, cfg.Name); err != nil {
		return err
	}
	return dh.driver.ActivatePonPort(ctx, dh.device.Id, cfg.XgsPonID)
}

// activateOnu activates the ONU expected behind cfg if its child device is enabled
func (dh *DeviceHandler) activateOnu(ctx context.Context, cfg *xpon.VOntAniConfig) error {
	serialNumber := cfg.ExpectedSerialNumber
	child, err := dh.coreProxy.GetChildDeviceBySerial(ctx, dh.device.Id, serialNumber)
	if err != nil || child == nil {
		logger.Infow(ctx, "onu-not-present-config-cached", log.Fields{
			"device-id":     dh.device.Id,
			"v-ont-ani":     cfg.Name,
			"serial-number": serialNumber})
		return nil
	}
	if child.AdminState != voltha.AdminState_ENABLED {
		logger.Infow(ctx, "onu-not-enabled-config-cached", log.Fields{
			"child-device-id": child.Id,
			"admin-state":     child.AdminState})
		return nil
	}
	if len(serialNumber) < 4 {
		return olterrors.NewErrInvalidValue(log.Fields{"serial-number": serialNumber, "v-ont-ani": cfg.Name}, nil)
	}
	// the child's own identity wins over the configured one
	onuID := cfg.OnuID
	if child.ProxyAddress.GetOnuId() != 0 {
		onuID = child.ProxyAddress.GetOnuId()
	}
	vendorID := child.VendorId
	if vendorID == "" {
		vendorID = serialNumber[:4]
	}
	return dh.driver.ActivateOnu(ctx, OnuInfo{
		PonID:          child.ParentPortNo,
		OnuID:          onuID,
		VendorID:       vendorID,
		VendorSpecific: serialNumber[4:],
	})
}

// CreateTcont adds a TCONT and its traffic descriptor. The upstream scheduler is
// created right away when the owning ONU is already active. A TCONT whose v-ONT-ANI
// is unknown is dropped with a log.
func (dh *DeviceHandler) CreateTcont(ctx context.Context, tcont *xpon.TcontConfig, td *xpon.TrafficDescriptorConfig) error {
	dh.lockDevice.Lock()
	defer dh.lockDevice.Unlock()

	if td != nil && dh.graph.AddTrafficDescriptor(*td) && dh.resourceMgr != nil {
		if err := dh.resourceMgr.StoreTrafficDescriptor(ctx, td); err != nil {
			logger.Warnw(ctx, "failed-to-store-traffic-descriptor", log.Fields{"name": td.Name, "error": err})
		}
	}
	added, err := dh.graph.AddTcont(*tcont)
	if err != nil {
		logger.Errorw(ctx, "failed-to-add-tcont", log.Fields{"tcont": tcont.Name, "error": err})
		return nil
	}
	if !added {
		return nil
	}
	if dh.resourceMgr != nil {
		if err := dh.resourceMgr.StoreTcont(ctx, tcont); err != nil {
			logger.Warnw(ctx, "failed-to-store-tcont", log.Fields{"tcont": tcont.Name, "error": err})
		}
	}
	vOntAni, _ := dh.graph.VOntAniByName(tcont.InterfaceReference)
	child, err := dh.coreProxy.GetChildDeviceByOnuID(ctx, dh.device.Id, vOntAni.Config.OnuID)
	if err != nil || child == nil || child.OperStatus != voltha.OperStatus_ACTIVE {
		logger.Debugw(ctx, "onu-not-active-scheduler-deferred", log.Fields{
			"tcont":  tcont.Name,
			"onu-id": vOntAni.Config.OnuID})
		return nil
	}
	// failures are logged by createTcontScheduler
	_ = dh.createTcontScheduler(ctx, child, tcont)
	return nil
}

// CreateGemPort adds a GEM port to its v-enet. Only an out of range GEM port id
// fails the call; a GEM port whose v-enet is unknown is dropped with a log.
func (dh *DeviceHandler) CreateGemPort(ctx context.Context, gem *xpon.GemPortConfig) error {
	dh.lockDevice.Lock()
	defer dh.lockDevice.Unlock()

	added, err := dh.graph.AddGemPort(*gem)
	if err != nil {
		logger.Errorw(ctx, "failed-to-add-gemport", log.Fields{"gemport": gem.Name, "gemport-id": gem.GemportID, "error": err})
		var oor *olterrors.ErrOutOfRange
		if errors.As(err, &oor) {
			return err
		}
		return nil
	}
	if added && dh.resourceMgr != nil {
		if err := dh.resourceMgr.StoreGemPort(ctx, gem); err != nil {
			logger.Warnw(ctx, "failed-to-store-gemport", log.Fields{"gemport": gem.Name, "error": err})
		}
	}
	return nil
}

// UpdateInterface is not supported
func (dh *DeviceHandler) UpdateInterface(ctx context.Context, itf xpon.InterfaceConfig) error {
	return olterrors.ErrNotImplemented
}

// RemoveInterface is not supported
func (dh *DeviceHandler) RemoveInterface(ctx context.Context, itf xpon.InterfaceConfig) error {
	return olterrors.ErrNotImplemented
}

// UpdateTcont is not supported
func (dh *DeviceHandler) UpdateTcont(ctx context.Context, tcont *xpon.TcontConfig, td *xpon.TrafficDescriptorConfig) error {
	return olterrors.ErrNotImplemented
}

// RemoveTcont is not supported
func (dh *DeviceHandler) RemoveTcont(ctx context.Context, tcont *xpon.TcontConfig, td *xpon.TrafficDescriptorConfig) error {
	return olterrors.ErrNotImplemented
}

// UpdateGemPort is not supported
func (dh *DeviceHandler) UpdateGemPort(ctx context.Context, gem *xpon.GemPortConfig) error {
	return olterrors.ErrNotImplemented
}

// RemoveGemPort is not supported
func (dh *DeviceHandler) RemoveGemPort(ctx context.Context, gem *xpon.GemPortConfig) error {
	return olterrors.ErrNotImplemented
}

// ApplyBundle pushes every config of b through the create operations. A failing
// config does not stop the others; the failures are returned.
func (dh *DeviceHandler) ApplyBundle(ctx context.Context, b *xpon.Bundle) []error {
	var errs []error
	for _, itf := range b.Interfaces() {
		if err := dh.CreateInterface(ctx, itf); err != nil {
			errs = append(errs, err)
		}
	}
	for i := range b.Tconts {
		td, _ := b.TrafficDescriptor(b.Tconts[i].TrafficDescriptorProfileRef)
		if err := dh.CreateTcont(ctx, &b.Tconts[i], td); err != nil {
			errs = append(errs, err)
		}
	}
	for i := range b.GemPorts {
		if err := dh.CreateGemPort(ctx, &b.GemPorts[i]); err != nil {
			errs = append(errs, err)
		}
	}
	logger.Infow(ctx, "provisioning-bundle-applied", log.Fields{"device-id": dh.device.Id, "failures": len(errs)})
	return errs
}

// restoreProvisioning reloads the stored configs into the graph. Ports and hardware
// state already exist so no side effect is replayed.
func (dh *DeviceHandler) restoreProvisioning(ctx context.Context) {
	if dh.resourceMgr == nil {
		return
	}
	p, err := dh.resourceMgr.LoadProvisioning(ctx)
	if err != nil {
		logger.Warnw(ctx, "failed-to-load-provisioning", log.Fields{"device-id": dh.device.Id, "error": err})
		return
	}

	dh.lockDevice.Lock()
	defer dh.lockDevice.Unlock()

	b := &p.Bundle
	for _, c := range b.ChannelGroups {
		dh.graph.AddChannelGroup(c)
	}
	for _, c := range b.ChannelPartitions {
		dh.graph.AddChannelPartition(c)
	}
	for _, c := range b.ChannelPairs {
		dh.graph.AddChannelPair(c)
	}
	for _, c := range b.ChannelTerminations {
		dh.graph.AddChannelTermination(c)
	}
	for _, c := range b.VOntAnis {
		dh.graph.AddVOntAni(c)
	}
	for _, c := range b.OntAnis {
		dh.graph.AddOntAni(c)
	}
	for _, c := range b.VEnets {
		dh.graph.RestoreVEnet(c, p.UniPortNos[c.Name])
	}
	for _, c := range b.TrafficDescriptors {
		dh.graph.AddTrafficDescriptor(c)
	}
	for _, c := range b.Tconts {
		if _, err := dh.graph.AddTcont(c); err != nil {
			logger.Warnw(ctx, "failed-to-restore-tcont", log.Fields{"tcont": c.Name, "error": err})
		}
	}
	for _, c := range b.GemPorts {
		if _, err := dh.graph.AddGemPort(c); err != nil {
			logger.Warnw(ctx, "failed-to-restore-gemport", log.Fields{"gemport": c.Name, "error": err})
		}
	}
	logger.Infow(ctx, "provisioning-restored", log.Fields{
		"device-id": dh.device.Id,
		"v-enets":   len(b.VEnets),
		"tconts":    len(b.Tconts),
		"gemports":  len(b.GemPorts)})
}

// HandleOmciIndication relays an OMCI message from an ONU to its adapter
func (dh *DeviceHandler) HandleOmciIndication(ctx context.Context, omciInd *oop.OmciIndication) error {
	child, err := dh.coreProxy.GetChildDeviceByOnuID(ctx, dh.device.Id, omciInd.GetOnuId())
	if err != nil || child == nil {
		return olterrors.NewErrNotFound("onu", log.Fields{
			"device-id": dh.device.Id,
			"intf-id":   omciInd.GetIntfId(),
			"onu-id":    omciInd.GetOnuId()}, err).Log()
	}
	if dh.publisher == nil {
		logger.Warnw(ctx, "no-inter-adapter-publisher", log.Fields{"child-device-id": child.Id})
		return nil
	}
	return dh.publisher.PublishOmciMessage(ctx, child, omciInd.GetPkt())
}

// SendProxiedMessage forwards an OMCI request of an ONU adapter to the OLT
func (dh *DeviceHandler) SendProxiedMessage(ctx context.Context, proxyAddress *voltha.Device_ProxyAddress, msg []byte) error {
	if proxyAddress == nil {
		return olterrors.NewErrInvalidValue(log.Fields{"device-id": dh.device.Id, "proxy-address": nil}, nil).Log()
	}
	if err := dh.driver.SendOmciRequest(ctx, proxyAddress, msg); err != nil {
		logger.Errorw(ctx, "failed-to-send-omci-request", log.Fields{
			"device-id": dh.device.Id,
			"intf-id":   proxyAddress.GetChannelId(),
			"onu-id":    proxyAddress.GetOnuId(),
			"error":     err})
		return err
	}
	return nil
}

// readIndications reads the OLT indication stream until Stop is called. A broken
// stream is re-subscribed with exponential backoff.
func (dh *DeviceHandler) readIndications(ctx context.Context) error {
	defer logger.Debugw(ctx, "indications-ended", log.Fields{"device-id": dh.device.Id})

	// The maximum elapsed time is 0 so re-subscription never gives up
	indicationBackoff := backoff.NewExponentialBackOff()
	indicationBackoff.MaxElapsedTime = 0
	indicationBackoff.MaxInterval = 1 * time.Minute

	var indications IndicationStream
	for {
		select {
		case <-dh.stopIndications:
			logger.Debugw(ctx, "stopping-collecting-indications-for-olt", log.Fields{"device-id": dh.device.Id})
			return nil
		default:
		}

		var err error
		if indications == nil {
			indications, err = dh.driver.Indications(ctx)
		}
		var indication *oop.Indication
		if err == nil {
			indication, err = indications.Recv()
		}
		if err != nil {
			indications = nil
			duration := indicationBackoff.NextBackOff()
			logger.Warnw(ctx, "backing-off-enable-indication", log.Fields{
				"device-id": dh.device.Id,
				"duration":  duration,
				"error":     err})
			backoffTimer := time.NewTimer(duration)
			select {
			case <-dh.stopIndications:
				logger.Debugw(ctx, "stopping-collecting-indications-for-olt", log.Fields{"device-id": dh.device.Id})
				if !backoffTimer.Stop() {
					<-backoffTimer.C
				}
				return nil
			case <-backoffTimer.C:
			}
			continue
		}
		// Reset backoff if we have a successful receive
		indicationBackoff.Reset()
		dh.handleIndication(ctx, indication)
	}
}

func (dh *DeviceHandler) handleIndication(ctx context.Context, indication *oop.Indication) {
	switch indication.Data.(type) {
	case *oop.Indication_OltInd:
		oltInd := indication.GetOltInd()
		logger.Infow(ctx, "received-olt-indication", log.Fields{"device-id": dh.device.Id, "olt-ind": oltInd})
		ind := &AccessTerminalIndication{ActivationSuccessful: oltInd.GetOperState() == operationStateUp}
		if err := dh.HandleAccessTerminalIndication(ctx, ind); err != nil {
			logger.Warnw(ctx, "failed-to-handle-olt-indication", log.Fields{"device-id": dh.device.Id, "error": err})
		}
	case *oop.Indication_OnuDiscInd:
		onuDiscInd := indication.GetOnuDiscInd()
		ind := subscriberTerminalFromDiscovery(onuDiscInd)
		if err := dh.eventMgr.OnuDiscoveryIndication(ctx, dh.device.Id, ind.PonID, ind.SerialNumber(), time.Now().Unix()); err != nil {
			logger.Warnw(ctx, "failed-to-send-onu-discovery-event", log.Fields{"device-id": dh.device.Id, "error": err})
		}
		dh.HandleSubscriberTerminalIndication(ctx, ind)
	case *oop.Indication_OnuInd:
		dh.HandleSubscriberTerminalIndication(ctx, subscriberTerminalFromOnuIndication(indication.GetOnuInd()))
	case *oop.Indication_OmciInd:
		if err := dh.HandleOmciIndication(ctx, indication.GetOmciInd()); err != nil {
			logger.Warnw(ctx, "failed-to-relay-omci-indication", log.Fields{"device-id": dh.device.Id, "error": err})
		}
	case *oop.Indication_PktInd:
		dh.HandlePacketIn(ctx, indication.GetPktInd())
	default:
		logger.Debugw(ctx, "unhandled-indication", log.Fields{"device-id": dh.device.Id, "indication": indication})
	}
}

// Stop ends the indication reader
func (dh *DeviceHandler) Stop(ctx context.Context) {
	select {
	case dh.stopIndications <- true:
	default:
	}
	logger.Debugw(ctx, "device-handler-stopped", log.Fields{"device-id": dh.device.Id})
}
