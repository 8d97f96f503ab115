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

	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/olterrors"
	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/xpon"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	ofp "github.com/opencord/voltha-protos/v5/go/openflow_13"
	oop "github.com/opencord/voltha-protos/v5/go/openolt"
	"github.com/opencord/voltha-protos/v5/go/voltha"
)

const (
	// FlowIDShift is the position of the ONU id in a device flow id
	FlowIDShift = 13
	// MaxFlowTableSize is the size of the device flow table
	MaxFlowTableSize = 16384

	dhcpClientPort = 68
	dhcpServerPort = 67
)

// flowClass is a kind of subscriber traffic expanded from one logical flow
// into an upstream and a downstream device flow
type flowClass struct {
	name          string
	upstreamTag   uint32
	downstreamTag uint32
	downstreamPcp uint32
}

var (
	eapolClass        = flowClass{name: "eapol", upstreamTag: 1, downstreamTag: 10}
	dhcpUntaggedClass = flowClass{name: "dhcp-untagged", upstreamTag: 2, downstreamTag: 11}
	dhcpTaggedClass   = flowClass{name: "dhcp-tagged", upstreamTag: 3, downstreamTag: 12}
	igmpUntaggedClass = flowClass{name: "igmp-untagged", upstreamTag: 4, downstreamTag: 13}
	igmpTaggedClass   = flowClass{name: "igmp-tagged", upstreamTag: 5, downstreamTag: 14}
	firmwareClass     = flowClass{name: "firmware", upstreamTag: 6, downstreamTag: 15, downstreamPcp: 1}
	arpClass          = flowClass{name: "arp", upstreamTag: 7, downstreamTag: 16, downstreamPcp: 7}
	hsiaClass         = flowClass{name: "hsia", upstreamTag: 8, downstreamTag: 17, downstreamPcp: 0}
	dnsClass          = flowClass{name: "dns", upstreamTag: 9, downstreamTag: 18, downstreamPcp: 3}

	// dataClasses are installed in this order for every push-VLAN flow
	dataClasses = []flowClass{firmwareClass, arpClass, dnsClass, hsiaClass}
)

// FlowID returns the device flow id of class tag classTag for onuID
func FlowID(onuID uint32, classTag uint32) uint64 {
	return uint64(onuID)<<FlowIDShift | uint64(classTag)
}

// flowTarget is where the device flows of one class are installed
type flowTarget struct {
	vEnet   *xpon.VEnet
	gemPort *xpon.GemPortConfig
	tcont   *xpon.TcontConfig
	onuID   uint32
	intfID  uint32
}

// resolveVEnet finds the v-enet behind the UNI port a flow enters on
func (f *OltFlowMgr) resolveVEnet(ctx context.Context, inPort uint32) (*xpon.VEnet, error) {
	dh := f.deviceHandler
	ports, err := dh.coreProxy.GetPortsByType(ctx, dh.device.Id, voltha.Port_ETHERNET_UNI)
	if err != nil {
		return nil, olterrors.NewErrNotFound("uni-port", log.Fields{"in-port": inPort, "device-id": dh.device.Id}, err)
	}
	for _, port := range ports {
		if port.PortNo != inPort {
			continue
		}
		if vEnet, ok := dh.graph.VEnetByPortLabel(port.Label); ok {
			return vEnet, nil
		}
		return nil, olterrors.NewErrNotFound("v-enet", log.Fields{"in-port": inPort, "label": port.Label}, nil)
	}
	return nil, olterrors.NewErrNotFound("uni-port", log.Fields{"in-port": inPort, "device-id": dh.device.Id}, nil)
}

// resolveTarget walks v-enet, GEM port, v-ONT-ANI, TCONT and child device
func (f *OltFlowMgr) resolveTarget(ctx context.Context, vEnet *xpon.VEnet) (*flowTarget, error) {
	dh := f.deviceHandler
	gemPort, ok := vEnet.GemPortByTrafficClass(dh.gemTrafficClass)
	if !ok {
		return nil, olterrors.NewErrNotFound("gemport", log.Fields{
			"v-enet":        vEnet.Config.Name,
			"traffic-class": dh.gemTrafficClass}, nil)
	}
	vOntAni, ok := dh.graph.VOntAniByName(vEnet.Config.VOntAniRef)
	if !ok {
		return nil, olterrors.NewErrNotFound("v-ont-ani", log.Fields{"v-ont-ani": vEnet.Config.VOntAniRef}, nil)
	}
	tcont, ok := vOntAni.TcontByName(gemPort.TcontRef)
	if !ok {
		return nil, olterrors.NewErrNotFound("tcont", log.Fields{"tcont": gemPort.TcontRef}, nil)
	}
	child, err := dh.coreProxy.GetChildDeviceByOnuID(ctx, dh.device.Id, vOntAni.Config.OnuID)
	if err != nil || child == nil {
		return nil, olterrors.NewErrNotFound("onu-device", log.Fields{"onu-id": vOntAni.Config.OnuID}, err)
	}
	return &flowTarget{
		vEnet:   vEnet,
		gemPort: gemPort,
		tcont:   tcont,
		onuID:   child.ProxyAddress.GetOnuId(),
		intfID:  child.ProxyAddress.GetChannelId(),
	}, nil
}

// divideAndAddFlow expands an upstream logical flow into the device flow pairs
// the device needs, since it also expects the downstream half of every class
func (f *OltFlowMgr) divideAndAddFlow(ctx context.Context, classifierInfo, actionInfo map[string]interface{}, flow *ofp.OfpFlowStats) error {
	inPort, _ := classifierInfo[InPort].(uint32)
	vEnet, err := f.resolveVEnet(ctx, inPort)
	if err != nil {
		return err
	}

	if ipProto, ok := classifierInfo[IPProto].(uint32); ok {
		switch ipProto {
		case IPProtoDhcp:
			logger.Warnw(ctx, "addition-of-dhcp-flows-deferred", log.Fields{
				"flow-id":      flow.Id,
				"upstream-tag": dhcpUntaggedClass.upstreamTag})
		case IgmpProto:
			logger.Infow(ctx, "addition-of-igmp-flows-not-handled", log.Fields{
				"flow-id":      flow.Id,
				"upstream-tag": igmpUntaggedClass.upstreamTag,
				"tagged-tag":   igmpTaggedClass.upstreamTag})
		default:
			logger.Infow(ctx, "invalid-classifier-to-handle", log.Fields{
				"flow-id":    flow.Id,
				"classifier": classifierInfo,
				"action":     actionInfo})
		}
		return nil
	}
	if ethType, ok := classifierInfo[EthType].(uint32); ok {
		if ethType == EapEthType {
			return f.addEapolFlow(ctx, classifierInfo, flow, vEnet)
		}
		logger.Infow(ctx, "unhandled-eth-type", log.Fields{"flow-id": flow.Id, "eth-type": ethType})
		return nil
	}
	if _, ok := actionInfo[PushVlan]; ok {
		var firstErr error
		if err := f.addDhcpTaggedFlow(ctx, classifierInfo, actionInfo, flow, vEnet); err != nil {
			firstErr = err
		}
		if err := f.addDataFlows(ctx, classifierInfo, actionInfo, flow, vEnet); err != nil && firstErr == nil {
			firstErr = err
		}
		return firstErr
	}
	logger.Infow(ctx, "invalid-flow-type-to-handle", log.Fields{
		"flow-id":    flow.Id,
		"classifier": classifierInfo,
		"action":     actionInfo})
	return nil
}

func (f *OltFlowMgr) addEapolFlow(ctx context.Context, classifierInfo map[string]interface{}, flow *ofp.OfpFlowStats, vEnet *xpon.VEnet) error {
	upClassifier := copyInfo(classifierInfo)
	upClassifier[PacketTagType] = Untagged
	upAction := map[string]interface{}{TrapToHost: true}

	downClassifier := copyInfo(classifierInfo)
	downClassifier[PacketTagType] = Untagged
	downAction := map[string]interface{}{}

	return f.addClassFlows(ctx, eapolClass, vEnet, flow, upClassifier, upAction, downClassifier, downAction)
}

func (f *OltFlowMgr) addDhcpTaggedFlow(ctx context.Context, classifierInfo, actionInfo map[string]interface{}, flow *ofp.OfpFlowStats, vEnet *xpon.VEnet) error {
	upClassifier := map[string]interface{}{
		IPProto:       uint32(IPProtoDhcp),
		UDPSrc:        uint32(dhcpClientPort),
		UDPDst:        uint32(dhcpServerPort),
		PacketTagType: SingleTag,
	}
	if vid, ok := classifierInfo[VlanVid]; ok {
		upClassifier[VlanVid] = vid
	}
	upAction := map[string]interface{}{TrapToHost: true}

	downClassifier := map[string]interface{}{
		IPProto:       uint32(IPProtoDhcp),
		UDPSrc:        uint32(dhcpServerPort),
		UDPDst:        uint32(dhcpClientPort),
		PacketTagType: DoubleTag,
	}
	if vid, ok := actionInfo[VlanVid]; ok {
		downClassifier[VlanVid] = vid
	}
	downAction := map[string]interface{}{PopVlan: true}

	return f.addClassFlows(ctx, dhcpTaggedClass, vEnet, flow, upClassifier, upAction, downClassifier, downAction)
}

func (f *OltFlowMgr) addDataFlows(ctx context.Context, classifierInfo, actionInfo map[string]interface{}, flow *ofp.OfpFlowStats, vEnet *xpon.VEnet) error {
	upClassifier := copyInfo(classifierInfo)
	upClassifier[PacketTagType] = SingleTag
	upAction := copyInfo(actionInfo)

	downAction := copyInfo(actionInfo)
	delete(downAction, PushVlan)
	delete(downAction, TPID)
	downAction[PopVlan] = true

	var firstErr error
	for _, class := range dataClasses {
		downClassifier := copyInfo(classifierInfo)
		downClassifier[PacketTagType] = DoubleTag
		if vid, ok := actionInfo[VlanVid]; ok {
			downClassifier[VlanVid] = vid
		}
		downClassifier[VlanPcp] = class.downstreamPcp

		if err := f.addClassFlows(ctx, class, vEnet, flow, upClassifier, upAction, downClassifier, downAction); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// addClassFlows resolves the target of class and installs its upstream then
// its downstream flow. A failed upstream install does not prevent the
// downstream one.
func (f *OltFlowMgr) addClassFlows(ctx context.Context, class flowClass, vEnet *xpon.VEnet, flow *ofp.OfpFlowStats,
	upClassifier, upAction, downClassifier, downAction map[string]interface{}) error {
	target, err := f.resolveTarget(ctx, vEnet)
	if err != nil {
		logger.Errorw(ctx, "failed-to-resolve-flow-target", log.Fields{
			"class":   class.name,
			"v-enet":  vEnet.Config.Name,
			"flow-id": flow.Id,
			"error":   err})
		return err
	}

	var firstErr error
	if err := f.installFlow(ctx, class, Upstream, target, flow, upClassifier, upAction); err != nil {
		firstErr = err
	}
	if err := f.installFlow(ctx, class, Downstream, target, flow, downClassifier, downAction); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (f *OltFlowMgr) installFlow(ctx context.Context, class flowClass, direction string, target *flowTarget, logicalFlow *ofp.OfpFlowStats,
	classifierInfo, actionInfo map[string]interface{}) error {
	tag := class.upstreamTag
	if direction == Downstream {
		tag = class.downstreamTag
	}
	flowID := FlowID(target.onuID, tag)

	classifierProto, err := makeOpenOltClassifierField(classifierInfo)
	if err != nil {
		return err
	}
	deviceFlow := oop.Flow{
		AccessIntfId:  int32(target.intfID),
		OnuId:         int32(target.onuID),
		FlowId:        flowID,
		FlowType:      direction,
		NetworkIntfId: 0,
		GemportId:     int32(target.gemPort.GemportID),
		Classifier:    classifierProto,
		Action:        makeOpenOltActionField(actionInfo),
		Priority:      int32(logicalFlow.Priority),
		Cookie:        logicalFlow.Cookie,
		PortNo:        target.vEnet.UniPortNo,
	}
	if direction == Upstream {
		deviceFlow.AllocId = int32(target.tcont.AllocID)
	}

	logger.Infow(ctx, "adding-flow", log.Fields{
		"class":      class.name,
		"direction":  direction,
		"flow-id":    flowID,
		"onu-id":     target.onuID,
		"intf-id":    target.intfID,
		"gemport-id": target.gemPort.GemportID,
		"alloc-id":   target.tcont.AllocID})

	dh := f.deviceHandler
	err = f.gate.Submit(ctx, "add-flow", func(ctx context.Context) error {
		return dh.driver.AddFlow(ctx, &deviceFlow)
	})
	if err != nil {
		logger.Errorw(ctx, "failed-to-install-flow", log.Fields{
			"class":     class.name,
			"direction": direction,
			"flow-id":   flowID,
			"onu-id":    target.onuID,
			"intf-id":   target.intfID,
			"error":     err})
		return err
	}
	if dh.resourceMgr != nil {
		if err := dh.resourceMgr.AddFlowIDForOnu(ctx, target.onuID, flowID); err != nil {
			logger.Warnw(ctx, "failed-to-store-flow-id", log.Fields{"flow-id": flowID, "onu-id": target.onuID, "error": err})
		}
	}
	return nil
}
