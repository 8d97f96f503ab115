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
	"github.com/opencord/voltha-lib-go/v7/pkg/flows"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	ofp "github.com/opencord/voltha-protos/v5/go/openflow_13"
	oop "github.com/opencord/voltha-protos/v5/go/openolt"
	"github.com/opencord/voltha-protos/v5/go/voltha"
)

const (
	//IPProtoDhcp flow category
	IPProtoDhcp = 17
	//IgmpProto proto value
	IgmpProto = 2
	//EapEthType eapethtype value
	EapEthType = 0x888e
	//Dot1QTpid is the only TPID pushed by the device
	Dot1QTpid = 0x8100

	//Upstream constant
	Upstream = "upstream"
	//Downstream constant
	Downstream = "downstream"
	//PacketTagType constant
	PacketTagType = "pkt_tag_type"
	//Untagged constant
	Untagged = "untagged"
	//SingleTag constant
	SingleTag = "single_tag"
	//DoubleTag constant
	DoubleTag = "double_tag"

	// classifierInfo

	//EthType constant
	EthType = "eth_type"
	//TPID constant
	TPID = "tpid"
	//IPProto constant
	IPProto = "ip_proto"
	//InPort constant
	InPort = "in_port"
	//VlanVid constant
	VlanVid = "vlan_vid"
	//VlanPcp constant
	VlanPcp = "vlan_pcp"
	//UDPDst constant
	UDPDst = "udp_dst"
	//UDPSrc constant
	UDPSrc = "udp_src"
	//Ipv4Dst constant
	Ipv4Dst = "ipv4_dst"
	//Ipv4Src constant
	Ipv4Src = "ipv4_src"
	//Metadata constant
	Metadata = "metadata"
	//Output constant
	Output = "output"

	// Actions

	//PopVlan constant
	PopVlan = "pop_vlan"
	//PushVlan constant
	PushVlan = "push_vlan"
	//TrapToHost constant
	TrapToHost = "trap_to_host"
	//VlanPCPMask contant
	VlanPCPMask = 0xFF
	//VlanvIDMask constant
	VlanvIDMask = 0xFFF
)

// OltFlowMgr turns the logical flows of one OLT into device flows
type OltFlowMgr struct {
	deviceHandler *DeviceHandler
	gate          *flowGate
}

// NewFlowManager creates the flow manager of dh
func NewFlowManager(dh *DeviceHandler) *OltFlowMgr {
	return &OltFlowMgr{
		deviceHandler: dh,
		gate:          newFlowGate(dh.cfg.FlowAckTimeout),
	}
}

// nniPortNumbers returns the port numbers a downstream flow enters on
func (f *OltFlowMgr) nniPortNumbers(ctx context.Context) map[uint32]struct{} {
	dh := f.deviceHandler
	nni := make(map[uint32]struct{})
	ports, err := dh.coreProxy.GetPortsByType(ctx, dh.device.Id, voltha.Port_ETHERNET_NNI)
	if err != nil {
		logger.Warnw(ctx, "failed-to-get-nni-ports", log.Fields{"device-id": dh.device.Id, "error": err})
	}
	for _, port := range ports {
		nni[port.PortNo] = struct{}{}
	}
	if len(nni) == 0 {
		nni[dh.nniPort] = struct{}{}
	}
	return nni
}

// UpdateFlowTable translates every flow of flowList independently; a flow that
// cannot be translated is logged and does not stop the others. The returned
// slice holds the errors of the flows that failed.
func (f *OltFlowMgr) UpdateFlowTable(ctx context.Context, flowList []*ofp.OfpFlowStats) []error {
	nni := f.nniPortNumbers(ctx)
	var errs []error
	for _, flow := range flowList {
		if err := f.addFlow(ctx, flow, nni); err != nil {
			logger.Errorw(ctx, "failed-to-install-flow", log.Fields{
				"device-id": f.deviceHandler.device.Id,
				"flow-id":   flow.Id,
				"error":     err})
			errs = append(errs, err)
		}
	}
	return errs
}

func (f *OltFlowMgr) addFlow(ctx context.Context, flow *ofp.OfpFlowStats, nni map[uint32]struct{}) error {
	classifierInfo := make(map[string]interface{})
	actionInfo := make(map[string]interface{})
	if err := formulateClassifierInfoFromFlow(ctx, classifierInfo, flow); err != nil {
		return err
	}
	if err := formulateActionInfoFromFlow(ctx, actionInfo, classifierInfo, flow); err != nil {
		return err
	}

	inPort := flows.GetInPort(flow)
	if inPort == 0 {
		return olterrors.NewErrInvalidValue(log.Fields{
			"in-port": inPort,
			"flow-id": flow.Id}, nil)
	}
	logger.Debugw(ctx, "adding-flow", log.Fields{
		"device-id": f.deviceHandler.device.Id,
		"flow-id":   flow.Id,
		"in-port":   inPort,
		"out-port":  flows.GetOutPort(flow)})

	if _, downstream := nni[inPort]; downstream {
		logger.Infow(ctx, "downstream-flow-not-expanded", log.Fields{
			"flow-id":    flow.Id,
			"classifier": classifierInfo,
			"action":     actionInfo})
		return nil
	}
	return f.divideAndAddFlow(ctx, classifierInfo, actionInfo, flow)
}

func formulateClassifierInfoFromFlow(ctx context.Context, classifierInfo map[string]interface{}, flow *ofp.OfpFlowStats) error {
	for _, field := range flows.GetOfbFields(flow) {
		switch field.Type {
		case flows.ETH_TYPE:
			classifierInfo[EthType] = field.GetEthType()
		case flows.IP_PROTO:
			classifierInfo[IPProto] = field.GetIpProto()
		case flows.IN_PORT:
			classifierInfo[InPort] = field.GetPort()
		case flows.VLAN_VID:
			classifierInfo[VlanVid] = field.GetVlanVid() & VlanvIDMask
		case flows.VLAN_PCP:
			classifierInfo[VlanPcp] = field.GetVlanPcp()
		case flows.UDP_DST:
			classifierInfo[UDPDst] = field.GetUdpDst()
		case flows.UDP_SRC:
			classifierInfo[UDPSrc] = field.GetUdpSrc()
		case flows.IPV4_DST:
			classifierInfo[Ipv4Dst] = field.GetIpv4Dst()
		case flows.IPV4_SRC:
			classifierInfo[Ipv4Src] = field.GetIpv4Src()
		case flows.METADATA:
			classifierInfo[Metadata] = field.GetTableMetadata()
		default:
			return olterrors.NewErrUnsupportedField(field.Type.String(), log.Fields{"flow-id": flow.Id}, nil)
		}
	}
	logger.Debugw(ctx, "classifier-from-flow", log.Fields{"flow-id": flow.Id, "classifier": classifierInfo})
	return nil
}

func formulateActionInfoFromFlow(ctx context.Context, actionInfo, classifierInfo map[string]interface{}, flow *ofp.OfpFlowStats) error {
	for _, action := range flows.GetActions(flow) {
		switch action.Type {
		case flows.OUTPUT:
			if out := action.GetOutput(); out != nil {
				actionInfo[Output] = out.GetPort()
			} else {
				logger.Warnw(ctx, "output-action-without-port", log.Fields{"flow-id": flow.Id})
			}
		case flows.POP_VLAN:
			actionInfo[PopVlan] = true
		case flows.PUSH_VLAN:
			if push := action.GetPush(); push != nil {
				tpid := push.GetEthertype()
				if tpid != Dot1QTpid {
					logger.Errorw(ctx, "invalid-ethertype-in-push-action", log.Fields{
						"flow-id":   flow.Id,
						"ethertype": tpid,
						"in-port":   classifierInfo[InPort]})
				}
				actionInfo[PushVlan] = true
				actionInfo[TPID] = tpid
			}
		case flows.SET_FIELD:
			if out := action.GetSetField(); out != nil {
				if field := out.GetField(); field != nil {
					if ofClass := field.GetOxmClass(); ofClass != ofp.OfpOxmClass_OFPXMC_OPENFLOW_BASIC {
						return olterrors.NewErrInvalidValue(log.Fields{"openflow-class": ofClass, "flow-id": flow.Id}, nil)
					}
					formulateSetFieldActionInfoFromFlow(ctx, field, actionInfo)
				}
			}
		default:
			logger.Errorw(ctx, "unsupported-action-type", log.Fields{
				"flow-id":     flow.Id,
				"action-type": action.Type,
				"in-port":     classifierInfo[InPort]})
		}
	}
	logger.Debugw(ctx, "action-from-flow", log.Fields{"flow-id": flow.Id, "action": actionInfo})
	return nil
}

func formulateSetFieldActionInfoFromFlow(ctx context.Context, field *ofp.OfpOxmField, actionInfo map[string]interface{}) {
	if ofbField := field.GetOfbField(); ofbField != nil {
		if fieldtype := ofbField.GetType(); fieldtype == ofp.OxmOfbFieldTypes_OFPXMT_OFB_VLAN_VID {
			actionInfo[VlanVid] = ofbField.GetVlanVid() & VlanvIDMask
		} else {
			logger.Errorw(ctx, "unsupported-action-set-field-type", log.Fields{"type": fieldtype})
		}
	}
}

func makeOpenOltClassifierField(classifierInfo map[string]interface{}) (*oop.Classifier, error) {
	var classifier oop.Classifier

	classifier.EthType, _ = classifierInfo[EthType].(uint32)
	classifier.IpProto, _ = classifierInfo[IPProto].(uint32)
	classifier.OVid, _ = classifierInfo[VlanVid].(uint32)
	if metadata, ok := classifierInfo[Metadata].(uint64); ok {
		classifier.IVid = uint32(metadata)
	}
	// Use VlanPCPMask (0xff) to signify NO PCP. Else use valid PCP (0 to 7)
	if vlanPcp, ok := classifierInfo[VlanPcp].(uint32); ok {
		classifier.OPbits = vlanPcp
	} else {
		classifier.OPbits = VlanPCPMask
	}
	classifier.SrcPort, _ = classifierInfo[UDPSrc].(uint32)
	classifier.DstPort, _ = classifierInfo[UDPDst].(uint32)
	classifier.DstIp, _ = classifierInfo[Ipv4Dst].(uint32)
	classifier.SrcIp, _ = classifierInfo[Ipv4Src].(uint32)
	if pktTagType, ok := classifierInfo[PacketTagType].(string); ok {
		classifier.PktTagType = pktTagType

		switch pktTagType {
		case SingleTag:
		case DoubleTag:
		case Untagged:
		default:
			return nil, olterrors.NewErrInvalidValue(log.Fields{"packet-tag-type": pktTagType}, nil)
		}
	}
	return &classifier, nil
}

// makeOpenOltActionField builds the device action. An empty action info yields
// an action with no command set.
func makeOpenOltActionField(actionInfo map[string]interface{}) *oop.Action {
	var actionCmd oop.ActionCmd
	var action oop.Action
	action.Cmd = &actionCmd
	if _, ok := actionInfo[PopVlan]; ok {
		action.Cmd.RemoveOuterTag = true
	} else if _, ok := actionInfo[PushVlan]; ok {
		action.Cmd.AddOuterTag = true
		action.OVid, _ = actionInfo[VlanVid].(uint32)
	} else if trap, ok := actionInfo[TrapToHost].(bool); ok {
		action.Cmd.TrapToHost = trap
	}
	return &action
}

func copyInfo(info map[string]interface{}) map[string]interface{} {
	cp := make(map[string]interface{}, len(info))
	for k, v := range info {
		cp[k] = v
	}
	return cp
}
