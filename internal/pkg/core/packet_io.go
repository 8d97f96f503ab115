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

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/olterrors"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	oop "github.com/opencord/voltha-protos/v5/go/openolt"
)

// highest VLAN id a port number can be carried in
const maxVlanID = 4094

// DestinationResolver picks the ONU a packet out to egressPort is sent to
type DestinationResolver func(ctx context.Context, egressPort uint32) (uint32, error)

// defaultDestinationResolver sends every packet out to ONU 1
func defaultDestinationResolver(ctx context.Context, egressPort uint32) (uint32, error) {
	return 1, nil
}

// SetDestinationResolver replaces the way packet out destinations are resolved
func (dh *DeviceHandler) SetDestinationResolver(resolver DestinationResolver) {
	dh.lockDevice.Lock()
	defer dh.lockDevice.Unlock()
	dh.resolveDestination = resolver
}

func dot1QLayers(pkt gopacket.Packet) []*layers.Dot1Q {
	var tags []*layers.Dot1Q
	for _, l := range pkt.Layers() {
		if tag, ok := l.(*layers.Dot1Q); ok {
			tags = append(tags, tag)
		}
	}
	return tags
}

// popDoubleTag strips the outer and inner VLAN tags of a double tagged frame and
// returns the inner VLAN id along with the untagged frame
func popDoubleTag(frame []byte) (uint16, []byte, bool) {
	pkt := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.Default)
	ethLayer := pkt.Layer(layers.LayerTypeEthernet)
	if ethLayer == nil {
		return 0, nil, false
	}
	eth, _ := ethLayer.(*layers.Ethernet)
	tags := dot1QLayers(pkt)
	if len(tags) < 2 || tags[0].Type != layers.EthernetTypeDot1Q {
		return 0, nil, false
	}
	inner := tags[1]

	buffer := gopacket.NewSerializeBuffer()
	err := gopacket.SerializeLayers(buffer, gopacket.SerializeOptions{},
		&layers.Ethernet{
			SrcMAC:       eth.SrcMAC,
			DstMAC:       eth.DstMAC,
			EthernetType: inner.Type,
		},
		gopacket.Payload(inner.Payload),
	)
	if err != nil {
		return 0, nil, false
	}
	return inner.VLANIdentifier, buffer.Bytes(), true
}

// pushDoubleTag tags frame with outer VLAN stag and inner VLAN ctag
func pushDoubleTag(frame []byte, stag, ctag uint16) ([]byte, error) {
	pkt := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.Default)
	ethLayer := pkt.Layer(layers.LayerTypeEthernet)
	if ethLayer == nil {
		return nil, olterrors.NewErrInvalidValue(log.Fields{"packet": "no-ethernet-layer"}, nil)
	}
	eth, _ := ethLayer.(*layers.Ethernet)

	buffer := gopacket.NewSerializeBuffer()
	err := gopacket.SerializeLayers(buffer, gopacket.SerializeOptions{},
		&layers.Ethernet{
			SrcMAC:       eth.SrcMAC,
			DstMAC:       eth.DstMAC,
			EthernetType: layers.EthernetTypeDot1Q,
		},
		&layers.Dot1Q{
			VLANIdentifier: stag,
			Type:           layers.EthernetTypeDot1Q,
		},
		&layers.Dot1Q{
			VLANIdentifier: ctag,
			Type:           eth.EthernetType,
		},
		gopacket.Payload(eth.Payload),
	)
	if err != nil {
		return nil, olterrors.NewErrAdapter("packet-serialization-failed", log.Fields{"stag": stag, "ctag": ctag}, err)
	}
	return buffer.Bytes(), nil
}

// HandlePacketIn sends a trapped frame up on the logical port carried by its
// inner VLAN tag. Frames that are not double tagged are dropped.
func (dh *DeviceHandler) HandlePacketIn(ctx context.Context, pktInd *oop.PacketIndication) {
	port, frame, ok := popDoubleTag(pktInd.GetPkt())
	if !ok {
		logger.Debugw(ctx, "dropping-packet-in-not-double-tagged", log.Fields{
			"device-id": dh.device.Id,
			"intf-id":   pktInd.GetIntfId()})
		return
	}
	logger.Debugw(ctx, "sending-packet-in", log.Fields{
		"device-id":    dh.device.Id,
		"logical-port": port,
		"packet-size":  len(frame)})
	if err := dh.coreProxy.SendPacketIn(ctx, dh.device.Id, uint32(port), frame); err != nil {
		_ = olterrors.NewErrCommunication("send-packet-in", log.Fields{
			"device-id": dh.device.Id,
			"port":      port}, err).Log()
	}
}

// PacketOut sends frame to the UNI egressPort through the packet in/out VLAN
func (dh *DeviceHandler) PacketOut(ctx context.Context, egressPort uint32, frame []byte) error {
	dh.lockDevice.Lock()
	defer dh.lockDevice.Unlock()

	if egressPort == 0 || egressPort > maxVlanID {
		return olterrors.NewErrInvalidValue(log.Fields{
			"device-id":   dh.device.Id,
			"egress-port": egressPort,
			"max":         maxVlanID}, nil).Log()
	}
	tagged, err := pushDoubleTag(frame, uint16(dh.packetInVlan), uint16(egressPort))
	if err != nil {
		return err
	}
	onuID, err := dh.resolveDestination(ctx, egressPort)
	if err != nil {
		return olterrors.NewErrNotFound("packet-out-destination", log.Fields{"egress-port": egressPort}, err)
	}
	logger.Debugw(ctx, "sending-packet-out", log.Fields{
		"device-id":   dh.device.Id,
		"egress-port": egressPort,
		"onu-id":      onuID})
	return dh.driver.PacketOut(ctx, onuID, egressPort, tagged)
}
