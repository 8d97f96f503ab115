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
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/olterrors"
	oop "github.com/opencord/voltha-protos/v5/go/openolt"
	"github.com/stretchr/testify/assert"
)

var (
	testSrcMAC = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	testDstMAC = net.HardwareAddr{0x01, 0x80, 0xc2, 0x00, 0x00, 0x03}
)

// untaggedFrame is an EAPOL frame that needs no padding
func untaggedFrame(t *testing.T) []byte {
	payload := make([]byte, 46)
	for i := range payload {
		payload[i] = byte(i)
	}
	buffer := gopacket.NewSerializeBuffer()
	err := gopacket.SerializeLayers(buffer, gopacket.SerializeOptions{},
		&layers.Ethernet{SrcMAC: testSrcMAC, DstMAC: testDstMAC, EthernetType: layers.EthernetTypeEAPOL},
		gopacket.Payload(payload))
	assert.NoError(t, err)
	return buffer.Bytes()
}

func TestPushPopDoubleTag(t *testing.T) {
	frame := untaggedFrame(t)

	tagged, err := pushDoubleTag(frame, 4091, 21)
	assert.NoError(t, err)
	assert.Len(t, tagged, len(frame)+8)

	pkt := gopacket.NewPacket(tagged, layers.LayerTypeEthernet, gopacket.Default)
	tags := dot1QLayers(pkt)
	assert.Len(t, tags, 2)
	assert.Equal(t, uint16(4091), tags[0].VLANIdentifier)
	assert.Equal(t, layers.EthernetTypeDot1Q, tags[0].Type)
	assert.Equal(t, uint16(21), tags[1].VLANIdentifier)
	assert.Equal(t, layers.EthernetTypeEAPOL, tags[1].Type)

	port, untagged, ok := popDoubleTag(tagged)
	assert.True(t, ok)
	assert.Equal(t, uint16(21), port)
	assert.Equal(t, frame, untagged)
}

func TestPopDoubleTag_NotDoubleTagged(t *testing.T) {
	singleTagged := func() []byte {
		buffer := gopacket.NewSerializeBuffer()
		_ = gopacket.SerializeLayers(buffer, gopacket.SerializeOptions{},
			&layers.Ethernet{SrcMAC: testSrcMAC, DstMAC: testDstMAC, EthernetType: layers.EthernetTypeDot1Q},
			&layers.Dot1Q{VLANIdentifier: 21, Type: layers.EthernetTypeEAPOL},
			gopacket.Payload(make([]byte, 46)))
		return buffer.Bytes()
	}
	tests := []struct {
		name  string
		frame []byte
	}{
		{"untagged", untaggedFrame(t)},
		{"single-tagged", singleTagged()},
		{"truncated", []byte{0x01, 0x02, 0x03}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := popDoubleTag(tt.frame)
			assert.False(t, ok)
		})
	}
}

func TestDeviceHandler_HandlePacketIn(t *testing.T) {
	env := newTestEnv()
	frame := untaggedFrame(t)
	tagged, err := pushDoubleTag(frame, 4091, 22)
	assert.NoError(t, err)

	env.dh.HandlePacketIn(context.Background(), &oop.PacketIndication{IntfType: "pon", IntfId: 0, Pkt: tagged})
	packets := env.coreService.ReceivedPacketsIn()
	assert.Len(t, packets, 1)
	assert.Equal(t, testOltID, packets[0].DeviceId)
	assert.Equal(t, uint32(22), packets[0].Port)
	assert.Equal(t, frame, packets[0].Packet)

	// untagged frames are dropped
	env.dh.HandlePacketIn(context.Background(), &oop.PacketIndication{Pkt: frame})
	assert.Len(t, env.coreService.ReceivedPacketsIn(), 1)

	// a failing core does not panic the reader
	env.coreService.FailPacketIn = true
	env.dh.HandlePacketIn(context.Background(), &oop.PacketIndication{Pkt: tagged})
	assert.Len(t, env.coreService.ReceivedPacketsIn(), 1)
}

func TestDeviceHandler_PacketOut(t *testing.T) {
	env := newTestEnv()
	frame := untaggedFrame(t)

	assert.NoError(t, env.dh.PacketOut(context.Background(), 21, frame))
	assert.Len(t, env.driver.packetsOut, 1)
	out := env.driver.packetsOut[0]
	assert.Equal(t, uint32(1), out.onuID)
	assert.Equal(t, uint32(21), out.egressPort)
	port, untagged, ok := popDoubleTag(out.payload)
	assert.True(t, ok)
	assert.Equal(t, uint16(21), port)
	assert.Equal(t, frame, untagged)

	env.dh.SetDestinationResolver(func(ctx context.Context, egressPort uint32) (uint32, error) {
		return egressPort - 20, nil
	})
	assert.NoError(t, env.dh.PacketOut(context.Background(), 23, frame))
	assert.Equal(t, uint32(3), env.driver.packetsOut[1].onuID)

	env.dh.SetDestinationResolver(func(ctx context.Context, egressPort uint32) (uint32, error) {
		return 0, errors.New("no-onu")
	})
	assert.Error(t, env.dh.PacketOut(context.Background(), 24, frame))
	assert.Error(t, env.dh.PacketOut(context.Background(), 21, []byte{0x01}))
	assert.Len(t, env.driver.packetsOut, 2)
}

func TestDeviceHandler_PacketOutPortRange(t *testing.T) {
	frame := untaggedFrame(t)
	tests := []struct {
		name    string
		port    uint32
		wantErr bool
	}{
		{"zero", 0, true},
		{"lowest", 1, false},
		{"highest", 4094, false},
		{"reserved-vlan", 4095, true},
		{"beyond-vlan-range", 4117, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			err := env.dh.PacketOut(context.Background(), tt.port, frame)
			if tt.wantErr {
				var iv *olterrors.ErrInvalidValue
				assert.True(t, errors.As(err, &iv))
				assert.Empty(t, env.driver.packetsOut)
				return
			}
			assert.NoError(t, err)
			assert.Len(t, env.driver.packetsOut, 1)
		})
	}
}
