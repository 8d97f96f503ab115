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
	"testing"
	"time"

	"github.com/opencord/voltha-asfvolt16-adapter/pkg/mocks"
	"github.com/opencord/voltha-protos/v5/go/common"
	"github.com/opencord/voltha-protos/v5/go/voltha"
	"github.com/stretchr/testify/assert"
)

func newTestCoreProxy() (CoreProxy, *mocks.MockCoreService) {
	coreService := mocks.NewMockCoreService(newTestOlt())
	return NewCoreProxy(mocks.NewMockCoreClient(coreService), time.Second), coreService
}

func TestCoreProxy_UpdateDevice(t *testing.T) {
	cp, coreService := newTestCoreProxy()
	device := newTestOlt()
	device.OperStatus = voltha.OperStatus_FAILED
	device.ConnectStatus = voltha.ConnectStatus_REACHABLE
	device.Reason = "Failed to Intialize OLT"

	assert.NoError(t, cp.UpdateDevice(context.Background(), device))
	got, err := cp.GetDevice(context.Background(), testOltID)
	assert.NoError(t, err)
	assert.Equal(t, voltha.OperStatus_FAILED, got.OperStatus)
	assert.Len(t, coreService.StateUpdates, 1)
	assert.Equal(t, voltha.ConnectStatus_REACHABLE, coreService.StateUpdates[0].ConnStatus)
	assert.Len(t, coreService.Reasons, 1)
	assert.Equal(t, "Failed to Intialize OLT", coreService.Reasons[0].Reason)

	// no reason, no reason update
	device.Reason = ""
	assert.NoError(t, cp.UpdateDevice(context.Background(), device))
	assert.Len(t, coreService.Reasons, 1)

	assert.Error(t, cp.UpdateDevice(context.Background(), &voltha.Device{}))
}

func TestCoreProxy_Ports(t *testing.T) {
	cp, _ := newTestCoreProxy()
	ctx := context.Background()
	assert.NoError(t, cp.AddPort(ctx, &voltha.Port{DeviceId: testOltID, PortNo: 50, Type: voltha.Port_ETHERNET_NNI}))
	assert.NoError(t, cp.AddPort(ctx, &voltha.Port{DeviceId: testOltID, PortNo: 21, Type: voltha.Port_ETHERNET_UNI, Label: "uni-1"}))
	assert.NoError(t, cp.AddPort(ctx, &voltha.Port{DeviceId: testOltID, PortNo: 22, Type: voltha.Port_ETHERNET_UNI, Label: "uni-2"}))

	tests := []struct {
		portType voltha.Port_PortType
		want     []uint32
	}{
		{voltha.Port_ETHERNET_NNI, []uint32{50}},
		{voltha.Port_ETHERNET_UNI, []uint32{21, 22}},
		{voltha.Port_PON_OLT, nil},
	}
	for _, tt := range tests {
		t.Run(tt.portType.String(), func(t *testing.T) {
			ports, err := cp.GetPortsByType(ctx, testOltID, tt.portType)
			assert.NoError(t, err)
			var got []uint32
			for _, port := range ports {
				got = append(got, port.PortNo)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Error(t, cp.AddPort(ctx, &voltha.Port{PortNo: 1}))
}

func TestCoreProxy_ChildDevice(t *testing.T) {
	cp, coreService := newTestCoreProxy()
	coreService.AddChild(testOltID, newTestOnu(common.OperStatus_ACTIVE))
	ctx := context.Background()

	child, err := cp.GetChildDeviceBySerial(ctx, testOltID, testOnuSerial)
	assert.NoError(t, err)
	assert.Equal(t, testOnuID, child.Id)

	child, err = cp.GetChildDeviceByOnuID(ctx, testOltID, 1)
	assert.NoError(t, err)
	assert.Equal(t, testOnuID, child.Id)

	_, err = cp.GetChildDeviceBySerial(ctx, testOltID, "ALCL00000001")
	assert.Error(t, err)
	_, err = cp.GetChildDeviceByOnuID(ctx, "olt-9", 1)
	assert.Error(t, err)
}

func TestCoreProxy_SendPacketIn(t *testing.T) {
	cp, coreService := newTestCoreProxy()
	assert.NoError(t, cp.SendPacketIn(context.Background(), testOltID, 21, []byte{0x01}))
	packets := coreService.ReceivedPacketsIn()
	assert.Len(t, packets, 1)
	assert.Equal(t, uint32(21), packets[0].Port)
	assert.Error(t, cp.SendPacketIn(context.Background(), "", 21, []byte{0x01}))
}
