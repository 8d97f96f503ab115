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
	"testing"
	"time"

	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/config"
	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/olterrors"
	rsrcMgr "github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/resourcemanager"
	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/xpon"
	"github.com/opencord/voltha-asfvolt16-adapter/pkg/mocks"
	"github.com/opencord/voltha-protos/v5/go/common"
	ia "github.com/opencord/voltha-protos/v5/go/inter_adapter"
	"github.com/opencord/voltha-protos/v5/go/voltha"
	"github.com/stretchr/testify/assert"
)

type testAdapter struct {
	adapter     *Asfvolt16
	coreService *mocks.MockCoreService
	mutex       sync.Mutex
	drivers     []*fakeDriver
}

func (ta *testAdapter) lastDriver() *fakeDriver {
	ta.mutex.Lock()
	defer ta.mutex.Unlock()
	if len(ta.drivers) == 0 {
		return nil
	}
	return ta.drivers[len(ta.drivers)-1]
}

func newTestAdapter(newResourceMgr ResourceMgrFactory) *testAdapter {
	ta := &testAdapter{coreService: mocks.NewMockCoreService(newTestOlt())}
	cp := NewCoreProxy(mocks.NewMockCoreClient(ta.coreService), time.Second)
	cfg := config.NewAdapterFlags()
	newDriver := func() HardwareDriver {
		ta.mutex.Lock()
		defer ta.mutex.Unlock()
		d := newFakeDriver()
		ta.drivers = append(ta.drivers, d)
		return d
	}
	ta.adapter = NewAsfvolt16(cp, NewInterAdapterPublisher(&mocks.MockKafkaSender{}, "asfvolt16"),
		&mocks.MockEventProxy{}, cfg, newDriver, newResourceMgr)
	return ta
}

func TestAsfvolt16_AdoptDevice(t *testing.T) {
	ta := newTestAdapter(nil)
	defer func() { _ = ta.adapter.Stop(context.Background()) }()
	ctx := context.Background()

	assert.Error(t, ta.adapter.AdoptDevice(ctx, nil))
	assert.NoError(t, ta.adapter.AdoptDevice(ctx, newTestOlt()))
	handler := ta.adapter.GetDeviceHandler(testOltID)
	assert.NotNil(t, handler)

	assert.Eventually(t, func() bool {
		return handler.transitionMap.CurrentState() == deviceStateActivating
	}, 5*time.Second, 10*time.Millisecond)

	// a second adoption keeps the existing handler
	assert.NoError(t, ta.adapter.AdoptDevice(ctx, newTestOlt()))
	assert.Equal(t, handler, ta.adapter.GetDeviceHandler(testOltID))
	assert.Len(t, ta.drivers, 1)
	assert.Nil(t, ta.adapter.GetDeviceHandler("olt-9"))
}

func TestAsfvolt16_AdoptDeviceAppliesBundle(t *testing.T) {
	ta := newTestAdapter(nil)
	defer func() { _ = ta.adapter.Stop(context.Background()) }()
	ta.coreService.AddChild(testOltID, newTestOnu(common.OperStatus_ACTIVE))
	ta.adapter.SetProvisioningBundle(&xpon.Bundle{
		ChannelTerminations: []xpon.ChannelTerminationConfig{{Name: "cterm-1", XgsPonID: 0}},
		VOntAnis:            []xpon.VOntAniConfig{{Name: "vont-1", OnuID: 1, ExpectedSerialNumber: testOnuSerial}},
		VEnets:              []xpon.VEnetConfig{{Name: "venet-1", InterfaceName: "uni-1", VOntAniRef: "vont-1"}},
	})

	assert.NoError(t, ta.adapter.AdoptDevice(context.Background(), newTestOlt()))
	assert.Eventually(t, func() bool {
		d := ta.lastDriver()
		return d != nil && len(d.activatedOnus()) == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return len(ta.coreService.Ports(testOltID)) == 3
	}, 5*time.Second, 10*time.Millisecond)
}

func TestAsfvolt16_ResourceMgrFailure(t *testing.T) {
	ta := newTestAdapter(func(ctx context.Context, deviceID string) (*rsrcMgr.AsfResourceMgr, error) {
		return nil, errors.New("kv-unreachable")
	})
	defer func() { _ = ta.adapter.Stop(context.Background()) }()

	assert.NoError(t, ta.adapter.AdoptDevice(context.Background(), newTestOlt()))
	handler := ta.adapter.GetDeviceHandler(testOltID)
	assert.NotNil(t, handler)
	assert.Nil(t, handler.resourceMgr)
}

func TestAsfvolt16_ProxyOmciMessage(t *testing.T) {
	ta := newTestAdapter(nil)
	defer func() { _ = ta.adapter.Stop(context.Background()) }()
	ctx := context.Background()
	assert.NoError(t, ta.adapter.AdoptDevice(ctx, newTestOlt()))

	request := &ia.OmciMessage{
		ParentDeviceId: testOltID,
		ChildDeviceId:  testOnuID,
		ProxyAddress:   &voltha.Device_ProxyAddress{DeviceId: testOltID, ChannelId: 0, OnuId: 1},
		Message:        []byte{0xca, 0xfe},
	}
	assert.NoError(t, ta.adapter.ProxyOmciMessage(ctx, request))
	d := ta.lastDriver()
	d.mutex.Lock()
	assert.Len(t, d.omci, 1)
	d.mutex.Unlock()

	request.ParentDeviceId = "olt-9"
	var nf *olterrors.ErrNotFound
	assert.True(t, errors.As(ta.adapter.ProxyOmciMessage(ctx, request), &nf))
	assert.Error(t, ta.adapter.ProxyOmciMessage(ctx, nil))
}
