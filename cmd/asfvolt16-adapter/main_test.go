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

package main

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/config"
	vgrpc "github.com/opencord/voltha-lib-go/v7/pkg/grpc"
	mgrpc "github.com/opencord/voltha-lib-go/v7/pkg/mocks/grpc"
	"github.com/stretchr/testify/assert"
	"go.etcd.io/etcd/pkg/mock/mockserver"
)

const testBundle = `
channel_terminations:
  - name: cterm-1
    xgs_ponid: 0
v_ont_anis:
  - name: vont-1
    onu_id: 1
    expected_serial_number: BRCM12345678
`

func newMockAdapter() *adapter {
	cf := config.NewAdapterFlags()
	cf.KVStoreType = "etcd"
	ad := newAdapter(cf)
	return ad
}

func Test_adapter_setKVClient(t *testing.T) {
	adapt := newMockAdapter()
	adapt1 := newMockAdapter()
	adapt1.config.KVStoreType = "etcd"
	adapt2 := newMockAdapter()
	adapt2.config.KVStoreType = ""
	a, _ := mockserver.StartMockServers(1)
	_ = a.StartAt(0)
	defer a.StopAt(0)
	tests := []struct {
		name    string
		adapter *adapter
		wantErr bool
	}{
		{"setKVClient", adapt, false},
		{"setKVClient-etcd", adapt1, false},
		{"setKVClient-unsupported", adapt2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.adapter.setKVClient(context.Background()); (err != nil) != tt.wantErr {
				t.Errorf("adapter.setKVClient() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_registerWithCore(t *testing.T) {
	ad := newMockAdapter()
	ctx := context.TODO()
	ms, err := mgrpc.NewMockGRPCServer(ctx)
	if err != nil {
		t.Errorf("grpc server: expected error:nil, got error: %v", err)
	}
	ms.AddCoreService(ctx, &vgrpc.MockCoreServiceHandler{})
	go ms.Start(ctx)
	defer ms.Stop()

	if ad.coreClient, err = vgrpc.NewClient(
		"asfvolt16-endpoint",
		ms.ApiEndpoint,
		ad.coreRestarted); err != nil {
		t.Errorf("grpc client: expected error:nil, got error: %v", err)
	}
	go ad.coreClient.Start(ctx, setAndTestCoreServiceHandler)
	defer ad.coreClient.Stop(ctx)
	err = ad.registerWithCore(ctx, coreService, 1)
	if err != nil {
		t.Errorf("Expected error:nil, got error: %v", err)
	}
}

func Test_startAsfvolt16(t *testing.T) {
	dir, err := ioutil.TempDir("", "asfvolt16")
	assert.NoError(t, err)
	defer os.RemoveAll(dir)
	bundleFile := filepath.Join(dir, "xpon.yaml")
	assert.NoError(t, ioutil.WriteFile(bundleFile, []byte(testBundle), 0600))

	tests := []struct {
		name             string
		provisioningFile string
		wantErr          bool
	}{
		{"no-provisioning-file", "", false},
		{"provisioning-file", bundleFile, false},
		{"missing-provisioning-file", filepath.Join(dir, "missing.yaml"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ad := newMockAdapter()
			ad.config.ProvisioningFile = tt.provisioningFile
			oltAdapter, err := ad.startAsfvolt16(context.Background(), nil, nil, nil, ad.config)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, oltAdapter)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, oltAdapter)
			assert.Nil(t, oltAdapter.GetDeviceHandler("olt-1"))
		})
	}
}

func Test_newResourceMgrFactory(t *testing.T) {
	cf := config.NewAdapterFlags()
	cf.KVStoreAddress = ""
	assert.Nil(t, newResourceMgrFactory(cf))

	cf.KVStoreType = ""
	cf.KVStoreAddress = "127.0.0.1:2379"
	factory := newResourceMgrFactory(cf)
	assert.NotNil(t, factory)
	rm, err := factory(context.Background(), "olt-1")
	assert.Error(t, err)
	assert.Nil(t, rm)
}

func Test_newKafkaClient(t *testing.T) {
	adapter := newMockAdapter()
	tests := []struct {
		name       string
		clientType string
		wantErr    bool
	}{
		{"sarama", "sarama", false},
		{"unsupported", "confluent", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newKafkaClient(context.Background(), tt.clientType, adapter.config.KafkaClusterAddress)
			if (err != nil) != tt.wantErr {
				t.Errorf("newKafkaClient() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
