/*
 * Copyright 2019-present Open Networking Foundation

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

//Package resourcemanager persists the provisioning records and installed flow ids of an OLT
package resourcemanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/olterrors"
	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/xpon"
	"github.com/opencord/voltha-lib-go/v7/pkg/db"
	"github.com/opencord/voltha-lib-go/v7/pkg/db/kvstore"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
)

const (
	// KvstoreTimeout specifies the time out for KV Store Connection
	KvstoreTimeout = 5 * time.Second
	// BasePathKvStore - <pathPrefix>/asfvolt16/<device_id>
	BasePathKvStore = "%s/asfvolt16/{%s}"
	// XponConfigPathPrefix - xpon/<kind>/
	XponConfigPathPrefix = "xpon/%s/"
	// XponConfigPath - xpon/<kind>/{<name>}
	XponConfigPath = XponConfigPathPrefix + "{%s}"
	//FlowIDPath - Path on the KV store for storing list of Flow IDs installed for a given ONU
	//Format: flow_ids/{<onu_id>}
	FlowIDPath = "flow_ids/{%d}"

	// record kinds not covered by xpon.InterfaceKind
	trafficDescriptorKind = "traffic-descriptor"
	tcontKind             = "tcont"
	gemPortKind           = "gemport"
)

// VEnetRecord is the stored form of a v-enet: its config and the UNI port it was given
type VEnetRecord struct {
	xpon.VEnetConfig
	UniPortNo uint32 `json:"uni_port_no"`
}

// Provisioning is everything previously stored for one OLT
type Provisioning struct {
	Bundle     xpon.Bundle
	UniPortNos map[string]uint32
}

// AsfResourceMgr holds resource related information as provided below for each field
type AsfResourceMgr struct {
	DeviceID string      // OLT device id
	Address  string      // Host and port of the kv store to connect to
	KVStore  *db.Backend // backend kv store connection handle

	// serialises read-modify-write of the flow id lists
	flowIDLock sync.Mutex
}

func newKVClient(ctx context.Context, storeType string, address string, timeout time.Duration) (kvstore.Client, error) {
	logger.Infow(ctx, "kv-store-type", log.Fields{"store": storeType})
	switch storeType {
	case "etcd":
		return kvstore.NewEtcdClient(ctx, address, timeout, log.FatalLevel)
	}
	return nil, errors.New("unsupported-kv-store")
}

// SetKVClient sets the KV client and return a kv backend
func SetKVClient(ctx context.Context, backend string, addr string, DeviceID string, basePathKvStore string) *db.Backend {
	kvClient, err := newKVClient(ctx, backend, addr, KvstoreTimeout)
	if err != nil {
		logger.Errorw(ctx, "failed-to-create-kv-client", log.Fields{"error": err, "device-id": DeviceID})
		return nil
	}

	kvbackend := &db.Backend{
		Client:     kvClient,
		StoreType:  backend,
		Address:    addr,
		Timeout:    KvstoreTimeout,
		PathPrefix: fmt.Sprintf(BasePathKvStore, basePathKvStore, DeviceID)}

	return kvbackend
}

// NewResourceMgr creates the resource manager of one OLT backed by the given kv store
func NewResourceMgr(ctx context.Context, deviceID string, KVStoreAddress string, kvStoreType string, basePathKvStore string) (*AsfResourceMgr, error) {
	logger.Debugw(ctx, "init-new-resource-manager", log.Fields{"address": KVStoreAddress, "device-id": deviceID})
	rsrcMgr := &AsfResourceMgr{
		DeviceID: deviceID,
		Address:  KVStoreAddress,
	}
	rsrcMgr.KVStore = SetKVClient(ctx, kvStoreType, KVStoreAddress, deviceID, basePathKvStore)
	if rsrcMgr.KVStore == nil {
		return nil, olterrors.ErrResourceManagerInstantiating
	}
	logger.Infow(ctx, "initialization-of-resource-manager-success", log.Fields{"device-id": deviceID})
	return rsrcMgr, nil
}

// NewResourceMgrWithBackend creates the resource manager of one OLT over an existing backend
func NewResourceMgrWithBackend(deviceID string, backend *db.Backend) *AsfResourceMgr {
	return &AsfResourceMgr{
		DeviceID: deviceID,
		Address:  backend.Address,
		KVStore:  backend,
	}
}

func (RsrcMgr *AsfResourceMgr) putJSON(ctx context.Context, path string, value interface{}) error {
	val, err := json.Marshal(value)
	if err != nil {
		logger.Errorw(ctx, "failed-to-marshal-data", log.Fields{"error": err, "path": path})
		return err
	}
	if err = RsrcMgr.KVStore.Put(ctx, path, val); err != nil {
		logger.Errorw(ctx, "failed-to-put-to-kvstore", log.Fields{"error": err, "path": path})
		return err
	}
	return nil
}

func (RsrcMgr *AsfResourceMgr) storeXponRecord(ctx context.Context, kind, name string, record interface{}) error {
	path := fmt.Sprintf(XponConfigPath, kind, name)
	if err := RsrcMgr.putJSON(ctx, path, record); err != nil {
		return olterrors.NewErrPersistence("add", kind, 0, log.Fields{"name": name, "device-id": RsrcMgr.DeviceID}, err)
	}
	logger.Debugw(ctx, "stored-xpon-record", log.Fields{"path": path})
	return nil
}

// StoreInterface persists an interface config. uniPortNo is only used for v-enets.
func (RsrcMgr *AsfResourceMgr) StoreInterface(ctx context.Context, itf xpon.InterfaceConfig, uniPortNo uint32) error {
	var record interface{} = itf
	if venet, ok := itf.(*xpon.VEnetConfig); ok {
		record = VEnetRecord{VEnetConfig: *venet, UniPortNo: uniPortNo}
	}
	return RsrcMgr.storeXponRecord(ctx, itf.Kind().String(), itf.InterfaceName(), record)
}

// StoreTrafficDescriptor persists a traffic descriptor
func (RsrcMgr *AsfResourceMgr) StoreTrafficDescriptor(ctx context.Context, td *xpon.TrafficDescriptorConfig) error {
	return RsrcMgr.storeXponRecord(ctx, trafficDescriptorKind, td.Name, td)
}

// StoreTcont persists a TCONT
func (RsrcMgr *AsfResourceMgr) StoreTcont(ctx context.Context, tcont *xpon.TcontConfig) error {
	return RsrcMgr.storeXponRecord(ctx, tcontKind, tcont.Name, tcont)
}

// StoreGemPort persists a GEM port
func (RsrcMgr *AsfResourceMgr) StoreGemPort(ctx context.Context, gem *xpon.GemPortConfig) error {
	return RsrcMgr.storeXponRecord(ctx, gemPortKind, gem.Name, gem)
}

// listXponRecords returns the raw records of one kind ordered by key
func (RsrcMgr *AsfResourceMgr) listXponRecords(ctx context.Context, kind string) ([][]byte, error) {
	path := fmt.Sprintf(XponConfigPathPrefix, kind)
	kvPairs, err := RsrcMgr.KVStore.List(ctx, path)
	if err != nil {
		logger.Errorw(ctx, "failed-to-list-from-kvstore", log.Fields{"error": err, "path": path})
		return nil, err
	}
	keys := make([]string, 0, len(kvPairs))
	for key := range kvPairs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	records := make([][]byte, 0, len(keys))
	for _, key := range keys {
		if kvPairs[key] == nil || kvPairs[key].Value == nil {
			continue
		}
		val, err := kvstore.ToByte(kvPairs[key].Value)
		if err != nil {
			logger.Errorw(ctx, "failed-to-convert-to-byte-array", log.Fields{"error": err, "key": key})
			return nil, err
		}
		records = append(records, val)
	}
	return records, nil
}

func (RsrcMgr *AsfResourceMgr) loadKind(ctx context.Context, kind string, decode func([]byte) error) error {
	records, err := RsrcMgr.listXponRecords(ctx, kind)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := decode(rec); err != nil {
			logger.Errorw(ctx, "failed-to-unmarshal", log.Fields{"error": err, "kind": kind})
			return err
		}
	}
	return nil
}

// LoadProvisioning reads back every xPON record stored for the OLT
func (RsrcMgr *AsfResourceMgr) LoadProvisioning(ctx context.Context) (*Provisioning, error) {
	p := &Provisioning{UniPortNos: make(map[string]uint32)}
	b := &p.Bundle
	loaders := []struct {
		kind   string
		decode func([]byte) error
	}{
		{xpon.KindChannelGroup.String(), func(data []byte) error {
			var c xpon.ChannelGroupConfig
			err := json.Unmarshal(data, &c)
			b.ChannelGroups = append(b.ChannelGroups, c)
			return err
		}},
		{xpon.KindChannelPartition.String(), func(data []byte) error {
			var c xpon.ChannelPartitionConfig
			err := json.Unmarshal(data, &c)
			b.ChannelPartitions = append(b.ChannelPartitions, c)
			return err
		}},
		{xpon.KindChannelPair.String(), func(data []byte) error {
			var c xpon.ChannelPairConfig
			err := json.Unmarshal(data, &c)
			b.ChannelPairs = append(b.ChannelPairs, c)
			return err
		}},
		{xpon.KindChannelTermination.String(), func(data []byte) error {
			var c xpon.ChannelTerminationConfig
			err := json.Unmarshal(data, &c)
			b.ChannelTerminations = append(b.ChannelTerminations, c)
			return err
		}},
		{xpon.KindVOntAni.String(), func(data []byte) error {
			var c xpon.VOntAniConfig
			err := json.Unmarshal(data, &c)
			b.VOntAnis = append(b.VOntAnis, c)
			return err
		}},
		{xpon.KindOntAni.String(), func(data []byte) error {
			var c xpon.OntAniConfig
			err := json.Unmarshal(data, &c)
			b.OntAnis = append(b.OntAnis, c)
			return err
		}},
		{xpon.KindVEnet.String(), func(data []byte) error {
			var r VEnetRecord
			err := json.Unmarshal(data, &r)
			b.VEnets = append(b.VEnets, r.VEnetConfig)
			p.UniPortNos[r.Name] = r.UniPortNo
			return err
		}},
		{trafficDescriptorKind, func(data []byte) error {
			var c xpon.TrafficDescriptorConfig
			err := json.Unmarshal(data, &c)
			b.TrafficDescriptors = append(b.TrafficDescriptors, c)
			return err
		}},
		{tcontKind, func(data []byte) error {
			var c xpon.TcontConfig
			err := json.Unmarshal(data, &c)
			b.Tconts = append(b.Tconts, c)
			return err
		}},
		{gemPortKind, func(data []byte) error {
			var c xpon.GemPortConfig
			err := json.Unmarshal(data, &c)
			b.GemPorts = append(b.GemPorts, c)
			return err
		}},
	}
	for _, l := range loaders {
		if err := RsrcMgr.loadKind(ctx, l.kind, l.decode); err != nil {
			return nil, olterrors.NewErrPersistence("load", l.kind, 0, log.Fields{"device-id": RsrcMgr.DeviceID}, err)
		}
	}
	return p, nil
}

// GetFlowIDsForOnu returns the ids of the flows installed for the ONU
func (RsrcMgr *AsfResourceMgr) GetFlowIDsForOnu(ctx context.Context, onuID uint32) ([]uint64, error) {
	var flowIDs []uint64
	path := fmt.Sprintf(FlowIDPath, onuID)

	value, err := RsrcMgr.KVStore.Get(ctx, path)
	if err != nil {
		logger.Errorw(ctx, "failed-to-get-from-kv-store", log.Fields{"path": path})
		return nil, err
	} else if value == nil {
		logger.Debugw(ctx, "no-flow-ids-found", log.Fields{"path": path})
		return nil, nil
	}
	val, err := kvstore.ToByte(value.Value)
	if err != nil {
		logger.Error(ctx, "failed-to-convert-to-byte-array")
		return nil, err
	}
	if err = json.Unmarshal(val, &flowIDs); err != nil {
		logger.Error(ctx, "failed-to-unmarshall")
		return nil, err
	}
	return flowIDs, nil
}

// AddFlowIDForOnu records an installed flow id for the ONU unless already recorded
func (RsrcMgr *AsfResourceMgr) AddFlowIDForOnu(ctx context.Context, onuID uint32, flowID uint64) error {
	RsrcMgr.flowIDLock.Lock()
	defer RsrcMgr.flowIDLock.Unlock()

	flowIDs, err := RsrcMgr.GetFlowIDsForOnu(ctx, onuID)
	if err != nil {
		return err
	}
	if present, _ := checkForFlowIDInList(flowIDs, flowID); present {
		return nil
	}
	flowIDs = append(flowIDs, flowID)
	path := fmt.Sprintf(FlowIDPath, onuID)
	if err := RsrcMgr.putJSON(ctx, path, flowIDs); err != nil {
		return olterrors.NewErrPersistence("add", "flow-id", flowID, log.Fields{"onu-id": onuID}, err)
	}
	logger.Debugw(ctx, "added-flow-id-for-onu", log.Fields{"path": path, "flow-ids": flowIDs})
	return nil
}

// Delete removes everything stored for the OLT
func (RsrcMgr *AsfResourceMgr) Delete(ctx context.Context) error {
	if err := RsrcMgr.KVStore.DeleteWithPrefix(ctx, ""); err != nil {
		return olterrors.NewErrPersistence("delete", "device", 0, log.Fields{"device-id": RsrcMgr.DeviceID}, err)
	}
	return nil
}

func checkForFlowIDInList(FlowIDList []uint64, FlowID uint64) (bool, uint64) {
	for idx := range FlowIDList {
		if FlowID == FlowIDList[idx] {
			return true, uint64(idx)
		}
	}
	return false, 0
}
