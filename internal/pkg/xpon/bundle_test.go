/*
 * Copyright 2020-present Open Networking Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package xpon

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testBundle = `
channel_groups:
  - name: cg-1
channel_partitions:
  - name: cpart-1
    channelgroup_ref: cg-1
channel_pairs:
  - name: cpair-1
    channelpartition_ref: cpart-1
channel_terminations:
  - name: cterm-1
    channelpair_ref: cpair-1
    xgs_ponid: 2
v_ont_anis:
  - name: vont-1
    onu_id: 1
    expected_serial_number: BRCM12345678
v_enets:
  - name: venet-1
    interface_name: uni-1
    v_ontani_ref: vont-1
traffic_descriptors:
  - name: td-1
    maximum_bandwidth: 1000000
tconts:
  - name: tcont-1
    interface_reference: vont-1
    alloc_id: 1024
    traffic_descriptor_profile_ref: td-1
gemports:
  - name: gem-1
    itf_ref: venet-1
    traffic_class: 2
    gemport_id: 1024
    tcont_ref: tcont-1
`

func TestParseBundle(t *testing.T) {
	b, err := ParseBundle([]byte(testBundle))
	assert.NoError(t, err)

	itfs := b.Interfaces()
	var kinds []InterfaceKind
	for _, itf := range itfs {
		kinds = append(kinds, itf.Kind())
	}
	assert.Equal(t, []InterfaceKind{KindChannelGroup, KindChannelPartition, KindChannelPair,
		KindChannelTermination, KindVOntAni, KindVEnet}, kinds)

	ct := itfs[3].(*ChannelTerminationConfig)
	assert.Equal(t, uint32(2), ct.XgsPonID)
	vont := itfs[4].(*VOntAniConfig)
	assert.Equal(t, "BRCM12345678", vont.ExpectedSerialNumber)

	assert.Len(t, b.Tconts, 1)
	assert.Equal(t, uint32(1024), b.Tconts[0].AllocID)
	td, ok := b.TrafficDescriptor(b.Tconts[0].TrafficDescriptorProfileRef)
	assert.True(t, ok)
	assert.Equal(t, uint64(1000000), td.MaximumBandwidth)
	_, ok = b.TrafficDescriptor("none")
	assert.False(t, ok)

	assert.Equal(t, "tcont-1", b.GemPorts[0].TcontRef)
}

func TestParseBundle_Invalid(t *testing.T) {
	_, err := ParseBundle([]byte("tconts: [name: {"))
	assert.Error(t, err)
}

func TestLoadBundle(t *testing.T) {
	dir, err := ioutil.TempDir("", "xpon")
	assert.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "bundle.yaml")
	assert.NoError(t, ioutil.WriteFile(path, []byte(testBundle), 0600))

	b, err := LoadBundle(path)
	assert.NoError(t, err)
	assert.Len(t, b.VEnets, 1)

	_, err = LoadBundle(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
