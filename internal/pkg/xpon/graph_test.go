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
	"errors"
	"testing"

	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/olterrors"
	"github.com/stretchr/testify/assert"
)

func newTestGraph() *Graph {
	g := NewGraph(20, 9212)
	g.AddVOntAni(VOntAniConfig{Name: "vont-1", OnuID: 1, ExpectedSerialNumber: "BRCM00000001"})
	return g
}

func TestGraph_StaticConfigsAreInsertIfAbsent(t *testing.T) {
	g := NewGraph(20, 9212)
	tests := []struct {
		name  string
		first func() bool
		again func() bool
	}{
		{"channel-group",
			func() bool { return g.AddChannelGroup(ChannelGroupConfig{Name: "cg", Description: "first"}) },
			func() bool { return g.AddChannelGroup(ChannelGroupConfig{Name: "cg", Description: "second"}) }},
		{"channel-partition",
			func() bool { return g.AddChannelPartition(ChannelPartitionConfig{Name: "cpart"}) },
			func() bool { return g.AddChannelPartition(ChannelPartitionConfig{Name: "cpart"}) }},
		{"channel-pair",
			func() bool { return g.AddChannelPair(ChannelPairConfig{Name: "cpair"}) },
			func() bool { return g.AddChannelPair(ChannelPairConfig{Name: "cpair"}) }},
		{"channel-termination",
			func() bool { return g.AddChannelTermination(ChannelTerminationConfig{Name: "cterm", XgsPonID: 0}) },
			func() bool { return g.AddChannelTermination(ChannelTerminationConfig{Name: "cterm", XgsPonID: 3}) }},
		{"ont-ani",
			func() bool { return g.AddOntAni(OntAniConfig{Name: "ontani"}) },
			func() bool { return g.AddOntAni(OntAniConfig{Name: "ontani"}) }},
		{"v-ont-ani",
			func() bool { return g.AddVOntAni(VOntAniConfig{Name: "vont", OnuID: 1}) },
			func() bool { return g.AddVOntAni(VOntAniConfig{Name: "vont", OnuID: 2}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.first())
			assert.False(t, tt.again())
		})
	}

	cg, ok := g.ChannelGroupByName("cg")
	assert.True(t, ok)
	assert.Equal(t, "first", cg.Description)
	ct, _ := g.ChannelTerminationByName("cterm")
	assert.Equal(t, uint32(0), ct.XgsPonID)
	v, _ := g.VOntAniByName("vont")
	assert.Equal(t, uint32(1), v.Config.OnuID)
}

func TestGraph_TrafficDescriptorFirstWriteWins(t *testing.T) {
	g := NewGraph(20, 9212)
	assert.True(t, g.AddTrafficDescriptor(TrafficDescriptorConfig{Name: "td", MaximumBandwidth: 1000}))
	assert.False(t, g.AddTrafficDescriptor(TrafficDescriptorConfig{Name: "td", MaximumBandwidth: 5}))
	td, ok := g.TrafficDescriptorByName("td")
	assert.True(t, ok)
	assert.Equal(t, uint64(1000), td.MaximumBandwidth)
}

func TestGraph_AddVEnetAllocatesUniPorts(t *testing.T) {
	g := newTestGraph()
	uni, added := g.AddVEnet(VEnetConfig{Name: "venet-1", InterfaceName: "uni-1", VOntAniRef: "vont-1"})
	assert.True(t, added)
	assert.Equal(t, uint32(21), uni)

	_, added = g.AddVEnet(VEnetConfig{Name: "venet-1", InterfaceName: "other"})
	assert.False(t, added)

	uni, added = g.AddVEnet(VEnetConfig{Name: "venet-2", InterfaceName: "uni-2", VOntAniRef: "vont-1"})
	assert.True(t, added)
	assert.Equal(t, uint32(22), uni)

	v, ok := g.VEnetByName("venet-1")
	assert.True(t, ok)
	assert.Equal(t, "uni-1", v.Config.InterfaceName)
	assert.Equal(t, "vont-1", v.Config.VOntAniRef)
}

func TestGraph_RestoreVEnetMovesCounter(t *testing.T) {
	g := newTestGraph()
	assert.True(t, g.RestoreVEnet(VEnetConfig{Name: "venet-9"}, 29))
	assert.False(t, g.RestoreVEnet(VEnetConfig{Name: "venet-9"}, 30))
	uni, _ := g.AddVEnet(VEnetConfig{Name: "venet-10"})
	assert.Equal(t, uint32(30), uni)
}

func TestGraph_AddTcont(t *testing.T) {
	g := newTestGraph()

	added, err := g.AddTcont(TcontConfig{Name: "tcont-x", InterfaceReference: "missing", AllocID: 1024})
	assert.False(t, added)
	var nf *olterrors.ErrNotFound
	assert.True(t, errors.As(err, &nf))

	added, err = g.AddTcont(TcontConfig{Name: "tcont-1", InterfaceReference: "vont-1", AllocID: 1024})
	assert.NoError(t, err)
	assert.True(t, added)
	added, err = g.AddTcont(TcontConfig{Name: "tcont-1", InterfaceReference: "vont-1", AllocID: 2048})
	assert.NoError(t, err)
	assert.False(t, added)
	_, _ = g.AddTcont(TcontConfig{Name: "tcont-2", InterfaceReference: "vont-1", AllocID: 1025})

	v, _ := g.VOntAniByName("vont-1")
	tc, ok := v.TcontByName("tcont-1")
	assert.True(t, ok)
	assert.Equal(t, uint32(1024), tc.AllocID)
	tc, ok = v.TcontByAllocID(1025)
	assert.True(t, ok)
	assert.Equal(t, "tcont-2", tc.Name)
	_, ok = v.TcontByAllocID(2048)
	assert.False(t, ok)
	assert.Len(t, v.Tconts(), 2)
	assert.Equal(t, "tcont-1", v.Tconts()[0].Name)
}

func TestGraph_AddGemPort(t *testing.T) {
	g := newTestGraph()
	g.AddVEnet(VEnetConfig{Name: "venet-1", InterfaceName: "uni-1", VOntAniRef: "vont-1"})

	tests := []struct {
		name      string
		cfg       GemPortConfig
		wantAdded bool
		wantErr   interface{}
	}{
		{"owner-missing", GemPortConfig{Name: "gem-x", ItfRef: "nope", GemportID: 1024}, false, &olterrors.ErrNotFound{}},
		{"out-of-range", GemPortConfig{Name: "gem-big", ItfRef: "venet-1", GemportID: 9213}, false, &olterrors.ErrOutOfRange{}},
		{"at-max", GemPortConfig{Name: "gem-max", ItfRef: "venet-1", GemportID: 9212, TrafficClass: 0}, true, nil},
		{"tc-2", GemPortConfig{Name: "gem-1", ItfRef: "venet-1", GemportID: 1024, TrafficClass: 2, TcontRef: "tcont-1"}, true, nil},
		{"duplicate", GemPortConfig{Name: "gem-1", ItfRef: "venet-1", GemportID: 1025, TrafficClass: 2}, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, err := g.AddGemPort(tt.cfg)
			assert.Equal(t, tt.wantAdded, added)
			switch tt.wantErr.(type) {
			case *olterrors.ErrNotFound:
				var target *olterrors.ErrNotFound
				assert.True(t, errors.As(err, &target))
			case *olterrors.ErrOutOfRange:
				var target *olterrors.ErrOutOfRange
				assert.True(t, errors.As(err, &target))
			default:
				assert.NoError(t, err)
			}
		})
	}

	v, _ := g.VEnetByName("venet-1")
	_, ok := v.GemPortByName("gem-big")
	assert.False(t, ok)
	gem, ok := v.GemPortByTrafficClass(2)
	assert.True(t, ok)
	assert.Equal(t, uint32(1024), gem.GemportID)
	assert.Equal(t, "tcont-1", gem.TcontRef)
	_, ok = v.GemPortByTrafficClass(5)
	assert.False(t, ok)
	assert.Len(t, v.GemPorts(), 2)
}

func TestGraph_VOntAnisByOnuID(t *testing.T) {
	g := newTestGraph()
	g.AddVOntAni(VOntAniConfig{Name: "vont-2", OnuID: 2})
	g.AddVOntAni(VOntAniConfig{Name: "vont-1b", OnuID: 1})

	matches := g.VOntAnisByOnuID(1)
	assert.Len(t, matches, 2)
	assert.Equal(t, "vont-1", matches[0].Config.Name)
	assert.Equal(t, "vont-1b", matches[1].Config.Name)
	assert.Empty(t, g.VOntAnisByOnuID(7))
}

func TestInterfaceKinds(t *testing.T) {
	tests := []struct {
		cfg  InterfaceConfig
		kind InterfaceKind
		name string
	}{
		{&ChannelGroupConfig{Name: "a"}, KindChannelGroup, "channel-group"},
		{&ChannelPartitionConfig{Name: "a"}, KindChannelPartition, "channel-partition"},
		{&ChannelPairConfig{Name: "a"}, KindChannelPair, "channel-pair"},
		{&ChannelTerminationConfig{Name: "a"}, KindChannelTermination, "channel-termination"},
		{&VOntAniConfig{Name: "a"}, KindVOntAni, "v-ont-ani"},
		{&VEnetConfig{Name: "a"}, KindVEnet, "v-enet"},
		{&OntAniConfig{Name: "a"}, KindOntAni, "ont-ani"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.cfg.Kind())
			assert.Equal(t, tt.name, tt.cfg.Kind().String())
			assert.Equal(t, "a", tt.cfg.InterfaceName())
		})
	}
	assert.Equal(t, "unknown", InterfaceKind(42).String())
}

func TestGraph_VEnetByPortLabel(t *testing.T) {
	g := newTestGraph()
	g.AddVEnet(VEnetConfig{Name: "venet-1", InterfaceName: "uni-1", VOntAniRef: "vont-1"})
	g.AddVEnet(VEnetConfig{Name: "venet-2", VOntAniRef: "vont-1"})

	tests := []struct {
		label string
		want  string
		found bool
	}{
		{"venet-1", "venet-1", true},
		{"uni-1", "venet-1", true},
		{"venet-2", "venet-2", true},
		{"uni-9", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			v, ok := g.VEnetByPortLabel(tt.label)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, v.Config.Name)
			}
		})
	}

	v, _ := g.VEnetByName("venet-1")
	assert.Equal(t, "uni-1", v.Config.PortLabel())
	v, _ = g.VEnetByName("venet-2")
	assert.Equal(t, "venet-2", v.Config.PortLabel())
}
