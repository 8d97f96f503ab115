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

//Package xpon holds the xPON provisioning graph of one OLT
package xpon

import (
	"context"

	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/olterrors"
)

// VOntAni is a v-ONT-ANI together with the TCONTs it owns
type VOntAni struct {
	Config     VOntAniConfig
	tconts     map[string]*TcontConfig
	tcontOrder []string
}

// TcontByName returns the TCONT with the given name
func (v *VOntAni) TcontByName(name string) (*TcontConfig, bool) {
	tcont, ok := v.tconts[name]
	return tcont, ok
}

// TcontByAllocID returns the TCONT using the given alloc id
func (v *VOntAni) TcontByAllocID(allocID uint32) (*TcontConfig, bool) {
	for _, name := range v.tcontOrder {
		if tcont := v.tconts[name]; tcont.AllocID == allocID {
			return tcont, true
		}
	}
	return nil, false
}

// Tconts returns the TCONTs of the v-ONT-ANI in the order they were created
func (v *VOntAni) Tconts() []*TcontConfig {
	tconts := make([]*TcontConfig, 0, len(v.tcontOrder))
	for _, name := range v.tcontOrder {
		tconts = append(tconts, v.tconts[name])
	}
	return tconts
}

// VEnet is a v-enet together with its UNI port number and the GEM ports it owns
type VEnet struct {
	Config     VEnetConfig
	UniPortNo  uint32
	gemPorts   map[string]*GemPortConfig
	gemPortOrd []string
}

// GemPortByName returns the GEM port with the given name
func (v *VEnet) GemPortByName(name string) (*GemPortConfig, bool) {
	gem, ok := v.gemPorts[name]
	return gem, ok
}

// GemPortByTrafficClass returns the first GEM port created with the given traffic class
func (v *VEnet) GemPortByTrafficClass(trafficClass uint32) (*GemPortConfig, bool) {
	for _, name := range v.gemPortOrd {
		if gem := v.gemPorts[name]; gem.TrafficClass == trafficClass {
			return gem, true
		}
	}
	return nil, false
}

// GemPorts returns the GEM ports of the v-enet in the order they were created
func (v *VEnet) GemPorts() []*GemPortConfig {
	gems := make([]*GemPortConfig, 0, len(v.gemPortOrd))
	for _, name := range v.gemPortOrd {
		gems = append(gems, v.gemPorts[name])
	}
	return gems
}

// Graph is the provisioning graph of one OLT. Every store is keyed by name and
// insert-if-absent; nothing is ever removed. Graph does no locking, callers
// serialise access with the owning device lock.
type Graph struct {
	channelGroups       map[string]*ChannelGroupConfig
	channelPartitions   map[string]*ChannelPartitionConfig
	channelPairs        map[string]*ChannelPairConfig
	channelTerminations map[string]*ChannelTerminationConfig
	ontAnis             map[string]*OntAniConfig
	trafficDescriptors  map[string]*TrafficDescriptorConfig
	vOntAnis            map[string]*VOntAni
	vOntAniOrder        []string
	vEnets              map[string]*VEnet

	lastUniPortNo uint32
	maxGemPortID  uint32
}

// NewGraph returns an empty graph whose first allocated UNI port is uniPortBase+1
func NewGraph(uniPortBase, maxGemPortID uint32) *Graph {
	return &Graph{
		channelGroups:       make(map[string]*ChannelGroupConfig),
		channelPartitions:   make(map[string]*ChannelPartitionConfig),
		channelPairs:        make(map[string]*ChannelPairConfig),
		channelTerminations: make(map[string]*ChannelTerminationConfig),
		ontAnis:             make(map[string]*OntAniConfig),
		trafficDescriptors:  make(map[string]*TrafficDescriptorConfig),
		vOntAnis:            make(map[string]*VOntAni),
		vEnets:              make(map[string]*VEnet),
		lastUniPortNo:       uniPortBase,
		maxGemPortID:        maxGemPortID,
	}
}

func duplicate(kind, name string) {
	logger.Warnw(context.Background(), "duplicate-config-ignored", log.Fields{"kind": kind, "name": name})
}

// AddChannelGroup stores cfg and reports whether it was new
func (g *Graph) AddChannelGroup(cfg ChannelGroupConfig) bool {
	if _, ok := g.channelGroups[cfg.Name]; ok {
		duplicate(KindChannelGroup.String(), cfg.Name)
		return false
	}
	g.channelGroups[cfg.Name] = &cfg
	return true
}

// AddChannelPartition stores cfg and reports whether it was new
func (g *Graph) AddChannelPartition(cfg ChannelPartitionConfig) bool {
	if _, ok := g.channelPartitions[cfg.Name]; ok {
		duplicate(KindChannelPartition.String(), cfg.Name)
		return false
	}
	g.channelPartitions[cfg.Name] = &cfg
	return true
}

// AddChannelPair stores cfg and reports whether it was new
func (g *Graph) AddChannelPair(cfg ChannelPairConfig) bool {
	if _, ok := g.channelPairs[cfg.Name]; ok {
		duplicate(KindChannelPair.String(), cfg.Name)
		return false
	}
	g.channelPairs[cfg.Name] = &cfg
	return true
}

// AddChannelTermination stores cfg and reports whether it was new
func (g *Graph) AddChannelTermination(cfg ChannelTerminationConfig) bool {
	if _, ok := g.channelTerminations[cfg.Name]; ok {
		duplicate(KindChannelTermination.String(), cfg.Name)
		return false
	}
	g.channelTerminations[cfg.Name] = &cfg
	return true
}

// AddOntAni stores cfg and reports whether it was new
func (g *Graph) AddOntAni(cfg OntAniConfig) bool {
	if _, ok := g.ontAnis[cfg.Name]; ok {
		duplicate(KindOntAni.String(), cfg.Name)
		return false
	}
	g.ontAnis[cfg.Name] = &cfg
	return true
}

// AddTrafficDescriptor stores cfg unless a descriptor of that name already exists.
// The first write wins.
func (g *Graph) AddTrafficDescriptor(cfg TrafficDescriptorConfig) bool {
	if _, ok := g.trafficDescriptors[cfg.Name]; ok {
		duplicate("traffic-descriptor", cfg.Name)
		return false
	}
	g.trafficDescriptors[cfg.Name] = &cfg
	return true
}

// AddVOntAni stores cfg with an empty TCONT set and reports whether it was new
func (g *Graph) AddVOntAni(cfg VOntAniConfig) bool {
	if _, ok := g.vOntAnis[cfg.Name]; ok {
		duplicate(KindVOntAni.String(), cfg.Name)
		return false
	}
	g.vOntAnis[cfg.Name] = &VOntAni{Config: cfg, tconts: make(map[string]*TcontConfig)}
	g.vOntAniOrder = append(g.vOntAniOrder, cfg.Name)
	return true
}

// AddVEnet stores cfg and allocates the next UNI port number for it. The
// returned port number is only meaningful when added is true.
func (g *Graph) AddVEnet(cfg VEnetConfig) (uniPortNo uint32, added bool) {
	if _, ok := g.vEnets[cfg.Name]; ok {
		duplicate(KindVEnet.String(), cfg.Name)
		return 0, false
	}
	g.lastUniPortNo++
	g.vEnets[cfg.Name] = &VEnet{Config: cfg, UniPortNo: g.lastUniPortNo, gemPorts: make(map[string]*GemPortConfig)}
	return g.lastUniPortNo, true
}

// RestoreVEnet stores cfg with a previously allocated UNI port number and
// moves the UNI counter past it
func (g *Graph) RestoreVEnet(cfg VEnetConfig, uniPortNo uint32) bool {
	if _, ok := g.vEnets[cfg.Name]; ok {
		return false
	}
	g.vEnets[cfg.Name] = &VEnet{Config: cfg, UniPortNo: uniPortNo, gemPorts: make(map[string]*GemPortConfig)}
	if uniPortNo > g.lastUniPortNo {
		g.lastUniPortNo = uniPortNo
	}
	return true
}

// AddTcont stores cfg under the v-ONT-ANI named by its interface reference
func (g *Graph) AddTcont(cfg TcontConfig) (bool, error) {
	vOnt, ok := g.vOntAnis[cfg.InterfaceReference]
	if !ok {
		return false, olterrors.NewErrNotFound("v-ont-ani", log.Fields{
			"tcont":               cfg.Name,
			"interface-reference": cfg.InterfaceReference}, nil)
	}
	if _, ok := vOnt.tconts[cfg.Name]; ok {
		duplicate("tcont", cfg.Name)
		return false, nil
	}
	vOnt.tconts[cfg.Name] = &cfg
	vOnt.tcontOrder = append(vOnt.tcontOrder, cfg.Name)
	return true, nil
}

// AddGemPort stores cfg under the v-enet named by its itf_ref. A GEM port id
// above the device maximum is rejected and nothing is stored.
func (g *Graph) AddGemPort(cfg GemPortConfig) (bool, error) {
	vEnet, ok := g.vEnets[cfg.ItfRef]
	if !ok {
		return false, olterrors.NewErrNotFound("v-enet", log.Fields{
			"gemport": cfg.Name,
			"itf-ref": cfg.ItfRef}, nil)
	}
	if cfg.GemportID > g.maxGemPortID {
		return false, olterrors.NewErrOutOfRange("gemport-id", uint64(cfg.GemportID), uint64(g.maxGemPortID),
			log.Fields{"gemport": cfg.Name}, nil)
	}
	if _, ok := vEnet.gemPorts[cfg.Name]; ok {
		duplicate("gemport", cfg.Name)
		return false, nil
	}
	vEnet.gemPorts[cfg.Name] = &cfg
	vEnet.gemPortOrd = append(vEnet.gemPortOrd, cfg.Name)
	return true, nil
}

// ChannelGroupByName returns the named channel group
func (g *Graph) ChannelGroupByName(name string) (*ChannelGroupConfig, bool) {
	cfg, ok := g.channelGroups[name]
	return cfg, ok
}

// ChannelPartitionByName returns the named channel partition
func (g *Graph) ChannelPartitionByName(name string) (*ChannelPartitionConfig, bool) {
	cfg, ok := g.channelPartitions[name]
	return cfg, ok
}

// ChannelPairByName returns the named channel pair
func (g *Graph) ChannelPairByName(name string) (*ChannelPairConfig, bool) {
	cfg, ok := g.channelPairs[name]
	return cfg, ok
}

// ChannelTerminationByName returns the named channel termination
func (g *Graph) ChannelTerminationByName(name string) (*ChannelTerminationConfig, bool) {
	cfg, ok := g.channelTerminations[name]
	return cfg, ok
}

// OntAniByName returns the named ONT ANI
func (g *Graph) OntAniByName(name string) (*OntAniConfig, bool) {
	cfg, ok := g.ontAnis[name]
	return cfg, ok
}

// TrafficDescriptorByName returns the named traffic descriptor
func (g *Graph) TrafficDescriptorByName(name string) (*TrafficDescriptorConfig, bool) {
	cfg, ok := g.trafficDescriptors[name]
	return cfg, ok
}

// VOntAniByName returns the named v-ONT-ANI
func (g *Graph) VOntAniByName(name string) (*VOntAni, bool) {
	v, ok := g.vOntAnis[name]
	return v, ok
}

// VOntAnisByOnuID returns, in creation order, every v-ONT-ANI bound to onuID
func (g *Graph) VOntAnisByOnuID(onuID uint32) []*VOntAni {
	var matches []*VOntAni
	for _, name := range g.vOntAniOrder {
		if v := g.vOntAnis[name]; v.Config.OnuID == onuID {
			matches = append(matches, v)
		}
	}
	return matches
}

// VEnetByName returns the named v-enet
func (g *Graph) VEnetByName(name string) (*VEnet, bool) {
	v, ok := g.vEnets[name]
	return v, ok
}

// VEnetByPortLabel returns the v-enet whose UNI port carries label. The name
// is matched first, then the interface name.
func (g *Graph) VEnetByPortLabel(label string) (*VEnet, bool) {
	if v, ok := g.vEnets[label]; ok {
		return v, true
	}
	for _, v := range g.vEnets {
		if v.Config.InterfaceName != "" && v.Config.InterfaceName == label {
			return v, true
		}
	}
	return nil, false
}
