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

// InterfaceKind identifies the concrete type behind an InterfaceConfig
type InterfaceKind int

// xPON interface kinds
const (
	KindChannelGroup InterfaceKind = iota
	KindChannelPartition
	KindChannelPair
	KindChannelTermination
	KindVOntAni
	KindVEnet
	KindOntAni
)

var kindNames = map[InterfaceKind]string{
	KindChannelGroup:       "channel-group",
	KindChannelPartition:   "channel-partition",
	KindChannelPair:        "channel-pair",
	KindChannelTermination: "channel-termination",
	KindVOntAni:            "v-ont-ani",
	KindVEnet:              "v-enet",
	KindOntAni:             "ont-ani",
}

func (k InterfaceKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// InterfaceConfig is one of the xPON interface configs accepted by CreateInterface.
// The set of implementations is closed to this package.
type InterfaceConfig interface {
	InterfaceName() string
	Kind() InterfaceKind
	isInterfaceConfig()
}

// ChannelGroupConfig is a group of channel partitions
type ChannelGroupConfig struct {
	Name            string `json:"name" yaml:"name"`
	Description     string `json:"description,omitempty" yaml:"description"`
	PolingPeriod    uint32 `json:"poling_period,omitempty" yaml:"poling_period"`
	RamanMitigation string `json:"raman_mitigation,omitempty" yaml:"raman_mitigation"`
}

// ChannelPartitionConfig is a partition of a channel group
type ChannelPartitionConfig struct {
	Name                 string `json:"name" yaml:"name"`
	ChannelGroupRef      string `json:"channelgroup_ref" yaml:"channelgroup_ref"`
	FecDownstream        bool   `json:"fec_downstream,omitempty" yaml:"fec_downstream"`
	AuthenticationMethod string `json:"authentication_method,omitempty" yaml:"authentication_method"`
}

// ChannelPairConfig is an upstream/downstream wavelength pair of a partition
type ChannelPairConfig struct {
	Name                string `json:"name" yaml:"name"`
	ChannelPartitionRef string `json:"channelpartition_ref" yaml:"channelpartition_ref"`
	ChannelPairType     string `json:"channelpair_type,omitempty" yaml:"channelpair_type"`
}

// ChannelTerminationConfig binds a channel pair to a physical PON port
type ChannelTerminationConfig struct {
	Name           string `json:"name" yaml:"name"`
	ChannelPairRef string `json:"channelpair_ref" yaml:"channelpair_ref"`
	XgsPonID       uint32 `json:"xgs_ponid" yaml:"xgs_ponid"`
	Location       string `json:"location,omitempty" yaml:"location"`
}

// VOntAniConfig is the virtual ONT ANI of one subscriber ONU
type VOntAniConfig struct {
	Name                 string `json:"name" yaml:"name"`
	OnuID                uint32 `json:"onu_id" yaml:"onu_id"`
	ExpectedSerialNumber string `json:"expected_serial_number" yaml:"expected_serial_number"`
	ParentRef            string `json:"parent_ref,omitempty" yaml:"parent_ref"`
	PreferredChannelPair string `json:"preferred_chanpair,omitempty" yaml:"preferred_chanpair"`
}

// VEnetConfig is the virtual Ethernet interface mapped to a UNI port
type VEnetConfig struct {
	Name          string `json:"name" yaml:"name"`
	InterfaceName string `json:"interface_name" yaml:"interface_name"`
	VOntAniRef    string `json:"v_ontani_ref" yaml:"v_ontani_ref"`
}

// OntAniConfig is the physical ONT ANI record
type OntAniConfig struct {
	Name                    string `json:"name" yaml:"name"`
	UpstreamFecIndicator    bool   `json:"upstream_fec_indicator,omitempty" yaml:"upstream_fec_indicator"`
	MgntGemportAesIndicator bool   `json:"mgnt_gemport_aes_indicator,omitempty" yaml:"mgnt_gemport_aes_indicator"`
}

// TrafficDescriptorConfig is a bandwidth profile referenced by TCONTs
type TrafficDescriptorConfig struct {
	Name             string `json:"name" yaml:"name"`
	FixedBandwidth   uint64 `json:"fixed_bandwidth,omitempty" yaml:"fixed_bandwidth"`
	AssuredBandwidth uint64 `json:"assured_bandwidth,omitempty" yaml:"assured_bandwidth"`
	MaximumBandwidth uint64 `json:"maximum_bandwidth,omitempty" yaml:"maximum_bandwidth"`
	Priority         uint32 `json:"priority,omitempty" yaml:"priority"`
	Weight           uint32 `json:"weight,omitempty" yaml:"weight"`
}

// TcontConfig is an upstream transmission container owned by a v-ONT-ANI
type TcontConfig struct {
	Name                        string `json:"name" yaml:"name"`
	InterfaceReference          string `json:"interface_reference" yaml:"interface_reference"`
	AllocID                     uint32 `json:"alloc_id" yaml:"alloc_id"`
	TrafficDescriptorProfileRef string `json:"traffic_descriptor_profile_ref,omitempty" yaml:"traffic_descriptor_profile_ref"`
}

// GemPortConfig is a GEM port owned by a v-enet
type GemPortConfig struct {
	Name         string `json:"name" yaml:"name"`
	ItfRef       string `json:"itf_ref" yaml:"itf_ref"`
	TrafficClass uint32 `json:"traffic_class" yaml:"traffic_class"`
	GemportID    uint32 `json:"gemport_id" yaml:"gemport_id"`
	TcontRef     string `json:"tcont_ref" yaml:"tcont_ref"`
	AesIndicator bool   `json:"aes_indicator,omitempty" yaml:"aes_indicator"`
}

// InterfaceName implements InterfaceConfig
func (c *ChannelGroupConfig) InterfaceName() string { return c.Name }

// Kind implements InterfaceConfig
func (c *ChannelGroupConfig) Kind() InterfaceKind { return KindChannelGroup }
func (c *ChannelGroupConfig) isInterfaceConfig()  {}

// InterfaceName implements InterfaceConfig
func (c *ChannelPartitionConfig) InterfaceName() string { return c.Name }

// Kind implements InterfaceConfig
func (c *ChannelPartitionConfig) Kind() InterfaceKind { return KindChannelPartition }
func (c *ChannelPartitionConfig) isInterfaceConfig()  {}

// InterfaceName implements InterfaceConfig
func (c *ChannelPairConfig) InterfaceName() string { return c.Name }

// Kind implements InterfaceConfig
func (c *ChannelPairConfig) Kind() InterfaceKind { return KindChannelPair }
func (c *ChannelPairConfig) isInterfaceConfig()  {}

// InterfaceName implements InterfaceConfig
func (c *ChannelTerminationConfig) InterfaceName() string { return c.Name }

// Kind implements InterfaceConfig
func (c *ChannelTerminationConfig) Kind() InterfaceKind { return KindChannelTermination }
func (c *ChannelTerminationConfig) isInterfaceConfig()  {}

// InterfaceName implements InterfaceConfig
func (c *VOntAniConfig) InterfaceName() string { return c.Name }

// Kind implements InterfaceConfig
func (c *VOntAniConfig) Kind() InterfaceKind { return KindVOntAni }
func (c *VOntAniConfig) isInterfaceConfig()  {}

// InterfaceName implements InterfaceConfig
func (c *VEnetConfig) InterfaceName() string { return c.Name }

// Kind implements InterfaceConfig
func (c *VEnetConfig) Kind() InterfaceKind { return KindVEnet }
func (c *VEnetConfig) isInterfaceConfig()  {}

// InterfaceName implements InterfaceConfig
func (c *OntAniConfig) InterfaceName() string { return c.Name }

// Kind implements InterfaceConfig
func (c *OntAniConfig) Kind() InterfaceKind { return KindOntAni }
func (c *OntAniConfig) isInterfaceConfig()  {}

// PortLabel is the label of the UNI port allocated for the v-enet
func (c *VEnetConfig) PortLabel() string {
	if c.InterfaceName != "" {
		return c.InterfaceName
	}
	return c.Name
}
