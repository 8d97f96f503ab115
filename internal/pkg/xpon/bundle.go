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

	"gopkg.in/yaml.v2"
)

// Bundle is a set of xPON configs read from a provisioning file, e.g.
//
//	channel_terminations:
//	  - name: cterm-1
//	    xgs_ponid: 0
//	v_ont_anis:
//	  - name: vont-1
//	    onu_id: 1
//	    expected_serial_number: BRCM12345678
type Bundle struct {
	ChannelGroups       []ChannelGroupConfig       `yaml:"channel_groups"`
	ChannelPartitions   []ChannelPartitionConfig   `yaml:"channel_partitions"`
	ChannelPairs        []ChannelPairConfig        `yaml:"channel_pairs"`
	ChannelTerminations []ChannelTerminationConfig `yaml:"channel_terminations"`
	VOntAnis            []VOntAniConfig            `yaml:"v_ont_anis"`
	OntAnis             []OntAniConfig             `yaml:"ont_anis"`
	VEnets              []VEnetConfig              `yaml:"v_enets"`
	TrafficDescriptors  []TrafficDescriptorConfig  `yaml:"traffic_descriptors"`
	Tconts              []TcontConfig              `yaml:"tconts"`
	GemPorts            []GemPortConfig            `yaml:"gemports"`
}

// LoadBundle reads and parses a provisioning file
func LoadBundle(path string) (*Bundle, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBundle(data)
}

// ParseBundle parses YAML provisioning data
func ParseBundle(data []byte) (*Bundle, error) {
	b := &Bundle{}
	if err := yaml.Unmarshal(data, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Interfaces returns the interface configs of the bundle with every parent
// ahead of the configs referring to it
func (b *Bundle) Interfaces() []InterfaceConfig {
	var itfs []InterfaceConfig
	for i := range b.ChannelGroups {
		itfs = append(itfs, &b.ChannelGroups[i])
	}
	for i := range b.ChannelPartitions {
		itfs = append(itfs, &b.ChannelPartitions[i])
	}
	for i := range b.ChannelPairs {
		itfs = append(itfs, &b.ChannelPairs[i])
	}
	for i := range b.ChannelTerminations {
		itfs = append(itfs, &b.ChannelTerminations[i])
	}
	for i := range b.VOntAnis {
		itfs = append(itfs, &b.VOntAnis[i])
	}
	for i := range b.OntAnis {
		itfs = append(itfs, &b.OntAnis[i])
	}
	for i := range b.VEnets {
		itfs = append(itfs, &b.VEnets[i])
	}
	return itfs
}

// TrafficDescriptor returns the descriptor of the bundle with the given name
func (b *Bundle) TrafficDescriptor(name string) (*TrafficDescriptorConfig, bool) {
	for i := range b.TrafficDescriptors {
		if b.TrafficDescriptors[i].Name == name {
			return &b.TrafficDescriptors[i], true
		}
	}
	return nil, false
}
