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

//Package config provides the Log, kvstore, Kafka and OLT configuration
package config

import (
	"flag"
	"os"
	"time"

	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/olterrors"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
)

// ASFvOLT16 default constants
const (
	EtcdStoreName               = "etcd"
	defaultInstanceid           = "asfvolt16001"
	defaultKafkaclusteraddress  = "127.0.0.1:9092"
	defaultKvstoretype          = EtcdStoreName
	defaultKvstoretimeout       = 5 * time.Second
	defaultRPCTimeout           = 10 * time.Second
	defaultKvstoreaddress       = "127.0.0.1:2379" // Port: Consul = 8500; Etcd = 2379
	defaultLoglevel             = "WARN"
	defaultBanner               = false
	defaultDisplayVersionOnly   = false
	defaultTopic                = "asfvolt16"
	defaultEventtopic           = "voltha.events"
	defaultProbeAddress         = ":8080"
	defaultLiveProbeInterval    = 60 * time.Second
	defaultNotLiveProbeInterval = 5 * time.Second // Probe more frequently when not alive
	//defaultHearbeatCheckInterval is the time in seconds the adapter will keep checking the kafka connection.
	defaultHearbeatCheckInterval = 15 * time.Second
	defaultCurrentReplica        = 1
	defaultTotalReplicas         = 1
	defaultTraceEnabled          = false
	defaultTraceAgentAddress     = "127.0.0.1:6831"
	defaultLogCorrelationEnabled = true
	defaultAdapterEndpoint       = "adapter-asfvolt16"
	defaultCoreEndpoint          = "rwcore:55558"
	defaultGrpcAddress           = ":50060"
	defaultProvisioningFile      = ""

	// DefaultNniPort is the logical port number of the network facing port
	DefaultNniPort = 50
	// DefaultUniPortBase is the value the UNI counter starts from; the first UNI is base+1
	DefaultUniPortBase = 20
	// DefaultPacketInVlan is the outer VLAN used on the packet in/out channel
	DefaultPacketInVlan = 4091
	// DefaultMaxGemPortID is the highest GEM port id accepted by the device
	DefaultMaxGemPortID = 9212
	// DefaultGemTrafficClass is the traffic class used to pick the subscriber GEM port
	DefaultGemTrafficClass = 2
	// DefaultSchedulerQueueDepth is the queue depth of upstream agg-port schedulers
	DefaultSchedulerQueueDepth = 8
	// DefaultActivationRetryInterval is the delay before re-activating a failed OLT
	DefaultActivationRetryInterval = 15 * time.Second
	// maxVlanID is the highest usable VLAN id
	maxVlanID = 4094
	// DefaultFlowAckTimeout bounds how long a flow mutation may wait for its acknowledgment
	DefaultFlowAckTimeout = 10 * time.Second
)

// AdapterFlags represents the set of configurations used by the asfvolt16 adapter service
type AdapterFlags struct {
	// Command line parameters
	AdapterEndpoint         string
	InstanceID              string // taken from HOSTNAME when set
	KafkaClusterAddress     string
	KVStoreType             string
	KVStoreTimeout          time.Duration
	KVStoreAddress          string
	RPCTimeout              time.Duration
	Topic                   string
	EventTopic              string
	LogLevel                string
	Banner                  bool
	DisplayVersionOnly      bool
	ProbeAddress            string
	LiveProbeInterval       time.Duration
	NotLiveProbeInterval    time.Duration
	HeartbeatCheckInterval  time.Duration
	CurrentReplica          int
	TotalReplicas           int
	TraceEnabled            bool
	TraceAgentAddress       string
	LogCorrelationEnabled   bool
	CoreEndpoint            string
	GrpcAddress             string
	ProvisioningFile        string
	NniPort                 uint
	UniPortBase             uint
	PacketInVlan            uint
	MaxGemPortID            uint
	GemTrafficClass         uint
	SchedulerQueueDepth     uint
	ActivationRetryInterval time.Duration
	FlowAckTimeout          time.Duration
}

// NewAdapterFlags returns a new adapter config
func NewAdapterFlags() *AdapterFlags {
	var adapterFlags = AdapterFlags{ // Default values
		InstanceID:              defaultInstanceid,
		KafkaClusterAddress:     defaultKafkaclusteraddress,
		KVStoreType:             defaultKvstoretype,
		KVStoreTimeout:          defaultKvstoretimeout,
		KVStoreAddress:          defaultKvstoreaddress,
		RPCTimeout:              defaultRPCTimeout,
		Topic:                   defaultTopic,
		EventTopic:              defaultEventtopic,
		LogLevel:                defaultLoglevel,
		Banner:                  defaultBanner,
		DisplayVersionOnly:      defaultDisplayVersionOnly,
		ProbeAddress:            defaultProbeAddress,
		LiveProbeInterval:       defaultLiveProbeInterval,
		NotLiveProbeInterval:    defaultNotLiveProbeInterval,
		HeartbeatCheckInterval:  defaultHearbeatCheckInterval,
		CurrentReplica:          defaultCurrentReplica,
		TotalReplicas:           defaultTotalReplicas,
		TraceEnabled:            defaultTraceEnabled,
		TraceAgentAddress:       defaultTraceAgentAddress,
		LogCorrelationEnabled:   defaultLogCorrelationEnabled,
		AdapterEndpoint:         defaultAdapterEndpoint,
		CoreEndpoint:            defaultCoreEndpoint,
		GrpcAddress:             defaultGrpcAddress,
		ProvisioningFile:        defaultProvisioningFile,
		NniPort:                 DefaultNniPort,
		UniPortBase:             DefaultUniPortBase,
		PacketInVlan:            DefaultPacketInVlan,
		MaxGemPortID:            DefaultMaxGemPortID,
		GemTrafficClass:         DefaultGemTrafficClass,
		SchedulerQueueDepth:     DefaultSchedulerQueueDepth,
		ActivationRetryInterval: DefaultActivationRetryInterval,
		FlowAckTimeout:          DefaultFlowAckTimeout,
	}
	return &adapterFlags
}

// ParseCommandArguments parses the arguments when running the asfvolt16 adapter service
func (so *AdapterFlags) ParseCommandArguments(args []string) error {
	fs := flag.NewFlagSet("asfvolt16-adapter", flag.ContinueOnError)

	fs.StringVar(&(so.KafkaClusterAddress), "kafka_cluster_address", defaultKafkaclusteraddress, "Kafka - Cluster messaging address")

	fs.StringVar(&(so.Topic), "adapter_topic", defaultTopic, "Inter-adapter topic")

	fs.StringVar(&(so.EventTopic), "event_topic", defaultEventtopic, "Event topic")

	fs.StringVar(&(so.KVStoreType), "kv_store_type", defaultKvstoretype, "KV store type")

	fs.DurationVar(&(so.KVStoreTimeout), "kv_store_request_timeout", defaultKvstoretimeout, "The default timeout when making a kv store request")

	fs.StringVar(&(so.KVStoreAddress), "kv_store_address", defaultKvstoreaddress, "KV store address")

	fs.StringVar(&(so.LogLevel), "log_level", defaultLoglevel, "Log level")

	fs.BoolVar(&(so.Banner), "banner", defaultBanner, "Show startup banner log lines")

	fs.BoolVar(&(so.DisplayVersionOnly), "version", defaultDisplayVersionOnly, "Show version information and exit")

	fs.StringVar(&(so.ProbeAddress), "probe_address", defaultProbeAddress, "The address on which to listen to answer liveness and readiness probe queries over HTTP.")

	fs.DurationVar(&(so.LiveProbeInterval), "live_probe_interval", defaultLiveProbeInterval, "Number of seconds for the default liveliness check")

	fs.DurationVar(&(so.NotLiveProbeInterval), "not_live_probe_interval", defaultNotLiveProbeInterval, "Number of seconds for liveliness check if probe is not running")

	fs.DurationVar(&(so.HeartbeatCheckInterval), "hearbeat_check_interval", defaultHearbeatCheckInterval, "Number of seconds for heartbeat check interval")

	fs.DurationVar(&(so.RPCTimeout), "rpc_timeout", defaultRPCTimeout, "The default timeout when making an RPC request")

	fs.IntVar(&(so.CurrentReplica), "current_replica", defaultCurrentReplica, "Replica number of this particular instance")

	fs.IntVar(&(so.TotalReplicas), "total_replica", defaultTotalReplicas, "Total number of instances for this adapter")

	fs.BoolVar(&(so.TraceEnabled), "trace_enabled", defaultTraceEnabled, "Whether to send logs to tracing agent?")

	fs.StringVar(&(so.TraceAgentAddress), "trace_agent_address", defaultTraceAgentAddress, "The address of tracing agent to which span info should be sent")

	fs.BoolVar(&(so.LogCorrelationEnabled), "log_correlation_enabled", defaultLogCorrelationEnabled, "Whether to enrich log statements with fields denoting operation being executed for achieving correlation?")

	fs.StringVar(&(so.AdapterEndpoint), "adapter_endpoint", defaultAdapterEndpoint, "The endpoint of this adapter as seen by the core")

	fs.StringVar(&(so.CoreEndpoint), "core_endpoint", defaultCoreEndpoint, "The address of the core service")

	fs.StringVar(&(so.GrpcAddress), "grpc_address", defaultGrpcAddress, "Address the adapter gRPC server listens on")

	fs.StringVar(&(so.ProvisioningFile), "provisioning_file", defaultProvisioningFile, "Optional YAML file of xPON interface, TCONT and GEM port configs applied to every adopted OLT")

	fs.UintVar(&(so.NniPort), "nni_port", DefaultNniPort, "Logical port number of the network facing port")

	fs.UintVar(&(so.UniPortBase), "uni_port_base", DefaultUniPortBase, "Value the UNI port counter starts from")

	fs.UintVar(&(so.PacketInVlan), "packet_in_vlan", DefaultPacketInVlan, "Outer VLAN of the packet in/out channel")

	fs.UintVar(&(so.MaxGemPortID), "max_gemport_id", DefaultMaxGemPortID, "Highest GEM port id accepted by the device")

	fs.UintVar(&(so.GemTrafficClass), "gem_traffic_class", DefaultGemTrafficClass, "Traffic class of the GEM port carrying subscriber flows")

	fs.UintVar(&(so.SchedulerQueueDepth), "scheduler_queue_depth", DefaultSchedulerQueueDepth, "Queue depth of upstream agg-port schedulers")

	fs.DurationVar(&(so.ActivationRetryInterval), "activation_retry_interval", DefaultActivationRetryInterval, "Delay before a failed OLT activation is retried")

	fs.DurationVar(&(so.FlowAckTimeout), "flow_ack_timeout", DefaultFlowAckTimeout, "Time a flow mutation may wait for its acknowledgment")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if so.PacketInVlan < 1 || so.PacketInVlan > maxVlanID {
		return olterrors.NewErrInvalidValue(log.Fields{"packet-in-vlan": so.PacketInVlan, "max": maxVlanID}, nil)
	}

	containerName := getContainerInfo()
	if len(containerName) > 0 {
		so.InstanceID = containerName
	}
	return nil
}

func getContainerInfo() string {
	return os.Getenv("HOSTNAME")
}
