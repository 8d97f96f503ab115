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

	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/olterrors"
	"github.com/opencord/voltha-lib-go/v7/pkg/kafka"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	ia "github.com/opencord/voltha-protos/v5/go/inter_adapter"
	oop "github.com/opencord/voltha-protos/v5/go/openolt"
	"github.com/opencord/voltha-protos/v5/go/voltha"
)

// InterAdapterPublisher delivers notifications to the adapter owning a child device
type InterAdapterPublisher interface {
	PublishOnuIndication(ctx context.Context, child *voltha.Device, onuInd *oop.OnuIndication) error
	PublishOmciMessage(ctx context.Context, child *voltha.Device, payload []byte) error
}

// messageSender is the part of kafka.Client used for publishing
type messageSender interface {
	Send(ctx context.Context, msg interface{}, topic *kafka.Topic, keys ...string) error
}

// kafkaInterAdapterPublisher publishes inter-adapter messages on a kafka topic,
// keyed by the child device id
type kafkaInterAdapterPublisher struct {
	sender messageSender
	topic  kafka.Topic
}

// NewInterAdapterPublisher returns a publisher sending on topicName through sender
func NewInterAdapterPublisher(sender messageSender, topicName string) InterAdapterPublisher {
	return &kafkaInterAdapterPublisher{
		sender: sender,
		topic:  kafka.Topic{Name: topicName},
	}
}

func (p *kafkaInterAdapterPublisher) PublishOnuIndication(ctx context.Context, child *voltha.Device, onuInd *oop.OnuIndication) error {
	msg := &ia.OnuIndicationMessage{
		DeviceId:      child.Id,
		OnuIndication: onuInd,
	}
	logger.Debugw(ctx, "publishing-onu-indication", log.Fields{
		"child-device-id": child.Id,
		"oper-state":      onuInd.OperState,
		"topic":           p.topic.Name})
	if err := p.sender.Send(log.WithSpanFromContext(context.Background(), ctx), msg, &p.topic, child.Id); err != nil {
		return olterrors.NewErrCommunication("publish-onu-indication", log.Fields{
			"child-device-id": child.Id,
			"topic":           p.topic.Name}, err)
	}
	return nil
}

func (p *kafkaInterAdapterPublisher) PublishOmciMessage(ctx context.Context, child *voltha.Device, payload []byte) error {
	msg := &ia.OmciMessage{
		ParentDeviceId: child.ParentId,
		ChildDeviceId:  child.Id,
		Message:        payload,
		ProxyAddress:   child.ProxyAddress,
		ConnectStatus:  child.ConnectStatus,
	}
	if err := p.sender.Send(log.WithSpanFromContext(context.Background(), ctx), msg, &p.topic, child.Id); err != nil {
		return olterrors.NewErrCommunication("publish-omci-message", log.Fields{
			"child-device-id": child.Id,
			"topic":           p.topic.Name}, err)
	}
	return nil
}
