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

package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/opencord/voltha-lib-go/v7/pkg/kafka"
)

// SentMessage is a message published through MockKafkaSender
type SentMessage struct {
	Topic string
	Keys  []string
	Msg   interface{}
}

// MockKafkaSender records the messages published on kafka
type MockKafkaSender struct {
	mutex    sync.Mutex
	messages []SentMessage
	// Fail makes Send return an error
	Fail bool
}

// Send mocks the Send function of kafka.Client
func (ms *MockKafkaSender) Send(ctx context.Context, msg interface{}, topic *kafka.Topic, keys ...string) error {
	if topic == nil {
		return errors.New("no topic")
	}
	if ms.Fail {
		return errors.New("kafka-send-failed")
	}
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	ms.messages = append(ms.messages, SentMessage{Topic: topic.Name, Keys: keys, Msg: msg})
	return nil
}

// Messages returns the messages sent so far
func (ms *MockKafkaSender) Messages() []SentMessage {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	return append([]SentMessage(nil), ms.messages...)
}
