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
	"errors"
	"testing"

	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/olterrors"
	"github.com/opencord/voltha-asfvolt16-adapter/pkg/mocks"
	"github.com/opencord/voltha-protos/v5/go/common"
	ia "github.com/opencord/voltha-protos/v5/go/inter_adapter"
	oop "github.com/opencord/voltha-protos/v5/go/openolt"
	"github.com/stretchr/testify/assert"
)

func TestInterAdapterPublisher_PublishOnuIndication(t *testing.T) {
	sender := &mocks.MockKafkaSender{}
	publisher := NewInterAdapterPublisher(sender, "brcm_openomci_onu")
	child := newTestOnu(common.OperStatus_DISCOVERED)
	child.ParentId = testOltID
	onuInd := &oop.OnuIndication{IntfId: 0, OnuId: 1, OperState: "up"}

	assert.NoError(t, publisher.PublishOnuIndication(context.Background(), child, onuInd))
	messages := sender.Messages()
	assert.Len(t, messages, 1)
	assert.Equal(t, "brcm_openomci_onu", messages[0].Topic)
	assert.Equal(t, []string{testOnuID}, messages[0].Keys)
	assert.Equal(t, &ia.OnuIndicationMessage{DeviceId: testOnuID, OnuIndication: onuInd}, messages[0].Msg)
}

func TestInterAdapterPublisher_PublishOmciMessage(t *testing.T) {
	sender := &mocks.MockKafkaSender{}
	publisher := NewInterAdapterPublisher(sender, "brcm_openomci_onu")
	child := newTestOnu(common.OperStatus_ACTIVE)
	child.ParentId = "olt-2"

	assert.NoError(t, publisher.PublishOmciMessage(context.Background(), child, []byte{0x01}))
	msg, ok := sender.Messages()[0].Msg.(*ia.OmciMessage)
	assert.True(t, ok)
	assert.Equal(t, "olt-2", msg.ParentDeviceId)
	assert.Equal(t, testOnuID, msg.ChildDeviceId)
	assert.Equal(t, child.ProxyAddress, msg.ProxyAddress)
	assert.Equal(t, []byte{0x01}, msg.Message)
}

func TestInterAdapterPublisher_SendFailure(t *testing.T) {
	sender := &mocks.MockKafkaSender{Fail: true}
	publisher := NewInterAdapterPublisher(sender, "brcm_openomci_onu")
	child := newTestOnu(common.OperStatus_ACTIVE)

	var comm *olterrors.ErrCommunication
	assert.True(t, errors.As(publisher.PublishOmciMessage(context.Background(), child, []byte{0x01}), &comm))
	assert.True(t, errors.As(publisher.PublishOnuIndication(context.Background(), child, &oop.OnuIndication{}), &comm))
	assert.Empty(t, sender.Messages())
}
