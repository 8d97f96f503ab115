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
	"time"

	"github.com/opencord/voltha-asfvolt16-adapter/internal/pkg/olterrors"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
)

// flowGate allows a single hardware flow mutation in flight. The return of the
// hardware call is its acknowledgment; the slot is held until then, even when
// the caller has already given up waiting.
type flowGate struct {
	slot       chan struct{}
	ackTimeout time.Duration
}

func newFlowGate(ackTimeout time.Duration) *flowGate {
	return &flowGate{
		slot:       make(chan struct{}, 1),
		ackTimeout: ackTimeout,
	}
}

// Submit waits for the slot and runs call in it. It returns the result of call, or
// ErrTimeout when either the slot or the acknowledgment takes longer than the
// ack timeout.
func (g *flowGate) Submit(ctx context.Context, operation string, call func(ctx context.Context) error) error {
	timer := time.NewTimer(g.ackTimeout)
	defer timer.Stop()

	select {
	case g.slot <- struct{}{}:
	case <-timer.C:
		return olterrors.NewErrTimeout(operation, log.Fields{"waiting-for": "slot", "timeout": g.ackTimeout}, nil)
	}

	if !timer.Stop() {
		<-timer.C
	}
	timer.Reset(g.ackTimeout)

	done := make(chan error, 1)
	go func() {
		err := call(ctx)
		<-g.slot
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		logger.Warnw(ctx, "flow-mutation-not-acknowledged", log.Fields{"operation": operation, "timeout": g.ackTimeout})
		return olterrors.NewErrTimeout(operation, log.Fields{"waiting-for": "acknowledgment", "timeout": g.ackTimeout}, nil)
	}
}
