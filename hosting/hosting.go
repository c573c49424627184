/*
 * Copyright 2024 The Prodrule Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package hosting is a small service-lifecycle registry for applications
// embedding one or more RuleSets alongside other long-running components
// (an MQTT subscriber feeding facts in, an HTTP server serving Evaluate,
// whatever the host process needs). It exists so a process wires one Host
// instead of hand-rolling start/stop ordering for each component.
package hosting

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Service is anything the Host manages the lifecycle of.
type Service interface {
	// Name identifies the service in logs and error messages.
	Name() string
	// Start brings the service up. Start is called in registration order.
	Start() error
	// Stop tears the service down. Stop must be safe to call even if
	// Start failed or was never called.
	Stop()
}

// Host starts registered services in order and stops them in reverse
// order, guaranteeing every started service's Stop runs exactly once even
// if a later Start fails or a Stop panics — the same forceStop posture
// the engine takes with its own per-component cleanup, generalized from
// one rule engine to N independent services.
type Host struct {
	services []Service
	started  []Service
}

// NewHost returns an empty Host.
func NewHost() *Host { return &Host{} }

// Register adds svc to the set started by Start, in registration order.
// Register must not be called after Start.
func (h *Host) Register(svc Service) {
	h.services = append(h.services, svc)
}

// Start starts every registered service in order. If one fails, Start
// stops every service that had already started (in reverse order) and
// returns the failure, wrapped with the failing service's name.
func (h *Host) Start() error {
	for _, svc := range h.services {
		if err := safeStart(svc); err != nil {
			h.Stop()
			return fmt.Errorf("prodrule: starting service %q: %w", svc.Name(), err)
		}
		h.started = append(h.started, svc)
	}
	return nil
}

// Stop stops every started service in reverse order. Each Stop call is
// wrapped in a recover so one failing service's cleanup never prevents the
// others from running.
func (h *Host) Stop() {
	for i := len(h.started) - 1; i >= 0; i-- {
		safeStop(h.started[i])
	}
	h.started = nil
}

func safeStart(svc Service) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic starting %q: %v", svc.Name(), r)
		}
	}()
	return svc.Start()
}

func safeStop(svc Service) {
	defer func() { recover() }()
	svc.Stop()
}

// DecodeConfig decodes a loosely-typed configuration map (as read from
// JSON/YAML/etc.) into out, a pointer to a concrete config struct. It uses
// mapstructure so service configuration can be authored the same
// schema-light way rule-chain node configuration is in the teacher
// system, without every Service reimplementing its own decoding.
func DecodeConfig(raw map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}
