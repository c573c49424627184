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

package hosting

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	name      string
	startErr  error
	startPanic bool
	started   *[]string
	stopped   *[]string
}

func (f *fakeService) Name() string { return f.name }

func (f *fakeService) Start() error {
	if f.startPanic {
		panic("boom")
	}
	if f.startErr != nil {
		return f.startErr
	}
	*f.started = append(*f.started, f.name)
	return nil
}

func (f *fakeService) Stop() {
	*f.stopped = append(*f.stopped, f.name)
}

func TestHostStartsServicesInOrder(t *testing.T) {
	var started, stopped []string
	h := NewHost()
	h.Register(&fakeService{name: "a", started: &started, stopped: &stopped})
	h.Register(&fakeService{name: "b", started: &started, stopped: &stopped})

	require.NoError(t, h.Start())
	assert.Equal(t, []string{"a", "b"}, started)
}

func TestHostStopsInReverseOrder(t *testing.T) {
	var started, stopped []string
	h := NewHost()
	h.Register(&fakeService{name: "a", started: &started, stopped: &stopped})
	h.Register(&fakeService{name: "b", started: &started, stopped: &stopped})

	require.NoError(t, h.Start())
	h.Stop()
	assert.Equal(t, []string{"b", "a"}, stopped)
}

func TestHostStartRollsBackAlreadyStartedServicesOnFailure(t *testing.T) {
	var started, stopped []string
	h := NewHost()
	h.Register(&fakeService{name: "a", started: &started, stopped: &stopped})
	h.Register(&fakeService{name: "b", startErr: errors.New("dial refused"), started: &started, stopped: &stopped})
	h.Register(&fakeService{name: "c", started: &started, stopped: &stopped})

	err := h.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b")
	assert.Equal(t, []string{"a"}, started, "c must never start once b fails")
	assert.Equal(t, []string{"a"}, stopped, "a, the only started service, must be rolled back")
}

func TestHostStartSurvivesAPanickingService(t *testing.T) {
	var started, stopped []string
	h := NewHost()
	h.Register(&fakeService{name: "a", started: &started, stopped: &stopped})
	h.Register(&fakeService{name: "panics", startPanic: true, started: &started, stopped: &stopped})

	err := h.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panics")
}

func TestHostStopSurvivesAPanickingStop(t *testing.T) {
	var started, stopped []string
	h := NewHost()
	h.Register(&panicStopService{fakeService{name: "a", started: &started, stopped: &stopped}})
	h.Register(&fakeService{name: "b", started: &started, stopped: &stopped})

	require.NoError(t, h.Start())
	assert.NotPanics(t, func() { h.Stop() })
	assert.Equal(t, []string{"b"}, stopped, "b still stops even though a's Stop panics")
}

type panicStopService struct {
	fakeService
}

func (p *panicStopService) Stop() { panic("stop boom") }

type sinkConfig struct {
	BrokerURL string `json:"broker_url"`
	QoS       int    `json:"qos"`
}

func TestDecodeConfigDecodesLooselyTypedMap(t *testing.T) {
	raw := map[string]interface{}{
		"broker_url": "tcp://localhost:1883",
		"qos":        "1", // weakly-typed: string coerces to int
	}

	var cfg sinkConfig
	require.NoError(t, DecodeConfig(raw, &cfg))

	assert.Equal(t, "tcp://localhost:1883", cfg.BrokerURL)
	assert.Equal(t, 1, cfg.QoS)
}
