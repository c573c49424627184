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

// Package logsink provides types.Logger implementations beyond the
// zero-configuration default: one that also increments Prometheus
// counters per level, and one that fans formatted log lines out to an
// MQTT broker for centralized collection.
package logsink

import (
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"

	"prodrule/types"
)

// StdLogger wraps the standard library's log.Logger, identical in shape to
// types.DefaultLogger but constructible with a caller-supplied prefix and
// output writer.
type StdLogger struct {
	*log.Logger
}

// NewStdLogger returns a StdLogger writing to w with prefix.
func NewStdLogger(w *os.File, prefix string) *StdLogger {
	return &StdLogger{Logger: log.New(w, prefix, log.LstdFlags)}
}

func (l *StdLogger) Debugf(template string, args ...interface{}) { l.Printf("DEBUG "+template, args...) }
func (l *StdLogger) Infof(template string, args ...interface{})  { l.Printf("INFO "+template, args...) }
func (l *StdLogger) Warnf(template string, args ...interface{})  { l.Printf("WARN "+template, args...) }
func (l *StdLogger) Errorf(template string, args ...interface{}) { l.Printf("ERROR "+template, args...) }

var _ types.Logger = (*StdLogger)(nil)

var logLinesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "prodrule",
	Subsystem: "logsink",
	Name:      "log_lines_total",
	Help:      "Total log lines emitted, labeled by level.",
}, []string{"level"})

func init() {
	prometheus.MustRegister(logLinesTotal)
}

// PrometheusSink wraps an underlying types.Logger and additionally
// increments a counter per level, so log volume is visible on the same
// dashboard as evaluation metrics (see engine/metrics.go).
type PrometheusSink struct {
	next types.Logger
}

// NewPrometheusSink wraps next with level counters. next may be nil, in
// which case counting still happens but nothing is actually logged.
func NewPrometheusSink(next types.Logger) *PrometheusSink {
	return &PrometheusSink{next: next}
}

func (s *PrometheusSink) Debugf(template string, args ...interface{}) {
	logLinesTotal.WithLabelValues("debug").Inc()
	if s.next != nil {
		s.next.Debugf(template, args...)
	}
}

func (s *PrometheusSink) Infof(template string, args ...interface{}) {
	logLinesTotal.WithLabelValues("info").Inc()
	if s.next != nil {
		s.next.Infof(template, args...)
	}
}

func (s *PrometheusSink) Warnf(template string, args ...interface{}) {
	logLinesTotal.WithLabelValues("warn").Inc()
	if s.next != nil {
		s.next.Warnf(template, args...)
	}
}

func (s *PrometheusSink) Errorf(template string, args ...interface{}) {
	logLinesTotal.WithLabelValues("error").Inc()
	if s.next != nil {
		s.next.Errorf(template, args...)
	}
}

var _ types.Logger = (*PrometheusSink)(nil)

// MQTTSink publishes formatted log lines to an MQTT broker, one topic per
// level under a configured prefix (e.g. "prodrule/log/warn"). Publish
// failures are swallowed — a logging sink must never be able to take down
// the evaluation it is observing.
type MQTTSink struct {
	client      mqtt.Client
	topicPrefix string
	qos         byte
}

// NewMQTTSink connects to the broker at brokerURL (e.g.
// "tcp://localhost:1883") and returns an MQTTSink publishing under
// topicPrefix. The connect call blocks for up to 5 seconds.
func NewMQTTSink(brokerURL, clientID, topicPrefix string, qos byte) (*MQTTSink, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if ok := token.WaitTimeout(5 * time.Second); !ok {
		return nil, fmt.Errorf("prodrule: mqtt connect to %s timed out", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("prodrule: mqtt connect to %s: %w", brokerURL, err)
	}

	return &MQTTSink{client: client, topicPrefix: topicPrefix, qos: qos}, nil
}

func (s *MQTTSink) publish(level, template string, args ...interface{}) {
	if !s.client.IsConnected() {
		return
	}
	line := fmt.Sprintf(template, args...)
	s.client.Publish(s.topicPrefix+"/"+level, s.qos, false, line)
}

func (s *MQTTSink) Debugf(template string, args ...interface{}) { s.publish("debug", template, args...) }
func (s *MQTTSink) Infof(template string, args ...interface{})  { s.publish("info", template, args...) }
func (s *MQTTSink) Warnf(template string, args ...interface{})  { s.publish("warn", template, args...) }
func (s *MQTTSink) Errorf(template string, args ...interface{}) { s.publish("error", template, args...) }

// Close disconnects the underlying MQTT client, waiting up to 250ms for
// in-flight publishes to drain.
func (s *MQTTSink) Close() {
	s.client.Disconnect(250)
}

var _ types.Logger = (*MQTTSink)(nil)
