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

package types

import (
	"log"
	"os"
)

// Logger is the logging interface carried by Config.Logger, defaulting to
// DefaultLogger(). The engine packages do not write to it themselves.
// Implementations living in the logsink package add Prometheus counters and
// MQTT fan-out on top of the same interface.
type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

// stdLogger is the zero-configuration Logger backing DefaultLogger.
type stdLogger struct {
	*log.Logger
}

func (l *stdLogger) Debugf(template string, args ...interface{}) { l.Printf("DEBUG "+template, args...) }
func (l *stdLogger) Infof(template string, args ...interface{})  { l.Printf("INFO "+template, args...) }
func (l *stdLogger) Warnf(template string, args ...interface{})  { l.Printf("WARN "+template, args...) }
func (l *stdLogger) Errorf(template string, args ...interface{}) { l.Printf("ERROR "+template, args...) }

// DefaultLogger returns a Logger that writes to stderr with a timestamp
// prefix, the same zero-configuration default the teacher's Config.Logger
// falls back to.
func DefaultLogger() Logger {
	return &stdLogger{Logger: log.New(os.Stderr, "", log.LstdFlags)}
}
