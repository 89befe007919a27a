/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package plog

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
)

// rank orders the three non-silent levels so leveledLogger can decide
// which calls to suppress.
var rank = map[string]int{ERROR: 0, INFO: 1, DEBUG: 2}

type leveledLogger struct {
	log.Logger
	level string
}

func newLeveled(level string, out io.Writer, prefix string, flag int) *leveledLogger {
	l := &leveledLogger{level: level}
	l.SetOutput(out)
	l.SetPrefix(prefix)
	l.SetFlags(flag)
	return l
}

func (l *leveledLogger) log(at string, v ...interface{}) {
	if rank[at] > rank[l.level] {
		return
	}
	l.Output(caller, fmt.Sprint(v...))
}

func (l *leveledLogger) logf(at, format string, v ...interface{}) {
	if rank[at] > rank[l.level] {
		return
	}
	l.Output(caller, fmt.Sprintf(format, v...))
}

func (l *leveledLogger) Error(v ...interface{}) {
	l.log(ERROR, v...)
	osExit(1)
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.logf(ERROR, format, v...)
	osExit(1)
}

func (l *leveledLogger) Info(v ...interface{})                  { l.log(INFO, v...) }
func (l *leveledLogger) Infof(format string, v ...interface{})  { l.logf(INFO, format, v...) }
func (l *leveledLogger) Debug(v ...interface{})                 { l.log(DEBUG, v...) }
func (l *leveledLogger) Debugf(format string, v ...interface{}) { l.logf(DEBUG, format, v...) }

func (l *leveledLogger) GetLogger() *log.Logger { return &l.Logger }
func (l *leveledLogger) GetLoggerLevel() string { return l.level }

type silentLogger struct {
	log.Logger
}

func newSilent() *silentLogger {
	l := &silentLogger{}
	l.SetOutput(ioutil.Discard)
	return l
}

func (l *silentLogger) Error(v ...interface{})                 { osExit(1) }
func (l *silentLogger) Errorf(format string, v ...interface{}) { osExit(1) }
func (l *silentLogger) Info(v ...interface{})                  {}
func (l *silentLogger) Infof(format string, v ...interface{})  {}
func (l *silentLogger) Debug(v ...interface{})                 {}
func (l *silentLogger) Debugf(format string, v ...interface{}) {}
func (l *silentLogger) GetLogger() *log.Logger                 { return &l.Logger }
func (l *silentLogger) GetLoggerLevel() string                 { return SILENT }
