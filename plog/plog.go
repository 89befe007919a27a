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

// Package plog implements the poslist log wrapper: a level-filtered
// logger built on top of hashicorp/logutils, in the same shape as the
// qed/log package it is adapted from.
package plog

import (
	"fmt"
	"log"
	"os"

	"github.com/hashicorp/logutils"
)

// Log levels.
const (
	SILENT = "silent"
	ERROR  = "error"
	INFO   = "info"
	DEBUG  = "debug"

	caller = 3
)

type logger interface {
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	GetLogger() *log.Logger
	GetLoggerLevel() string
}

func filterFor(lv string) *logutils.LevelFilter {
	mapLevel := map[string]logutils.LogLevel{
		ERROR: "ERROR",
		INFO:  "INFO",
		DEBUG: "DEBUG",
	}
	return &logutils.LevelFilter{
		Levels:   []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERROR"},
		MinLevel: mapLevel[lv],
		Writer:   os.Stdout,
	}
}

const flags = log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile | log.LUTC

var std logger = newLeveled(ERROR, filterFor(ERROR), "poslist: ", flags)

var osExit = os.Exit

// Error logs v at ERROR level and terminates the process.
func Error(v ...interface{}) { std.Error(v...) }

// Errorf logs a formatted message at ERROR level and terminates the
// process.
func Errorf(format string, v ...interface{}) { std.Errorf(format, v...) }

// Info logs v at INFO level.
func Info(v ...interface{}) { std.Info(v...) }

// Infof logs a formatted message at INFO level.
func Infof(format string, v ...interface{}) { std.Infof(format, v...) }

// Debug logs v at DEBUG level.
func Debug(v ...interface{}) { std.Debug(v...) }

// Debugf logs a formatted message at DEBUG level.
func Debugf(format string, v ...interface{}) { std.Debugf(format, v...) }

// GetLogger returns the standard library logger wrapped by the current
// level, so third-party packages can share its formatting.
func GetLogger() *log.Logger { return std.GetLogger() }

// GetLoggerLevel returns the active level's string name.
func GetLoggerLevel() string { return std.GetLoggerLevel() }

// SetLogger switches the active level. namespace prefixes every line;
// lv must be one of SILENT, ERROR, INFO or DEBUG, and falls back to
// INFO (with a warning) for anything else.
func SetLogger(namespace, lv string) {
	prefix := fmt.Sprintf("%s ", namespace)
	switch lv {
	case SILENT:
		std = newSilent()
	case ERROR, INFO, DEBUG:
		std = newLeveled(lv, filterFor(lv), prefix, flags)
	default:
		l := newLeveled(INFO, filterFor(INFO), prefix, flags)
		l.Infof("unknown log level %q, falling back to info", lv)
		std = l
	}
}
