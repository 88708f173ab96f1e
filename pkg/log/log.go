// Copyright 2023 The Kubetunnel Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/kubetunnel/kubetunnel/pkg/config"
	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

type logger struct {
	out     *logrus.Logger
	file    *logrus.Logger
	rolling io.Writer
}

var log = &logger{
	out: logrus.New(),
}

var (
	successSymbol     = color.New(color.BgGreen, color.FgBlack).Sprint(" ✓ ")
	informationSymbol = color.New(color.BgHiBlue, color.FgBlack).Sprint(" i ")
	errorSymbol       = color.New(color.BgHiRed, color.FgBlack).Sprint(" x ")

	greenString = color.New(color.FgGreen).SprintfFunc()
	blueString  = color.New(color.FgHiBlue).SprintfFunc()
	redString   = color.New(color.FgHiRed).SprintfFunc()
)

// Init configures the logger for the package to use.
func Init(level logrus.Level) {
	log.out.SetOutput(os.Stdout)
	log.out.SetLevel(level)

	log.file = logrus.New()
	log.file.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})

	log.rolling = getRollingLog(config.GetLogFile())
	log.file.SetOutput(log.rolling)
	log.file.SetLevel(logrus.DebugLevel)
}

func getRollingLog(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1, // megabytes
		MaxBackups: 10,
		MaxAge:     28, // days
		Compress:   true,
	}
}

// SetLevel sets the level of the main logger
func SetLevel(level string) {
	l, err := logrus.ParseLevel(level)
	if err == nil {
		log.out.SetLevel(l)
	}
}

// FileWriter returns the writer of the rolling log file. It is used to capture
// the output of spawned helper processes.
func FileWriter() io.Writer {
	if log.rolling == nil {
		return io.Discard
	}
	return log.rolling
}

// Debug writes a debug-level log
func Debug(args ...interface{}) {
	log.out.Debug(args...)
	if log.file != nil {
		log.file.Debug(args...)
	}
}

// Debugf writes a debug-level log with a format
func Debugf(format string, args ...interface{}) {
	log.out.Debugf(format, args...)
	if log.file != nil {
		log.file.Debugf(format, args...)
	}
}

// Info writes a info-level log
func Info(args ...interface{}) {
	log.out.Info(args...)
	if log.file != nil {
		log.file.Info(args...)
	}
}

// Infof writes a info-level log with a format
func Infof(format string, args ...interface{}) {
	log.out.Infof(format, args...)
	if log.file != nil {
		log.file.Infof(format, args...)
	}
}

// Error writes a error-level log
func Error(args ...interface{}) {
	log.out.Error(args...)
	if log.file != nil {
		log.file.Error(args...)
	}
}

// Errorf writes a error-level log with a format
func Errorf(format string, args ...interface{}) {
	log.out.Errorf(format, args...)
	if log.file != nil {
		log.file.Errorf(format, args...)
	}
}

// Success prints a message with the success symbol first, and the text in green
func Success(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, "%s %s\n", successSymbol, greenString(format, args...))
	if log.file != nil {
		log.file.Infof(format, args...)
	}
}

// Information prints a message with the information symbol first, and the text in blue
func Information(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, "%s %s\n", informationSymbol, blueString(format, args...))
	if log.file != nil {
		log.file.Infof(format, args...)
	}
}

// Fail prints a message with the error symbol first, and the text in red
func Fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errorSymbol, redString(format, args...))
	if log.file != nil {
		log.file.Errorf(format, args...)
	}
}

// Hint prints a message in blue, indented by four spaces
func Hint(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, "    %s\n", blueString(format, args...))
}
