/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package log

import (
	"errors"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogLevel int

const (
	LogName    = "go-polhemus"
	HelpLevels = "Must be one of: error, warning, info, debug."
)

const (
	ErrorLevel LogLevel = iota
	WarningLevel
	InfoLevel
	DebugLevel
)

var zapLevels = map[LogLevel]zapcore.Level{
	ErrorLevel:   zapcore.ErrorLevel,
	WarningLevel: zapcore.WarnLevel,
	InfoLevel:    zapcore.InfoLevel,
	DebugLevel:   zapcore.DebugLevel,
}

type Logger struct {
	level zap.AtomicLevel
	*zap.SugaredLogger
}

var logger = newLogger(os.Stderr, zap.NewAtomicLevelAt(zapcore.InfoLevel))

func newLogger(out io.Writer, level zap.AtomicLevel) *Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(out), level)
	return &Logger{
		level:         level,
		SugaredLogger: zap.New(core).Named(LogName).Sugar(),
	}
}

func ParseLevel(strLevel string) (LogLevel, error) {
	levelMapping := map[string]LogLevel{
		"error":   ErrorLevel,
		"warning": WarningLevel,
		"info":    InfoLevel,
		"debug":   DebugLevel,
	}
	level, ok := levelMapping[strLevel]
	if !ok {
		return InfoLevel, errors.New("Wrong log level. " + HelpLevels)
	}
	return level, nil
}

func SetLevel(strLevel string) error {
	level, err := ParseLevel(strLevel)
	if err != nil {
		return err
	}
	logger.level.SetLevel(zapLevels[level])
	return nil
}

func Init(out io.Writer, strLevel string) {
	level, err := ParseLevel(strLevel)
	if err != nil {
		panic(err)
	}
	logger = newLogger(out, zap.NewAtomicLevelAt(zapLevels[level]))
}

// InitFile sends the log to a file rotated by size, in addition to out
func InitFile(out io.Writer, strLevel, path string, maxSizeMB int) {
	rotated := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: 3,
		Compress:   true,
	}
	Init(io.MultiWriter(out, rotated), strLevel)
}

// Sync flushes buffered entries
func Sync() {
	_ = logger.Sync()
}

func Error(format string, v ...interface{}) {
	logger.Errorf(format, v...)
}

func Warning(format string, v ...interface{}) {
	logger.Warnf(format, v...)
}

func Info(format string, v ...interface{}) {
	logger.Infof(format, v...)
}

func Debug(format string, v ...interface{}) {
	logger.Debugf(format, v...)
}
