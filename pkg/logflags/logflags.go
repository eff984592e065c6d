package logflags

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// DefaultLogDesc sends log output to stderr.
	DefaultLogDesc = ""
)

var device = false
var cli = false

var logOut io.Writer
var logFile *os.File

// Logger is the logging surface used throughout stealthmem. It is satisfied
// by *zap.SugaredLogger.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})

	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})

	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	Sync() error
}

// Device returns true if every control call should be logged.
func Device() bool {
	return device
}

// DeviceLogger returns a logger for the device channel.
func DeviceLogger() Logger {
	return makeLogger(device, "device")
}

// CLI returns true if the command layer should log.
func CLI() bool {
	return cli
}

// CLILogger returns a logger for the command layer.
func CLILogger() Logger {
	return makeLogger(cli, "cli")
}

var errLogstrWithoutLog = errors.New("--log-output specified without --log")

// Setup sets the layer flags based on the contents of logstr and redirects
// log output to logDest, a file path, when it is not empty.
func Setup(logFlag bool, logstr, logDest string) error {
	if !logFlag {
		if logstr != "" {
			return errLogstrWithoutLog
		}
		return nil
	}

	if logDest != DefaultLogDesc {
		f, err := os.OpenFile(logDest, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("could not open log destination: %v", err)
		}
		logFile = f
		logOut = f
	}

	if logstr == "" {
		logstr = "device"
	}
	for _, logcmd := range strings.Split(logstr, ",") {
		switch logcmd {
		case "device":
			device = true
		case "cli":
			cli = true
		}
	}

	return nil
}

// Close closes the log destination opened by Setup, if any, and resets the
// layer flags.
func Close() error {
	device, cli = false, false
	logOut = nil
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}
