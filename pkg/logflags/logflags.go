package logflags

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var dolphin = false
var mem = false

var logOut io.WriteCloser

var textFormatterInstance = &logrus.TextFormatter{}

func makeFlaggableLogger(flag bool, fields Fields) Logger {
	level := logrus.ErrorLevel
	if flag {
		level = logrus.DebugLevel
	}
	return makeLogger(level, fields)
}

func makeLogger(level logrus.Level, fields Fields) Logger {
	lf := loggerFactory
	if lf == nil {
		lf = newLogrusLogger
	}
	return lf(level, fields, logOut)
}

func newLogrusLogger(level logrus.Level, fields Fields, out io.Writer) Logger {
	logger := logrus.New().WithFields(logrus.Fields(fields))
	logger.Logger.Formatter = textFormatterInstance
	logger.Logger.Level = level
	if out != nil {
		logger.Logger.Out = out
	} else if isatty.IsTerminal(os.Stderr.Fd()) {
		logger.Logger.Formatter = &logrus.TextFormatter{ForceColors: true}
		logger.Logger.Out = colorable.NewColorableStderr()
	}
	return &logrusLogger{logger}
}

// Dolphin returns true if process and region discovery should log.
func Dolphin() bool {
	return dolphin
}

// DolphinLogger returns a logger for process and region discovery.
func DolphinLogger() Logger {
	return makeFlaggableLogger(dolphin, Fields{"layer": "dolphin"})
}

// Mem returns true if memory transfers should log.
func Mem() bool {
	return mem
}

// MemLogger returns a logger for memory transfers.
func MemLogger() Logger {
	return makeFlaggableLogger(mem, Fields{"layer": "dolphin", "kind": "mem"})
}

var errLogstrWithoutLog = errors.New("--log-output specified without --log")

// Setup sets the component log flags based on the contents of logstr and
// redirects output to logDest, which may be a file descriptor number or a
// file path.
func Setup(logFlag bool, logstr, logDest string) error {
	if logDest != "" {
		n, err := strconv.Atoi(logDest)
		if err == nil {
			logOut = os.NewFile(uintptr(n), "gcmem-logs")
		} else {
			fh, err := os.Create(logDest)
			if err != nil {
				return fmt.Errorf("could not create log file: %v", err)
			}
			logOut = fh
		}
	}
	if !logFlag {
		if logstr != "" {
			return errLogstrWithoutLog
		}
		return nil
	}
	if logstr == "" {
		logstr = "dolphin"
	}
	for _, logcmd := range strings.Split(logstr, ",") {
		switch logcmd {
		case "dolphin":
			dolphin = true
		case "mem":
			mem = true
		}
	}
	return nil
}

// Close closes the logger output.
func Close() {
	if logOut != nil {
		logOut.Close()
	}
}
