package logflags

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestMakeLoggerUsesLoggerFactory(t *testing.T) {
	defer SetLoggerFactory(nil)

	expected := &logrusLogger{}
	SetLoggerFactory(func(level logrus.Level, fields Fields, out io.Writer) Logger {
		if level != logrus.DebugLevel {
			t.Errorf("level = %v, want %v", level, logrus.DebugLevel)
		}
		if len(fields) != 1 || fields["layer"] != "dolphin" {
			t.Errorf("fields = %v, want {layer: dolphin}", fields)
		}
		return expected
	})

	if got := makeFlaggableLogger(true, Fields{"layer": "dolphin"}); got != expected {
		t.Errorf("makeFlaggableLogger did not use the configured factory")
	}
}

func TestFlaggableLoggerLevels(t *testing.T) {
	for flag, want := range map[bool]logrus.Level{
		false: logrus.ErrorLevel,
		true:  logrus.DebugLevel,
	} {
		l, ok := makeFlaggableLogger(flag, Fields{"layer": "test"}).(*logrusLogger)
		if !ok {
			t.Fatalf("makeFlaggableLogger(%v) did not return a logrus backed logger", flag)
		}
		if l.Entry.Logger.Level != want {
			t.Errorf("flag %v: level = %v, want %v", flag, l.Entry.Logger.Level, want)
		}
	}
}

func TestSetupRejectsOutputWithoutLog(t *testing.T) {
	if err := Setup(false, "dolphin", ""); err == nil {
		t.Error("Setup accepted --log-output without --log")
	}
}

func TestSetupEnablesComponents(t *testing.T) {
	defer func() { dolphin = false; mem = false }()
	if err := Setup(true, "dolphin,mem", ""); err != nil {
		t.Fatal(err)
	}
	if !Dolphin() || !Mem() {
		t.Errorf("Dolphin() = %v, Mem() = %v, want both true", Dolphin(), Mem())
	}
}
