package plog

import (
	"os"
	"os/exec"
	"testing"
)

func TestSetLoggerLevels(t *testing.T) {
	SetLogger("TestDebug", DEBUG)
	Debug("print driven development")
	Info("hello")
	if GetLoggerLevel() != DEBUG {
		t.Fatalf("got level %q, want %q", GetLoggerLevel(), DEBUG)
	}
}

func TestSilentLoggerIgnoresEverything(t *testing.T) {
	SetLogger("TestSilent", SILENT)
	Debug("should not panic")
	Info("should not panic")
	if GetLoggerLevel() != SILENT {
		t.Fatalf("got level %q, want %q", GetLoggerLevel(), SILENT)
	}
}

func Crasher() {
	Error("killed")
}

func TestErrorExits(t *testing.T) {
	if os.Getenv("BE_CRASHER") == "1" {
		Crasher()
		return
	}
	cmd := exec.Command(os.Args[0], "-test.run=TestErrorExits")
	cmd.Env = append(os.Environ(), "BE_CRASHER=1")
	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		return
	}
	t.Fatalf("plog.Error ran with err %v, want exit status 1", err)
}
