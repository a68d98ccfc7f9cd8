package config_test

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/goliatone/go-formstate/internal/platform/config"
)

// Exitf terminates the process, so it runs in a subprocess.
func TestExitf_ExitsWithCode1(t *testing.T) {
	if os.Getenv("TEST_EXITF_SUBPROCESS") == "1" {
		config.Exitf("formstate: %s", "bad flag")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestExitf_ExitsWithCode1$")
	cmd.Env = append(os.Environ(), "TEST_EXITF_SUBPROCESS=1")

	out, err := cmd.CombinedOutput()
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected *exec.ExitError, got %T: %v", err, err)
	}
	if exitErr.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %d", exitErr.ExitCode())
	}
	if !strings.Contains(string(out), "formstate: bad flag") {
		t.Fatalf("expected stderr to contain message, got %q", string(out))
	}
}

func TestRunMain_RunsDeferredCleanupBeforeExit(t *testing.T) {
	if os.Getenv("TEST_MAIN_SUBPROCESS") == "1" {
		config.Main("formstate", func() error {
			defer fmt.Fprintln(os.Stderr, "cleanup ran")
			return errors.New("listen failed")
		})
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestRunMain_RunsDeferredCleanupBeforeExit$")
	cmd.Env = append(os.Environ(), "TEST_MAIN_SUBPROCESS=1")

	out, err := cmd.CombinedOutput()
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected *exec.ExitError, got %T: %v", err, err)
	}
	if exitErr.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %d", exitErr.ExitCode())
	}
	got := string(out)
	cleanup := strings.Index(got, "cleanup ran")
	message := strings.Index(got, "formstate: listen failed")
	if cleanup < 0 || message < 0 || cleanup > message {
		t.Fatalf("expected cleanup before the exit message, got %q", got)
	}
}

func TestRunMain_ReturnsOnSuccess(t *testing.T) {
	called := false
	config.Main("formstate", func() error {
		called = true
		return nil
	})
	if !called {
		t.Fatal("run was not called")
	}
}
