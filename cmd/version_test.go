package cmd

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
)

func TestResolvedVersionPrefersLinkerValue(t *testing.T) {
	saved := version
	t.Cleanup(func() { version = saved })

	version = "v1.2.3"
	if got := resolvedVersion(); got != "v1.2.3" {
		t.Fatalf("expected linker version, got %q", got)
	}
}

func TestVersionCommandOutput(t *testing.T) {
	saved := version
	t.Cleanup(func() { version = saved })
	version = "v0.4.0"

	var out bytes.Buffer
	versionCmd.SetOut(&out)
	t.Cleanup(func() { versionCmd.SetOut(nil) })
	versionCmd.Run(versionCmd, nil)

	line := strings.TrimSpace(out.String())
	if line != "liquidhire version: v0.4.0 ("+runtime.Version()+")" {
		t.Fatalf("unexpected output %q", line)
	}
}
