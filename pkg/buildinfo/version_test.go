package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	oldV, oldC := Version, Commit
	defer func() { Version, Commit = oldV, oldC }()

	Version, Commit = "v1.2.3", "0123456789abcdef"
	got := Template()
	if !strings.Contains(got, "v1.2.3") || !strings.Contains(got, "(0123456,") {
		t.Errorf("Template() = %q", got)
	}

	Commit = "abc"
	if got := Template(); !strings.Contains(got, "(abc,") {
		t.Errorf("short commit: Template() = %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "v0.1.0"
	if got := UserAgent(); !strings.HasPrefix(got, "blockscape/v0.1.0 ") {
		t.Errorf("UserAgent() = %q", got)
	}
}

func TestString(t *testing.T) {
	if got := String(); strings.Count(got, "\n") != 2 {
		t.Errorf("String() = %q, want three lines", got)
	}
}
