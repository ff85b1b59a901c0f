package monitoring

import "testing"

func TestSetLogger_ReplacesAndRestores(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) { got = format })
	Logf("fallback for %s", "bilinear")
	if got != "fallback for %s" {
		t.Fatalf("custom logger not invoked, got %q", got)
	}
}

func TestSetLogger_NilInstallsNoOp(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(string, ...interface{}) { called = true })
	SetLogger(nil)
	Logf("should be dropped")
	if called {
		t.Fatal("no-op logger invoked the previous callback")
	}
	if Logf == nil {
		t.Fatal("Logf must never be nil")
	}
}
