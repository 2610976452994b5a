package main

import "testing"

// The flag wins, the environment fills an empty flag, and empty means
// disabled.
func TestResolveMetricsBackend(t *testing.T) {
	t.Setenv("METRICS_BACKEND", "pushgateway")

	if got := resolveMetricsBackend("none"); got != "none" {
		t.Fatalf("flag should win: got %q", got)
	}
	if got := resolveMetricsBackend(""); got != "pushgateway" {
		t.Fatalf("env fallback: got %q", got)
	}

	t.Setenv("METRICS_BACKEND", "")
	if got := resolveMetricsBackend(""); got != "" {
		t.Fatalf("unset everywhere: got %q; want empty (disabled)", got)
	}
}
