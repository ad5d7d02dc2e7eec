package httpx

import (
	"testing"
	"time"
)

func TestConfigureExternalHTTPClient(t *testing.T) {
	original := externalHTTPClient.Timeout
	t.Cleanup(func() { externalHTTPClient.Timeout = original })

	tests := []struct {
		seconds int
		want    time.Duration
	}{
		{0, defaultExternalHTTPTimeout},
		{-3, defaultExternalHTTPTimeout},
		{5, 5 * time.Second},
		{120, 2 * time.Minute},
	}
	for _, tt := range tests {
		got := ConfigureExternalHTTPClient(tt.seconds)
		if got != tt.want {
			t.Fatalf("ConfigureExternalHTTPClient(%d) = %s, want %s", tt.seconds, got, tt.want)
		}
		if ExternalHTTPClient().Timeout != tt.want {
			t.Fatalf("shared client timeout = %s after configuring %d, want %s", ExternalHTTPClient().Timeout, tt.seconds, tt.want)
		}
	}
}

func TestExternalHTTPClientIsShared(t *testing.T) {
	if ExternalHTTPClient() == nil {
		t.Fatal("ExternalHTTPClient must not be nil")
	}
	if ExternalHTTPClient() != ExternalHTTPClient() {
		t.Fatal("ExternalHTTPClient must return the same client on every call")
	}
}
