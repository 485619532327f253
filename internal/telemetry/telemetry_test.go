package telemetry

import (
	"context"
	"testing"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		raw          string
		wantHost     string
		wantInsecure bool
		wantErr      bool
	}{
		{raw: "collector:4318", wantHost: "collector:4318", wantInsecure: true},
		{raw: "http://collector:4318", wantHost: "collector:4318", wantInsecure: true},
		{raw: "https://otel.example.com", wantHost: "otel.example.com"},
		{raw: "grpc://collector:4317", wantErr: true},
		{raw: "http://", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			host, insecure, err := parseEndpoint(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got host %q", host)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if host != tc.wantHost || insecure != tc.wantInsecure {
				t.Fatalf("got (%q, %v), want (%q, %v)", host, insecure, tc.wantHost, tc.wantInsecure)
			}
		})
	}
}

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInitRejectsBadEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "test", Endpoint: "ftp://collector"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if shutdown == nil {
		t.Fatalf("expected usable shutdown func")
	}
}

func TestSampler(t *testing.T) {
	if got := sampler(0).Description(); got != "AlwaysOnSampler" {
		t.Fatalf("ratio 0: got %q", got)
	}
	if got := sampler(1).Description(); got != "AlwaysOnSampler" {
		t.Fatalf("ratio 1: got %q", got)
	}
	if got := sampler(0.5).Description(); got == "AlwaysOnSampler" {
		t.Fatalf("ratio 0.5: expected ratio sampler")
	}
}
