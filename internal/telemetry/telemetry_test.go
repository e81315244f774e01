package telemetry

import (
	"context"
	"testing"

	"github.com/Zachkp/devfolio/internal/config"
)

func TestSetupNoopWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), "devfolio-test", config.OTel{Enabled: true})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSetupNoopWhenDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), "devfolio-test", config.OTel{Enabled: false, Endpoint: "http://localhost:4318"})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown should ignore cancelled context: %v", err)
	}
}

func TestSetupWithEndpoint(t *testing.T) {
	// Non-routable address; nothing is exported because no spans are recorded.
	shutdown, err := Setup(context.Background(), "devfolio-test", config.OTel{Enabled: true, Endpoint: "http://192.0.2.1:4318"})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestCollectorURL(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.OTel
		want   string
		wantOK bool
	}{
		{name: "enabled with endpoint", cfg: config.OTel{Enabled: true, Endpoint: " http://collector:4318 "}, want: "http://collector:4318", wantOK: true},
		{name: "enabled without endpoint", cfg: config.OTel{Enabled: true}, want: "", wantOK: false},
		{name: "disabled with endpoint", cfg: config.OTel{Endpoint: "http://collector:4318"}, want: "http://collector:4318", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := collectorURL(tt.cfg)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("collectorURL = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
