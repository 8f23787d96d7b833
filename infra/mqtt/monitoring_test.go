package mqtt

import (
	"fmt"
	"testing"
	"time"

	coremon "github.com/kilianp07/jumpvector/core/monitoring"
)

type recordMonitor struct {
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}
func (r *recordMonitor) Flush(time.Duration) {}

func TestSendCommandErrorCaptured(t *testing.T) {
	fail := fmt.Errorf("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail, fail, fail}}
	defer useMock(mc)()
	mon := &recordMonitor{}
	coremon.Init(mon)
	defer coremon.Init(coremon.NopMonitor{})

	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", CommandTopic: "jv/cmd", MaxRetries: 0, BackoffMS: 1}
	cli, err := NewPahoClient(cfg)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if _, err = cli.SendCommand(1, 1); err == nil {
		t.Fatalf("expected error")
	}
	if mon.err == nil {
		t.Fatalf("error not captured")
	}
	if mon.tags["topic"] != "jv/cmd" || mon.tags["module"] != "mqtt" || mon.tags["command_id"] == "" {
		t.Fatalf("tags not set: %v", mon.tags)
	}
}
