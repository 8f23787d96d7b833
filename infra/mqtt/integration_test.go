package mqtt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startMosquitto(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	conf := "listener 1883\nallow_anonymous true\npersistence false\n"
	path := filepath.Join(t.TempDir(), "mosquitto.conf")
	require.NoError(t, os.WriteFile(path, []byte(conf), 0644))

	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			HostFilePath:      path,
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0644,
		}},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("container start: %v", err)
	}
	host, err := cont.Host(ctx)
	require.NoError(t, err)
	port, err := cont.MappedPort(ctx, "1883")
	require.NoError(t, err)
	return cont, fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

func TestRoundTripMosquitto(t *testing.T) {
	if os.Getenv("DOCKER_AVAILABLE") != "true" {
		t.Skip("DOCKER_AVAILABLE not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	cont, broker := startMosquitto(ctx, t)
	defer func() { _ = cont.Terminate(context.Background()) }()

	base := Config{Broker: broker, CommandTopic: "jv/cmd", ReplyTopic: "jv/reply", QoS: map[string]byte{"command": 1, "reply": 1}}

	srvCfg := base
	srvCfg.ClientID = "jv-server"
	srv, err := NewPahoServer(srvCfg, newTestOperator())
	require.NoError(t, err)
	srvCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = srv.Serve(srvCtx) }()

	cliCfg := base
	cliCfg.ClientID = "jv-client"
	cli, err := NewPahoClient(cliCfg)
	require.NoError(t, err)
	defer cli.Disconnect()

	// the server subscription is asynchronous; resend until it answers
	var got bool
	for i := 0; i < 20 && !got; i++ {
		id, err := cli.SendCommand(9, 101)
		require.NoError(t, err)
		r, err := cli.WaitForReply(id, 250*time.Millisecond)
		if err != nil {
			continue
		}
		assert.True(t, r.Mapped)
		assert.True(t, r.Result)
		got = true
	}
	require.True(t, got, "no reply from server")
}
