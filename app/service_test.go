package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/jumpvector/config"
	"github.com/kilianp07/jumpvector/core/journal"
	"github.com/kilianp07/jumpvector/core/jumpvector"
	"github.com/kilianp07/jumpvector/core/operator"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		Table: jumpvector.TableConfig{
			Capacity: 10,
			Handlers: []jumpvector.HandlerConfig{
				{Code: 0, Type: "even"},
				{Code: 1, Type: "odd"},
			},
		},
	}
	cfg.SetDefaults()
	return cfg
}

func TestNew_BuildsOperator(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Close()) }()

	assert.Nil(t, svc.server, "no broker configured")
	snap := svc.Operator.Snapshot()
	assert.Equal(t, []uint32{0, 1}, snap.Codes)
	assert.Equal(t, 10, snap.Capacity)

	ctx := context.Background()
	require.True(t, svc.Operator.Register(9, func(_, v byte) bool { return v > 99 }))
	assert.True(t, svc.Operator.ProcessValue(ctx, 9, 101))
	assert.False(t, svc.Operator.ProcessValue(ctx, 9, 50))
	r := svc.Operator.Handle(ctx, operator.Command{CommandID: "x", Code: 2, Value: 1})
	assert.False(t, r.Mapped)

	recs, err := svc.Operator.Journal().Query(ctx, journal.Query{})
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestNew_ConfigErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Table.Handlers = append(cfg.Table.Handlers, jumpvector.HandlerConfig{Code: 3, Type: "nope"})
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Journal.Backend = "redis"
	_, err = New(cfg)
	assert.ErrorIs(t, err, journal.ErrUnknownBackend)
}

func TestRun_StopsOnCancel(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}
