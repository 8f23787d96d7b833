package mqtt

import (
	"context"
	"errors"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/jumpvector/core/monitoring"
	"github.com/kilianp07/jumpvector/core/operator"
	"github.com/kilianp07/jumpvector/infra/logger"
)

// Handler runs a decoded command. *operator.Operator satisfies it.
type Handler interface {
	Handle(ctx context.Context, cmd operator.Command) operator.Reply
}

// PahoServer feeds commands received on the command topic to a Handler and
// publishes each reply on the reply topic.
type PahoServer struct {
	publisher
	cfg     Config
	opts    *paho.ClientOptions
	handler Handler

	mu  sync.Mutex
	ctx context.Context
}

// NewPahoServer prepares a server for cfg. The broker connection is opened
// by Serve.
func NewPahoServer(cfg Config, h Handler) (*PahoServer, error) {
	if h == nil {
		return nil, errors.New("mqtt server requires a handler")
	}
	if cfg.CommandTopic == "" || cfg.ReplyTopic == "" {
		return nil, errors.New("mqtt server requires command_topic and reply_topic")
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	// handlers publish and wait on the reply token
	opts.SetOrderMatters(false)

	log := logger.New("mqtt_server")
	s := &PahoServer{
		publisher: newPublisher(cfg, log),
		cfg:       cfg,
		opts:      opts,
		handler:   h,
		ctx:       context.Background(),
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected, listening on %s", cfg.CommandTopic)
		if token := c.Subscribe(cfg.CommandTopic, cfg.qos("command"), s.onCommand); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
			monitoring.CaptureException(token.Error(), map[string]string{"module": "mqtt", "topic": cfg.CommandTopic})
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	return s, nil
}

// Serve connects to the broker and handles commands until ctx is cancelled.
func (s *PahoServer) Serve(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	c := newMQTTClient(s.opts)
	s.cli = c
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	<-ctx.Done()
	if c.IsConnected() {
		c.Disconnect(250)
	}
	s.log.Infof("MQTT server stopped")
	return nil
}

func (s *PahoServer) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *PahoServer) onCommand(_ paho.Client, msg paho.Message) {
	cmd, format, err := operator.DecodeCommandFormat(msg.Payload())
	if err != nil {
		s.log.Warnf("dropping command on %s: %v", msg.Topic(), err)
		return
	}
	cmd.Source = "mqtt"
	reply := s.handler.Handle(s.baseContext(), cmd)

	payload, err := operator.EncodeReplyAs(reply, format)
	if err != nil {
		s.log.Errorf("encode reply %s: %v", cmd.CommandID, err)
		return
	}
	if err := s.publish(s.cfg.ReplyTopic, s.cfg.qos("reply"), payload, cmd.CommandID); err != nil {
		s.log.Errorf("reply %s: %v", cmd.CommandID, err)
	}
}
