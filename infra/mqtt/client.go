package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	coremqtt "github.com/kilianp07/jumpvector/core/mqtt"
	"github.com/kilianp07/jumpvector/core/operator"
	"github.com/kilianp07/jumpvector/infra/logger"
)

// PahoClient implements core/mqtt.Client using Eclipse Paho.
type PahoClient struct {
	publisher
	commandTopic string
	commandQoS   byte
	format       operator.Format

	mu      sync.Mutex
	replies map[string]chan operator.Reply
}

var _ coremqtt.Client = (*PahoClient)(nil)

// NewPahoClient connects to the MQTT broker and subscribes to the reply topic.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	format, err := operator.ParseFormat(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	if format == operator.FormatFrame {
		return nil, fmt.Errorf("encoding %s carries no command id", format)
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_client")
	pc := &PahoClient{
		publisher:    newPublisher(cfg, log),
		commandTopic: cfg.CommandTopic,
		commandQoS:   cfg.qos("command"),
		format:       format,
		replies:      make(map[string]chan operator.Reply),
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(cfg.ReplyTopic, cfg.qos("reply"), pc.onReply); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

func (p *PahoClient) onReply(_ paho.Client, msg paho.Message) {
	r, err := operator.DecodeReply(msg.Payload())
	if err != nil {
		p.log.Errorf("failed to decode reply: %v", err)
		return
	}
	p.mu.Lock()
	ch, ok := p.replies[r.CommandID]
	p.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- r:
		p.log.Debugf("received reply %s", r.CommandID)
	default:
	}
}

// SendCommand publishes (code, value) on the command topic and returns the
// command identifier to wait on.
func (p *PahoClient) SendCommand(code uint32, value byte) (string, error) {
	if code > 0xFF {
		return "", fmt.Errorf("%w: code %d out of range", operator.ErrInvalidCommand, code)
	}
	cmdID := uuid.NewString()
	payload, err := operator.EncodeCommandAs(operator.Command{CommandID: cmdID, Code: code, Value: value}, p.format)
	if err != nil {
		return "", err
	}

	// registered first so a fast reply is not lost
	p.mu.Lock()
	p.replies[cmdID] = make(chan operator.Reply, 1)
	p.mu.Unlock()

	if err := p.publish(p.commandTopic, p.commandQoS, payload, cmdID); err != nil {
		p.forget(cmdID)
		return "", err
	}
	p.log.Infof("sent command %s code=%d value=%d", cmdID, code, value)
	return cmdID, nil
}

// WaitForReply blocks until the reply to commandID arrives or timeout.
func (p *PahoClient) WaitForReply(commandID string, timeout time.Duration) (operator.Reply, error) {
	p.mu.Lock()
	ch := p.replies[commandID]
	p.mu.Unlock()
	if ch == nil {
		return operator.Reply{}, fmt.Errorf("%w: %s", coremqtt.ErrUnknownCommand, commandID)
	}
	defer p.forget(commandID)

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		return r, nil
	case <-timer.C:
		return operator.Reply{}, fmt.Errorf("%s: %w", commandID, coremqtt.ErrReplyTimeout)
	}
}

func (p *PahoClient) forget(commandID string) {
	p.mu.Lock()
	delete(p.replies, commandID)
	p.mu.Unlock()
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
