package mqtt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"testing"
	"time"

	coremqtt "github.com/kilianp07/jumpvector/core/mqtt"
	"github.com/kilianp07/jumpvector/core/operator"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0644); err != nil {
		t.Fatalf("write key: %v", err)
	}
	if err := os.WriteFile(caFile, certPEM, 0644); err != nil {
		t.Fatalf("write ca: %v", err)
	}
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 {
		t.Fatalf("no certs loaded")
	}
	if tlsCfg.RootCAs == nil {
		t.Fatalf("no root CAs")
	}
}

func TestLoadTLSConfigMissingFiles(t *testing.T) {
	if _, err := (Config{UseTLS: true}).LoadTLSConfig(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
	opts, err = NewClientOptions(Config{Broker: "tcp://localhost:1883", AuthMethod: "certificate", Username: "u"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "" {
		t.Fatalf("username set for certificate auth")
	}
}

func TestQoSSettings(t *testing.T) {
	mc := &mockClient{}
	defer useMock(mc)()
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", CommandTopic: "jv/cmd", ReplyTopic: "jv/reply", QoS: map[string]byte{"command": 2, "reply": 1}}
	cli, err := NewPahoClient(cfg)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if len(mc.subscribed) == 0 || mc.subscribed[0].topic != "jv/reply" || mc.subscribed[0].qos != 1 {
		t.Fatalf("subscribe qos not applied")
	}
	cmdID, err := cli.SendCommand(9, 101)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	pub := mc.publishedCopy()
	if len(pub) == 0 || pub[0].qos != 2 || pub[0].topic != "jv/cmd" {
		t.Fatalf("publish qos not applied")
	}
	sent, err := operator.DecodeCommand(pub[0].payload)
	if err != nil || sent.CommandID != cmdID || sent.Code != 9 || sent.Value != 101 {
		t.Fatalf("unexpected command %+v: %v", sent, err)
	}

	payload := fmt.Sprintf(`{"command_id":"%s","code":9,"value":101,"mapped":true,"result":true,"outcome":"accepted"}`, cmdID)
	mc.deliver("jv/reply", []byte(payload))
	r, err := cli.WaitForReply(cmdID, time.Millisecond)
	if err != nil || !r.Result || !r.Mapped {
		t.Fatalf("reply wait failed: %+v %v", r, err)
	}
}

func TestLWTConfigured(t *testing.T) {
	mc := &mockClient{}
	defer useMock(mc)()
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", LWTTopic: "lwt", LWTPayload: "bye", LWTQoS: 1}
	cli, err := NewPahoClient(cfg)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if !mc.opts.WillEnabled {
		t.Fatalf("will not enabled")
	}
	if mc.opts.WillTopic != "lwt" || string(mc.opts.WillPayload) != "bye" {
		t.Fatalf("will options incorrect")
	}
	cli.Disconnect()
	if len(mc.publishedCopy()) != 0 {
		t.Fatalf("unexpected publish on disconnect")
	}
}

func TestRetryLogic(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	defer useMock(mc)()
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 1, BackoffMS: 1}
	cli, err := NewPahoClient(cfg)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if _, err = cli.SendCommand(1, 1); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(mc.publishedCopy()) != 2 {
		t.Fatalf("expected retries")
	}
}

func TestSendCommandCodeOutOfRange(t *testing.T) {
	mc := &mockClient{}
	defer useMock(mc)()
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", ClientID: "id"})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if _, err := cli.SendCommand(256, 0); !errors.Is(err, operator.ErrInvalidCommand) {
		t.Fatalf("expected invalid command, got %v", err)
	}
	if len(mc.publishedCopy()) != 0 {
		t.Fatalf("unexpected publish")
	}
}

func TestWaitForReplyTimeout(t *testing.T) {
	mc := &mockClient{}
	defer useMock(mc)()
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id"}
	cli, err := NewPahoClient(cfg)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	cmdID, _ := cli.SendCommand(1, 1)
	_, err = cli.WaitForReply(cmdID, time.Millisecond)
	if !errors.Is(err, coremqtt.ErrReplyTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if _, err := cli.WaitForReply(cmdID, time.Millisecond); !errors.Is(err, coremqtt.ErrUnknownCommand) {
		t.Fatalf("expected unknown command after timeout, got %v", err)
	}
}

func TestSendCommandCBOR(t *testing.T) {
	mc := &mockClient{}
	defer useMock(mc)()
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", ClientID: "id", CommandTopic: "jv/cmd", ReplyTopic: "jv/reply", Encoding: "cbor"})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	cmdID, err := cli.SendCommand(9, 101)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	pub := mc.publishedCopy()
	cmd, format, err := operator.DecodeCommandFormat(pub[0].payload)
	if err != nil || format != operator.FormatCBOR || cmd.CommandID != cmdID {
		t.Fatalf("unexpected payload %v %v %v", cmd, format, err)
	}
	reply, _ := operator.EncodeReplyAs(operator.Reply{CommandID: cmdID, Mapped: true, Result: true}, operator.FormatCBOR)
	mc.deliver("jv/reply", reply)
	r, err := cli.WaitForReply(cmdID, time.Millisecond)
	if err != nil || !r.Result {
		t.Fatalf("reply wait failed: %+v %v", r, err)
	}
}

func TestNewPahoClientRejectsFrameEncoding(t *testing.T) {
	mc := &mockClient{}
	defer useMock(mc)()
	if _, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", Encoding: "frame"}); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", Encoding: "xml"}); err == nil {
		t.Fatalf("expected error")
	}
}
