// Package tele publishes price reports to MQTT broker.
package tele

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/spotlcd/helpers"
	"github.com/temoto/spotlcd/log2"
)

const (
	DefaultTopic          = "spotlcd/price"
	DefaultNetworkTimeout = 30 * time.Second
)

type Config struct { //nolint:maligned
	Enabled      bool   `hcl:"enable"`
	Broker       string `hcl:"broker"`
	ClientID     string `hcl:"client_id"`
	Topic        string `hcl:"topic"`
	Username     string `hcl:"username"`
	Password     string `hcl:"password"` // secret
	TimeoutSec   int    `hcl:"timeout_sec"`
	KeepaliveSec int    `hcl:"keepalive_sec"`
	LogDebug     bool   `hcl:"log_debug"`
	MqttLogDebug bool   `hcl:"mqtt_log_debug"`
}

// Report is published after every rendered price.
type Report struct {
	Time     time.Time `json:"time"`
	Start    time.Time `json:"start"`
	Now      string    `json:"now"`
	Next     string    `json:"next"`
	Value    float64   `json:"value"`
	Unit     string    `json:"unit"`
	Display  bool      `json:"display"`
	Failures int       `json:"failures"`
}

type Teler interface {
	Report(ctx context.Context, r Report) error
	Close()
}

type Noop struct{}

func (Noop) Report(context.Context, Report) error { return nil }
func (Noop) Close()                               {}

// Tele contract:
// - New fails only with invalid config, network issues ignored
// - Report blocks at most network timeout, publish failure is returned, not retried
// - reports are retained, subscriber sees last one right away
type tele struct {
	config    Config
	log       *log2.Log
	transport Transporter
	timeout   time.Duration
	sent      uint32
	failed    uint32
}

// New returns Noop when disabled.
func New(ctx context.Context, log *log2.Log, c Config) (Teler, error) {
	if !c.Enabled {
		return Noop{}, nil
	}
	return NewWithTransporter(ctx, log, c, &transportMqtt{})
}

func NewWithTransporter(ctx context.Context, log *log2.Log, c Config, tr Transporter) (Teler, error) {
	if c.Topic == "" {
		c.Topic = DefaultTopic
	}
	self := &tele{
		config:    c,
		log:       log,
		transport: tr,
		timeout:   helpers.IntSecondDefault(c.TimeoutSec, DefaultNetworkTimeout),
	}
	if c.LogDebug {
		self.log.SetLevel(log2.LDebug)
	}
	if err := tr.Init(ctx, log, c); err != nil {
		return nil, errors.Annotate(err, "tele transport")
	}
	return self, nil
}

func (self *tele) Report(ctx context.Context, r Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return errors.Annotate(err, "tele report marshal")
	}
	self.log.Debugf("tele report topic=%s payload=%s", self.config.Topic, payload)

	ctx, cancel := context.WithTimeout(ctx, self.timeout)
	defer cancel()
	if err = self.transport.Publish(ctx, self.config.Topic, payload); err != nil {
		atomic.AddUint32(&self.failed, 1)
		return errors.Annotatef(err, "tele report topic=%s", self.config.Topic)
	}
	atomic.AddUint32(&self.sent, 1)
	return nil
}

func (self *tele) Close() {
	self.log.Debugf("tele close sent=%d failed=%d", atomic.LoadUint32(&self.sent), atomic.LoadUint32(&self.failed))
	self.transport.Close()
}
