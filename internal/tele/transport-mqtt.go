package tele

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/juju/errors"
	"github.com/temoto/spotlcd/helpers"
	"github.com/temoto/spotlcd/log2"
)

const (
	payloadOnline  = "1"
	payloadOffline = "0"
	qos            = 1
)

// subset of mqtt.Client
type mqttClient interface {
	Connect() mqtt.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type transportMqtt struct {
	log          *log2.Log
	m            mqttClient
	mopt         *mqtt.ClientOptions
	topicConnect string

	// tests replace client constructor
	newClient func(*mqtt.ClientOptions) mqttClient
}

func TopicConnect(topic string) string { return topic + "/c" }

func (self *transportMqtt) Init(ctx context.Context, log *log2.Log, c Config) error {
	self.log = log
	mqttLog := log.Clone(log2.LInfo)
	if c.MqttLogDebug {
		mqttLog.SetLevel(log2.LDebug)
		mqtt.DEBUG = mqttLog
	}
	mqtt.ERROR = mqttLog
	mqtt.CRITICAL = mqttLog
	mqtt.WARN = mqttLog

	if _, err := url.ParseRequestURI(c.Broker); err != nil {
		return errors.Annotatef(err, "tele broker=%s", c.Broker)
	}
	clientID := c.ClientID
	if clientID == "" {
		host, _ := os.Hostname()
		clientID = fmt.Sprintf("spotlcd-%s", host)
	}
	keepAlive := helpers.IntSecondDefault(c.KeepaliveSec, 60*time.Second)
	timeout := helpers.IntSecondDefault(c.TimeoutSec, DefaultNetworkTimeout)
	self.topicConnect = TopicConnect(c.Topic)

	self.mopt = mqtt.NewClientOptions().
		AddBroker(c.Broker).
		SetBinaryWill(self.topicConnect, []byte(payloadOffline), qos, true).
		SetCleanSession(true).
		SetClientID(clientID).
		SetKeepAlive(keepAlive).
		SetPingTimeout(timeout).
		SetConnectTimeout(timeout).
		SetWriteTimeout(timeout).
		SetConnectRetryInterval(timeout / 2).
		SetConnectRetry(true).
		SetOnConnectHandler(self.onConnectHandler).
		SetConnectionLostHandler(self.connectLostHandler)
	if c.Username != "" {
		self.mopt.SetUsername(c.Username).SetPassword(c.Password)
	}
	if self.newClient == nil {
		self.newClient = func(o *mqtt.ClientOptions) mqttClient { return mqtt.NewClient(o) }
	}
	self.m = self.newClient(self.mopt)
	// with ConnectRetry token completes only after first successful connect
	if t := self.m.Connect(); t.WaitTimeout(0) && t.Error() != nil {
		self.log.Errorf("tele mqtt connect err=%v", t.Error())
	}
	return nil
}

func (self *transportMqtt) Publish(ctx context.Context, topic string, payload []byte) error {
	t := self.m.Publish(topic, qos, true, payload)
	return waitToken(ctx, t)
}

func (self *transportMqtt) Close() {
	self.log.Infof("tele mqtt disconnect")
	t := self.m.Publish(self.topicConnect, qos, true, []byte(payloadOffline))
	t.WaitTimeout(time.Second)
	self.m.Disconnect(250)
}

func (self *transportMqtt) connectLostHandler(c mqtt.Client, err error) {
	self.log.Infof("tele mqtt connection lost err=%v", err)
}

func (self *transportMqtt) onConnectHandler(c mqtt.Client) {
	self.log.Infof("tele mqtt connect")
	c.Publish(self.topicConnect, qos, true, []byte(payloadOnline))
}

func waitToken(ctx context.Context, t mqtt.Token) error {
	select {
	case <-t.Done():
		return errors.Trace(t.Error())
	case <-ctx.Done():
		return errors.Annotate(ctx.Err(), "mqtt publish")
	}
}
