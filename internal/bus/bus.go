// Package bus delivers telemetry to the MQTT broker. All sends are
// fire-and-forget: a failed publish is logged and dropped, never retried
// synchronously. Connection recovery is the one intentionally blocking
// path, driven by an explicit retry policy when a send finds the
// connection absent.
package bus

import (
	"context"
	"fmt"
	"time"

	"aurora-pvlogd/internal/errors"
	"aurora-pvlogd/internal/logger"
	"aurora-pvlogd/internal/retry"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	topicLiveness = "tele/%s/LWT"
	topicStatus   = "tele/%s/STAT"
	topicPower    = "tele/%s/POWER"
	topicLog      = "tele/%s/LOG"

	messageOnline  = "Online"
	messageOffline = "Offline"

	connectTimeout = 30 * time.Second
	publishTimeout = 10 * time.Second
)

type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	TopicRoot string
	ClientID  string
}

func (c Config) Validate() error {
	errFactory := errors.New()
	if c.Host == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "broker host is required")
	}
	if c.TopicRoot == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "topic root is required")
	}

	return nil
}

// Publisher owns the broker connection and the device's topic tree.
type Publisher struct {
	cli    mqtt.Client
	cfg    Config
	policy retry.Policy
}

func NewPublisher(cfg Config, policy retry.Policy) (*Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Publisher{cfg: cfg, policy: policy}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.User)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(false)
	opts.SetWill(p.topic(topicLiveness), messageOffline, 1, true)
	opts.SetOnConnectHandler(func(cli mqtt.Client) {
		logger.Info().
			Str("host", cfg.Host).
			Int("port", cfg.Port).
			Str("client_id", cfg.ClientID).
			Msg("Broker connected")
		// Retained liveness marker, published on every (re)connect.
		cli.Publish(p.topic(topicLiveness), 1, true, messageOnline)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn().Err(err).Msg("Broker connection lost")
	})

	p.cli = mqtt.NewClient(opts)

	return p, nil
}

// Connected reports whether the broker connection is up.
func (p *Publisher) Connected() bool {
	return p.cli.IsConnected()
}

// EnsureConnected blocks until the broker connection is established,
// retrying per the configured policy. Network absence is recoverable, not
// fatal: with an unbounded policy this returns only on success or context
// cancellation.
func (p *Publisher) EnsureConnected(ctx context.Context) error {
	if p.cli.IsConnected() {
		return nil
	}

	errFactory := errors.New()

	err := p.policy.Do(ctx, func() error {
		logger.Info().
			Str("host", p.cfg.Host).
			Int("port", p.cfg.Port).
			Msg("Connecting to broker")

		token := p.cli.Connect()
		if !token.WaitTimeout(connectTimeout) {
			return errFactory.New(errors.ErrTimeout)
		}
		if err := token.Error(); err != nil {
			logger.Warn().Err(err).Msg("Broker connection failed")
			return err
		}

		return nil
	})
	if err != nil {
		return errFactory.Wrap(errors.ErrBusConnect, err)
	}

	return nil
}

// PublishStatus sends the serialized status document.
func (p *Publisher) PublishStatus(doc []byte) {
	p.send(topicStatus, doc)
}

// PublishPower sends the instantaneous power value.
func (p *Publisher) PublishPower(value string) {
	p.send(topicPower, []byte(value))
}

// Logf mirrors a diagnostic line to the log topic when connected. Silent
// no-op otherwise; the structured log already carries the line.
func (p *Publisher) Logf(format string, args ...any) {
	if !p.cli.IsConnected() {
		return
	}
	p.send(topicLog, []byte(fmt.Sprintf(format, args...)))
}

// Disconnect flushes the client and drops the connection.
func (p *Publisher) Disconnect() {
	if p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}

func (p *Publisher) send(topicFmt string, payload []byte) {
	topic := p.topic(topicFmt)
	logger.Debug().Str("topic", topic).Msg("Publishing")

	token := p.cli.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		logger.Warn().Str("topic", topic).Msg("Publish timed out")
		return
	}
	if err := token.Error(); err != nil {
		logger.Warn().Str("topic", topic).Err(err).Msg("Publish failed")
	}
}

func (p *Publisher) topic(format string) string {
	return fmt.Sprintf(format, p.cfg.TopicRoot)
}
