// Copyright (c) 2025 @AmarnathCJD

// Package moocauth assembles the encrypted login and ticket payloads the
// icourse163 login host expects, including the power check proof.
package moocauth

import (
	"io"
	"time"

	"github.com/amarnathcjd/moocauth/internal/keys"
	"github.com/amarnathcjd/moocauth/internal/rsa"
	"github.com/amarnathcjd/moocauth/internal/sm4"
	"github.com/amarnathcjd/moocauth/internal/utils"
	"github.com/amarnathcjd/moocauth/internal/vdf"
	"github.com/pkg/errors"
)

// Client holds the parsed keys for one configuration. It is safe for
// concurrent use.
type Client struct {
	cfg       *Config
	cipher    *sm4.Schedule
	publicKey *rsa.PublicKey
	log       *utils.Logger

	random    io.Reader
	now       func() time.Time
	rtid      func() string
	proverOps []vdf.OptionFunc
}

type ClientOption func(*Client)

func WithLogger(l *utils.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// WithRandom sets the source of RSA padding bytes.
func WithRandom(r io.Reader) ClientOption {
	return func(c *Client) { c.random = r }
}

func WithNow(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// WithRtid replaces the request tracking id generator.
func WithRtid(gen func() string) ClientOption {
	return func(c *Client) { c.rtid = gen }
}

// WithProverOptions is passed through to every prover the client creates.
func WithProverOptions(opts ...vdf.OptionFunc) ClientOption {
	return func(c *Client) { c.proverOps = append(c.proverOps, opts...) }
}

func NewClient(cfg *Config, opts ...ClientOption) (*Client, error) {
	cfg = cfg.withDefaults()

	key, err := sm4.ParseKey(cfg.SM4Key)
	if err != nil {
		return nil, errors.Wrap(err, "sm4 key")
	}
	schedule, err := sm4.NewSchedule(key)
	if err != nil {
		return nil, err
	}
	pub, err := keys.ParsePublicKey([]byte(cfg.PublicKey))
	if err != nil {
		return nil, errors.Wrap(err, "public key")
	}

	c := &Client{
		cfg:       cfg,
		cipher:    schedule,
		publicKey: pub,
		now:       time.Now,
		rtid:      utils.RandomRtid,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = utils.NewLogger("moocauth").SetLevel(utils.ParseLevel(cfg.LogLevel))
	}
	return c, nil
}

func (c *Client) Config() *Config {
	out := *c.cfg
	return &out
}

func (c *Client) PublicKey() *rsa.PublicKey { return c.publicKey }

func (c *Client) Logger() *utils.Logger { return c.log }
