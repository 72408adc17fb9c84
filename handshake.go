// Copyright (c) 2025 @AmarnathCJD

package moocauth

import (
	"context"
	"encoding/hex"
	"encoding/json"

	"github.com/amarnathcjd/moocauth/internal/encoding/params"
	"github.com/amarnathcjd/moocauth/internal/rsa"
	"github.com/amarnathcjd/moocauth/internal/utils"
	"github.com/amarnathcjd/moocauth/internal/vdf"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type ticketParams struct {
	Email     string `json:"un"`
	ProductID string `json:"pkid"`
	Product   string `json:"pd"`
	Rtid      string `json:"rtid"`
}

// field order matches the web client; pVParam goes after pwdKeyUp
type loginParams struct {
	Email        string `json:"un"`
	Password     string `json:"pw"`
	Product      string `json:"pd"`
	Remember     int    `json:"l"`
	RememberDays int    `json:"d"`
	Timestamp    int64  `json:"t"`
	ProductID    string `json:"pkid"`
	Domains      string `json:"domains"`
	Ticket       string `json:"tk"`
	PwdKeyUp     int    `json:"pwdKeyUp"`
	Channel      int    `json:"channel"`
	TopURL       string `json:"topURL"`
	Rtid         string `json:"rtid"`
}

// LoginRequest is the caller's half of the login form.
type LoginRequest struct {
	Email    string
	Password string
	// Ticket is the tk value returned by the ticket endpoint.
	Ticket string
	// Rtid is generated when empty.
	Rtid string
}

func (r *LoginRequest) validate() error {
	switch {
	case r == nil:
		return errors.New("moocauth: nil login request")
	case r.Email == "":
		return errors.New("moocauth: email is required")
	case r.Ticket == "":
		return errors.New("moocauth: ticket is required")
	}
	return nil
}

// PowerParam is the pVParam object of a login retried after a power check.
type PowerParam struct {
	Puzzle    string `json:"puzzle"`
	SpendTime int64  `json:"spendTime"`
	RunTimes  int64  `json:"runTimes"`
	SessionID string `json:"sid"`
	// Args is itself a JSON document: {"x":..,"t":..,"sign":..}.
	Args string `json:"args"`
}

// NewPowerParam packs a finished proof.
func NewPowerParam(p *vdf.Proof) (*PowerParam, error) {
	if p == nil {
		return nil, errors.Wrap(vdf.ErrNotReady, "nil proof")
	}
	args, err := params.Marshal(params.New().
		Set("x", p.X).
		Set("t", p.Iterations).
		Set("sign", p.Signature))
	if err != nil {
		return nil, err
	}
	return &PowerParam{
		Puzzle:    p.Puzzle,
		SpendTime: p.SpendTime(),
		RunTimes:  p.Iterations,
		SessionID: p.SessionID,
		Args:      args,
	}, nil
}

// TicketParams builds the plaintext of the ticket request for email.
func (c *Client) TicketParams(email, rtid string) (*params.Record, error) {
	if email == "" {
		return nil, errors.New("moocauth: email is required")
	}
	if rtid == "" {
		rtid = c.rtid()
	}
	return params.FromStruct(&ticketParams{
		Email:     email,
		ProductID: c.cfg.ProductID,
		Product:   c.cfg.Product,
		Rtid:      rtid,
	})
}

// EncryptPassword returns the base64 RSA ciphertext of password.
func (c *Client) EncryptPassword(password string) (string, error) {
	return rsa.EncryptBase64(c.random, c.publicKey, password)
}

// LoginParams builds the plaintext of the login request. power may be nil
// for a first attempt.
func (c *Client) LoginParams(req *LoginRequest, power *PowerParam) (*params.Record, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	pw, err := c.EncryptPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "encrypting password")
	}
	return c.loginRecord(req, pw, power)
}

func (c *Client) loginRecord(req *LoginRequest, encryptedPassword string, power *PowerParam) (*params.Record, error) {
	rtid := req.Rtid
	if rtid == "" {
		rtid = c.rtid()
	}
	remember := 0
	if c.cfg.Remember {
		remember = 1
	}

	r, err := params.FromStruct(&loginParams{
		Email:        req.Email,
		Password:     encryptedPassword,
		Product:      c.cfg.Product,
		Remember:     remember,
		RememberDays: c.cfg.RememberDays,
		Timestamp:    utils.UnixMillis(c.now()),
		ProductID:    c.cfg.ProductID,
		Ticket:       req.Ticket,
		TopURL:       c.cfg.TopURL,
		Rtid:         rtid,
	})
	if err != nil {
		return nil, err
	}
	if power != nil {
		r.InsertAfter("pwdKeyUp", "pVParam", power)
	}
	return r, nil
}

// EncryptParams serialises r and encrypts it into the encParams hex string.
func (c *Client) EncryptParams(r *params.Record) (string, error) {
	plain, err := params.Marshal(r)
	if err != nil {
		return "", err
	}
	c.log.Tracef("encParams plaintext: %s", plain)
	return hex.EncodeToString(c.cipher.Seal([]byte(plain))), nil
}

// DecryptParams reverses EncryptParams.
func (c *Client) DecryptParams(encParams string) (string, error) {
	raw, err := hex.DecodeString(encParams)
	if err != nil {
		return "", errors.Wrap(err, "encParams is not hex")
	}
	plain, err := c.cipher.Open(raw)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// RequestBody wraps encParams in the JSON body the endpoints accept.
func RequestBody(encParams string) ([]byte, error) {
	return json.Marshal(struct {
		EncParams string `json:"encParams"`
	}{encParams})
}

// SolvePower runs the delay function for ch and packs the result.
func (c *Client) SolvePower(ctx context.Context, ch *vdf.Challenge) (*PowerParam, error) {
	opts := []vdf.OptionFunc{
		vdf.WithChunkSize(c.cfg.ChunkSize),
		vdf.WithLogger(c.log.WithPrefix("vdf")),
	}
	opts = append(opts, c.proverOps...)

	proof, err := vdf.Solve(ctx, ch, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "power check")
	}
	if proof.TimedOut {
		c.log.Warnf("power check stopped at maxTime after %d of %d squarings", proof.Iterations, ch.T)
	}
	c.log.WithFields(map[string]any{
		"sid":       proof.SessionID,
		"runTimes":  proof.Iterations,
		"spendTime": proof.SpendTime(),
	}).Debug("power check solved")
	return NewPowerParam(proof)
}

// PrepareLogin produces the encParams of a login request. The password is
// encrypted while the power check, if any, is being solved.
func (c *Client) PrepareLogin(ctx context.Context, req *LoginRequest, ch *vdf.Challenge) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}

	var (
		pw    string
		power *PowerParam
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pw, err = c.EncryptPassword(req.Password)
		return errors.Wrap(err, "encrypting password")
	})
	if ch != nil {
		g.Go(func() error {
			var err error
			power, err = c.SolvePower(gctx, ch)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	r, err := c.loginRecord(req, pw, power)
	if err != nil {
		return "", err
	}
	return c.EncryptParams(r)
}
