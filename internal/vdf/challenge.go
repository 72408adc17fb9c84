// Copyright (c) 2025 @AmarnathCJD

package vdf

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// HashFunction is the only hashFunc value a challenge may name.
const HashFunction = "VDF_FUNCTION"

// Challenge is one delay-function puzzle as issued by the power check
// endpoint. Times are wall-clock bounds on the whole computation.
type Challenge struct {
	SessionID string
	Modulus   string // hex
	X         string // hex
	T         int64
	MinTime   time.Duration
	MaxTime   time.Duration
	Puzzle    string
}

// Validate checks the fields a prover depends on. Hex values are checked
// when the prover parses them.
func (c *Challenge) Validate() error {
	switch {
	case c.Modulus == "" || c.X == "":
		return errors.Wrap(ErrInvalidChallenge, "modulus and x are required")
	case c.T < 0:
		return errors.Wrapf(ErrInvalidChallenge, "negative iteration count %d", c.T)
	case c.MinTime < 0 || c.MaxTime < 0:
		return errors.Wrap(ErrInvalidChallenge, "negative time bound")
	case c.MaxTime > 0 && c.MinTime > c.MaxTime:
		return errors.Wrapf(ErrInvalidChallenge, "minTime %s exceeds maxTime %s", c.MinTime, c.MaxTime)
	}
	return nil
}

type wireArgs struct {
	Mod    string    `json:"mod"`
	X      string    `json:"x"`
	T      flexInt64 `json:"t"`
	Puzzle string    `json:"puzzle"`
}

type wireChallenge struct {
	NeedCheck *bool     `json:"needCheck,omitempty"`
	SID       string    `json:"sid"`
	HashFunc  string    `json:"hashFunc,omitempty"`
	MaxTime   flexInt64 `json:"maxTime"`
	MinTime   flexInt64 `json:"minTime"`
	Args      *wireArgs `json:"args"`
}

type wireEnvelope struct {
	Ret    any            `json:"ret"`
	PVInfo *wireChallenge `json:"pVInfo"`
}

// ParseChallenge decodes either a bare challenge object or the full
// {"ret":..,"pVInfo":{..}} response it arrives in.
func ParseChallenge(data []byte) (*Challenge, error) {
	var env wireEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(ErrInvalidChallenge, err.Error())
	}

	wc := env.PVInfo
	if wc == nil {
		wc = new(wireChallenge)
		if err := json.Unmarshal(data, wc); err != nil {
			return nil, errors.Wrap(ErrInvalidChallenge, err.Error())
		}
	}

	if wc.NeedCheck != nil && !*wc.NeedCheck {
		return nil, errors.WithStack(ErrNoChallenge)
	}
	if wc.HashFunc != "" && wc.HashFunc != HashFunction {
		return nil, errors.Wrapf(ErrUnsupportedHash, "%q", wc.HashFunc)
	}
	if wc.Args == nil {
		return nil, errors.WithStack(ErrNoChallenge)
	}

	c := &Challenge{
		SessionID: wc.SID,
		Modulus:   wc.Args.Mod,
		X:         wc.Args.X,
		T:         int64(wc.Args.T),
		MinTime:   time.Duration(wc.MinTime) * time.Millisecond,
		MaxTime:   time.Duration(wc.MaxTime) * time.Millisecond,
		Puzzle:    wc.Args.Puzzle,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// flexInt64 accepts a JSON number or a decimal string, since t has been
// seen in both forms.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*f = flexInt64(v)
	return nil
}
