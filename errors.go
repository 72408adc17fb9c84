// Copyright (c) 2025 @AmarnathCJD

package moocauth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/amarnathcjd/moocauth/internal/vdf"
	"github.com/pkg/errors"
)

// Return codes seen in login host replies.
const (
	RetOK            = 200
	RetChallenge     = 201
	RetPowerRequired = 805
	RetPowerFailed   = 806
)

var retMessages = map[int]string{
	RetPowerRequired: "power check required",
	RetPowerFailed:   "power check rejected, solve a fresh challenge",
}

var ErrMalformedResponse = errors.New("moocauth: malformed response")

// ResponseError is a login host reply whose ret code is not a success.
type ResponseError struct {
	Ret     int
	Message string
	// Challenge is set when the reply carries a power check.
	Challenge *vdf.Challenge
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("moocauth: ret %d", e.Ret)
	}
	return fmt.Sprintf("moocauth: ret %d: %s", e.Ret, e.Message)
}

// NeedsPowerCheck reports whether the request should be retried with a
// pVParam.
func (e *ResponseError) NeedsPowerCheck() bool {
	return e.Ret == RetPowerRequired || e.Ret == RetPowerFailed
}

// NeedsPowerCheck reports whether err is a ResponseError asking for a
// power check.
func NeedsPowerCheck(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.NeedsPowerCheck()
}

type response struct {
	Ret    json.RawMessage `json:"ret"`
	Msg    string          `json:"msg"`
	PVInfo json.RawMessage `json:"pVInfo"`
}

// ClassifyResponse returns nil for a successful reply and a *ResponseError
// otherwise. ret may be a number or a string.
func ClassifyResponse(body []byte) error {
	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return errors.Wrap(ErrMalformedResponse, err.Error())
	}
	ret, err := strconv.Atoi(string(bytes.Trim(r.Ret, `"`)))
	if err != nil {
		return errors.Wrapf(ErrMalformedResponse, "ret %s", r.Ret)
	}
	if ret == RetOK || ret == RetChallenge {
		return nil
	}

	re := &ResponseError{Ret: ret, Message: r.Msg}
	if re.Message == "" {
		re.Message = retMessages[ret]
	}
	if len(r.PVInfo) > 0 {
		if ch, err := vdf.ParseChallenge(r.PVInfo); err == nil {
			re.Challenge = ch
		}
	}
	return re
}
