package moocauth_test

import (
	"context"
	"crypto/rand"
	stdrsa "crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"testing"
	"time"

	"github.com/amarnathcjd/moocauth"
	"github.com/amarnathcjd/moocauth/internal/encoding/params"
	"github.com/amarnathcjd/moocauth/internal/utils"
	"github.com/amarnathcjd/moocauth/internal/vdf"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRtid = "0123456789ABCDEFGHIJKLMNOPQRSTUV"

var testNow = time.UnixMilli(1733650000123)

type stoppedClock struct{ now time.Time }

func (c *stoppedClock) Now() time.Time { return c.now }
func (c *stoppedClock) After(d time.Duration) <-chan time.Time {
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func newTestClient(t *testing.T, cfg *moocauth.Config, opts ...moocauth.ClientOption) *moocauth.Client {
	t.Helper()
	opts = append([]moocauth.ClientOption{
		moocauth.WithLogger(utils.Discard()),
		moocauth.WithNow(func() time.Time { return testNow }),
		moocauth.WithRtid(func() string { return testRtid }),
	}, opts...)
	c, err := moocauth.NewClient(cfg, opts...)
	require.NoError(t, err)
	return c
}

func generateKey(t *testing.T) (*stdrsa.PrivateKey, string) {
	t.Helper()
	priv, err := stdrsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	return priv, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func TestTicketEncParams(t *testing.T) {
	c := newTestClient(t, nil)

	r, err := c.TicketParams("test@163.com", "")
	require.NoError(t, err)

	enc, err := c.EncryptParams(r)
	require.NoError(t, err)
	assert.Equal(t, "2b51a0965e7e24e871b1b3f6a2d1702792d577ae3da3838dad5b9b74f8cd87d2"+
		"a17e4720f55be4108f9fe72a32e328d1ebda3eeb85b2f4b3003b3db6dab90620"+
		"192d323015d6adeb48ae28b89780b284412c847a2ce23c316fce0f298503334e", enc)

	plain, err := c.DecryptParams(enc)
	require.NoError(t, err)
	assert.Equal(t, `{"un":"test@163.com","pkid":"cjJVGQM","pd":"imooc","rtid":"`+testRtid+`"}`, plain)

	_, err = c.TicketParams("", "")
	assert.Error(t, err)
	_, err = c.DecryptParams("xyz")
	assert.Error(t, err)
}

func TestLoginParams(t *testing.T) {
	priv, pubPEM := generateKey(t)
	cfg := moocauth.DefaultConfig()
	cfg.PublicKey = pubPEM
	c := newTestClient(t, cfg)

	req := &moocauth.LoginRequest{
		Email:    "test@163.com",
		Password: "hunter2",
		Ticket:   "1472a505ffded57f707d55e6316d38c4",
	}
	r, err := c.LoginParams(req, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"un", "pw", "pd", "l", "d", "t", "pkid", "domains", "tk", "pwdKeyUp", "channel", "topURL", "rtid",
	}, r.Keys())

	pw, ok := r.Get("pw")
	require.True(t, ok)
	ct, err := base64.StdEncoding.DecodeString(pw.(string))
	require.NoError(t, err)
	assert.Len(t, ct, 128)
	plain, err := stdrsa.DecryptPKCS1v15(nil, priv, ct)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", string(plain))

	r.Set("pw", "PW")
	out, err := params.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"un":"test@163.com","pw":"PW","pd":"imooc","l":0,"d":10,"t":1733650000123,`+
		`"pkid":"cjJVGQM","domains":"","tk":"1472a505ffded57f707d55e6316d38c4","pwdKeyUp":0,`+
		`"channel":0,"topURL":"https://www.icourse163.org/","rtid":"`+testRtid+`"}`, out)

	_, err = c.LoginParams(&moocauth.LoginRequest{Email: "a"}, nil)
	assert.Error(t, err, "ticket is required")
}

func TestLoginParamsWithPower(t *testing.T) {
	c := newTestClient(t, nil)
	power := &moocauth.PowerParam{Puzzle: "p", SpendTime: 1051, RunTimes: 138509, SessionID: "sid", Args: `{"x":"1"}`}

	r, err := c.LoginParams(&moocauth.LoginRequest{Email: "e", Ticket: "tk", Rtid: "r"}, power)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"un", "pw", "pd", "l", "d", "t", "pkid", "domains", "tk", "pwdKeyUp", "pVParam", "channel", "topURL", "rtid",
	}, r.Keys())

	r.Set("pw", "PW")
	out, err := params.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, out, `"pwdKeyUp":0,"pVParam":{"puzzle":"p","spendTime":1051,"runTimes":138509,"sid":"sid","args":"{\"x\":\"1\"}"},"channel":0`)
	assert.Contains(t, out, `"rtid":"r"}`)
}

func TestNewPowerParam(t *testing.T) {
	proof := &vdf.Proof{
		SessionID:  "5f42667c-407d-4a16-8a94-25b45123bc60",
		Puzzle:     "woVm\r\nhw==",
		X:          "5595fb5a7676c62152c050af291b531b20",
		Iterations: 138509,
		Elapsed:    1051 * time.Millisecond,
	}
	proof.Signature = vdf.Hash32(proof.Query(), uint32(proof.Iterations))
	require.Equal(t, uint32(2553298163), proof.Signature)

	pp, err := moocauth.NewPowerParam(proof)
	require.NoError(t, err)
	assert.Equal(t, int64(1051), pp.SpendTime)
	assert.Equal(t, int64(138509), pp.RunTimes)
	assert.Equal(t, proof.SessionID, pp.SessionID)
	assert.Equal(t, proof.Puzzle, pp.Puzzle)
	assert.Equal(t, `{"x":"5595fb5a7676c62152c050af291b531b20","t":138509,"sign":2553298163}`, pp.Args)

	_, err = moocauth.NewPowerParam(nil)
	assert.True(t, errors.Is(err, vdf.ErrNotReady))
}

func TestPrepareLogin(t *testing.T) {
	priv, pubPEM := generateKey(t)
	cfg := &moocauth.Config{PublicKey: pubPEM, ChunkSize: 500}
	c := newTestClient(t, cfg,
		moocauth.WithProverOptions(vdf.WithClock(&stoppedClock{now: testNow})))

	ch := &vdf.Challenge{
		SessionID: "sid",
		Modulus:   "8ea24bb0bc226a6dbcfec5049ba24e2363",
		X:         "816ddd727f",
		T:         4000,
		MinTime:   1000 * time.Millisecond,
		MaxTime:   1050 * time.Millisecond,
		Puzzle:    "puzzle",
	}
	enc, err := c.PrepareLogin(context.Background(), &moocauth.LoginRequest{
		Email: "test@163.com", Password: "secret", Ticket: "tk",
	}, ch)
	require.NoError(t, err)

	plain, err := c.DecryptParams(enc)
	require.NoError(t, err)

	var got struct {
		Pw      string              `json:"pw"`
		PVParam moocauth.PowerParam `json:"pVParam"`
	}
	require.NoError(t, json.Unmarshal([]byte(plain), &got))

	ct, err := base64.StdEncoding.DecodeString(got.Pw)
	require.NoError(t, err)
	pw, err := stdrsa.DecryptPKCS1v15(nil, priv, ct)
	require.NoError(t, err)
	assert.Equal(t, "secret", string(pw))

	assert.Equal(t, int64(4000), got.PVParam.RunTimes)
	assert.Equal(t, int64(1000), got.PVParam.SpendTime)
	assert.Equal(t, "sid", got.PVParam.SessionID)

	var args struct {
		X    string `json:"x"`
		T    int64  `json:"t"`
		Sign uint32 `json:"sign"`
	}
	require.NoError(t, json.Unmarshal([]byte(got.PVParam.Args), &args))
	assert.Equal(t, "7511034896535ed54d9d35c4771b9463a1", args.X)
	assert.Equal(t, int64(4000), args.T)
	assert.Equal(t, vdf.Hash32(vdf.SignedQuery(4000, 1000, args.X), 4000), args.Sign)

	body, err := moocauth.RequestBody(enc)
	require.NoError(t, err)
	assert.Equal(t, `{"encParams":"`+enc+`"}`, string(body))
}

func TestPrepareLoginWithoutChallenge(t *testing.T) {
	c := newTestClient(t, nil)
	enc, err := c.PrepareLogin(context.Background(), &moocauth.LoginRequest{Email: "e", Ticket: "tk"}, nil)
	require.NoError(t, err)

	plain, err := c.DecryptParams(enc)
	require.NoError(t, err)
	assert.NotContains(t, plain, "pVParam")
}

func TestPrepareLoginCancelled(t *testing.T) {
	c := newTestClient(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := &vdf.Challenge{Modulus: "8ea24bb0bc226a6dbcfec5049ba24e2363", X: "816ddd727f", T: 200000}
	_, err := c.PrepareLogin(ctx, &moocauth.LoginRequest{Email: "e", Ticket: "tk"}, ch)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClassifyResponse(t *testing.T) {
	assert.NoError(t, moocauth.ClassifyResponse([]byte(`{"ret":200,"nextUrls":[]}`)))
	assert.NoError(t, moocauth.ClassifyResponse([]byte(`{"ret":"201","pVInfo":{"needCheck":false}}`)))

	err := moocauth.ClassifyResponse([]byte(`{"ret":805,"pVInfo":{"needCheck":true,"sid":"s","minTime":1000,"maxTime":1050,` +
		`"args":{"mod":"8ea24bb0bc226a6dbcfec5049ba24e2363","x":"816ddd727f","t":200000,"puzzle":"p"}}}`))
	var re *moocauth.ResponseError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, moocauth.RetPowerRequired, re.Ret)
	assert.True(t, re.NeedsPowerCheck())
	assert.True(t, moocauth.NeedsPowerCheck(err))
	require.NotNil(t, re.Challenge)
	assert.Equal(t, int64(200000), re.Challenge.T)
	assert.Equal(t, "moocauth: ret 805: power check required", err.Error())

	err = moocauth.ClassifyResponse([]byte(`{"ret":"806"}`))
	assert.True(t, moocauth.NeedsPowerCheck(err))

	err = moocauth.ClassifyResponse([]byte(`{"ret":"413","msg":"wrong password"}`))
	assert.False(t, moocauth.NeedsPowerCheck(err))
	assert.Equal(t, "moocauth: ret 413: wrong password", err.Error())

	for _, bad := range []string{`nope`, `{}`, `{"ret":"abc"}`} {
		err = moocauth.ClassifyResponse([]byte(bad))
		assert.True(t, errors.Is(err, moocauth.ErrMalformedResponse), bad)
	}
}

func TestNewClientErrors(t *testing.T) {
	_, err := moocauth.NewClient(&moocauth.Config{SM4Key: "00"})
	assert.Error(t, err)

	_, err = moocauth.NewClient(&moocauth.Config{PublicKey: "not a key"})
	assert.Error(t, err)

	c, err := moocauth.NewClient(nil, moocauth.WithLogger(utils.Discard()))
	require.NoError(t, err)
	assert.Equal(t, moocauth.DefaultSM4Key, c.Config().SM4Key)
	assert.Equal(t, 1024, c.PublicKey().N.BitLen())
}
