package keys_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	stdrsa "crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amarnathcjd/moocauth/internal/keys"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moocPublicKey = `-----BEGIN PUBLIC KEY-----
MIGfMA0GCSqGSIb3DQEBAQUAA4GNADCBiQKBgQC5gsH+AA4XWONB5TDcUd+xCz7e
jOFHZKlcZDx+pF1i7Gsvi1vjyJoQhRtRSn950x498VUkx7rUxg1/ScBVfrRxQOZ8
xFBye3pjAzfb22+RCuYApSVpJ3OO3KsEuKExftz9oFBv3ejxPlYc5yq7YiBO8XlT
nQN0Sa4R4qhPO3I2MQIDAQAB
-----END PUBLIC KEY-----`

const moocModulus = "b982c1fe000e1758e341e530dc51dfb10b3ede8ce14764a95c643c7ea45d62ec" +
	"6b2f8b5be3c89a10851b514a7f79d31e3df15524c7bad4c60d7f49c0557eb471" +
	"40e67cc450727b7a630337dbdb6f910ae600a5256927738edcab04b8a1317edc" +
	"fda0506fdde8f13e561ce72abb62204ef179539d037449ae11e2a84f3b723631"

func TestParsePlatformKey(t *testing.T) {
	key, err := keys.ParsePublicKey([]byte(moocPublicKey))
	require.NoError(t, err)

	assert.Equal(t, moocModulus, key.N.Hex())
	assert.Equal(t, "10001", key.E.Hex())
	assert.Equal(t, 128, key.Size())

	fp, err := keys.Fingerprint(key)
	require.NoError(t, err)
	assert.Equal(t, "8f4f25b7bc1f0e1a", hex.EncodeToString(fp))
}

func TestParseEncodings(t *testing.T) {
	priv, err := stdrsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)

	spki, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	pkcs1 := x509.MarshalPKCS1PublicKey(&priv.PublicKey)

	tests := []struct {
		name  string
		input []byte
	}{
		{"pem spki", pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: spki})},
		{"pem pkcs1", pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: pkcs1})},
		{"der spki", spki},
		{"der pkcs1", pkcs1},
		{"base64 spki", []byte(base64.StdEncoding.EncodeToString(spki))},
		{"wrapped base64", []byte(wrap(base64.StdEncoding.EncodeToString(pkcs1), 64))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := keys.ParsePublicKey(tt.input)
			require.NoError(t, err)
			assert.Equal(t, priv.N.Text(16), key.N.Hex())
			assert.Equal(t, uint64(priv.E), key.E.Uint64())
		})
	}
}

func TestMarshalMatchesX509(t *testing.T) {
	priv, err := stdrsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	spki, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	key, err := keys.ParsePublicKey(spki)
	require.NoError(t, err)

	gotPKIX, err := keys.MarshalPKIX(key)
	require.NoError(t, err)
	assert.Equal(t, spki, gotPKIX)

	gotPKCS1, err := keys.MarshalPKCS1(key)
	require.NoError(t, err)
	assert.Equal(t, x509.MarshalPKCS1PublicKey(&priv.PublicKey), gotPKCS1)

	encoded, err := keys.EncodePEM(key)
	require.NoError(t, err)
	again, err := keys.ParsePublicKey([]byte(encoded))
	require.NoError(t, err)
	assert.Equal(t, 0, key.N.Cmp(again.N))
}

func TestFromModulusExponent(t *testing.T) {
	key, err := keys.FromModulusExponent(moocModulus, "010001")
	require.NoError(t, err)
	assert.Equal(t, "10001", key.E.Hex())

	_, err = keys.FromModulusExponent("xyz", "010001")
	assert.True(t, errors.Is(err, keys.ErrKeyFormat))
	_, err = keys.FromModulusExponent("10", "010001")
	assert.True(t, errors.Is(err, keys.ErrKeyFormat))
}

func TestParseRejectsGarbage(t *testing.T) {
	for name, input := range map[string][]byte{
		"empty":         nil,
		"not a key":     []byte("hello world"),
		"broken pem":    []byte("-----BEGIN PUBLIC KEY-----\n!!!\n-----END PUBLIC KEY-----"),
		"truncated der": {0x30, 0x81, 0x9f, 0x30},
		"trailing data": append(x509.MarshalPKCS1PublicKey(&stdrsa.PublicKey{N: mustModulus(t), E: 3}), 0),
		"not rsa":       mustECKeyDER(t),
	} {
		_, err := keys.ParsePublicKey(input)
		assert.True(t, errors.Is(err, keys.ErrKeyFormat), name)
	}
}

func TestParseTextStartingWithZero(t *testing.T) {
	for name, input := range map[string]string{
		"pem after note": "0 = production key\n" + moocPublicKey,
		"pem after zero": "0\n" + moocPublicKey + "\n",
	} {
		key, err := keys.ParsePublicKey([]byte(input))
		require.NoError(t, err, name)
		assert.Equal(t, moocModulus, key.N.Hex(), name)
	}
}

func TestReadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.pem")
	require.NoError(t, os.WriteFile(path, []byte(moocPublicKey+"\n"+moocPublicKey+"\n"), 0600))

	loaded, err := keys.ReadFromFile(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, moocModulus, loaded[1].N.Hex())

	empty := filepath.Join(t.TempDir(), "empty.pem")
	require.NoError(t, os.WriteFile(empty, []byte("nothing here"), 0600))
	_, err = keys.ReadFromFile(empty)
	assert.True(t, errors.Is(err, keys.ErrKeyFormat))

	_, err = keys.ReadFromFile(filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(t, err)
}

func wrap(s string, width int) string {
	var b strings.Builder
	for len(s) > width {
		b.WriteString(s[:width])
		b.WriteByte('\n')
		s = s[width:]
	}
	b.WriteString(s)
	return b.String()
}

func mustModulus(t *testing.T) *big.Int {
	t.Helper()
	n, ok := new(big.Int).SetString(moocModulus, 16)
	require.True(t, ok)
	return n
}

func mustECKeyDER(t *testing.T) []byte {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	return der
}
