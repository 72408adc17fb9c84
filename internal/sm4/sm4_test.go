package sm4_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/amarnathcjd/moocauth/internal/sm4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moocKey = "BC60B8B9E4FFEFFA219E5AD77F11F9E2"

func mustHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestStandardVector(t *testing.T) {
	key := mustHex(t, "0123456789abcdeffedcba9876543210")
	s, err := sm4.NewSchedule(key)
	require.NoError(t, err)

	assert.Equal(t, uint32(0xf12186f9), s.RoundKey(0))
	assert.Equal(t, uint32(0x9124a012), s.RoundKey(31))

	out := make([]byte, sm4.BlockSize)
	s.EncryptBlock(out, key)
	assert.Equal(t, "681edf34d206965e86b3e94f536e4246", hex.EncodeToString(out))

	back := make([]byte, sm4.BlockSize)
	s.DecryptBlock(back, out)
	assert.Equal(t, key, back)
}

func TestStandardVectorMillionRounds(t *testing.T) {
	if testing.Short() {
		t.Skip("one million block encryptions")
	}
	key := mustHex(t, "0123456789abcdeffedcba9876543210")
	block, err := sm4.NewCipher(key)
	require.NoError(t, err)

	buf := append([]byte(nil), key...)
	for i := 0; i < 1000000; i++ {
		block.Encrypt(buf, buf)
	}
	assert.Equal(t, "595298c7c6fd271f0402f804c33d3f66", hex.EncodeToString(buf))
}

func TestEncryptString(t *testing.T) {
	key, err := sm4.ParseKey(moocKey)
	require.NoError(t, err)

	tests := []struct {
		name      string
		plaintext string
		want      string
	}{
		{"empty input is one pad block", "", "7f29500b99e7dcd197b52ce10d7594da"},
		{"aligned input gains a block", "0123456789abcdef", "0dfc5f3b7d12a45079d0a5b9676a1c287f29500b99e7dcd197b52ce10d7594da"},
		{
			"ticket parameters",
			`{"un":"test@163.com","pkid":"cjJVGQM","pd":"imooc","rtid":"0123456789ABCDEFGHIJKLMNOPQRSTUV"}`,
			"2b51a0965e7e24e871b1b3f6a2d1702792d577ae3da3838dad5b9b74f8cd87d2" +
				"a17e4720f55be4108f9fe72a32e328d1ebda3eeb85b2f4b3003b3db6dab90620" +
				"192d323015d6adeb48ae28b89780b284412c847a2ce23c316fce0f298503334e",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sm4.EncryptString(tt.plaintext, key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			back, err := sm4.DecryptString(got, key)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, back)
		})
	}
}

func TestPadding(t *testing.T) {
	for n := 0; n <= 33; n++ {
		padded := sm4.Pad(bytes.Repeat([]byte{'a'}, n))
		assert.Zero(t, len(padded)%sm4.BlockSize)
		assert.Greater(t, len(padded), n)
		assert.LessOrEqual(t, len(padded), n+sm4.BlockSize)

		unpadded, err := sm4.Unpad(padded)
		require.NoError(t, err)
		assert.Len(t, unpadded, n)
	}
}

func TestInvalidPadding(t *testing.T) {
	key := mustHex(t, "0123456789abcdeffedcba9876543210")
	s, err := sm4.NewSchedule(key)
	require.NoError(t, err)

	for _, last := range []byte{0, 17, 0xff} {
		plain := make([]byte, sm4.BlockSize)
		plain[sm4.BlockSize-1] = last
		ct := make([]byte, sm4.BlockSize)
		s.EncryptBlock(ct, plain)

		_, err := s.Open(ct)
		assert.True(t, errors.Is(err, sm4.ErrInvalidPadding), "last byte %d", last)
	}

	plain := bytes.Repeat([]byte{4}, sm4.BlockSize)
	plain[sm4.BlockSize-2] = 3
	ct := make([]byte, sm4.BlockSize)
	s.EncryptBlock(ct, plain)
	_, err = s.Open(ct)
	assert.True(t, errors.Is(err, sm4.ErrInvalidPadding))
}

func TestInvalidInput(t *testing.T) {
	_, err := sm4.NewSchedule(make([]byte, 15))
	assert.True(t, errors.Is(err, sm4.ErrInvalidKeySize))

	_, err = sm4.ParseKey("BC60B8B9E4FFEFFA219E5AD77F11F9")
	assert.True(t, errors.Is(err, sm4.ErrInvalidKeySize))
	_, err = sm4.ParseKey("not hex at all, not hex at all!!")
	assert.True(t, errors.Is(err, sm4.ErrInvalidKeySize))

	key := mustHex(t, moocKey)
	_, err = sm4.Decrypt(key, make([]byte, 17))
	assert.True(t, errors.Is(err, sm4.ErrInvalidLength))
	_, err = sm4.Decrypt(key, nil)
	assert.True(t, errors.Is(err, sm4.ErrInvalidLength))
	_, err = sm4.DecryptString("zz", key)
	assert.True(t, errors.Is(err, sm4.ErrInvalidLength))
}

func FuzzRoundTrip(f *testing.F) {
	f.Add([]byte("hello"), []byte("0123456789abcdef"))
	f.Add([]byte{}, bytes.Repeat([]byte{0xff}, 16))
	f.Add(bytes.Repeat([]byte{0x10}, 48), mustHex(f, moocKey))

	f.Fuzz(func(t *testing.T, plaintext, key []byte) {
		if len(key) != sm4.KeySize {
			t.Skip()
		}
		ct, err := sm4.Encrypt(key, plaintext)
		require.NoError(t, err)
		require.Zero(t, len(ct)%sm4.BlockSize)

		pt, err := sm4.Decrypt(key, ct)
		require.NoError(t, err)
		require.True(t, bytes.Equal(plaintext, pt))
	})
}
