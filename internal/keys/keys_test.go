package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well known eosio development keypair.
const (
	devWIF       = "5KQwrPbwdL6PhXujxW37FSSQZ1JiwsST4cqQzDeyXtP79zkvFD3"
	devPublicEOS = "EOS6MRyAjQq8ud7hVNYcfnVPJqcVpscN5So8BhtHuGYqET5GDW5CV"
	devPublicFIO = "FIO6MRyAjQq8ud7hVNYcfnVPJqcVpscN5So8BhtHuGYqET5GDW5CV"
)

func TestPublicKeyFromWIF(t *testing.T) {
	pub, err := PublicKeyFromWIF(devWIF, LegacyPrefix)
	require.NoError(t, err)
	assert.Equal(t, devPublicEOS, pub)

	pub, err = PublicKeyFromWIF(devWIF, DefaultPrefix)
	require.NoError(t, err)
	assert.Equal(t, devPublicFIO, pub)
}

func TestWIFRoundTrip(t *testing.T) {
	raw, err := DecodeWIF(devWIF)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
	assert.Equal(t, devWIF, EncodeWIF(raw))
}

func TestDecodeWIFRejectsBadChecksum(t *testing.T) {
	// last character altered
	_, err := DecodeWIF("5KQwrPbwdL6PhXujxW37FSSQZ1JiwsST4cqQzDeyXtP79zkvFD4")
	assert.ErrorIs(t, err, ErrInvalidWIF)

	_, err = DecodeWIF("not-base58-0OIl")
	assert.ErrorIs(t, err, ErrInvalidWIF)
}

func TestDecodePublicKey(t *testing.T) {
	prefix, key, err := DecodePublicKey(devPublicFIO)
	require.NoError(t, err)
	assert.Equal(t, "FIO", prefix)
	assert.Len(t, key, 33)

	_, _, err = DecodePublicKey("FIO6MRyAjQq8ud7hVNYcfnVPJqcVpscN5So8BhtHuGYqET5GDW5CW")
	assert.ErrorIs(t, err, ErrInvalidPublicKey)

	_, _, err = DecodePublicKey("6MRyAjQq8ud7hVNYcfnVPJqcVpscN5So8BhtHuGYqET5GDW5CV")
	assert.ErrorIs(t, err, ErrInvalidPublicKey)

	_, _, err = DecodePublicKey("FIO")
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}

func TestWithPrefix(t *testing.T) {
	pub, err := WithPrefix(devPublicFIO, LegacyPrefix)
	require.NoError(t, err)
	assert.Equal(t, devPublicEOS, pub)

	pub, err = WithPrefix(devPublicEOS, LegacyPrefix)
	require.NoError(t, err)
	assert.Equal(t, devPublicEOS, pub)
}

func TestGenerate(t *testing.T) {
	g := NewGenerator("")
	assert.Equal(t, DefaultPrefix, g.Prefix)

	kp, err := g.Generate()
	require.NoError(t, err)
	assert.Regexp(t, "^FIO[1-9A-HJ-NP-Za-km-z]+$", kp.PublicKey)

	derived, err := PublicKeyFromWIF(kp.PrivateKey, DefaultPrefix)
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, derived)
}

func TestGenerateDistinct(t *testing.T) {
	g := NewGenerator(LegacyPrefix)
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		kp, err := g.Generate()
		require.NoError(t, err)
		assert.False(t, seen[kp.PrivateKey], "private key generated twice")
		seen[kp.PrivateKey] = true
	}
}
