package keys

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"
)

const (
	// DefaultPrefix is the public key prefix used on the FIO chain.
	DefaultPrefix = "FIO"
	// LegacyPrefix is the prefix understood by eosio tooling.
	LegacyPrefix = "EOS"

	wifVersion        = 0x80
	checksumLength    = 4
	privateKeyLength  = 32
	compressedKeySize = 33
)

var (
	ErrInvalidWIF       = errors.New("invalid WIF private key")
	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrInvalidChecksum  = errors.New("checksum mismatch")
)

// Keypair holds a WIF encoded private key and its prefixed public key.
type Keypair struct {
	PrivateKey string `json:"private_key" yaml:"private_key"`
	PublicKey  string `json:"public_key" yaml:"public_key"`
}

// Generator creates fresh secp256k1 keypairs.
type Generator struct {
	Prefix string
}

func NewGenerator(prefix string) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Generator{Prefix: prefix}
}

func (g *Generator) Generate() (Keypair, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return Keypair{}, fmt.Errorf("failed to generate private key: %w", err)
	}
	defer priv.Zero()

	return Keypair{
		PrivateKey: EncodeWIF(priv.Serialize()),
		PublicKey:  EncodePublicKey(g.Prefix, priv.PubKey().SerializeCompressed()),
	}, nil
}

// EncodeWIF encodes a raw 32 byte private key in wallet import format.
func EncodeWIF(raw []byte) string {
	payload := make([]byte, 0, 1+len(raw)+checksumLength)
	payload = append(payload, wifVersion)
	payload = append(payload, raw...)
	sum := doubleSHA256(payload)
	payload = append(payload, sum[:checksumLength]...)
	return base58.Encode(payload)
}

// DecodeWIF returns the raw private key encoded in wif.
func DecodeWIF(wif string) ([]byte, error) {
	decoded, err := base58.Decode(wif)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWIF, err)
	}
	if len(decoded) != 1+privateKeyLength+checksumLength || decoded[0] != wifVersion {
		return nil, ErrInvalidWIF
	}

	payload := decoded[:len(decoded)-checksumLength]
	sum := doubleSHA256(payload)
	if !bytes.Equal(sum[:checksumLength], decoded[len(decoded)-checksumLength:]) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWIF, ErrInvalidChecksum)
	}
	return payload[1:], nil
}

// EncodePublicKey renders a compressed public key as prefix + base58(key | ripemd160(key)[:4]).
func EncodePublicKey(prefix string, compressed []byte) string {
	sum := ripemd160Sum(compressed)
	payload := make([]byte, 0, len(compressed)+checksumLength)
	payload = append(payload, compressed...)
	payload = append(payload, sum[:checksumLength]...)
	return prefix + base58.Encode(payload)
}

// DecodePublicKey splits a prefixed public key into its prefix and compressed key bytes.
// The prefix is the leading run of upper case letters.
func DecodePublicKey(pub string) (string, []byte, error) {
	i := 0
	for i < len(pub) && pub[i] >= 'A' && pub[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(pub) {
		return "", nil, ErrInvalidPublicKey
	}

	decoded, err := base58.Decode(pub[i:])
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(decoded) != compressedKeySize+checksumLength {
		return "", nil, ErrInvalidPublicKey
	}

	key := decoded[:compressedKeySize]
	sum := ripemd160Sum(key)
	if !bytes.Equal(sum[:checksumLength], decoded[compressedKeySize:]) {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidPublicKey, ErrInvalidChecksum)
	}
	if _, err := secp256k1.ParsePubKey(key); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return pub[:i], key, nil
}

// PublicKeyFromWIF derives the prefixed public key for a WIF private key.
func PublicKeyFromWIF(wif, prefix string) (string, error) {
	raw, err := DecodeWIF(wif)
	if err != nil {
		return "", err
	}
	priv := secp256k1.PrivKeyFromBytes(raw)
	defer priv.Zero()
	return EncodePublicKey(prefix, priv.PubKey().SerializeCompressed()), nil
}

// WithPrefix re-renders pub with a different prefix.
func WithPrefix(pub, prefix string) (string, error) {
	current, key, err := DecodePublicKey(pub)
	if err != nil {
		return "", err
	}
	if current == prefix {
		return pub, nil
	}
	return EncodePublicKey(prefix, key), nil
}

func doubleSHA256(b []byte) [32]byte {
	first := sha256.Sum256(b)
	return sha256.Sum256(first[:])
}

func ripemd160Sum(b []byte) []byte {
	h := ripemd160.New()
	h.Write(b)
	return h.Sum(nil)
}
