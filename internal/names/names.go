package names

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultAlphabet is the character set of generated account names.
	DefaultAlphabet = "12345abcdefghijklmnopqrstuvwxyz"
	// DefaultLength is the length of generated account names.
	DefaultLength = 12
	// MaxLength is the longest account name the chain accepts.
	MaxLength = 12
	// MaxFIONameLength is the longest FIO domain or address accepted for registration.
	MaxFIONameLength = 64

	maxAlphabetSize = 256
)

var (
	ErrEmptyName   = errors.New("account name is empty")
	ErrNameTooLong = errors.New("account name is too long")
	ErrInvalidName = errors.New("account name contains invalid characters")

	ErrInvalidAlphabet = errors.New("invalid name alphabet")
	ErrInvalidFIOName  = errors.New("invalid FIO name")
)

// Generator produces random account names. No uniqueness check is made against the chain.
// The zero value uses DefaultAlphabet.
type Generator struct {
	Alphabet string
}

// NewGenerator returns a generator over alphabet, or DefaultAlphabet when it is empty.
func NewGenerator(alphabet string) (*Generator, error) {
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	if err := ValidateAlphabet(alphabet); err != nil {
		return nil, err
	}
	return &Generator{Alphabet: alphabet}, nil
}

// ValidateAlphabet checks that every name drawn from alphabet is a valid account name.
func ValidateAlphabet(alphabet string) error {
	if alphabet == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAlphabet)
	}
	if len(alphabet) > maxAlphabetSize {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidAlphabet, maxAlphabetSize)
	}
	for _, c := range alphabet {
		// '.' is valid in names but not as the last character
		if c == '.' || !validChar(c) {
			return fmt.Errorf("%w: %q is not allowed", ErrInvalidAlphabet, c)
		}
	}
	return nil
}

func (g *Generator) Generate(length int) string {
	if length <= 0 {
		length = DefaultLength
	}

	alphabet := g.Alphabet
	if ValidateAlphabet(alphabet) != nil {
		alphabet = DefaultAlphabet
	}
	n := len(alphabet)
	// largest multiple of n that fits in a byte; bytes above it are rejected
	limit := 256 - 256%n

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		// crypto/rand.Read never returns an error
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%n])
			if len(out) == length {
				break
			}
		}
	}
	return string(out)
}

// Validate checks name against the account name grammar: 1-12 characters from a-z, 1-5 and '.',
// not ending with '.'.
func Validate(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > MaxLength {
		return fmt.Errorf("%w: %q has %d characters", ErrNameTooLong, name, len(name))
	}
	for _, c := range name {
		if !validChar(c) {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	if name[len(name)-1] == '.' {
		return fmt.Errorf("%w: %q ends with '.'", ErrInvalidName, name)
	}
	return nil
}

func validChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= '1' && c <= '5') || c == '.'
}

// ValidateFIOName checks a FIO domain ("amzn") or address ("name.amzn") before it is
// submitted for registration: lowercase letters, digits and '-' in at most two parts
// separated by '.'.
func ValidateFIOName(name string) error {
	if name == "" || len(name) > MaxFIONameLength {
		return fmt.Errorf("%w: %q must be 1-%d characters", ErrInvalidFIOName, name, MaxFIONameLength)
	}
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return fmt.Errorf("%w: %q has more than one '.'", ErrInvalidFIOName, name)
	}
	for _, part := range parts {
		if part == "" || part[0] == '-' || part[len(part)-1] == '-' {
			return fmt.Errorf("%w: %q", ErrInvalidFIOName, name)
		}
		for _, c := range part {
			if !(c >= 'a' && c <= 'z') && !(c >= '0' && c <= '9') && c != '-' {
				return fmt.Errorf("%w: %q", ErrInvalidFIOName, name)
			}
		}
	}
	return nil
}
