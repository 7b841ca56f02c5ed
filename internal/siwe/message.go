// Package siwe parses Sign-In-With-Ethereum (EIP-4361) challenges and
// verifies the wallet signatures over them.
package siwe

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	siwego "github.com/spruceid/siwe-go"
)

var (
	ErrMalformedMessage = errors.New("malformed siwe message")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrMessageExpired   = errors.New("siwe message outside validity window")
	ErrDomainMismatch   = errors.New("siwe message domain mismatch")
)

// Message is a parsed challenge. Address and ChainID are taken from the signed
// text itself, never from a separately supplied field.
type Message struct {
	Raw     string
	Domain  string
	Address common.Address
	ChainID int
	Nonce   string

	parsed *siwego.Message
}

// Parse parses an EIP-4361 message.
func Parse(message string) (*Message, error) {
	parsed, err := siwego.ParseMessage(message)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return &Message{
		Raw:     message,
		Domain:  parsed.GetDomain(),
		Address: parsed.GetAddress(),
		ChainID: parsed.GetChainID(),
		Nonce:   parsed.GetNonce(),
		parsed:  parsed,
	}, nil
}

// NormalizedAddress is the lowercase hex form used as the store key.
func (m *Message) NormalizedAddress() string {
	return strings.ToLower(m.Address.Hex())
}

// ValidAt checks the expiration time and not-before bounds against when.
func (m *Message) ValidAt(when time.Time) error {
	ok, err := m.parsed.ValidAt(when)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMessageExpired, err)
	}
	if !ok {
		return ErrMessageExpired
	}
	return nil
}
