// Package walletid validates Solana wallet addresses before analysis.
package walletid

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ErrInvalidAddress is returned for anything that is not a well-formed
// wallet address. Analysis must not proceed on a bad subject account: trade
// direction would be silently mis-attributed.
var ErrInvalidAddress = errors.New("invalid wallet address")

// Validate checks that addr is a base58-encoded 32-byte ed25519 public key
// lying on the curve. System wallets are keypair accounts, so off-curve
// program-derived addresses are rejected as analysis subjects.
func Validate(addr string) error {
	if addr == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	decoded, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("%w: decoded to %d bytes, want 32", ErrInvalidAddress, len(decoded))
	}
	if !isOnCurve(decoded) {
		return fmt.Errorf("%w: not an ed25519 point", ErrInvalidAddress)
	}
	return nil
}

func isOnCurve(point []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

// Short returns a display form of an address: first 4 and last 4 runes.
func Short(addr string) string {
	if len(addr) <= 8 {
		return addr
	}
	return addr[:4] + ".." + addr[len(addr)-4:]
}
