// Package token defines the identity of an on-chain token as consumed by the
// liquidity graph and cost model. An address is an opaque, case-insensitive
// string rather than an Ethereum-only common.Address, so chains with other
// address schemes share the same identity type.
package token

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ID is a token's identity: a chain and a normalized address. Two IDs are
// equal iff both fields match, which is exactly Go's struct equality.
type ID struct {
	ChainID uint64
	Address string
}

// NewID builds a token ID, normalizing address so that callers never need to
// worry about checksum casing or surrounding whitespace.
func NewID(chainID uint64, address string) ID {
	return ID{ChainID: chainID, Address: normalizeAddress(address)}
}

func (id ID) String() string {
	return fmt.Sprintf("%d:%s", id.ChainID, id.Address)
}

// normalizeAddress lowercases hex addresses through go-ethereum's checksum
// parser when the address looks EVM-shaped, and falls back to a plain
// lowercase trim otherwise so non-EVM chains (e.g. a future Solana adapter)
// still get case-insensitive comparison.
func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if common.IsHexAddress(addr) {
		return strings.ToLower(common.HexToAddress(addr).Hex())
	}
	return strings.ToLower(addr)
}

// Token is a display-level description of a token. Decimals is used only for
// external formatting; all internal amount arithmetic is done in native
// integer units.
type Token struct {
	ID       ID
	Symbol   string
	Decimals uint8
}

// Validate enforces the 0-36 decimals bound and a non-empty address.
func (t Token) Validate() error {
	if t.Decimals > 36 {
		return fmt.Errorf("%w: decimals %d out of range [0,36]", ErrInvalidToken, t.Decimals)
	}
	if t.ID.Address == "" {
		return fmt.Errorf("%w: empty address", ErrInvalidToken)
	}
	return nil
}
