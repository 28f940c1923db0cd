// Package address derives the address strings that address-mode key searchers
// consume from generated points: Bitcoin P2PKH and P2WPKH for the compressed
// key, and Ethereum addresses for the uncompressed key.
package address

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
)

// Type selects the address format.
type Type int

const (
	P2PKH    Type = iota // Bitcoin legacy (1...), compressed key
	P2WPKH               // Bitcoin native SegWit (bc1q...)
	Ethereum             // Ethereum (0x..., EIP-55 checksum)
)

// String returns the flag spelling of the address type.
func (t Type) String() string {
	switch t {
	case P2PKH:
		return "p2pkh"
	case P2WPKH:
		return "p2wpkh"
	case Ethereum:
		return "eth"
	default:
		return "unknown"
	}
}

// ParseType maps a flag value to a Type.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "p2pkh", "legacy", "btc":
		return P2PKH, nil
	case "p2wpkh", "segwit", "bech32":
		return P2WPKH, nil
	case "eth", "ethereum":
		return Ethereum, nil
	default:
		return P2PKH, fmt.Errorf("unknown address type %q (want p2pkh, p2wpkh or eth)", s)
	}
}

// Derive returns the address of pub in the requested format.
func Derive(pub *btcec.PublicKey, t Type) (string, error) {
	switch t {
	case P2PKH:
		return deriveLegacyAddress(pub), nil
	case P2WPKH:
		return deriveSegWitAddress(pub)
	case Ethereum:
		return deriveEthereumAddress(pub), nil
	default:
		return "", fmt.Errorf("unknown address type %d", t)
	}
}

// Hash160 computes RIPEMD160(SHA256(data)).
func Hash160(data []byte) []byte {
	sha := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(sha[:])
	return h.Sum(nil)
}

// Base58CheckEncode encodes data with a 4-byte double-SHA256 checksum.
func Base58CheckEncode(data []byte) string {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])

	full := make([]byte, 0, len(data)+4)
	full = append(full, data...)
	full = append(full, second[:4]...)
	return base58.Encode(full)
}

// deriveLegacyAddress creates a P2PKH address: Base58Check(0x00 + HASH160(pubkey)).
func deriveLegacyAddress(pub *btcec.PublicKey) string {
	data := make([]byte, 21)
	data[0] = 0x00 // mainnet P2PKH
	copy(data[1:], Hash160(pub.SerializeCompressed()))
	return Base58CheckEncode(data)
}

// deriveSegWitAddress creates a witness v0 P2WPKH address using Bech32.
func deriveSegWitAddress(pub *btcec.PublicKey) (string, error) {
	program, err := bech32.ConvertBits(Hash160(pub.SerializeCompressed()), 8, 5, true)
	if err != nil {
		return "", err
	}
	data := append([]byte{0x00}, program...)
	return bech32.Encode("bc", data)
}

// deriveEthereumAddress takes the last 20 bytes of Keccak256 over X||Y.
func deriveEthereumAddress(pub *btcec.PublicKey) string {
	hash := crypto.Keccak256(pub.SerializeUncompressed()[1:])
	return common.BytesToAddress(hash[12:]).Hex()
}
