package crypto

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	// Hash input layout: signature (4) + address (20) + nonce (8) = 32
	SignatureLen = 4
	AddressLen   = 20
	NonceLen     = 8
	InputLen     = SignatureLen + AddressLen + NonceLen
	DigestLen    = 32

	// InputHexLen is the length of the hex text form of the hash input.
	InputHexLen = InputLen * 2

	// DefaultSignature is the dispatch index the input is built for.
	DefaultSignature byte = 0x03

	// Required values of the last two digest bytes.
	TailByte30 byte = 0xD0
	TailByte31 byte = 0x73
)

// MalformedHexError is returned when the assembled hash input is not
// exactly InputHexLen characters of valid hex.
type MalformedHexError struct {
	Text string
	Err  error
}

func (e *MalformedHexError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed hash input %q: %v", e.Text, e.Err)
	}
	return fmt.Sprintf("malformed hash input %q: got %d hex chars, want %d", e.Text, len(e.Text), InputHexLen)
}

func (e *MalformedHexError) Unwrap() error { return e.Err }

// InputText returns the hex text form of the hash input. The address is
// expected to be 40 hex characters without a 0x prefix; it is not validated.
func InputText(signature byte, address string, nonce uint64) string {
	return fmt.Sprintf("%08x%s%016x", signature, strings.ToLower(address), nonce)
}

// InputBuffer decodes the hex text form of the hash input into its 32 raw bytes.
func InputBuffer(signature byte, address string, nonce uint64) ([]byte, error) {
	text := InputText(signature, address, nonce)
	if len(text) != InputHexLen {
		return nil, &MalformedHexError{Text: text}
	}
	buf, err := hex.DecodeString(text)
	if err != nil {
		return nil, &MalformedHexError{Text: text, Err: err}
	}
	return buf, nil
}

// Assemble builds the hash input for (signature, address, nonce) and returns
// its keccak256 digest.
func Assemble(signature byte, address string, nonce uint64) ([DigestLen]byte, error) {
	var digest [DigestLen]byte
	buf, err := InputBuffer(signature, address, nonce)
	if err != nil {
		return digest, err
	}
	copy(digest[:], Keccak256(buf))
	return digest, nil
}

// DecodeAddress decodes 40 hex characters (no prefix, any case) into raw address bytes.
func DecodeAddress(address string) ([AddressLen]byte, error) {
	var out [AddressLen]byte
	if len(address) != AddressLen*2 {
		return out, fmt.Errorf("invalid address length: got %d hex chars, want %d", len(address), AddressLen*2)
	}
	if _, err := hex.Decode(out[:], []byte(address)); err != nil {
		return out, fmt.Errorf("invalid address hex: %w", err)
	}
	return out, nil
}

// PutInput writes the raw hash input into buf. It is the allocation-free
// equivalent of InputBuffer for an already decoded address.
func PutInput(buf *[InputLen]byte, signature byte, address [AddressLen]byte, nonce uint64) {
	binary.BigEndian.PutUint32(buf[:SignatureLen], uint32(signature))
	copy(buf[SignatureLen:SignatureLen+AddressLen], address[:])
	PutNonce(buf, nonce)
}

// PutNonce overwrites only the nonce field of buf.
func PutNonce(buf *[InputLen]byte, nonce uint64) {
	binary.BigEndian.PutUint64(buf[SignatureLen+AddressLen:], nonce)
}

// DigestInto hashes input with the reused hasher and writes the digest into out.
func DigestInto(hasher hash.Hash, input []byte, out *[DigestLen]byte) {
	hasher.Reset()
	hasher.Write(input)
	hasher.Sum(out[:0])
}

// NewHasher returns a legacy keccak256 hasher.
func NewHasher() hash.Hash {
	return sha3.NewLegacyKeccak256()
}

// Keccak256 calculates the keccak256 hash of the input bytes
func Keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(data)
	return h.Sum(nil)
}
