package frost

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/corestario/kyber"
)

var ErrInvalidIdentifier = errors.New("invalid identifier")

// Identifier is a participant's nonzero position in the signing group.
// On the wire it is the hex of its 32-byte little-endian scalar encoding.
type Identifier uint16

// Scalar returns the identifier as a field element.
func (id Identifier) Scalar() kyber.Scalar {
	return newScalar().SetInt64(int64(id))
}

// Serialize returns the 32-byte little-endian scalar encoding.
func (id Identifier) Serialize() []byte {
	bz := make([]byte, ScalarSize)
	binary.LittleEndian.PutUint16(bz, uint16(id))
	return bz
}

func (id Identifier) String() string {
	return hex.EncodeToString(id.Serialize())
}

func (id Identifier) MarshalText() ([]byte, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: zero", ErrInvalidIdentifier)
	}
	return []byte(id.String()), nil
}

func (id *Identifier) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentifier(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseIdentifier decodes the hex wire form of an identifier.
func ParseIdentifier(s string) (Identifier, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidIdentifier, err)
	}
	return DecodeIdentifier(raw)
}

// DecodeIdentifier reads the first two bytes as a little-endian u16. All
// remaining bytes must be zero and the value must be nonzero.
func DecodeIdentifier(raw []byte) (Identifier, error) {
	if len(raw) < 2 {
		return 0, fmt.Errorf("%w: need at least 2 bytes, got %d", ErrInvalidIdentifier, len(raw))
	}
	for _, b := range raw[2:] {
		if b != 0 {
			return 0, fmt.Errorf("%w: value exceeds 65535", ErrInvalidIdentifier)
		}
	}
	v := binary.LittleEndian.Uint16(raw[:2])
	if v == 0 {
		return 0, fmt.Errorf("%w: zero", ErrInvalidIdentifier)
	}
	return Identifier(v), nil
}
