package keystore

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/lidofinance/frostsig/frost"
)

var ErrInvalidGenericShare = errors.New("invalid generic share")

// GenericShareFilename returns the file name of the n-th share of a generic split.
func GenericShareFilename(n int) string {
	return fmt.Sprintf("g%d.json", n)
}

// GenericShareFile is one share of a byte-wise Shamir split of a 32-byte
// Ed25519 seed. Index is the share's evaluation point.
type GenericShareFile struct {
	Index    byte   `json:"index"`
	ShareHex string `json:"share_hex"`
}

func NewGenericShareFile(index byte, value []byte) *GenericShareFile {
	return &GenericShareFile{Index: index, ShareHex: hex.EncodeToString(value)}
}

// Value decodes the share bytes.
func (f *GenericShareFile) Value() ([]byte, error) {
	if f.Index == 0 {
		return nil, fmt.Errorf("%w: index must be nonzero", ErrInvalidGenericShare)
	}
	value, err := hex.DecodeString(f.ShareHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGenericShare, err)
	}
	if len(value) == 0 {
		return nil, fmt.Errorf("%w: share_hex is empty", ErrInvalidGenericShare)
	}
	return value, nil
}

// GenericShareFromFrost views a FROST share file as a generic share: its
// identifier becomes the index and its signing share the value. Combining
// such shares generically does not yield the group key.
func GenericShareFromFrost(share *ShareFile) (*GenericShareFile, error) {
	id := share.KeyPackage.Identifier
	if id > 255 {
		return nil, fmt.Errorf("%w: identifier %d does not fit an index byte", ErrInvalidGenericShare, id)
	}
	return NewGenericShareFile(byte(id), frost.EncodeScalar(share.KeyPackage.SigningShare)), nil
}

// LoadGenericShare reads a generic share file. A FROST share file is
// accepted too and converted with GenericShareFromFrost.
func LoadGenericShare(path string) (*GenericShareFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read share file %s: %w", path, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("invalid share file %s: %w", path, err)
	}
	if _, ok := fields["key_package"]; ok {
		share, err := decodeShare(data)
		if err != nil {
			return nil, fmt.Errorf("invalid share file %s: %w", path, err)
		}
		return GenericShareFromFrost(share)
	}

	var share GenericShareFile
	if err := json.Unmarshal(data, &share); err != nil {
		return nil, fmt.Errorf("invalid share file %s: %w", path, err)
	}
	if _, err := share.Value(); err != nil {
		return nil, fmt.Errorf("invalid share file %s: %w", path, err)
	}
	return &share, nil
}

func SaveGenericShare(path string, share *GenericShareFile) error {
	if _, err := share.Value(); err != nil {
		return err
	}
	return writeJSON(path, share, 0600)
}
