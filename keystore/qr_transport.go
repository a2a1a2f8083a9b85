package keystore

import (
	"encoding/json"
	"fmt"

	"github.com/lidofinance/frostsig/qr"
)

// ExportShareQR writes a share file through p, typically as an animated QR
// code for moving it to an offline machine.
func ExportShareQR(p qr.Processor, path string, share *ShareFile) error {
	if err := share.validate(); err != nil {
		return err
	}
	data, err := json.Marshal(share)
	if err != nil {
		return fmt.Errorf("failed to marshal share: %w", err)
	}
	if err := p.WriteQR(path, data); err != nil {
		return fmt.Errorf("failed to write share QR: %w", err)
	}
	return nil
}

// ImportShareQR reads back a share written by ExportShareQR.
func ImportShareQR(p qr.Processor, path string) (*ShareFile, error) {
	data, err := p.ReadQR(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read share QR: %w", err)
	}
	return decodeShare(data)
}
