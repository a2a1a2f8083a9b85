package keystore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/juju/fslock"

	"github.com/lidofinance/frostsig/frost"
)

const lockFilename = ".dealer.lock"

// withDirLock creates dir and holds its dealer lock while fn runs, so that
// two dealers cannot interleave their output.
func withDirLock(dir string, fn func() error) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	lock := fslock.New(filepath.Join(dir, lockFilename))
	if err := lock.TryLock(); err != nil {
		return fmt.Errorf("failed to lock output dir %s: %w", dir, err)
	}
	defer lock.Unlock()

	return fn()
}

// WriteDealerOutput stores every share file and the group public key file in dir.
func WriteDealerOutput(dir string, keyPackages map[frost.Identifier]*frost.KeyPackage, pubKeys *frost.PublicKeyPackage) error {
	return withDirLock(dir, func() error {
		for _, id := range frost.SortedIdentifiers(keyPackages) {
			path := filepath.Join(dir, ShareFilename(id))
			if err := SaveShare(path, NewShareFile(keyPackages[id])); err != nil {
				return err
			}
		}
		return SaveGroupKey(filepath.Join(dir, GroupKeyFilename), pubKeys)
	})
}

// WriteGenericShares stores the shares of a generic split as g1.json,
// g2.json, ... in dir. It returns the written paths.
func WriteGenericShares(dir string, shares []*GenericShareFile) ([]string, error) {
	paths := make([]string, 0, len(shares))
	err := withDirLock(dir, func() error {
		for i, share := range shares {
			path := filepath.Join(dir, GenericShareFilename(i+1))
			if err := SaveGenericShare(path, share); err != nil {
				return err
			}
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
