package keystore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"lukechampine.com/frand"
)

const (
	sharesKey = "shares"
	saltSize  = 32
)

var ErrShareNotFound = errors.New("share not found")

type ShareStore interface {
	PutShare(name, password string, share *ShareFile) error
	LoadShare(name, password string) (*ShareFile, error)
	Close() error
}

type encryptedShare struct {
	Salt []byte `json:"salt"`
	Data []byte `json:"data"`
}

// LevelDBKeyStore keeps password-encrypted share files under a name.
type LevelDBKeyStore struct {
	keystoreDb *leveldb.DB
}

func NewLevelDBKeyStore(keystorePath string) (*LevelDBKeyStore, error) {
	db, err := leveldb.OpenFile(keystorePath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open keystore: %w", err)
	}

	keystore := &LevelDBKeyStore{
		keystoreDb: db,
	}

	if err := keystore.initJsonKey(sharesKey, map[string]*encryptedShare{}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init %s storage: %w", sharesKey, err)
	}

	return keystore, nil
}

func (s *LevelDBKeyStore) PutShare(name, password string, share *ShareFile) error {
	entries, err := s.readEntries()
	if err != nil {
		return err
	}

	plain, err := json.Marshal(share)
	if err != nil {
		return fmt.Errorf("failed to marshal share: %w", err)
	}

	salt := frand.Bytes(saltSize)
	data, err := encrypt([]byte(password), salt, plain)
	if err != nil {
		return fmt.Errorf("failed to encrypt share: %w", err)
	}
	entries[name] = &encryptedShare{Salt: salt, Data: data}

	entriesBz, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal shares: %w", err)
	}

	if err := s.keystoreDb.Put([]byte(sharesKey), entriesBz, nil); err != nil {
		return fmt.Errorf("failed to put shares: %w", err)
	}

	return nil
}

func (s *LevelDBKeyStore) LoadShare(name, password string) (*ShareFile, error) {
	entries, err := s.readEntries()
	if err != nil {
		return nil, err
	}

	entry, ok := entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrShareNotFound, name)
	}

	plain, err := decrypt([]byte(password), entry.Salt, entry.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt share %s: %w", name, err)
	}

	return decodeShare(plain)
}

func (s *LevelDBKeyStore) Close() error {
	return s.keystoreDb.Close()
}

func (s *LevelDBKeyStore) readEntries() (map[string]*encryptedShare, error) {
	bz, err := s.keystoreDb.Get([]byte(sharesKey), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore: %w", err)
	}

	var entries = map[string]*encryptedShare{}
	if err := json.Unmarshal(bz, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shares: %w", err)
	}

	return entries, nil
}

func (s *LevelDBKeyStore) initJsonKey(key string, data interface{}) error {
	if _, err := s.keystoreDb.Get([]byte(key), nil); err != nil {
		dataBz, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal storage structure: %w", err)
		}
		err = s.keystoreDb.Put([]byte(key), dataBz, nil)
		if err != nil {
			return fmt.Errorf("failed to init state: %w", err)
		}
	}

	return nil
}
