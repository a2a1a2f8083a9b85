// Package journal keeps an append-only record of produced signatures, one
// JSON object per line, so that every signature the group released can be
// audited later.
package journal

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/juju/fslock"

	"github.com/lidofinance/frostsig/frost"
)

type Entry struct {
	ID        string             `json:"id"`
	Offset    uint64             `json:"offset"`
	RunID     string             `json:"run_id"`
	Message   string             `json:"message"`
	Signature string             `json:"signature"`
	Signers   []frost.Identifier `json:"signers"`
	CreatedAt time.Time          `json:"created_at"`
}

func NewEntry(runID string, message, signature []byte, signers []frost.Identifier) Entry {
	return Entry{
		RunID:     runID,
		Message:   hex.EncodeToString(message),
		Signature: hex.EncodeToString(signature),
		Signers:   signers,
		CreatedAt: time.Now().UTC(),
	}
}

// Verify checks the entry's signature under verifyingKey.
func (e Entry) Verify(verifyingKey []byte) bool {
	msg, err := hex.DecodeString(e.Message)
	if err != nil {
		return false
	}
	sig, err := hex.DecodeString(e.Signature)
	if err != nil {
		return false
	}
	return frost.Verify(verifyingKey, msg, sig)
}

type Journal interface {
	Append(entries ...Entry) ([]Entry, error)
	Entries(offset uint64) ([]Entry, error)
	Close() error
}

var _ Journal = (*FileJournal)(nil)

type FileJournal struct {
	lockFile *fslock.Lock

	dataFile *os.File
}

func countLines(r io.Reader) uint64 {
	var count uint64
	fileScanner := bufio.NewScanner(r)

	for fileScanner.Scan() {
		count++
	}

	return count
}

// NewFileJournal opens (or creates) the journal at filename. Writers on the
// same machine are serialized through filename.lock.
func NewFileJournal(filename string) (*FileJournal, error) {
	var (
		fj  FileJournal
		err error
	)
	fj.lockFile = fslock.New(filename + ".lock")

	if fj.dataFile, err = os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644); err != nil {
		return nil, fmt.Errorf("failed to open a journal file: %w", err)
	}
	return &fj, nil
}

func (fj *FileJournal) append(e Entry) (Entry, error) {
	var (
		data []byte
		err  error
	)
	if err = fj.lockFile.Lock(); err != nil {
		return e, fmt.Errorf("failed to lock a journal: %w", err)
	}
	defer fj.lockFile.Unlock()

	e.ID = uuid.New().String()

	if _, err = fj.dataFile.Seek(0, io.SeekStart); err != nil { // otherwise countLines will return zero
		return e, fmt.Errorf("failed to seek to the start of a journal: %w", err)
	}
	e.Offset = countLines(fj.dataFile)

	if data, err = json.Marshal(e); err != nil {
		return e, fmt.Errorf("failed to marshal an entry: %w", err)
	}

	if _, err = fmt.Fprintln(fj.dataFile, string(data)); err != nil {
		return e, fmt.Errorf("failed to write an entry: %w", err)
	}
	return e, nil
}

// Append writes entries in order and returns them with ID and Offset set.
func (fj *FileJournal) Append(entries ...Entry) ([]Entry, error) {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		written, err := fj.append(e)
		if err != nil {
			return out[:i], err
		}
		out[i] = written
	}
	return out, nil
}

// Entries returns every entry starting at offset.
func (fj *FileJournal) Entries(offset uint64) ([]Entry, error) {
	var entries []Entry
	if _, err := fj.dataFile.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to the start of a journal: %w", err)
	}
	scanner := bufio.NewScanner(fj.dataFile)
	for scanner.Scan() {
		if offset > 0 {
			offset--
			continue
		}

		var e Entry
		row := scanner.Bytes()
		if err := json.Unmarshal(row, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal an entry %s: %w", string(row), err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read a journal: %w", err)
	}
	return entries, nil
}

func (fj *FileJournal) Close() error {
	return fj.dataFile.Close()
}
