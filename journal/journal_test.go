package journal_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lidofinance/frostsig/frost"
	"github.com/lidofinance/frostsig/journal"
	"github.com/lidofinance/frostsig/keystore"
)

func TestFileJournalAppendAndRead(t *testing.T) {
	req := require.New(t)

	keyPackages, pubKeys, err := frost.GenerateWithDealer(3, 2, nil)
	req.NoError(err)
	secret, err := frost.Reconstruct([]*frost.KeyPackage{keyPackages[1], keyPackages[2]})
	req.NoError(err)
	kp := keystore.NewKeypair(secret)

	path := filepath.Join(t.TempDir(), "signatures.log")
	j, err := journal.NewFileJournal(path)
	req.NoError(err)

	var entries []journal.Entry
	for _, msg := range [][]byte{[]byte("first"), []byte("second"), []byte("third")} {
		sig, err := frost.SignWithScalar(secret, msg, nil)
		req.NoError(err)
		entries = append(entries, journal.NewEntry("run", msg, sig, []frost.Identifier{1, 2}))
	}
	written, err := j.Append(entries...)
	req.NoError(err)
	req.Len(written, 3)
	for i, e := range written {
		req.Equal(uint64(i), e.Offset)
		req.NotEmpty(e.ID)
	}
	req.NoError(j.Close())

	j, err = journal.NewFileJournal(path)
	req.NoError(err)
	defer j.Close()

	all, err := j.Entries(0)
	req.NoError(err)
	req.Len(all, 3)
	for _, e := range all {
		req.True(e.Verify(pubKeys.VerifyingKeyBytes()))
		req.True(e.Verify(kp.PublicKey()))
	}
	req.Equal(written[2].ID, all[2].ID)

	tail, err := j.Entries(2)
	req.NoError(err)
	req.Len(tail, 1)

	more, err := j.Append(journal.NewEntry("run2", []byte("m"), make([]byte, 64), nil))
	req.NoError(err)
	req.Equal(uint64(3), more[0].Offset)
	req.False(more[0].Verify(pubKeys.VerifyingKeyBytes()))
}
