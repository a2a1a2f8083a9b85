package qr

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	ErrNoChunks         = errors.New("no chunks decoded")
	ErrMissingChunk     = errors.New("missing chunk")
	ErrInconsistentData = errors.New("chunks disagree on total count")
)

type chunk struct {
	Data  []byte
	Index uint
	Total uint
}

// DataToChunks compresses data and divides it on chunks of at most chunkSize bytes
func DataToChunks(data []byte, chunkSize int) ([][]byte, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("invalid chunk size %d", chunkSize)
	}
	var buf bytes.Buffer

	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)

	if err != nil {
		return nil, fmt.Errorf("cannot create compression writer: %w", err)
	}

	_, err = zw.Write(data)

	if err != nil {
		return nil, fmt.Errorf("cannot write compressed data: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("cannot finalize compressed data: %w", err)
	}

	chunksCount := int(math.Ceil(float64(buf.Len()) / float64(chunkSize)))
	chunks := make([][]byte, 0, chunksCount)

	index := uint(0)
	for offset := 0; offset < buf.Len(); offset += chunkSize {
		offsetEnd := offset + chunkSize
		if offsetEnd > buf.Len() {
			offsetEnd = buf.Len()
		}
		chunkBz, err := encodeChunk(chunk{
			Data:  buf.Bytes()[offset:offsetEnd],
			Total: uint(chunksCount),
			Index: index,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode chunk: %w", err)
		}
		chunks = append(chunks, chunkBz)
		index++
	}
	return chunks, nil
}

// ChunksToData reassembles encoded chunks produced by DataToChunks.
func ChunksToData(encoded [][]byte) ([]byte, error) {
	chunks := make([]*chunk, 0, len(encoded))
	for _, bz := range encoded {
		c, err := decodeChunk(bz)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return joinChunks(chunks)
}

// joinChunks orders chunks by index, drops repeats and decompresses the result.
func joinChunks(chunks []*chunk) ([]byte, error) {
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}
	total := chunks[0].Total
	ordered := make([]*chunk, total)
	for _, c := range chunks {
		if c.Total != total {
			return nil, ErrInconsistentData
		}
		if c.Index >= total {
			return nil, fmt.Errorf("chunk index %d out of range %d", c.Index, total)
		}
		if ordered[c.Index] == nil {
			ordered[c.Index] = c
		}
	}
	var compressed []byte
	for i, c := range ordered {
		if c == nil {
			return nil, fmt.Errorf("%w: %d of %d", ErrMissingChunk, i, total)
		}
		compressed = append(compressed, c.Data...)
	}

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("cannot create decompression reader: %w", err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("cannot read decompressed data: %w", err)
	}
	return data, nil
}

func decodeChunk(data []byte) (*chunk, error) {
	var (
		c   chunk
		err error
	)
	if len(data) < 5 {
		return nil, errors.New("empty chunk data")
	}
	if err = json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.Total == 0 {
		return nil, errors.New("chunk with zero total")
	}
	return &c, nil
}

func encodeChunk(c chunk) ([]byte, error) {
	return json.Marshal(c)
}
