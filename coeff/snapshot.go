package coeff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

var (
	ErrSnapshotFormat   = errors.New("invalid coefficient snapshot")
	ErrSnapshotChecksum = errors.New("coefficient snapshot checksum mismatch")
)

// A snapshot is the magic, a version byte and the little endian xxhash64 of the encoded
// table, followed by the zstd compressed JSON table.
var snapshotMagic = []byte("RSVC")

const (
	snapshotVersion   = 1
	snapshotHeaderLen = 4 + 1 + 8
)

var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}
		return decoder
	},
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}
		return encoder
	},
}

// WriteSnapshot writes the table so it can be reloaded with ReadSnapshot without
// re-parsing the join rows
func WriteSnapshot(w io.Writer, table Table) error {
	data, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("unable to encode coefficient table, %w", err)
	}

	encoder := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)
	compressed := encoder.EncodeAll(data, nil)

	header := make([]byte, snapshotHeaderLen)
	copy(header, snapshotMagic)
	header[4] = snapshotVersion
	binary.LittleEndian.PutUint64(header[5:], xxhash.Sum64(data))

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err = w.Write(compressed)
	return err
}

// ReadSnapshot loads a table written by WriteSnapshot
func ReadSnapshot(r io.Reader) (Table, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(buf) < snapshotHeaderLen || !bytes.Equal(buf[:4], snapshotMagic) {
		return nil, ErrSnapshotFormat
	}
	if buf[4] != snapshotVersion {
		return nil, fmt.Errorf("version %d, %w", buf[4], ErrSnapshotFormat)
	}
	checksum := binary.LittleEndian.Uint64(buf[5:snapshotHeaderLen])

	decoder := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)
	data, err := decoder.DecodeAll(buf[snapshotHeaderLen:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w, %w", ErrSnapshotFormat, err)
	}
	if xxhash.Sum64(data) != checksum {
		return nil, ErrSnapshotChecksum
	}

	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("%w, %w", ErrSnapshotFormat, err)
	}
	return table, nil
}
