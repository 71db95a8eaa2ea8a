// Package snapshot stores worlds as a zstd stream holding a JSON header line
// followed by a gob body.
package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Version is the format written by Write.
const Version = 1

var ErrUnsupportedVersion = errors.New("snapshot: unsupported version")

type Header struct {
	Version int    `json:"version"`
	Seed    int64  `json:"seed"`
	Size    [3]int `json:"size_chunks"`
	Chunks  int    `json:"chunks"`
}

// ChunkV1 is one chunk grid, Voxels in x, y, z order.
type ChunkV1 struct {
	X, Y, Z int
	Voxels  []byte
}

type SnapshotV1 struct {
	Header Header
	Chunks []ChunkV1
}

// Write replaces path atomically.
func Write(path string, snap SnapshotV1) error {
	snap.Header.Version = Version
	snap.Header.Chunks = len(snap.Chunks)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp, snap); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func encode(w io.Writer, snap SnapshotV1) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		enc.Close()
		return err
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Read loads a snapshot written by Write.
func Read(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	err := open(path, func(h Header, br *bufio.Reader) error {
		if err := gob.NewDecoder(br).Decode(&snap); err != nil {
			return fmt.Errorf("gob decode: %w", err)
		}
		return nil
	})
	return snap, err
}

// ReadHeader returns only the header line.
func ReadHeader(path string) (Header, error) {
	var hdr Header
	err := open(path, func(h Header, _ *bufio.Reader) error {
		hdr = h
		return nil
	})
	return hdr, err
}

func open(path string, body func(Header, *bufio.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	var h Header
	if err := json.Unmarshal(line, &h); err != nil {
		return fmt.Errorf("parse header: %w", err)
	}
	if h.Version != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	return body(h, br)
}
