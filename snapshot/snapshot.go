// Package snapshot persists tracker contents as a self-describing blob.
//
// Layout:
//
//	[Magic: 4 bytes] [Version: 4 bytes]
//	[CodecName: 2-byte length + bytes]
//	[Compression: 2-byte length + bytes]
//	[PayloadLen: 8 bytes] [Payload] [Checksum: 4 bytes]
//
// The payload is the codec-encoded value, optionally compressed. Codec and
// compression names are stored in the header, so a snapshot written with any
// supported combination loads without out-of-band configuration. The
// checksum is CRC32 (IEEE) over the payload: fast, hardware-accelerated,
// and good enough to detect storage corruption (it is not tamper-proof).
package snapshot

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/towerkit/towertrack/blobstore"
	"github.com/towerkit/towertrack/codec"
)

const (
	// Magic identifies towertrack snapshot blobs (ASCII "TTK1").
	Magic = 0x54544B31
	// Version is the current snapshot format version.
	Version = 1

	// maxNameLen bounds the codec/compression name fields when reading
	// untrusted headers.
	maxNameLen = 64
)

var (
	ErrInvalidMagic       = errors.New("invalid snapshot magic")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrChecksumMismatch   = errors.New("snapshot checksum mismatch")
	ErrUnknownCodec       = errors.New("unknown snapshot codec")
	ErrUnknownCompression = errors.New("unknown snapshot compression")
)

// Compression selects how the snapshot payload is compressed.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
)

// Options configures snapshot writing. The zero value means the default
// codec and zstd compression.
type Options struct {
	Codec       codec.Codec
	Compression Compression
}

func (o Options) withDefaults() Options {
	if o.Codec == nil {
		o.Codec = codec.Default
	}
	if o.Compression == "" {
		o.Compression = CompressionZstd
	}
	return o
}

// Write encodes v and writes a snapshot to w.
func Write(w io.Writer, v any, opts Options) error {
	opts = opts.withDefaults()

	encoded, err := opts.Codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}

	payload, err := compress(encoded, opts.Compression)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)

	if err := binary.Write(bw, binary.LittleEndian, uint32(Magic)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(Version)); err != nil {
		return err
	}
	if err := writeName(bw, opts.Codec.Name()); err != nil {
		return err
	}
	if err := writeName(bw, string(opts.Compression)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(payload))); err != nil {
		return err
	}
	if _, err := bw.Write(payload); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, crc32.ChecksumIEEE(payload)); err != nil {
		return err
	}

	return bw.Flush()
}

// Read reads a snapshot from r and decodes it into v.
func Read(r io.Reader, v any) error {
	br := bufio.NewReader(r)

	var magic, version uint32
	if err := binary.Read(br, binary.LittleEndian, &magic); err != nil {
		return err
	}
	if magic != Magic {
		return ErrInvalidMagic
	}
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return err
	}
	if version != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	codecName, err := readName(br)
	if err != nil {
		return err
	}
	compName, err := readName(br)
	if err != nil {
		return err
	}

	c, ok := codec.ByName(codecName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCodec, codecName)
	}

	var payloadLen uint64
	if err := binary.Read(br, binary.LittleEndian, &payloadLen); err != nil {
		return err
	}
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(br, payload); err != nil {
		return err
	}

	var sum uint32
	if err := binary.Read(br, binary.LittleEndian, &sum); err != nil {
		return err
	}
	if crc32.ChecksumIEEE(payload) != sum {
		return ErrChecksumMismatch
	}

	encoded, err := decompress(payload, Compression(compName))
	if err != nil {
		return err
	}

	if err := c.Unmarshal(encoded, v); err != nil {
		return fmt.Errorf("snapshot: decode: %w", err)
	}

	return nil
}

// Save writes a snapshot of v into the blob store under name.
func Save(ctx context.Context, bs blobstore.BlobStore, name string, v any, opts Options) error {
	var buf bytes.Buffer
	if err := Write(&buf, v, opts); err != nil {
		return err
	}
	return bs.Put(ctx, name, buf.Bytes())
}

// Load reads the named snapshot from the blob store into v.
func Load(ctx context.Context, bs blobstore.BlobStore, name string, v any) error {
	rc, err := bs.Open(ctx, name)
	if err != nil {
		return err
	}
	defer rc.Close()
	return Read(rc, v)
}

func writeName(w io.Writer, name string) error {
	if err := binary.Write(w, binary.LittleEndian, uint16(len(name))); err != nil {
		return err
	}
	_, err := io.WriteString(w, name)
	return err
}

func readName(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n > maxNameLen {
		return "", fmt.Errorf("snapshot: header name too long: %d", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil

	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil

	case CompressionLZ4:
		var buf bytes.Buffer
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, c)
	}
}

func decompress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil

	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)

	case CompressionLZ4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, c)
	}
}
