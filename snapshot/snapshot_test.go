package snapshot

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/towerkit/towertrack/blobstore"
	"github.com/towerkit/towertrack/codec"
)

type payload struct {
	Badges []string `json:"badges"`
	Count  int      `json:"count"`
}

func TestSnapshot_RoundTrip(t *testing.T) {
	in := payload{Badges: []string{"ToA", "CoB"}, Count: 2}

	for _, comp := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		t.Run(string(comp), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, in, Options{Compression: comp}))

			var out payload
			require.NoError(t, Read(&buf, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestSnapshot_SelfDescribingCodec(t *testing.T) {
	in := payload{Badges: []string{"ToA"}, Count: 1}

	// Written with the stdlib codec, read without any configuration.
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, in, Options{Codec: codec.JSON{}, Compression: CompressionNone}))

	var out payload
	require.NoError(t, Read(&buf, &out))
	assert.Equal(t, in, out)
}

func TestSnapshot_CorruptionDetected(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, payload{Count: 7}, Options{Compression: CompressionNone}))

	data := buf.Bytes()
	// Flip a byte in the payload region (after the fixed+name headers).
	data[len(data)-6] ^= 0xff

	var out payload
	err := Read(bytes.NewReader(data), &out)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestSnapshot_InvalidMagic(t *testing.T) {
	var out payload
	err := Read(bytes.NewReader([]byte{0xde, 0xad, 0xbe, 0xef, 0, 0, 0, 0}), &out)
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestSnapshot_UnknownCompression(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, payload{}, Options{Compression: "brotli"})
	assert.ErrorIs(t, err, ErrUnknownCompression)
}

func TestSnapshot_SaveLoadBlobStore(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	in := payload{Badges: []string{"ToA", "ToB"}, Count: 2}

	require.NoError(t, Save(ctx, bs, "snapshots/latest.snap", in, Options{}))

	var out payload
	require.NoError(t, Load(ctx, bs, "snapshots/latest.snap", &out))
	assert.Equal(t, in, out)

	err := Load(ctx, bs, "snapshots/missing.snap", &out)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
