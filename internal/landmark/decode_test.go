package landmark

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const sampleStream = `{"frame": 1, "landmarks": {"0": {"x": 0.5, "y": 0.2, "z": 0}}}

{"frame": 2, "landmarks": null}
{"frame": 3, "timestamp": 0.25, "landmarks": [{"x": 0.1, "y": 0.2, "z": 0.3}]}
`

func TestDecoder_Next(t *testing.T) {
	d := NewDecoder(strings.NewReader(sampleStream), 20)
	recs, err := ReadAll(context.Background(), d)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, 1, recs[0].Frame)
	assert.InDelta(t, 0.05, recs[0].Timestamp, 1e-12)
	assert.True(t, recs[0].Detected())

	assert.Equal(t, 2, recs[1].Frame)
	assert.False(t, recs[1].Detected())

	assert.Equal(t, 0.25, recs[2].Timestamp)
	assert.Equal(t, Point{X: 0.1, Y: 0.2, Z: 0.3}, recs[2].Landmarks[Nose])
}

func TestDecoder_Errors(t *testing.T) {
	d := NewDecoder(strings.NewReader("{\"frame\": 1}\n{oops}\n"), 30)
	_, err := d.Next(context.Background())
	require.NoError(t, err)

	_, err = d.Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	d = NewDecoder(strings.NewReader(`{"landmarks": null}`), 30)
	_, err = d.Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing frame index")
}

func TestDecoder_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDecoder(strings.NewReader(sampleStream), 30)
	_, err := d.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeFrameRate(t *testing.T) {
	assert.Equal(t, 29.0, NormalizeFrameRate(29.97))
	assert.Equal(t, MinFrameRate, NormalizeFrameRate(0))
	assert.Equal(t, MinFrameRate, NormalizeFrameRate(12))
	assert.Equal(t, 60.0, NormalizeFrameRate(60))
	assert.Equal(t, MinFrameRate, NormalizeFrameRate(math.Inf(1)))
	assert.Equal(t, MinFrameRate, NormalizeFrameRate(math.Inf(-1)))
	assert.Equal(t, MinFrameRate, NormalizeFrameRate(math.NaN()))
}

func TestDecoder_InfiniteFrameRateDerivesTimestamps(t *testing.T) {
	d := NewDecoder(strings.NewReader(`{"frame": 30, "landmarks": null}`+"\n"), math.Inf(1))

	rec, err := d.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, rec.Detected())
	assert.InDelta(t, 2.0, rec.Timestamp, 1e-9)
}

func TestOpen_Compressed(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "frames.jsonl")
	require.NoError(t, os.WriteFile(plain, []byte(sampleStream), 0o644))

	gzPath := filepath.Join(dir, "frames.jsonl.gz")
	f, err := os.Create(gzPath)
	require.NoError(t, err)
	gw := gzip.NewWriter(f)
	_, err = gw.Write([]byte(sampleStream))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, f.Close())

	zstPath := filepath.Join(dir, "frames.jsonl.zst")
	f, err = os.Create(zstPath)
	require.NoError(t, err)
	zw, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = zw.Write([]byte(sampleStream))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	for _, p := range []string{plain, gzPath, zstPath} {
		t.Run(filepath.Base(p), func(t *testing.T) {
			d, err := Open(p, 30)
			require.NoError(t, err)
			defer func() { require.NoError(t, d.Close()) }()

			recs, err := ReadAll(context.Background(), d)
			require.NoError(t, err)
			assert.Len(t, recs, 3)
		})
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.jsonl"), 30)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadAll_PropagatesSourceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := NewMockSource(ctrl)

	boom := errors.New("engine crashed")
	gomock.InOrder(
		src.EXPECT().Next(gomock.Any()).Return(Record{Frame: 1}, nil),
		src.EXPECT().Next(gomock.Any()).Return(Record{}, boom),
	)

	recs, err := ReadAll(context.Background(), src)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, recs, 1)
}

func TestReadAll_StopsAtEOF(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := NewMockSource(ctrl)

	gomock.InOrder(
		src.EXPECT().Next(gomock.Any()).Return(Record{Frame: 1}, nil),
		src.EXPECT().Next(gomock.Any()).Return(Record{Frame: 2}, nil),
		src.EXPECT().Next(gomock.Any()).Return(Record{}, io.EOF),
	)

	recs, err := ReadAll(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []Record{{Frame: 1}, {Frame: 2}}, recs)
}
