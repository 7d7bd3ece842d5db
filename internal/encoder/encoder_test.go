package encoder

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/faanross/stegocrypt/internal/carrier"
	"github.com/faanross/stegocrypt/internal/decoder"
	"github.com/faanross/stegocrypt/internal/lsb"
	"github.com/faanross/stegocrypt/internal/scrypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// "hello" seals into a 100 byte token: 16 + 4 + 100 + 4 = 124 payload bytes.
const helloPayloadBits = 124 * 8

func solidPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 0x80, G: 0x40, B: 0xC0, A: 0xFF})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func monoWAV(t *testing.T, frames int) []byte {
	t.Helper()
	wav := &carrier.WAV{
		WAVParams: carrier.WAVParams{
			AudioFormat:   1,
			Channels:      1,
			SampleRate:    8000,
			SampleWidth:   1,
			BitsPerSample: 8,
		},
		Frames: bytes.Repeat([]byte{0x80}, frames),
	}
	var buf bytes.Buffer
	require.NoError(t, wav.Encode(&buf))
	return buf.Bytes()
}

func TestHideInImage_RoundTrip(t *testing.T) {
	var out bytes.Buffer
	enc := NewSecureStegoEncoder([]byte("hello"), []byte("secret123"))
	require.NoError(t, enc.HideInImage(bytes.NewReader(solidPNG(t, 20, 20)), &out))
	assert.Equal(t, helloPayloadBits, enc.Stats(1200).BitsNeeded)

	result, err := decoder.RevealFromImage(bytes.NewReader(out.Bytes()), []byte("secret123"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(result.Message))
	assert.True(t, result.Authenticated)
}

func TestHideInImage_TenByTenIsTooSmall(t *testing.T) {
	var out bytes.Buffer
	enc := NewSecureStegoEncoder([]byte("hello"), []byte("secret123"))
	err := enc.HideInImage(bytes.NewReader(solidPNG(t, 10, 10)), &out)

	assert.ErrorIs(t, err, lsb.ErrCapacity)
	assert.Zero(t, out.Len())
	assert.Equal(t, 331, enc.RequiredPixels())
}

func TestHideInImage_OnlyLSBsChange(t *testing.T) {
	src := solidPNG(t, 24, 24)
	var out bytes.Buffer
	require.NoError(t, NewSecureStegoEncoder([]byte("hello"), []byte("pw")).HideInImage(bytes.NewReader(src), &out))

	before, err := carrier.LoadImage(bytes.NewReader(src))
	require.NoError(t, err)
	after, err := carrier.LoadImage(&out)
	require.NoError(t, err)

	changed := 0
	for i := 0; i < before.Len(); i++ {
		require.Equal(t, before.Get(i)&0xFE, after.Get(i)&0xFE, "slot %d", i)
		if i >= helloPayloadBits {
			require.Equal(t, before.Get(i), after.Get(i), "slot %d past the payload", i)
		}
		if before.Get(i) != after.Get(i) {
			changed++
		}
	}
	assert.Positive(t, changed)
}

func TestHideInImage_WrongPassword(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewSecureStegoEncoder([]byte("hello"), []byte("p1")).HideInImage(bytes.NewReader(solidPNG(t, 20, 20)), &out))

	result, err := decoder.RevealFromImage(bytes.NewReader(out.Bytes()), []byte("p2"))
	assert.ErrorIs(t, err, scrypto.ErrIntegrity)
	assert.Nil(t, result)
}

func TestHideInImage_NonDeterministic(t *testing.T) {
	src := solidPNG(t, 20, 20)

	var a, b bytes.Buffer
	require.NoError(t, NewSecureStegoEncoder([]byte("hello"), []byte("pw")).HideInImage(bytes.NewReader(src), &a))
	require.NoError(t, NewSecureStegoEncoder([]byte("hello"), []byte("pw")).HideInImage(bytes.NewReader(src), &b))
	assert.NotEqual(t, a.Bytes(), b.Bytes())

	for _, encoded := range [][]byte{a.Bytes(), b.Bytes()} {
		result, err := decoder.RevealFromImage(bytes.NewReader(encoded), []byte("pw"))
		require.NoError(t, err)
		assert.Equal(t, "hello", string(result.Message))
	}
}

func TestHideInImage_SaltContainingDelimiter(t *testing.T) {
	salt := []byte("0123####89abcdef")
	defer scrypto.SetRandReaderForTesting(io.MultiReader(bytes.NewReader(salt), rand.Reader))()

	var out bytes.Buffer
	enc := NewSecureStegoEncoder([]byte("collision"), []byte("pw"))
	require.NoError(t, enc.HideInImage(bytes.NewReader(solidPNG(t, 24, 24)), &out))
	assert.Equal(t, salt, enc.SecurePayload()[:16])

	result, err := decoder.RevealFromImage(&out, []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, "collision", string(result.Message))
}

func TestHideInImage_BadCarrier(t *testing.T) {
	var out bytes.Buffer
	err := NewSecureStegoEncoder([]byte("hello"), []byte("pw")).HideInImage(bytes.NewReader([]byte("RIFF....WAVE")), &out)
	assert.ErrorIs(t, err, carrier.ErrCarrierFormat)
	assert.Zero(t, out.Len())
}

func TestHideInAudio_RoundTrip(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewSecureStegoEncoder([]byte("hello"), []byte("secret123")).HideInAudio(bytes.NewReader(monoWAV(t, 2000)), &out))

	result, err := decoder.RevealFromAudio(&out, []byte("secret123"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(result.Message))
}

func TestHideInAudio_ExactCapacity(t *testing.T) {
	src := monoWAV(t, helloPayloadBits)
	var out bytes.Buffer
	enc := NewSecureStegoEncoder([]byte("hello"), []byte("pw"))
	require.NoError(t, enc.HideInAudio(bytes.NewReader(src), &out))
	assert.InDelta(t, 100.0, enc.Stats(helloPayloadBits).Utilization, 0.001)

	result, err := decoder.RevealFromAudio(&out, []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(result.Message))
}

func TestHideInAudio_OneBitOver(t *testing.T) {
	src := monoWAV(t, helloPayloadBits-1)
	original := bytes.Clone(src)

	var out bytes.Buffer
	err := NewSecureStegoEncoder([]byte("hello"), []byte("pw")).HideInAudio(bytes.NewReader(src), &out)
	require.ErrorIs(t, err, lsb.ErrCapacity)

	var capErr *lsb.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, helloPayloadBits, capErr.Needed)
	assert.Equal(t, helloPayloadBits-1, capErr.Available)

	assert.Zero(t, out.Len())
	assert.Equal(t, original, src)
}

func TestHideInAudio_Stereo16Bit(t *testing.T) {
	wav := &carrier.WAV{
		WAVParams: carrier.WAVParams{AudioFormat: 1, Channels: 2, SampleRate: 44100, SampleWidth: 2, BitsPerSample: 16},
		Frames:    make([]byte, 4*1024),
	}
	_, err := rand.Read(wav.Frames)
	require.NoError(t, err)
	var src bytes.Buffer
	require.NoError(t, wav.Encode(&src))

	var out bytes.Buffer
	require.NoError(t, NewSecureStegoEncoder([]byte("stereo ✓"), []byte("pw")).HideInAudio(&src, &out))

	result, err := decoder.RevealFromAudio(&out, []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, "stereo ✓", string(result.Message))
}

func TestHideInAudio_EmptyPassword(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewSecureStegoEncoder([]byte("hello"), nil).HideInAudio(bytes.NewReader(monoWAV(t, 1500)), &out))

	result, err := decoder.RevealFromAudio(&out, []byte{})
	require.NoError(t, err)
	assert.Equal(t, "hello", string(result.Message))
}

func TestConcurrentRoundTrips(t *testing.T) {
	const workers = 8

	coverPNG := solidPNG(t, 24, 24)
	coverWAV := monoWAV(t, 2000)
	revealed := make([]string, workers)

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			message := []byte(fmt.Sprintf("message from worker %d", i))
			password := []byte(fmt.Sprintf("password-%d", i))
			enc := NewSecureStegoEncoder(message, password)

			var out bytes.Buffer
			var result *decoder.ExtractedMessage
			var err error
			if i%2 == 0 {
				if err = enc.HideInImage(bytes.NewReader(coverPNG), &out); err != nil {
					return err
				}
				result, err = decoder.RevealFromImage(&out, password)
			} else {
				if err = enc.HideInAudio(bytes.NewReader(coverWAV), &out); err != nil {
					return err
				}
				result, err = decoder.RevealFromAudio(&out, password)
			}
			if err != nil {
				return fmt.Errorf("worker %d: %w", i, err)
			}
			revealed[i] = string(result.Message)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for i, msg := range revealed {
		assert.Equal(t, fmt.Sprintf("message from worker %d", i), msg)
	}
}
