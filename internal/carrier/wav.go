package carrier

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	formatPCM        = 0x0001
	formatExtensible = 0xFFFE

	riffHeaderSize = 12
	chunkHeadSize  = 8
	pcmFmtSize     = 16
	extensibleSize = 40
)

// WAVParams are the format parameters of a linear-PCM WAV file.
type WAVParams struct {
	AudioFormat   uint16 // format tag as found in the input
	Channels      int
	SampleRate    int
	SampleWidth   int // bytes per sample
	BitsPerSample int

	// Extension holds the fmt chunk bytes past the 16-byte PCM core (cbSize
	// and the WAVE_FORMAT_EXTENSIBLE block), written back unchanged.
	Extension []byte
}

// FrameSize is the number of bytes in one frame (one sample per channel).
func (p WAVParams) FrameSize() int {
	return p.Channels * p.SampleWidth
}

// CompressionType mirrors the "NONE" compression reported for linear PCM.
func (p WAVParams) CompressionType() string {
	return "NONE"
}

// WAV is a parsed WAV file: its parameters and the raw frame bytes in file
// order.
type WAV struct {
	WAVParams
	Frames []byte
}

// FrameCount is the number of whole frames held.
func (w *WAV) FrameCount() int {
	return len(w.Frames) / w.FrameSize()
}

// ParseWAV reads a RIFF/WAVE container holding linear PCM. Chunks other
// than "fmt " and "data" are skipped. A data chunk that runs past the end
// of the input is truncated to the bytes present, and a trailing partial
// frame is dropped.
func ParseWAV(data []byte) (*WAV, error) {
	if len(data) < riffHeaderSize ||
		string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: not a RIFF/WAVE file", ErrCarrierFormat)
	}

	var (
		params  *WAVParams
		frames  []byte
		hasData bool
	)

	for pos := riffHeaderSize; pos+chunkHeadSize <= len(data); {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := data[pos+chunkHeadSize:]
		if size < len(body) {
			body = body[:size]
		}

		switch id {
		case "fmt ":
			p, err := parseFmt(body)
			if err != nil {
				return nil, err
			}
			params = p
		case "data":
			if params == nil {
				return nil, fmt.Errorf("%w: data chunk before fmt chunk", ErrCarrierFormat)
			}
			frames = body
			hasData = true
		}
		if hasData {
			break
		}

		pos += chunkHeadSize + size + size&1
	}

	if params == nil {
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrCarrierFormat)
	}
	if !hasData {
		return nil, fmt.Errorf("%w: missing data chunk", ErrCarrierFormat)
	}

	whole := len(frames) / params.FrameSize() * params.FrameSize()
	return &WAV{
		WAVParams: *params,
		Frames:    bytes.Clone(frames[:whole]),
	}, nil
}

func parseFmt(body []byte) (*WAVParams, error) {
	if len(body) < pcmFmtSize {
		return nil, fmt.Errorf("%w: fmt chunk too short", ErrCarrierFormat)
	}

	tag := binary.LittleEndian.Uint16(body[0:2])
	switch tag {
	case formatPCM:
	case formatExtensible:
		// The sub-format GUID starts at offset 24; its first two bytes
		// carry the underlying format tag.
		if len(body) < extensibleSize || binary.LittleEndian.Uint16(body[24:26]) != formatPCM {
			return nil, fmt.Errorf("%w: extensible format is not PCM", ErrCarrierFormat)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported audio format %#04x", ErrCarrierFormat, tag)
	}

	p := &WAVParams{
		AudioFormat:   tag,
		Channels:      int(binary.LittleEndian.Uint16(body[2:4])),
		SampleRate:    int(binary.LittleEndian.Uint32(body[4:8])),
		BitsPerSample: int(binary.LittleEndian.Uint16(body[14:16])),
	}
	p.SampleWidth = (p.BitsPerSample + 7) / 8
	if len(body) > pcmFmtSize {
		p.Extension = bytes.Clone(body[pcmFmtSize:])
	}

	if p.Channels == 0 || p.SampleWidth == 0 {
		return nil, fmt.Errorf("%w: bad format parameters (channels=%d, bits=%d)",
			ErrCarrierFormat, p.Channels, p.BitsPerSample)
	}
	return p, nil
}

// Encode writes a RIFF/WAVE container with the stored parameters and
// frames: RIFF header, the fmt chunk with its original format tag and
// extension, and the data chunk. Other input chunks are not carried over.
func (w *WAV) Encode(out io.Writer) error {
	tag := w.AudioFormat
	if tag == 0 {
		tag = formatPCM
	}
	fmtLen := pcmFmtSize + len(w.Extension)
	fmtPad := fmtLen & 1
	dataLen := len(w.Frames)
	pad := dataLen & 1
	riffLen := 4 + chunkHeadSize + fmtLen + fmtPad + chunkHeadSize + dataLen + pad

	buf := make([]byte, 0, chunkHeadSize+riffLen)
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(riffLen))
	buf = append(buf, "WAVE"...)

	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(fmtLen))
	buf = binary.LittleEndian.AppendUint16(buf, tag)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(w.Channels))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(w.SampleRate))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(w.SampleRate*w.FrameSize()))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(w.FrameSize()))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(w.BitsPerSample))
	buf = append(buf, w.Extension...)
	if fmtPad == 1 {
		buf = append(buf, 0)
	}

	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(dataLen))
	buf = append(buf, w.Frames...)
	if pad == 1 {
		buf = append(buf, 0)
	}

	if _, err := out.Write(buf); err != nil {
		return fmt.Errorf("WAV write failed: %w", err)
	}
	return nil
}

// AudioCarrier exposes a WAV file's frame bytes as slots, one per byte in
// file order.
type AudioCarrier struct {
	*WAV
}

// LoadAudio reads and parses a WAV stream.
func LoadAudio(r io.Reader) (*AudioCarrier, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading audio failed: %w", err)
	}

	wav, err := ParseWAV(data)
	if err != nil {
		return nil, err
	}
	return &AudioCarrier{WAV: wav}, nil
}

// SlotOffset maps slot i to its byte offset within the frame buffer.
func (c *AudioCarrier) SlotOffset(i int) int {
	return i
}

// Len is the capacity in bits: one per frame byte.
func (c *AudioCarrier) Len() int {
	return len(c.Frames)
}

func (c *AudioCarrier) Get(i int) byte {
	return c.Frames[c.SlotOffset(i)]
}

func (c *AudioCarrier) Set(i int, v byte) {
	c.Frames[c.SlotOffset(i)] = v
}
