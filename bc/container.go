package bc

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zlib"
)

// The container is a minimal on-disk wrapper for compressed block payloads,
// used by the CLI and tests. It makes no claim of DDS or KTX compatibility.
var containerMagic = [4]byte{0x42, 0x43, 0x54, 0x58} // "BCTX"

// HeaderSize is the size in bytes of a container file header.
const HeaderSize = 24

const flagZlib = 1 << 0

// Header describes a compressed-block container: the format variant and the
// uncompressed image dimensions in pixels. The block footprint is always 4x4.
type Header struct {
	Variant Variant
	Width   uint32
	Height  uint32
}

func (h Header) validate() error {
	if !h.Variant.valid() {
		return newError(ErrBadVariant, "bc: invalid container variant")
	}
	if h.Width == 0 || h.Height == 0 {
		return newError(ErrBadDimensions, "bc: container header has zero image dimension")
	}
	return nil
}

// BlockCount returns the block-grid dimensions and total block count for this
// header.
func (h Header) BlockCount() (blocksX, blocksY, total int, err error) {
	if err := h.validate(); err != nil {
		return 0, 0, 0, err
	}

	blocksX = int(h.Width+3) / 4
	blocksY = int(h.Height+3) / 4
	return blocksX, blocksY, blocksX * blocksY, nil
}

// PayloadSize returns the byte size of the uncompressed block payload this
// header describes.
func (h Header) PayloadSize() (int, error) {
	if err := h.validate(); err != nil {
		return 0, err
	}
	return h.Variant.BlocksByteSize(int(h.Width), int(h.Height)), nil
}

// WriteContainer serializes a header and its block payload. blocks must be
// exactly the payload size implied by the header. When compressed is set, the
// payload is zlib-deflated.
func WriteContainer(h Header, blocks []byte, compressed bool) ([]byte, error) {
	payloadSize, err := h.PayloadSize()
	if err != nil {
		return nil, err
	}
	if len(blocks) != payloadSize {
		return nil, newError(ErrBadBuffer, "bc: block payload does not match header dimensions")
	}

	var flags byte
	payload := blocks
	if compressed {
		flags |= flagZlib

		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(blocks); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		payload = buf.Bytes()
	}

	out := make([]byte, HeaderSize+len(payload))
	copy(out[0:4], containerMagic[:])
	out[4] = byte(h.Variant)
	out[5] = flags
	binary.LittleEndian.PutUint32(out[8:12], h.Width)
	binary.LittleEndian.PutUint32(out[12:16], h.Height)
	binary.LittleEndian.PutUint32(out[16:20], uint32(len(payload)))
	copy(out[HeaderSize:], payload)

	return out, nil
}

// ParseContainer validates a serialized container and returns its header and
// uncompressed block payload.
func ParseContainer(data []byte) (Header, []byte, error) {
	if len(data) < HeaderSize {
		return Header{}, nil, newError(ErrBadContainer, "bc: container shorter than header")
	}
	if !bytes.Equal(data[0:4], containerMagic[:]) {
		return Header{}, nil, newError(ErrBadContainer, "bc: invalid container magic")
	}

	h := Header{
		Variant: Variant(data[4]),
		Width:   binary.LittleEndian.Uint32(data[8:12]),
		Height:  binary.LittleEndian.Uint32(data[12:16]),
	}
	payloadSize, err := h.PayloadSize()
	if err != nil {
		return Header{}, nil, err
	}

	flags := data[5]
	storedSize := int(binary.LittleEndian.Uint32(data[16:20]))
	if len(data)-HeaderSize < storedSize {
		return Header{}, nil, newError(ErrBadContainer, "bc: truncated container payload")
	}
	payload := data[HeaderSize : HeaderSize+storedSize]

	if flags&flagZlib != 0 {
		zr, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return Header{}, nil, newError(ErrBadContainer, "bc: corrupt compressed payload")
		}
		defer zr.Close()

		blocks := make([]byte, payloadSize)
		if _, err := io.ReadFull(zr, blocks); err != nil {
			return Header{}, nil, newError(ErrBadContainer, "bc: compressed payload shorter than header implies")
		}
		return h, blocks, nil
	}

	if storedSize != payloadSize {
		return Header{}, nil, newError(ErrBadContainer, "bc: payload size does not match header dimensions")
	}
	return h, payload, nil
}
