package bc

import "fmt"

// Variant selects a block compression format.
type Variant uint8

const (
	BC1 Variant = iota
	BC2
	BC3
	BC4
	BC5
	BC6H
	BC7
)

func (v Variant) String() string {
	switch v {
	case BC1:
		return "BC1"
	case BC2:
		return "BC2"
	case BC3:
		return "BC3"
	case BC4:
		return "BC4"
	case BC5:
		return "BC5"
	case BC6H:
		return "BC6H"
	case BC7:
		return "BC7"
	default:
		return fmt.Sprintf("Variant(%d)", uint8(v))
	}
}

func (v Variant) valid() bool {
	return v <= BC7
}

// BlockByteSize returns the number of bytes a single 4x4 block occupies in this format.
func (v Variant) BlockByteSize() int {
	switch v {
	case BC1, BC4:
		return 8
	default:
		return 16
	}
}

// BlocksByteSize returns the byte size required to hold the compressed blocks for an
// image of the given pixel dimensions. Width and height are rounded up to the nearest
// multiple of 4.
func (v Variant) BlocksByteSize(width, height int) int {
	blockWidth := (width + 3) / 4
	blockHeight := (height + 3) / 4
	return blockWidth * blockHeight * v.BlockByteSize()
}
