package bc

import (
	"bytes"
	"context"
	"math/rand"
	"testing"

	"github.com/mrjoshuak/go-openexr/half"
)

func randomImageRGBA8(rng *rand.Rand, width, height int) []byte {
	pix := make([]byte, width*height*4)
	rng.Read(pix)
	return pix
}

func TestCompressRGBA8_WorkerCountDoesNotChangeOutput(t *testing.T) {
	rng := rand.New(rand.NewSource(15))

	const width, height = 24, 16
	pix := randomImageRGBA8(rng, width, height)

	bc7 := BC7SettingsOpaqueUltraFast()

	for _, variant := range []Variant{BC1, BC3, BC5, BC7} {
		var outputs [][]byte
		for _, workers := range []int{1, 4} {
			blocks := make([]byte, variant.BlocksByteSize(width, height))
			opts := &EncodeOptions{BC7: &bc7, Workers: workers}
			if err := CompressRGBA8(context.Background(), variant, pix, blocks, width, height, width*4, opts); err != nil {
				t.Fatalf("%s workers=%d: %v", variant, workers, err)
			}
			outputs = append(outputs, blocks)
		}

		if !bytes.Equal(outputs[0], outputs[1]) {
			t.Fatalf("%s: output depends on worker count", variant)
		}
	}
}

func TestCompressRGBA8_EdgePaddingClampsBorder(t *testing.T) {
	rng := rand.New(rand.NewSource(16))

	// 6x6: the right and bottom tiles are partial and must repeat their
	// border pixels.
	const width, height = 6, 6
	pix := randomImageRGBA8(rng, width, height)

	blocks := make([]byte, BC1.BlocksByteSize(width, height))
	if err := CompressRGBA8(context.Background(), BC1, pix, blocks, width, height, width*4, nil); err != nil {
		t.Fatalf("CompressRGBA8: %v", err)
	}

	// Rebuild the top-right tile by hand with clamped coordinates and encode
	// it directly.
	var tileBytes [64]byte
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			px := 4 + x
			if px > width-1 {
				px = width - 1
			}
			copy(tileBytes[(y*4+x)*4:(y*4+x)*4+4], pix[(y*width+px)*4:])
		}
	}
	var want [8]byte
	CompressBlockBC1(tileBytes[:], 16, want[:])

	if !bytes.Equal(blocks[8:16], want[:]) {
		t.Fatalf("top-right partial tile %x, want %x", blocks[8:16], want)
	}
}

func TestCompressRGBA8_Validation(t *testing.T) {
	pix := make([]byte, 16*16*4)
	blocks := make([]byte, BC1.BlocksByteSize(16, 16))

	if err := CompressRGBA8(context.Background(), Variant(9), pix, blocks, 16, 16, 64, nil); ErrorCodeOf(err) != ErrBadVariant {
		t.Fatalf("bad variant: %v", err)
	}
	if err := CompressRGBA8(context.Background(), BC1, pix, blocks, 0, 16, 64, nil); ErrorCodeOf(err) != ErrBadDimensions {
		t.Fatalf("zero width: %v", err)
	}
	if err := CompressRGBA8(context.Background(), BC1, pix, blocks, 16, 16, 32, nil); ErrorCodeOf(err) != ErrBadBuffer {
		t.Fatalf("short stride: %v", err)
	}
	if err := CompressRGBA8(context.Background(), BC1, pix[:100], blocks, 16, 16, 64, nil); ErrorCodeOf(err) != ErrBadBuffer {
		t.Fatalf("short pixels: %v", err)
	}
	if err := CompressRGBA8(context.Background(), BC7, pix, blocks, 16, 16, 64, nil); ErrorCodeOf(err) != ErrBadBuffer {
		t.Fatalf("short block buffer: %v", err)
	}
}

func TestCompressRGBA8_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pix := make([]byte, 16*16*4)
	blocks := make([]byte, BC1.BlocksByteSize(16, 16))
	if err := CompressRGBA8(ctx, BC1, pix, blocks, 16, 16, 64, nil); err == nil {
		t.Fatal("cancelled context: want an error")
	}
}

func TestCompressRGBA16_RequiresBC6H(t *testing.T) {
	pix := make([]half.Half, 4*4*4)
	blocks := make([]byte, BC7.BlocksByteSize(4, 4))

	err := CompressRGBA16(context.Background(), BC7, pix, blocks, 4, 4, 16, nil)
	if ErrorCodeOf(err) != ErrUnsupportedVariant {
		t.Fatalf("BC7 via CompressRGBA16: %v, want ErrUnsupportedVariant", err)
	}
}

func TestCompressRGBA16_MatchesPerBlockEncode(t *testing.T) {
	rng := rand.New(rand.NewSource(17))

	const width, height = 8, 8
	pix := make([]half.Half, width*height*4)
	for i := range pix {
		pix[i] = half.FromFloat32(rng.Float32() * 8)
	}

	settings := BC6HSettingsFast()
	blocks := make([]byte, BC6H.BlocksByteSize(width, height))
	opts := &EncodeOptions{BC6H: &settings}
	if err := CompressRGBA16(context.Background(), BC6H, pix, blocks, width, height, width*4, opts); err != nil {
		t.Fatalf("CompressRGBA16: %v", err)
	}

	var tileHalf [64]half.Half
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			copy(tileHalf[(y*4+x)*4:(y*4+x)*4+4], pix[((4+y)*width+4+x)*4:])
		}
	}
	var want [16]byte
	CompressBlockBC6H(tileHalf[:], 16, want[:], &settings)

	if !bytes.Equal(blocks[3*16:4*16], want[:]) {
		t.Fatalf("block (1,1) %x, want %x", blocks[3*16:4*16], want)
	}
}

func TestBlocksByteSize_RoundsUpToBlocks(t *testing.T) {
	if got := BC1.BlocksByteSize(5, 5); got != 4*8 {
		t.Fatalf("BC1 5x5 = %d, want 32", got)
	}
	if got := BC7.BlocksByteSize(16, 16); got != 16*16 {
		t.Fatalf("BC7 16x16 = %d, want 256", got)
	}
	if got := BC4.BlockByteSize(); got != 8 {
		t.Fatalf("BC4 block size = %d, want 8", got)
	}
	if got := BC6H.BlockByteSize(); got != 16 {
		t.Fatalf("BC6H block size = %d, want 16", got)
	}
}
