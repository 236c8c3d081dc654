package bc

import (
	"encoding/binary"
	"math/rand"
	"testing"
)

// uniformRGBATile fills a tightly packed 4x4 RGBA8 tile (stride 16) with one
// color.
func uniformRGBATile(r, g, b, a byte) []byte {
	rgba := make([]byte, 64)
	for k := 0; k < 16; k++ {
		rgba[k*4+0] = r
		rgba[k*4+1] = g
		rgba[k*4+2] = b
		rgba[k*4+3] = a
	}
	return rgba
}

func TestCompressBlockBC1_AllZeroTile(t *testing.T) {
	var dst [8]byte
	CompressBlockBC1(uniformRGBATile(0, 0, 0, 0), 16, dst[:])

	for i, b := range dst {
		if b != 0 {
			t.Fatalf("byte %d = %#x, want zero block", i, b)
		}
	}
}

func TestCompressBlockBC1_AllWhiteTile(t *testing.T) {
	var dst [8]byte
	CompressBlockBC1(uniformRGBATile(255, 255, 255, 255), 16, dst[:])

	endpoints := binary.LittleEndian.Uint32(dst[0:4])
	indices := binary.LittleEndian.Uint32(dst[4:8])
	if endpoints != 0xFFFFFFFF {
		t.Fatalf("endpoint word = %#x, want 0xFFFFFFFF", endpoints)
	}
	if indices != 0 {
		t.Fatalf("index word = %#x, want all-zero indices", indices)
	}
}

func TestCompressBlockBC1_UniformTileCollapses(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for trial := 0; trial < 50; trial++ {
		r := byte(rng.Intn(256))
		g := byte(rng.Intn(256))
		b := byte(rng.Intn(256))

		var dst [8]byte
		CompressBlockBC1(uniformRGBATile(r, g, b, 255), 16, dst[:])

		if binary.LittleEndian.Uint32(dst[4:8]) != 0 {
			t.Fatalf("(%d,%d,%d): uniform tile produced non-zero indices", r, g, b)
		}

		decoded := decodeBC1(dst[:])
		want := [3]int32{int32(r), int32(g), int32(b)}
		for k := 0; k < 16; k++ {
			for p := 0; p < 3; p++ {
				if diff := decoded[k][p] - want[p]; diff < -5 || diff > 5 {
					t.Fatalf("(%d,%d,%d) texel %d channel %d: decoded %d", r, g, b, k, p, decoded[k][p])
				}
			}
		}
	}
}

func TestFixQBits_ThreeApplicationsRestoreInput(t *testing.T) {
	rng := rand.New(rand.NewSource(4))

	for trial := 0; trial < 1000; trial++ {
		v := rng.Uint32()
		if got := fixQBits(fixQBits(fixQBits(v))); got != v {
			t.Fatalf("fixQBits(fixQBits(fixQBits(%#x))) = %#x", v, got)
		}
	}
}

func TestCompressBlockBC3_AlphaSplitRoundTrips(t *testing.T) {
	rgba := make([]byte, 64)
	for k := 0; k < 16; k++ {
		if k%2 == 0 {
			rgba[k*4+3] = 0
		} else {
			rgba[k*4+3] = 255
		}
	}

	var dst [16]byte
	CompressBlockBC3(rgba, 16, dst[:])

	if dst[0] != 255 || dst[1] != 0 {
		t.Fatalf("alpha endpoints (%d, %d), want (255, 0)", dst[0], dst[1])
	}

	decoded := decodeBC3Alpha(dst[:8])
	for k := 0; k < 16; k++ {
		want := int32(rgba[k*4+3])
		if decoded[k] != want {
			t.Fatalf("texel %d: alpha %d, want %d", k, decoded[k], want)
		}
	}
}

func TestBC3Alpha_UniformAlphaExact(t *testing.T) {
	for _, a := range []byte{0, 1, 127, 200, 255} {
		rgba := uniformRGBATile(10, 20, 30, a)

		var dst [16]byte
		CompressBlockBC3(rgba, 16, dst[:])

		if dst[0] != a || dst[1] != a {
			t.Fatalf("alpha %d: endpoints (%d, %d), want both %d", a, dst[0], dst[1], a)
		}

		decoded := decodeBC3Alpha(dst[:8])
		for k := 0; k < 16; k++ {
			if decoded[k] != int32(a) {
				t.Fatalf("alpha %d texel %d: decoded %d", a, k, decoded[k])
			}
		}
	}
}

func TestCompressBlockBC4_RedRampWithinQuantStep(t *testing.T) {
	rgba := make([]byte, 64)
	for k := 0; k < 16; k++ {
		rgba[k*4] = byte(k * 17)
	}

	var dst [8]byte
	CompressBlockBC4(rgba, 16, dst[:])

	decoded := decodeBC3Alpha(dst[:])
	for k := 0; k < 16; k++ {
		want := int32(k * 17)
		diff := decoded[k] - want
		if diff < 0 {
			diff = -diff
		}
		// Half the 8-level quantization step over [0,255], plus integer
		// truncation in the decoder.
		if diff > 19 {
			t.Fatalf("texel %d: decoded %d, want %d +/- 19", k, decoded[k], want)
		}
	}
}

func TestCompressBlockBC2_RawAlphaNibbles(t *testing.T) {
	rgba := make([]byte, 64)
	for k := 0; k < 16; k++ {
		rgba[k*4+3] = byte(k * 17)
	}

	var dst [16]byte
	CompressBlockBC2(rgba, 16, dst[:])

	for k := 0; k < 16; k++ {
		nibble := (dst[k/2] >> (4 * uint(k%2))) & 15
		want := byte(float32(k*17) / 255.0 * 15.0)
		if nibble != want {
			t.Fatalf("texel %d: alpha nibble %d, want %d", k, nibble, want)
		}
	}
}

func TestCompressBlockBC5_ChannelsEncodeIndependently(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	rgba := make([]byte, 64)
	for k := 0; k < 16; k++ {
		v := byte(rng.Intn(256))
		rgba[k*4+0] = v
		rgba[k*4+1] = v
	}

	var dst [16]byte
	CompressBlockBC5(rgba, 16, dst[:])

	for i := 0; i < 8; i++ {
		if dst[i] != dst[8+i] {
			t.Fatalf("byte %d: red half %#x != green half %#x for identical channels", i, dst[i], dst[8+i])
		}
	}

	decodedR := decodeBC3Alpha(dst[:8])
	for k := 0; k < 16; k++ {
		want := int32(rgba[k*4])
		diff := decodedR[k] - want
		if diff < 0 {
			diff = -diff
		}
		if diff > 19 {
			t.Fatalf("texel %d: red %d, want %d +/- 19", k, decodedR[k], want)
		}
	}
}
