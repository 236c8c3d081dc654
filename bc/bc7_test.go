package bc

import (
	"math/rand"
	"testing"
)

func randomRGBATile(rng *rand.Rand) []byte {
	rgba := make([]byte, 64)
	rng.Read(rgba)
	return rgba
}

func TestCompressBlockBC7_UniformOpaqueUsesMode6(t *testing.T) {
	settings := BC7SettingsOpaqueUltraFast()

	var dst [16]byte
	CompressBlockBC7(uniformRGBATile(128, 128, 128, 255), 16, dst[:], &settings)

	// Mode 6 starts with six zero bits and a one.
	if dst[0]&0x7F != 0x40 {
		t.Fatalf("mode prefix byte = %#x, want mode 6", dst[0])
	}

	// Mode 6 shares one P bit per endpoint across all four channels. An even
	// 128 needs P bit 0, which caps the 8-bit alpha at 254.
	decoded := decodeBC7(dst[:])
	for k := 0; k < 16; k++ {
		want := [4]int32{128, 128, 128, 254}
		if decoded[k] != want {
			t.Fatalf("texel %d: decoded %v, want %v", k, decoded[k], want)
		}
	}
}

func TestCompressBlockBC7_UniformTileNearExactAtSlow(t *testing.T) {
	settings := BC7SettingsAlphaSlow()
	rng := rand.New(rand.NewSource(6))

	for trial := 0; trial < 10; trial++ {
		r := byte(rng.Intn(256))
		g := byte(rng.Intn(256))
		b := byte(rng.Intn(256))
		a := byte(rng.Intn(256))

		var dst [16]byte
		CompressBlockBC7(uniformRGBATile(r, g, b, a), 16, dst[:], &settings)

		decoded := decodeBC7(dst[:])
		want := [4]int32{int32(r), int32(g), int32(b), int32(a)}
		for k := 0; k < 16; k++ {
			for p := 0; p < 4; p++ {
				diff := decoded[k][p] - want[p]
				if diff < -1 || diff > 1 {
					t.Fatalf("(%d,%d,%d,%d) texel %d channel %d: decoded %d", r, g, b, a, k, p, decoded[k][p])
				}
			}
		}
	}
}

func TestBC7CodeApplySwap_AnchorIndexBelowHalf(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 500; trial++ {
		mode := []int{0, 1, 2, 3, 7}[rng.Intn(5)]
		pairs := 2
		if mode == 0 || mode == 2 {
			pairs = 3
		}
		bits := uint32(2)
		if mode == 0 || mode == 1 {
			bits = 3
		}
		levels := uint32(1) << bits

		partID := int32(rng.Intn(64))
		if pairs == 3 {
			partID += 64
		}

		var qep [24]int32
		var qblock [2]uint32
		for i := range qep {
			qep[i] = int32(rng.Intn(256))
		}
		for k := 0; k < 16; k++ {
			qblock[k/8] |= uint32(rng.Intn(int(levels))) << (4 * uint(k%8))
		}

		flips := bc7CodeApplySwapMode01237(&qep, qblock, mode, partID)

		skips := getSkips(partID)
		for j := 0; j < pairs; j++ {
			k0 := int(skips[j])
			q := (qblock[k0/8] >> (4 * uint(k0%8))) & 15
			if flips&(1<<uint(k0)) != 0 {
				q = (levels - 1) - q
			}
			if q >= levels/2 {
				t.Fatalf("mode %d part %d subset %d: effective anchor index %d >= %d", mode, partID, j, q, levels/2)
			}
		}
	}
}

// bc7BestErr runs the mode {1,3,7} search on a tile and reports the final
// internal block error.
func bc7BestErr(rgba []byte, settings *BC7Settings) float32 {
	c := newBlockCompressorBC7(settings)
	c.loadBlockInterleavedRGBA(rgba, 16)
	c.computeOpaqueErr()
	c.compressBlockBC7Core()
	return c.bestErr
}

func TestBC7_RefineIterationsNeverIncreaseError(t *testing.T) {
	rng := rand.New(rand.NewSource(8))

	base := BC7Settings{
		Channels:               4,
		ModeSelection:          [4]bool{false, true, false, false},
		FastSkipThresholdMode1: 8,
		FastSkipThresholdMode3: 8,
		FastSkipThresholdMode7: 8,
	}

	for trial := 0; trial < 20; trial++ {
		rgba := randomRGBATile(rng)

		var prev float32
		for i, iters := range []uint32{0, 2, 4} {
			settings := base
			for m := range settings.RefineIterations {
				settings.RefineIterations[m] = iters
			}
			err := bc7BestErr(rgba, &settings)
			if i > 0 && err > prev {
				t.Fatalf("trial %d: error rose from %v to %v at %d refine iterations", trial, prev, err, iters)
			}
			prev = err
		}
	}
}

func TestBC7_PartitionThresholdNeverIncreasesError(t *testing.T) {
	rng := rand.New(rand.NewSource(9))

	for trial := 0; trial < 20; trial++ {
		rgba := randomRGBATile(rng)

		var prev float32
		for i, threshold := range []uint32{4, 16, 64} {
			settings := BC7Settings{
				Channels:               4,
				ModeSelection:          [4]bool{false, true, false, false},
				FastSkipThresholdMode1: threshold,
				FastSkipThresholdMode3: threshold,
				FastSkipThresholdMode7: threshold,
			}
			err := bc7BestErr(rgba, &settings)
			if i > 0 && err > prev {
				t.Fatalf("trial %d: error rose from %v to %v at threshold %d", trial, prev, err, threshold)
			}
			prev = err
		}
	}
}

func TestCompressBlockBC7_FuzzDecodeWithinBound(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	settings := BC7SettingsAlphaSlow()

	for trial := 0; trial < 64; trial++ {
		rgba := randomRGBATile(rng)

		var dst [16]byte
		CompressBlockBC7(rgba, 16, dst[:], &settings)

		decoded := decodeBC7(dst[:])
		for k := 0; k < 16; k++ {
			for p := 0; p < 4; p++ {
				diff := decoded[k][p] - int32(rgba[k*4+p])
				if diff < 0 {
					diff = -diff
				}
				if diff > 32 {
					t.Fatalf("trial %d texel %d channel %d: source %d decoded %d", trial, k, p, rgba[k*4+p], decoded[k][p])
				}
			}
		}
	}
}

func TestCompressBlockBC7_FuzzOpaqueDecodeWithinBound(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	settings := BC7SettingsOpaqueSlow()

	for trial := 0; trial < 32; trial++ {
		rgba := randomRGBATile(rng)
		for k := 0; k < 16; k++ {
			rgba[k*4+3] = 255
		}

		var dst [16]byte
		CompressBlockBC7(rgba, 16, dst[:], &settings)

		decoded := decodeBC7(dst[:])
		for k := 0; k < 16; k++ {
			for p := 0; p < 3; p++ {
				diff := decoded[k][p] - int32(rgba[k*4+p])
				if diff < 0 {
					diff = -diff
				}
				if diff > 32 {
					t.Fatalf("trial %d texel %d channel %d: source %d decoded %d", trial, k, p, rgba[k*4+p], decoded[k][p])
				}
			}
			if decoded[k][3] < 254 {
				t.Fatalf("trial %d texel %d: alpha %d, want opaque", trial, k, decoded[k][3])
			}
		}
	}
}
