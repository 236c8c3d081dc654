package bc

import (
	"math"

	"github.com/mrjoshuak/go-openexr/half"
)

// blockCompressorBC6H carries the per-tile state of the BC6H mode search. The
// tile holds unsigned half-float bit patterns rescaled by 64/31, so the
// endpoint domain is [0, 65535] after setup. qbounds clamps quantized
// endpoints into the range the current mode's delta encoding can represent.
type blockCompressorBC6H struct {
	block   tile
	data    [5]uint32
	bestErr float32

	rgbBounds  [6]float32
	maxSpan    float32
	maxSpanIdx int

	mode     int
	epb      uint32
	qbounds  [8]int32
	settings *BC6HSettings
}

func newBlockCompressorBC6H(settings *BC6HSettings) blockCompressorBC6H {
	return blockCompressorBC6H{
		bestErr:  float32(math.Inf(1)),
		settings: settings,
	}
}

// srgbToLinear converts one 8-bit sRGB channel value to linear light.
func srgbToLinear(srgb uint8) float32 {
	v := float32(srgb) / 255.0
	if v <= 0.04045 {
		return v / 12.92
	}
	return float32(math.Pow(float64(v+0.055)/1.055, 2.4))
}

// loadBlockInterleavedRGBA8 converts 8-bit sRGB pixels to linear half-float bit
// patterns. Alpha is dropped; BC6H is RGB only.
func (c *blockCompressorBC6H) loadBlockInterleavedRGBA8(rgba []byte, stride int) {
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			offset := y*stride + x*4

			c.block[y*4+x] = float32(half.FromFloat32(srgbToLinear(rgba[offset])).Bits())
			c.block[16+y*4+x] = float32(half.FromFloat32(srgbToLinear(rgba[offset+1])).Bits())
			c.block[32+y*4+x] = float32(half.FromFloat32(srgbToLinear(rgba[offset+2])).Bits())
			c.block[48+y*4+x] = 0.0
		}
	}
}

// loadBlockInterleavedHalf loads a 4-channel half-float tile; stride is the row
// pitch in half elements.
func (c *blockCompressorBC6H) loadBlockInterleavedHalf(src []half.Half, stride int) {
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			offset := y*stride + x*4

			c.block[y*4+x] = float32(src[offset].Bits())
			c.block[16+y*4+x] = float32(src[offset+1].Bits())
			c.block[32+y*4+x] = float32(src[offset+2].Bits())
			c.block[48+y*4+x] = 0.0
		}
	}
}

func (c *blockCompressorBC6H) epQuantBC6HBounds(ep *[8]float32, bits uint32) {
	levels := int32(1) << bits

	for i := 0; i < 8; i++ {
		v := int32(ep[i]/(256.0*256.0-1.0)*float32(levels-1) + 0.5)
		c.qbounds[i] = clampI32(v, 0, levels-1)
	}
}

func (c *blockCompressorBC6H) computeQboundsCore(rgbSpan [3]float32) {
	var bounds [8]float32

	for p := 0; p < 3; p++ {
		middle := (c.rgbBounds[p] + c.rgbBounds[3+p]) / 2.0
		bounds[p] = middle - rgbSpan[p]/2.0
		bounds[4+p] = middle + rgbSpan[p]/2.0
	}

	c.epQuantBC6HBounds(&bounds, c.epb)
}

func (c *blockCompressorBC6H) computeQbounds(span float32) {
	c.computeQboundsCore([3]float32{span, span, span})
}

func (c *blockCompressorBC6H) computeQbounds2(span float32, maxSpanIdx int) {
	rgbSpan := [3]float32{span, span, span}
	if maxSpanIdx < 3 {
		rgbSpan[maxSpanIdx] *= 2.0
	}
	c.computeQboundsCore(rgbSpan)
}

func unpackToUF16(v uint32, bits uint32) uint32 {
	if bits >= 15 {
		return v
	}
	if v == 0 {
		return 0
	}
	if v == (1<<bits)-1 {
		return 0xFFFF
	}

	return (v*2 + 1) << (15 - bits)
}

func epQuantBC6H(qep []int32, ep []float32, bits uint32, pairs int) {
	levels := int32(1) << bits

	for i := 0; i < 8*pairs; i++ {
		v := int32(ep[i]/(256.0*256.0-1.0)*float32(levels-1) + 0.5)
		qep[i] = clampI32(v, 0, levels-1)
	}
}

func epDequantBC6H(ep []float32, qep []int32, bits uint32, pairs int) {
	for i := 0; i < 8*pairs; i++ {
		ep[i] = float32(unpackToUF16(uint32(qep[i]), bits))
	}
}

// epQuantDequantBC6H quantizes endpoints to the mode's bit width, clamps them
// into qbounds so the delta encoding cannot overflow, then dequantizes. The
// clamp happens after quantization, which keeps all-zero blocks exact.
func (c *blockCompressorBC6H) epQuantDequantBC6H(qep *[24]int32, ep *[24]float32, pairs int) {
	bits := c.epb
	epQuantBC6H(qep[:], ep[:], bits, pairs)

	for i := 0; i < 2*pairs; i++ {
		for p := 0; p < 3; p++ {
			qep[i*4+p] = clampI32(qep[i*4+p], c.qbounds[p], c.qbounds[4+p])
		}
	}

	epDequantBC6H(ep[:], qep[:], bits, pairs)
}

func (c *blockCompressorBC6H) bc6hCode2p(qep *[24]int32, qblock [2]uint32, partID int32, mode int) {
	const bits = 3

	flips := bc7CodeApplySwapMode01237(qep, qblock, 1, partID)

	c.data = [5]uint32{}
	pos := uint32(0)

	var packed [4]uint32
	bc6hPack(&packed, qep, mode)

	// Mode
	putBits(&c.data, &pos, 5, packed[0])

	// Endpoints
	putBits(&c.data, &pos, 30, packed[1])
	putBits(&c.data, &pos, 30, packed[2])
	putBits(&c.data, &pos, 12, packed[3])

	// Partition
	putBits(&c.data, &pos, 5, uint32(partID))

	bc7CodeQblock(&c.data, &pos, qblock, bits, flips)
	bc7CodeAdjustSkipMode01237(&c.data, 1, partID)
}

func (c *blockCompressorBC6H) bc6hCode1p(qep *[24]int32, qblock *[2]uint32, mode int) {
	bc7CodeApplySwapMode456(qep[:], 4, qblock, 4)

	c.data = [5]uint32{}
	pos := uint32(0)

	var packed [4]uint32
	bc6hPack(&packed, qep, mode)

	// Mode
	putBits(&c.data, &pos, 5, packed[0])

	// Endpoints
	putBits(&c.data, &pos, 30, packed[1])
	putBits(&c.data, &pos, 30, packed[2])

	bc7CodeQblock(&c.data, &pos, *qblock, 4, 0)
}

func (c *blockCompressorBC6H) bc6hEnc2p() {
	var fullStats [15]float32
	computeStatsMasked(&fullStats, &c.block, 0xFFFFFFFF, 3)

	var partList [32]int32
	for part := int32(0); part < 32; part++ {
		mask := getPatternMask(part, 0)
		bound12 := blockPCABoundSplit(&c.block, mask, fullStats, 3)
		partList[part] = part + int32(bound12)*64
	}

	partialSortList(partList[:], c.settings.FastSkipThreshold)
	c.bc6hEnc2pList(&partList, c.settings.FastSkipThreshold)
}

func (c *blockCompressorBC6H) bc6hEnc2pPartFast(qep *[24]int32, qblock *[2]uint32, partID int32) float32 {
	pattern := getPattern(partID)
	const bits = 3
	const pairs = 2
	const channels = 3

	var ep [24]float32
	for j := 0; j < pairs; j++ {
		mask := getPatternMask(partID, uint32(j))
		blockSegmentCore(ep[j*8:], &c.block, mask, channels)
	}

	c.epQuantDequantBC6H(qep, &ep, pairs)

	return blockQuant(qblock, &c.block, bits, ep[:], pattern, channels)
}

func (c *blockCompressorBC6H) bc6hEnc2pList(partList *[32]int32, partCount uint32) {
	if partCount == 0 {
		return
	}

	const bits = 3
	const pairs = 2
	const channels = 3

	var bestQep [24]int32
	var bestQblock [2]uint32
	bestPartID := int32(-1)
	bestErr := float32(math.Inf(1))

	for part := 0; part < int(partCount); part++ {
		partID := partList[part] & 31

		var qep [24]int32
		var qblock [2]uint32
		err := c.bc6hEnc2pPartFast(&qep, &qblock, partID)

		if err < bestErr {
			copy(bestQep[:8*pairs], qep[:8*pairs])
			bestQblock = qblock
			bestPartID = partID
			bestErr = err
		}
	}

	// Refine
	for i := uint32(0); i < c.settings.RefineIterations2p; i++ {
		var ep [24]float32
		for j := 0; j < pairs; j++ {
			mask := getPatternMask(bestPartID, uint32(j))
			optEndpoints(ep[j*8:], &c.block, bits, bestQblock, mask, channels)
		}

		var qep [24]int32
		var qblock [2]uint32
		c.epQuantDequantBC6H(&qep, &ep, pairs)

		pattern := getPattern(bestPartID)
		err := blockQuant(&qblock, &c.block, bits, ep[:], pattern, channels)

		if err < bestErr {
			copy(bestQep[:8*pairs], qep[:8*pairs])
			bestQblock = qblock
			bestErr = err
		}
	}

	if bestErr < c.bestErr {
		c.bestErr = bestErr
		c.bc6hCode2p(&bestQep, bestQblock, bestPartID, c.mode)
	}
}

func (c *blockCompressorBC6H) bc6hEnc1p() {
	var ep [24]float32
	blockSegmentCore(ep[:], &c.block, 0xFFFFFFFF, 3)

	var qep [24]int32
	c.epQuantDequantBC6H(&qep, &ep, 1)

	var qblock [2]uint32
	err := blockQuant(&qblock, &c.block, 4, ep[:], 0, 3)

	// Refine
	for i := uint32(0); i < c.settings.RefineIterations1p; i++ {
		optEndpoints(ep[:], &c.block, 4, qblock, 0xFFFFFFFF, 3)
		c.epQuantDequantBC6H(&qep, &ep, 1)
		err = blockQuant(&qblock, &c.block, 4, ep[:], 0, 3)
	}

	if err < c.bestErr {
		c.bestErr = err
		c.bc6hCode1p(&qep, &qblock, c.mode)
	}
}

// bc6hTestMode configures the encoder for one mode and, when enc is set, runs
// the encode. Modes whose representable span falls short of the block's span
// (scaled by margin) are skipped. The mode triples (2,3,4) and (6,7,8) differ
// only in which channel carries the extra endpoint precision; maxSpanIdx picks
// the member.
func (c *blockCompressorBC6H) bc6hTestMode(mode int, enc bool, margin float32) {
	modeBits := getBC6HModeBits(mode)
	span := getBC6HSpan(mode)

	if c.maxSpan*margin > span {
		return
	}

	if mode >= 10 {
		c.epb = modeBits
		c.mode = mode
		c.computeQbounds(span)
		if enc {
			c.bc6hEnc1p()
		}
	} else if mode <= 1 || mode == 5 || mode == 9 {
		c.epb = modeBits
		c.mode = mode
		c.computeQbounds(span)
		if enc {
			c.bc6hEnc2p()
		}
	} else {
		c.epb = modeBits
		c.mode = mode + c.maxSpanIdx
		c.computeQbounds2(span, c.maxSpanIdx)
		if enc {
			c.bc6hEnc2p()
		}
	}
}

// bc6hSetup rescales the tile by 64/31 and records the per-channel bounds and
// the widest channel span, which drives mode eligibility.
func (c *blockCompressorBC6H) bc6hSetup() {
	for p := 0; p < 3; p++ {
		c.rgbBounds[p] = 0xFFFF
		c.rgbBounds[3+p] = 0.0
	}

	for p := 0; p < 3; p++ {
		for k := 0; k < 16; k++ {
			value := (c.block[p*16+k] / 31.0) * 64.0
			c.block[p*16+k] = value
			c.rgbBounds[p] = float32(math.Min(float64(c.rgbBounds[p]), float64(value)))
			c.rgbBounds[3+p] = float32(math.Max(float64(c.rgbBounds[3+p]), float64(value)))
		}
	}

	c.maxSpan = 0.0
	c.maxSpanIdx = 0

	for p := 0; p < 3; p++ {
		span := c.rgbBounds[3+p] - c.rgbBounds[p]
		if span > c.maxSpan {
			c.maxSpanIdx = p
			c.maxSpan = span
		}
	}
}

func (c *blockCompressorBC6H) compressBC6HCore() {
	c.bc6hSetup()

	if c.settings.SlowMode {
		c.bc6hTestMode(0, true, 0.0)
		c.bc6hTestMode(1, true, 0.0)
		c.bc6hTestMode(2, true, 0.0)
		c.bc6hTestMode(5, true, 0.0)
		c.bc6hTestMode(6, true, 0.0)
		c.bc6hTestMode(9, true, 0.0)
		c.bc6hTestMode(10, true, 0.0)
		c.bc6hTestMode(11, true, 0.0)
		c.bc6hTestMode(12, true, 0.0)
		c.bc6hTestMode(13, true, 0.0)
	} else {
		if c.settings.FastSkipThreshold > 0 {
			c.bc6hTestMode(9, false, 0.0)

			if c.settings.FastMode {
				c.bc6hTestMode(1, false, 1.0)
			}

			c.bc6hTestMode(6, false, 1.0/1.2)
			c.bc6hTestMode(5, false, 1.0/1.2)
			c.bc6hTestMode(0, false, 1.0/1.2)
			c.bc6hTestMode(2, false, 1.0)
			c.bc6hEnc2p()

			if !c.settings.FastMode {
				c.bc6hTestMode(1, true, 0.0)
			}
		}

		c.bc6hTestMode(10, false, 0.0)
		c.bc6hTestMode(11, false, 1.0)
		c.bc6hTestMode(12, false, 1.0)
		c.bc6hTestMode(13, false, 1.0)
		c.bc6hEnc1p()
	}
}

// CompressBlockBC6H encodes one full 4x4 tile of interleaved RGBA half-float
// pixels into a 16-byte BC6H (UF16) block. src points at the tile's top-left
// pixel; stride is the source row pitch in half elements. Negative inputs are
// treated as their raw half bit patterns; callers should pre-clamp to the
// unsigned domain. dst must hold at least 16 bytes.
func CompressBlockBC6H(src []half.Half, stride int, dst []byte, settings *BC6HSettings) {
	c := newBlockCompressorBC6H(settings)
	c.loadBlockInterleavedHalf(src, stride)
	c.compressBC6HCore()
	storeBlockWords(dst, c.data[:4])
}
