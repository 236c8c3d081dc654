package bc

import (
	"encoding/binary"
	"math"
)

// blockCompressorBC15 carries the tile buffer shared by the BC1 color core and
// the BC3 alpha core. BC4 and BC5 load single channels into the alpha slot so
// both reuse the alpha core unchanged.
type blockCompressorBC15 struct {
	block tile
}

func (c *blockCompressorBC15) loadBlockInterleavedRGBA(rgba []byte, stride int) {
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			offset := y*stride + x*4
			c.block[y*4+x] = float32(rgba[offset])
			c.block[16+y*4+x] = float32(rgba[offset+1])
			c.block[32+y*4+x] = float32(rgba[offset+2])
			c.block[48+y*4+x] = float32(rgba[offset+3])
		}
	}
}

func (c *blockCompressorBC15) loadBlockR8(rgba []byte, stride int) {
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c.block[48+y*4+x] = float32(rgba[y*stride+x*4])
		}
	}
}

func (c *blockCompressorBC15) loadBlockG8(rgba []byte, stride int) {
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c.block[48+y*4+x] = float32(rgba[y*stride+x*4+1])
		}
	}
}

// loadBlockAlpha4 packs the tile's alpha plane as 16 raw 4-bit values, the BC2
// alpha layout.
func loadBlockAlpha4(rgba []byte, stride int) [2]uint32 {
	var alphaBits [2]uint32

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			alpha := float32(rgba[y*stride+x*4+3]) / 255.0

			alpha4 := uint32(alpha * 15.0)
			bitPosition := y*16 + x*4

			if bitPosition < 32 {
				alphaBits[0] |= alpha4 << bitPosition
			} else {
				alphaBits[1] |= alpha4 << (bitPosition - 32)
			}
		}
	}

	return alphaBits
}

func (c *blockCompressorBC15) computeCovarDC(covar *[6]float32, dc *[3]float32) {
	for p := 0; p < 3; p++ {
		var acc float32
		for k := 0; k < 16; k++ {
			acc += c.block[k+p*16]
		}
		dc[p] = acc / 16.0
	}

	var covar0, covar1, covar2, covar3, covar4, covar5 float32
	for k := 0; k < 16; k++ {
		rgb0 := c.block[k] - dc[0]
		rgb1 := c.block[k+16] - dc[1]
		rgb2 := c.block[k+32] - dc[2]

		covar0 += rgb0 * rgb0
		covar1 += rgb0 * rgb1
		covar2 += rgb0 * rgb2
		covar3 += rgb1 * rgb1
		covar4 += rgb1 * rgb2
		covar5 += rgb2 * rgb2
	}

	covar[0] = covar0
	covar[1] = covar1
	covar[2] = covar2
	covar[3] = covar3
	covar[4] = covar4
	covar[5] = covar5
}

func ssymv3x3(result *[3]float32, covar *[6]float32, aVec *[3]float32) {
	result[0] = covar[0]*aVec[0] + covar[1]*aVec[1] + covar[2]*aVec[2]
	result[1] = covar[1]*aVec[0] + covar[3]*aVec[1] + covar[4]*aVec[2]
	result[2] = covar[2]*aVec[0] + covar[4]*aVec[1] + covar[5]*aVec[2]
}

func computeAxis3(axis *[3]float32, covar *[6]float32, powerIterations int) {
	aVec := [3]float32{1, 1, 1}

	for i := 0; i < powerIterations; i++ {
		ssymv3x3(axis, covar, &aVec)
		aVec = *axis

		if i%2 == 1 {
			var normSq float32
			for _, v := range axis {
				normSq += v * v
			}

			rnorm := float32(1.0 / math.Sqrt(float64(normSq)))
			for p := range aVec {
				aVec[p] *= rnorm
			}
		}
	}

	*axis = aVec
}

func (c *blockCompressorBC15) pickEndpoints(c0, c1 *[3]float32, axis, dc *[3]float32) {
	minDot := float32(256.0 * 256.0)
	maxDot := float32(0.0)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			var dot float32
			for p := 0; p < 3; p++ {
				dot += (c.block[p*16+y*4+x] - dc[p]) * axis[p]
			}

			minDot = float32(math.Min(float64(minDot), float64(dot)))
			maxDot = float32(math.Max(float64(maxDot), float64(dot)))
		}
	}

	if maxDot-minDot < 1.0 {
		minDot -= 0.5
		maxDot += 0.5
	}

	var normSq float32
	for _, v := range axis {
		normSq += v * v
	}

	rnormSq := 1.0 / normSq
	for p := 0; p < 3; p++ {
		c0[p] = clampF32(dc[p]+minDot*rnormSq*axis[p], 0, 255)
		c1[p] = clampF32(dc[p]+maxDot*rnormSq*axis[p], 0, 255)
	}
}

func decRGB565(c *[3]float32, p int32) {
	b5 := p & 31
	g6 := (p >> 5) & 63
	r5 := (p >> 11) & 31

	c[0] = float32((r5 << 3) + (r5 >> 2))
	c[1] = float32((g6 << 2) + (g6 >> 4))
	c[2] = float32((b5 << 3) + (b5 >> 2))
}

func encRGB565(c *[3]float32) int32 {
	r := int32(c[0])
	g := int32(c[1])
	b := int32(c[2])

	r5 := (r*31 + 128 + ((r * 31) >> 8)) >> 8
	g6 := (g*63 + 128 + ((g * 63) >> 8)) >> 8
	b5 := (b*31 + 128 + ((b * 31) >> 8)) >> 8

	return (r5 << 11) + (g6 << 5) + b5
}

// fastQuant projects every texel onto the 4-point line between the decoded
// endpoints and packs the resulting 2-bit indices in natural order.
func (c *blockCompressorBC15) fastQuant(p0, p1 int32) uint32 {
	var c0, c1 [3]float32
	decRGB565(&c0, p0)
	decRGB565(&c1, p1)

	var dir [3]float32
	for p := 0; p < 3; p++ {
		dir[p] = c1[p] - c0[p]
	}

	var sqNorm float32
	for _, v := range dir {
		sqNorm += v * v
	}

	rsqNorm := 1.0 / sqNorm
	for p := range dir {
		dir[p] *= rsqNorm * 3.0
	}

	bias := float32(0.5)
	for p := 0; p < 3; p++ {
		bias -= c0[p] * dir[p]
	}

	var bits uint32
	scaler := uint32(1)
	for k := 0; k < 16; k++ {
		var dot float32
		for p, v := range dir {
			dot += c.block[k+p*16] * v
		}

		q := clampI32(int32(dot+bias), 0, 3)
		bits += uint32(q) * scaler
		scaler *= 4
	}

	return bits
}

func (c *blockCompressorBC15) bc1Refine(pe *[2]int32, bits uint32, dc *[3]float32) {
	var c0, c1 [3]float32

	if (bits ^ (bits * 4)) < 4 {
		// All indices equal: collapse endpoints to the mean.
		c0 = *dc
		c1 = *dc
	} else {
		var atb1 [3]float32
		var sumQ, sumQQ float32
		shiftedBits := bits

		for k := 0; k < 16; k++ {
			q := float32(shiftedBits & 3)
			shiftedBits >>= 2

			x := 3.0 - q

			sumQ += q
			sumQQ += q * q

			for p := range atb1 {
				atb1[p] += x * c.block[k+p*16]
			}
		}

		var sum, atb2 [3]float32
		for p := 0; p < 3; p++ {
			sum[p] = dc[p] * 16.0
			atb2[p] = 3.0*sum[p] - atb1[p]
		}

		cxx := 16.0*9.0 - 2.0*3.0*sumQ + sumQQ
		cyy := sumQQ
		cxy := 3.0*sumQ - sumQQ
		scale := 3.0 * (1.0 / (cxx*cyy - cxy*cxy))

		for p := 0; p < 3; p++ {
			c0[p] = clampF32((atb1[p]*cyy-atb2[p]*cxy)*scale, 0, 255)
			c1[p] = clampF32((atb2[p]*cxx-atb1[p]*cxy)*scale, 0, 255)
		}
	}

	pe[0] = encRGB565(&c0)
	pe[1] = encRGB565(&c1)
}

// fixQBits reorders 2-bit indices from natural order (0,1,2,3) into BC1 table
// order (0,2,3,1). The mapping is a 3-cycle on codes 1, 2 and 3, so it is not
// its own inverse; applying it three times returns the input.
func fixQBits(qbits uint32) uint32 {
	const mask01b = 0x55555555
	const mask10b = 0xAAAAAAAA

	qbits0 := qbits & mask01b
	qbits1 := qbits & mask10b

	return (qbits1 >> 1) + (qbits1 ^ (qbits0 << 1))
}

func (c *blockCompressorBC15) compressBlockBC1Core() [2]uint32 {
	const powerIterations = 4
	const refineIterations = 1

	var covar [6]float32
	var dc [3]float32
	c.computeCovarDC(&covar, &dc)

	const eps = float32(0.001)
	covar[0] += eps
	covar[3] += eps
	covar[5] += eps

	var axis [3]float32
	computeAxis3(&axis, &covar, powerIterations)

	var c0, c1 [3]float32
	c.pickEndpoints(&c0, &c1, &axis, &dc)

	var p [2]int32
	p[0] = encRGB565(&c0)
	p[1] = encRGB565(&c1)
	if p[0] < p[1] {
		p[0], p[1] = p[1], p[0]
	}

	var data [2]uint32
	data[0] = (uint32(p[1]) << 16) | uint32(p[0])
	data[1] = c.fastQuant(p[0], p[1])

	for i := 0; i < refineIterations; i++ {
		c.bc1Refine(&p, data[1], &dc)
		if p[0] < p[1] {
			p[0], p[1] = p[1], p[0]
		}
		data[0] = (uint32(p[1]) << 16) | uint32(p[0])
		data[1] = c.fastQuant(p[0], p[1])
	}

	data[1] = fixQBits(data[1])

	return data
}

// compressBlockBC3Alpha encodes the alpha plane as min/max endpoints plus 16
// 3-bit indices, remapped into the BC3 index order with endpoints at 0 and 1.
func (c *blockCompressorBC15) compressBlockBC3Alpha() [2]uint32 {
	ep := [2]float32{255.0, 0.0}

	for k := 0; k < 16; k++ {
		ep[0] = float32(math.Min(float64(ep[0]), float64(c.block[48+k])))
		ep[1] = float32(math.Max(float64(ep[1]), float64(c.block[48+k])))
	}

	if ep[0] == ep[1] {
		ep[1] = ep[0] + 0.1
	}

	var qblock [2]uint32
	scale := 7.0 / (ep[1] - ep[0])

	for k := 0; k < 16; k++ {
		v := c.block[48+k]
		proj := (v-ep[0])*scale + 0.5

		q := clampI32(int32(proj), 0, 7)
		q = 7 - q

		if q > 0 {
			q++
		}
		if q == 8 {
			q = 1
		}

		qblock[k/8] |= uint32(q) << ((k % 8) * 3)
	}

	var data [2]uint32
	data[0] = (uint32(clampF32(ep[0], 0, 255)) << 8) | uint32(clampF32(ep[1], 0, 255))
	data[0] |= qblock[0] << 16
	data[1] = qblock[0] >> 16
	data[1] |= qblock[1] << 8

	return data
}

func storeBlockWords(dst []byte, words []uint32) {
	for i, w := range words {
		binary.LittleEndian.PutUint32(dst[i*4:], w)
	}
}

// CompressBlockBC1 encodes one full 4x4 tile of interleaved RGBA8 pixels into an
// 8-byte BC1 block. rgba points at the tile's top-left pixel; stride is the
// source row pitch in bytes. dst must hold at least 8 bytes.
func CompressBlockBC1(rgba []byte, stride int, dst []byte) {
	var c blockCompressorBC15
	c.loadBlockInterleavedRGBA(rgba, stride)
	data := c.compressBlockBC1Core()
	storeBlockWords(dst, data[:])
}

// CompressBlockBC2 encodes one full 4x4 RGBA8 tile into a 16-byte BC2 block:
// 64 bits of raw 4-bit alpha followed by a BC1 color block.
func CompressBlockBC2(rgba []byte, stride int, dst []byte) {
	var c blockCompressorBC15
	var data [4]uint32

	alpha := loadBlockAlpha4(rgba, stride)
	data[0] = alpha[0]
	data[1] = alpha[1]

	c.loadBlockInterleavedRGBA(rgba, stride)
	color := c.compressBlockBC1Core()
	data[2] = color[0]
	data[3] = color[1]

	storeBlockWords(dst, data[:])
}

// CompressBlockBC3 encodes one full 4x4 RGBA8 tile into a 16-byte BC3 block:
// an interpolated alpha block followed by a BC1 color block.
func CompressBlockBC3(rgba []byte, stride int, dst []byte) {
	var c blockCompressorBC15
	var data [4]uint32

	c.loadBlockInterleavedRGBA(rgba, stride)

	alpha := c.compressBlockBC3Alpha()
	data[0] = alpha[0]
	data[1] = alpha[1]

	color := c.compressBlockBC1Core()
	data[2] = color[0]
	data[3] = color[1]

	storeBlockWords(dst, data[:])
}

// CompressBlockBC4 encodes the red channel of one full 4x4 RGBA8 tile into an
// 8-byte BC4 block.
func CompressBlockBC4(rgba []byte, stride int, dst []byte) {
	var c blockCompressorBC15
	c.loadBlockR8(rgba, stride)
	data := c.compressBlockBC3Alpha()
	storeBlockWords(dst, data[:])
}

// CompressBlockBC5 encodes the red and green channels of one full 4x4 RGBA8
// tile into a 16-byte BC5 block.
func CompressBlockBC5(rgba []byte, stride int, dst []byte) {
	var c blockCompressorBC15
	var data [4]uint32

	c.loadBlockR8(rgba, stride)
	red := c.compressBlockBC3Alpha()
	data[0] = red[0]
	data[1] = red[1]

	c.loadBlockG8(rgba, stride)
	green := c.compressBlockBC3Alpha()
	data[2] = green[0]
	data[3] = green[1]

	storeBlockWords(dst, data[:])
}
