package bc

import "math"

// blockCompressorBC7 holds the per-tile state of the BC7 mode search: the tile
// itself, the best packed block so far, and its error. opaqueErr penalizes
// alpha-less modes when the tile's alpha is not uniformly 255.
type blockCompressorBC7 struct {
	block     tile
	data      [5]uint32
	bestErr   float32
	opaqueErr float32
	settings  *BC7Settings
}

// mode45Params is the winning candidate of the mode 4/5 search: color and
// scalar plane endpoints/indices plus the channel rotation and index-swap bit.
type mode45Params struct {
	qep      [8]int32
	qblock   [2]uint32
	aqep     [2]int32
	aqblock  [2]uint32
	rotation uint32
	swap     uint32
}

func newBlockCompressorBC7(settings *BC7Settings) blockCompressorBC7 {
	return blockCompressorBC7{
		bestErr:  float32(math.Inf(1)),
		settings: settings,
	}
}

func (c *blockCompressorBC7) loadBlockInterleavedRGBA(rgba []byte, stride int) {
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

func unpackToByte(v int32, bits uint32) int32 {
	vv := v << (8 - bits)
	return vv + (vv >> bits)
}

func epQuant0367(qep []int32, ep []float32, mode int, channels int) {
	bits := uint32(7)
	if mode == 0 {
		bits = 4
	} else if mode == 7 {
		bits = 5
	}
	levels := int32(1) << bits
	levels2 := levels*2 - 1

	for i := 0; i < 2; i++ {
		var qepB [8]int32

		for b := int32(0); b < 2; b++ {
			for p := 0; p < 4; p++ {
				v := int32((ep[i*4+p]/255.0*float32(levels2)-float32(b))/2.0+0.5)*2 + b
				qepB[b*4+int32(p)] = clampI32(v, b, levels2-1+b)
			}
		}

		var epB [8]float32
		for j := 0; j < 8; j++ {
			epB[j] = float32(qepB[j])
		}

		if mode == 0 {
			for j := 0; j < 8; j++ {
				epB[j] = float32(unpackToByte(qepB[j], 5))
			}
		}

		var err0, err1 float32
		for p := 0; p < channels; p++ {
			err0 += sq(ep[i*4+p] - epB[p])
			err1 += sq(ep[i*4+p] - epB[4+p])
		}

		for p := 0; p < 4; p++ {
			if err0 < err1 {
				qep[i*4+p] = qepB[p]
			} else {
				qep[i*4+p] = qepB[4+p]
			}
		}
	}
}

func epQuant1(qep []int32, ep []float32) {
	var qepB [16]int32

	for b := int32(0); b < 2; b++ {
		for i := 0; i < 8; i++ {
			v := int32((ep[i]/255.0*127.0-float32(b))/2.0+0.5)*2 + b
			qepB[b*8+int32(i)] = clampI32(v, b, 126+b)
		}
	}

	var epB [16]float32
	for k := 0; k < 16; k++ {
		epB[k] = float32(unpackToByte(qepB[k], 7))
	}

	var err0, err1 float32
	for j := 0; j < 2; j++ {
		for p := 0; p < 3; p++ {
			err0 += sq(ep[j*4+p] - epB[j*4+p])
			err1 += sq(ep[j*4+p] - epB[8+j*4+p])
		}
	}

	for i := 0; i < 8; i++ {
		if err0 < err1 {
			qep[i] = qepB[i]
		} else {
			qep[i] = qepB[8+i]
		}
	}
}

func epQuant245(qep []int32, ep []float32, mode int) {
	bits := uint32(5)
	if mode == 5 {
		bits = 7
	}
	levels := int32(1) << bits

	for i := 0; i < 8; i++ {
		v := int32(ep[i]/255.0*float32(levels-1) + 0.5)
		qep[i] = clampI32(v, 0, levels-1)
	}
}

var bc7PairsTable = [8]int{3, 2, 3, 2, 1, 1, 1, 2}

func epQuant(qep []int32, ep []float32, mode int, channels int) {
	pairs := bc7PairsTable[mode]

	switch mode {
	case 0, 3, 6, 7:
		for i := 0; i < pairs; i++ {
			epQuant0367(qep[i*8:], ep[i*8:], mode, channels)
		}
	case 1:
		for i := 0; i < pairs; i++ {
			epQuant1(qep[i*8:], ep[i*8:])
		}
	case 2, 4, 5:
		for i := 0; i < pairs; i++ {
			epQuant245(qep[i*8:], ep[i*8:], mode)
		}
	}
}

func epDequant(ep []float32, qep []int32, mode int) {
	pairs := bc7PairsTable[mode]

	// Modes 3 and 6 land on full 8-bit endpoints after the P bit.
	switch mode {
	case 3, 6:
		for i := 0; i < 8*pairs; i++ {
			ep[i] = float32(qep[i])
		}
	case 1, 5:
		for i := 0; i < 8*pairs; i++ {
			ep[i] = float32(unpackToByte(qep[i], 7))
		}
	case 0, 2, 4:
		for i := 0; i < 8*pairs; i++ {
			ep[i] = float32(unpackToByte(qep[i], 5))
		}
	case 7:
		for i := 0; i < 8*pairs; i++ {
			ep[i] = float32(unpackToByte(qep[i], 6))
		}
	}
}

func epQuantDequant(qep []int32, ep []float32, mode int, channels int) {
	epQuant(qep, ep, mode, channels)
	epDequant(ep, qep, mode)
}

// optChannel encodes the scalar plane of modes 4/5: min/max endpoints, index
// quantization, and the configured number of least-squares refinement rounds.
func (c *blockCompressorBC7) optChannel(qblock *[2]uint32, qep *[2]int32, channelBlock *[16]float32, bits, epbits uint32) float32 {
	ep := [2]float32{255.0, 0.0}

	for k := 0; k < 16; k++ {
		ep[0] = float32(math.Min(float64(ep[0]), float64(channelBlock[k])))
		ep[1] = float32(math.Max(float64(ep[1]), float64(channelBlock[k])))
	}

	channelQuantDequant(qep, &ep, epbits)
	err := channelOptQuant(qblock, channelBlock, bits, &ep)

	for i := uint32(0); i < c.settings.RefineIterationsChannel; i++ {
		channelOptEndpoints(&ep, channelBlock, bits, *qblock)
		channelQuantDequant(qep, &ep, epbits)
		err = channelOptQuant(qblock, channelBlock, bits, &ep)
	}

	return err
}

func channelQuantDequant(qep *[2]int32, ep *[2]float32, epbits uint32) {
	elevels := int32(1) << epbits

	for i := 0; i < 2; i++ {
		v := int32(ep[i]/255.0*float32(elevels-1) + 0.5)
		qep[i] = clampI32(v, 0, elevels-1)
		ep[i] = float32(unpackToByte(qep[i], epbits))
	}
}

func channelOptQuant(qblock *[2]uint32, channelBlock *[16]float32, bits uint32, ep *[2]float32) float32 {
	levels := int32(1) << bits

	qblock[0] = 0
	qblock[1] = 0

	var totalErr float32

	for k := 0; k < 16; k++ {
		proj := (channelBlock[k] - ep[0]) / (ep[1] - ep[0] + 0.001)

		q1 := int32(proj*float32(levels) + 0.5)
		q1Clamped := clampI32(q1, 1, levels-1)

		w0 := getUnquantValue(bits, q1Clamped-1)
		w1 := getUnquantValue(bits, q1Clamped)

		decV0 := float32(((64-w0)*int32(ep[0]) + w0*int32(ep[1]) + 32) / 64)
		decV1 := float32(((64-w1)*int32(ep[0]) + w1*int32(ep[1]) + 32) / 64)
		err0 := sq(decV0 - channelBlock[k])
		err1 := sq(decV1 - channelBlock[k])

		bestErr := err1
		bestQ := q1Clamped
		if err0 < err1 {
			bestErr = err0
			bestQ = q1Clamped - 1
		}

		qblock[k/8] |= uint32(bestQ) << (4 * uint(k%8))
		totalErr += bestErr
	}

	return totalErr
}

func channelOptEndpoints(ep *[2]float32, channelBlock *[16]float32, bits uint32, qblock [2]uint32) {
	levels := int32(1) << bits

	var atb1, sumQ, sumQQ, sum float32

	for k1 := 0; k1 < 2; k1++ {
		qbitsShifted := qblock[k1]
		for k2 := 0; k2 < 8; k2++ {
			k := k1*8 + k2
			q := float32(qbitsShifted & 15)
			qbitsShifted >>= 4

			x := float32(levels-1) - q

			sumQ += q
			sumQQ += q * q

			sum += channelBlock[k]
			atb1 += x * channelBlock[k]
		}
	}

	atb2 := float32(levels-1)*sum - atb1

	cxx := 16.0*sq(float32(levels-1)) - 2.0*float32(levels-1)*sumQ + sumQQ
	cyy := sumQQ
	cxy := float32(levels-1)*sumQ - sumQQ
	scale := float32(levels-1) / (cxx*cyy - cxy*cxy)

	ep[0] = clampF32((atb1*cyy-atb2*cxy)*scale, 0, 255)
	ep[1] = clampF32((atb2*cxx-atb1*cxy)*scale, 0, 255)

	if float32(math.Abs(float64(cxx*cyy-cxy*cxy))) < 0.001 {
		ep[0] = sum / 16.0
		ep[1] = ep[0]
	}
}

// blockSegment is blockSegmentCore with the endpoints clamped into the LDR
// domain.
func blockSegment(ep []float32, block *tile, mask uint32, channels int) {
	blockSegmentCore(ep, block, mask, channels)

	for i := 0; i < 2; i++ {
		for p := 0; p < channels; p++ {
			ep[4*i+p] = clampF32(ep[4*i+p], 0, 255)
		}
	}
}

func (c *blockCompressorBC7) bc7CodeMode01237(qep *[24]int32, qblock [2]uint32, partID int32, mode int) {
	bits := uint32(2)
	if mode == 0 || mode == 1 {
		bits = 3
	}
	pairs := 2
	if mode == 0 || mode == 2 {
		pairs = 3
	}
	channels := 3
	if mode == 7 {
		channels = 4
	}

	flips := bc7CodeApplySwapMode01237(qep, qblock, mode, partID)

	c.data = [5]uint32{}
	pos := uint32(0)

	putBits(&c.data, &pos, uint32(mode+1), 1<<uint(mode))

	if mode == 0 {
		putBits(&c.data, &pos, 4, uint32(partID&15))
	} else {
		putBits(&c.data, &pos, 6, uint32(partID&63))
	}

	for p := 0; p < channels; p++ {
		for j := 0; j < pairs*2; j++ {
			switch mode {
			case 0:
				putBits(&c.data, &pos, 4, uint32(qep[j*4+p])>>1)
			case 1:
				putBits(&c.data, &pos, 6, uint32(qep[j*4+p])>>1)
			case 2:
				putBits(&c.data, &pos, 5, uint32(qep[j*4+p]))
			case 3:
				putBits(&c.data, &pos, 7, uint32(qep[j*4+p])>>1)
			case 7:
				putBits(&c.data, &pos, 5, uint32(qep[j*4+p])>>1)
			}
		}
	}

	// P bits
	if mode == 1 {
		for j := 0; j < 2; j++ {
			putBits(&c.data, &pos, 1, uint32(qep[j*8])&1)
		}
	}

	if mode == 0 || mode == 3 || mode == 7 {
		for j := 0; j < pairs*2; j++ {
			putBits(&c.data, &pos, 1, uint32(qep[j*4])&1)
		}
	}

	bc7CodeQblock(&c.data, &pos, qblock, bits, flips)
	bc7CodeAdjustSkipMode01237(&c.data, mode, partID)
}

func (c *blockCompressorBC7) bc7CodeMode45(params *mode45Params, mode int) {
	qep := params.qep
	qblock := params.qblock
	aqep := params.aqep
	aqblock := params.aqblock
	rotation := params.rotation
	swap := params.swap

	bits := uint32(2)
	abits := uint32(2)
	epbits := uint32(7)
	aepbits := uint32(8)
	if mode == 4 {
		abits = 3
		epbits = 5
		aepbits = 6
	}

	if swap == 0 {
		bc7CodeApplySwapMode456(qep[:], 4, &qblock, bits)
		bc7CodeApplySwapMode456(aqep[:], 1, &aqblock, abits)
	} else {
		qblock, aqblock = aqblock, qblock

		bc7CodeApplySwapMode456(aqep[:], 1, &qblock, bits)
		bc7CodeApplySwapMode456(qep[:], 4, &aqblock, abits)
	}

	c.data = [5]uint32{}
	pos := uint32(0)

	putBits(&c.data, &pos, uint32(mode+1), 1<<uint(mode))

	// Rotation
	putBits(&c.data, &pos, 2, (rotation+1)&3)

	if mode == 4 {
		putBits(&c.data, &pos, 1, swap)
	}

	for p := 0; p < 3; p++ {
		putBits(&c.data, &pos, epbits, uint32(qep[p]))
		putBits(&c.data, &pos, epbits, uint32(qep[4+p]))
	}

	putBits(&c.data, &pos, aepbits, uint32(aqep[0]))
	putBits(&c.data, &pos, aepbits, uint32(aqep[1]))

	bc7CodeQblock(&c.data, &pos, qblock, bits, 0)
	bc7CodeQblock(&c.data, &pos, aqblock, abits, 0)
}

func (c *blockCompressorBC7) bc7CodeMode6(qep []int32, qblock *[2]uint32) {
	bc7CodeApplySwapMode456(qep, 4, qblock, 4)

	c.data = [5]uint32{}
	pos := uint32(0)

	putBits(&c.data, &pos, 7, 64)

	for p := 0; p < 4; p++ {
		putBits(&c.data, &pos, 7, uint32(qep[p])>>1)
		putBits(&c.data, &pos, 7, uint32(qep[4+p])>>1)
	}

	// P bits
	putBits(&c.data, &pos, 1, uint32(qep[0])&1)
	putBits(&c.data, &pos, 1, uint32(qep[4])&1)

	bc7CodeQblock(&c.data, &pos, *qblock, 4, 0)
}

func (c *blockCompressorBC7) bc7EncMode01237PartFast(qep *[24]int32, qblock *[2]uint32, partID int32, mode int) float32 {
	pattern := getPattern(partID)
	bits := uint32(2)
	if mode == 0 || mode == 1 {
		bits = 3
	}
	pairs := 2
	if mode == 0 || mode == 2 {
		pairs = 3
	}
	channels := 3
	if mode == 7 {
		channels = 4
	}

	var ep [24]float32
	for j := 0; j < pairs; j++ {
		mask := getPatternMask(partID, uint32(j))
		blockSegment(ep[j*8:], &c.block, mask, channels)
	}

	epQuantDequant(qep[:], ep[:], mode, channels)

	return blockQuant(qblock, &c.block, bits, ep[:], pattern, channels)
}

func (c *blockCompressorBC7) bc7EncMode01237(mode int, partList []int32, partCount int) {
	if partCount == 0 {
		return
	}

	bits := uint32(2)
	if mode == 0 || mode == 1 {
		bits = 3
	}
	pairs := 2
	if mode == 0 || mode == 2 {
		pairs = 3
	}
	channels := 3
	if mode == 7 {
		channels = 4
	}

	var bestQep [24]int32
	var bestQblock [2]uint32
	bestPartID := int32(-1)
	bestErr := float32(math.Inf(1))

	for _, part := range partList[:partCount] {
		partID := part & 63
		if pairs == 3 {
			partID += 64
		}

		var qep [24]int32
		var qblock [2]uint32
		err := c.bc7EncMode01237PartFast(&qep, &qblock, partID, mode)

		if err < bestErr {
			copy(bestQep[:8*pairs], qep[:8*pairs])
			bestQblock = qblock

			bestPartID = partID
			bestErr = err
		}
	}

	refineIterations := c.settings.RefineIterations[mode]
	for i := uint32(0); i < refineIterations; i++ {
		var ep [24]float32
		for j := 0; j < pairs; j++ {
			mask := getPatternMask(bestPartID, uint32(j))
			optEndpoints(ep[j*8:], &c.block, bits, bestQblock, mask, channels)
		}

		var qep [24]int32
		var qblock [2]uint32

		epQuantDequant(qep[:], ep[:], mode, channels)

		pattern := getPattern(bestPartID)
		err := blockQuant(&qblock, &c.block, bits, ep[:], pattern, channels)

		if err < bestErr {
			copy(bestQep[:8*pairs], qep[:8*pairs])
			bestQblock = qblock
			bestErr = err
		}
	}

	if mode != 7 {
		bestErr += c.opaqueErr
	}

	if bestErr < c.bestErr {
		c.bestErr = bestErr
		c.bc7CodeMode01237(&bestQep, bestQblock, bestPartID, mode)
	}
}

func (c *blockCompressorBC7) bc7EncMode02() {
	var partList [64]int32
	for part := int32(0); part < 64; part++ {
		partList[part] = part
	}

	c.bc7EncMode01237(0, partList[:], 16)

	if !c.settings.SkipMode2 {
		c.bc7EncMode01237(2, partList[:], 64)
	}
}

func (c *blockCompressorBC7) bc7EncMode13() {
	if c.settings.FastSkipThresholdMode1 == 0 && c.settings.FastSkipThresholdMode3 == 0 {
		return
	}

	var fullStats [15]float32
	computeStatsMasked(&fullStats, &c.block, 0xFFFFFFFF, 3)

	var partList [64]int32
	for part := int32(0); part < 64; part++ {
		mask := getPatternMask(part, 0)
		bound12 := blockPCABoundSplit(&c.block, mask, fullStats, 3)
		partList[part] = part + int32(bound12)*64
	}

	partialCount := c.settings.FastSkipThresholdMode1
	if c.settings.FastSkipThresholdMode3 > partialCount {
		partialCount = c.settings.FastSkipThresholdMode3
	}
	partialSortList(partList[:], partialCount)
	c.bc7EncMode01237(1, partList[:], int(c.settings.FastSkipThresholdMode1))
	c.bc7EncMode01237(3, partList[:], int(c.settings.FastSkipThresholdMode3))
}

func (c *blockCompressorBC7) bc7EncMode45Candidate(bestCandidate *mode45Params, bestErr *float32, mode int, rotation, swap uint32) {
	bits := uint32(2)
	abits := uint32(2)
	aepbits := uint32(8)

	if mode == 4 {
		abits = 3
		aepbits = 6
	}

	// (mode 4)
	if swap == 1 {
		bits = 3
		abits = 2
	}

	var candidateBlock tile

	for k := 0; k < 16; k++ {
		for p := 0; p < 3; p++ {
			candidateBlock[k+p*16] = c.block[k+p*16]
		}

		if rotation < 3 {
			if c.settings.Channels == 4 {
				candidateBlock[k+int(rotation)*16] = c.block[k+3*16]
			}
			if c.settings.Channels == 3 {
				candidateBlock[k+int(rotation)*16] = 255.0
			}
		}
	}

	var ep [8]float32
	blockSegment(ep[:], &candidateBlock, 0xFFFFFFFF, 3)

	var qep [8]int32
	epQuantDequant(qep[:], ep[:], mode, 3)

	var qblock [2]uint32
	err := blockQuant(&qblock, &candidateBlock, bits, ep[:], 0, 3)

	refineIterations := c.settings.RefineIterations[mode]
	for i := uint32(0); i < refineIterations; i++ {
		optEndpoints(ep[:], &candidateBlock, bits, qblock, 0xFFFFFFFF, 3)
		epQuantDequant(qep[:], ep[:], mode, 3)
		err = blockQuant(&qblock, &candidateBlock, bits, ep[:], 0, 3)
	}

	var channelData [16]float32
	for k := 0; k < 16; k++ {
		channelData[k] = c.block[k+int(rotation)*16]
	}

	// Encoding selected channel
	var aqep [2]int32
	var aqblock [2]uint32

	err += c.optChannel(&aqblock, &aqep, &channelData, abits, aepbits)

	if err < *bestErr {
		copy(bestCandidate.qep[:], qep[:])
		bestCandidate.qblock = qblock
		bestCandidate.aqblock = aqblock
		bestCandidate.aqep = aqep
		bestCandidate.rotation = rotation
		bestCandidate.swap = swap
		*bestErr = err
	}
}

func (c *blockCompressorBC7) bc7EncMode45() {
	var bestCandidate mode45Params
	bestErr := c.bestErr

	channel0 := c.settings.Mode45Channel0
	for p := channel0; p < c.settings.Channels; p++ {
		c.bc7EncMode45Candidate(&bestCandidate, &bestErr, 4, p, 0)
		c.bc7EncMode45Candidate(&bestCandidate, &bestErr, 4, p, 1)
	}

	// Mode 4
	if bestErr < c.bestErr {
		c.bestErr = bestErr
		c.bc7CodeMode45(&bestCandidate, 4)
	}

	for p := channel0; p < c.settings.Channels; p++ {
		c.bc7EncMode45Candidate(&bestCandidate, &bestErr, 5, p, 0)
	}

	// Mode 5
	if bestErr < c.bestErr {
		c.bestErr = bestErr
		c.bc7CodeMode45(&bestCandidate, 5)
	}
}

func (c *blockCompressorBC7) bc7EncMode6() {
	const mode = 6
	const bits = 4

	channels := int(c.settings.Channels)

	var ep [8]float32
	blockSegment(ep[:], &c.block, 0xFFFFFFFF, channels)

	if c.settings.Channels == 3 {
		ep[3] = 255.0
		ep[7] = 255.0
	}

	var qep [8]int32
	epQuantDequant(qep[:], ep[:], mode, channels)

	var qblock [2]uint32
	err := blockQuant(&qblock, &c.block, bits, ep[:], 0, channels)

	refineIterations := c.settings.RefineIterations[mode]
	for i := uint32(0); i < refineIterations; i++ {
		optEndpoints(ep[:], &c.block, bits, qblock, 0xFFFFFFFF, channels)
		epQuantDequant(qep[:], ep[:], mode, channels)
		err = blockQuant(&qblock, &c.block, bits, ep[:], 0, channels)
	}

	if err < c.bestErr {
		c.bestErr = err
		c.bc7CodeMode6(qep[:], &qblock)
	}
}

func (c *blockCompressorBC7) bc7EncMode7() {
	if c.settings.FastSkipThresholdMode7 == 0 {
		return
	}

	channels := int(c.settings.Channels)

	var fullStats [15]float32
	computeStatsMasked(&fullStats, &c.block, 0xFFFFFFFF, channels)

	var partList [64]int32
	for part := int32(0); part < 64; part++ {
		mask := getPatternMask(part, 0)
		bound12 := blockPCABoundSplit(&c.block, mask, fullStats, channels)
		partList[part] = part + int32(bound12)*64
	}

	partialSortList(partList[:], c.settings.FastSkipThresholdMode7)
	c.bc7EncMode01237(7, partList[:], int(c.settings.FastSkipThresholdMode7))
}

func (c *blockCompressorBC7) compressBlockBC7Core() {
	if c.settings.ModeSelection[0] {
		c.bc7EncMode02()
	}
	if c.settings.ModeSelection[1] {
		c.bc7EncMode13()
		c.bc7EncMode7()
	}
	if c.settings.ModeSelection[2] {
		c.bc7EncMode45()
	}
	if c.settings.ModeSelection[3] {
		c.bc7EncMode6()
	}
}

func (c *blockCompressorBC7) computeOpaqueErr() {
	if c.settings.Channels == 3 {
		c.opaqueErr = 0.0
		return
	}

	var err float32
	for k := 0; k < 16; k++ {
		err += sq(c.block[48+k] - 255.0)
	}
	c.opaqueErr = err
}

// CompressBlockBC7 encodes one full 4x4 tile of interleaved RGBA8 pixels into a
// 16-byte BC7 block. rgba points at the tile's top-left pixel; stride is the
// source row pitch in bytes. dst must hold at least 16 bytes.
func CompressBlockBC7(rgba []byte, stride int, dst []byte, settings *BC7Settings) {
	c := newBlockCompressorBC7(settings)
	c.loadBlockInterleavedRGBA(rgba, stride)
	c.computeOpaqueErr()
	c.compressBlockBC7Core()
	storeBlockWords(dst, c.data[:4])
}
