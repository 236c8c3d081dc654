package bc

// bc7CodeQblock streams the 16 per-texel indices. The first texel's index is
// written with one bit less since its MSB is implied zero after endpoint
// ordering; flips holds a per-texel mask of subsets whose endpoints were
// swapped, inverting the index.
func bc7CodeQblock(data *[5]uint32, qpos *uint32, qblock [2]uint32, bits uint32, flips uint32) {
	levels := uint32(1) << bits
	flipsShifted := flips

	for k1 := 0; k1 < 2; k1++ {
		qbitsShifted := qblock[k1]
		for k2 := 0; k2 < 8; k2++ {
			q := qbitsShifted & 15
			if flipsShifted&1 > 0 {
				q = (levels - 1) - q
			}

			if k1 == 0 && k2 == 0 {
				putBits(data, qpos, bits-1, q)
			} else {
				putBits(data, qpos, bits, q)
			}
			qbitsShifted >>= 4
			flipsShifted >>= 1
		}
	}
}

// bc7CodeAdjustSkipMode01237 removes the implied-zero MSB of each non-first
// subset's anchor index from the already-written stream.
func bc7CodeAdjustSkipMode01237(data *[5]uint32, mode int, partID int32) {
	pairs := 2
	if mode == 0 || mode == 2 {
		pairs = 3
	}
	bits := 2
	if mode == 0 || mode == 1 {
		bits = 3
	}

	skips := getSkips(partID)

	if pairs > 2 && skips[1] < skips[2] {
		skips[1], skips[2] = skips[2], skips[1]
	}

	for _, k := range skips[1:pairs] {
		shl1From(data, 128+(pairs-1)-(15-int(k))*bits)
	}
}

// bc7CodeApplySwapMode456 canonicalizes a single-subset block: if the first
// texel's index has its top bit set, swap the endpoints and complement every
// index.
func bc7CodeApplySwapMode456(qep []int32, channels int, qblock *[2]uint32, bits uint32) {
	levels := uint32(1) << bits

	if qblock[0]&15 >= levels/2 {
		for p := 0; p < channels; p++ {
			qep[p], qep[channels+p] = qep[channels+p], qep[p]
		}

		for i := range qblock {
			qblock[i] = (0x11111111 * (levels - 1)) - qblock[i]
		}
	}
}

// bc7CodeApplySwapMode01237 canonicalizes each subset of a partitioned block:
// if the anchor texel's index has its top bit set, swap that subset's endpoints
// and mark its texels in the returned flips mask for index inversion.
func bc7CodeApplySwapMode01237(qep *[24]int32, qblock [2]uint32, mode int, partID int32) uint32 {
	bits := 2
	if mode == 0 || mode == 1 {
		bits = 3
	}
	pairs := 2
	if mode == 0 || mode == 2 {
		pairs = 3
	}

	var flips uint32
	levels := uint32(1) << bits

	skips := getSkips(partID)

	for j := 0; j < pairs; j++ {
		k0 := int(skips[j])
		q := (qblock[k0>>3] << (28 - (k0&7)*4)) >> 28

		if q >= levels/2 {
			for p := 0; p < 4; p++ {
				qep[8*j+p], qep[8*j+4+p] = qep[8*j+4+p], qep[8*j+p]
			}

			flips |= getPatternMask(partID, uint32(j))
		}
	}

	return flips
}
