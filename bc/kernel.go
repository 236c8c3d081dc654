package bc

import "math"

// A tile holds one 4x4 texel block in planar layout: 4 channels of 16 texels each,
// channel p's texel k at tile[16*p+k]. Unused channels (e.g. alpha for BC1) are zero.
type tile [64]float32

func sq(x float32) float32 { return x * x }

// getUnquantValue mirrors the fixed interpolation weight tables used to reconstruct a
// block index back into a [0,64] blend weight, for 2/3/4-bit index widths.
func getUnquantValue(bits uint32, index int32) int32 {
	switch bits {
	case 2:
		table := [4]int32{0, 21, 43, 64}
		return table[index]
	case 3:
		table := [8]int32{0, 9, 18, 27, 37, 46, 55, 64}
		return table[index]
	default:
		table := [16]int32{0, 4, 9, 13, 17, 21, 26, 30, 34, 38, 43, 47, 51, 55, 60, 64}
		return table[index]
	}
}

// putBits writes the low `bits` bits of v into data at the bit offset *pos, advancing
// *pos by bits. data is a little-endian bit accumulator spanning up to 160 bits.
func putBits(data *[5]uint32, pos *uint32, bits uint32, v uint32) {
	data[*pos/32] |= v << (*pos % 32)
	if *pos%32+bits > 32 {
		data[*pos/32+1] |= v >> (32 - *pos%32)
	}
	*pos += bits
}

// shl1From removes the bit just below offset fromBits from the stream, sliding bits
// [fromBits, 160) down one position. Used to drop an anchor index's elided MSB after
// the indices have been written at full width.
func shl1From(data *[5]uint32, fromBits int) {
	if fromBits < 96 {
		shifted := (data[2] >> 1) | (data[3] << 31)
		mask := uint32((1<<(fromBits-64))-1) >> 1
		data[2] = (mask & data[2]) | (^mask & shifted)
		data[3] = (data[3] >> 1) | (data[4] << 31)
		data[4] >>= 1
	} else if fromBits < 128 {
		shifted := (data[3] >> 1) | (data[4] << 31)
		mask := uint32((1<<(fromBits-96))-1) >> 1
		data[3] = (mask & data[3]) | (^mask & shifted)
		data[4] >>= 1
	}
}

// partialSortList ascending-sorts the first partialCount entries of list (by selection
// sort), leaving the remaining entries in unspecified order. Used to cheaply find the
// best few partition candidates without a full sort.
func partialSortList(list []int32, partialCount uint32) {
	length := len(list)
	for k := 0; k < int(partialCount); k++ {
		bestIdx := k
		bestValue := list[k]
		for i := k + 1; i < length; i++ {
			if bestValue > list[i] {
				bestValue = list[i]
				bestIdx = i
			}
		}
		list[k], list[bestIdx] = list[bestIdx], list[k]
	}
}

// optEndpoints re-derives a least-squares-optimal pair of endpoints for the texels
// selected by mask, given their already-quantized indices in qblock.
func optEndpoints(ep []float32, block *tile, bits uint32, qblock [2]uint32, mask uint32, channels int) {
	levels := int32(1) << bits

	var atb1 [4]float32
	var sumQ, sumQQ float32
	var sum [5]float32

	maskShifted := mask << 1
	for k1 := 0; k1 < 2; k1++ {
		qbitsShifted := qblock[k1]
		for k2 := 0; k2 < 8; k2++ {
			k := k1*8 + k2
			q := float32(qbitsShifted & 15)
			qbitsShifted >>= 4

			maskShifted >>= 1
			if maskShifted&1 == 0 {
				continue
			}

			x := float32(levels-1) - q

			sumQ += q
			sumQQ += q * q

			sum[4]++
			for p := 0; p < channels; p++ {
				sum[p] += block[k+p*16]
				atb1[p] += x * block[k+p*16]
			}
		}
	}

	var atb2 [4]float32
	for p := 0; p < channels; p++ {
		atb2[p] = float32(levels-1)*sum[p] - atb1[p]
	}

	cxx := sum[4]*sq(float32(levels-1)) - 2*float32(levels-1)*sumQ + sumQQ
	cyy := sumQQ
	cxy := float32(levels-1)*sumQ - sumQQ
	scale := float32(levels-1) / (cxx*cyy - cxy*cxy)

	for p := 0; p < channels; p++ {
		ep[p] = (atb1[p]*cyy - atb2[p]*cxy) * scale
		ep[4+p] = (atb2[p]*cxx - atb1[p]*cxy) * scale
	}

	if float32(math.Abs(float64(cxx*cyy-cxy*cxy))) < 0.001 {
		for p := 0; p < channels; p++ {
			ep[p] = sum[p] / sum[4]
			ep[4+p] = ep[p]
		}
	}
}

// getPCABound estimates the minimum representable squared error for a subset's
// covariance using a handful of power iterations -- just enough to rank partition
// candidates without the cost of full endpoint search.
func getPCABound(covar *[10]float32, channels int) float32 {
	const powerIterations = 4

	var covarScaled [10]float32
	invVar := float32(1.0 / (256.0 * 256.0))
	for i, c := range covar {
		covarScaled[i] = c * invVar
	}

	const epsF = float32(1.1920929e-07) // float32 machine epsilon
	covarScaled[0] += epsF
	covarScaled[4] += epsF
	covarScaled[7] += epsF

	var axis [4]float32
	computeAxis(&axis, &covarScaled, powerIterations, channels)

	var aVec [4]float32
	if channels == 3 {
		ssymv3(&aVec, &covarScaled, &axis)
	} else if channels == 4 {
		ssymv4(&aVec, &covarScaled, &axis)
	}

	var sqSum float32
	for _, v := range aVec[:channels] {
		sqSum += sq(v)
	}
	lambda := float32(math.Sqrt(float64(sqSum)))

	bound := covarScaled[0] + covarScaled[4] + covarScaled[7]
	if channels == 4 {
		bound += covarScaled[9]
	}
	bound -= lambda

	return float32(math.Max(float64(bound), 0))
}

func ssymv3(a *[4]float32, covar *[10]float32, b *[4]float32) {
	a[0] = covar[0]*b[0] + covar[1]*b[1] + covar[2]*b[2]
	a[1] = covar[1]*b[0] + covar[4]*b[1] + covar[5]*b[2]
	a[2] = covar[2]*b[0] + covar[5]*b[1] + covar[7]*b[2]
}

func ssymv4(a *[4]float32, covar *[10]float32, b *[4]float32) {
	a[0] = covar[0]*b[0] + covar[1]*b[1] + covar[2]*b[2] + covar[3]*b[3]
	a[1] = covar[1]*b[0] + covar[4]*b[1] + covar[5]*b[2] + covar[6]*b[3]
	a[2] = covar[2]*b[0] + covar[5]*b[1] + covar[7]*b[2] + covar[8]*b[3]
	a[3] = covar[3]*b[0] + covar[6]*b[1] + covar[8]*b[2] + covar[9]*b[3]
}

func computeAxis(axis *[4]float32, covar *[10]float32, powerIterations uint32, channels int) {
	aVec := [4]float32{1, 1, 1, 1}

	for i := uint32(0); i < powerIterations; i++ {
		if channels == 3 {
			ssymv3(axis, covar, &aVec)
		} else if channels == 4 {
			ssymv4(axis, covar, &aVec)
		}

		copy(aVec[:channels], axis[:channels])

		if i%2 == 1 {
			var normSq float32
			for p := 0; p < channels; p++ {
				normSq += sq(axis[p])
			}
			rnorm := float32(1.0 / math.Sqrt(float64(normSq)))
			for p := 0; p < channels; p++ {
				aVec[p] *= rnorm
			}
		}
	}

	copy(axis[:channels], aVec[:channels])
}

// computeStatsMasked accumulates sums and cross-products for the texels selected by
// mask. stats layout: [0]=rr [1]=rg [2]=rb [3]=ra [4]=gg [5]=gb [6]=ga [7]=bb [8]=ba
// [9]=aa [10]=sum_r [11]=sum_g [12]=sum_b [13]=sum_a [14]=count.
func computeStatsMasked(stats *[15]float32, block *tile, mask uint32, channels int) {
	maskShifted := mask << 1
	for k := 0; k < 16; k++ {
		maskShifted >>= 1
		flag := float32(maskShifted & 1)

		var rgba [4]float32
		for p := 0; p < channels; p++ {
			rgba[p] = block[k+p*16] * flag
		}
		stats[14] += flag

		stats[10] += rgba[0]
		stats[11] += rgba[1]
		stats[12] += rgba[2]

		stats[0] += rgba[0] * rgba[0]
		stats[1] += rgba[0] * rgba[1]
		stats[2] += rgba[0] * rgba[2]

		stats[4] += rgba[1] * rgba[1]
		stats[5] += rgba[1] * rgba[2]

		stats[7] += rgba[2] * rgba[2]

		if channels == 4 {
			stats[13] += rgba[3]
			stats[3] += rgba[0] * rgba[3]
			stats[6] += rgba[1] * rgba[3]
			stats[8] += rgba[2] * rgba[3]
			stats[9] += rgba[3] * rgba[3]
		}
	}
}

func covarFromStats(covar *[10]float32, stats [15]float32, channels int) {
	covar[0] = stats[0] - stats[10]*stats[10]/stats[14]
	covar[1] = stats[1] - stats[10]*stats[11]/stats[14]
	covar[2] = stats[2] - stats[10]*stats[12]/stats[14]

	covar[4] = stats[4] - stats[11]*stats[11]/stats[14]
	covar[5] = stats[5] - stats[11]*stats[12]/stats[14]

	covar[7] = stats[7] - stats[12]*stats[12]/stats[14]

	if channels == 4 {
		covar[3] = stats[3] - stats[10]*stats[13]/stats[14]
		covar[6] = stats[6] - stats[11]*stats[13]/stats[14]
		covar[8] = stats[8] - stats[12]*stats[13]/stats[14]
		covar[9] = stats[9] - stats[13]*stats[13]/stats[14]
	}
}

func computeCovarDCMasked(covar *[10]float32, dc *[4]float32, block *tile, mask uint32, channels int) {
	var stats [15]float32
	computeStatsMasked(&stats, block, mask, channels)

	for p := 0; p < channels; p++ {
		dc[p] = stats[10+p] / stats[14]
	}

	covarFromStats(covar, stats, channels)
}

func blockPCAAxis(axis, dc *[4]float32, block *tile, mask uint32, channels int) {
	const powerIterations = 8

	var covar [10]float32
	computeCovarDCMasked(&covar, dc, block, mask, channels)

	const invVar = float32(1.0 / (256.0 * 256.0))
	for i := range covar {
		covar[i] *= invVar
	}

	const eps = float32(1.1920929e-07)
	covar[0] += eps
	covar[4] += eps
	covar[7] += eps
	covar[9] += eps

	computeAxis(axis, &covar, powerIterations, channels)
}

// blockPCABoundSplit bounds the representable error of splitting block into the subset
// selected by mask and its complement, summing both subsets' PCA bounds. Used to order
// partition candidates before running full endpoint search on the most promising ones.
func blockPCABoundSplit(block *tile, mask uint32, fullStats [15]float32, channels int) float32 {
	var stats [15]float32
	computeStatsMasked(&stats, block, mask, channels)

	var covar1 [10]float32
	covarFromStats(&covar1, stats, channels)

	for i := 0; i < 15; i++ {
		stats[i] = fullStats[i] - stats[i]
	}

	var covar2 [10]float32
	covarFromStats(&covar2, stats, channels)

	bound := getPCABound(&covar1, channels) + getPCABound(&covar2, channels)

	return float32(math.Sqrt(float64(bound))) * 256.0
}

// blockQuant assigns each of the 16 texels to its best index against the subset
// endpoints in ep (8 floats per subset, indexed by the 2-bit subset id in pattern),
// testing the two neighboring quantization levels and keeping whichever reconstructs
// closer. Returns the total squared error.
func blockQuant(qblock *[2]uint32, block *tile, bits uint32, ep []float32, pattern uint32, channels int) float32 {
	var totalErr float32
	levels := int32(1) << bits

	qblock[0] = 0
	qblock[1] = 0

	patternShifted := pattern
	for k := 0; k < 16; k++ {
		j := int(patternShifted & 3)
		patternShifted >>= 2

		var proj, div float32
		for p := 0; p < channels; p++ {
			epA := ep[8*j+p]
			epB := ep[8*j+4+p]
			proj += (block[k+p*16] - epA) * (epB - epA)
			div += sq(epB - epA)
		}

		proj /= div

		q1 := int32(proj*float32(levels) + 0.5)
		q1Clamped := clampI32(q1, 1, levels-1)

		w0 := getUnquantValue(bits, q1Clamped-1)
		w1 := getUnquantValue(bits, q1Clamped)

		var err0, err1 float32
		for p := 0; p < channels; p++ {
			epA := ep[8*j+p]
			epB := ep[8*j+4+p]
			decV0 := float32(((64-w0)*int32(epA) + w0*int32(epB) + 32) / 64)
			decV1 := float32(((64-w1)*int32(epA) + w1*int32(epB) + 32) / 64)
			err0 += sq(decV0 - block[k+p*16])
			err1 += sq(decV1 - block[k+p*16])
		}

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

// blockSegmentCore derives a subset's endpoint pair from its PCA axis: the texels are
// projected onto the axis and the extremes (widened if they collapse) become the
// reconstructed endpoints.
func blockSegmentCore(ep []float32, block *tile, mask uint32, channels int) {
	var axis, dc [4]float32
	blockPCAAxis(&axis, &dc, block, mask, channels)

	ext := [2]float32{float32(math.Inf(1)), float32(math.Inf(-1))}

	maskShifted := mask << 1
	for k := 0; k < 16; k++ {
		maskShifted >>= 1
		if maskShifted&1 == 0 {
			continue
		}

		var dot float32
		for p := 0; p < channels; p++ {
			dot += axis[p] * (block[16*p+k] - dc[p])
		}

		ext[0] = float32(math.Min(float64(ext[0]), float64(dot)))
		ext[1] = float32(math.Max(float64(ext[1]), float64(dot)))
	}

	if ext[1]-ext[0] < 1.0 {
		ext[0] -= 0.5
		ext[1] += 0.5
	}

	for i := 0; i < 2; i++ {
		for p := 0; p < channels; p++ {
			ep[4*i+p] = ext[i]*axis[p] + dc[p]
		}
	}
}

func clampI32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampF32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
