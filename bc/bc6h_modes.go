package bc

// The BC6H mode table. Mode indices 0..9 are two-subset layouts, 10..13 are
// single-subset. The triples (2,3,4) and (6,7,8) share one logical layout with
// the wide delta field rotated across R/G/B. Per mode: the 2- or 5-bit header
// prefix, the endpoint bit width, and the maximum color span the delta
// encoding can represent (used to rule modes out early).

func getBC6HModePrefix(mode int) uint32 {
	modePrefixTable := [14]uint32{0, 1, 2, 6, 10, 14, 18, 22, 26, 30, 3, 7, 11, 15}
	return modePrefixTable[mode]
}

func getBC6HSpan(mode int) float32 {
	spanTable := [14]float32{
		0.9 * 65535.0 / 64.0,  // (0) 4 / 10
		0.9 * 65535.0 / 4.0,   // (1) 5 / 7
		0.8 * 65535.0 / 256.0, // (2) 3 / 11
		-1.0,
		-1.0,
		0.9 * 65535.0 / 32.0, // (5) 4 / 9
		0.9 * 65535.0 / 16.0, // (6) 4 / 8
		-1.0,
		-1.0,
		65535.0,               // (9) absolute
		65535.0,               // (10) absolute
		0.95 * 65535.0 / 8.0,  // (11) 8 / 11
		0.95 * 65535.0 / 32.0, // (12) 7 / 12
		6.0,                   // (13) 3 / 16
	}
	return spanTable[mode]
}

func getBC6HModeBits(mode int) uint32 {
	modeBitsTable := [14]uint32{10, 7, 11, 0, 0, 9, 8, 0, 0, 6, 10, 11, 12, 16}
	return modeBitsTable[mode]
}

func bitAt(v int32, pos uint32) uint32 {
	return uint32(v>>pos) & 1
}

// reverseBits reverses the low 2 or 6 bits of v, the only widths the BC6H
// overflow-bit interleave needs.
func reverseBits(v uint32, bits uint32) uint32 {
	if bits == 2 {
		return (v >> 1) + (v&1)*2
	}

	if bits == 6 {
		vv := (v&0x5555)*2 + ((v >> 1) & 0x5555)
		return (vv >> 4) + ((vv>>2)&3)*4 + (vv&3)*16
	}

	return 0
}

// bc6hPack assembles the mode header and endpoint fields for one mode into
// packed: [0] the 5-bit header, [1] and [2] thirty endpoint bits each, [3] the
// final twelve. The per-mode cases mirror the format's bit layout tables
// entry for entry, deltas first, then the overflow bits of the
// higher-precision fields spread into the gaps.
func bc6hPack(packed *[4]uint32, qep *[24]int32, mode int) {
	switch mode {
	case 0:
		var predQep [16]int32
		for p := 0; p < 3; p++ {
			predQep[p] = qep[p]
			predQep[4+p] = (qep[4+p] - qep[p]) & 31
			predQep[8+p] = (qep[8+p] - qep[p]) & 31
			predQep[12+p] = (qep[12+p] - qep[p]) & 31
		}

		var pqep [10]uint32

		pqep[4] = uint32(predQep[4]) + uint32(predQep[8+1]&15)*64
		pqep[5] = uint32(predQep[5]) + uint32(predQep[12+1]&15)*64
		pqep[6] = uint32(predQep[6]) + uint32(predQep[8+2]&15)*64

		pqep[4] += bitAt(predQep[12+1], 4) << 5
		pqep[5] += bitAt(predQep[12+2], 0) << 5
		pqep[6] += bitAt(predQep[12+2], 1) << 5

		pqep[8] = uint32(predQep[8]) + bitAt(predQep[12+2], 2)*32
		pqep[9] = uint32(predQep[12]) + bitAt(predQep[12+2], 3)*32

		packed[0] = getBC6HModePrefix(0)
		packed[0] += bitAt(predQep[8+1], 4) << 2
		packed[0] += bitAt(predQep[8+2], 4) << 3
		packed[0] += bitAt(predQep[12+2], 4) << 4

		packed[1] = (uint32(predQep[2]) << 20) + (uint32(predQep[1]) << 10) + uint32(predQep[0])
		packed[2] = (pqep[6] << 20) + (pqep[5] << 10) + pqep[4]
		packed[3] = (pqep[9] << 6) + pqep[8]

	case 1:
		var predQep [16]int32
		for p := 0; p < 3; p++ {
			predQep[p] = qep[p]
			predQep[4+p] = (qep[4+p] - qep[p]) & 63
			predQep[8+p] = (qep[8+p] - qep[p]) & 63
			predQep[12+p] = (qep[12+p] - qep[p]) & 63
		}

		var pqep [8]uint32

		pqep[0] = uint32(predQep[0])
		pqep[0] += bitAt(predQep[12+2], 0) << 7
		pqep[0] += bitAt(predQep[12+2], 1) << 8
		pqep[0] += bitAt(predQep[8+2], 4) << 9

		pqep[1] = uint32(predQep[1])
		pqep[1] += bitAt(predQep[8+2], 5) << 7
		pqep[1] += bitAt(predQep[12+2], 2) << 8
		pqep[1] += bitAt(predQep[8+1], 4) << 9

		pqep[2] = uint32(predQep[2])
		pqep[2] += bitAt(predQep[12+2], 3) << 7
		pqep[2] += bitAt(predQep[12+2], 5) << 8
		pqep[2] += bitAt(predQep[12+2], 4) << 9

		pqep[4] = uint32(predQep[4]) + uint32(predQep[8+1]&15)*64
		pqep[5] = uint32(predQep[5]) + uint32(predQep[12+1]&15)*64
		pqep[6] = uint32(predQep[6]) + uint32(predQep[8+2]&15)*64

		packed[0] = getBC6HModePrefix(1)
		packed[0] += bitAt(predQep[8+1], 5) << 2
		packed[0] += bitAt(predQep[12+1], 4) << 3
		packed[0] += bitAt(predQep[12+1], 5) << 4

		packed[1] = (pqep[2] << 20) + (pqep[1] << 10) + pqep[0]
		packed[2] = (pqep[6] << 20) + (pqep[5] << 10) + pqep[4]
		packed[3] = (uint32(predQep[12]) << 6) + uint32(predQep[8])

	case 2, 3, 4:
		var dqep [16]int32
		for p := 0; p < 3; p++ {
			mask := int32(15)
			if p == mode-2 {
				mask = 31
			}
			dqep[p] = qep[p]
			dqep[4+p] = (qep[4+p] - qep[p]) & mask
			dqep[8+p] = (qep[8+p] - qep[p]) & mask
			dqep[12+p] = (qep[12+p] - qep[p]) & mask
		}

		var pqep [10]uint32

		pqep[0] = uint32(dqep[0] & 1023)
		pqep[1] = uint32(dqep[1] & 1023)
		pqep[2] = uint32(dqep[2] & 1023)

		pqep[4] = uint32(dqep[4]) + uint32(dqep[8+1]&15)*64
		pqep[5] = uint32(dqep[5]) + uint32(dqep[12+1]&15)*64
		pqep[6] = uint32(dqep[6]) + uint32(dqep[8+2]&15)*64

		pqep[8] = uint32(dqep[8])
		pqep[9] = uint32(dqep[12])

		switch mode {
		case 2:
			packed[0] = getBC6HModePrefix(2)

			pqep[5] += bitAt(dqep[1], 10) << 4
			pqep[6] += bitAt(dqep[2], 10) << 4

			pqep[4] += bitAt(dqep[0], 10) << 5
			pqep[5] += bitAt(dqep[12+2], 0) << 5
			pqep[6] += bitAt(dqep[12+2], 1) << 5
			pqep[8] += bitAt(dqep[12+2], 2) << 5
			pqep[9] += bitAt(dqep[12+2], 3) << 5
		case 3:
			packed[0] = getBC6HModePrefix(3)

			pqep[4] += bitAt(dqep[0], 10) << 4
			pqep[6] += bitAt(dqep[2], 10) << 4
			pqep[8] += bitAt(dqep[12+2], 0) << 4
			pqep[9] += bitAt(dqep[8+1], 4) << 4

			pqep[4] += bitAt(dqep[12+1], 4) << 5
			pqep[5] += bitAt(dqep[1], 10) << 5
			pqep[6] += bitAt(dqep[12+2], 1) << 5
			pqep[8] += bitAt(dqep[12+2], 2) << 5
			pqep[9] += bitAt(dqep[12+2], 3) << 5
		case 4:
			packed[0] = getBC6HModePrefix(4)

			pqep[4] += bitAt(dqep[0], 10) << 4
			pqep[5] += bitAt(dqep[1], 10) << 4
			pqep[8] += bitAt(dqep[12+2], 1) << 4
			pqep[9] += bitAt(dqep[12+2], 4) << 4

			pqep[4] += bitAt(dqep[8+2], 4) << 5
			pqep[5] += bitAt(dqep[12+2], 0) << 5
			pqep[6] += bitAt(dqep[2], 10) << 5
			pqep[8] += bitAt(dqep[12+2], 2) << 5
			pqep[9] += bitAt(dqep[12+2], 3) << 5
		}

		packed[1] = (pqep[2] << 20) + (pqep[1] << 10) + pqep[0]
		packed[2] = (pqep[6] << 20) + (pqep[5] << 10) + pqep[4]
		packed[3] = (pqep[9] << 6) + pqep[8]

	case 5:
		var dqep [16]int32
		for p := 0; p < 3; p++ {
			dqep[p] = qep[p]
			dqep[4+p] = (qep[4+p] - qep[p]) & 31
			dqep[8+p] = (qep[8+p] - qep[p]) & 31
			dqep[12+p] = (qep[12+p] - qep[p]) & 31
		}

		var pqep [10]uint32

		pqep[0] = uint32(dqep[0])
		pqep[1] = uint32(dqep[1])
		pqep[2] = uint32(dqep[2])
		pqep[4] = uint32(dqep[4]) + uint32(dqep[8+1]&15)*64
		pqep[5] = uint32(dqep[5]) + uint32(dqep[12+1]&15)*64
		pqep[6] = uint32(dqep[6]) + uint32(dqep[8+2]&15)*64
		pqep[8] = uint32(dqep[8])
		pqep[9] = uint32(dqep[12])

		pqep[0] += bitAt(dqep[8+2], 4) << 9
		pqep[1] += bitAt(dqep[8+1], 4) << 9
		pqep[2] += bitAt(dqep[12+2], 4) << 9

		pqep[4] += bitAt(dqep[12+1], 4) << 5
		pqep[5] += bitAt(dqep[12+2], 0) << 5
		pqep[6] += bitAt(dqep[12+2], 1) << 5

		pqep[8] += bitAt(dqep[12+2], 2) << 5
		pqep[9] += bitAt(dqep[12+2], 3) << 5

		packed[0] = getBC6HModePrefix(5)

		packed[1] = (pqep[2] << 20) + (pqep[1] << 10) + pqep[0]
		packed[2] = (pqep[6] << 20) + (pqep[5] << 10) + pqep[4]
		packed[3] = (pqep[9] << 6) + pqep[8]

	case 6, 7, 8:
		var dqep [16]int32
		for p := 0; p < 3; p++ {
			mask := int32(31)
			if p == mode-6 {
				mask = 63
			}
			dqep[p] = qep[p]
			dqep[4+p] = (qep[4+p] - qep[p]) & mask
			dqep[8+p] = (qep[8+p] - qep[p]) & mask
			dqep[12+p] = (qep[12+p] - qep[p]) & mask
		}

		var pqep [10]uint32

		pqep[0] = uint32(dqep[0])
		pqep[0] += bitAt(dqep[8+2], 4) << 9

		pqep[1] = uint32(dqep[1])
		pqep[1] += bitAt(dqep[8+1], 4) << 9

		pqep[2] = uint32(dqep[2])
		pqep[2] += bitAt(dqep[12+2], 4) << 9

		pqep[4] = uint32(dqep[4]) + uint32(dqep[8+1]&15)*64
		pqep[5] = uint32(dqep[5]) + uint32(dqep[12+1]&15)*64
		pqep[6] = uint32(dqep[6]) + uint32(dqep[8+2]&15)*64

		pqep[8] = uint32(dqep[8])
		pqep[9] = uint32(dqep[12])

		switch mode {
		case 6:
			packed[0] = getBC6HModePrefix(6)

			pqep[0] += bitAt(dqep[12+1], 4) << 8
			pqep[1] += bitAt(dqep[12+2], 2) << 8
			pqep[2] += bitAt(dqep[12+2], 3) << 8
			pqep[5] += bitAt(dqep[12+2], 0) << 5
			pqep[6] += bitAt(dqep[12+2], 1) << 5
		case 7:
			packed[0] = getBC6HModePrefix(7)

			pqep[0] += bitAt(dqep[12+2], 0) << 8
			pqep[1] += bitAt(dqep[8+1], 5) << 8
			pqep[2] += bitAt(dqep[12+1], 5) << 8
			pqep[4] += bitAt(dqep[12+1], 4) << 5
			pqep[6] += bitAt(dqep[12+2], 1) << 5
			pqep[8] += bitAt(dqep[12+2], 2) << 5
			pqep[9] += bitAt(dqep[12+2], 3) << 5
		case 8:
			packed[0] = getBC6HModePrefix(8)

			pqep[0] += bitAt(dqep[12+2], 1) << 8
			pqep[1] += bitAt(dqep[8+2], 5) << 8
			pqep[2] += bitAt(dqep[12+2], 5) << 8
			pqep[4] += bitAt(dqep[12+1], 4) << 5
			pqep[5] += bitAt(dqep[12+2], 0) << 5
			pqep[8] += bitAt(dqep[12+2], 2) << 5
			pqep[9] += bitAt(dqep[12+2], 3) << 5
		}

		packed[1] = (pqep[2] << 20) + (pqep[1] << 10) + pqep[0]
		packed[2] = (pqep[6] << 20) + (pqep[5] << 10) + pqep[4]
		packed[3] = (pqep[9] << 6) + pqep[8]

	case 9:
		var pqep [10]uint32

		pqep[0] = uint32(qep[0])
		pqep[0] += bitAt(qep[12+1], 4) << 6
		pqep[0] += bitAt(qep[12+2], 0) << 7
		pqep[0] += bitAt(qep[12+2], 1) << 8
		pqep[0] += bitAt(qep[8+2], 4) << 9

		pqep[1] = uint32(qep[1])
		pqep[1] += bitAt(qep[8+1], 5) << 6
		pqep[1] += bitAt(qep[8+2], 5) << 7
		pqep[1] += bitAt(qep[12+2], 2) << 8
		pqep[1] += bitAt(qep[8+1], 4) << 9

		pqep[2] = uint32(qep[2])
		pqep[2] += bitAt(qep[12+1], 5) << 6
		pqep[2] += bitAt(qep[12+2], 3) << 7
		pqep[2] += bitAt(qep[12+2], 5) << 8
		pqep[2] += bitAt(qep[12+2], 4) << 9

		pqep[4] = uint32(qep[4]) + uint32(qep[8+1]&15)*64
		pqep[5] = uint32(qep[5]) + uint32(qep[12+1]&15)*64
		pqep[6] = uint32(qep[6]) + uint32(qep[8+2]&15)*64

		packed[0] = getBC6HModePrefix(9)
		packed[1] = (pqep[2] << 20) + (pqep[1] << 10) + pqep[0]
		packed[2] = (pqep[6] << 20) + (pqep[5] << 10) + pqep[4]
		packed[3] = uint32(qep[12]<<6) + uint32(qep[8])

	case 10:
		packed[0] = getBC6HModePrefix(10)
		packed[1] = uint32(qep[2]<<20) + uint32(qep[1]<<10) + uint32(qep[0])
		packed[2] = uint32(qep[6]<<20) + uint32(qep[5]<<10) + uint32(qep[4])

	case 11:
		var dqep [8]int32
		for p := 0; p < 3; p++ {
			dqep[p] = qep[p]
			dqep[4+p] = (qep[4+p] - qep[p]) & 511
		}

		var pqep [8]uint32

		pqep[0] = uint32(dqep[0] & 1023)
		pqep[1] = uint32(dqep[1] & 1023)
		pqep[2] = uint32(dqep[2] & 1023)

		pqep[4] = uint32(dqep[4]) + uint32(dqep[0]>>10)*512
		pqep[5] = uint32(dqep[5]) + uint32(dqep[1]>>10)*512
		pqep[6] = uint32(dqep[6]) + uint32(dqep[2]>>10)*512

		packed[0] = getBC6HModePrefix(11)
		packed[1] = (pqep[2] << 20) + (pqep[1] << 10) + pqep[0]
		packed[2] = (pqep[6] << 20) + (pqep[5] << 10) + pqep[4]

	case 12:
		var dqep [8]int32
		for p := 0; p < 3; p++ {
			dqep[p] = qep[p]
			dqep[4+p] = (qep[4+p] - qep[p]) & 255
		}

		var pqep [8]uint32

		pqep[0] = uint32(dqep[0] & 1023)
		pqep[1] = uint32(dqep[1] & 1023)
		pqep[2] = uint32(dqep[2] & 1023)

		pqep[4] = uint32(dqep[4]) + reverseBits(uint32(dqep[0]>>10), 2)*256
		pqep[5] = uint32(dqep[5]) + reverseBits(uint32(dqep[1]>>10), 2)*256
		pqep[6] = uint32(dqep[6]) + reverseBits(uint32(dqep[2]>>10), 2)*256

		packed[0] = getBC6HModePrefix(12)
		packed[1] = (pqep[2] << 20) + (pqep[1] << 10) + pqep[0]
		packed[2] = (pqep[6] << 20) + (pqep[5] << 10) + pqep[4]

	case 13:
		var dqep [8]int32
		for p := 0; p < 3; p++ {
			dqep[p] = qep[p]
			dqep[4+p] = (qep[4+p] - qep[p]) & 15
		}

		var pqep [8]uint32

		pqep[0] = uint32(dqep[0] & 1023)
		pqep[1] = uint32(dqep[1] & 1023)
		pqep[2] = uint32(dqep[2] & 1023)

		pqep[4] = uint32(dqep[4]) + reverseBits(uint32(dqep[0]>>10), 6)*16
		pqep[5] = uint32(dqep[5]) + reverseBits(uint32(dqep[1]>>10), 6)*16
		pqep[6] = uint32(dqep[6]) + reverseBits(uint32(dqep[2]>>10), 6)*16

		packed[0] = getBC6HModePrefix(13)
		packed[1] = (pqep[2] << 20) + (pqep[1] << 10) + pqep[0]
		packed[2] = (pqep[6] << 20) + (pqep[5] << 10) + pqep[4]
	}
}
