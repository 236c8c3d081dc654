package bc

import "encoding/binary"

// Minimal reference decoders used to state round-trip properties. They cover
// exactly what the tests exercise and are not a product surface.

type blockBitReader struct {
	data []byte
	pos  uint32
}

func (r *blockBitReader) read(bits uint32) uint32 {
	var v uint32
	for i := uint32(0); i < bits; i++ {
		b := (uint32(r.data[(r.pos+i)/8]) >> ((r.pos + i) % 8)) & 1
		v |= b << i
	}
	r.pos += bits
	return v
}

func signExtend(v uint32, bits uint32) int32 {
	if v&(1<<(bits-1)) != 0 {
		return int32(v) - (1 << bits)
	}
	return int32(v)
}

func decodeBC1(block []byte) [16][4]int32 {
	c0 := binary.LittleEndian.Uint16(block[0:2])
	c1 := binary.LittleEndian.Uint16(block[2:4])
	idxWord := binary.LittleEndian.Uint32(block[4:8])

	dec := func(c uint16) [3]int32 {
		b5 := int32(c) & 31
		g6 := (int32(c) >> 5) & 63
		r5 := (int32(c) >> 11) & 31
		return [3]int32{(r5 << 3) + (r5 >> 2), (g6 << 2) + (g6 >> 4), (b5 << 3) + (b5 >> 2)}
	}

	var colors [4][4]int32
	e0 := dec(c0)
	e1 := dec(c1)
	for p := 0; p < 3; p++ {
		colors[0][p] = e0[p]
		colors[1][p] = e1[p]
	}
	colors[0][3] = 255
	colors[1][3] = 255
	colors[2][3] = 255
	if c0 > c1 {
		for p := 0; p < 3; p++ {
			colors[2][p] = (2*e0[p] + e1[p] + 1) / 3
			colors[3][p] = (e0[p] + 2*e1[p] + 1) / 3
		}
		colors[3][3] = 255
	} else {
		for p := 0; p < 3; p++ {
			colors[2][p] = (e0[p] + e1[p]) / 2
		}
	}

	var out [16][4]int32
	for k := 0; k < 16; k++ {
		out[k] = colors[(idxWord>>(2*uint(k)))&3]
	}
	return out
}

// decodeBC3Alpha decodes the 8-byte interpolated alpha block shared by BC3,
// BC4, and BC5.
func decodeBC3Alpha(block []byte) [16]int32 {
	a0 := int32(block[0])
	a1 := int32(block[1])

	var bits uint64
	for i := 0; i < 6; i++ {
		bits |= uint64(block[2+i]) << (8 * uint(i))
	}

	var out [16]int32
	for k := 0; k < 16; k++ {
		idx := int32((bits >> (3 * uint(k))) & 7)
		switch {
		case idx == 0:
			out[k] = a0
		case idx == 1:
			out[k] = a1
		case a0 > a1:
			out[k] = ((8-idx)*a0 + (idx-1)*a1) / 7
		case idx == 6:
			out[k] = 0
		case idx == 7:
			out[k] = 255
		default:
			out[k] = ((6-idx)*a0 + (idx-1)*a1) / 5
		}
	}
	return out
}

func decodeBC7(block []byte) [16][4]int32 {
	r := &blockBitReader{data: block}
	mode := 0
	for mode < 8 && r.read(1) == 0 {
		mode++
	}

	switch mode {
	case 0, 1, 2, 3, 7:
		return decodeBC7Partitioned(r, mode)
	case 4, 5:
		return decodeBC7DualPlane(r, mode)
	default:
		return decodeBC7Mode6(r)
	}
}

func decodeBC7Partitioned(r *blockBitReader, mode int) [16][4]int32 {
	pairs := 2
	if mode == 0 || mode == 2 {
		pairs = 3
	}
	idxBits := uint32(2)
	if mode == 0 || mode == 1 {
		idxBits = 3
	}
	colorBits := map[int]uint32{0: 4, 1: 6, 2: 5, 3: 7, 7: 5}[mode]
	channels := 3
	if mode == 7 {
		channels = 4
	}

	var partID int32
	if mode == 0 {
		partID = int32(r.read(4))
	} else {
		partID = int32(r.read(6))
	}
	tableID := partID
	if pairs == 3 {
		tableID += 64
	}

	var qep [6][4]uint32
	for ch := 0; ch < channels; ch++ {
		for j := 0; j < 2*pairs; j++ {
			qep[j][ch] = r.read(colorBits)
		}
	}

	totalBits := colorBits
	if mode == 1 {
		totalBits = 7
		pb := [2]uint32{r.read(1), r.read(1)}
		for j := 0; j < 4; j++ {
			for ch := 0; ch < 3; ch++ {
				qep[j][ch] = qep[j][ch]<<1 | pb[j/2]
			}
		}
	}
	if mode == 0 || mode == 3 || mode == 7 {
		totalBits = colorBits + 1
		for j := 0; j < 2*pairs; j++ {
			pb := r.read(1)
			for ch := 0; ch < channels; ch++ {
				qep[j][ch] = qep[j][ch]<<1 | pb
			}
		}
	}

	var ep [6][4]int32
	for j := 0; j < 2*pairs; j++ {
		for ch := 0; ch < channels; ch++ {
			ep[j][ch] = unpackToByte(int32(qep[j][ch]), totalBits)
		}
		if channels == 3 {
			ep[j][3] = 255
		}
	}

	skips := getSkips(tableID)
	var idx [16]uint32
	for k := 0; k < 16; k++ {
		n := idxBits
		if k == 0 {
			n--
		} else {
			for j := 1; j < pairs; j++ {
				if uint32(k) == skips[j] {
					n--
				}
			}
		}
		idx[k] = r.read(n)
	}

	pattern := getPattern(tableID)
	var out [16][4]int32
	for k := 0; k < 16; k++ {
		j := (pattern >> (2 * uint(k))) & 3
		w := getUnquantValue(idxBits, int32(idx[k]))
		for ch := 0; ch < 4; ch++ {
			out[k][ch] = (ep[2*j][ch]*(64-w) + ep[2*j+1][ch]*w + 32) >> 6
		}
	}
	return out
}

func decodeBC7DualPlane(r *blockBitReader, mode int) [16][4]int32 {
	rot := r.read(2)
	idxMode := uint32(0)
	epbits := uint32(7)
	aepbits := uint32(8)
	plane1Bits := uint32(2)
	if mode == 4 {
		idxMode = r.read(1)
		epbits = 5
		aepbits = 6
		plane1Bits = 3
	}

	var cep [2][3]int32
	for ch := 0; ch < 3; ch++ {
		cep[0][ch] = unpackToByte(int32(r.read(epbits)), epbits)
		cep[1][ch] = unpackToByte(int32(r.read(epbits)), epbits)
	}
	aep := [2]int32{
		unpackToByte(int32(r.read(aepbits)), aepbits),
		unpackToByte(int32(r.read(aepbits)), aepbits),
	}

	readPlane := func(bits uint32) [16]uint32 {
		var idx [16]uint32
		for k := 0; k < 16; k++ {
			n := bits
			if k == 0 {
				n--
			}
			idx[k] = r.read(n)
		}
		return idx
	}

	plane0 := readPlane(2)
	plane1 := readPlane(plane1Bits)

	colorIdx, colorBits := plane0, uint32(2)
	alphaIdx, alphaBits := plane1, plane1Bits
	if idxMode == 1 {
		colorIdx, colorBits = plane1, plane1Bits
		alphaIdx, alphaBits = plane0, 2
	}

	var out [16][4]int32
	for k := 0; k < 16; k++ {
		wc := getUnquantValue(colorBits, int32(colorIdx[k]))
		wa := getUnquantValue(alphaBits, int32(alphaIdx[k]))
		for ch := 0; ch < 3; ch++ {
			out[k][ch] = (cep[0][ch]*(64-wc) + cep[1][ch]*wc + 32) >> 6
		}
		out[k][3] = (aep[0]*(64-wa) + aep[1]*wa + 32) >> 6

		if rot != 0 {
			c := rot - 1
			out[k][c], out[k][3] = out[k][3], out[k][c]
		}
	}
	return out
}

func decodeBC7Mode6(r *blockBitReader) [16][4]int32 {
	var qep [2][4]uint32
	for ch := 0; ch < 4; ch++ {
		qep[0][ch] = r.read(7)
		qep[1][ch] = r.read(7)
	}
	p0 := r.read(1)
	p1 := r.read(1)

	var ep [2][4]int32
	for ch := 0; ch < 4; ch++ {
		ep[0][ch] = int32(qep[0][ch]<<1 | p0)
		ep[1][ch] = int32(qep[1][ch]<<1 | p1)
	}

	var out [16][4]int32
	for k := 0; k < 16; k++ {
		n := uint32(4)
		if k == 0 {
			n = 3
		}
		w := getUnquantValue(4, int32(r.read(n)))
		for ch := 0; ch < 4; ch++ {
			out[k][ch] = (ep[0][ch]*(64-w) + ep[1][ch]*w + 32) >> 6
		}
	}
	return out
}

// decodeBC6H1p decodes the four single-subset BC6H modes (10..13) back to
// per-texel half bit patterns. Returns ok=false for two-subset blocks.
func decodeBC6H1p(block []byte) (mode int, out [16][3]uint16, ok bool) {
	r := &blockBitReader{data: block}
	header := r.read(5)
	if header&3 != 3 {
		return 0, out, false
	}
	mode = 10 + int(header>>2)

	epbTable := map[int]uint32{10: 10, 11: 11, 12: 12, 13: 16}
	epb := epbTable[mode]

	x := [3]uint32{r.read(10), r.read(10), r.read(10)}
	y := [3]uint32{r.read(10), r.read(10), r.read(10)}

	var e0, e1 [3]uint32
	for p := 0; p < 3; p++ {
		switch mode {
		case 10:
			e0[p] = x[p]
			e1[p] = y[p]
		case 11:
			e0[p] = x[p] | (y[p]>>9)<<10
			delta := signExtend(y[p]&511, 9)
			e1[p] = uint32(int32(e0[p])+delta) & 2047
		case 12:
			e0[p] = x[p] | reverseBits(y[p]>>8, 2)<<10
			delta := signExtend(y[p]&255, 8)
			e1[p] = uint32(int32(e0[p])+delta) & 4095
		case 13:
			e0[p] = x[p] | reverseBits(y[p]>>4, 6)<<10
			delta := signExtend(y[p]&15, 4)
			e1[p] = uint32(int32(e0[p])+delta) & 65535
		}
	}

	var idx [16]uint32
	for k := 0; k < 16; k++ {
		n := uint32(4)
		if k == 0 {
			n = 3
		}
		idx[k] = r.read(n)
	}

	for k := 0; k < 16; k++ {
		w := getUnquantValue(4, int32(idx[k]))
		for p := 0; p < 3; p++ {
			a := int32(unpackToUF16(e0[p], epb))
			b := int32(unpackToUF16(e1[p], epb))
			interp := (a*(64-w) + b*w + 32) >> 6
			out[k][p] = uint16((interp * 31) >> 6)
		}
	}

	return mode, out, true
}
