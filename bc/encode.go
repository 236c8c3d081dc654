package bc

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/mrjoshuak/go-openexr/half"
)

// EncodeOptions configures the host tile loop. Nil settings fall back to the
// basic quality tiers; Workers <= 0 uses runtime.GOMAXPROCS(0).
type EncodeOptions struct {
	BC6H    *BC6HSettings
	BC7     *BC7Settings
	Workers int
}

func (o *EncodeOptions) bc6h() BC6HSettings {
	if o != nil && o.BC6H != nil {
		return *o.BC6H
	}
	return BC6HSettingsBasic()
}

func (o *EncodeOptions) bc7() BC7Settings {
	if o != nil && o.BC7 != nil {
		return *o.BC7
	}
	return BC7SettingsAlphaBasic()
}

func (o *EncodeOptions) workers() int {
	if o != nil && o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// tileScratch is the per-worker staging area: one clamped 4x4 tile in each
// source format, reused across all tiles the worker encodes.
type tileScratch struct {
	rgba [64]byte
	hdr  [64]half.Half
}

// extractTileRGBA8 copies the 4x4 tile at block coordinates (xx, yy) into
// dst with a row pitch of 16 bytes, clamping reads to the image edge so
// right/bottom partial tiles repeat their border pixels.
func extractTileRGBA8(dst *[64]byte, src []byte, width, height, stride, xx, yy int) {
	for y := 0; y < 4; y++ {
		py := yy*4 + y
		if py > height-1 {
			py = height - 1
		}
		for x := 0; x < 4; x++ {
			px := xx*4 + x
			if px > width-1 {
				px = width - 1
			}
			copy(dst[(y*4+x)*4:(y*4+x)*4+4], src[py*stride+px*4:])
		}
	}
}

func extractTileRGBA16(dst *[64]half.Half, src []half.Half, width, height, stride, xx, yy int) {
	for y := 0; y < 4; y++ {
		py := yy*4 + y
		if py > height-1 {
			py = height - 1
		}
		for x := 0; x < 4; x++ {
			px := xx*4 + x
			if px > width-1 {
				px = width - 1
			}
			copy(dst[(y*4+x)*4:(y*4+x)*4+4], src[py*stride+px*4:])
		}
	}
}

func validateRGBA8(variant Variant, rgba []byte, blocks []byte, width, height, stride int) error {
	if !variant.valid() {
		return newError(ErrBadVariant, "bc: invalid compression variant")
	}
	if width <= 0 || height <= 0 {
		return newError(ErrBadDimensions, "bc: image dimensions must be positive")
	}
	if stride < width*4 {
		return newError(ErrBadBuffer, "bc: stride shorter than one pixel row")
	}
	if len(rgba) < (height-1)*stride+width*4 {
		return newError(ErrBadBuffer, "bc: RGBA8 buffer shorter than image")
	}
	if len(blocks) < variant.BlocksByteSize(width, height) {
		return newError(ErrBadBuffer, "bc: block buffer too small for compressed output")
	}
	return nil
}

// CompressRGBA8 encodes an interleaved RGBA8 image into blocks using the given
// variant. stride is the source row pitch in bytes. Images whose dimensions are
// not multiples of 4 are padded by repeating the border pixels. ctx only stops
// the dispatch of further row bands; a block in flight always completes.
//
// Tiles are independent, so the output is byte-identical regardless of worker
// count or encode order.
func CompressRGBA8(ctx context.Context, variant Variant, rgba []byte, blocks []byte, width, height, stride int, opts *EncodeOptions) error {
	if err := validateRGBA8(variant, rgba, blocks, width, height, stride); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	bc6hSettings := opts.bc6h()
	bc7Settings := opts.bc7()

	blockWidth := (width + 3) / 4
	blockHeight := (height + 3) / 4
	blockBytes := variant.BlockByteSize()

	encodeRow := func(scratch *tileScratch, yy int) {
		for xx := 0; xx < blockWidth; xx++ {
			extractTileRGBA8(&scratch.rgba, rgba, width, height, stride, xx, yy)
			dst := blocks[(yy*blockWidth+xx)*blockBytes:]

			switch variant {
			case BC1:
				CompressBlockBC1(scratch.rgba[:], 16, dst)
			case BC2:
				CompressBlockBC2(scratch.rgba[:], 16, dst)
			case BC3:
				CompressBlockBC3(scratch.rgba[:], 16, dst)
			case BC4:
				CompressBlockBC4(scratch.rgba[:], 16, dst)
			case BC5:
				CompressBlockBC5(scratch.rgba[:], 16, dst)
			case BC6H:
				c := newBlockCompressorBC6H(&bc6hSettings)
				c.loadBlockInterleavedRGBA8(scratch.rgba[:], 16)
				c.compressBC6HCore()
				storeBlockWords(dst, c.data[:4])
			case BC7:
				CompressBlockBC7(scratch.rgba[:], 16, dst, &bc7Settings)
			}
		}
	}

	return runRowBands(ctx, opts.workers(), blockHeight, encodeRow)
}

// CompressRGBA16 encodes an interleaved RGBA half-float image into BC6H
// blocks. stride is the source row pitch in half elements. Only BC6H consumes
// half-float input; other variants return ErrUnsupportedVariant.
func CompressRGBA16(ctx context.Context, variant Variant, rgba []half.Half, blocks []byte, width, height, stride int, opts *EncodeOptions) error {
	if variant != BC6H {
		return newError(ErrUnsupportedVariant, "bc: CompressRGBA16 supports BC6H only")
	}
	if width <= 0 || height <= 0 {
		return newError(ErrBadDimensions, "bc: image dimensions must be positive")
	}
	if stride < width*4 {
		return newError(ErrBadBuffer, "bc: stride shorter than one pixel row")
	}
	if len(rgba) < (height-1)*stride+width*4 {
		return newError(ErrBadBuffer, "bc: RGBA16 buffer shorter than image")
	}
	if len(blocks) < variant.BlocksByteSize(width, height) {
		return newError(ErrBadBuffer, "bc: block buffer too small for compressed output")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	settings := opts.bc6h()

	blockWidth := (width + 3) / 4
	blockHeight := (height + 3) / 4

	encodeRow := func(scratch *tileScratch, yy int) {
		for xx := 0; xx < blockWidth; xx++ {
			extractTileRGBA16(&scratch.hdr, rgba, width, height, stride, xx, yy)
			dst := blocks[(yy*blockWidth+xx)*16:]
			CompressBlockBC6H(scratch.hdr[:], 16, dst, &settings)
		}
	}

	return runRowBands(ctx, opts.workers(), blockHeight, encodeRow)
}

// runRowBands runs encodeRow for every block row, fanning out across up to
// workers goroutines. Each worker owns one scratch struct for its lifetime.
// Rows are claimed through an atomic counter, so idle workers steal remaining
// rows instead of waiting on a fixed split.
func runRowBands(ctx context.Context, workers, blockHeight int, encodeRow func(*tileScratch, int)) error {
	if workers > blockHeight {
		workers = blockHeight
	}

	if workers <= 1 {
		var scratch tileScratch
		for yy := 0; yy < blockHeight; yy++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			encodeRow(&scratch, yy)
		}
		return nil
	}

	var next int64
	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			var scratch tileScratch
			for {
				if ctx.Err() != nil {
					return
				}
				yy := int(atomic.AddInt64(&next, 1)) - 1
				if yy >= blockHeight {
					return
				}
				encodeRow(&scratch, yy)
			}
		}()
	}

	wg.Wait()
	return ctx.Err()
}
