package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"os"
	"strings"
	"time"

	"github.com/am-sokolov/go-bcenc/bc"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "encode":
		encodeCmd(os.Args[2:])
	case "info":
		infoCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  bcenc encode -in <image> -out <file.bctx> [-format bc1|bc2|bc3|bc4|bc5|bc6h|bc7] [-quality ultrafast|veryfast|fast|basic|slow|veryslow] [-alpha] [-z] [-workers N]")
	fmt.Fprintln(os.Stderr, "  bcenc info -in <file.bctx>")
}

func parseVariant(name string) (bc.Variant, bool) {
	switch strings.ToLower(name) {
	case "bc1":
		return bc.BC1, true
	case "bc2":
		return bc.BC2, true
	case "bc3":
		return bc.BC3, true
	case "bc4":
		return bc.BC4, true
	case "bc5":
		return bc.BC5, true
	case "bc6h":
		return bc.BC6H, true
	case "bc7":
		return bc.BC7, true
	}
	return 0, false
}

func bc6hSettingsFor(quality string) (bc.BC6HSettings, bool) {
	switch quality {
	case "veryfast", "ultrafast":
		return bc.BC6HSettingsVeryFast(), true
	case "fast":
		return bc.BC6HSettingsFast(), true
	case "basic":
		return bc.BC6HSettingsBasic(), true
	case "slow":
		return bc.BC6HSettingsSlow(), true
	case "veryslow":
		return bc.BC6HSettingsVerySlow(), true
	}
	return bc.BC6HSettings{}, false
}

func bc7SettingsFor(quality string, alpha bool) (bc.BC7Settings, bool) {
	if alpha {
		switch quality {
		case "ultrafast":
			return bc.BC7SettingsAlphaUltraFast(), true
		case "veryfast":
			return bc.BC7SettingsAlphaVeryFast(), true
		case "fast":
			return bc.BC7SettingsAlphaFast(), true
		case "basic":
			return bc.BC7SettingsAlphaBasic(), true
		case "slow", "veryslow":
			return bc.BC7SettingsAlphaSlow(), true
		}
		return bc.BC7Settings{}, false
	}
	switch quality {
	case "ultrafast":
		return bc.BC7SettingsOpaqueUltraFast(), true
	case "veryfast":
		return bc.BC7SettingsOpaqueVeryFast(), true
	case "fast":
		return bc.BC7SettingsOpaqueFast(), true
	case "basic":
		return bc.BC7SettingsOpaqueBasic(), true
	case "slow", "veryslow":
		return bc.BC7SettingsOpaqueSlow(), true
	}
	return bc.BC7Settings{}, false
}

func encodeCmd(args []string) {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	var (
		inPath   string
		outPath  string
		format   string
		quality  string
		alpha    bool
		compress bool
		workers  int
	)
	fs.StringVar(&inPath, "in", "", "input image (png, jpeg, bmp, tiff, webp)")
	fs.StringVar(&outPath, "out", "", "output container file")
	fs.StringVar(&format, "format", "bc7", "block compression format")
	fs.StringVar(&quality, "quality", "basic", "quality tier")
	fs.BoolVar(&alpha, "alpha", false, "use the alpha-aware BC7 tiers")
	fs.BoolVar(&compress, "z", false, "zlib-compress the block payload")
	fs.IntVar(&workers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")
	fs.Parse(args)

	if inPath == "" || outPath == "" {
		usage()
		os.Exit(2)
	}

	variant, ok := parseVariant(format)
	if !ok {
		fmt.Fprintf(os.Stderr, "bcenc: unknown format %q\n", format)
		os.Exit(2)
	}

	bc6hSettings, ok := bc6hSettingsFor(quality)
	if !ok {
		fmt.Fprintf(os.Stderr, "bcenc: unknown quality %q\n", quality)
		os.Exit(2)
	}
	bc7Settings, _ := bc7SettingsFor(quality, alpha)

	f, err := os.Open(inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bcenc:", err)
		os.Exit(1)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "bcenc: decode:", err)
		os.Exit(1)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	width := rgba.Rect.Dx()
	height := rgba.Rect.Dy()

	blocks := make([]byte, variant.BlocksByteSize(width, height))
	opts := &bc.EncodeOptions{
		BC6H:    &bc6hSettings,
		BC7:     &bc7Settings,
		Workers: workers,
	}

	start := time.Now()
	if err := bc.CompressRGBA8(context.Background(), variant, rgba.Pix, blocks, width, height, rgba.Stride, opts); err != nil {
		fmt.Fprintln(os.Stderr, "bcenc:", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	out, err := bc.WriteContainer(bc.Header{
		Variant: variant,
		Width:   uint32(width),
		Height:  uint32(height),
	}, blocks, compress)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bcenc:", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "bcenc:", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "bcenc: %s %dx%d -> %d block bytes in %v\n",
		variant, width, height, len(blocks), elapsed)
}

func infoCmd(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	var inPath string
	fs.StringVar(&inPath, "in", "", "input container file")
	fs.Parse(args)

	if inPath == "" {
		usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bcenc:", err)
		os.Exit(1)
	}

	h, blocks, err := bc.ParseContainer(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bcenc:", err)
		os.Exit(1)
	}

	blocksX, blocksY, total, err := h.BlockCount()
	if err != nil {
		fmt.Fprintln(os.Stderr, "bcenc:", err)
		os.Exit(1)
	}

	fmt.Printf("format:  %s\n", h.Variant)
	fmt.Printf("size:    %dx%d pixels, %dx%d blocks (%d total)\n", h.Width, h.Height, blocksX, blocksY, total)
	fmt.Printf("payload: %d bytes (%d per block)\n", len(blocks), h.Variant.BlockByteSize())
	fmt.Printf("block 0: %s\n", hex.EncodeToString(blocks[:h.Variant.BlockByteSize()]))
}
