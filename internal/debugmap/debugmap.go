// Package debugmap renders a top-down picture of a streaming manager's
// state: one square per cell, colored by lifecycle state.
package debugmap

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"voxstream/internal/streaming"
)

var (
	Background = color.RGBA{0x18, 0x18, 0x1c, 0xff}
	Wanted     = color.RGBA{0x55, 0x55, 0x60, 0xff}
	Pending    = color.RGBA{0xe0, 0xb0, 0x30, 0xff}
	Live       = color.RGBA{0x40, 0xb0, 0x50, 0xff}
	Center     = color.RGBA{0xe0, 0x40, 0x40, 0xff}
	Text       = color.RGBA{0xee, 0xee, 0xee, 0xff}
)

const headerHeight = 18

// Options control the picture layout.
type Options struct {
	// CellPixels is the side of one cell in pixels.
	CellPixels int
	// Extent is the half-width in cells around the center. Zero means radius+1.
	Extent int
	Title  string
}

// Render draws snap centered on its center cell.
func Render(snap streaming.Snapshot[streaming.Key], opts Options) *image.RGBA {
	if opts.CellPixels <= 0 {
		opts.CellPixels = 8
	}
	if opts.Extent <= 0 {
		opts.Extent = snap.Radius + 1
	}
	side := (2*opts.Extent + 1) * opts.CellPixels
	img := image.NewRGBA(image.Rect(0, 0, max(side, 160), side+headerHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: Background}, image.Point{}, draw.Src)

	fill := func(k streaming.Key, c color.Color) {
		dx := k.X - snap.Center.X + opts.Extent
		dz := k.Z - snap.Center.Z + opts.Extent
		if dx < 0 || dz < 0 || dx > 2*opts.Extent || dz > 2*opts.Extent {
			return
		}
		x0 := dx * opts.CellPixels
		y0 := headerHeight + dz*opts.CellPixels
		// Leave a one-pixel gutter so cells stay distinguishable.
		r := image.Rect(x0, y0, x0+opts.CellPixels-1, y0+opts.CellPixels-1)
		draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
	}

	for _, k := range snap.Wanted {
		fill(k, Wanted)
	}
	for _, k := range snap.Pending {
		fill(k, Pending)
	}
	for _, k := range snap.Live {
		fill(k, Live)
	}
	outline(img, snap.Center, snap.Center, opts)

	label := fmt.Sprintf("%s r=%d live=%d pending=%d", opts.Title, snap.Radius, len(snap.Live), len(snap.Pending))
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(Text),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(2, 13),
	}
	d.DrawString(label)
	return img
}

func outline(img *image.RGBA, k, center streaming.Key, opts Options) {
	x0 := (k.X - center.X + opts.Extent) * opts.CellPixels
	y0 := headerHeight + (k.Z-center.Z+opts.Extent)*opts.CellPixels
	x1 := x0 + opts.CellPixels - 1
	y1 := y0 + opts.CellPixels - 1
	for x := x0; x < x1; x++ {
		img.Set(x, y0, Center)
		img.Set(x, y1-1, Center)
	}
	for y := y0; y < y1; y++ {
		img.Set(x0, y, Center)
		img.Set(x1-1, y, Center)
	}
}

// WritePNG renders snap and encodes it to w.
func WritePNG(w io.Writer, snap streaming.Snapshot[streaming.Key], opts Options) error {
	if err := png.Encode(w, Render(snap, opts)); err != nil {
		return fmt.Errorf("debugmap: encode: %w", err)
	}
	return nil
}
