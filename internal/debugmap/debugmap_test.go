package debugmap

import (
	"bytes"
	"image/png"
	"testing"

	"voxstream/internal/streaming"
)

func TestRenderColorsCells(t *testing.T) {
	snap := streaming.Snapshot[streaming.Key]{
		Center:  streaming.Key{X: 10, Z: -4},
		Radius:  1,
		Wanted:  []streaming.Key{{X: 10, Z: -4}, {X: 11, Z: -4}, {X: 9, Z: -4}},
		Pending: []streaming.Key{{X: 11, Z: -4}},
		Live:    []streaming.Key{{X: 9, Z: -4}},
	}
	opts := Options{CellPixels: 10, Title: "chunks"}
	img := Render(snap, opts)

	// Extent defaults to radius+1 = 2, so the center cell is column 2.
	at := func(dx, dz int) (uint8, uint8, uint8) {
		x := (2+dx)*10 + 5
		y := headerHeight + (2+dz)*10 + 5
		c := img.RGBAAt(x, y)
		return c.R, c.G, c.B
	}
	if r, g, b := at(1, 0); r != Pending.R || g != Pending.G || b != Pending.B {
		t.Errorf("pending cell has color %d,%d,%d", r, g, b)
	}
	if r, g, b := at(-1, 0); r != Live.R || g != Live.G || b != Live.B {
		t.Errorf("live cell has color %d,%d,%d", r, g, b)
	}
	if r, g, b := at(0, 1); r != Background.R || g != Background.G || b != Background.B {
		t.Errorf("unwanted cell has color %d,%d,%d", r, g, b)
	}
	if c := img.RGBAAt(2*10, headerHeight+2*10); c != Center {
		t.Errorf("center outline missing, got %v", c)
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	snap := streaming.Snapshot[streaming.Key]{Radius: 3, Wanted: streaming.WantedSet(streaming.Key{}, 3)}
	if err := WritePNG(&buf, snap, Options{}); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dy() != (2*4+1)*8+headerHeight {
		t.Errorf("unexpected height %d", b.Dy())
	}
}
