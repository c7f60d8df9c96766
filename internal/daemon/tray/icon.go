package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// iconData is the tray icon, a 22x22 PNG rendered at init so the binary
// carries no asset files. A filled circle on transparent background works
// as a macOS template icon.
var iconData = buildIcon()

func buildIcon() []byte {
	const size = 22
	const r = 8
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	cx, cy := size/2, size/2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.SetNRGBA(x, y, color.NRGBA{A: 255})
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		// Encoding an in-memory image cannot fail in practice.
		panic(err)
	}
	return buf.Bytes()
}
