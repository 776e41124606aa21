package render

import "image/color"

// fillPaletteRGBA converts cell values into RGBA pixels using a palette.
// Values past the end of the palette clamp to the last entry; an empty
// palette clears the buffer to transparent black.
func fillPaletteRGBA(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		for i := range cells {
			base := i * 4
			buf[base+0] = 0
			buf[base+1] = 0
			buf[base+2] = 0
			buf[base+3] = 0
		}
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		idx := int(c)
		if idx > last {
			idx = last
		}
		base := i * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// fillScalarRGBA renders a [0,1] scalar field as the provided tint with
// intensity-proportional alpha, for overlay heatmaps. Pixels are written
// premultiplied as ebiten expects.
func fillScalarRGBA(buf []byte, field []float32, tint color.RGBA) {
	const maxAlpha = 220
	for i, v := range field {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		w := v * maxAlpha / 255
		base := i * 4
		buf[base+0] = uint8(float32(tint.R)*w + 0.5)
		buf[base+1] = uint8(float32(tint.G)*w + 0.5)
		buf[base+2] = uint8(float32(tint.B)*w + 0.5)
		buf[base+3] = uint8(v*maxAlpha + 0.5)
	}
}
