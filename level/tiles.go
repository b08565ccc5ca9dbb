package level

import "image"

// miniRect returns the mini tile (col, row) of src, each mini tile being w by h.
func miniRect(src image.Rectangle, col, row, w, h int) image.Rectangle {
	x := src.Min.X + col*w
	y := src.Min.Y + row*h
	return image.Rect(x, y, x+w, y+h)
}

// invisible reports whether every pixel of r has zero alpha. Pixels outside
// the image count as transparent.
func invisible(img image.Image, r image.Rectangle) bool {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return true
	}

	if n, ok := img.(*image.NRGBA); ok {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			off := n.PixOffset(r.Min.X, y) + 3
			for x := r.Min.X; x < r.Max.X; x++ {
				if n.Pix[off] != 0 {
					return false
				}
				off += 4
			}
		}
		return true
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
				return false
			}
		}
	}
	return true
}
