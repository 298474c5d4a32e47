package render

import (
	"image"
	"image/color"
	imagedraw "image/draw"
	"math"
)

type pointF struct{ X, Y float64 }

// blendPixel composites clr over the pixel at (x, y) using straight alpha.
func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	sr, sg, sb, sa := clr.RGBA()
	if sa == 0 {
		return
	}
	a := float64(sa) / 0xffff
	dst := img.RGBAAt(x, y)
	mix := func(src uint32, d uint8) uint8 {
		// both sides premultiplied
		return clampByte(float64(src)/0xffff*255 + float64(d)*(1-a))
	}
	img.SetRGBA(x, y, color.RGBA{
		R: mix(sr, dst.R),
		G: mix(sg, dst.G),
		B: mix(sb, dst.B),
		A: clampByte(a*255 + float64(dst.A)*(1-a)),
	})
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}

func fillRect(img *image.RGBA, r image.Rectangle, clr color.Color) {
	if r.Empty() {
		return
	}
	imagedraw.Draw(img, r, image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawDisc(img *image.RGBA, c image.Point, radius int, clr color.Color) {
	r2 := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= r2 {
				blendPixel(img, c.X+x, c.Y+y, clr)
			}
		}
	}
}

// roundedPanel fills r with corners of the given radius. Each pixel is
// painted once so translucent colours stay even.
func roundedPanel(img *image.RGBA, r image.Rectangle, radius int, clr color.Color) {
	if r.Empty() {
		return
	}
	radius = min(max(radius, 0), r.Dx()/2, r.Dy()/2)
	if radius == 0 {
		fillRect(img, r, clr)
		return
	}
	r2 := radius * radius
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cx, cy := x, y
			switch {
			case x < r.Min.X+radius:
				cx = r.Min.X + radius
			case x >= r.Max.X-radius:
				cx = r.Max.X - radius - 1
			}
			switch {
			case y < r.Min.Y+radius:
				cy = r.Min.Y + radius
			case y >= r.Max.Y-radius:
				cy = r.Max.Y - radius - 1
			}
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r2 {
				blendPixel(img, x, y, clr)
			}
		}
	}
}

func fillTriangle(img *image.RGBA, a, b, c pointF, clr color.Color) {
	minX := int(math.Floor(min(a.X, b.X, c.X)))
	maxX := int(math.Ceil(max(a.X, b.X, c.X)))
	minY := int(math.Floor(min(a.Y, b.Y, c.Y)))
	maxY := int(math.Ceil(max(a.Y, b.Y, c.Y)))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if inTriangle(float64(x)+0.5, float64(y)+0.5, a, b, c) {
				blendPixel(img, x, y, clr)
			}
		}
	}
}

func inTriangle(x, y float64, a, b, c pointF) bool {
	d := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if d == 0 {
		return false
	}
	l1 := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / d
	l2 := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / d
	return l1 >= 0 && l2 >= 0 && 1-l1-l2 >= 0
}

// drawArrow draws a shaft and head from the centre of one cell to another.
func drawArrow(img *image.RGBA, from, to image.Rectangle, clr color.Color) {
	cell := float64(from.Dx())
	sx, sy := float64(from.Min.X)+cell/2, float64(from.Min.Y)+cell/2
	ex, ey := float64(to.Min.X)+cell/2, float64(to.Min.Y)+cell/2
	length := math.Hypot(ex-sx, ey-sy)
	if length == 0 {
		return
	}
	ux, uy := (ex-sx)/length, (ey-sy)/length
	px, py := -uy, ux

	shaft := length - cell*0.45
	if shaft < cell*0.35 {
		shaft = length * 0.6
	}
	half := cell * 0.16
	head := cell * 0.3
	bx, by := sx+ux*shaft, sy+uy*shaft

	p0 := pointF{sx - px*half, sy - py*half}
	p1 := pointF{sx + px*half, sy + py*half}
	p2 := pointF{bx + px*half, by + py*half}
	p3 := pointF{bx - px*half, by - py*half}
	fillTriangle(img, p0, p1, p2, clr)
	fillTriangle(img, p0, p2, p3, clr)
	fillTriangle(img, pointF{ex, ey}, pointF{bx - px*head, by - py*head}, pointF{bx + px*head, by + py*head}, clr)
}
