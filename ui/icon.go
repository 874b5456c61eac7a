package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"

	"fyne.io/fyne/v2"
	"github.com/disintegration/imaging"
	"github.com/ulmus/onweekdays/util/log"
)

const iconSize = 64

var (
	iconOnce sync.Once
	iconRes  fyne.Resource
)

// trayIcon returns the application icon: a framed picture with a sun over a hill.
func trayIcon() fyne.Resource {
	iconOnce.Do(func() {
		var buf bytes.Buffer
		if err := png.Encode(&buf, renderIcon(iconSize)); err != nil {
			log.Printf("Failed to encode tray icon: %v", err)
		}
		iconRes = fyne.NewStaticResource("onweekdays.png", buf.Bytes())
	})
	return iconRes
}

func renderIcon(size int) image.Image {
	frame := color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	sky := color.NRGBA{R: 0x9f, G: 0xd3, B: 0xf0, A: 0xff}
	sun := color.NRGBA{R: 0xf5, G: 0xc2, B: 0x42, A: 0xff}
	hill := color.NRGBA{R: 0x4c, G: 0x9a, B: 0x52, A: 0xff}

	border := size / 10
	img := imaging.New(size, size, frame)
	inner := imaging.New(size-2*border, size-2*border, sky)

	w, h := inner.Bounds().Dx(), inner.Bounds().Dy()
	sunX, sunY, sunR := w*2/3, h/3, h/6
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := x-sunX, y-sunY
			if dx*dx+dy*dy <= sunR*sunR {
				inner.Set(x, y, sun)
			}
			// Parabolic hill along the bottom.
			cx := x - w/3
			if y > h-h/3+cx*cx/(w/2+1) {
				inner.Set(x, y, hill)
			}
		}
	}

	return imaging.Paste(img, inner, image.Pt(border, border))
}
