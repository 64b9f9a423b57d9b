package report

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"log/slog"
	"os"
	"time"
)

// AssembleGIF combines PNG frames, in the given order, into a GIF that
// loops forever with style.FrameDelay between frames.
func AssembleGIF(frames []string, outPath string, style Style) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to assemble")
	}

	anim := &gif.GIF{LoopCount: 0}
	delay := int(style.FrameDelay / (10 * time.Millisecond))

	for _, path := range frames {
		img, err := readPNG(path)
		if err != nil {
			return err
		}
		anim.Image = append(anim.Image, toPaletted(img))
		anim.Delay = append(anim.Delay, delay)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create gif: %w", err)
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close gif: %w", err)
	}

	slog.Info("Saved gif", "path", outPath, "frames", len(frames))
	return nil
}

func readPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %s: %w", path, err)
	}
	return img, nil
}

// toPaletted maps img onto the Plan 9 palette. Plot frames are flat colours,
// so nearest-colour mapping without dithering keeps markers crisp.
func toPaletted(img image.Image) *image.Paletted {
	b := img.Bounds()
	dst := image.NewPaletted(b, palette.Plan9)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}
