package loaders

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"github.com/spaghettifunk/stratus/engine/core"
	"github.com/spaghettifunk/stratus/engine/math"
	"github.com/spaghettifunk/stratus/engine/scene"
	"github.com/spaghettifunk/stratus/engine/systems"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type TextureLoader struct{}

// Load decodes an image file (png, jpeg, bmp, tiff, webp) into tightly packed RGBA8.
func (tl *TextureLoader) Load(path string) (*image.RGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	core.LogDebug("decoded %s texture %s (%dx%d)", format, path, img.Bounds().Dx(), img.Bounds().Dy())

	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == 4*rgba.Rect.Dx() && rgba.Rect.Min == (image.Point{}) {
		return rgba, nil
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba, nil
}

// ConstantRGBA is a 1x1 opaque texel of the given color, channels clamped to [0, 1].
func ConstantRGBA(c math.Vec3) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{
		R: uint8(math.Clamp(c.X(), 0, 1) * 255),
		G: uint8(math.Clamp(c.Y(), 0, 1) * 255),
		B: uint8(math.Clamp(c.Z(), 0, 1) * 255),
		A: 255,
	})
	return img
}

// LoadAll produces one image per scene texture, decoding files on a worker pool.
func (tl *TextureLoader) LoadAll(textures []scene.Texture, workers int) ([]*image.RGBA, error) {
	out := make([]*image.RGBA, len(textures))
	if workers < 1 {
		workers = 1
	}
	js, err := systems.NewJobSystem(workers, len(textures))
	if err != nil {
		return nil, err
	}

	var mutex sync.Mutex
	var firstErr error
	for i := range textures {
		i := i
		t := &textures[i]
		if t.IsConstant() {
			out[i] = ConstantRGBA(t.Color)
			continue
		}
		js.Submit(systems.JobTask{
			Run: func() error {
				img, err := tl.Load(t.Path)
				if err != nil {
					return fmt.Errorf("texture %q: %w", t.Name, err)
				}
				out[i] = img
				return nil
			},
			OnFailure: func(err error) {
				mutex.Lock()
				defer mutex.Unlock()
				if firstErr == nil {
					firstErr = err
				}
			},
		})
	}

	if err := js.Shutdown(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
