//go:build mage

package main

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

const (
	shaderDir  = "assets/shaders"
	meshDir    = "assets/meshes"
	textureDir = "assets/textures"
)

type Build mg.Namespace

// Compiles every GLSL stage under assets/shaders to <name>.<stage>.spv.
func (Build) Shaders() error {
	return buildShaders()
}

// Writes the meshes and textures referenced by assets/scenes/sample.toml.
func (Build) Sample() error {
	if err := writeCube(filepath.Join(meshDir, "cube.pnct")); err != nil {
		return err
	}
	return writeChecker(filepath.Join(textureDir, "checker.png"), 64, 8)
}

func buildShaders() error {
	var sources []string
	for _, pattern := range []string{"*.vert", "*.frag"} {
		matches, err := filepath.Glob(filepath.Join(shaderDir, pattern))
		if err != nil {
			return err
		}
		sources = append(sources, matches...)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no shaders found in %s", shaderDir)
	}
	for _, src := range sources {
		if _, err := executeCmd("glslc", withArgs(src, "-o", src+".spv"), withStream()); err != nil {
			return err
		}
	}
	return nil
}

// vertex matches the 48 byte position, normal, tangent, texcoord layout of scene meshes.
type vertex struct {
	Position [3]float32
	Normal   [3]float32
	Tangent  [4]float32
	TexCoord [2]float32
}

type face struct {
	normal, u, v [3]float32
}

// writeCube writes a unit cube centered on the origin as 36 non-indexed vertices.
func writeCube(path string) error {
	faces := []face{
		{normal: [3]float32{1, 0, 0}, u: [3]float32{0, 1, 0}, v: [3]float32{0, 0, 1}},
		{normal: [3]float32{-1, 0, 0}, u: [3]float32{0, -1, 0}, v: [3]float32{0, 0, 1}},
		{normal: [3]float32{0, 1, 0}, u: [3]float32{-1, 0, 0}, v: [3]float32{0, 0, 1}},
		{normal: [3]float32{0, -1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, 1}},
		{normal: [3]float32{0, 0, 1}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 1, 0}},
		{normal: [3]float32{0, 0, -1}, u: [3]float32{-1, 0, 0}, v: [3]float32{0, 1, 0}},
	}
	// Two counter-clockwise triangles per face, as (s, t) corners.
	corners := [6][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 0}, {1, 1}, {0, 1}}

	vertices := make([]vertex, 0, 36)
	for _, f := range faces {
		for _, c := range corners {
			var p [3]float32
			for i := 0; i < 3; i++ {
				p[i] = 0.5*f.normal[i] + (c[0]-0.5)*f.u[i] + (c[1]-0.5)*f.v[i]
			}
			vertices = append(vertices, vertex{
				Position: p,
				Normal:   f.normal,
				Tangent:  [4]float32{f.u[0], f.u[1], f.u[2], 1},
				TexCoord: c,
			})
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := binary.Write(out, binary.LittleEndian, vertices); err != nil {
		return err
	}
	fmt.Printf("wrote %d vertices to %s\n", len(vertices), path)
	return nil
}

func writeChecker(path string, size, cell int) error {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	light := color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	dark := color.RGBA{R: 0x44, G: 0x44, B: 0x55, A: 0xff}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetRGBA(x, y, light)
			} else {
				img.SetRGBA(x, y, dark)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := png.Encode(out, img); err != nil {
		return err
	}
	fmt.Printf("wrote %dx%d checker to %s\n", size, size, path)
	return nil
}
