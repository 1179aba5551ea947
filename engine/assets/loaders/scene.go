package loaders

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/stratus/engine/core"
	"github.com/spaghettifunk/stratus/engine/math"
	"github.com/spaghettifunk/stratus/engine/renderer/metadata"
	"github.com/spaghettifunk/stratus/engine/scene"
)

type vec3 = [3]float32

type manifest struct {
	Roots     []string           `toml:"roots"`
	Lighting  *manifestLighting  `toml:"lighting"`
	Textures  []manifestTexture  `toml:"textures"`
	Materials []manifestMaterial `toml:"materials"`
	Meshes    []manifestMesh     `toml:"meshes"`
	Nodes     []manifestNode     `toml:"nodes"`
}

type manifestLighting struct {
	SkyDirection *vec3 `toml:"sky_direction"`
	SkyEnergy    *vec3 `toml:"sky_energy"`
	SunDirection *vec3 `toml:"sun_direction"`
	SunEnergy    *vec3 `toml:"sun_energy"`
}

type manifestTexture struct {
	Name  string `toml:"name"`
	Path  string `toml:"path"`
	Color *vec3  `toml:"color"`
}

type manifestMaterial struct {
	Name    string `toml:"name"`
	Texture string `toml:"texture"`
}

type manifestMesh struct {
	Name     string `toml:"name"`
	Source   string `toml:"source"`
	Offset   int64  `toml:"offset"`
	Count    uint32 `toml:"count"`
	Stride   uint32 `toml:"stride"`
	Material string `toml:"material"`
}

type manifestNode struct {
	Name        string      `toml:"name"`
	Translation *vec3       `toml:"translation"`
	Rotation    *[4]float32 `toml:"rotation"`
	Scale       *vec3       `toml:"scale"`
	Children    []string    `toml:"children"`
	Mesh        string      `toml:"mesh"`
}

// SceneLoader reads TOML scene manifests. Textures and meshes are referenced
// by name; relative file paths resolve against the manifest directory.
type SceneLoader struct{}

func (sl *SceneLoader) Load(path string) (*scene.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := ParseScene(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("loading scene %s: %w", path, err)
	}
	return s, nil
}

func ParseScene(r io.Reader, baseDir string) (*scene.Scene, error) {
	var m manifest
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&m); err != nil {
		return nil, err
	}

	s := &scene.Scene{
		Lighting: scene.DefaultLighting(),
	}
	if m.Lighting != nil {
		setVec3(&s.Lighting.SkyDirection, m.Lighting.SkyDirection)
		setVec3(&s.Lighting.SkyEnergy, m.Lighting.SkyEnergy)
		setVec3(&s.Lighting.SunDirection, m.Lighting.SunDirection)
		setVec3(&s.Lighting.SunEnergy, m.Lighting.SunEnergy)
		s.Lighting.SkyDirection = s.Lighting.SkyDirection.Normalize()
		s.Lighting.SunDirection = s.Lighting.SunDirection.Normalize()
	}

	textures, err := indexNames("texture", len(m.Textures), func(i int) string { return m.Textures[i].Name })
	if err != nil {
		return nil, err
	}
	for _, t := range m.Textures {
		tex := scene.Texture{Name: t.Name, Color: math.NewVec3(1, 1, 1)}
		switch {
		case t.Path != "" && t.Color != nil:
			return nil, fmt.Errorf("%w: texture %q sets both path and color", core.ErrInvalidScene, t.Name)
		case t.Path != "":
			tex.Path = resolve(baseDir, t.Path)
		case t.Color != nil:
			tex.Color = math.Vec3(*t.Color)
		}
		s.Textures = append(s.Textures, tex)
	}

	materials, err := indexNames("material", len(m.Materials), func(i int) string { return m.Materials[i].Name })
	if err != nil {
		return nil, err
	}
	for _, mt := range m.Materials {
		tex, err := lookup("texture", textures, mt.Texture)
		if err != nil {
			return nil, err
		}
		s.Materials = append(s.Materials, scene.Material{Name: mt.Name, Texture: tex})
	}

	meshes, err := indexNames("mesh", len(m.Meshes), func(i int) string { return m.Meshes[i].Name })
	if err != nil {
		return nil, err
	}
	for _, ms := range m.Meshes {
		mat, err := lookup("material", materials, ms.Material)
		if err != nil {
			return nil, err
		}
		stride := ms.Stride
		if stride == 0 {
			stride = metadata.PosNorTanTexVertexSize
		}
		if stride != metadata.PosNorTanTexVertexSize {
			return nil, fmt.Errorf("%w: mesh %q stride %d, expected %d", core.ErrInvalidScene, ms.Name, stride, metadata.PosNorTanTexVertexSize)
		}
		s.Meshes = append(s.Meshes, scene.Mesh{
			Name:     ms.Name,
			Source:   resolve(baseDir, ms.Source),
			Offset:   ms.Offset,
			Count:    ms.Count,
			Stride:   stride,
			Material: mat,
		})
	}

	nodes, err := indexNames("node", len(m.Nodes), func(i int) string { return m.Nodes[i].Name })
	if err != nil {
		return nil, err
	}
	for _, n := range m.Nodes {
		node := scene.Node{
			Name:     n.Name,
			Rotation: math.NewQuatIdentity(),
			Scale:    math.NewVec3(1, 1, 1),
		}
		setVec3(&node.Translation, n.Translation)
		setVec3(&node.Scale, n.Scale)
		if n.Rotation != nil {
			node.Rotation = math.NewQuat(n.Rotation[0], n.Rotation[1], n.Rotation[2], n.Rotation[3])
		}
		if node.Mesh, err = lookup("mesh", meshes, n.Mesh); err != nil {
			return nil, err
		}
		for _, c := range n.Children {
			idx, err := lookup("node", nodes, c)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, idx)
		}
		s.Nodes = append(s.Nodes, node)
	}

	for _, r := range m.Roots {
		idx, err := lookup("node", nodes, r)
		if err != nil {
			return nil, err
		}
		if idx == scene.NoIndex {
			return nil, fmt.Errorf("%w: empty root name", core.ErrInvalidScene)
		}
		s.Roots = append(s.Roots, idx)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func indexNames(kind string, n int, name func(int) string) (map[string]int, error) {
	out := make(map[string]int, n)
	for i := 0; i < n; i++ {
		nm := name(i)
		if nm == "" {
			return nil, fmt.Errorf("%w: %s %d has no name", core.ErrInvalidScene, kind, i)
		}
		if _, dup := out[nm]; dup {
			return nil, fmt.Errorf("%w: duplicate %s name %q", core.ErrInvalidScene, kind, nm)
		}
		out[nm] = i
	}
	return out, nil
}

// lookup maps an empty reference to scene.NoIndex.
func lookup(kind string, names map[string]int, name string) (int, error) {
	if name == "" {
		return scene.NoIndex, nil
	}
	idx, ok := names[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown %s %q", core.ErrInvalidScene, kind, name)
	}
	return idx, nil
}

func setVec3(dst *math.Vec3, src *vec3) {
	if src != nil {
		*dst = math.Vec3(*src)
	}
}

func resolve(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
