package scene

import (
	"fmt"

	"github.com/spaghettifunk/stratus/engine/core"
)

// Validate checks every cross reference and that the node graph reachable
// from the roots has no cycles.
func (s *Scene) Validate() error {
	for i := range s.Materials {
		if t := s.Materials[i].Texture; t != NoIndex && (t < 0 || t >= len(s.Textures)) {
			return fmt.Errorf("%w: material %q references texture %d of %d", core.ErrInvalidScene, s.Materials[i].Name, t, len(s.Textures))
		}
	}
	for i := range s.Meshes {
		m := &s.Meshes[i]
		if mat := m.Material; mat != NoIndex && (mat < 0 || mat >= len(s.Materials)) {
			return fmt.Errorf("%w: mesh %q references material %d of %d", core.ErrInvalidScene, m.Name, mat, len(s.Materials))
		}
		if m.Stride == 0 {
			return fmt.Errorf("%w: mesh %q has a zero vertex stride", core.ErrInvalidScene, m.Name)
		}
	}
	for i := range s.Nodes {
		n := &s.Nodes[i]
		if n.Mesh != NoIndex && (n.Mesh < 0 || n.Mesh >= len(s.Meshes)) {
			return fmt.Errorf("%w: node %q references mesh %d of %d", core.ErrInvalidScene, n.Name, n.Mesh, len(s.Meshes))
		}
		for _, c := range n.Children {
			if c < 0 || c >= len(s.Nodes) {
				return fmt.Errorf("%w: node %q references child %d of %d", core.ErrInvalidScene, n.Name, c, len(s.Nodes))
			}
		}
	}

	// A node may be shared by several parents or roots and is then drawn once
	// per path; only a cycle is an error.
	const (
		unvisited = iota
		onPath
		done
	)
	state := make([]uint8, len(s.Nodes))
	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case onPath:
			return fmt.Errorf("%w: node %q is part of a cycle", core.ErrInvalidScene, s.Nodes[i].Name)
		case done:
			return nil
		}
		state[i] = onPath
		for _, c := range s.Nodes[i].Children {
			if err := visit(c); err != nil {
				return err
			}
		}
		state[i] = done
		return nil
	}
	for _, r := range s.Roots {
		if r < 0 || r >= len(s.Nodes) {
			return fmt.Errorf("%w: root %d out of %d nodes", core.ErrInvalidScene, r, len(s.Nodes))
		}
		if err := visit(r); err != nil {
			return err
		}
	}
	return nil
}
