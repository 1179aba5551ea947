package loaders

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/spaghettifunk/stratus/engine/scene"
)

type BinaryLoader struct{}

// ReadVertices fills dst with exactly mesh.Count*mesh.Stride bytes taken from
// mesh.Source at mesh.Offset.
func (bl *BinaryLoader) ReadVertices(mesh *scene.Mesh, dst []byte) error {
	size := int64(mesh.Count) * int64(mesh.Stride)
	if int64(len(dst)) != size {
		return fmt.Errorf("mesh %q: destination holds %d bytes, need %d", mesh.Name, len(dst), size)
	}

	f, err := os.Open(mesh.Source)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.ReadFull(io.NewSectionReader(f, mesh.Offset, size), dst); err != nil {
		return fmt.Errorf("mesh %q: reading %d bytes at offset %d of %s: %w", mesh.Name, size, mesh.Offset, mesh.Source, err)
	}
	return nil
}

// LoadSPIRV reads a compiled shader module as little-endian words.
func (bl *BinaryLoader) LoadSPIRV(path string) ([]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 || len(buf)%4 != 0 {
		return nil, fmt.Errorf("shader %s: size %d is not a positive multiple of 4", path, len(buf))
	}
	return bytesToBytecode(buf), nil
}

func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := range byteCode {
		byteCode[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return byteCode
}
