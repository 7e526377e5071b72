package voxelmap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// sparseVoxel is one non-empty voxel entry in the sparse serialization form
// (spec.md §6, "Persistence"): "{ config, voxels: [{pos, ...}], objects: [...] }".
type sparseVoxel struct {
	Pos   [3]int `json:"pos"`
	Voxel Voxel  `json:"voxel"`
}

type serializedObject struct {
	ID       uint64 `json:"id"`
	Origin   [3]int `json:"origin"`
	Size     [3]int `json:"size"`
	Template Voxel  `json:"template"`
}

// sparseDoc is the authoritative on-disk form — a sparse list of non-empty
// voxels rather than a dense dump (spec.md §4.2, "Serialization").
type sparseDoc struct {
	Config  Config              `json:"config"`
	Voxels  []sparseVoxel       `json:"voxels"`
	Objects []serializedObject  `json:"objects"`
}

// MarshalSparseJSON serializes the map to its authoritative sparse JSON
// form: every non-empty voxel plus the large-object list.
func (m *Voxel3DMap) MarshalSparseJSON() ([]byte, error) {
	doc := sparseDoc{Config: m.cfg}
	for z := 0; z < m.cfg.Depth; z++ {
		for y := 0; y < m.cfg.Height; y++ {
			for x := 0; x < m.cfg.Width; x++ {
				v := m.voxels[m.index(x, y, z)]
				if v.IsEmpty() {
					continue
				}
				doc.Voxels = append(doc.Voxels, sparseVoxel{Pos: [3]int{x, y, z}, Voxel: v})
			}
		}
	}
	for _, o := range m.objects {
		doc.Objects = append(doc.Objects, serializedObject{
			ID: o.ID, Origin: o.Origin, Size: o.Size, Template: o.Template,
		})
	}
	return json.Marshal(doc)
}

// UnmarshalSparseJSON builds and returns a new map holding the voxels and
// objects encoded in data's sparse form.
func UnmarshalSparseJSON(data []byte) (*Voxel3DMap, error) {
	var doc sparseDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("voxelmap: unmarshal sparse json: %w", err)
	}

	m := New(doc.Config)
	for _, sv := range doc.Voxels {
		if !m.inBounds(sv.Pos[0], sv.Pos[1], sv.Pos[2]) {
			continue
		}
		m.voxels[m.index(sv.Pos[0], sv.Pos[1], sv.Pos[2])] = sv.Voxel
	}
	maxID := uint64(0)
	for _, so := range doc.Objects {
		m.objects = append(m.objects, LargeObject{
			ID: so.ID, Origin: so.Origin, Size: so.Size, Template: so.Template,
		})
		if so.ID > maxID {
			maxID = so.ID
		}
	}
	if maxID >= m.nextObjectID {
		m.nextObjectID = maxID + 1
	}
	return m, nil
}

// denseDoc is the debug-only dense form: one full layer array per floor.
type denseDoc struct {
	Config Config     `json:"config"`
	Layers [][]Voxel  `json:"layers"` // Layers[z][x + y*W]
}

// MarshalDenseJSON serializes every voxel, including empty ones, as one
// flat array per floor — for debugging only; the sparse form is
// authoritative for storage (spec.md §4.2).
func (m *Voxel3DMap) MarshalDenseJSON() ([]byte, error) {
	doc := denseDoc{Config: m.cfg}
	doc.Layers = make([][]Voxel, m.cfg.Depth)
	for z := 0; z < m.cfg.Depth; z++ {
		layer := make([]Voxel, m.cfg.Width*m.cfg.Height)
		for y := 0; y < m.cfg.Height; y++ {
			for x := 0; x < m.cfg.Width; x++ {
				layer[x+y*m.cfg.Width] = m.voxels[m.index(x, y, z)]
			}
		}
		doc.Layers[z] = layer
	}
	return json.MarshalIndent(doc, "", "  ")
}

// SaveSparseJSON writes the map's sparse form to path, writing to a
// temporary file and renaming on success so a crash never leaves a
// partial write (spec.md §7, "Transient I/O").
func (m *Voxel3DMap) SaveSparseJSON(path string) error {
	data, err := m.MarshalSparseJSON()
	if err != nil {
		return err
	}
	return atomicWrite(path, data)
}

// LoadSparseJSON reads and parses a map previously written by
// SaveSparseJSON.
func LoadSparseJSON(path string) (*Voxel3DMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("voxelmap: read %s: %w", path, err)
	}
	return UnmarshalSparseJSON(data)
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".voxelmap-tmp-*")
	if err != nil {
		return fmt.Errorf("voxelmap: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("voxelmap: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("voxelmap: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("voxelmap: rename temp file: %w", err)
	}
	return nil
}
