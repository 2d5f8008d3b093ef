package scene

import (
	"encoding/binary"
	"fmt"
)

// EncodedScene is a scene packed into the buffers of bind group 3.
type EncodedScene struct {
	// Spheres holds SphereCount GPUSphere records.
	Spheres []byte

	// Materials holds MaterialCount GPUMaterial records.
	Materials []byte

	// Textures holds TexelCount texels.
	Textures []byte

	// LightIndices holds the little-endian u32 indices in Lights.
	LightIndices []byte

	SphereCount   int
	MaterialCount int
	TexelCount    int

	// Lights are the indices of the spheres with an emissive material, ascending.
	Lights []uint32

	// Descriptors are the arena descriptors in append order.
	Descriptors []TextureDescriptor
}

func (s *scene) Encode() (*EncodedScene, error) {
	total := 0
	for i, m := range s.materials {
		for _, t := range textures(m) {
			if err := t.validate(); err != nil {
				return nil, fmt.Errorf("material %d: %w", i, err)
			}
			total += t.TexelCount()
		}
	}

	arena := NewTextureArena(total)
	out := &EncodedScene{
		Materials:     make([]byte, 0, len(s.materials)*32),
		Spheres:       make([]byte, 0, len(s.spheres)*32),
		MaterialCount: len(s.materials),
		SphereCount:   len(s.spheres),
	}

	for _, m := range s.materials {
		gm := encodeMaterial(m, arena)
		out.Materials = append(out.Materials, gm.Marshal()...)
	}
	if arena.Len() != total {
		panic(fmt.Sprintf("texture arena holds %d texels, expected %d", arena.Len(), total))
	}
	out.Textures = arena.Bytes()
	out.TexelCount = arena.Len()
	out.Descriptors = arena.Descriptors()

	for i, sp := range s.spheres {
		gs := GPUSphere{
			Center:      [4]float32{sp.Center.X(), sp.Center.Y(), sp.Center.Z(), 1},
			Radius:      sp.Radius,
			MaterialIdx: sp.MaterialIdx,
		}
		out.Spheres = append(out.Spheres, gs.Marshal()...)
		if _, ok := s.materials[sp.MaterialIdx].(*Emissive); ok {
			out.Lights = append(out.Lights, uint32(i))
		}
	}
	out.LightIndices = make([]byte, 0, len(out.Lights)*LightSize)
	for _, l := range out.Lights {
		out.LightIndices = binary.LittleEndian.AppendUint32(out.LightIndices, l)
	}

	return out, nil
}

// encodeMaterial appends the material's textures to the arena and returns its GPU record.
func encodeMaterial(m Material, arena *TextureArena) GPUMaterial {
	switch mat := m.(type) {
	case *Lambertian:
		return GPUMaterial{ID: MaterialTypeLambertian, Desc1: arena.Append(mat.Albedo), Desc2: EmptyTextureDescriptor}
	case *Metal:
		return GPUMaterial{ID: MaterialTypeMetal, Desc1: arena.Append(mat.Albedo), Desc2: EmptyTextureDescriptor, X: mat.Fuzz}
	case *Dielectric:
		return GPUMaterial{ID: MaterialTypeDielectric, Desc1: EmptyTextureDescriptor, Desc2: EmptyTextureDescriptor, X: mat.RefractionIndex}
	case *Checkerboard:
		even := arena.Append(mat.Even)
		odd := arena.Append(mat.Odd)
		return GPUMaterial{ID: MaterialTypeCheckerboard, Desc1: even, Desc2: odd}
	case *Emissive:
		return GPUMaterial{ID: MaterialTypeEmissive, Desc1: arena.Append(mat.Emit), Desc2: EmptyTextureDescriptor}
	default:
		panic(fmt.Sprintf("unknown material variant %T", m))
	}
}
