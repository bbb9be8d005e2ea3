package cloth

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/cloth/internal/physics"
)

// buildIndices returns two triangles per grid quad:
//
//	(x,y) *---* (x+1,y)
//	      | / |
//	(x,y+1) *---* (x+1,y+1)
func buildIndices(width, height int) []uint32 {
	if width < 2 || height < 2 {
		return []uint32{}
	}
	out := make([]uint32, 0, (width-1)*(height-1)*6)
	for y := 0; y < height-1; y++ {
		for x := 0; x < width-1; x++ {
			tl := uint32(y*width + x)
			tr := tl + 1
			bl := tl + uint32(width)
			br := bl + 1
			out = append(out, tl, tr, bl, bl, tr, br)
		}
	}
	return out
}

// Indices returns the static triangle list for drawing the grid. Callers
// must not modify it.
func (m *Mesh) Indices() []uint32 { return m.indices }

// TriangleNormal returns the unnormalized normal of the triangle a, b, c.
func TriangleNormal(a, b, c mgl64.Vec3) mgl64.Vec3 {
	return b.Sub(a).Cross(c.Sub(a))
}

// forEachTriangle visits the two wind/shading triangles of every quad.
func (m *Mesh) forEachTriangle(fn func(a, b, c int)) {
	for y := 0; y < m.height-1; y++ {
		for x := 0; x < m.width-1; x++ {
			fn(m.index(x+1, y), m.index(x, y), m.index(x, y+1))
			fn(m.index(x+1, y+1), m.index(x+1, y), m.index(x, y+1))
		}
	}
}

// ComputeNormals rebuilds every particle's accumulated normal from the
// triangles it belongs to.
func (m *Mesh) ComputeNormals() {
	for i := range m.particles {
		m.particles[i].Normal = mgl64.Vec3{}
	}
	m.forEachTriangle(func(a, b, c int) {
		n := TriangleNormal(m.particles[a].Position, m.particles[b].Position, m.particles[c].Position)
		m.particles[a].AccumulateNormal(n)
		m.particles[b].AccumulateNormal(n)
		m.particles[c].AccumulateNormal(n)
	})
}

// Normals copies the normalized accumulated normals into dst. Call
// ComputeNormals first.
func (m *Mesh) Normals(dst []mgl64.Vec3) []mgl64.Vec3 {
	dst = dst[:0]
	for i := range m.particles {
		dst = append(dst, physics.Normalize(m.particles[i].Normal))
	}
	return dst
}
