// Package cloth simulates a hanging cloth as a grid of Verlet particles
// held together by structural, shear and bending distance constraints.
package cloth

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidDimensions is returned for negative particle counts.
var ErrInvalidDimensions = errors.New("cloth: invalid mesh dimensions")

// pinnedCorner is the number of particles clipped at each top corner.
const pinnedCorner = 3

// minParallelChunk keeps tiny meshes from paying goroutine overhead.
const minParallelChunk = 256

// Mesh is a row-major grid of particles plus the constraints between them.
type Mesh struct {
	width       int // Particles per row
	height      int // Rows
	particles   []Particle
	constraints []Constraint
	indices     []uint32
}

// NewMesh builds a width x height grid of particles spanning sizeX along +x
// and sizeY along -y from origin. The first and last three particles of the
// top row are pinned. Counts of 0 or 1 are allowed and simply produce no
// constraints along that axis.
func NewMesh(origin mgl64.Vec3, sizeX, sizeY float64, width, height int) (*Mesh, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	m := &Mesh{
		width:     width,
		height:    height,
		particles: make([]Particle, 0, width*height),
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pos := mgl64.Vec3{
				float64(x) * sizeX / float64(width),
				float64(y) * -sizeY / float64(height),
				0,
			}.Add(origin)
			m.particles = append(m.particles, NewParticle(pos))
		}
	}

	m.buildConstraints(1)
	m.buildConstraints(2)
	m.indices = buildIndices(width, height)

	for i := 0; i < pinnedCorner; i++ {
		m.Pin(i, 0)
		m.Pin(width-1-i, 0)
	}

	return m, nil
}

// buildConstraints links every particle to its right, down, diagonal and
// anti-diagonal neighbor at the given hop distance, walking columns outer
// and rows inner. Relaxation is order sensitive, so this order must stay
// fixed.
func (m *Mesh) buildConstraints(hop int) {
	for x := 0; x < m.width; x++ {
		for y := 0; y < m.height; y++ {
			right := x+hop < m.width
			down := y+hop < m.height
			if right {
				m.link(x, y, x+hop, y)
			}
			if down {
				m.link(x, y, x, y+hop)
			}
			if right && down {
				m.link(x, y, x+hop, y+hop)
				m.link(x+hop, y, x, y+hop)
			}
		}
	}
}

func (m *Mesh) link(x1, y1, x2, y2 int) {
	m.constraints = append(m.constraints, NewConstraint(m.particles, m.index(x1, y1), m.index(x2, y2)))
}

func (m *Mesh) index(x, y int) int {
	return y*m.width + x
}

func (m *Mesh) inBounds(x, y int) bool {
	return x >= 0 && x < m.width && y >= 0 && y < m.height
}

// Width returns the number of particles per row.
func (m *Mesh) Width() int { return m.width }

// Height returns the number of rows.
func (m *Mesh) Height() int { return m.height }

// Len returns the number of particles.
func (m *Mesh) Len() int { return len(m.particles) }

// Particle returns the particle at grid coordinate (x, y), or nil when the
// coordinate is outside the grid.
func (m *Mesh) Particle(x, y int) *Particle {
	if !m.inBounds(x, y) {
		return nil
	}
	return &m.particles[m.index(x, y)]
}

// Particles exposes the particle arena in row-major order.
func (m *Mesh) Particles() []Particle { return m.particles }

// Constraints exposes the constraints in relaxation order.
func (m *Mesh) Constraints() []Constraint { return m.constraints }

// Pin makes the particle at (x, y) immovable. Out of range coordinates are ignored.
func (m *Mesh) Pin(x, y int) {
	if p := m.Particle(x, y); p != nil {
		p.Movable = false
	}
}

// Unpin releases the particle at (x, y). Its implicit velocity is reset so
// it does not jump on the next integration.
func (m *Mesh) Unpin(x, y int) {
	if p := m.Particle(x, y); p != nil {
		p.Movable = true
		p.OldPosition = p.Position
	}
}

// PinRow pins every particle of row y.
func (m *Mesh) PinRow(y int) {
	for x := 0; x < m.width; x++ {
		m.Pin(x, y)
	}
}

// AddForce adds f to every particle.
func (m *Mesh) AddForce(f mgl64.Vec3) {
	for i := range m.particles {
		m.particles[i].AddForce(f)
	}
}

// Relax runs the given number of sequential passes over every constraint.
// Adjacent constraints share particles, so a pass cannot be split.
func (m *Mesh) Relax(iterations int) {
	for i := 0; i < iterations; i++ {
		for _, c := range m.constraints {
			c.Satisfy(m.particles)
		}
	}
}

// Integrate advances every particle once.
func (m *Mesh) Integrate(cfg StepConfig) {
	m.parallel(cfg.Workers, func(ps []Particle) int {
		for i := range ps {
			ps[i].Integrate(cfg.Damping, cfg.TimeStep2)
		}
		return 0
	})
}

// Update relaxes the constraints and then integrates. Forces for the step
// must already have been added.
func (m *Mesh) Update(cfg StepConfig) {
	m.Relax(cfg.Iterations)
	m.Integrate(cfg)
}

// Collide pushes every particle inside s out to its surface and returns
// how many particles were moved.
func (m *Mesh) Collide(s Sphere, workers int) int {
	return m.parallel(workers, func(ps []Particle) int {
		moved := 0
		for i := range ps {
			if s.Resolve(&ps[i]) {
				moved++
			}
		}
		return moved
	})
}

// parallel splits the particle arena into contiguous chunks and sums the
// results of fn. fn must only touch the particles it is given.
func (m *Mesh) parallel(workers int, fn func(ps []Particle) int) int {
	n := len(m.particles)
	if workers <= 1 || n < workers*minParallelChunk {
		return fn(m.particles)
	}

	var total atomic.Int64
	var g errgroup.Group
	g.SetLimit(workers)
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		part := m.particles[start:min(start+chunk, n)]
		g.Go(func() error {
			total.Add(int64(fn(part)))
			return nil
		})
	}
	_ = g.Wait()
	return int(total.Load())
}

// Positions copies the particle positions into dst in row-major order,
// growing it as needed.
func (m *Mesh) Positions(dst []mgl64.Vec3) []mgl64.Vec3 {
	dst = dst[:0]
	for i := range m.particles {
		dst = append(dst, m.particles[i].Position)
	}
	return dst
}
