package dynamo

import (
	"fmt"
	"runtime"
)

// DefaultG is the gravitational constant in m^3 kg^-1 s^-2.
const DefaultG = 6.67430e-11

// minParallelRows is the smallest row chunk handed to a force worker.
const minParallelRows = 16

// Diagnostics is a snapshot of the conserved quantities of a System.
type Diagnostics struct {
	Kinetic         float64
	Potential       float64
	Total           float64
	Momentum        Vector
	AngularMomentum Vector
}

// System owns a set of bodies keyed by id, kept in insertion order.
// A System is not safe for concurrent use.
type System struct {
	g       float64
	workers int
	order   []string
	bodies  map[string]*Body

	partials [][]Vector
}

type Option func(*System)

// WithG sets the gravitational constant.
func WithG(g float64) Option {
	return func(s *System) { s.g = g }
}

// WithWorkers enables the parallel force loop with n goroutines.
// n <= 0 selects runtime.NumCPU(); n == 1 keeps the serial loop.
func WithWorkers(n int) Option {
	return func(s *System) {
		if n <= 0 {
			n = runtime.NumCPU()
		}
		s.workers = n
	}
}

func NewSystem(opts ...Option) *System {
	s := &System{
		g:       DefaultG,
		workers: 1,
		order:   make([]string, 0),
		bodies:  make(map[string]*Body),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *System) G() float64       { return s.g }
func (s *System) Workers() int     { return s.workers }
func (s *System) Len() int         { return len(s.order) }
func (s *System) SetWorkers(n int) { WithWorkers(n)(s) }

// AddBody constructs a body and inserts it. The system is left unchanged on error.
func (s *System) AddBody(id string, mass float64, position, velocity Vector) error {
	if _, ok := s.bodies[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	b, err := NewBody(id, mass, position, velocity)
	if err != nil {
		return err
	}
	s.insert(b)
	return nil
}

// Insert takes ownership of an already constructed body.
func (s *System) Insert(b *Body) error {
	if _, ok := s.bodies[b.id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateID, b.id)
	}
	s.insert(b)
	return nil
}

func (s *System) insert(b *Body) {
	s.bodies[b.id] = b
	s.order = append(s.order, b.id)
}

func (s *System) Body(id string) (*Body, bool) {
	b, ok := s.bodies[id]
	return b, ok
}

func (s *System) Remove(id string) bool {
	if _, ok := s.bodies[id]; !ok {
		return false
	}
	delete(s.bodies, id)
	for i, k := range s.order {
		if k == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *System) Clear() {
	s.order = s.order[:0]
	s.bodies = make(map[string]*Body)
}

// Bodies returns the bodies in insertion order.
func (s *System) Bodies() []*Body {
	out := make([]*Body, len(s.order))
	for i, id := range s.order {
		out[i] = s.bodies[id]
	}
	return out
}

func (s *System) IDs() []string {
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

// Clone returns an independent deep copy of the system.
func (s *System) Clone() *System {
	c := NewSystem(WithG(s.g), WithWorkers(s.workers))
	for _, b := range s.Bodies() {
		c.insert(b.Clone())
	}
	return c
}

// ComputeForces resets every accumulator and adds the gravitational force of
// every unordered pair i<j: F = G*m_i*m_j/d^3 * (x_j - x_i) goes to body i and
// its negation to body j. Coincident pairs contribute nothing.
func (s *System) ComputeForces() {
	bodies := s.Bodies()
	for _, b := range bodies {
		b.ResetForce()
	}

	n := len(bodies)
	if s.workers > 1 && n > 2*minParallelRows {
		s.computeForcesParallel(bodies)
		return
	}

	for i := 0; i < n; i++ {
		bi := bodies[i]
		for j := i + 1; j < n; j++ {
			bj := bodies[j]
			f, ok := s.pairForce(bi, bj)
			if !ok {
				continue
			}
			bi.force = bi.force.Add(f)
			bj.force = bj.force.Sub(f)
		}
	}
}

// computeForcesParallel splits the outer loop across workers. Each worker
// accumulates into its own partial slice; partials are merged in worker order
// so every body accumulator is written by a single goroutine.
func (s *System) computeForcesParallel(bodies []*Body) {
	n := len(bodies)
	if len(s.partials) < s.workers {
		s.partials = make([][]Vector, s.workers)
	}
	for w := range s.partials {
		if len(s.partials[w]) != n {
			s.partials[w] = make([]Vector, n)
		} else {
			for k := range s.partials[w] {
				s.partials[w][k] = Zero
			}
		}
	}

	used := ParallelFor(n, minParallelRows, s.workers, func(w, start, end int) {
		acc := s.partials[w]
		for i := start; i < end; i++ {
			for j := i + 1; j < n; j++ {
				f, ok := s.pairForce(bodies[i], bodies[j])
				if !ok {
					continue
				}
				acc[i] = acc[i].Add(f)
				acc[j] = acc[j].Sub(f)
			}
		}
	})

	for w := 0; w < used; w++ {
		for k, b := range bodies {
			b.force = b.force.Add(s.partials[w][k])
		}
	}
}

func (s *System) pairForce(bi, bj *Body) (Vector, bool) {
	r := bj.Position.Sub(bi.Position)
	d := r.Magnitude()
	if d == 0 {
		return Zero, false
	}
	return r.Scale(s.g * bi.mass * bj.mass / (d * d * d)), true
}

// Step advances the system by dt: forces are computed, then every body
// updates its velocity and moves with that new velocity.
func (s *System) Step(dt float64) {
	s.ComputeForces()
	for _, b := range s.Bodies() {
		b.ApplyForce(b.force, dt)
		b.Move(dt)
	}
}

func (s *System) KineticEnergy() float64 {
	total := 0.0
	for _, b := range s.Bodies() {
		total += b.KineticEnergy()
	}
	return total
}

// PotentialEnergy sums the pair potential over every unordered pair.
func (s *System) PotentialEnergy() float64 {
	bodies := s.Bodies()
	total := 0.0
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			total += bodies[i].PotentialEnergyWith(bodies[j], s.g)
		}
	}
	return total
}

func (s *System) Momentum() Vector {
	total := Zero
	for _, b := range s.Bodies() {
		total = total.Add(b.Momentum())
	}
	return total
}

// AngularMomentum is the sum of r x p about the origin.
func (s *System) AngularMomentum() Vector {
	total := Zero
	for _, b := range s.Bodies() {
		total = total.Add(b.Position.Cross(b.Momentum()))
	}
	return total
}

// CenterOfMass returns the mass-weighted mean position, or the zero vector
// for an empty system.
func (s *System) CenterOfMass() Vector {
	var m float64
	weighted := Zero
	for _, b := range s.Bodies() {
		m += b.mass
		weighted = weighted.Add(b.Position.Scale(b.mass))
	}
	c, err := weighted.Div(m)
	if err != nil {
		return Zero
	}
	return c
}

func (s *System) Diagnostics() Diagnostics {
	ke := s.KineticEnergy()
	pe := s.PotentialEnergy()
	return Diagnostics{
		Kinetic:         ke,
		Potential:       pe,
		Total:           ke + pe,
		Momentum:        s.Momentum(),
		AngularMomentum: s.AngularMomentum(),
	}
}

// CheckFinite returns ErrNonFinite naming the first body whose position or
// velocity is NaN or Inf.
func (s *System) CheckFinite() error {
	for _, b := range s.Bodies() {
		if !b.finite() {
			return fmt.Errorf("%w: body %q", ErrNonFinite, b.id)
		}
	}
	return nil
}
