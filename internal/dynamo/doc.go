// Package dynamo provides the gravitational N-body core.
//
// The package defines three types:
//
//   - [Vector]: immutable three-component value with named arithmetic
//   - [Body]: point mass with position, velocity and a transient force accumulator
//   - [System]: ordered collection of bodies plus the gravitational constant
//
// Forces are computed with the all-pairs O(N²) method over the upper triangle
// of the body list, and [System.Step] advances every body with a sequential
// Euler update: velocity first, then position using the new velocity.
//
// # Example
//
//	sys := dynamo.NewSystem()
//	_ = sys.AddBody("earth", 5.972e24, dynamo.Zero, dynamo.Zero)
//	_ = sys.AddBody("moon", 7.348e22, dynamo.Vec(3.844e8, 0, 0), dynamo.Vec(0, 1.022e3, 0))
//	sys.Step(60)
//	d := sys.Diagnostics()
//
// # Degenerate pairs
//
// Two distinct bodies at the same position are not an error. They exert no
// force on each other and their pair potential energy is negative infinity.
//
// # Thread Safety
//
// A System is NOT thread-safe. [WithWorkers] parallelizes the force loop
// internally; callers must still drive a System from one goroutine.
package dynamo
