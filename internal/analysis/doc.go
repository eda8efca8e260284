// Package analysis provides spectral tools for recorded diagnostics.
//
//   - [PowerSpectrum]: magnitude spectrum of a uniformly sampled series
//   - [DominantPeriod]: period of its strongest oscillation
//
// The kinetic energy of a bound two-body orbit oscillates once per
// revolution, so the orbital period can be read off a recorded run:
//
//	period, err := analysis.DominantPeriod(kinetic, sampleDt)
package analysis
