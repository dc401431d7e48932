// Package analysis provides post-processing of sampled series.
//
//   - [PowerSpectrum] and [DominantFrequency]: windowed FFT of a channel
//   - [Crossings] and [Rate]: upward threshold crossings, e.g. spikes
//   - [Describe]: min, max, mean and final value of a channel
//   - [GroupByExtent]: channels that share orders of magnitude
//   - [PhasePortraitToASCII]: one channel plotted against another
//
// # Spike Detection
//
// Action potentials of the squid axon model are downward deflections, so
// count them on the negated voltage:
//
//	v, _ := series.Channel("membrane.V")
//	spikes := analysis.Crossings(series.X, analysis.Negate(v), 50)
package analysis
