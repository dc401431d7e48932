// Package viz renders sampled series for the terminal.
//
// [PlotSeries] draws one asciigraph chart per group of channels sharing
// orders of magnitude, so small gating variables are not flattened next
// to a membrane potential. Styles are lipgloss and follow the current
// [Theme].
package viz
