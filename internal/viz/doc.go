// Package viz renders bodies, diagnostics and recorded runs for the terminal.
//
//   - [FormatBody], [FormatSample], [WriteBodyTable]: plain text output
//   - [PlotSeries]: line chart of a diagnostic series
//   - [Canvas], [PlotOrbits]: braille projection of body trails on the XY plane
//
// The lipgloss styles are shared with the interactive menu.
package viz
