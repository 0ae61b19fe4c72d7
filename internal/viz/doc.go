// Package viz renders world snapshots and run series for the terminal.
//
//   - [Overlay]: one glyph per cell, colored by owner, in owner, rejection
//     or velocity mode
//   - [Minimap]: Braille dot map of owned cells, eight cells per character
//   - [Plot]: asciigraph line chart of a step series
//
// Rows are printed top to bottom, so y = 0 is the last line.
package viz
