// Package ux renders the one-line progress indicator shown while a
// coverage run is in flight.
//
// On a terminal each stage gets an animated spinner that is replaced by a
// success or failure glyph when the stage ends. Anywhere else the same
// transitions are written as plain lines, one per change.
package ux
