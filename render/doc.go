// Package render writes stack events as a flat chronological log. Text lays
// each event out in wrapped, fixed-width columns sized from the terminal;
// JSON writes one object per line. Renderers are shared by every tailing
// session of a process and serialise their writes.
package render
