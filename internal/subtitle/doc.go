// Package subtitle defines the subtitle line model and the ordered track
// abstraction the rest of the pipeline operates on.
//
// A Track owns an ordered list of lines addressed by zero-based index. All
// structural edits go through Splice or RemoveEmpty, which report the index
// delta so callers holding ranges can adjust them instead of re-scanning.
package subtitle
