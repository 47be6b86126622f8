// Package formats defines the small shared error type used by every
// format adapter under formats/. Each adapter package (gpx, mp, fig,
// osm, vmaplegacy, gpkg) converts its own data shape to and from
// vmap2.Obj values; formats itself holds no conversion logic.
package formats

import "fmt"

// FormatError reports a problem decoding or encoding one of the
// external file formats, carrying the format name so callers handling
// several adapters at once can tell them apart without string
// matching on Error().
type FormatError struct {
	Format string
	Msg    string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Format, e.Msg)
}

// Errorf builds a FormatError for the named format, analogous to
// fmt.Errorf.
func Errorf(format, msg string, args ...any) error {
	return &FormatError{Format: format, Msg: fmt.Sprintf(msg, args...)}
}
