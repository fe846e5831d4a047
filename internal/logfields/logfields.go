package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeySpec       = "spec"
	KeySidebar    = "sidebar"
	KeyDocID      = "doc_id"
	KeyTag        = "tag"
	KeyPosition   = "position"
	KeyPath       = "path"
	KeyMode       = "mode"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Spec(source string) slog.Attr    { return slog.String(KeySpec, source) }
func Sidebar(id string) slog.Attr     { return slog.String(KeySidebar, id) }
func DocID(id string) slog.Attr       { return slog.String(KeyDocID, id) }
func Tag(tag string) slog.Attr        { return slog.String(KeyTag, tag) }
func Position(pos string) slog.Attr   { return slog.String(KeyPosition, pos) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Mode(m string) slog.Attr         { return slog.String(KeyMode, m) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
