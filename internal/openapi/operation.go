package openapi

import "strings"

// Method is an HTTP method in canonical upper case.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPut     Method = "PUT"
	MethodPost    Method = "POST"
	MethodDelete  Method = "DELETE"
	MethodOptions Method = "OPTIONS"
	MethodHead    Method = "HEAD"
	MethodPatch   Method = "PATCH"
	MethodTrace   Method = "TRACE"
)

var methods = map[string]Method{
	"get":     MethodGet,
	"put":     MethodPut,
	"post":    MethodPost,
	"delete":  MethodDelete,
	"options": MethodOptions,
	"head":    MethodHead,
	"patch":   MethodPatch,
	"trace":   MethodTrace,
}

// ParseMethod returns the Method for s, case-insensitively.
func ParseMethod(s string) (Method, bool) {
	m, ok := methods[strings.ToLower(strings.TrimSpace(s))]
	return m, ok
}

// Badge is the presentation hint used in sidebar class names, e.g. "post".
func (m Method) Badge() string {
	return strings.ToLower(string(m))
}

// Operation is one endpoint of the API description. Values are never
// modified after loading.
type Operation struct {
	ID          string
	Method      Method
	Path        string
	Tag         string // empty when the operation carries no tag
	Summary     string
	OperationID string
	Deprecated  bool
}

// Tagged reports whether the operation has a tag.
func (o Operation) Tagged() bool {
	return o.Tag != ""
}

// Label is the summary as written, falling back to the humanized path.
func (o Operation) Label() string {
	if label := strings.TrimSpace(o.Summary); label != "" {
		return label
	}
	if label := Humanize(o.Path); label != "" {
		return label
	}
	return o.Path
}

// Document is a loaded API description.
type Document struct {
	Source     string
	Title      string
	Version    string
	Operations []Operation
}

// OverviewID is the id of the document introducing the API, derived from
// the description title. It is empty when the description has no title.
func (d *Document) OverviewID() string {
	if d == nil {
		return ""
	}
	return Kebab(d.Title)
}
