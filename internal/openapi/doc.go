// Package openapi loads API descriptions into an ordered list of operations.
//
// Two document shapes are accepted. OpenAPI/Swagger documents are read from
// their `paths` mapping, one operation per HTTP method key; a flat form with a
// top-level `operations` sequence of {id, method, path, tag, summary} entries
// is accepted as well. Both JSON and YAML inputs are parsed through yaml.v3
// nodes so that declaration order is preserved exactly: that order is the
// tie-break for every later grouping and ordering decision.
package openapi
