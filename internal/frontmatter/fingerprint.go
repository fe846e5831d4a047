package frontmatter

import (
	"strings"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"
)

// Fingerprint hashes a document's navigation metadata and body. A stored
// fingerprint field is excluded, so rewriting it never changes the result.
func Fingerprint(m Meta, body []byte) (string, error) {
	m.Fingerprint = ""
	fm := ""
	if m != (Meta{}) {
		out, err := yaml.Marshal(m)
		if err != nil {
			return "", err
		}
		fm = strings.TrimSuffix(string(out), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(fm, string(body)), nil
}

