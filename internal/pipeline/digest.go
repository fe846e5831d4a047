package pipeline

import (
	"fmt"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/sidebargen/internal/config"
	"git.home.luguber.info/inful/sidebargen/internal/content"
	"git.home.luguber.info/inful/sidebargen/internal/openapi"
)

// inputsDigest fingerprints everything a build reads: the effective
// configuration, the parsed operations of every API description and the
// content corpus.
func inputsDigest(cfg *config.Config, ix *content.Index, docs []*openapi.Document) (string, error) {
	cfgData, err := config.Marshal(cfg, config.FormatYAML)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if ix != nil {
		fmt.Fprintf(&b, "content %s\n", ix.Digest())
	}
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		fmt.Fprintf(&b, "spec %s %q %q\n", doc.Source, doc.Title, doc.Version)
		for _, op := range doc.Operations {
			fmt.Fprintf(&b, "op %s %s %s %q %q %t\n", op.ID, op.Method, op.Path, op.Tag, op.Summary, op.Deprecated)
		}
	}
	return mdfp.CalculateFingerprintFromParts(string(cfgData), b.String()), nil
}
