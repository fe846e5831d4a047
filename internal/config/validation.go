package config

import (
	"errors"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sidebargen/internal/logging"
	"git.home.luguber.info/inful/sidebargen/internal/retry"
)

// ValidateConfig checks a defaulted configuration and reports every
// problem it finds at once.
func ValidateConfig(cfg *Config) error {
	v := &configurationValidator{config: cfg, sidebarIDs: make(map[string]string)}
	v.validateAPIs()
	v.validateSidebars()
	v.validateNavbar()
	v.validateBuild()
	v.validateLogging()
	return errors.Join(v.errs...)
}

type configurationValidator struct {
	config     *Config
	sidebarIDs map[string]string // id -> declaring section
	errs       []error
}

func (v *configurationValidator) fail(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *configurationValidator) claimSidebar(id, where string) {
	if id == "" {
		v.fail("%s: sidebar id cannot be empty", where)
		return
	}
	if prev, ok := v.sidebarIDs[id]; ok {
		v.fail("%s: duplicate sidebar id %q (already declared by %s)", where, id, prev)
		return
	}
	v.sidebarIDs[id] = where
}

func (v *configurationValidator) validateAPIs() {
	for i, api := range v.config.APIs {
		where := fmt.Sprintf("apis[%d]", i)
		v.claimSidebar(api.SidebarID, where)
		if strings.TrimSpace(api.Spec) == "" {
			v.fail("%s: spec is required", where)
		}
	}
}

func (v *configurationValidator) validateSidebars() {
	if len(v.config.APIs) == 0 && len(v.config.Sidebars) == 0 {
		v.fail("at least one of apis or sidebars must be configured")
	}
	for i, sb := range v.config.Sidebars {
		where := fmt.Sprintf("sidebars[%d]", i)
		v.claimSidebar(sb.ID, where)
		if len(sb.Items) == 0 {
			v.fail("%s: sidebar %q has no items", where, sb.ID)
		}
		for j, it := range sb.Items {
			v.validateItem(it, fmt.Sprintf("%s.items[%d]", where, j))
		}
	}
}

func (v *configurationValidator) validateItem(it SidebarItem, where string) {
	switch it.Type {
	case ItemDoc:
		if it.ID == "" {
			v.fail("%s: doc item requires an id", where)
		}
	case ItemCategory:
		if it.Label == "" {
			v.fail("%s: category requires a label", where)
		}
		if len(it.Items) == 0 {
			v.fail("%s: category %q has no items", where, it.Label)
		}
		for j, child := range it.Items {
			v.validateItem(child, fmt.Sprintf("%s.items[%d]", where, j))
		}
	case ItemAutogenerated:
		if strings.Contains(it.Dir, "..") {
			v.fail("%s: autogenerated dir %q must stay inside the docs directory", where, it.Dir)
		}
	default:
		v.fail("%s: unknown item type %q (expected doc, category or autogenerated)", where, it.Type)
	}
}

func (v *configurationValidator) validateNavbar() {
	for i, item := range v.config.Navbar {
		where := fmt.Sprintf("navbar[%d]", i)
		if item.SidebarID == "" {
			v.fail("%s: sidebar_id is required", where)
		}
		if item.Label == "" {
			v.fail("%s: label is required", where)
		}
		if item.Position != "left" && item.Position != "right" {
			v.fail("%s: position must be left or right, got %q", where, item.Position)
		}
	}
}

func (v *configurationValidator) validateBuild() {
	b := v.config.Build
	if b.Concurrency < 1 {
		v.fail("build.concurrency must be positive")
	}
	if b.Output == "" {
		v.fail("build.output cannot be empty")
	}
	if b.MetricsFile != "" && b.MetricsFile == b.Output {
		v.fail("build.metrics_file must differ from build.output")
	}
	if _, err := retry.ParseBackoffMode(b.Retry.Backoff); err != nil {
		v.fail("build.retry.backoff: %w", err)
	}
	if b.Retry.Initial < 0 || b.Retry.Max < 0 {
		v.fail("build.retry delays cannot be negative")
	}
	if b.Retry.MaxRetries != nil && *b.Retry.MaxRetries < 0 {
		v.fail("build.retry.max_retries cannot be negative")
	}
}

func (v *configurationValidator) validateLogging() {
	if _, err := logging.ParseLevel(v.config.Logging.Level); err != nil {
		v.fail("logging.level: %w", err)
	}
	if _, err := logging.ParseFormat(v.config.Logging.Format); err != nil {
		v.fail("logging.format: %w", err)
	}
}
