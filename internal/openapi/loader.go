package openapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sidebargen/internal/foundation/errors"
	"git.home.luguber.info/inful/sidebargen/internal/logfields"
	"git.home.luguber.info/inful/sidebargen/internal/retry"
)

// maxRemoteSize caps the body read from a remote API description.
const maxRemoteSize = 32 << 20

// Loader reads API descriptions from files or http(s) URLs.
type Loader struct {
	client *http.Client
	logger *slog.Logger
	retry  retry.Policy
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient overrides the client used for remote descriptions.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) { l.client = c }
}

// WithRetry sets the backoff policy for remote descriptions. Transport
// errors, 429 and 5xx responses are retried; other failures are not.
func WithRetry(p retry.Policy) LoaderOption {
	return func(l *Loader) { l.retry = p }
}

// WithLogger sets the logger used by the loader.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: slog.Default(),
		retry:  retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and parses the description at source. I/O is the only
// suspension point of a build.
func (l *Loader) Load(ctx context.Context, source string) (*Document, error) {
	start := time.Now()
	data, err := l.read(ctx, source)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(source, data)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("Loaded API description",
		logfields.Spec(source),
		logfields.Count(len(doc.Operations)),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return doc, nil
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	if !IsRemote(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read api description").
				WithContext("spec", source).
				Build()
		}
		return data, nil
	}

	var data []byte
	err := l.retry.Do(ctx, retryable, func(attempt int) error {
		if attempt > 0 {
			l.logger.WarnContext(ctx, "Retrying API description fetch", logfields.Spec(source), slog.Int("attempt", attempt))
		}
		var err error
		data, err = l.fetch(ctx, source)
		return err
	})
	return data, err
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	classified, ok := ferrors.AsClassified(err)
	return ok && classified.CanRetry()
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, ferrors.ConfigError("invalid api description url").WithCause(err).WithContext("spec", source).Build()
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")
	resp, err := l.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, ferrors.NetworkError("fetch api description").WithCause(err).WithContext("spec", source).Build()
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		b := ferrors.NetworkError(fmt.Sprintf("fetch api description: unexpected status %d", resp.StatusCode)).
			WithContext("spec", source)
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			b = b.WithRetry(ferrors.RetryNever)
		}
		return nil, b.Build()
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize))
	if err != nil {
		return nil, ferrors.NetworkError("read api description body").WithCause(err).WithContext("spec", source).Build()
	}
	return data, nil
}

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Parse decodes an API description. Operations keep document declaration order.
func Parse(source string, data []byte) (*Document, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		// JSON forbids raw tabs inside strings, so every tab is insignificant
		// whitespace; YAML rejects them as indentation.
		data = bytes.ReplaceAll(data, []byte("\t"), []byte(" "))
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &SpecParseError{Source: source, Reason: "invalid document", Err: err}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, &SpecParseError{Source: source, Reason: "empty document"}
	}
	top := resolve(root.Content[0])
	if top.Kind != yaml.MappingNode {
		return nil, &SpecParseError{Source: source, Line: top.Line, Reason: "top level must be a mapping"}
	}

	p := &parser{source: source}
	doc := &Document{Source: source}
	if info := lookup(top, "info"); info != nil && info.Kind == yaml.MappingNode {
		doc.Title = scalar(info, "title")
		doc.Version = scalar(info, "version")
	}

	var (
		ops []Operation
		err error
	)
	if flat := lookup(top, "operations"); flat != nil {
		ops, err = p.parseFlat(flat)
	} else if paths := lookup(top, "paths"); paths != nil {
		ops, err = p.parsePaths(paths)
	} else {
		return nil, &SpecParseError{Source: source, Line: top.Line, Reason: "missing required field paths"}
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int, len(ops))
	for i, op := range ops {
		if op.ID == "" {
			return nil, p.fail(0, fmt.Sprintf("cannot derive an id for %s %s", op.Method, op.Path))
		}
		if first, dup := seen[op.ID]; dup {
			return nil, p.fail(0, fmt.Sprintf("duplicate operation id %q (operations #%d and #%d)", op.ID, first+1, i+1))
		}
		seen[op.ID] = i
	}
	doc.Operations = ops
	return doc, nil
}

type parser struct {
	source string
}

func (p *parser) fail(line int, reason string) *SpecParseError {
	return &SpecParseError{Source: p.source, Line: line, Reason: reason}
}

func (p *parser) parsePaths(paths *yaml.Node) ([]Operation, error) {
	if paths.Kind != yaml.MappingNode {
		return nil, p.fail(paths.Line, "paths must be a mapping")
	}
	var ops []Operation
	for i := 0; i+1 < len(paths.Content); i += 2 {
		key, item := paths.Content[i], resolve(paths.Content[i+1])
		path := strings.TrimSpace(key.Value)
		if path == "" {
			return nil, p.fail(key.Line, "missing required field path")
		}
		if item.Kind != yaml.MappingNode {
			return nil, p.fail(item.Line, fmt.Sprintf("path item %s must be a mapping", path))
		}
		for j := 0; j+1 < len(item.Content); j += 2 {
			method, ok := ParseMethod(item.Content[j].Value)
			if !ok {
				continue // parameters, servers, summary, $ref, extensions
			}
			node := resolve(item.Content[j+1])
			if node.Kind != yaml.MappingNode {
				return nil, p.fail(node.Line, fmt.Sprintf("operation %s %s must be a mapping", method, path))
			}
			op := Operation{
				Method:      method,
				Path:        path,
				Summary:     strings.TrimSpace(scalar(node, "summary")),
				OperationID: strings.TrimSpace(scalar(node, "operationId")),
				Deprecated:  scalar(node, "deprecated") == "true",
			}
			tag, err := p.firstTag(node)
			if err != nil {
				return nil, err
			}
			op.Tag = tag
			op.ID = DeriveID(op)
			ops = append(ops, op)
		}
	}
	return ops, nil
}

// firstTag returns the first non-empty entry of the operation's tags.
// Only one category per operation keeps document ids unique.
func (p *parser) firstTag(node *yaml.Node) (string, error) {
	tags := lookup(node, "tags")
	if tags == nil || isNull(tags) {
		return "", nil
	}
	if tags.Kind != yaml.SequenceNode {
		return "", p.fail(tags.Line, "tags must be a sequence")
	}
	for _, t := range tags.Content {
		t = resolve(t)
		if t.Kind == yaml.ScalarNode && strings.TrimSpace(t.Value) != "" && !isNull(t) {
			return strings.TrimSpace(t.Value), nil
		}
	}
	return "", nil
}

func (p *parser) parseFlat(list *yaml.Node) ([]Operation, error) {
	if list.Kind != yaml.SequenceNode {
		return nil, p.fail(list.Line, "operations must be a sequence")
	}
	ops := make([]Operation, 0, len(list.Content))
	for _, entry := range list.Content {
		entry = resolve(entry)
		if entry.Kind != yaml.MappingNode {
			return nil, p.fail(entry.Line, "operation must be a mapping")
		}
		rawMethod := scalar(entry, "method")
		if rawMethod == "" {
			return nil, p.fail(entry.Line, "missing required field method")
		}
		method, ok := ParseMethod(rawMethod)
		if !ok {
			return nil, p.fail(entry.Line, fmt.Sprintf("unknown method %q", rawMethod))
		}
		path := strings.TrimSpace(scalar(entry, "path"))
		if path == "" {
			return nil, p.fail(entry.Line, "missing required field path")
		}
		op := Operation{
			ID:          strings.TrimSpace(scalar(entry, "id")),
			Method:      method,
			Path:        path,
			Summary:     strings.TrimSpace(scalar(entry, "summary")),
			OperationID: strings.TrimSpace(scalar(entry, "operationId")),
			Deprecated:  scalar(entry, "deprecated") == "true",
		}
		if tag := lookup(entry, "tag"); tag != nil && !isNull(tag) {
			if tag.Kind != yaml.ScalarNode {
				return nil, p.fail(tag.Line, "tag must be a string")
			}
			op.Tag = strings.TrimSpace(tag.Value)
		}
		if op.ID == "" {
			op.ID = DeriveID(op)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return resolve(m.Content[i+1])
		}
	}
	return nil
}

func scalar(m *yaml.Node, key string) string {
	n := lookup(m, key)
	if n == nil || n.Kind != yaml.ScalarNode || isNull(n) {
		return ""
	}
	return n.Value
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}
