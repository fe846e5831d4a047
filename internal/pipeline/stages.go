package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sidebargen/internal/config"
	"git.home.luguber.info/inful/sidebargen/internal/content"
	ferrors "git.home.luguber.info/inful/sidebargen/internal/foundation/errors"
	"git.home.luguber.info/inful/sidebargen/internal/grouping"
	"git.home.luguber.info/inful/sidebargen/internal/linkresolve"
	"git.home.luguber.info/inful/sidebargen/internal/logfields"
	"git.home.luguber.info/inful/sidebargen/internal/metrics"
	"git.home.luguber.info/inful/sidebargen/internal/nav"
	"git.home.luguber.info/inful/sidebargen/internal/openapi"
	"git.home.luguber.info/inful/sidebargen/internal/registry"
)

// state carries intermediate values between stages of one run.
type state struct {
	cfg      *config.Config
	mode     linkresolve.Mode
	index    *content.Index
	docs     []*openapi.Document // parallel to cfg.APIs
	sidebars []nav.Sidebar       // static sidebars first, then API sidebars
	registry *registry.Registry
}

func (b *Builder) discoverContent(ctx context.Context, st *state, res *Result) (bool, error) {
	ix, err := content.Discover(ctx, st.cfg.Content.DocsDir,
		content.WithExtensions(st.cfg.Content.Extensions...),
		content.WithLogger(b.logger))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, err
		}
		msg := "index content"
		if errors.Is(err, fs.ErrNotExist) {
			msg = "docs directory not found"
		}
		return false, ferrors.ContentError(msg).WithCause(err).WithContext("docs_dir", st.cfg.Content.DocsDir).Build()
	}
	st.index = ix
	res.Conflicts = ix.Conflicts()
	res.ContentDigest = ix.Digest()
	b.recorder.AddProblems(metrics.ProblemContentConflict, len(res.Conflicts))
	b.logger.InfoContext(ctx, "Content indexed", logfields.Path(ix.Root()), logfields.Count(ix.Len()))
	return len(res.Conflicts) > 0, nil
}

func (b *Builder) loadSpecs(ctx context.Context, st *state) error {
	st.docs = make([]*openapi.Document, len(st.cfg.APIs))
	loader := b.loader
	if loader == nil {
		loader = openapi.NewLoader(openapi.WithLogger(b.logger), openapi.WithRetry(st.cfg.Build.Retry.Policy()))
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(st.cfg.Build.Concurrency, 1))
	for i, api := range st.cfg.APIs {
		g.Go(func() error {
			doc, err := loader.Load(gctx, api.Spec)
			if err != nil {
				return classifySpecError(err, api.Spec)
			}
			if api.Overview && doc.OverviewID() == "" {
				return classifySpecError(&openapi.SpecParseError{
					Source: api.Spec,
					Reason: "missing info.title, required for the overview document",
				}, api.Spec)
			}
			st.docs[i] = doc
			b.logger.InfoContext(ctx, "API description loaded",
				logfields.Spec(api.Spec), logfields.Sidebar(api.SidebarID), logfields.Count(len(doc.Operations)))
			return nil
		})
	}
	return g.Wait()
}

func classifySpecError(err error, spec string) error {
	if _, ok := ferrors.AsClassified(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return ferrors.SpecError("invalid api description").WithCause(err).WithContext("spec", spec).Build()
}

func (b *Builder) buildSidebars(ctx context.Context, st *state) error {
	static := st.cfg.Sidebars
	st.sidebars = make([]nav.Sidebar, len(static)+len(st.cfg.APIs))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(max(st.cfg.Build.Concurrency, 1))
	for i, sc := range static {
		g.Go(func() error {
			s, err := nav.BuildStatic(sc.ID, itemSpecs(sc.Items), st.index)
			if err != nil {
				return navigationError(err, sc.ID)
			}
			st.sidebars[i] = s
			return nil
		})
	}
	for i, api := range st.cfg.APIs {
		doc := st.docs[i]
		g.Go(func() error {
			opts := nav.APIOptions{
				SidebarID: api.SidebarID,
				DocPrefix: api.DocPrefix,
				TagLabels: api.CategoryLabels,
			}
			if api.Overview {
				opts.Overview = &nav.DocRef{ID: nav.JoinID(api.DocPrefix, doc.OverviewID())}
			}
			s, err := nav.BuildAPI(opts, grouping.Group(doc.Operations))
			if err != nil {
				return navigationError(err, api.SidebarID)
			}
			st.sidebars[len(static)+i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, s := range st.sidebars {
		b.logger.DebugContext(ctx, "Sidebar built", logfields.Sidebar(s.ID), logfields.Count(len(nav.Docs(s))))
	}
	return nil
}

func navigationError(err error, sidebar string) error {
	return ferrors.NavigationError(fmt.Sprintf("build sidebar %s", sidebar)).
		WithCause(err).
		WithContext("sidebar", sidebar).
		Build()
}

func itemSpecs(items []config.SidebarItem) []nav.ItemSpec {
	out := make([]nav.ItemSpec, len(items))
	for i, it := range items {
		out[i] = nav.ItemSpec{
			Kind:  nav.ItemKind(it.Type),
			ID:    it.ID,
			Label: it.Label,
			Dir:   it.Dir,
			Items: itemSpecs(it.Items),
		}
	}
	return out
}

// resolve checks every sidebar against the content index and for document
// ids shared within or across sidebars, then applies the build mode.
func (b *Builder) resolve(ctx context.Context, st *state, res *Result) (bool, error) {
	rep := linkresolve.New(st.index).Check(st.sidebars...)
	res.Report = rep

	b.recorder.AddProblems(metrics.ProblemBrokenReference, len(rep.Broken))
	if rep.Duplicates != nil {
		b.recorder.AddProblems(metrics.ProblemDuplicateID, len(rep.Duplicates.IDs))
	}

	if err := rep.Enforce(ctx, st.mode, b.logger); err != nil {
		return false, ferrors.NavigationError(fmt.Sprintf("%d unresolved sidebar problems", rep.Problems())).
			WithCause(err).
			WithContext("mode", string(st.mode)).
			Build()
	}
	return !rep.OK(), nil
}

func (b *Builder) register(ctx context.Context, st *state, res *Result) (bool, error) {
	var opts []registry.Option
	if st.mode == linkresolve.ModePermissive {
		// resolve has already warned about every duplicate.
		opts = append(opts, registry.AllowDuplicateDocs(nil))
	}
	reg := registry.New(opts...)
	for _, s := range st.sidebars {
		if err := reg.Register(s); err != nil {
			return false, ferrors.RegistryError(fmt.Sprintf("register sidebar %s", s.ID)).
				WithCause(err).
				WithContext("sidebar", s.ID).
				Build()
		}
		n := len(nav.Docs(s))
		res.Documents += n
		b.recorder.SetSidebarDocs(s.ID, n)
		b.logger.DebugContext(ctx, "Sidebar registered", logfields.Sidebar(s.ID), logfields.Count(n))
	}
	reg.Seal()
	st.registry = reg
	res.Registry = reg
	return false, nil
}

func (b *Builder) resolveNavbar(st *state, res *Result) error {
	res.Navbar = make([]NavbarEntry, 0, len(st.cfg.Navbar))
	for _, item := range st.cfg.Navbar {
		s, err := st.registry.Get(item.SidebarID)
		if err != nil {
			return ferrors.NavigationError("navbar references an unknown sidebar").
				WithCause(err).
				WithContext("sidebar", item.SidebarID).
				Build()
		}
		res.Navbar = append(res.Navbar, NavbarEntry{
			Type:      "docSidebar",
			SidebarID: s.ID,
			Label:     item.Label,
			Position:  item.Position,
		})
	}
	return nil
}
