package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sidebargen/internal/linkresolve"
	"git.home.luguber.info/inful/sidebargen/internal/nav"
)

func sidebar(id string, docs ...string) nav.Sidebar {
	items := make([]nav.Node, 0, len(docs))
	for _, d := range docs {
		items = append(items, nav.DocRef{ID: d})
	}
	return nav.Sidebar{ID: id, Items: items}
}

func TestRegisterDisjointSidebars(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(sidebar("developersSidebar", "a", "b")))
	require.NoError(t, r.Register(sidebar("guidesSidebar", "c")))

	assert.Equal(t, []string{"developersSidebar", "guidesSidebar"}, r.IDs())
	assert.Equal(t, 2, r.Len())

	got, err := r.Get("guidesSidebar")
	require.NoError(t, err)
	assert.Equal(t, sidebar("guidesSidebar", "c"), got)
}

func TestRegisterRejectsDocReuseAcrossSidebars(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(sidebar("developersSidebar", "a", "b")))
	require.NoError(t, r.Register(sidebar("guidesSidebar", "c")))

	err := r.Register(sidebar("workflowsSidebar", "a"))
	var dup *linkresolve.DuplicateIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, []string{"a"}, dup.IDs)
	assert.Equal(t, []string{"developersSidebar[0]", "workflowsSidebar[0]"}, dup.Occurrences["a"])

	// the failed registration left no trace
	assert.Equal(t, []string{"developersSidebar", "guidesSidebar"}, r.IDs())
	var nf *NotFoundError
	_, err = r.Get("workflowsSidebar")
	assert.ErrorAs(t, err, &nf)
}

func TestRegisterRejectsDocReuseInsideSidebar(t *testing.T) {
	r := New()
	s := nav.Sidebar{ID: "apiReferenceSidebar", Items: []nav.Node{
		nav.DocRef{ID: "x"},
		nav.Category{Label: "Agents", Children: []nav.Node{nav.DocRef{ID: "x"}, nav.DocRef{ID: "y"}}},
	}}
	err := r.Register(s)
	var dup *linkresolve.DuplicateIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, []string{"x"}, dup.IDs)
	assert.Equal(t, []string{"apiReferenceSidebar[0]", "apiReferenceSidebar/Agents[0]"}, dup.Occurrences["x"])
	assert.Zero(t, r.Len())

	// y was not claimed by the failed sidebar
	require.NoError(t, r.Register(sidebar("other", "y")))
}

func TestRegisterDuplicateSidebarID(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(sidebar("guidesSidebar", "a")))

	err := r.Register(sidebar("guidesSidebar", "b"))
	var dup *DuplicateSidebarIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "guidesSidebar", dup.ID)
	assert.Contains(t, err.Error(), "guidesSidebar")
}

func TestSealBlocksRegister(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(sidebar("developersSidebar", "a")))
	r.Seal()
	r.Seal()
	assert.True(t, r.Sealed())

	err := r.Register(sidebar("guidesSidebar", "z"))
	var sealed *SealedRegistryError
	require.ErrorAs(t, err, &sealed)
	assert.Equal(t, "guidesSidebar", sealed.ID)

	got, err := r.Get("developersSidebar")
	require.NoError(t, err)
	assert.Equal(t, "developersSidebar", got.ID)
}

func TestGetMissing(t *testing.T) {
	r := New()
	_, err := r.Get("missing")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "missing", nf.ID)
	assert.EqualError(t, err, `sidebar "missing" not found`)
}

func TestAllowDuplicateDocsWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := New(AllowDuplicateDocs(logger))
	require.NoError(t, r.Register(sidebar("developersSidebar", "a")))
	require.NoError(t, r.Register(sidebar("workflowsSidebar", "a", "b")))

	assert.Equal(t, 2, r.Len())
	assert.Contains(t, buf.String(), "Duplicate document id registered")
	assert.Contains(t, buf.String(), "doc_id=a")
	assert.Contains(t, buf.String(), "sidebar=workflowsSidebar")
}

func TestAllowDuplicateDocsWithoutLogger(t *testing.T) {
	r := New(AllowDuplicateDocs(nil))
	require.NoError(t, r.Register(sidebar("developersSidebar", "a")))
	require.NoError(t, r.Register(sidebar("workflowsSidebar", "a", "b")))
	assert.Equal(t, []string{"developersSidebar", "workflowsSidebar"}, r.IDs())
}

func TestConcurrentReadsAfterSeal(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(sidebar("developersSidebar", "a")))
	require.NoError(t, r.Register(sidebar("guidesSidebar", "b")))
	r.Seal()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, id := range []string{"developersSidebar", "guidesSidebar"} {
				s, err := r.Get(id)
				assert.NoError(t, err)
				assert.Equal(t, id, s.ID)
			}
			assert.Len(t, r.Sidebars(), 2)
		}()
	}
	wg.Wait()
}

func TestMarshalJSONKeepsRegistrationOrder(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(sidebar("zeta", "a")))
	require.NoError(t, r.Register(sidebar("alpha", "b")))

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":[{"type":"doc","id":"a"}],"alpha":[{"type":"doc","id":"b"}]}`, string(data))
}

func TestIDsReturnsCopy(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(sidebar("a", "x")))
	ids := r.IDs()
	ids[0] = "mutated"
	assert.Equal(t, []string{"a"}, r.IDs())
}
