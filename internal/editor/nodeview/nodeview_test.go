package nodeview

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Priya-753/notion-clone/internal/editor/engine"
	"github.com/Priya-753/notion-clone/internal/editor/keys"
	"github.com/Priya-753/notion-clone/internal/editor/node"
)

// insertAtom inserts an empty node of type t into a one-paragraph document
// and returns the engine and the node's identity.
func insertAtom(t *testing.T, typ node.Type, attrs node.Attrs) (*engine.Engine, uint64) {
	t.Helper()
	eng, err := engine.NewFromContent("<p>Energy</p>")
	if err != nil {
		t.Fatalf("NewFromContent: %v", err)
	}
	if err := eng.InsertNode(node.New(typ, attrs), engine.Pos(6, 0)); err != nil {
		t.Fatalf("InsertNode: %v", err)
	}
	return eng, findType(t, eng, typ)
}

func findType(t *testing.T, eng *engine.Engine, typ node.Type) uint64 {
	t.Helper()
	var id uint64
	node.Walk(eng.Doc(), func(n *node.Node, _ node.Path) bool {
		if id == 0 && n.Type == typ {
			id = n.ID()
		}
		return id == 0
	})
	if id == 0 {
		t.Fatalf("no %s node in %s", typ, eng.Content())
	}
	return id
}

func attr(t *testing.T, eng *engine.Engine, id uint64, name string) string {
	t.Helper()
	path, ok := eng.Find(id)
	if !ok {
		t.Fatalf("node %d not found", id)
	}
	n, err := eng.NodeAt(path)
	if err != nil {
		t.Fatalf("NodeAt: %v", err)
	}
	return n.String(name)
}

func TestInlineMathScenario(t *testing.T) {
	eng, id := insertAtom(t, node.TypeInlineMath, nil)
	ctx := context.Background()

	ed, err := Open(eng, id, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ed.State() != Editing {
		t.Fatalf("state = %s, want editing for an empty node", ed.State())
	}

	if err := ed.Input("E = mc^2"); err != nil {
		t.Fatalf("Input: %v", err)
	}
	consumed, err := ed.HandleKey(ctx, keys.Of(keys.Enter))
	if err != nil || !consumed {
		t.Fatalf("Enter = (%v, %v)", consumed, err)
	}
	if ed.State() != Rendered {
		t.Fatalf("state = %s, want rendered", ed.State())
	}
	if got := attr(t, eng, id, "latex"); got != "E = mc^2" {
		t.Errorf("latex = %q", got)
	}

	if err := ed.Activate(); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if ed.State() != Editing || ed.Draft() != "E = mc^2" {
		t.Fatalf("after activate: state %s draft %q", ed.State(), ed.Draft())
	}

	if err := ed.Input("E = mc^3"); err != nil {
		t.Fatalf("Input: %v", err)
	}
	before := eng.Version()
	if _, err := ed.HandleKey(ctx, keys.Of(keys.Escape)); err != nil {
		t.Fatalf("Escape: %v", err)
	}
	if ed.State() != Rendered {
		t.Errorf("state = %s, want rendered", ed.State())
	}
	if got := attr(t, eng, id, "latex"); got != "E = mc^2" {
		t.Errorf("latex after cancel = %q, want unchanged", got)
	}
	if eng.Version() != before {
		t.Error("cancel of an authored node must not change the tree")
	}
}

func TestCancelUnauthoredNodeDeletesIt(t *testing.T) {
	for _, typ := range []node.Type{node.TypeInlineMath, node.TypeBlockMath, node.TypeImage} {
		t.Run(string(typ), func(t *testing.T) {
			eng, id := insertAtom(t, typ, nil)
			ed, err := Open(eng, id, nil)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if err := ed.Cancel(); err != nil {
				t.Fatalf("Cancel: %v", err)
			}
			if ed.State() != Deleted {
				t.Errorf("state = %s, want deleted", ed.State())
			}
			if _, ok := eng.Find(id); ok {
				t.Errorf("node still present: %s", eng.Content())
			}
			if err := ed.Activate(); !errors.Is(err, ErrGone) {
				t.Errorf("Activate after delete = %v, want ErrGone", err)
			}
		})
	}
}

func TestConfirmEmptyDraftDeletes(t *testing.T) {
	eng, id := insertAtom(t, node.TypeBlockMath, node.Attrs{"latex": "x"})
	ed, err := Open(eng, id, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ed.State() != Rendered {
		t.Fatalf("state = %s, want rendered for authored node", ed.State())
	}
	_ = ed.Activate()
	_ = ed.Input("   ")
	if err := ed.Confirm(); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if ed.State() != Deleted {
		t.Errorf("state = %s, want deleted", ed.State())
	}
}

func TestBlockMathKeys(t *testing.T) {
	ctx := context.Background()
	eng, id := insertAtom(t, node.TypeBlockMath, nil)
	ed, err := Open(eng, id, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = ed.Input(`\frac{a}{b}`)

	if consumed, _ := ed.HandleKey(ctx, keys.Of(keys.Enter)); consumed {
		t.Error("plain Enter must stay in the block math textarea")
	}
	if ed.State() != Editing {
		t.Fatalf("state = %s after plain Enter", ed.State())
	}
	for _, k := range []keys.Key{{Name: keys.Enter, Ctrl: true}, {Name: keys.Enter, Meta: true}} {
		_ = ed.Activate()
		if consumed, err := ed.HandleKey(ctx, k); !consumed || err != nil {
			t.Fatalf("%s = (%v, %v)", k, consumed, err)
		}
		if ed.State() != Rendered {
			t.Errorf("%s: state = %s, want rendered", k, ed.State())
		}
	}
	if got := attr(t, eng, id, "latex"); got != `\frac{a}{b}` {
		t.Errorf("latex = %q", got)
	}
}

func TestRenderFailureStillCommits(t *testing.T) {
	eng, id := insertAtom(t, node.TypeInlineMath, nil)
	ed, err := Open(eng, id, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = ed.Input(`\frac{a}{b`)
	if err := ed.Confirm(); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if ed.State() != Rendered {
		t.Fatalf("state = %s", ed.State())
	}
	v := ed.View()
	if v.Error == "" {
		t.Error("view should carry the render error")
	}
	if !strings.Contains(v.HTML, InvalidAnnotation) || !strings.Contains(v.HTML, `data-latex="\frac{a}{b"`) {
		t.Errorf("HTML = %s", v.HTML)
	}
	if got := attr(t, eng, id, "latex"); got != `\frac{a}{b` {
		t.Errorf("latex = %q", got)
	}
}

func TestEditorFollowsNodeAcrossEdits(t *testing.T) {
	eng, id := insertAtom(t, node.TypeInlineMath, nil)
	ed, err := Open(eng, id, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := eng.InsertNode(node.Heading(1, node.Text("Title")), engine.Pos(0, 0)); err != nil {
		t.Fatalf("InsertNode: %v", err)
	}
	_ = ed.Input("a^2")
	if err := ed.Confirm(); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	want := `<h1>Title</h1><p>Energy<span data-type="inline-math" data-latex="a^2"></span></p>`
	if got := eng.Content(); got != want {
		t.Errorf("content = %s\nwant %s", got, want)
	}
}

type fakeUploader struct {
	url  string
	err  error
	data string
}

func (f *fakeUploader) UploadImage(_ context.Context, _ string, r io.Reader) (string, error) {
	b, _ := io.ReadAll(r)
	f.data = string(b)
	return f.url, f.err
}

func TestImageEditor(t *testing.T) {
	t.Run("done", func(t *testing.T) {
		eng, id := insertAtom(t, node.TypeImage, nil)
		ed, err := Open(eng, id, nil)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if err := ed.Done("https://example.com/cat.png", "a cat", ""); err != nil {
			t.Fatalf("Done: %v", err)
		}
		if ed.State() != Rendered || attr(t, eng, id, "src") != "https://example.com/cat.png" || attr(t, eng, id, "alt") != "a cat" {
			t.Errorf("state %s content %s", ed.State(), eng.Content())
		}
		if v := ed.View(); !strings.Contains(v.HTML, `src="https://example.com/cat.png"`) {
			t.Errorf("view HTML = %s", v.HTML)
		}
	})

	t.Run("upload", func(t *testing.T) {
		eng, id := insertAtom(t, node.TypeImage, nil)
		up := &fakeUploader{url: "https://blob.example.com/img/1.png"}
		ed, err := Open(eng, id, up)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if err := ed.Upload(context.Background(), "1.png", strings.NewReader("png-bytes")); err != nil {
			t.Fatalf("Upload: %v", err)
		}
		if up.data != "png-bytes" {
			t.Errorf("uploaded %q", up.data)
		}
		if got := attr(t, eng, id, "src"); got != up.url {
			t.Errorf("src = %q", got)
		}
	})

	t.Run("upload failure keeps editing", func(t *testing.T) {
		eng, id := insertAtom(t, node.TypeImage, nil)
		ed, _ := Open(eng, id, &fakeUploader{err: errors.New("bucket missing")})
		if err := ed.Upload(context.Background(), "x.png", strings.NewReader("x")); err == nil {
			t.Fatal("Upload should fail")
		}
		if ed.State() != Editing {
			t.Errorf("state = %s, want editing", ed.State())
		}
	})

	t.Run("no uploader", func(t *testing.T) {
		eng, id := insertAtom(t, node.TypeImage, nil)
		ed, _ := Open(eng, id, nil)
		if err := ed.Upload(context.Background(), "x.png", strings.NewReader("x")); !errors.Is(err, ErrNoUploader) {
			t.Errorf("Upload = %v, want ErrNoUploader", err)
		}
	})
}

func TestOpenUnsupported(t *testing.T) {
	eng, err := engine.NewFromContent("<p>x</p>")
	if err != nil {
		t.Fatal(err)
	}
	id := findType(t, eng, node.TypeParagraph)
	if _, err := Open(eng, id, nil); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Open(paragraph) = %v, want ErrUnsupported", err)
	}
	if _, err := Open(eng, 9999, nil); !errors.Is(err, ErrGone) {
		t.Errorf("Open(missing) = %v, want ErrGone", err)
	}
}

func TestValidateLatex(t *testing.T) {
	tests := []struct {
		latex string
		ok    bool
	}{
		{"E = mc^2", true},
		{`\frac{-b \pm \sqrt{b^2-4ac}}{2a}`, true},
		{`\begin{matrix} a & b \\ c & d \end{matrix}`, true},
		{`\left( x \right)`, true},
		{`\{ a \}`, true},
		{`x_{i}^{2}`, true},
		{`\frac{a}{b`, false},
		{`a}`, false},
		{`\begin{matrix} a`, false},
		{`\begin{matrix} a \end{pmatrix}`, false},
		{`\left( x`, false},
		{`x \right)`, false},
		{`x^`, false},
		{`{x_}`, false},
		{`a \`, false},
	}
	for _, tt := range tests {
		t.Run(tt.latex, func(t *testing.T) {
			err := ValidateLatex(tt.latex)
			if tt.ok && err != nil {
				t.Errorf("ValidateLatex(%q) = %v", tt.latex, err)
			}
			if !tt.ok && !errors.Is(err, ErrRender) {
				t.Errorf("ValidateLatex(%q) = %v, want ErrRender", tt.latex, err)
			}
		})
	}
}

func TestRenderMath(t *testing.T) {
	out, err := RenderMath("a < b", true)
	if err != nil {
		t.Fatalf("RenderMath: %v", err)
	}
	want := `<div class="katex-source katex-display" data-latex="a &lt; b">a &lt; b</div>`
	if out != want {
		t.Errorf("RenderMath = %s\nwant %s", out, want)
	}
}
