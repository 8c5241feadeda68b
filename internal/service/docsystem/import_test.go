package docsystem

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Priya-753/notion-clone/internal/domain"
	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
)

func zipArchive(t *testing.T, files map[string]string) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(buf.Bytes())
}

func upload(name, content string) docsysSvc.UploadedFile {
	return docsysSvc.UploadedFile{Filename: name, Content: strings.NewReader(content)}
}

func TestImportMarkdownWithFrontmatter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	md := "---\ntitle: Trip plan\nicon: \"🧳\"\n---\n\nPack **light**.\n\n- [x] passport\n- [ ] tickets\n"
	result, err := f.imports.ProcessFiles(ctx, owner, nil, []docsysSvc.UploadedFile{upload("trip.md", md)}, false)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Summary.Created != 1 || len(result.Documents) != 1 {
		t.Fatalf("result = %+v", result)
	}

	doc, err := f.docs.GetDocument(ctx, owner, result.Documents[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Trip plan" || doc.Icon == nil || *doc.Icon != "🧳" {
		t.Errorf("doc = %q icon %v", doc.Title, doc.Icon)
	}
	for _, want := range []string{
		"<h1>Trip plan</h1>",
		"<strong>light</strong>",
		`data-type="taskItem" data-checked="true"`,
	} {
		if !strings.Contains(doc.Content, want) {
			t.Errorf("content missing %q:\n%s", want, doc.Content)
		}
	}
}

func TestImportTitleFromHeadingOrFilename(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	result, err := f.imports.ProcessFiles(ctx, owner, nil, []docsysSvc.UploadedFile{
		upload("ignored_name.md", "# Real heading\n\nbody"),
		upload("meeting_notes.txt", "first line\nsecond line"),
	}, false)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Summary.Created != 2 {
		t.Fatalf("summary = %+v errors = %v", result.Summary, result.Errors)
	}
	if got := result.Documents[0].Title; got != "Real heading" {
		t.Errorf("heading title = %q", got)
	}
	if got := result.Documents[1].Title; got != "meeting notes" {
		t.Errorf("filename title = %q", got)
	}
}

func TestImportDuplicates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	files := func(body string) []docsysSvc.UploadedFile {
		return []docsysSvc.UploadedFile{upload("notes.md", "# Notes\n\n"+body)}
	}

	first, err := f.imports.ProcessFiles(ctx, owner, nil, files("v1"), false)
	if err != nil {
		t.Fatal(err)
	}
	id := first.Documents[0].ID

	skipped, err := f.imports.ProcessFiles(ctx, owner, nil, files("v2"), false)
	if err != nil {
		t.Fatal(err)
	}
	if skipped.Summary.Skipped != 1 || skipped.Documents[0].ID != id {
		t.Errorf("skip result = %+v", skipped)
	}

	updated, err := f.imports.ProcessFiles(ctx, owner, nil, files("v3"), true)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Summary.Updated != 1 {
		t.Errorf("overwrite result = %+v", updated.Summary)
	}
	doc, err := f.docs.GetDocument(ctx, owner, id)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc.Content, "v3") {
		t.Errorf("content = %s", doc.Content)
	}
}

func TestImportZipBuildsTree(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	parent := f.create(t, "Imports", nil)

	archive := zipArchive(t, map[string]string{
		"Book.md":               "# Book\n\nPreface",
		"Book/Chapter 1.md":     "Once upon a time",
		"Book/Part 2/Ending.md": "The end",
		"image.png":             "not imported",
		"__MACOSX/._Book.md":    "resource fork",
	})
	result, err := f.imports.ProcessFiles(ctx, owner, &parent.ID, []docsysSvc.UploadedFile{
		{Filename: "export.zip", Content: archive},
	}, false)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	// Book, Chapter 1, folder "Part 2", Ending.
	if result.Summary.Created != 4 || result.Summary.Skipped != 1 || result.Summary.Failed != 0 {
		t.Fatalf("summary = %+v errors = %v", result.Summary, result.Errors)
	}

	top, err := f.docs.ListChildren(ctx, owner, &parent.ID)
	if err != nil {
		t.Fatal(err)
	}
	if titles(top) != "Book" {
		t.Fatalf("under Imports = %s", titles(top))
	}
	book, err := f.docs.ListChildren(ctx, owner, &top[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if titles(book) != "Part 2,Chapter 1" {
		t.Fatalf("under Book = %s", titles(book))
	}
	part, err := f.docs.ListChildren(ctx, owner, &book[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if titles(part) != "Ending" {
		t.Errorf("under Part 2 = %s", titles(part))
	}
}

func TestImportErrors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	result, err := f.imports.ProcessFiles(ctx, owner, nil, []docsysSvc.UploadedFile{
		upload("slides.pptx", "binary"),
		upload("broken.zip", "not a zip"),
		upload("ok.md", "fine"),
	}, false)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Summary.Failed != 2 || result.Summary.Created != 1 || result.Summary.TotalFiles != 3 {
		t.Errorf("summary = %+v", result.Summary)
	}

	if _, err := f.imports.ProcessFiles(ctx, owner, ptr("missing"), nil, false); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing parent: err = %v", err)
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := map[string]string{
		"notes.md":             "notes",
		"dir/meeting_notes.md": "meeting notes",
		`win\path\file.txt`:    "file",
		"archive.tar.md":       "archive.tar",
	}
	for in, want := range tests {
		if got := TitleFromFilename(in); got != want {
			t.Errorf("TitleFromFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
