package docsystem

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Priya-753/notion-clone/internal/domain"
	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestUpload(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	url, err := f.images.Upload(ctx, owner, &docsysSvc.UploadedFile{Filename: "photo.bin", Content: bytes.NewReader(pngHeader)})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(url, "http://blobs.test/images/"+owner+"/") || !strings.HasSuffix(url, ".png") {
		t.Errorf("url = %s", url)
	}
	if got := f.blobs.types[url]; got != "image/png" {
		t.Errorf("content type = %s", got)
	}
}

func TestUploadRejects(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("hello, this is not an image")},
		{"too large", append(append([]byte{}, pngHeader...), make([]byte, 10<<20)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.images.Upload(ctx, owner, &docsysSvc.UploadedFile{Filename: "x.png", Content: bytes.NewReader(tt.data)})
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("err = %v", err)
			}
		})
	}
}

func TestUploadWithoutStorage(t *testing.T) {
	f := setup(t)
	svc := NewImageService(f.docRepo, f.imageRepo, nil, discardLogger())
	_, err := svc.Upload(context.Background(), owner, &docsysSvc.UploadedFile{Filename: "x.png", Content: bytes.NewReader(pngHeader)})
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("err = %v", err)
	}
}

func TestImageLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	doc := f.create(t, "Album", nil)

	url, err := f.images.Upload(ctx, owner, &docsysSvc.UploadedFile{Filename: "a.png", Content: bytes.NewReader(pngHeader)})
	if err != nil {
		t.Fatal(err)
	}
	img, err := f.images.AddToDocument(ctx, owner, doc.ID, &docsysSvc.AddImageRequest{URL: url, Width: ptr(640), Height: ptr(480)})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	updated, err := f.images.UpdateMetadata(ctx, owner, img.ID, &docsysSvc.UpdateImageRequest{Alt: ptr("a cat"), Caption: ptr("Figure 1")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if *updated.Alt != "a cat" || *updated.Caption != "Figure 1" {
		t.Errorf("updated = %+v", updated)
	}

	list, err := f.images.ListForDocument(ctx, owner, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || *list[0].Width != 640 {
		t.Errorf("list = %+v", list)
	}

	if err := f.images.DeleteImage(ctx, owner, img.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := f.blobs.deletedURLs(); len(got) != 1 || got[0] != url {
		t.Errorf("blob deletes = %v", got)
	}
	if _, ok := f.blobs.objects[url]; ok {
		t.Error("blob still stored")
	}
}

func TestImageOwnership(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	doc := f.create(t, "Private", nil)
	img, err := f.images.AddToDocument(ctx, owner, doc.ID, &docsysSvc.AddImageRequest{URL: "http://blobs.test/images/p.png"})
	if err != nil {
		t.Fatal(err)
	}

	const intruder = "user-2"
	if _, err := f.images.AddToDocument(ctx, intruder, doc.ID, &docsysSvc.AddImageRequest{URL: "http://x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("add: err = %v", err)
	}
	if _, err := f.images.ListForDocument(ctx, intruder, doc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("list: err = %v", err)
	}
	if _, err := f.images.UpdateMetadata(ctx, intruder, img.ID, &docsysSvc.UpdateImageRequest{Alt: ptr("x")}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("update: err = %v", err)
	}
	if err := f.images.DeleteImage(ctx, intruder, img.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("delete: err = %v", err)
	}
	if len(f.blobs.deletedURLs()) != 0 {
		t.Error("intruder deleted a blob")
	}
}

func TestAddImageValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	doc := f.create(t, "Doc", nil)

	tests := []*docsysSvc.AddImageRequest{
		{},
		{URL: "http://x", Width: ptr(0)},
		{URL: "http://x", Height: ptr(-3)},
		{URL: "http://x", Alt: ptr(strings.Repeat("a", 501))},
	}
	for _, req := range tests {
		if _, err := f.images.AddToDocument(ctx, owner, doc.ID, req); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%+v: err = %v", req, err)
		}
	}
}
