package storage

import "testing"

func TestPublicBase(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"endpoint and bucket", Config{Endpoint: "localhost:9000", Bucket: "images"}, "http://localhost:9000/images/"},
		{"ssl", Config{Endpoint: "s3.example.com", Bucket: "images", UseSSL: true}, "https://s3.example.com/images/"},
		{"public url", Config{Endpoint: "minio:9000", Bucket: "images", PublicURL: "https://cdn.example.com/img/"}, "https://cdn.example.com/img/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PublicBase(tt.cfg); got != tt.want {
				t.Errorf("PublicBase() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyRoundTrip(t *testing.T) {
	base := "http://localhost:9000/images/"
	key := "user 1/abc.png"

	u := base + objectPath(key)
	if u != "http://localhost:9000/images/user%201/abc.png" {
		t.Fatalf("url = %q", u)
	}
	got, ok := KeyFromURL(base, u)
	if !ok || got != key {
		t.Errorf("KeyFromURL() = %q, %v; want %q", got, ok, key)
	}

	if _, ok := KeyFromURL(base, "https://elsewhere.example.com/a.png"); ok {
		t.Error("foreign url should not map to a key")
	}
	if _, ok := KeyFromURL(base, base); ok {
		t.Error("bare base should not map to a key")
	}
}
