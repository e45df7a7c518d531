package storage

import (
	"context"
	"testing"
)

func TestNewUnconfigured(t *testing.T) {
	c, err := New("", "fsn1", "", "", "images", "")
	if err != nil || c != nil {
		t.Errorf("expected (nil, nil) without endpoint, got %v, %v", c, err)
	}

	if _, err := New("https://s3.example.com", "fsn1", "key", "secret", "", ""); err == nil {
		t.Error("expected error for missing bucket")
	}
}

func TestFileURL(t *testing.T) {
	direct, _ := New("https://s3.example.com/", "fsn1", "key", "secret", "images", "")
	if got := direct.FileURL("categories/a.png"); got != "https://s3.example.com/images/categories/a.png" {
		t.Errorf("path-style FileURL = %q", got)
	}

	cdn, _ := New("https://s3.example.com", "fsn1", "key", "secret", "images", "https://cdn.example.com/")
	if got := cdn.FileURL("categories/a.png"); got != "https://cdn.example.com/categories/a.png" {
		t.Errorf("CDN FileURL = %q", got)
	}
}

func TestExtractKey(t *testing.T) {
	c, _ := New("https://s3.example.com", "fsn1", "key", "secret", "images", "https://cdn.example.com")

	tests := []struct {
		name string
		url  string
		key  string
		ok   bool
	}{
		{"cdn url", "https://cdn.example.com/categories/a.png", "categories/a.png", true},
		{"path-style url", "https://s3.example.com/images/b.jpg", "b.jpg", true},
		{"other bucket", "https://s3.example.com/other/b.jpg", "", false},
		{"foreign host", "https://img.vendor.com/a.png", "", false},
		{"bare prefix", "https://cdn.example.com/", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := c.ExtractKey(tt.url)
			if key != tt.key || ok != tt.ok {
				t.Errorf("ExtractKey(%q) = %q, %v; want %q, %v", tt.url, key, ok, tt.key, tt.ok)
			}
		})
	}
}

func TestDeleteByURLIgnoresForeignURL(t *testing.T) {
	c, _ := New("https://s3.example.com", "fsn1", "key", "secret", "images", "")
	if err := c.DeleteByURL(context.Background(), "https://img.vendor.com/a.png"); err != nil {
		t.Errorf("foreign URL should be skipped, got %v", err)
	}
}
