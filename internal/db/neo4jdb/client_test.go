package neo4jdb

import (
	"context"
	"testing"
)

func TestNew_RequiresURI(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for empty uri")
	}
}

func TestNew_InvalidScheme(t *testing.T) {
	if _, err := New(context.Background(), Config{URI: "ftp://localhost:7687"}); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}
