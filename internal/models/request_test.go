package models

import (
	"testing"

	"github.com/hyperjump/imi/internal/apperr"
)

func TestSearchRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		req       *SearchRequest
		wantErr   bool
		wantLimit int
	}{
		{"empty query", &SearchRequest{Query: ""}, true, 0},
		{"blank query", &SearchRequest{Query: "  \n"}, true, 0},
		{"sets default limit", &SearchRequest{Query: "x"}, false, 10},
		{"negative limit uses default", &SearchRequest{Query: "x", Limit: -3}, false, 10},
		{"keeps limit", &SearchRequest{Query: "x", Limit: 7}, false, 7},
		{"caps limit", &SearchRequest{Query: "x", Limit: 500}, false, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate(10, 100)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !apperr.HasCode(err, apperr.CodeRequestInvalid) {
					t.Errorf("expected %s, got %v", apperr.CodeRequestInvalid, err)
				}
				return
			}
			if tt.req.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", tt.req.Limit, tt.wantLimit)
			}
		})
	}
}

func TestSearchRequest_ValidateWithoutMax(t *testing.T) {
	req := &SearchRequest{Query: "x", Limit: 1000}
	if err := req.Validate(10, 0); err != nil {
		t.Fatal(err)
	}
	if req.Limit != 1000 {
		t.Errorf("Limit = %d, want 1000 when no max is set", req.Limit)
	}
}

func TestIndexRequest_Validate(t *testing.T) {
	if err := (&IndexRequest{Text: "hello"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := (&IndexRequest{ID: "a", Text: " "}).Validate()
	if !apperr.HasCode(err, apperr.CodeRequestInvalid) {
		t.Errorf("expected %s, got %v", apperr.CodeRequestInvalid, err)
	}
}

func TestWatchDirectoryRequest_SyncOrDefault(t *testing.T) {
	if !(&WatchDirectoryRequest{}).SyncOrDefault() {
		t.Error("sync should default to true")
	}
	off := false
	if (&WatchDirectoryRequest{Sync: &off}).SyncOrDefault() {
		t.Error("explicit false should be kept")
	}
}
