package adapter

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/amishk599/jobrank/internal/model"
)

type stubFetcher struct{ inner model.SourceFetcher }

func (s stubFetcher) FetchRecords(ctx context.Context) ([]model.RawRecord, error) {
	return nil, nil
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry(http.DefaultClient)

	tests := []struct {
		name    string
		src     model.SourceDescriptor
		wantErr bool
	}{
		{"lever", model.SourceDescriptor{Name: "a", Kind: model.KindLever, BoardToken: "acme"}, false},
		{"greenhouse", model.SourceDescriptor{Name: "b", Kind: model.KindGreenhouse, BoardToken: "acme"}, false},
		{"ashby", model.SourceDescriptor{Name: "c", Kind: model.KindAshby, BoardToken: "acme"}, false},
		{"feed", model.SourceDescriptor{Name: "d", Kind: model.KindFeed, URL: "https://x.io/rss"}, false},
		{"json", model.SourceDescriptor{Name: "e", Kind: model.KindJSON, URL: "https://x.io/api"}, false},
		{"html", model.SourceDescriptor{Name: "f", Kind: model.KindHTML, URL: "https://x.io", Selectors: model.HTMLSelectors{Item: "li"}}, false},
		{"lever without token", model.SourceDescriptor{Name: "g", Kind: model.KindLever}, true},
		{"html without selectors", model.SourceDescriptor{Name: "h", Kind: model.KindHTML, URL: "https://x.io"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, err := r.Resolve(tc.src)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f == nil {
				t.Fatal("expected a fetcher")
			}
		})
	}
}

func TestRegistry_UnknownKind(t *testing.T) {
	r := NewRegistry(http.DefaultClient)
	_, err := r.Resolve(model.SourceDescriptor{Name: "x", Kind: "workday"})
	if !errors.Is(err, model.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if r.Supports("workday") {
		t.Error("workday should not be supported")
	}
}

func TestRegistry_Wrap(t *testing.T) {
	r := NewRegistry(http.DefaultClient)
	var wrapped []string
	r.Wrap = func(src model.SourceDescriptor, f model.SourceFetcher) model.SourceFetcher {
		wrapped = append(wrapped, src.Name)
		return stubFetcher{inner: f}
	}

	f, err := r.Resolve(model.SourceDescriptor{Name: "acme", Kind: model.KindLever, BoardToken: "acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := f.(stubFetcher); !ok {
		t.Fatalf("expected wrapped fetcher, got %T", f)
	}
	if len(wrapped) != 1 || wrapped[0] != "acme" {
		t.Errorf("unexpected wrap calls %v", wrapped)
	}
}
