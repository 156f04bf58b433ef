package adapter

import (
	"fmt"
	"net/http"

	"github.com/amishk599/jobrank/internal/model"
)

// Factory builds the fetcher for one source descriptor.
type Factory func(src model.SourceDescriptor, client *http.Client) (model.SourceFetcher, error)

// Registry maps source kinds to adapter factories.
type Registry struct {
	client    *http.Client
	factories map[model.SourceKind]Factory

	// Wrap, when set, decorates every fetcher the registry builds
	// (retry, rate limiting, metrics).
	Wrap func(src model.SourceDescriptor, f model.SourceFetcher) model.SourceFetcher
}

// NewRegistry returns a registry with the built-in adapters registered.
func NewRegistry(client *http.Client) *Registry {
	r := &Registry{client: client, factories: make(map[model.SourceKind]Factory)}
	r.Register(model.KindLever, func(src model.SourceDescriptor, c *http.Client) (model.SourceFetcher, error) {
		if src.BoardToken == "" {
			return nil, fmt.Errorf("source %q: board_token is required for lever", src.Name)
		}
		return NewLeverAdapter(src.BoardToken, src.Company, c), nil
	})
	r.Register(model.KindGreenhouse, func(src model.SourceDescriptor, c *http.Client) (model.SourceFetcher, error) {
		if src.BoardToken == "" {
			return nil, fmt.Errorf("source %q: board_token is required for greenhouse", src.Name)
		}
		return NewGreenhouseAdapter(src.BoardToken, src.Company, c), nil
	})
	r.Register(model.KindAshby, func(src model.SourceDescriptor, c *http.Client) (model.SourceFetcher, error) {
		if src.BoardToken == "" {
			return nil, fmt.Errorf("source %q: board_token is required for ashby", src.Name)
		}
		return NewAshbyAdapter(src.BoardToken, src.Company, c), nil
	})
	r.Register(model.KindFeed, func(src model.SourceDescriptor, c *http.Client) (model.SourceFetcher, error) {
		if src.URL == "" {
			return nil, fmt.Errorf("source %q: url is required for feed", src.Name)
		}
		return NewFeedAdapter(src.URL, src.Company, c), nil
	})
	r.Register(model.KindJSON, func(src model.SourceDescriptor, c *http.Client) (model.SourceFetcher, error) {
		if src.URL == "" {
			return nil, fmt.Errorf("source %q: url is required for json", src.Name)
		}
		return NewJSONAdapter(src.URL, src.Company, c), nil
	})
	r.Register(model.KindHTML, func(src model.SourceDescriptor, c *http.Client) (model.SourceFetcher, error) {
		if src.URL == "" || src.Selectors.Item == "" {
			return nil, fmt.Errorf("source %q: url and selectors.item are required for html", src.Name)
		}
		return NewHTMLAdapter(src.URL, src.Company, src.Selectors, c), nil
	})
	return r
}

// Register adds or replaces the factory for kind.
func (r *Registry) Register(kind model.SourceKind, f Factory) {
	r.factories[kind] = f
}

// Supports reports whether kind has a registered adapter.
func (r *Registry) Supports(kind model.SourceKind) bool {
	_, ok := r.factories[kind]
	return ok
}

// Resolve builds the fetcher for src. Unknown kinds return an error wrapping
// model.ErrUnknownKind.
func (r *Registry) Resolve(src model.SourceDescriptor) (model.SourceFetcher, error) {
	f, ok := r.factories[src.Kind]
	if !ok {
		return nil, fmt.Errorf("source %q kind %q: %w", src.Name, src.Kind, model.ErrUnknownKind)
	}
	fetcher, err := f(src, r.client)
	if err != nil {
		return nil, err
	}
	if r.Wrap != nil {
		fetcher = r.Wrap(src, fetcher)
	}
	return fetcher, nil
}
