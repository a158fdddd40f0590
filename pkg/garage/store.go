// Package garage wires the entity containers of the garage administration
// front end to one REST API.
package garage

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/braude/garage/internal/rest"
	"github.com/braude/garage/pkg/container"
	"github.com/braude/garage/pkg/types"
)

// Container aliases for the three entity types.
type (
	ClientContainer     = container.Container[types.Client, int64]
	CarContainer        = container.Container[types.Car, int64]
	CarServiceContainer = container.Container[types.CarService, int64]
)

// Store holds one container per entity type, all talking to the same API.
// Stores are independent of each other; nothing is shared between them.
type Store struct {
	Clients     *ClientContainer
	Cars        *CarContainer
	CarServices *CarServiceContainer

	api *rest.Client
}

// Option configures a Store.
type Option func(*settings)

type settings struct {
	rest      []rest.Option
	container []container.Option
}

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) { s.rest = append(s.rest, rest.WithHTTPClient(hc)) }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.rest = append(s.rest, rest.WithTimeout(d)) }
}

// WithHeader adds a header to every request, e.g. an Authorization token.
func WithHeader(key, value string) Option {
	return func(s *settings) { s.rest = append(s.rest, rest.WithHeader(key, value)) }
}

// WithLogger routes transport and container debug logs to l.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) {
		s.rest = append(s.rest, rest.WithLogger(l))
		s.container = append(s.container, container.WithLogger(l))
	}
}

// WithSequencing selects how the containers reconcile overlapping requests.
func WithSequencing(seq container.Sequencing) Option {
	return func(s *settings) { s.container = append(s.container, container.WithSequencing(seq)) }
}

// New creates a Store for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Store {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	api := rest.New(baseURL, s.rest...)

	return &Store{
		Clients: container.New(
			container.Spec[types.Client, int64]{Name: types.TableClients, ID: types.ClientID},
			container.Transport[types.Client, int64](rest.NewResource[types.Client, int64](api, types.TableClients)),
			s.container...,
		),
		Cars: container.New(
			container.Spec[types.Car, int64]{Name: types.TableCars, ID: types.CarID},
			container.Transport[types.Car, int64](rest.NewResource[types.Car, int64](api, types.TableCars)),
			s.container...,
		),
		CarServices: container.New(
			container.Spec[types.CarService, int64]{Name: types.TableCarServices, ID: types.CarServiceID},
			container.Transport[types.CarService, int64](rest.NewResource[types.CarService, int64](api, types.TableCarServices)),
			s.container...,
		),
		api: api,
	}
}

// BaseURL returns the API root the Store talks to.
func (s *Store) BaseURL() string { return s.api.BaseURL() }

// Reset returns every container to its initial state.
func (s *Store) Reset() {
	s.Clients.Reset()
	s.Cars.Reset()
	s.CarServices.Reset()
}
