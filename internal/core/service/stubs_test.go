package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stub backend: routes are keyed by "METHOD path" and answer with a value
// that is JSON round-tripped into out, or an error.
// ---------------------------------------------------------------------------

type backendCall struct {
	Method string
	Path   string
	Token  string
	Body   any
}

type stubRoute func(body any) (any, error)

type stubBackend struct {
	mu     *sync.Mutex
	token  string
	routes map[string]stubRoute
	calls  *[]backendCall
}

func newStubBackend() *stubBackend {
	return &stubBackend{mu: &sync.Mutex{}, routes: make(map[string]stubRoute), calls: &[]backendCall{}}
}

func (b *stubBackend) on(method, path string, fn stubRoute) {
	b.routes[method+" "+path] = fn
}

func (b *stubBackend) reply(method, path string, v any) {
	b.on(method, path, func(any) (any, error) { return v, nil })
}

func (b *stubBackend) fail(method, path string, err error) {
	b.on(method, path, func(any) (any, error) { return nil, err })
}

func (b *stubBackend) callsTo(method, path string) []backendCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []backendCall
	for _, c := range *b.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (b *stubBackend) WithToken(token string) ports.Backend {
	return &stubBackend{mu: b.mu, token: token, routes: b.routes, calls: b.calls}
}

func (b *stubBackend) Get(ctx context.Context, path string, out any) error {
	return b.do("GET", path, nil, out)
}

func (b *stubBackend) Post(ctx context.Context, path string, body, out any) error {
	return b.do("POST", path, body, out)
}

func (b *stubBackend) Put(ctx context.Context, path string, body, out any) error {
	return b.do("PUT", path, body, out)
}

func (b *stubBackend) Delete(ctx context.Context, path string) error {
	return b.do("DELETE", path, nil, nil)
}

func (b *stubBackend) do(method, path string, body, out any) error {
	b.mu.Lock()
	*b.calls = append(*b.calls, backendCall{Method: method, Path: path, Token: b.token, Body: body})
	route, ok := b.routes[method+" "+path]
	b.mu.Unlock()

	if !ok {
		return &domain.RemoteError{Status: 404, Detail: fmt.Sprintf("no route %s %s", method, path)}
	}
	v, err := route(body)
	if err != nil {
		return err
	}
	if out == nil || v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// ---------------------------------------------------------------------------
// In-memory session, cart and submit-guard stores
// ---------------------------------------------------------------------------

type stubSessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	saveErr  error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]domain.Session)}
}

func (s *stubSessionStore) Save(_ context.Context, sess *domain.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *stubSessionStore) Find(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

type stubCartStore struct {
	mu    sync.Mutex
	carts map[string]domain.Cart
}

func newStubCartStore() *stubCartStore {
	return &stubCartStore{carts: make(map[string]domain.Cart)}
}

func (s *stubCartStore) Load(_ context.Context, sessionID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[sessionID]
	if !ok {
		return &domain.Cart{SessionID: sessionID}, nil
	}
	c.Lines = append([]domain.CartLine(nil), c.Lines...)
	return &c, nil
}

func (s *stubCartStore) Save(_ context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *cart
	c.Lines = append([]domain.CartLine(nil), cart.Lines...)
	s.carts[cart.SessionID] = c
	return nil
}

func (s *stubCartStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}

type stubGuard struct {
	mu   sync.Mutex
	held map[string]string
	seq  int
}

func newStubGuard() *stubGuard {
	return &stubGuard{held: make(map[string]string)}
}

func (g *stubGuard) Acquire(_ context.Context, key string) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.held[key]; ok {
		return "", false, nil
	}
	g.seq++
	token := fmt.Sprintf("t%d", g.seq)
	g.held[key] = token
	return token, true, nil
}

func (g *stubGuard) Release(_ context.Context, key, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[key] == token {
		delete(g.held, key)
	}
	return nil
}

type stubActivityRepo struct {
	mu      sync.Mutex
	records []domain.AdminActivity
	err     error
}

func (r *stubActivityRepo) Record(_ context.Context, a *domain.AdminActivity) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *a)
	return nil
}

func (r *stubActivityRepo) Recent(_ context.Context, limit int) ([]domain.AdminActivity, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]domain.AdminActivity(nil), r.records...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubFavoriteRepo struct {
	favs []domain.Favorite
}

func (r *stubFavoriteRepo) List(_ context.Context, visitorID string) ([]domain.Favorite, error) {
	var out []domain.Favorite
	for _, f := range r.favs {
		if f.VisitorID == visitorID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *stubFavoriteRepo) Add(_ context.Context, fav *domain.Favorite) error {
	for _, f := range r.favs {
		if f.VisitorID == fav.VisitorID && f.CoffeeID == fav.CoffeeID {
			return nil
		}
	}
	r.favs = append(r.favs, *fav)
	return nil
}

func (r *stubFavoriteRepo) Remove(_ context.Context, visitorID, coffeeID string) error {
	for i, f := range r.favs {
		if f.VisitorID == visitorID && f.CoffeeID == coffeeID {
			r.favs = append(r.favs[:i], r.favs[i+1:]...)
			return nil
		}
	}
	return nil
}
