package container

import (
	"context"
	"sync"

	"github.com/braude/garage/pkg/types"
)

type widget struct {
	ID   *int64 `json:"id,omitempty"`
	Name string `json:"name"`
	Note string `json:"note"`
	Size *int   `json:"size,omitempty"`
}

func widgetID(w widget) (int64, bool) {
	if w.ID == nil {
		return 0, false
	}
	return *w.ID, true
}

var widgetSpec = Spec[widget, int64]{Name: "widgets", ID: widgetID}

// gate blocks one call until release is closed.
type gate struct {
	started chan struct{}
	release chan struct{}
}

// fakeTransport is an in-memory Transport that records every call.
type fakeTransport struct {
	mu       sync.Mutex
	calls    []string
	payloads []types.Payload
	pages    []types.Page
	items    []widget
	nextID   int64
	fail     map[string]error
	gates    map[string]*gate

	// list overrides the listing returned for the n-th list call (0-based).
	list func(n int) types.Listing[widget]
	nlist int
}

func newFake(items ...widget) *fakeTransport {
	f := &fakeTransport{
		fail:   map[string]error{},
		gates:  map[string]*gate{},
		nextID: 1,
	}
	for _, w := range items {
		f.store(w)
	}
	return f
}

func failure(method string, status int) error {
	return &types.RequestFailed{Method: method, URL: "/api/widgets", StatusCode: status}
}

// hold gates the next call of op.
func (f *fakeTransport) hold(op string) *gate {
	g := &gate{started: make(chan struct{}), release: make(chan struct{})}
	f.mu.Lock()
	f.gates[op] = g
	f.mu.Unlock()
	return g
}

func (f *fakeTransport) failWith(op string, err error) {
	f.mu.Lock()
	if err == nil {
		delete(f.fail, op)
	} else {
		f.fail[op] = err
	}
	f.mu.Unlock()
}

func (f *fakeTransport) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeTransport) enter(op string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	g := f.gates[op]
	delete(f.gates, op)
	err := f.fail[op]
	f.mu.Unlock()

	if g != nil {
		close(g.started)
		<-g.release
	}
	return err
}

func (f *fakeTransport) store(w widget) widget {
	if w.ID == nil {
		w.ID = types.Int64(f.nextID)
		f.nextID++
	}
	for i := range f.items {
		if *f.items[i].ID == *w.ID {
			f.items[i] = w
			return w
		}
	}
	f.items = append(f.items, w)
	return w
}

func (f *fakeTransport) List(_ context.Context, _ types.Criteria, page types.Page) (types.Listing[widget], error) {
	f.mu.Lock()
	n := f.nlist
	f.nlist++
	f.pages = append(f.pages, page)
	f.mu.Unlock()

	if err := f.enter("list"); err != nil {
		return types.Listing[widget]{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.list != nil {
		return f.list(n), nil
	}
	items := append([]widget(nil), f.items...)
	return types.Listing[widget]{Items: items, TotalItems: int64(len(items))}, nil
}

func (f *fakeTransport) Search(ctx context.Context, _ string, page types.Page) (types.Listing[widget], error) {
	if err := f.enter("search"); err != nil {
		return types.Listing[widget]{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	items := append([]widget(nil), f.items...)
	return types.Listing[widget]{Items: items, TotalItems: int64(len(items))}, nil
}

func (f *fakeTransport) Get(_ context.Context, id int64) (widget, error) {
	if err := f.enter("get"); err != nil {
		return widget{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.items {
		if *w.ID == id {
			return w, nil
		}
	}
	return widget{}, failure("GET", 404)
}

func (f *fakeTransport) save(op string, p types.Payload) (widget, error) {
	if err := f.enter(op); err != nil {
		return widget{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)

	var w widget
	if v, ok := p["id"]; ok {
		n, _ := v.(interface{ Int64() (int64, error) }).Int64()
		w.ID = types.Int64(n)
	}
	w.Name, _ = p["name"].(string)
	w.Note, _ = p["note"].(string)
	if v, ok := p["size"]; ok {
		n, _ := v.(interface{ Int64() (int64, error) }).Int64()
		w.Size = types.Int(int(n))
	}
	return f.store(w), nil
}

func (f *fakeTransport) Create(_ context.Context, p types.Payload) (widget, error) {
	return f.save("create", p)
}

func (f *fakeTransport) Update(_ context.Context, p types.Payload) (widget, error) {
	return f.save("update", p)
}

func (f *fakeTransport) Delete(_ context.Context, id int64) error {
	if err := f.enter("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, w := range f.items {
		if *w.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return failure("DELETE", 404)
}

func (f *fakeTransport) Count(_ context.Context, _ types.Criteria) (int64, error) {
	if err := f.enter("count"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items)), nil
}
