package backoffice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"castella/internal/gateway"
)

type call struct {
	method, path string
	body         json.RawMessage
}

type reply struct {
	body string
	err  error
}

// fakeAPI answers by "METHOD path". A route may queue several replies; the last one repeats.
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string][]reply
	calls  []call
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{routes: map[string][]reply{}}
}

func (f *fakeAPI) on(method, path string, replies ...reply) *fakeAPI {
	f.routes[method+" "+path] = append(f.routes[method+" "+path], replies...)
	return f
}

func ok(body string) reply { return reply{body: body} }

func fail(status int, message string) reply {
	return reply{err: &gateway.APIError{StatusCode: status, Message: message}}
}

func (f *fakeAPI) do(method, path string, body any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var raw json.RawMessage
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	f.calls = append(f.calls, call{method: method, path: path, body: raw})

	key := method + " " + path
	queue, found := f.routes[key]
	if !found || len(queue) == 0 {
		return nil, &gateway.APIError{Method: method, Path: path, StatusCode: http.StatusNotFound, Message: fmt.Sprintf("no route %s", key)}
	}
	r := queue[0]
	if len(queue) > 1 {
		f.routes[key] = queue[1:]
	}
	if r.err != nil {
		return nil, r.err
	}
	if r.body == "" {
		return nil, nil
	}
	return json.RawMessage(r.body), nil
}

func (f *fakeAPI) Get(_ context.Context, path string) (json.RawMessage, error) {
	return f.do(http.MethodGet, path, nil)
}

func (f *fakeAPI) Post(_ context.Context, path string, body any) (json.RawMessage, error) {
	return f.do(http.MethodPost, path, body)
}

func (f *fakeAPI) Put(_ context.Context, path string, body any) (json.RawMessage, error) {
	return f.do(http.MethodPut, path, body)
}

func (f *fakeAPI) Delete(_ context.Context, path string) (json.RawMessage, error) {
	return f.do(http.MethodDelete, path, nil)
}

func (f *fakeAPI) methodsAndPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.method+" "+c.path)
	}
	return out
}

func (f *fakeAPI) bodyOf(i int) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out map[string]any
	_ = json.Unmarshal(f.calls[i].body, &out)
	return out
}
