package botx

import (
	"context"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Router dispatches requests to handlers by their command.
type Router struct {
	notFound    Handler
	handlers    map[string]Handler
	middlewares []Middleware
}

// NewRouter returns a multiplexer for handlers.
func NewRouter() *Router {
	return &Router{
		handlers: make(map[string]Handler),
		notFound: NotFound,
	}
}

// Add adds a handler for the command, e.g. "/news".
func (r *Router) Add(cmd string, h Handler) {
	r.handlers[strings.ToLower(cmd)] = h
}

// Use applies middleware to all handlers.
func (r *Router) Use(mvs ...Middleware) *Router {
	r.middlewares = append(r.middlewares, mvs...)
	return r
}

// Group registers handlers with their own set of middlewares,
// applied after the router's ones.
func (r *Router) Group(f func(rtr *Router)) {
	nested := NewRouter()
	f(nested)

	for cmd, h := range nested.handlers {
		r.Add(cmd, chain(h, nested.middlewares))
	}
}

// NotFound sets a handler for messages without a registered command.
func (r *Router) NotFound(h Handler) {
	r.notFound = h
}

// Commands lists registered commands in alphabetical order.
func (r *Router) Commands() []string {
	res := lo.Keys(r.handlers)
	sort.Strings(res)
	return res
}

// Handle handles request.
func (r *Router) Handle(ctx context.Context, req Request) ([]Response, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, nil
	}

	h, ok := r.handlers[req.Command()]
	if !ok {
		h = r.notFound
	}

	return chain(h, r.middlewares)(ctx, req)
}

func chain(h Handler, mws []Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
