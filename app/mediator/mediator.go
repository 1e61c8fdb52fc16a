// Package mediator dispatches typed requests to exactly one registered
// handler, running them through a shared middleware chain.
package mediator

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrHandlerNotFound          = errors.New("no handler registered for request")
	ErrHandlerAlreadyRegistered = errors.New("handler already registered for request")
)

// Unit is the response type of handlers that return nothing.
type Unit struct{}

type Handler[Req any, Res any] interface {
	Handle(ctx context.Context, req Req) (Res, error)
}

type HandlerFunc[Req any, Res any] func(ctx context.Context, req Req) (Res, error)

func (f HandlerFunc[Req, Res]) Handle(ctx context.Context, req Req) (Res, error) {
	return f(ctx, req)
}

// Next invokes the remainder of the chain.
type Next func(ctx context.Context, req any) (any, error)

type Middleware func(ctx context.Context, req any, next Next) (any, error)

type Mediator struct {
	mu          sync.RWMutex
	handlers    map[reflect.Type]Next
	middlewares []Middleware
}

func New(middlewares ...Middleware) *Mediator {
	return &Mediator{
		handlers:    make(map[reflect.Type]Next),
		middlewares: middlewares,
	}
}

func requestType[Req any]() reflect.Type {
	return reflect.TypeOf((*Req)(nil)).Elem()
}

// Register binds h to requests of type Req.
func Register[Req any, Res any](m *Mediator, h Handler[Req, Res]) error {
	key := requestType[Req]()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.handlers[key]; ok {
		return errors.Wrap(ErrHandlerAlreadyRegistered, key.String())
	}

	m.handlers[key] = func(ctx context.Context, req any) (any, error) {
		return h.Handle(ctx, req.(Req))
	}
	return nil
}

// MustRegister is Register for wiring code that cannot continue on failure.
func MustRegister[Req any, Res any](m *Mediator, h Handler[Req, Res]) {
	if err := Register(m, h); err != nil {
		panic(err)
	}
}

// Send dispatches req to its handler. A cancelled context fails before the
// handler runs.
func Send[Req any, Res any](ctx context.Context, m *Mediator, req Req) (Res, error) {
	var zero Res

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	key := requestType[Req]()

	m.mu.RLock()
	handler, ok := m.handlers[key]
	m.mu.RUnlock()
	if !ok {
		return zero, errors.Wrap(ErrHandlerNotFound, key.String())
	}

	out, err := m.chain(handler)(ctx, req)
	if err != nil {
		return zero, err
	}

	res, ok := out.(Res)
	if !ok {
		if out == nil {
			return zero, nil
		}
		return zero, fmt.Errorf("handler for %s returned %T", key, out)
	}
	return res, nil
}

func (m *Mediator) chain(handler Next) Next {
	next := handler
	for i := len(m.middlewares) - 1; i >= 0; i-- {
		mw := m.middlewares[i]
		inner := next
		next = func(ctx context.Context, req any) (any, error) {
			return mw(ctx, req, inner)
		}
	}
	return next
}
