package store

import (
	"fmt"
	"log"
	"time"
)

// DispatchFunc is the signature of Store.Dispatch.
type DispatchFunc func(action any) (any, error)

// MiddlewareAPI is the part of the store a middleware may use.
type MiddlewareAPI[S any] interface {
	Dispatcher
	GetState() (S, error)
}

// Middleware wraps the dispatch function of a store.
// Dispatching through api runs the whole chain again.
type Middleware[S any] func(api MiddlewareAPI[S]) func(next DispatchFunc) DispatchFunc

// PanicHandler is called with the action and recovered value when the
// Recoverer middleware catches a panic.
type PanicHandler func(action any, panicValue any)

// middlewareStore overrides Dispatch of the store it embeds.
type middlewareStore[S any] struct {
	Store[S]
	dispatch DispatchFunc
}

func (m *middlewareStore[S]) Dispatch(action any) (any, error) {
	return m.dispatch(action)
}

// ApplyMiddleware returns an enhancer that routes every Dispatch through the
// middleware chain, first middleware outermost.
func ApplyMiddleware[S any](middlewares ...Middleware[S]) Enhancer[S] {
	return func(next CreateFunc[S]) CreateFunc[S] {
		return func(reducer Reducer[S], initial S) (Store[S], error) {
			base, err := next(reducer, initial)
			if err != nil {
				return nil, err
			}

			m := &middlewareStore[S]{
				Store: base,
				dispatch: func(any) (any, error) {
					return nil, ErrDispatchDuringConstruction
				},
			}
			api := &middlewareAPI[S]{store: m}

			chain := make([]func(DispatchFunc) DispatchFunc, 0, len(middlewares))
			for _, mw := range middlewares {
				if mw == nil {
					return nil, fmt.Errorf("%w: middleware must be a non-nil function", ErrInvalidArgument)
				}
				chain = append(chain, mw(api))
			}

			dispatch := DispatchFunc(base.Dispatch)
			for i := len(chain) - 1; i >= 0; i-- {
				dispatch = chain[i](dispatch)
			}
			m.dispatch = dispatch
			return m, nil
		}
	}
}

// middlewareAPI resolves Dispatch late so that middlewares built before the
// chain is complete still reach the final dispatch function.
type middlewareAPI[S any] struct {
	store *middlewareStore[S]
}

func (a *middlewareAPI[S]) Dispatch(action any) (any, error) {
	return a.store.dispatch(action)
}

func (a *middlewareAPI[S]) GetState() (S, error) {
	return a.store.GetState()
}

// Logger logs every dispatched action with its duration and outcome.
// A nil logger uses log.Default().
func Logger[S any](logger *log.Logger) Middleware[S] {
	if logger == nil {
		logger = log.Default()
	}
	return func(api MiddlewareAPI[S]) func(DispatchFunc) DispatchFunc {
		return func(next DispatchFunc) DispatchFunc {
			return func(action any) (any, error) {
				typ, _ := TypeOf(action)
				logger.Printf("store: dispatching %v", typ)
				start := time.Now()
				result, err := next(action)
				if err != nil {
					logger.Printf("store: %v failed after %v: %v", typ, time.Since(start), err)
					return result, err
				}
				logger.Printf("store: %v completed in %v", typ, time.Since(start))
				return result, nil
			}
		}
	}
}

// Recoverer turns a panic raised by the reducer or a listener into an error
// wrapping ErrPanic. The handler, if non-nil, is told about the panic first.
func Recoverer[S any](handler PanicHandler) Middleware[S] {
	return func(api MiddlewareAPI[S]) func(DispatchFunc) DispatchFunc {
		return func(next DispatchFunc) DispatchFunc {
			return func(action any) (result any, err error) {
				defer func() {
					if r := recover(); r != nil {
						if handler != nil {
							handler(action, r)
						}
						typ, _ := TypeOf(action)
						result, err = nil, fmt.Errorf("%w: %v: %v", ErrPanic, typ, r)
					}
				}()
				return next(action)
			}
		}
	}
}
