package store

import (
	"fmt"
	"reflect"
)

// Observer receives every state a store moves through.
type Observer[S any] interface {
	Next(state S)
}

// ErrorObserver is implemented by observers that want to hear about failed
// state reads after the initial emission.
type ErrorObserver interface {
	Error(err error)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc[S any] func(state S)

// Next calls f(state).
func (f ObserverFunc[S]) Next(state S) {
	f(state)
}

// Subscription is the handle returned by Observe.
type Subscription struct {
	unsubscribe Unsubscribe
}

// Unsubscribe stops the observer from receiving further states.
func (s *Subscription) Unsubscribe() error {
	return s.unsubscribe()
}

// Observe pushes the current state of s to observer and then every state after
// each dispatch. Next is optional: an observer without it is still subscribed.
// An observer whose Next method does not accept S is rejected.
func Observe[S any](s Store[S], observer any) (*Subscription, error) {
	next, _ := observer.(Observer[S])
	onError, _ := observer.(ErrorObserver)

	if isNil(observer) || (next == nil && onError == nil && !isStructured(observer)) {
		return nil, fmt.Errorf("%w, got %s", ErrInvalidObserver, kindOf(observer))
	}
	if next == nil {
		if m := reflect.ValueOf(observer).MethodByName("Next"); m.IsValid() {
			return nil, fmt.Errorf("%w: Next has signature %v, want func(%v)", ErrInvalidObserver, m.Type(), reflect.TypeFor[S]())
		}
	}

	if next != nil {
		state, err := s.GetState()
		if err != nil {
			return nil, err
		}
		next.Next(state)
	}

	unsubscribe, err := s.Subscribe(func() {
		if next == nil {
			return
		}
		state, err := s.GetState()
		if err != nil {
			if onError != nil {
				onError.Error(err)
			}
			return
		}
		next.Next(state)
	})
	if err != nil {
		return nil, err
	}

	return &Subscription{unsubscribe: unsubscribe}, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func isStructured(v any) bool {
	switch reflect.TypeOf(v).Kind() {
	case reflect.Struct, reflect.Pointer, reflect.Map:
		return true
	}
	return false
}
