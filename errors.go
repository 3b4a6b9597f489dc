package store

import "errors"

var (
	// ErrInvalidComposition is returned when more than one enhancer is passed
	// to a constructor. Combine them with Compose first.
	ErrInvalidComposition = errors.New("store: several enhancers passed, compose them into one")

	// ErrInvalidEnhancer is returned when the enhancer argument is not an Enhancer.
	ErrInvalidEnhancer = errors.New("store: invalid enhancer")

	// ErrInvalidArgument is returned for nil reducers and listeners, and for
	// initial states of the wrong type.
	ErrInvalidArgument = errors.New("store: invalid argument")

	// ErrInvalidActionShape is returned when a dispatched action is not a plain mapping.
	ErrInvalidActionShape = errors.New("store: action must be a plain mapping")

	// ErrMissingDiscriminator is returned when an action has no type field.
	ErrMissingDiscriminator = errors.New(`store: action has no "type" field`)

	// ErrReentrantTransition is returned when Dispatch is called while a reducer is running.
	ErrReentrantTransition = errors.New("store: reducers may not dispatch actions")

	// ErrReadDuringTransition is returned when GetState is called while a reducer
	// is running. Reducers receive the state as an argument instead.
	ErrReadDuringTransition = errors.New("store: may not read state while the reducer is executing")

	// ErrSubscribeDuringTransition is returned when Subscribe is called while a reducer is running.
	ErrSubscribeDuringTransition = errors.New("store: may not subscribe while the reducer is executing")

	// ErrUnsubscribeDuringTransition is returned when an Unsubscribe func is
	// called while a reducer is running.
	ErrUnsubscribeDuringTransition = errors.New("store: may not unsubscribe while the reducer is executing")

	// ErrInvalidObserver is returned by Observe for nil or non-structured observers.
	ErrInvalidObserver = errors.New("store: observer must be a non-nil structured value")

	// ErrDispatchDuringConstruction is returned when a middleware dispatches
	// while the middleware chain is still being built.
	ErrDispatchDuringConstruction = errors.New("store: dispatching while constructing middleware is not allowed")

	// ErrPanic wraps a value recovered by the Recoverer middleware.
	ErrPanic = errors.New("store: panic during dispatch")

	// ErrInvalidReducerShape is returned by CombineReducers when a slice reducer
	// does not produce an initial state.
	ErrInvalidReducerShape = errors.New("store: invalid reducer shape")
)
