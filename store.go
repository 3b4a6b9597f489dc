package store

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// Reducer computes the next state from the current state and an action.
// Reducers must be pure; a returned error aborts the transition.
type Reducer[S any] func(state S, action Action) (S, error)

// Listener is notified after every completed transition.
type Listener func()

// Unsubscribe removes the listener it was returned for.
// Calling it again after it succeeded is a no-op.
type Unsubscribe func() error

// Dispatcher is anything that accepts actions.
type Dispatcher interface {
	Dispatch(action any) (any, error)
}

// Store holds a state value that only changes through dispatched actions.
type Store[S any] interface {
	Dispatcher

	// GetState returns the current state.
	GetState() (S, error)

	// Subscribe registers a listener called after every dispatch.
	Subscribe(listener Listener) (Unsubscribe, error)

	// ReplaceReducer swaps the reducer and dispatches ActionReplace.
	ReplaceReducer(next Reducer[S]) error
}

// CreateFunc builds a store from a reducer and an initial state.
type CreateFunc[S any] func(reducer Reducer[S], initial S) (Store[S], error)

// Enhancer wraps a CreateFunc to add behaviour to the stores it creates.
type Enhancer[S any] func(next CreateFunc[S]) CreateFunc[S]

// registration is one Subscribe call. Pointer identity distinguishes
// duplicate registrations of the same listener.
type registration struct {
	listener Listener
}

type listenerList struct {
	entries []*registration
}

// cell is the base Store implementation.
// mu guards the fields; it is never held while the reducer or listeners run.
type cell[S any] struct {
	mu          sync.Mutex
	reducer     Reducer[S]
	state       S
	published   *listenerList
	mutable     *listenerList
	dispatching bool
}

// New creates a store with the given reducer and initial state.
// At most one enhancer may be passed; use Compose to combine several.
func New[S any](reducer Reducer[S], initial S, enhancers ...Enhancer[S]) (Store[S], error) {
	if reducer == nil {
		return nil, fmt.Errorf("%w: reducer must be a non-nil function", ErrInvalidArgument)
	}

	switch len(enhancers) {
	case 0:
		return newCell(reducer, initial)
	case 1:
		if enhancers[0] == nil {
			return nil, fmt.Errorf("%w: enhancer must be a non-nil function", ErrInvalidEnhancer)
		}
		return enhancers[0](newCell[S])(reducer, initial)
	default:
		return nil, ErrInvalidComposition
	}
}

// Create is the positional constructor create(reducer, initialState?, enhancer?).
//
// A single function argument in the initial state position is taken as the
// enhancer and the initial state is left at its zero value. Two adjacent
// function arguments are rejected with ErrInvalidComposition.
func Create[S any](reducer Reducer[S], args ...any) (Store[S], error) {
	if reducer == nil {
		return nil, fmt.Errorf("%w: reducer must be a non-nil function", ErrInvalidArgument)
	}
	if (len(args) >= 2 && isFunc(args[0]) && isFunc(args[1])) ||
		(len(args) >= 3 && isFunc(args[1]) && isFunc(args[2])) {
		return nil, ErrInvalidComposition
	}
	if len(args) > 2 {
		return nil, fmt.Errorf("%w: expected at most an initial state and an enhancer, got %d arguments", ErrInvalidArgument, len(args))
	}

	var initialArg, enhancerArg any
	if len(args) > 0 {
		initialArg = args[0]
	}
	if len(args) > 1 {
		enhancerArg = args[1]
	}
	if isFunc(initialArg) && enhancerArg == nil {
		initialArg, enhancerArg = nil, initialArg
	}

	var initial S
	if initialArg != nil {
		s, ok := initialArg.(S)
		if !ok {
			return nil, fmt.Errorf("%w: initial state of type %T is not a %T", ErrInvalidArgument, initialArg, initial)
		}
		initial = s
	}

	if enhancerArg == nil {
		return New(reducer, initial)
	}
	enhancer, ok := asEnhancer[S](enhancerArg)
	if !ok {
		return nil, fmt.Errorf("%w: expected a store.Enhancer, got %T", ErrInvalidEnhancer, enhancerArg)
	}
	return New(reducer, initial, enhancer)
}

func newCell[S any](reducer Reducer[S], initial S) (Store[S], error) {
	if reducer == nil {
		return nil, fmt.Errorf("%w: reducer must be a non-nil function", ErrInvalidArgument)
	}

	listeners := &listenerList{}
	c := &cell[S]{
		reducer:   reducer,
		state:     initial,
		published: listeners,
		mutable:   listeners,
	}

	// Let the reducer fill in its default state.
	if _, err := c.Dispatch(Action{TypeKey: ActionInit}); err != nil {
		return nil, err
	}
	return c, nil
}

// GetState returns the current state.
func (c *cell[S]) GetState() (S, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dispatching {
		var zero S
		return zero, ErrReadDuringTransition
	}
	return c.state, nil
}

// Dispatch runs the reducer for action and notifies the listeners.
// It returns the action it was given.
func (c *cell[S]) Dispatch(action any) (any, error) {
	a, err := toAction(action)
	if err != nil {
		return nil, err
	}

	if err := c.reduce(a); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.published = c.mutable
	listeners := c.published.entries
	c.mu.Unlock()

	for _, r := range listeners {
		r.listener()
	}

	return action, nil
}

// reduce applies the reducer under the transition guard.
func (c *cell[S]) reduce(a Action) error {
	c.mu.Lock()
	if c.dispatching {
		c.mu.Unlock()
		return ErrReentrantTransition
	}
	c.dispatching = true
	reducer, state := c.reducer, c.state
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.dispatching = false
		c.mu.Unlock()
	}()

	next, err := reducer(state, a)
	if err != nil {
		return fmt.Errorf("reduce %v: %w", a.Type(), err)
	}

	c.mu.Lock()
	c.state = next
	c.mu.Unlock()
	return nil
}

// Subscribe registers listener. It fires from the next notification pass on.
func (c *cell[S]) Subscribe(listener Listener) (Unsubscribe, error) {
	if listener == nil {
		return nil, fmt.Errorf("%w: listener must be a non-nil function", ErrInvalidArgument)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dispatching {
		return nil, ErrSubscribeDuringTransition
	}

	r := &registration{listener: listener}
	c.ensureMutable()
	c.mutable.entries = append(c.mutable.entries, r)

	subscribed := true
	return func() error {
		c.mu.Lock()
		defer c.mu.Unlock()

		if !subscribed {
			return nil
		}
		if c.dispatching {
			return ErrUnsubscribeDuringTransition
		}
		subscribed = false

		c.ensureMutable()
		if i := slices.Index(c.mutable.entries, r); i >= 0 {
			c.mutable.entries = slices.Delete(c.mutable.entries, i, i+1)
		}
		return nil
	}, nil
}

// ensureMutable detaches the mutable list from the published snapshot.
// Callers hold c.mu.
func (c *cell[S]) ensureMutable() {
	if c.mutable == c.published {
		c.mutable = &listenerList{entries: slices.Clone(c.published.entries)}
	}
}

// ReplaceReducer swaps the reducer and dispatches ActionReplace so the new
// reducer can initialise any state it does not recognise.
func (c *cell[S]) ReplaceReducer(next Reducer[S]) error {
	if next == nil {
		return fmt.Errorf("%w: reducer must be a non-nil function", ErrInvalidArgument)
	}

	c.mu.Lock()
	if c.dispatching {
		c.mu.Unlock()
		return ErrReentrantTransition
	}
	c.reducer = next
	c.mu.Unlock()

	_, err := c.Dispatch(Action{TypeKey: ActionReplace})
	return err
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

func asEnhancer[S any](v any) (Enhancer[S], bool) {
	switch e := v.(type) {
	case Enhancer[S]:
		return e, e != nil
	case func(CreateFunc[S]) CreateFunc[S]:
		return e, e != nil
	}
	return nil, false
}
