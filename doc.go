// Package store implements a synchronous, single-writer state container.
//
// A store holds one state value that only changes when an action is
// dispatched. The reducer computes the next state from the current state and
// the action, then every subscribed listener is notified in registration order:
//
//	counter := func(state int, action store.Action) (int, error) {
//	    if action.Type() == "INC" {
//	        return state + 1, nil
//	    }
//	    return state, nil
//	}
//
//	s, _ := store.New(counter, 0)
//	s.Subscribe(func() { fmt.Println("changed") })
//	s.Dispatch(store.Action{"type": "INC"})
//	n, _ := s.GetState() // 1
//
// # Transitions
//
// While the reducer runs, the store rejects Dispatch, GetState, Subscribe and
// Unsubscribe with the matching error (ErrReentrantTransition,
// ErrReadDuringTransition, ...). Listeners run after the reducer returned, so
// they may read state and dispatch again; a nested dispatch completes,
// including its own notifications, before the outer listener continues.
//
// Overlapping calls fail immediately instead of waiting: the store is meant to
// be driven from one goroutine at a time.
//
// # Listener snapshots
//
// Each notification pass calls the listeners registered when that pass began.
// Subscribing or unsubscribing from inside a listener affects the next pass only.
//
// # Observers
//
// Observe pushes the current state to an Observer and then every later state:
//
//	sub, _ := store.Observe(s, store.ObserverFunc[int](func(n int) {
//	    fmt.Println("count:", n)
//	}))
//	defer sub.Unsubscribe()
//
// # Enhancers and middleware
//
// An Enhancer wraps the constructor to decorate the stores it builds. Pass at
// most one; combine several with Compose:
//
//	s, err := store.New(counter, 0, store.Compose(
//	    store.ApplyMiddleware(store.Logger[int](nil), store.Recoverer[int](nil)),
//	    otel.Enhancer[int](obs),
//	))
//
// CombineReducers splits a map state into slices owned by separate reducers.
package store
