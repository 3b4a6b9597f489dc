package store

// BindActionCreator returns a function that builds an action with creator and
// dispatches it on d.
func BindActionCreator[T any](d Dispatcher, creator func(T) Action) func(T) (any, error) {
	return func(arg T) (any, error) {
		return d.Dispatch(creator(arg))
	}
}

// BindActionCreators binds every creator in creators to d. Nil creators are skipped.
func BindActionCreators[T any](d Dispatcher, creators map[string]func(T) Action) map[string]func(T) (any, error) {
	bound := make(map[string]func(T) (any, error), len(creators))
	for name, creator := range creators {
		if creator == nil {
			continue
		}
		bound[name] = BindActionCreator(d, creator)
	}
	return bound
}
