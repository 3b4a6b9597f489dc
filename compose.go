package store

// Compose combines enhancers into one, applied right to left:
// Compose(f, g, h) behaves like f(g(h(create))). Nil enhancers are skipped.
func Compose[S any](enhancers ...Enhancer[S]) Enhancer[S] {
	return func(next CreateFunc[S]) CreateFunc[S] {
		for i := len(enhancers) - 1; i >= 0; i-- {
			if enhancers[i] != nil {
				next = enhancers[i](next)
			}
		}
		return next
	}
}
