// Package try shortens handling of (value, error) pairs in tests and entrypoints.
package try

// Fataler stops the program or the test with the error.
//
// *testing.T and *log.Logger are Fatalers.
type Fataler interface {
	Fatal(...any)
}

// Either is a pair of a value and an error.
type Either[T any] interface {
	// Get returns the pair as it is.
	Get() (T, error)

	// OrFatal returns the value when there are no error.
	//
	// Otherwise, it calls ftl.Fatal with the error.
	// When ftl has Helper() (like *testing.T), it is called first.
	OrFatal(ftl Fataler) T
}

// To wraps the results of a function call.
//
//	v := try.To(strconv.Atoi(s)).OrFatal(t)
func To[T any](value T, err error) Either[T] {
	return either[T]{value: value, err: err}
}

type either[T any] struct {
	value T
	err   error
}

func (e either[T]) Get() (T, error) {
	if e.err != nil {
		return *new(T), e.err
	}
	return e.value, nil
}

func (e either[T]) OrFatal(ftl Fataler) T {
	if e.err == nil {
		return e.value
	}
	if h, ok := ftl.(interface{ Helper() }); ok {
		h.Helper()
	}
	ftl.Fatal(e.err)
	return *new(T)
}
