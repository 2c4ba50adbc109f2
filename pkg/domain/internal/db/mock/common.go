package mocks

// CallLog records arguments of each call to a mock method.
type CallLog[T any] []T

func (l CallLog[T]) Times() uint {
	return uint(len(l))
}
