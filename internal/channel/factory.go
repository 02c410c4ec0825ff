package channel

// New returns a buffered channel of the given size, or an unbuffered one
// when size is not positive.
func New[T any](size int) Channel[T] {
	if size <= 0 {
		return NewUnbuffered[T]()
	}
	return NewBuffered[T](size)
}
