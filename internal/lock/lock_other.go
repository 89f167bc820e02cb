//go:build !unix

// Package lock provides the advisory single-instance lock held for the duration of a run.
package lock

// Lock is a no-op on platforms without flock.
type Lock struct{}

// With runs fn.
func With(_ string, fn func() error) error {
	return fn()
}

// Acquire returns a no-op lock.
func Acquire(string) (*Lock, error) {
	return &Lock{}, nil
}

// Release does nothing.
func (l *Lock) Release() error {
	return nil
}
