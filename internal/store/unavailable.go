package store

import "context"

type unavailable struct {
	err *UnavailableError
}

// Unavailable returns a backend whose every call fails with reason. It is
// installed when the store cannot be configured so actions still return a
// precise message instead of crashing the process.
func Unavailable(reason string) Backend {
	return unavailable{err: &UnavailableError{Reason: reason}}
}

func (u unavailable) Get(context.Context, string) (*Document, error) { return nil, u.err }

func (u unavailable) Query(context.Context, Query) ([]*Document, error) { return nil, u.err }

func (u unavailable) Apply(context.Context, []Op) error { return u.err }
