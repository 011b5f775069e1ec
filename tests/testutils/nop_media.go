package testutils

import "context"

// NopMedia is a media source that always acquires successfully.
type NopMedia struct{}

func (NopMedia) Acquire(ctx context.Context) error { return nil }
func (NopMedia) Release()                          {}
