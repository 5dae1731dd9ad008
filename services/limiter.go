package services

import "context"

// Limiter caps the number of extraction/download operations running at once.
// Downloads hold a slot for their whole pipeline (extraction, transcode,
// packaging), so the cap bounds sockets, disk I/O and transcoding CPU
// together.
type Limiter struct {
	slots chan struct{}
}

func NewLimiter(size int) *Limiter {
	if size < 1 {
		size = 1
	}
	return &Limiter{slots: make(chan struct{}, size)}
}

// Acquire blocks until a slot is free or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Limiter) Release() {
	<-l.slots
}
