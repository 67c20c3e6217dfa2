package comicfs

// PageFuture is a non-blocking handle to an in-progress page request.
//
// UI callers issue [Archive.RequestPage] on a page turn and poll Done
// (or select on it) while staying responsive; Result blocks until the
// request settles.
type PageFuture struct {
	done chan struct{}
	data []byte
	err  error
}

// Done is closed once the request has settled.
func (f *PageFuture) Done() <-chan struct{} {
	return f.done
}

// Result returns the page bytes, blocking until the request settles.
func (f *PageFuture) Result() ([]byte, error) {
	<-f.done
	return f.data, f.err
}

// TryResult returns the page bytes if the request has settled.
func (f *PageFuture) TryResult() (data []byte, err error, ok bool) {
	select {
	case <-f.done:
		return f.data, f.err, true
	default:
		return nil, nil, false
	}
}
