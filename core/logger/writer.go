package logger

import (
	"bufio"
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// sink is one buffered output. A sink that fails is disabled and the rest keep receiving records.
type sink struct {
	buf *bufio.Writer
	err error
}

// asyncWriter fans log records out to its sinks from a single goroutine.
type asyncWriter struct {
	queue    chan []byte
	flushReq chan chan error
	done     chan struct{}
	once     sync.Once

	mu    sync.Mutex
	sinks []*sink
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	sinks := make([]*sink, 0, len(writers))
	for _, w := range writers {
		if w == nil {
			continue
		}
		sinks = append(sinks, &sink{buf: bufio.NewWriterSize(w, bufSize)})
	}
	aw := &asyncWriter{
		queue:    make(chan []byte, 256),
		flushReq: make(chan chan error),
		done:     make(chan struct{}),
		sinks:    sinks,
	}
	go aw.loop()
	return aw
}

func (w *asyncWriter) loop() {
	for {
		select {
		case data, ok := <-w.queue:
			if !ok {
				w.flushAll()
				close(w.done)
				return
			}
			if len(data) > 0 {
				w.writeAll(data)
			}
		case ack := <-w.flushReq:
			w.drain()
			ack <- w.flushAll()
		}
	}
}

// drain writes whatever is already queued so a flush covers earlier writes.
func (w *asyncWriter) drain() {
	for {
		select {
		case data, ok := <-w.queue:
			if !ok {
				return
			}
			if len(data) > 0 {
				w.writeAll(data)
			}
		default:
			return
		}
	}
}

// Write copies p and queues it; it blocks only when the queue is full.
// It fails once every sink has failed.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.deadErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	data := make([]byte, len(p))
	copy(data, p)
	w.queue <- data
	return nil
}

// Flush waits until everything queued before the call reaches the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	select {
	case w.flushReq <- ack:
		return <-ack
	case <-w.done:
		return w.Err()
	}
}

// Close drains the queue and reports the errors of failed sinks.
func (w *asyncWriter) Close() error {
	w.once.Do(func() {
		close(w.queue)
	})
	<-w.done
	return w.Err()
}

// Err aggregates the errors of every failed sink.
func (w *asyncWriter) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var result *multierror.Error
	for _, s := range w.sinks {
		if s.err != nil {
			result = multierror.Append(result, s.err)
		}
	}
	return result.ErrorOrNil()
}

func (w *asyncWriter) writeAll(p []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.sinks {
		if s.err != nil {
			continue
		}
		if _, err := s.buf.Write(p); err != nil {
			s.err = err
			continue
		}
		if err := s.buf.Flush(); err != nil {
			s.err = err
		}
	}
}

func (w *asyncWriter) flushAll() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var result *multierror.Error
	for _, s := range w.sinks {
		if s.err != nil {
			result = multierror.Append(result, s.err)
			continue
		}
		if err := s.buf.Flush(); err != nil {
			s.err = err
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// deadErr is non-nil when no healthy sink is left.
func (w *asyncWriter) deadErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.sinks) == 0 {
		return nil
	}
	var result *multierror.Error
	for _, s := range w.sinks {
		if s.err == nil {
			return nil
		}
		result = multierror.Append(result, s.err)
	}
	return result.ErrorOrNil()
}
