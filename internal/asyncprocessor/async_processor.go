// Package asyncprocessor contains an asynchronous processor.
package asyncprocessor

import (
	"github.com/bluenviron/rtspjpeg/pkg/ringbuffer"
)

// Processor is an asynchronous queue processor
// that allows to detach the routine that is reading a stream
// from the routine that consumes it.
// Errors returned by callbacks are passed to OnError and do not stop the processor.
type Processor struct {
	BufferSize int
	OnError    func(error)

	running bool
	buffer  *ringbuffer.RingBuffer[func() error]

	done chan struct{}
}

// Initialize initializes the processor.
func (w *Processor) Initialize() error {
	var err error
	w.buffer, err = ringbuffer.New[func() error](uint64(w.BufferSize))
	if err != nil {
		return err
	}

	if w.OnError == nil {
		w.OnError = func(error) {}
	}

	w.done = make(chan struct{})
	return nil
}

// Close closes the processor.
// Queued callbacks that have not been run yet are discarded.
func (w *Processor) Close() {
	w.buffer.Close()

	if w.running {
		<-w.done
	}
}

// Start starts the processor.
func (w *Processor) Start() {
	w.running = true
	go w.run()
}

func (w *Processor) run() {
	defer close(w.done)

	for {
		cb, ok := w.buffer.Pull()
		if !ok {
			return
		}

		err := cb()
		if err != nil {
			w.OnError(err)
		}
	}
}

// Push pushes a callback to the queue.
// It returns false when the queue is full.
func (w *Processor) Push(cb func() error) bool {
	return w.buffer.Push(cb)
}
