package bridge

import (
	"errors"
	"fmt"
	"io"
	"log"
	"reflect"
	"sync"

	"github.com/flavioheleno/retropanel/events"
)

// lineQueue is the number of inbound frames buffered between Update calls.
const lineQueue = 16

// Serial is a Bridge over a byte stream, usually a tty. A reader goroutine
// splits the input into lines; Update decodes them and calls the handler.
type Serial struct {
	r   io.Reader
	w   io.Writer
	log *log.Logger

	mu      sync.Mutex
	handler CommandHandler

	lines   chan []byte
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewSerial starts a bridge reading commands from r and writing events to
// w. Close closes r and w when they implement io.Closer.
func NewSerial(r io.Reader, w io.Writer, opts *Opts) *Serial {
	s := &Serial{
		r:       r,
		w:       w,
		log:     logger(opts),
		lines:   make(chan []byte, lineQueue),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *Serial) readLoop() {
	defer close(s.stopped)
	lr := newLineReader(s.r)
	for {
		line, err := lr.Next()
		if errors.Is(err, ErrTooLong) {
			s.log.Printf("bridge: dropping frame: %v", err)
			continue
		}
		if err != nil {
			if err != io.EOF {
				s.log.Printf("bridge: read: %v", err)
			}
			return
		}
		line = append([]byte(nil), line...)
		select {
		case s.lines <- line:
		case <-s.done:
			return
		default:
			s.log.Printf("bridge: dropping frame, queue full")
		}
	}
}

// SetHandler sets the receiver of decoded commands.
func (s *Serial) SetHandler(h CommandHandler) {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

// Update handles every frame received since the last call. Malformed and
// unknown frames are logged and dropped.
func (s *Serial) Update() {
	s.mu.Lock()
	h := s.handler
	s.mu.Unlock()
	for {
		select {
		case line := <-s.lines:
			c, err := DecodeCommand(line)
			if err != nil {
				s.log.Printf("bridge: %v", err)
				continue
			}
			Dispatch(c, h)
		default:
			return
		}
	}
}

// PublishEvent writes e as one frame.
func (s *Serial) PublishEvent(e *events.Event) error {
	if e == nil {
		return nil
	}
	if _, err := s.w.Write(EncodePublished(e)); err != nil {
		return fmt.Errorf("bridge: write: %w", err)
	}
	return nil
}

// Close stops the reader and closes the stream.
func (s *Serial) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		if c, ok := s.r.(io.Closer); ok {
			err = c.Close()
		}
		if c, ok := s.w.(io.Closer); ok && !sameStream(s.r, s.w) {
			err = errors.Join(err, c.Close())
		}
	})
	return err
}

func sameStream(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	return ta != nil && ta == tb && ta.Comparable() && a == b
}

// Done is closed once the reader goroutine has exited.
func (s *Serial) Done() <-chan struct{} {
	return s.stopped
}
