package bridge

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gorilla/websocket"
)

// DialWebSocket connects to a controller listening at url and returns a
// Serial bridge over the connection. Each frame travels as one text
// message.
func DialWebSocket(ctx context.Context, url string, opts *Opts) (*Serial, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("bridge: dial %s: %w", url, err)
	}
	s := &wsStream{conn: conn}
	return NewSerial(s, s, opts), nil
}

// wsStream presents a websocket connection as a newline framed stream.
// Reads come from the Serial reader goroutine; writes only from the
// goroutine publishing events.
type wsStream struct {
	conn *websocket.Conn
	buf  []byte
}

func (s *wsStream) Read(p []byte) (int, error) {
	for len(s.buf) == 0 {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		s.buf = append(bytes.TrimRight(msg, "\r\n"), '\n')
	}
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

func (s *wsStream) Write(p []byte) (int, error) {
	if err := s.conn.WriteMessage(websocket.TextMessage, bytes.TrimRight(p, "\n")); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *wsStream) Close() error {
	return s.conn.Close()
}
