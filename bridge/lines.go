package bridge

import (
	"bufio"
	"bytes"
	"io"
)

// maxLine bounds one inbound frame, line ending included.
const maxLine = 1024

// lineReader splits a stream into frames. Frames longer than maxLine are
// skipped whole and the stream stays usable.
type lineReader struct {
	br *bufio.Reader
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{br: bufio.NewReaderSize(r, maxLine)}
}

// Next returns the next non-blank frame with surrounding space trimmed. The
// slice is only valid until the following call. An over-long frame yields
// ErrTooLong; a final frame without a line ending is still returned before
// io.EOF.
func (lr *lineReader) Next() ([]byte, error) {
	for {
		line, err := lr.br.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			for err == bufio.ErrBufferFull {
				_, err = lr.br.ReadSlice('\n')
			}
			return nil, ErrTooLong
		}
		if line = bytes.TrimSpace(line); len(line) > 0 {
			return line, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
