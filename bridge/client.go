package bridge

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Client is the controller end of the link. It writes command frames and
// reads the events the panel publishes.
type Client struct {
	w  io.Writer
	lr *lineReader
}

// NewClient returns a client writing commands to w and reading events
// from r.
func NewClient(r io.Reader, w io.Writer) *Client {
	return &Client{w: w, lr: newLineReader(r)}
}

// Send writes one command frame.
func (c *Client) Send(cmd Command) error {
	if _, err := c.w.Write(EncodeCommand(cmd)); err != nil {
		return fmt.Errorf("bridge: write: %w", err)
	}
	return nil
}

// SetMode asks the panel to switch to mode. A negative preset is omitted.
func (c *Client) SetMode(mode int, name string, preset int) error {
	cmd := NewCommand(SetMode)
	cmd.Mode, cmd.ModeName, cmd.Preset = mode, name, preset
	return c.Send(cmd)
}

func (c *Client) SetVolume(v int) error {
	cmd := NewCommand(SetVolume)
	cmd.Value = v
	return c.Send(cmd)
}

func (c *Client) SetBrightness(v int) error {
	cmd := NewCommand(SetBrightness)
	cmd.Value = v
	return c.Send(cmd)
}

func (c *Client) SetMetadata(text string) error {
	cmd := NewCommand(SetMetadata)
	cmd.Text = text
	return c.Send(cmd)
}

func (c *Client) RequestStatus() error {
	return c.Send(NewCommand(RequestStatus))
}

// Next blocks until the next event frame and returns it in compact form.
// Both the full publish format and compact frames are accepted. It returns
// io.EOF once the stream ends, and ErrTooLong for a frame over the size
// limit, after which reading can continue.
func (c *Client) Next() (EventMessage, error) {
	line, err := c.lr.Next()
	switch {
	case err == io.EOF, errors.Is(err, ErrTooLong):
		return EventMessage{}, err
	case err != nil:
		return EventMessage{}, fmt.Errorf("bridge: read: %w", err)
	}
	if bytes.Contains(line, []byte(`"type_name"`)) {
		e, err := DecodePublished(line)
		if err != nil {
			return EventMessage{}, err
		}
		return ToMessage(e), nil
	}
	return DecodeEvent(line)
}
