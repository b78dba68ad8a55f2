package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"sync/atomic"

	"github.com/trayd/trayd/internal/errors"
)

// Client talks to a running daemon. Call opens a connection per request;
// Listen and Events hold one open until ctx is done.
type Client struct {
	socketPath string
	nextID     atomic.Uint64
}

// NewClient creates a client for the daemon at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

type session struct {
	nc      net.Conn
	scanner *bufio.Scanner
	enc     *json.Encoder
	done    chan struct{}
}

func (s *session) close() {
	close(s.done)
	s.nc.Close()
}

func (c *Client) dial(ctx context.Context) (*session, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrUnavailable,
			"Cannot connect to trayd at "+c.socketPath,
			"Start the daemon with: trayd serve")
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = nc.SetDeadline(deadline)
	}
	scanner := bufio.NewScanner(nc)
	scanner.Buffer(make([]byte, 64<<10), MaxLineSize)
	s := &session{nc: nc, scanner: scanner, enc: json.NewEncoder(nc), done: make(chan struct{})}

	// Unblock reads when ctx ends without a deadline.
	go func() {
		select {
		case <-ctx.Done():
			nc.Close()
		case <-s.done:
		}
	}()
	return s, nil
}

func (s *session) next() (Message, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return Message{}, errors.WrapWithCode(err, errors.ErrBridge, "Connection to trayd failed", "")
		}
		return Message{}, errors.New(errors.ErrBridge, "trayd closed the connection", "")
	}
	var m Message
	if err := json.Unmarshal(s.scanner.Bytes(), &m); err != nil {
		return Message{}, errors.WrapWithCode(err, errors.ErrBridge, "Malformed message from trayd", "")
	}
	return m, nil
}

// roundTrip sends req and skips events until its response arrives.
func (s *session) roundTrip(req Request) (json.RawMessage, error) {
	if err := s.enc.Encode(req); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrBridge, "Cannot send request", "")
	}
	for {
		m, err := s.next()
		if err != nil {
			return nil, err
		}
		if !m.IsResponse() || m.ID != req.ID {
			continue
		}
		if m.Error != nil {
			return nil, errors.New(m.Error.Code, m.Error.Message, m.Error.Suggestion)
		}
		return m.Result, nil
	}
}

// Call invokes channel/method and returns the raw JSON result. Failures
// reported by the daemon keep their code.
func (c *Client) Call(ctx context.Context, channel, method string, args map[string]any) (json.RawMessage, error) {
	s, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer s.close()
	return s.roundTrip(Request{ID: c.nextID.Add(1), Channel: channel, Method: method, Args: args})
}

// Listen starts stream name and calls fn with each item until ctx is done
// or the daemon ends the stream.
func (c *Client) Listen(ctx context.Context, name string, fn func(data any)) error {
	s, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if _, err := s.roundTrip(Request{ID: c.nextID.Add(1), Channel: name, Method: MethodStreamListen}); err != nil {
		return err
	}
	for {
		m, err := s.next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if m.Stream == name {
			fn(m.Data)
		}
	}
}

// Events calls fn with every event the daemon emits until ctx is done.
func (c *Client) Events(ctx context.Context, fn func(Message)) error {
	s, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer s.close()
	for {
		m, err := s.next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if m.Event != "" {
			fn(m)
		}
	}
}
