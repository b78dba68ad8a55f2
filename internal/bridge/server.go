package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"sync"

	"github.com/trayd/trayd/internal/errors"
	"github.com/trayd/trayd/internal/logger"
)

// MaxLineSize bounds a single request line. Frame uploads are the largest.
const MaxLineSize = 16 << 20

// Server listens on a unix socket for newline-delimited JSON requests.
// Every connected client receives every event. Streams are per connection
// and end when the client cancels them or disconnects.
type Server struct {
	socketPath string
	router     *Router
	log        logger.Logger

	listener net.Listener
	wg       sync.WaitGroup
	done     chan struct{}

	mu    sync.Mutex
	conns map[*conn]struct{}
}

// NewServer creates a server for socketPath dispatching to router.
func NewServer(socketPath string, router *Router, log logger.Logger) *Server {
	return &Server{
		socketPath: socketPath,
		router:     router,
		log:        logger.OrNoop(log),
		done:       make(chan struct{}),
		conns:      make(map[*conn]struct{}),
	}
}

// Start listens on the socket. A stale socket file is removed first and
// the new one is owner-only.
func (s *Server) Start() error {
	_ = os.Remove(s.socketPath)

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrBridge,
			"Cannot listen on "+s.socketPath,
			"Check the directory exists or set bridge.socket")
	}
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		ln.Close()
		return errors.WrapWithCode(err, errors.ErrBridge, "Cannot restrict socket permissions", "")
	}
	s.listener = ln

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Addr returns the socket path.
func (s *Server) Addr() string { return s.socketPath }

// Stop closes the listener and every connection, waits for their
// goroutines and removes the socket file. Safe to call more than once.
func (s *Server) Stop() {
	select {
	case <-s.done:
		return
	default:
	}
	close(s.done)

	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Lock()
	for c := range s.conns {
		c.close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	_ = os.Remove(s.socketPath)
}

// Emit sends an event to every connected client.
func (s *Server) Emit(channel, event string, args map[string]any) {
	msg := Message{Event: event, Channel: channel, Args: args}
	s.mu.Lock()
	targets := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		if err := c.write(msg); err != nil {
			s.log.Debug("emit %s to client: %v", event, err)
		}
	}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		nc, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				s.log.Debug("accept: %v", err)
				continue
			}
		}

		c := newConn(nc)
		s.mu.Lock()
		s.conns[c] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serve(c)
	}
}

func (s *Server) serve(c *conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		c.close()
	}()

	scanner := bufio.NewScanner(c.nc)
	scanner.Buffer(make([]byte, 64<<10), MaxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		if err := dec.Decode(&req); err != nil {
			_ = c.write(Message{Error: &ErrorBody{Code: errors.ErrInvalidArgs, Message: "malformed request: " + err.Error()}})
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(c, req)
		}()
	}
	if err := scanner.Err(); err != nil {
		s.log.Debug("client read: %v", err)
	}
}

func (s *Server) handle(c *conn, req Request) {
	var (
		result any
		err    error
		start  func()
	)
	switch req.Method {
	case MethodStreamListen, MethodStreamCancel:
		if fn, ok := s.router.Stream(req.Channel); ok {
			if req.Method == MethodStreamListen {
				start, err = s.listen(c, req.Channel, fn)
			} else {
				c.cancelStream(req.Channel)
			}
			result = err == nil
			break
		}
		fallthrough
	default:
		result, err = s.router.Dispatch(c.ctx, req.Channel, req.Method, Args(req.Args))
	}

	resp := Message{ID: req.ID}
	if err != nil {
		resp.Error = errorBody(err)
	} else {
		raw, mErr := json.Marshal(result)
		if mErr != nil {
			resp.Error = errorBody(errors.WrapWithCode(mErr, errors.ErrBridge, "Cannot encode result", ""))
		} else {
			resp.Result = raw
		}
	}
	if wErr := c.write(resp); wErr != nil {
		s.log.Debug("respond to %s/%s: %v", req.Channel, req.Method, wErr)
	}
	// Items follow the listen response.
	if start != nil {
		start()
	}
}

// listen starts a fresh stream for this connection, ending any earlier one
// with the same name. The returned func begins forwarding items.
func (s *Server) listen(c *conn, name string, fn StreamFunc) (func(), error) {
	c.cancelStream(name)

	ctx, cancel := context.WithCancel(c.ctx)
	ch, err := fn(ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	token := c.setStream(name, cancel)

	s.wg.Add(1)
	return func() {
		go func() {
			defer s.wg.Done()
			defer c.clearStream(name, token)
			for {
				select {
				case <-ctx.Done():
					// Drain until the producer closes so it never blocks.
					for range ch {
					}
					return
				case item, ok := <-ch:
					if !ok {
						return
					}
					if err := c.write(Message{Stream: name, Data: item}); err != nil {
						cancel()
					}
				}
			}
		}()
	}, nil
}

type stream struct {
	token  uint64
	cancel context.CancelFunc
}

type conn struct {
	nc     net.Conn
	ctx    context.Context
	cancel context.CancelFunc

	wmu sync.Mutex
	enc *json.Encoder

	smu     sync.Mutex
	streams map[string]stream
	next    uint64
}

func newConn(nc net.Conn) *conn {
	ctx, cancel := context.WithCancel(context.Background())
	return &conn{
		nc:      nc,
		ctx:     ctx,
		cancel:  cancel,
		enc:     json.NewEncoder(nc),
		streams: make(map[string]stream),
	}
}

// write sends one message as a single line.
func (c *conn) write(m Message) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.enc.Encode(m)
}

func (c *conn) setStream(name string, cancel context.CancelFunc) uint64 {
	c.smu.Lock()
	defer c.smu.Unlock()
	c.next++
	c.streams[name] = stream{token: c.next, cancel: cancel}
	return c.next
}

func (c *conn) clearStream(name string, token uint64) {
	c.smu.Lock()
	defer c.smu.Unlock()
	if st, ok := c.streams[name]; ok && st.token == token {
		st.cancel()
		delete(c.streams, name)
	}
}

func (c *conn) cancelStream(name string) {
	c.smu.Lock()
	st, ok := c.streams[name]
	delete(c.streams, name)
	c.smu.Unlock()
	if ok {
		st.cancel()
	}
}

func (c *conn) close() {
	c.cancel()
	c.nc.Close()
}
