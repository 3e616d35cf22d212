// Package rtdetest provides a scripted RTDE controller for tests.
package rtdetest

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/mdzio/go-logging"

	"github.com/mdzio/go-ur/port"
	"github.com/mdzio/go-ur/rtde"
)

var svrLog = logging.Get("rtde-controller")

// Handler answers a request package with any number of packages.
type Handler interface {
	Handle(req rtde.Frame) []rtde.Frame
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(req rtde.Frame) []rtde.Frame

// Handle implements Handler.
func (f HandlerFunc) Handle(req rtde.Frame) []rtde.Frame { return f(req) }

// Controller serves RTDE connections. Requests are read and recorded in
// order. Responses are written by a separate goroutine, so that a client may
// send while responses are pending.
type Controller struct {
	Handler Handler

	// ChunkSize splits every package into writes of at most this size. Zero
	// writes whole packages.
	ChunkSize int

	Addr string

	mtx      sync.Mutex
	requests []rtde.Frame

	listener net.Listener
	stop     chan struct{}
	done     chan struct{}
}

// NewController creates a controller answering with a new Responder.
func NewController() *Controller {
	return &Controller{Handler: NewResponder()}
}

// Requests returns all packages received so far.
func (c *Controller) Requests() []rtde.Frame {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return append([]rtde.Frame(nil), c.requests...)
}

// Pipe serves one end of an in-memory connection and returns a port on the
// other end.
func (c *Controller) Pipe(timeout time.Duration) *port.Port {
	cln, svr := net.Pipe()
	go c.Serve(svr)
	return port.New(cln, timeout)
}

// Start listens on Addr (e.g. 127.0.0.1:0) and serves connections until Stop
// is called.
func (c *Controller) Start() error {
	addr := c.Addr
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("Listen on address %s failed: %w", addr, err)
	}
	c.listener = l
	c.Addr = l.Addr().String()
	c.stop = make(chan struct{}, 1)
	c.done = make(chan struct{}, 1)
	svrLog.Debugf("Starting RTDE controller on address %s", c.Addr)

	go func() {
		defer l.Close()
		for {
			conn, err := l.Accept()
			if err != nil {
				select {
				case <-c.stop:
				default:
					svrLog.Errorf("Accept failed: %v", err)
				}
				c.done <- struct{}{}
				return
			}
			go c.Serve(conn)
		}
	}()
	return nil
}

// Stop stops accepting connections.
func (c *Controller) Stop() {
	svrLog.Debug("Shutting down RTDE controller")
	c.stop <- struct{}{}
	c.listener.Close()
	<-c.done
}

// Serve handles one connection until the peer closes it.
func (c *Controller) Serve(conn net.Conn) {
	out := make(chan []byte, 256)
	written := make(chan struct{})
	go func() {
		defer close(written)
		failed := false
		for b := range out {
			if failed {
				continue
			}
			if err := c.write(conn, b); err != nil {
				svrLog.Debugf("Sending to %s failed: %v", conn.RemoteAddr(), err)
				failed = true
			}
		}
	}()
	defer func() {
		conn.Close()
		close(out)
		<-written
	}()

	for {
		req, err := rtde.ReadFrame(conn)
		if err != nil {
			svrLog.Debugf("Connection from %s ended: %v", conn.RemoteAddr(), err)
			return
		}
		svrLog.Tracef("Received package %v with %d bytes", req.Type(), req.Header.Size)
		c.mtx.Lock()
		c.requests = append(c.requests, req)
		c.mtx.Unlock()

		if c.Handler == nil {
			continue
		}
		for _, resp := range c.Handler.Handle(req) {
			b, err := resp.MarshalBinary()
			if err != nil {
				svrLog.Errorf("Encoding of response %v failed: %v", resp.Type(), err)
				return
			}
			out <- b
		}
	}
}

func (c *Controller) write(conn net.Conn, b []byte) error {
	chunk := c.ChunkSize
	if chunk <= 0 {
		chunk = len(b)
	}
	for len(b) > 0 {
		n := chunk
		if n > len(b) {
			n = len(b)
		}
		if _, err := conn.Write(b[:n]); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
