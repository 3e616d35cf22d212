// Package port provides the TCP connection shared by the text (Dashboard) and
// binary (RTDE) protocols of a robot controller.
package port

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/mdzio/go-logging"
)

var log = logging.Get("port")

// Port owns one TCP connection. The buffered reader and writer are both bound
// to that connection, which is closed exactly once by Close.
type Port struct {
	conn    net.Conn
	reader  *bufio.Reader
	writer  *bufio.Writer
	timeout time.Duration
}

// Dial connects to addr (host:port). The timeout is applied to the connection
// setup and afterwards to every read and write. A zero timeout disables all
// deadlines.
func Dial(addr string, timeout time.Duration) (*Port, error) {
	log.Debugf("Connecting to %s", addr)
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("Connecting to %s failed: %w", addr, err)
	}
	return New(conn, timeout), nil
}

// New wraps an established connection.
func New(conn net.Conn, timeout time.Duration) *Port {
	return &Port{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		writer:  bufio.NewWriter(conn),
		timeout: timeout,
	}
}

// RemoteAddr returns the address of the peer.
func (p *Port) RemoteAddr() net.Addr {
	return p.conn.RemoteAddr()
}

// Timeout returns the timeout applied to reads and writes.
func (p *Port) Timeout() time.Duration {
	return p.timeout
}

func (p *Port) readDeadline() error {
	if p.timeout <= 0 {
		return nil
	}
	if err := p.conn.SetReadDeadline(time.Now().Add(p.timeout)); err != nil {
		return fmt.Errorf("Setting of read deadline failed: %w", err)
	}
	return nil
}

func (p *Port) writeDeadline() error {
	if p.timeout <= 0 {
		return nil
	}
	if err := p.conn.SetWriteDeadline(time.Now().Add(p.timeout)); err != nil {
		return fmt.Errorf("Setting of write deadline failed: %w", err)
	}
	return nil
}

// ReadLine reads up to and including the next newline.
func (p *Port) ReadLine() (string, error) {
	if err := p.readDeadline(); err != nil {
		return "", err
	}
	line, err := p.reader.ReadString('\n')
	if err != nil {
		return line, err
	}
	log.Tracef("Received line from %s: %q", p.conn.RemoteAddr(), line)
	return line, nil
}

// Read reads at most len(b) bytes. It returns as soon as some bytes are
// available, so callers must expect partial reads.
func (p *Port) Read(b []byte) (int, error) {
	if err := p.readDeadline(); err != nil {
		return 0, err
	}
	return p.reader.Read(b)
}

// ReadFull reads exactly len(b) bytes.
func (p *Port) ReadFull(b []byte) (int, error) {
	if err := p.readDeadline(); err != nil {
		return 0, err
	}
	return io.ReadFull(p.reader, b)
}

// Send writes b and flushes it immediately.
func (p *Port) Send(b []byte) error {
	if err := p.writeDeadline(); err != nil {
		return err
	}
	if _, err := p.writer.Write(b); err != nil {
		return fmt.Errorf("Sending to %s failed: %w", p.conn.RemoteAddr(), err)
	}
	if err := p.writer.Flush(); err != nil {
		return fmt.Errorf("Sending to %s failed: %w", p.conn.RemoteAddr(), err)
	}
	return nil
}

// Write sends command terminated by a newline and reads one line back. This is
// the request/response contract of the text protocols.
func (p *Port) Write(command string) (string, error) {
	log.Tracef("Sending line to %s: %q", p.conn.RemoteAddr(), command)
	if err := p.Send([]byte(command + "\n")); err != nil {
		return "", err
	}
	return p.ReadLine()
}

// Close shuts the connection down in both directions. Errors, including the
// one of a repeated close, are returned.
func (p *Port) Close() error {
	log.Debugf("Closing connection to %s", p.conn.RemoteAddr())
	if err := p.conn.Close(); err != nil {
		return fmt.Errorf("Closing of connection to %s failed: %w", p.conn.RemoteAddr(), err)
	}
	return nil
}
