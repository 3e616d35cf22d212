// Package dashboard implements a client for the Dashboard Server of Universal
// Robots controllers. The Dashboard Server loads and plays programs, powers
// the arm and answers status queries. Every command is a single line which
// is answered by a single line.
package dashboard

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/mdzio/go-lib/conc"
	"github.com/mdzio/go-logging"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	ur "github.com/mdzio/go-ur"
	"github.com/mdzio/go-ur/port"
)

const (
	// Port is the TCP port of the Dashboard Server.
	Port = 29999

	// DefaultPlayAttempts is the number of play commands sent by Play.
	DefaultPlayAttempts = 5
	// DefaultPlayDelay is the delay between play commands.
	DefaultPlayDelay = 100 * time.Millisecond

	// DefaultProgramDir is stripped from loaded program paths.
	DefaultProgramDir = "/ursim/programs/"

	connectMessage = "Connected with go-ur"
)

var log = logging.Get("dashboard")

// ErrPlayFailed is returned, if the program could not be started.
var ErrPlayFailed = errors.New("Failed to execute play command")

// Client is a session with the Dashboard Server. It is not safe for
// concurrent use.
type Client struct {
	// Number of play commands sent by Play. 0 selects DefaultPlayAttempts.
	PlayAttempts int

	// Delay between play commands. 0 selects DefaultPlayDelay.
	PlayDelay time.Duration

	// Directory prefix stripped by LoadedProgram.
	ProgramDir string

	// Retries of Play can be cancelled with this context (optional).
	Context conc.Context

	port     *port.Port
	greeting string
	latest   string
}

// Dial connects to the Dashboard Server of host.
func Dial(host string, timeout time.Duration) (*Client, error) {
	return DialAddr(net.JoinHostPort(host, strconv.Itoa(Port)), timeout)
}

// DialAddr connects to addr (host:port).
func DialAddr(addr string, timeout time.Duration) (*Client, error) {
	p, err := port.Dial(addr, timeout)
	if err != nil {
		return nil, err
	}
	c, err := New(p)
	if err != nil {
		p.Close()
		return nil, err
	}
	return c, nil
}

// New reads the greeting of the server and adds an entry to the controller
// log.
func New(p *port.Port) (*Client, error) {
	line, err := p.ReadLine()
	if err != nil {
		return nil, fmt.Errorf("Reading of greeting from %s failed: %w", p.RemoteAddr(), err)
	}
	c := &Client{
		ProgramDir: DefaultProgramDir,
		port:       p,
		greeting:   decode(line),
	}
	c.latest = c.greeting
	log.Debugf("Connected to %s: %s", p.RemoteAddr(), c.greeting)
	if err := c.Log(connectMessage); err != nil {
		return nil, err
	}
	return c, nil
}

// Greeting returns the first line sent by the server.
func (c *Client) Greeting() string { return c.greeting }

// LatestMessage returns the last response of the server.
func (c *Client) LatestMessage() string { return c.latest }

// decode converts a line from the server to UTF-8 and trims it.
func decode(line string) string {
	s, err := charmap.ISO8859_1.NewDecoder().String(line)
	if err != nil {
		s = line
	}
	return strings.TrimSpace(s)
}

// encode converts a command to ISO8859-1. A command must fit on one line.
func encode(cmd string) (string, error) {
	cmd = strings.NewReplacer("\r", " ", "\n", " ").Replace(cmd)
	s, err := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder()).String(cmd)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ur.ErrSerialization, err)
	}
	return s, nil
}

// send sends a command. The response must contain expect (case
// insensitively), otherwise an UnexpectedResponseError is returned.
func (c *Client) send(cmd, expect string) (string, error) {
	enc, err := encode(cmd)
	if err != nil {
		return "", err
	}
	line, err := c.port.Write(enc)
	if err != nil {
		return "", fmt.Errorf("Command '%s' failed: %w", cmd, err)
	}
	resp := decode(line)
	c.latest = resp
	log.Tracef("Command '%s', response '%s'", cmd, resp)
	if !strings.Contains(strings.ToLower(resp), strings.ToLower(expect)) {
		return resp, &ur.UnexpectedResponseError{Response: resp}
	}
	return resp, nil
}

// Command sends a raw command and returns the response.
func (c *Client) Command(cmd string) (string, error) {
	return c.send(cmd, "")
}

func (c *Client) sleep(d time.Duration) error {
	if c.Context != nil {
		return c.Context.Sleep(d)
	}
	time.Sleep(d)
	return nil
}

// Close ends the session. The connection is closed even if the server does
// not confirm.
func (c *Client) Close() error {
	_, err := c.send("quit", "disconnected")
	if cerr := c.port.Close(); err == nil {
		err = cerr
	}
	return err
}
