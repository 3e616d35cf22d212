// Package rtde implements a client for the Real-Time Data Exchange interface
// of Universal Robots controllers.
//
// The controller streams output data at the negotiated frequency after Start.
// Control requests are therefore answered in between data packages. A request
// reads packages until the expected response arrives, keeping log messages of
// the controller and dropping everything else.
package rtde

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/mdzio/go-logging"
	"golang.org/x/text/encoding/unicode"

	ur "github.com/mdzio/go-ur"
	"github.com/mdzio/go-ur/port"
	"github.com/mdzio/go-ur/rollbuf"
)

const (
	// Port is the TCP port of the RTDE interface.
	Port = 30004

	// DefaultMaxReads limits the packages read while waiting for a response.
	// At 500 Hz about 960 data packages may precede the response.
	DefaultMaxReads = 2000

	// DefaultFrequency is the output rate assumed before SetupOutput.
	DefaultFrequency = 50.0

	messageHistory = 10
)

var log = logging.Get("rtde")

// Static errors.
var (
	ErrOutputConfigured = errors.New("Cannot setup more than one output recipe")
	ErrNoOutputRecipe   = errors.New("Must set up at least one RTDE output recipe")
	ErrProtocolRejected = errors.New("Protocol change rejected")
	ErrStartRejected    = errors.New("RTDE start rejected")
	ErrPauseRejected    = errors.New("RTDE pause rejected")
)

// Client is a session with the RTDE interface. It is not safe for concurrent
// use.
type Client struct {
	// MaxReads limits the packages read while waiting for a response. Zero
	// selects DefaultMaxReads.
	MaxReads int

	port      *port.Port
	output    []DataType
	frequency float64
	protocol  Protocol
	messages  *rollbuf.Buffer[string]
}

// Dial connects to the RTDE port of host.
func Dial(host string, timeout time.Duration) (*Client, error) {
	return DialAddr(net.JoinHostPort(host, strconv.Itoa(Port)), timeout)
}

// DialAddr connects to addr (host:port) and negotiates protocol version 2.
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

// New creates a client on an established connection and negotiates protocol
// version 2. On failure the port is left open.
func New(p *port.Port) (*Client, error) {
	c := &Client{
		port:      p,
		frequency: DefaultFrequency,
		protocol:  V1,
		messages:  rollbuf.New[string](messageHistory),
	}
	if err := c.SetProtocolVersion(V2); err != nil {
		return nil, fmt.Errorf("Negotiation with %s failed: %w", p.RemoteAddr(), err)
	}
	return c, nil
}

// Protocol returns the acknowledged protocol version.
func (c *Client) Protocol() Protocol { return c.protocol }

// Frequency returns the output rate in Hz.
func (c *Client) Frequency() float64 { return c.frequency }

// Output returns the types of the configured output recipe.
func (c *Client) Output() []DataType {
	return append([]DataType(nil), c.output...)
}

// Messages returns the last log messages received from the controller,
// oldest first.
func (c *Client) Messages() []string { return c.messages.Values() }

// Read reads the next package.
func (c *Client) Read() (Frame, error) {
	f, err := ReadFrame(c.port)
	if err != nil {
		return Frame{}, err
	}
	log.Tracef("Received package %v with %d bytes", f.Header.Type, f.Header.Size)
	return f, nil
}

// Write sends v as data package for the input recipe recipeID. The value is
// not validated against the recipe and the controller does not answer.
func (c *Client) Write(v interface{}, recipeID uint8) error {
	b, err := Marshal(v)
	if err != nil {
		return err
	}
	body := append([]byte{recipeID}, b...)
	return c.post(NewPayload(TypeData, body))
}

// post sends a package without waiting for a response.
func (c *Client) post(p *Payload) error {
	b, err := Marshal(p)
	if err != nil {
		return err
	}
	log.Tracef("Sending package %v with %d bytes", p.Header.Type, len(b))
	return c.port.Send(b)
}

func (c *Client) maxReads() int {
	if c.MaxReads > 0 {
		return c.MaxReads
	}
	return DefaultMaxReads
}

// send posts a request and reads packages until one of type expect arrives.
func (c *Client) send(p *Payload, expect PackageType) (Frame, error) {
	if err := c.post(p); err != nil {
		return Frame{}, err
	}
	limit := c.maxReads()
	for attempt := 1; attempt <= limit; attempt++ {
		f, err := c.Read()
		if err != nil {
			return Frame{}, err
		}
		switch t := f.Type(); t {
		case expect:
			log.Debugf("Received expected package %v after %d reads", expect, attempt)
			return f, nil
		case TypeMessage:
			text, err := unicode.UTF8.NewDecoder().Bytes(f.Payload)
			if err != nil {
				text = f.Payload
			}
			log.Debugf("Message from controller: %s", text)
			c.messages.Add(string(text))
		default:
			log.Tracef("Dropping unwanted package %v", t)
		}
	}
	return Frame{}, &ur.MaxReadsError{Expected: expect, Attempts: limit}
}

// request sends a request and parses the boolean answer.
func (c *Client) request(t PackageType, body interface{}) (bool, error) {
	f, err := c.send(NewPayload(t, body), t)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := f.Parse(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// SetProtocolVersion requests the controller to speak protocol p. The version
// is changed only, if the controller accepts.
func (c *Client) SetProtocolVersion(p Protocol) error {
	ok, err := c.request(TypeProtocolVersion, p)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProtocolRejected
	}
	log.Debugf("Using protocol version %v", p)
	c.protocol = p
	return nil
}

// Start requests the controller to start sending output data. An output recipe
// must be configured.
func (c *Client) Start() error {
	if len(c.output) == 0 {
		return ErrNoOutputRecipe
	}
	ok, err := c.request(TypeStart, nil)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStartRejected
	}
	return nil
}

// Pause requests the controller to stop sending output data.
func (c *Client) Pause() error {
	ok, err := c.request(TypePause, nil)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPauseRejected
	}
	return nil
}

// ControlVersion retrieves the version of the controller software.
func (c *Client) ControlVersion() (Version, error) {
	f, err := c.send(NewPayload(TypeURControlVersion, nil), TypeURControlVersion)
	if err != nil {
		return Version{}, err
	}
	var v Version
	if err := f.Parse(&v); err != nil {
		return Version{}, err
	}
	return v, nil
}

// SetupOutput configures the output recipe. Only one output recipe is
// supported by the controller. The controller sends data every
// floor(500/rateHz) cycles; rateHz must be between 1 and 500.
func (c *Client) SetupOutput(names []string, rateHz float64) (Recipe, error) {
	if len(c.output) > 0 {
		return Recipe{}, ErrOutputConfigured
	}
	rate, err := Marshal(rateHz)
	if err != nil {
		return Recipe{}, err
	}
	f, err := c.setup(NewPayload(TypeSetupOutputs, append(rate, encodeNames(names)...)))
	if err != nil {
		return Recipe{}, err
	}
	r, err := parseRecipe(f.Payload)
	if err != nil {
		return Recipe{}, err
	}
	log.Debugf("Output recipe %v at %g Hz", r, rateHz)
	c.output = r.Types
	c.frequency = rateHz
	return r, nil
}

// SetupInput configures an input recipe. Data for the recipe is sent with
// Write.
func (c *Client) SetupInput(names []string) (Recipe, error) {
	f, err := c.setup(NewPayload(TypeSetupInputs, encodeNames(names)))
	if err != nil {
		return Recipe{}, err
	}
	if len(f.Payload) > 0 && f.Payload[0] == 0 {
		return Recipe{}, ur.Unexpectedf("input recipe %q rejected", names)
	}
	r, err := parseRecipe(f.Payload)
	if err != nil {
		return Recipe{}, err
	}
	log.Debugf("Input recipe %v", r)
	return r, nil
}

// setup sends a setup request and reads exactly one package as response.
func (c *Client) setup(p *Payload) (Frame, error) {
	if err := c.post(p); err != nil {
		return Frame{}, err
	}
	f, err := c.Read()
	if err != nil {
		return Frame{}, err
	}
	if f.Type() != p.Header.Type {
		return Frame{}, ur.Unexpectedf("instead of %v, found %v", p.Header.Type, f.Type())
	}
	return f, nil
}

// SendMessage sends a log message to the controller.
func (c *Client) SendMessage(text, source string, level Level) error {
	return c.post(NewPayload(TypeMessage, Message{Message: text, Source: source, Level: level}))
}

// Info sends an info message.
func (c *Client) Info(text, source string) error {
	return c.SendMessage(text, source, LevelInfo)
}

// Warn sends a warning message.
func (c *Client) Warn(text, source string) error {
	return c.SendMessage(text, source, LevelWarning)
}

// Error sends an error message.
func (c *Client) Error(text, source string) error {
	return c.SendMessage(text, source, LevelError)
}

// Exception sends an exception message.
func (c *Client) Exception(text, source string) error {
	return c.SendMessage(text, source, LevelException)
}

// Close closes the connection and returns the buffered controller messages.
func (c *Client) Close() ([]string, error) {
	err := c.port.Close()
	return c.messages.Values(), err
}
