package comdirect

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
)

func InsecureTransport() *http.Transport {
	return &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
}

// NetCtl can be used to control whether a dialer can dial, e.g. to
// simulate connectivity loss while a TAN poll is in flight.
type NetCtl struct {
	canDial   atomic.Bool
	dialLimit atomic.Uint64

	onDial []func(net.Conn)

	lock sync.Mutex
}

// NewNetCtl returns a new NetCtl that allows dialing.
func NewNetCtl() *NetCtl {
	ctl := &NetCtl{}

	ctl.canDial.Store(true)

	return ctl
}

// SetCanDial sets whether the dialer can dial.
func (c *NetCtl) SetCanDial(canDial bool) {
	c.canDial.Store(canDial)
}

// SetDialLimit sets the maximum number of times dialers using this controller can dial.
func (c *NetCtl) SetDialLimit(limit uint64) {
	c.dialLimit.Store(limit)
}

// OnDial adds a callback that is called with the created connection when a dial is successful.
func (c *NetCtl) OnDial(f func(net.Conn)) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.onDial = append(c.onDial, f)
}

// Disable is equivalent to disallowing dial.
func (c *NetCtl) Disable() {
	c.SetCanDial(false)
}

// Enable is equivalent to allowing dial.
func (c *NetCtl) Enable() {
	c.SetCanDial(true)
}

// Dialer performs network dialing, but only if the controller allows it.
type Dialer struct {
	ctl *NetCtl

	netDialer *net.Dialer
	tlsDialer *tls.Dialer
	tlsConfig *tls.Config

	dialCount atomic.Uint64
}

// NewDialer returns a new dialer using the given net controller.
// It optionally uses a provided tls config.
func NewDialer(ctl *NetCtl, tlsConfig *tls.Config) *Dialer {
	return &Dialer{
		ctl: ctl,

		netDialer: &net.Dialer{},
		tlsDialer: &tls.Dialer{Config: tlsConfig},
		tlsConfig: tlsConfig,
	}
}

// DialContext dials a network connection, but only if the controller allows it.
func (d *Dialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	return d.dialWithDialer(ctx, network, addr, d.netDialer)
}

// DialTLSContext dials a TLS network connection, but only if the controller allows it.
func (d *Dialer) DialTLSContext(ctx context.Context, network, addr string) (net.Conn, error) {
	return d.dialWithDialer(ctx, network, addr, d.tlsDialer)
}

func (d *Dialer) dialWithDialer(ctx context.Context, network, addr string, dialer dialer) (net.Conn, error) {
	if !d.ctl.canDial.Load() {
		return nil, errors.New("cannot dial")
	}

	if limit := d.ctl.dialLimit.Load(); limit > 0 && d.dialCount.Load() >= limit {
		return nil, errors.New("dial limit reached")
	}

	d.dialCount.Add(1)

	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	d.ctl.lock.Lock()
	defer d.ctl.lock.Unlock()

	for _, f := range d.ctl.onDial {
		f(conn)
	}

	return conn, nil
}

// GetRoundTripper returns a new http.RoundTripper that uses the dialer.
func (d *Dialer) GetRoundTripper() http.RoundTripper {
	return &http.Transport{
		DialContext:     d.DialContext,
		DialTLSContext:  d.DialTLSContext,
		TLSClientConfig: d.tlsConfig,
	}
}

type dialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}
