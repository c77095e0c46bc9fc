// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package web

import (
	"net"
	"sync"
)

// LimitListener limits the number of simultaneously open connections. A limit
// of zero or less disables limiting.
func LimitListener(l net.Listener, limit int) net.Listener {
	if limit <= 0 {
		return l
	}
	pool := make(chan struct{}, limit)
	for i := 0; i < limit; i++ {
		pool <- struct{}{}
	}
	return &limitedListener{Listener: l, pool: pool}
}

type limitedListener struct {
	net.Listener
	pool chan struct{}
}

func (l *limitedListener) Accept() (net.Conn, error) {
	<-l.pool

	conn, err := l.Listener.Accept()
	if err != nil {
		l.pool <- struct{}{}
		return nil, err
	}

	return &limitedConn{Conn: conn, pool: l.pool}, nil
}

type limitedConn struct {
	net.Conn
	once sync.Once
	pool chan<- struct{}
}

func (c *limitedConn) release() {
	c.once.Do(func() {
		c.pool <- struct{}{}
	})
}

// didFail releases the slot when the connection breaks. Timeouts do not
// count, since the connection may still be used.
func (c *limitedConn) didFail(err error) {
	if err == nil {
		return
	}
	netErr, ok := err.(net.Error)
	if !ok || !netErr.Timeout() {
		c.release()
	}
}

func (c *limitedConn) Close() error {
	c.release()
	return c.Conn.Close()
}

func (c *limitedConn) Read(b []byte) (n int, err error) {
	n, err = c.Conn.Read(b)
	c.didFail(err)
	return n, err
}

func (c *limitedConn) Write(b []byte) (n int, err error) {
	n, err = c.Conn.Write(b)
	c.didFail(err)
	return n, err
}
