package service

import (
	"net"
	"time"
)

// DialChecker reports the machine online when a TCP connection to Addr succeeds.
type DialChecker struct {
	Addr    string
	Timeout time.Duration
}

func (p DialChecker) Online() bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	conn, err := net.DialTimeout("tcp", p.Addr, timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
