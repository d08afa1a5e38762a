package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"strconv"
)

var ErrInvalidAddr = errors.New("invalid listen address")

// GetFreePort asks the kernel for an unused loopback port.
func GetFreePort() (int, error) {
	listener, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port, nil
}

// AddrToURL turns a `host:port` listen address into an http URL.
// An empty host binds all interfaces and is reported as 0.0.0.0.
func AddrToURL(addr string) (string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidAddr, addr, err)
	}
	if port == "" {
		return "", fmt.Errorf("%w %q: missing port", ErrInvalidAddr, addr)
	}
	if p, err := strconv.Atoi(port); err != nil || p < 0 || p > 65535 {
		return "", fmt.Errorf("%w %q: bad port", ErrInvalidAddr, addr)
	}
	if host == "" {
		host = "0.0.0.0"
	}
	return "http://" + net.JoinHostPort(host, port), nil
}

// TokenHex returns n random bytes hex encoded.
func TokenHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand: %v", err))
	}
	return hex.EncodeToString(buf)
}
