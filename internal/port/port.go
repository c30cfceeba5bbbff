package port

import (
	"fmt"
	"net"
	"strconv"

	"github.com/firefly-engineering/grove/internal/config"
)

// Checker reports whether a TCP port is free on the local host.
type Checker func(port int) bool

// ListenCheck reports a port as free when it can be bound on localhost.
func ListenCheck(port int) bool {
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	ln.Close()
	return true
}

// Allocate finds the lowest port in r that is neither recorded in used
// nor bound on the host.
func Allocate(r config.PortRange, used map[int]string, free Checker) (int, error) {
	if free == nil {
		free = ListenCheck
	}

	for p := r.Start; p <= r.End; p++ {
		if _, taken := used[p]; taken {
			continue
		}
		if !free(p) {
			continue
		}
		return p, nil
	}

	return 0, fmt.Errorf("no available ports in range %d-%d", r.Start, r.End)
}
