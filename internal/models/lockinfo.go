package models

import (
	"fmt"
	"strconv"
	"strings"
)

// LockInfo is the rendezvous record the daemon publishes so the external
// notifier can find the webhook endpoint. On disk it is a single ASCII
// line: "<port>|<pid>|<secret>".
type LockInfo struct {
	Port   int
	PID    int
	Secret string
}

// NewLockInfo creates a lock info record with current values.
func NewLockInfo(port, pid int, secret string) *LockInfo {
	return &LockInfo{Port: port, PID: pid, Secret: secret}
}

// String renders the on-disk format. No trailing newline.
func (l *LockInfo) String() string {
	return fmt.Sprintf("%d|%d|%s", l.Port, l.PID, l.Secret)
}

// ParseLockInfo parses lockfile contents. Readers tolerate a single
// trailing newline.
func ParseLockInfo(content string) (*LockInfo, error) {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 3 {
		return nil, fmt.Errorf("lockfile is malformed")
	}

	port, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid port in lockfile: %q", parts[0])
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("port %d is outside valid range (1-65535)", port)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid process ID in lockfile: %q", parts[1])
	}

	secret := parts[2]
	if secret == "" {
		return nil, fmt.Errorf("secret in lockfile is empty")
	}

	return &LockInfo{Port: port, PID: pid, Secret: secret}, nil
}
