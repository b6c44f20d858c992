package server

import (
	"fmt"
	"strconv"
	"strings"

	internalstrings "github.com/amonks/tasktracker/internal/strings"
)

// DefaultPort is used when no port is configured.
const DefaultPort = 8088

// ResolveAddr returns the server address. An explicit addr wins; a bare
// port number listens on localhost. Otherwise the configured port is used,
// falling back to DefaultPort.
func ResolveAddr(configuredPort int, addr string) (string, error) {
	if !internalstrings.IsBlank(addr) {
		return normalizeAddr(addr)
	}
	port := configuredPort
	if port == 0 {
		port = DefaultPort
	}
	if err := checkPort(port); err != nil {
		return "", err
	}
	return fmt.Sprintf("127.0.0.1:%d", port), nil
}

func normalizeAddr(addr string) (string, error) {
	trimmed := strings.TrimSpace(addr)
	if strings.Contains(trimmed, ":") {
		return trimmed, nil
	}
	port, err := strconv.Atoi(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid port %q", trimmed)
	}
	if err := checkPort(port); err != nil {
		return "", err
	}
	return fmt.Sprintf("127.0.0.1:%d", port), nil
}

func checkPort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("port out of range: %d", port)
	}
	return nil
}
