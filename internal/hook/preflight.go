// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package hook

import (
	"net"
	"os"
	"strings"

	"github.com/spryker/cronicle-hook/internal/i18n"
)

// System is the part of the host the preflight checks look at.
type System interface {
	Geteuid() int
	Getenv(key string) string
	Hostname() (string, error)
	InterfaceAddrs() ([]net.Addr, error)
}

type osSystem struct{}

func (osSystem) Geteuid() int                        { return os.Geteuid() }
func (osSystem) Getenv(key string) string            { return os.Getenv(key) }
func (osSystem) Hostname() (string, error)           { return os.Hostname() }
func (osSystem) InterfaceAddrs() ([]net.Addr, error) { return net.InterfaceAddrs() }

// OS is the running host.
var OS System = osSystem{}

// PreflightError is returned when the host is not fit to run the hook.
type PreflightError struct {
	Msg string
}

func (e *PreflightError) Error() string { return e.Msg }

// Host identifies the server the hook runs on.
type Host struct {
	Hostname string
	IP       string
}

// Preflight checks that the hook may run: when uid is configured the hook
// must start as root, and the host needs an external IPv4 address.
func Preflight(sys System, uid string) (*Host, error) {
	if uid != "" && sys.Geteuid() != 0 {
		return nil, &PreflightError{Msg: i18n.T("hook.must_be_root")}
	}

	hostname := sys.Getenv("HOSTNAME")
	if hostname == "" {
		hostname = sys.Getenv("HOST")
	}
	if hostname == "" {
		h, err := sys.Hostname()
		if err == nil {
			hostname = h
		}
	}

	ip, err := firstExternalIPv4(sys)
	if err != nil || ip == "" {
		return nil, &PreflightError{Msg: i18n.T("hook.no_ip")}
	}
	return &Host{Hostname: strings.ToLower(hostname), IP: ip}, nil
}

func firstExternalIPv4(sys System) (string, error) {
	addrs, err := sys.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip == nil || ip.IsLoopback() {
			continue
		}
		if ip4 := ip.To4(); ip4 != nil {
			return ip4.String(), nil
		}
	}
	return "", nil
}
