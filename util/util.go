// Package util carries the small helpers the daemon needs around the
// decoding core: environment driven interface filtering, u-boot
// environment naming and MAC address predicates.
package util

import (
	"bytes"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ParseInterfaces splits a comma separated interface list, trimming
// whitespace and dropping empty entries.
func ParseInterfaces(interfaces string) map[string]struct{} {
	result := map[string]struct{}{}
	for _, intf := range strings.Split(interfaces, ",") {
		intf = strings.TrimSpace(intf)
		if intf != "" {
			result[intf] = struct{}{}
		}
	}
	return result
}

// IgnoredInterfaces returns the set of interfaces the daemon should leave
// alone, taken from the IGNORED_INTERFACES environment variable.
func IgnoredInterfaces() map[string]struct{} {
	return ParseInterfaces(os.Getenv("IGNORED_INTERFACES"))
}

// InterfaceToUbootEthAddr maps an ethN interface name onto the u-boot
// environment key holding its MAC address: eth0 uses the bare "ethaddr"
// key, everything else gets "eth{N}addr". Names that aren't ethN yield
// ("", false).
func InterfaceToUbootEthAddr(intf string) (string, bool) {
	const pfx = "eth"
	if !strings.HasPrefix(intf, pfx) {
		return "", false
	}
	idx, err := strconv.ParseUint(intf[len(pfx):], 10, 32)
	if err != nil {
		return "", false
	}
	if idx == 0 {
		return "ethaddr", true
	}
	return fmt.Sprintf("eth%daddr", idx), true
}

// DeleteInterface removes a network device by shelling out to ip(8); the
// kernel has no nice rtnetlink-free interface for this and we don't craft
// netlink requests ourselves.
func DeleteInterface(intf string) error {
	cmd := exec.Command("/sbin/ip", "link", "delete", "dev", intf)
	if out, err := cmd.CombinedOutput(); err != nil {
		slog.Error("unable to delete the interface", "intf", intf, "out", string(out), "err", err)
		return fmt.Errorf("deleting %q: %w", intf, err)
	}
	return nil
}

var zeroMAC = make(net.HardwareAddr, 6)

// IsEmptyMAC reports whether the address is all zeros.
func IsEmptyMAC(mac net.HardwareAddr) bool {
	return bytes.Equal(mac, zeroMAC)
}

// IsMulticastMAC checks the I/G bit of the first octet.
func IsMulticastMAC(mac net.HardwareAddr) bool {
	return len(mac) > 0 && mac[0]&0b1 != 0
}

// IsUnicastMAC reports whether the address is usable as a device address.
func IsUnicastMAC(mac net.HardwareAddr) bool {
	return len(mac) == 6 && !IsEmptyMAC(mac) && !IsMulticastMAC(mac)
}
