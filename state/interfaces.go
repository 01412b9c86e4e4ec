package state

import (
	"fmt"
	"sort"

	"github.com/prometheus/procfs"

	"github.com/rfrandse/phosphor-networkd/util"
)

// InterfaceNames lists the interfaces currently known to the kernel,
// minus the ones the IGNORED_INTERFACES environment variable rules out.
// This seeds the daemon's view before any rtnetlink event arrives.
func InterfaceNames() ([]string, error) {
	fs, err := procfs.NewFS("/proc")
	if err != nil {
		return nil, fmt.Errorf("couldn't initialise the procfs filesystem: %w", err)
	}

	netDev, err := fs.NetDev()
	if err != nil {
		return nil, fmt.Errorf("couldn't read the interface list: %w", err)
	}

	ignored := util.IgnoredInterfaces()
	names := make([]string, 0, len(netDev))
	for name := range netDev {
		if _, ok := ignored[name]; ok {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
