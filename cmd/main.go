package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/rfrandse/phosphor-networkd/dhcp"
	"github.com/rfrandse/phosphor-networkd/monitor"
	"github.com/rfrandse/phosphor-networkd/state"
)

var (
	rootCmd = &cobra.Command{
		Use:   "networkd",
		Short: "A network configuration daemon for management controllers.",
		Long: "networkd keeps a management controller's view of routes, addresses\n" +
			"and neighbor entries in sync with the kernel over rtnetlink.",
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Get the built version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("built commit: %s\n", builtCommit)
		},
	}

	monitorCmd = &cobra.Command{
		Use:   "monitor",
		Short: "Follow the kernel's rtnetlink notifications.",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := ReadConf(confFlag)
			if err != nil {
				return err
			}

			names, err := state.InterfaceNames()
			if err != nil {
				slog.Warn("couldn't seed the interface list", "err", err)
			} else {
				slog.Info("watching interfaces", "interfaces", names)
			}

			mon, err := monitor.NewMonitor(conf.Monitor)
			if err != nil {
				return fmt.Errorf("error setting up the monitor: %w", err)
			}
			defer func() {
				if err := mon.Cleanup(); err != nil {
					slog.Error("error cleaning up the monitor", "err", err)
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, unix.SIGTERM)

			tables := state.NewTables()
			eventChan := make(chan monitor.Event)
			doneChan := make(chan struct{})
			go mon.Run(doneChan, eventChan)

			for {
				select {
				case ev := <-eventChan:
					tables.Apply(ev)
					printEvent(ev)
				case <-sigChan:
					close(doneChan)
					return nil
				}
			}
		},
	}

	dhcpConfCmd = &cobra.Command{
		Use:   "dhcp-conf",
		Short: "Show the effective DHCP configuration.",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := ReadConf(confFlag)
			if err != nil {
				return err
			}

			dConf, err := dhcp.FromConfDir(conf.ConfDir)
			if err != nil {
				return err
			}
			fmt.Printf("DHCPv4:        %v\n", dConf.Value.V4)
			fmt.Printf("DHCPv6:        %v\n", dConf.Value.V6)
			fmt.Printf("UseDNS:        %v\n", dConf.DNSEnabled)
			fmt.Printf("UseNTP:        %v\n", dConf.NTPEnabled)
			fmt.Printf("UseHostname:   %v\n", dConf.HostnameEnabled)
			fmt.Printf("SendHostname:  %v\n", dConf.SendHostnameEnabled)
			fmt.Printf("IPv6AcceptRA:  %v\n", dConf.IPv6AcceptRA)
			return nil
		},
	}

	confFlag     string
	logLevelFlag string
	logTimeFlag  bool
	builtCommit  = "dev"
)

func printEvent(ev monitor.Event) {
	action := "new"
	if ev.Deletion() {
		action = "del"
	}
	switch {
	case ev.Gateway != nil:
		slog.Info("default gateway", "action", action, "ifidx", ev.Gateway.Ifidx, "gateway", ev.Gateway.Gateway)
	case ev.Addr != nil:
		slog.Info("address", "action", action, "ifidx", ev.Addr.Ifidx,
			"addr", ev.Addr.IfAddr, "flags", ev.Addr.Flags, "scope", ev.Addr.Scope)
	case ev.Neigh != nil:
		slog.Info("neighbor", "action", action, "ifidx", ev.Neigh.Ifidx,
			"state", ev.Neigh.State, "mac", ev.Neigh.MAC, "addr", ev.Neigh.Addr)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&confFlag, "conf", "/etc/networkd/conf.yaml", "path of the configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "log level: one of debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logTimeFlag, "log-time", false, "include timestamps in log messages")

	// Disable completion please!
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// The logging flags need to be parsed before the handler goes in.
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogging()
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(dhcpConfCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
