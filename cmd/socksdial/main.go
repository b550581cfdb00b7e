// Command socksdial is a demonstration client for the socks package: it
// drives a CONNECT, BIND, or UDP ASSOCIATE session through a configured
// SOCKS4/4A/5 proxy and reports the result.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "socksdial",
		Short: "Drive SOCKS4/4A/5 handshakes from the command line",
		Long: `socksdial exercises the socks package's CONNECT, BIND, and UDP
ASSOCIATE flows against a proxy described in a TOML config file.`,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "handshake", Title: "Handshakes:"})

	connect := connectCmd()
	connect.GroupID = "handshake"
	rootCmd.AddCommand(connect)

	bind := bindCmd()
	bind.GroupID = "handshake"
	rootCmd.AddCommand(bind)

	associate := associateCmd()
	associate.GroupID = "handshake"
	rootCmd.AddCommand(associate)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
