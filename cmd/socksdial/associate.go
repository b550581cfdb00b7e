package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/socks-go/socks"
	"github.com/socks-go/socks/internal/config"
	"github.com/socks-go/socks/internal/iovec"
	"github.com/socks-go/socks/internal/logger"
	"github.com/socks-go/socks/internal/ratelimit"
)

func associateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "associate <host:port>",
		Short: "Open a UDP ASSOCIATE session and relay one line from stdin to the target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get(configPath)
			if cfg.Proxy.Version != 5 {
				return fmt.Errorf("UDP ASSOCIATE requires proxy.version = 5")
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Timeout.HandshakeTimeout)*time.Second)
			defer cancel()

			socket, err := iovec.Bind(":0")
			if err != nil {
				return err
			}
			defer socket.Close()

			creds := socks.PasswordCredentials{Username: cfg.Account.Username, Password: cfg.Account.Password}
			dialTimeout := time.Duration(cfg.Timeout.DialTimeout) * time.Second
			relay, err := socks.AssociateUDP(ctx, socks.DefaultStreamDialer, []string{cfg.Proxy.Address}, creds, socket, dialTimeout)
			if err != nil {
				return err
			}
			defer relay.Close()

			logger.Info("UDP relay ready at: ", relay.ProxyAddress())

			limiter := ratelimit.New(cfg.UDPRatePerSecond, int(cfg.UDPRatePerSecond))
			if err := limiter.Wait(ctx); err != nil {
				return err
			}

			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && len(line) == 0 {
				return err
			}

			target := socks.Text(args[0])
			if _, err := relay.SendTo([]byte(line), target); err != nil {
				return err
			}

			reply := make([]byte, 65507)
			n, from, err := relay.ReceiveFrom(reply)
			if err != nil {
				return err
			}
			fmt.Printf("%d bytes from %s: %s\n", n, from, reply[:n])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "./config.toml", "path to config file")
	return cmd
}
