package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/socks-go/socks"
	"github.com/socks-go/socks/internal/config"
	"github.com/socks-go/socks/internal/logger"
)

func bindCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "bind <host:port>",
		Short: "Issue a BIND request, print the listening endpoint, then wait for the peer to connect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get(configPath)
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Timeout.HandshakeTimeout)*time.Second)
			defer cancel()

			dialTimeout := time.Duration(cfg.Timeout.DialTimeout) * time.Second
			target := socks.Text(args[0])
			endpoints := []string{cfg.Proxy.Address}

			var listener *socks.ProxyListener
			var err error
			if cfg.Proxy.Version == 4 {
				listener, err = socks.Socks4Bind(ctx, socks.DefaultStreamDialer, endpoints, target, cfg.Account.Username, dialTimeout)
			} else {
				creds := socks.PasswordCredentials{Username: cfg.Account.Username, Password: cfg.Account.Password}
				listener, err = socks.Socks5Bind(ctx, socks.DefaultStreamDialer, endpoints, target, creds, dialTimeout)
			}
			if err != nil {
				return err
			}

			logger.Info("listening through proxy at: ", listener.BoundAddress())
			fmt.Println(listener.BoundAddress())

			handle, err := listener.Accept(ctx)
			if err != nil {
				return err
			}
			defer handle.Close()

			logger.Info("peer connected, final bound address: ", handle.BoundAddress())
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "./config.toml", "path to config file")
	return cmd
}
