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

func connectCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "connect <host:port>",
		Short: "Perform a CONNECT handshake and print the proxy-side bound address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get(configPath)
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Timeout.HandshakeTimeout)*time.Second)
			defer cancel()

			dialTimeout := time.Duration(cfg.Timeout.DialTimeout) * time.Second
			target := socks.Text(args[0])

			handle, err := dial(ctx, cfg, target, dialTimeout)
			if err != nil {
				return err
			}
			defer handle.Close()

			logger.Info("connected, proxy-side bound address: ", handle.BoundAddress())
			fmt.Println(handle.BoundAddress())
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "./config.toml", "path to config file")
	return cmd
}

// dial picks the SOCKS4 or SOCKS5 CONNECT flow based on cfg.Proxy.Version.
func dial(ctx context.Context, cfg *config.Config, target socks.ToTargetAddresser, dialTimeout time.Duration) (*socks.ProxyHandle, error) {
	endpoints := []string{cfg.Proxy.Address}
	if cfg.Proxy.Version == 4 {
		return socks.Socks4Connect(ctx, socks.DefaultStreamDialer, endpoints, target, cfg.Account.Username, dialTimeout)
	}
	creds := socks.PasswordCredentials{Username: cfg.Account.Username, Password: cfg.Account.Password}
	return socks.Socks5Connect(ctx, socks.DefaultStreamDialer, endpoints, target, creds, dialTimeout)
}
