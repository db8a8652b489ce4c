package proxy

import (
	"context"
	"net"
	"net/http"

	"golang.org/x/net/proxy"
)

// NewSocksClient builds an HTTP client that tunnels through a SOCKS5 proxy.
// No client timeout is set, request deadlines come from the caller's ctx.
func NewSocksClient(socksAddr string) (*http.Client, error) {
	dialer, err := proxy.SOCKS5("tcp", socksAddr, nil, proxy.Direct)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		},
	}

	return &http.Client{Transport: transport}, nil
}
