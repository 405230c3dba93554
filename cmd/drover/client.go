package main

import (
	"fmt"

	"drover/config"
	"drover/sdk"
)

// connection resolves which daemon the CLI talks to.
type connection struct {
	endpoint *string
	context  *string
}

// client picks the endpoint in precedence order: --endpoint, the named
// or current config context, then the default socket.
func (c *connection) client() (*sdk.Client, error) {
	if *c.endpoint != "" {
		return sdk.New(*c.endpoint), nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if *c.context != "" {
		cx, ok := cfg.Contexts[*c.context]
		if !ok {
			return nil, fmt.Errorf("context %q not found", *c.context)
		}
		return sdk.New(cx.Endpoint()), nil
	}
	if _, cx, ok := cfg.Current(); ok {
		return sdk.New(cx.Endpoint()), nil
	}
	return sdk.New(sdk.DefaultEndpoint()), nil
}
