package dataverse

import (
	"context"
	"fmt"
	"log"

	"github.com/jessevdk/go-flags"
)

// Run parses arguments, builds the server and serves over the configured
// transport until the process terminates.
func Run(args []string) error {
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}
	ctx := context.Background()
	if err := options.Init(ctx); err != nil {
		return err
	}
	srv, err := NewServer(ctx, options)
	if err != nil {
		return err
	}
	switch options.Transport {
	case "sse", "streamable":
		srv.UseStreamableHTTP(options.Transport == "streamable")
		log.Printf("[mcp-dataverse] serving %v on :%v", options.Transport, options.Port)
		return srv.HTTP(ctx, fmt.Sprintf(":%v", options.Port)).ListenAndServe()
	default:
		return srv.Stdio(ctx).ListenAndServe()
	}
}
