// Command mpeg2stinx removes MPEG-2 field combing from a YUV4MPEG2 stream.
//
// Usage:
//
//	mpeg2stinx [flags] <input.y4m>     use "-" for stdin
//	mpeg2stinx -o out.y4m --mode 0 --diffscl 1 in.y4m
//
// Settings are taken from defaults, then --config, then STINX_* environment
// variables, then explicitly set flags.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "mpeg2stinx: %v\n", err)
		stop()
		os.Exit(1)
	}
}
