package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"

	"xdao.co/resumehash/cidutil"
	"xdao.co/resumehash/fprpc"
	"xdao.co/resumehash/rhash"
)

type remoteFlags struct {
	target  string
	timeout time.Duration
}

func (r *remoteFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&r.target, "target", "", "resumehashd gRPC address (host:port)")
	fs.DurationVar(&r.timeout, "timeout", 10*time.Second, "Per-call timeout")
}

func (r *remoteFlags) dial() (*fprpc.Client, error) {
	c, err := fprpc.Dial(r.target, fprpc.DialOptions{Timeout: r.timeout})
	if err != nil {
		return nil, err
	}
	c.Timeout = r.timeout
	return c, nil
}

func cmdRemote(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: resumehash remote <subcommand> --target <host:port> ...")
		fmt.Fprintln(errOut, "subcommands: fingerprint, text, register, resolve")
		return 2
	}

	sub := args[0]
	fs := newFlagSet("remote "+sub, errOut)
	var r remoteFlags
	var d descriptorFlags
	r.register(fs)
	switch sub {
	case "fingerprint", "register":
		d.register(fs)
	case "text", "resolve":
	default:
		fmt.Fprintf(errOut, "unknown remote subcommand: %s\n", sub)
		return 2
	}
	if code, ok := parseFlags(fs, args[1:]); !ok {
		return code
	}
	if r.target == "" {
		fmt.Fprintf(errOut, "usage: resumehash remote %s --target <host:port> ...\n", sub)
		return 2
	}

	ctx := context.Background()
	switch sub {
	case "fingerprint", "register":
		if !d.given(fs) || fs.NArg() != 0 {
			fmt.Fprintf(errOut, "usage: resumehash remote %s --target <host:port> --ref <R> --content-type <T>\n", sub)
			return 2
		}
		framed, err := d.descriptor().Frame()
		if err != nil {
			return reportErr(errOut, "frame", err)
		}
		client, err := r.dial()
		if err != nil {
			return reportErr(errOut, "dial", err)
		}
		defer client.Close()
		if sub == "fingerprint" {
			fp, err := client.Fingerprint(ctx, framed)
			if err != nil {
				return reportErr(errOut, "remote fingerprint", err)
			}
			_, _ = fmt.Fprintln(out, fp)
			return 0
		}
		id, err := client.Register(ctx, framed)
		if err != nil {
			return reportErr(errOut, "remote register", err)
		}
		_, _ = fmt.Fprintln(out, id)
		return 0

	case "text":
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: resumehash remote text --target <host:port> <file|->")
			return 2
		}
		text, err := readInput(fs.Arg(0), in, rhash.MaxTextLen)
		if err != nil {
			return reportErr(errOut, "read text", err)
		}
		client, err := r.dial()
		if err != nil {
			return reportErr(errOut, "dial", err)
		}
		defer client.Close()
		fp, err := client.FingerprintText(ctx, text)
		if err != nil {
			return reportErr(errOut, "remote text", err)
		}
		_, _ = fmt.Fprintln(out, fp)
		return 0

	default: // resolve
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: resumehash remote resolve --target <host:port> <cid>")
			return 2
		}
		id, err := cidutil.Parse(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "invalid CID: %v\n", err)
			return 2
		}
		client, err := r.dial()
		if err != nil {
			return reportErr(errOut, "dial", err)
		}
		defer client.Close()
		desc, err := client.Resolve(ctx, id)
		if err != nil {
			return reportErr(errOut, "remote resolve", err)
		}
		printDescriptor(out, desc)
		return 0
	}
}
