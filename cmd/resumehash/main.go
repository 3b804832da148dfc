package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"xdao.co/resumehash/digest"
	"xdao.co/resumehash/rhash"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "fingerprint":
		return cmdFingerprint(args[1:], out, errOut)
	case "frame":
		return cmdFrame(args[1:], out, errOut)
	case "hash-framed":
		return cmdHashFramed(args[1:], in, out, errOut)
	case "normalize":
		return cmdNormalize(args[1:], out, errOut)
	case "text":
		return cmdText(args[1:], in, out, errOut)
	case "batch":
		return cmdBatch(args[1:], in, out, errOut)
	case "register":
		return cmdRegister(args[1:], out, errOut)
	case "resolve":
		return cmdResolve(args[1:], out, errOut)
	case "list":
		return cmdList(args[1:], out, errOut)
	case "remote":
		return cmdRemote(args[1:], in, out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "resumehash: descriptor fingerprint CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  resumehash fingerprint --ref <R> --content-type <T> [--algorithm sha256|sha3-256|blake3] [--format hex|cid]")
	fmt.Fprintln(w, "  resumehash frame --ref <R> --content-type <T>")
	fmt.Fprintln(w, "  resumehash hash-framed [--algorithm A] [--format hex|cid] <file|->")
	fmt.Fprintln(w, "  resumehash normalize ref|content-type|text <value>")
	fmt.Fprintln(w, "  resumehash text <file|->")
	fmt.Fprintln(w, "  resumehash batch [--algorithm A] <file|->")
	fmt.Fprintln(w, "  resumehash register --store <dir> --ref <R> --content-type <T> [--algorithm A]")
	fmt.Fprintln(w, "  resumehash resolve --store <dir> [--algorithm A] <cid|hex>")
	fmt.Fprintln(w, "  resumehash list --store <dir> [--algorithm A]")
	fmt.Fprintln(w, "  resumehash remote fingerprint|text|register|resolve --target <host:port> ...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - frame prints the framed descriptor as hex; hash-framed reads raw framed bytes")
	fmt.Fprintln(w, "  - batch reads a CBOR sequence of {ref, content_type} maps and writes a CBOR sequence of results")
	fmt.Fprintln(w, "  - register stores the canonical record; its CID carries the fingerprint")
	fmt.Fprintln(w, "  - exit status: 0 success, 1 failure, 2 usage")
}

func newFlagSet(name string, errOut io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(errOut)
	return fs
}

// parseFlags returns the exit code to use when parsing stops the command.
func parseFlags(fs *pflag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

type descriptorFlags struct {
	ref         string
	contentType string
}

func (d *descriptorFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&d.ref, "ref", "", "Reference (URI or path); may be empty")
	fs.StringVar(&d.contentType, "content-type", "", "Content-type (media type with parameters)")
}

// given reports whether both components were passed explicitly.
func (d *descriptorFlags) given(fs *pflag.FlagSet) bool {
	return fs.Changed("ref") && fs.Changed("content-type")
}

func (d *descriptorFlags) descriptor() rhash.Descriptor {
	return rhash.Descriptor{Reference: []byte(d.ref), ContentType: []byte(d.contentType)}
}

type algorithmFlag struct {
	name string
}

func (a *algorithmFlag) register(fs *pflag.FlagSet) {
	fs.StringVar(&a.name, "algorithm", "sha256", "Digest: sha256, sha3-256 or blake3")
}

func (a *algorithmFlag) fingerprinter() (rhash.Fingerprinter, error) {
	alg, err := digest.ParseAlgorithm(a.name)
	if err != nil {
		return rhash.Fingerprinter{}, err
	}
	return rhash.Fingerprinter{Algorithm: alg}, nil
}

// formatFingerprint renders fp as hex or as a raw CIDv1.
func formatFingerprint(fp rhash.Fingerprint, alg digest.Algorithm, format string) (string, error) {
	switch format {
	case "", "hex":
		return fp.String(), nil
	case "cid":
		c, err := fp.CIDFor(alg)
		if err != nil {
			return "", err
		}
		return c.String(), nil
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}

// openInput opens a file, or returns standard input for "-".
func openInput(path string, in io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return in, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// readInput reads at most limit bytes from a file or standard input.
func readInput(path string, in io.Reader, limit int64) ([]byte, error) {
	r, closeFn, err := openInput(path, in)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("input exceeds %d bytes", limit)
	}
	return b, nil
}

// reportErr prints a failure and returns exit status 1. Descriptor failures
// are printed with their RuleID.
func reportErr(errOut io.Writer, what string, err error) int {
	var re *rhash.Error
	if errors.As(err, &re) {
		fmt.Fprintf(errOut, "%s: %s [%s]: %s\n", what, re.Kind, re.RuleID, re.Message)
		return 1
	}
	fmt.Fprintf(errOut, "%s: %v\n", what, err)
	return 1
}
