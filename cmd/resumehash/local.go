package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"xdao.co/resumehash/internal/batch"
	"xdao.co/resumehash/rhash"
)

func cmdFingerprint(args []string, out io.Writer, errOut io.Writer) int {
	fs := newFlagSet("fingerprint", errOut)
	var d descriptorFlags
	var alg algorithmFlag
	d.register(fs)
	alg.register(fs)
	format := fs.String("format", "hex", "Output format: hex or cid")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if !d.given(fs) || fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: resumehash fingerprint --ref <R> --content-type <T> [--algorithm A] [--format hex|cid]")
		return 2
	}
	f, err := alg.fingerprinter()
	if err != nil {
		return reportErr(errOut, "algorithm", err)
	}
	fp, err := f.ComputeDescriptor(d.descriptor())
	if err != nil {
		return reportErr(errOut, "fingerprint", err)
	}
	s, err := formatFingerprint(fp, f.Algorithm, *format)
	if err != nil {
		return reportErr(errOut, "format", err)
	}
	_, _ = fmt.Fprintln(out, s)
	return 0
}

func cmdFrame(args []string, out io.Writer, errOut io.Writer) int {
	fs := newFlagSet("frame", errOut)
	var d descriptorFlags
	d.register(fs)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if !d.given(fs) || fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: resumehash frame --ref <R> --content-type <T>")
		return 2
	}
	framed, err := d.descriptor().Frame()
	if err != nil {
		return reportErr(errOut, "frame", err)
	}
	_, _ = fmt.Fprintln(out, hex.EncodeToString(framed))
	return 0
}

func cmdHashFramed(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	fs := newFlagSet("hash-framed", errOut)
	var alg algorithmFlag
	alg.register(fs)
	format := fs.String("format", "hex", "Output format: hex or cid")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: resumehash hash-framed [--algorithm A] [--format hex|cid] <file|->")
		return 2
	}
	f, err := alg.fingerprinter()
	if err != nil {
		return reportErr(errOut, "algorithm", err)
	}
	framed, err := readInput(fs.Arg(0), in, rhash.MaxInputLen)
	if err != nil {
		return reportErr(errOut, "read framed descriptor", err)
	}
	fp, err := f.Compute(framed)
	if err != nil {
		return reportErr(errOut, "fingerprint", err)
	}
	s, err := formatFingerprint(fp, f.Algorithm, *format)
	if err != nil {
		return reportErr(errOut, "format", err)
	}
	_, _ = fmt.Fprintln(out, s)
	return 0
}

func cmdNormalize(args []string, out io.Writer, errOut io.Writer) int {
	fs := newFlagSet("normalize", errOut)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(errOut, "usage: resumehash normalize ref|content-type|text <value>")
		return 2
	}
	value := []byte(fs.Arg(1))
	var (
		norm []byte
		err  error
	)
	switch fs.Arg(0) {
	case "ref", "reference":
		norm, err = rhash.NormalizeReference(value)
	case "content-type":
		norm, err = rhash.NormalizeContentType(value)
	case "text":
		norm, err = rhash.NormalizeText(value)
	default:
		fmt.Fprintf(errOut, "unknown component: %s\n", fs.Arg(0))
		return 2
	}
	if err != nil {
		return reportErr(errOut, "normalize", err)
	}
	_, _ = fmt.Fprintln(out, string(norm))
	return 0
}

func cmdText(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	fs := newFlagSet("text", errOut)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: resumehash text <file|->")
		return 2
	}
	text, err := readInput(fs.Arg(0), in, rhash.MaxTextLen)
	if err != nil {
		return reportErr(errOut, "read text", err)
	}
	fp, err := rhash.HashText(text)
	if err != nil {
		return reportErr(errOut, "text fingerprint", err)
	}
	_, _ = fmt.Fprintln(out, fp)
	return 0
}

func cmdBatch(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	fs := newFlagSet("batch", errOut)
	var alg algorithmFlag
	alg.register(fs)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: resumehash batch [--algorithm A] <file|->")
		return 2
	}
	f, err := alg.fingerprinter()
	if err != nil {
		return reportErr(errOut, "algorithm", err)
	}
	r, closeFn, err := openInput(fs.Arg(0), in)
	if err != nil {
		return reportErr(errOut, "open batch", err)
	}
	defer closeFn()

	stats, err := batch.Run(f, r, out)
	if err != nil {
		return reportErr(errOut, "batch", err)
	}
	fmt.Fprintf(errOut, "%d descriptors, %d rejected\n", stats.Items, stats.Failed)
	return 0
}
