package main

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"xdao.co/resumehash/cidutil"
	"xdao.co/resumehash/registry"
	"xdao.co/resumehash/rhash"
	"xdao.co/resumehash/storage/localfs"
)

type storeFlags struct {
	dir string
	alg algorithmFlag
}

func (s *storeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&s.dir, "store", "", "LocalFS registry directory")
	s.alg.register(fs)
}

func (s *storeFlags) open() (*registry.Registry, error) {
	f, err := s.alg.fingerprinter()
	if err != nil {
		return nil, err
	}
	cas, err := localfs.New(s.dir, localfs.WithAlgorithm(f.Algorithm))
	if err != nil {
		return nil, err
	}
	return &registry.Registry{CAS: cas, Fingerprinter: f}, nil
}

func cmdRegister(args []string, out io.Writer, errOut io.Writer) int {
	fs := newFlagSet("register", errOut)
	var d descriptorFlags
	var s storeFlags
	d.register(fs)
	s.register(fs)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if s.dir == "" || !d.given(fs) || fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: resumehash register --store <dir> --ref <R> --content-type <T> [--algorithm A]")
		return 2
	}
	reg, err := s.open()
	if err != nil {
		return reportErr(errOut, "open store", err)
	}
	fp, id, err := reg.RegisterDescriptor(d.descriptor())
	if err != nil {
		return reportErr(errOut, "register", err)
	}
	_, _ = fmt.Fprintf(out, "%s\t%s\n", id, fp)
	return 0
}

func cmdResolve(args []string, out io.Writer, errOut io.Writer) int {
	fs := newFlagSet("resolve", errOut)
	var s storeFlags
	s.register(fs)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if s.dir == "" || fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: resumehash resolve --store <dir> [--algorithm A] <cid|hex>")
		return 2
	}
	reg, err := s.open()
	if err != nil {
		return reportErr(errOut, "open store", err)
	}

	var d rhash.Descriptor
	if fp, perr := rhash.ParseFingerprint(fs.Arg(0)); perr == nil {
		d, err = reg.Resolve(fp)
	} else {
		id, cerr := cidutil.Parse(fs.Arg(0))
		if cerr != nil {
			fmt.Fprintf(errOut, "invalid CID or fingerprint: %v\n", cerr)
			return 2
		}
		d, err = reg.ResolveCID(id)
	}
	if err != nil {
		return reportErr(errOut, "resolve", err)
	}
	printDescriptor(out, d)
	return 0
}

func cmdList(args []string, out io.Writer, errOut io.Writer) int {
	fs := newFlagSet("list", errOut)
	var s storeFlags
	s.register(fs)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if s.dir == "" || fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: resumehash list --store <dir> [--algorithm A]")
		return 2
	}
	reg, err := s.open()
	if err != nil {
		return reportErr(errOut, "open store", err)
	}
	fps, err := reg.List()
	if err != nil {
		return reportErr(errOut, "list", err)
	}
	for _, fp := range fps {
		_, _ = fmt.Fprintln(out, fp)
	}
	return 0
}

// printDescriptor writes the reference and content-type on separate lines.
func printDescriptor(w io.Writer, d rhash.Descriptor) {
	_, _ = fmt.Fprintf(w, "reference: %s\ncontent-type: %s\n", d.Reference, d.ContentType)
}
