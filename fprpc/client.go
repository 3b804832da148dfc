package fprpc

import (
	"context"
	"fmt"
	"time"

	"github.com/ipfs/go-cid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/resumehash/cidutil"
	"xdao.co/resumehash/rhash"
	"xdao.co/resumehash/storage"
)

// Client calls a remote Fingerprints service. Descriptor failures come back
// as *rhash.Error with the server's Kind and RuleID.
type Client struct {
	cc     *grpc.ClientConn
	client FingerprintsClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int

	// Extra is appended to the dial options, e.g. a custom dialer.
	Extra []grpc.DialOption
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}
	dialOpts = append(dialOpts, opts.Extra...)

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewFingerprintsClient(cc)}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// Fingerprint sends a framed descriptor and returns its fingerprint.
func (c *Client) Fingerprint(ctx context.Context, framed []byte) (rhash.Fingerprint, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	reply, err := c.client.Fingerprint(ctx, wrapperspb.Bytes(framed))
	if err != nil {
		return rhash.Fingerprint{}, mapRPC(err)
	}
	return toFingerprint(reply.GetValue())
}

// FingerprintText returns the text fingerprint of text.
func (c *Client) FingerprintText(ctx context.Context, text []byte) (rhash.Fingerprint, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	reply, err := c.client.FingerprintText(ctx, wrapperspb.Bytes(text))
	if err != nil {
		return rhash.Fingerprint{}, mapRPC(err)
	}
	return toFingerprint(reply.GetValue())
}

// Register stores a framed descriptor remotely and returns the record's CID.
func (c *Client) Register(ctx context.Context, framed []byte) (cid.Cid, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	reply, err := c.client.Register(ctx, wrapperspb.Bytes(framed))
	if err != nil {
		return cid.Undef, mapRPC(err)
	}
	id, err := cidutil.Parse(reply.GetValue())
	if err != nil {
		return cid.Undef, storage.ErrInvalidCID
	}
	return id, nil
}

// Resolve fetches the record stored under id, checks it against id and
// returns the descriptor it holds.
func (c *Client) Resolve(ctx context.Context, id cid.Cid) (rhash.Descriptor, error) {
	if !id.Defined() {
		return rhash.Descriptor{}, storage.ErrInvalidCID
	}
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	reply, err := c.client.Resolve(ctx, wrapperspb.String(id.String()))
	if err != nil {
		return rhash.Descriptor{}, mapRPC(err)
	}
	record := reply.GetValue()
	if err := storage.Verify(id, record); err != nil {
		return rhash.Descriptor{}, err
	}
	return rhash.ParseAssembled(record)
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}

func toFingerprint(b []byte) (rhash.Fingerprint, error) {
	var fp rhash.Fingerprint
	if len(b) != len(fp) {
		return fp, fmt.Errorf("fprpc: server returned %d-byte fingerprint", len(b))
	}
	copy(fp[:], b)
	return fp, nil
}
