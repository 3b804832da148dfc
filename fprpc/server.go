package fprpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/resumehash/cidutil"
	"xdao.co/resumehash/internal/metrics"
	"xdao.co/resumehash/registry"
	"xdao.co/resumehash/rhash"
	"xdao.co/resumehash/storage"
)

// Server exposes fingerprinting and an optional registry over the
// Fingerprints gRPC service.
type Server struct {
	UnimplementedFingerprintsServer
	Fingerprinter rhash.Fingerprinter
	// Registry backs Register and Resolve. Without one those methods fail
	// with FailedPrecondition.
	Registry *registry.Registry
}

func (s *Server) Fingerprint(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	fp, err := s.Fingerprinter.Compute(in.GetValue())
	if err != nil {
		return nil, reject(err)
	}
	return wrapperspb.Bytes(fp[:]), nil
}

func (s *Server) FingerprintText(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	fp, err := rhash.HashText(in.GetValue())
	if err != nil {
		return nil, reject(err)
	}
	return wrapperspb.Bytes(fp[:]), nil
}

func (s *Server) Register(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	_ = ctx
	if s.Registry == nil {
		return nil, mapErr(registry.ErrNoStore)
	}
	_, id, err := s.Registry.Register(in.GetValue())
	if err != nil {
		return nil, reject(err)
	}
	metrics.RegisteredRecords.Inc()
	return wrapperspb.String(id.String()), nil
}

// Resolve returns the assembled record stored under a CID. A 64-character
// hex fingerprint is accepted in place of the CID.
func (s *Server) Resolve(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s.Registry == nil {
		return nil, mapErr(registry.ErrNoStore)
	}
	var (
		d   rhash.Descriptor
		err error
	)
	if fp, perr := rhash.ParseFingerprint(in.GetValue()); perr == nil {
		d, err = s.Registry.Resolve(fp)
	} else {
		id, cerr := cidutil.Parse(in.GetValue())
		if cerr != nil || !id.Defined() {
			return nil, status.Error(codes.InvalidArgument, storage.ErrInvalidCID.Error())
		}
		d, err = s.Registry.ResolveCID(id)
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Bytes(rhash.Assemble(d)), nil
}

// reject counts descriptor failures by rule before mapping them.
func reject(err error) error {
	if id := rhash.RuleID(err); id != "" {
		metrics.Rejections.WithLabelValues(id).Inc()
	}
	return mapErr(err)
}
