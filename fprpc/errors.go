package fprpc

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/resumehash/registry"
	"xdao.co/resumehash/rhash"
	"xdao.co/resumehash/storage"
)

// errorDomain marks ErrorInfo details that carry an rhash.Error.
const errorDomain = "resumehash"

// mapErr converts a server-side error to a gRPC status. Descriptor failures
// travel as an ErrorInfo detail whose Reason is the RuleID.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var re *rhash.Error
	switch {
	case errors.As(err, &re):
		code := codes.InvalidArgument
		if re.Kind == rhash.KindInternal {
			code = codes.Internal
		}
		st := status.New(code, re.RuleID+": "+re.Message)
		detailed, derr := st.WithDetails(&errdetails.ErrorInfo{
			Reason:   re.RuleID,
			Domain:   errorDomain,
			Metadata: map[string]string{"kind": string(re.Kind), "message": re.Message},
		})
		if derr == nil {
			st = detailed
		}
		return st.Err()
	case errors.Is(err, storage.ErrNotFound):
		return status.Error(codes.NotFound, storage.ErrNotFound.Error())
	case errors.Is(err, storage.ErrInvalidCID):
		return status.Error(codes.InvalidArgument, storage.ErrInvalidCID.Error())
	case errors.Is(err, storage.ErrCIDMismatch):
		return status.Error(codes.DataLoss, storage.ErrCIDMismatch.Error())
	case errors.Is(err, registry.ErrNotCanonical):
		return status.Error(codes.DataLoss, registry.ErrNotCanonical.Error())
	case errors.Is(err, registry.ErrNoStore):
		return status.Error(codes.FailedPrecondition, registry.ErrNoStore.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// mapRPC is the client-side inverse of mapErr.
func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != errorDomain {
			continue
		}
		md := info.GetMetadata()
		return &rhash.Error{Kind: rhash.Kind(md["kind"]), RuleID: info.GetReason(), Message: md["message"], Cause: err}
	}

	switch st.Code() {
	case codes.NotFound:
		return storage.ErrNotFound
	case codes.FailedPrecondition:
		return registry.ErrNoStore
	case codes.DataLoss:
		if st.Message() == registry.ErrNotCanonical.Error() {
			return registry.ErrNotCanonical
		}
		return storage.ErrCIDMismatch
	case codes.InvalidArgument:
		if st.Message() == storage.ErrInvalidCID.Error() {
			return storage.ErrInvalidCID
		}
		return err
	default:
		return err
	}
}
