package fprpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "resumehash.fprpc.v1.Fingerprints"

// FingerprintsServer is the server API for the Fingerprints service.
//
// Messages are protobuf well-known wrapper types, so the package needs no
// protoc/codegen toolchain.
//
// Proto definition: fingerprints.proto.
type FingerprintsServer interface {
	Fingerprint(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	FingerprintText(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	Register(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error)
	Resolve(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
}

// UnimplementedFingerprintsServer can be embedded to have forward compatible implementations.
type UnimplementedFingerprintsServer struct{}

func (UnimplementedFingerprintsServer) Fingerprint(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Fingerprint not implemented")
}
func (UnimplementedFingerprintsServer) FingerprintText(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method FingerprintText not implemented")
}
func (UnimplementedFingerprintsServer) Register(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedFingerprintsServer) Resolve(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Resolve not implemented")
}

// RegisterFingerprintsServer registers the Fingerprints service on a gRPC server.
func RegisterFingerprintsServer(s grpc.ServiceRegistrar, srv FingerprintsServer) {
	s.RegisterService(&Fingerprints_ServiceDesc, srv)
}

// FingerprintsClient is the client API for the Fingerprints service.
type FingerprintsClient interface {
	Fingerprint(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	FingerprintText(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Register(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	Resolve(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

type fingerprintsClient struct{ cc grpc.ClientConnInterface }

func NewFingerprintsClient(cc grpc.ClientConnInterface) FingerprintsClient {
	return &fingerprintsClient{cc: cc}
}

func (c *fingerprintsClient) Fingerprint(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/Fingerprint", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fingerprintsClient) FingerprintText(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/FingerprintText", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fingerprintsClient) Register(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/Register", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fingerprintsClient) Resolve(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/Resolve", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _Fingerprints_Fingerprint_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FingerprintsServer).Fingerprint(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Fingerprint"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FingerprintsServer).Fingerprint(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Fingerprints_FingerprintText_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FingerprintsServer).FingerprintText(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/FingerprintText"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FingerprintsServer).FingerprintText(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Fingerprints_Register_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FingerprintsServer).Register(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Register"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FingerprintsServer).Register(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Fingerprints_Resolve_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FingerprintsServer).Resolve(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Resolve"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FingerprintsServer).Resolve(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Fingerprints_ServiceDesc is the grpc.ServiceDesc for the Fingerprints service.
var Fingerprints_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FingerprintsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Fingerprint", Handler: _Fingerprints_Fingerprint_Handler},
		{MethodName: "FingerprintText", Handler: _Fingerprints_FingerprintText_Handler},
		{MethodName: "Register", Handler: _Fingerprints_Register_Handler},
		{MethodName: "Resolve", Handler: _Fingerprints_Resolve_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fingerprints.proto",
}
