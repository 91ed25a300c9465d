package handlers

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "insightdesk.v1.CompanyService"

// CompanyServiceServer is the gRPC surface of the company service. Every
// request and response is a JSON object carried as a structpb.Struct.
type CompanyServiceServer interface {
	SubmitCompany(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCompany(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SearchCompanies(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EnrichCompany(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ProcessText(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetContent(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// FullMethod returns the gRPC method path for name.
func FullMethod(name string) string {
	return "/" + serviceName + "/" + name
}

type unaryCall func(CompanyServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CompanyServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(name),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CompanyServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CompanyServiceDesc registers a CompanyServiceServer on a grpc.Server.
var CompanyServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CompanyServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SubmitCompany", Handler: unaryHandler("SubmitCompany", CompanyServiceServer.SubmitCompany)},
		{MethodName: "GetCompany", Handler: unaryHandler("GetCompany", CompanyServiceServer.GetCompany)},
		{MethodName: "SearchCompanies", Handler: unaryHandler("SearchCompanies", CompanyServiceServer.SearchCompanies)},
		{MethodName: "EnrichCompany", Handler: unaryHandler("EnrichCompany", CompanyServiceServer.EnrichCompany)},
		{MethodName: "ProcessText", Handler: unaryHandler("ProcessText", CompanyServiceServer.ProcessText)},
		{MethodName: "GetContent", Handler: unaryHandler("GetContent", CompanyServiceServer.GetContent)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "insightdesk/v1/company_service.proto",
}
