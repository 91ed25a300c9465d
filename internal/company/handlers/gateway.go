package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type requestDecoder func(m runtime.Marshaler, r *http.Request, params map[string]string) (*structpb.Struct, error)

type gatewayRoute struct {
	method  string
	pattern string
	rpc     string
	decode  requestDecoder
}

var gatewayRoutes = []gatewayRoute{
	{method: http.MethodPost, pattern: "/v1/companies", rpc: "SubmitCompany", decode: decodeBody},
	{method: http.MethodGet, pattern: "/v1/companies", rpc: "SearchCompanies", decode: decodeQuery("q", "type")},
	{method: http.MethodGet, pattern: "/v1/companies/{id}", rpc: "GetCompany", decode: decodePath("id")},
	{method: http.MethodPost, pattern: "/v1/enrichments", rpc: "EnrichCompany", decode: decodeBody},
	{method: http.MethodPost, pattern: "/v1/content", rpc: "ProcessText", decode: decodeBody},
	{method: http.MethodGet, pattern: "/v1/content/{id}", rpc: "GetContent", decode: decodePath("id")},
}

// newGatewayMux maps the REST routes onto CompanyService calls over conn.
func newGatewayMux(conn grpc.ClientConnInterface) (*runtime.ServeMux, error) {
	mux := runtime.NewServeMux()
	for _, route := range gatewayRoutes {
		if err := mux.HandlePath(route.method, route.pattern, forward(mux, conn, route)); err != nil {
			return nil, fmt.Errorf("register %s %s: %w", route.method, route.pattern, err)
		}
	}
	return mux, nil
}

func forward(mux *runtime.ServeMux, conn grpc.ClientConnInterface, route gatewayRoute) runtime.HandlerFunc {
	method := FullMethod(route.rpc)
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		inbound, outbound := runtime.MarshalerForRequest(mux, r)
		annotated, err := runtime.AnnotateContext(ctx, mux, r, method, runtime.WithHTTPPathPattern(route.pattern))
		if err != nil {
			runtime.HTTPError(ctx, mux, outbound, w, r, err)
			return
		}

		in, err := route.decode(inbound, r, params)
		if err != nil {
			runtime.HTTPError(annotated, mux, outbound, w, r, status.Error(codes.InvalidArgument, err.Error()))
			return
		}

		var md runtime.ServerMetadata
		out := new(structpb.Struct)
		err = conn.Invoke(annotated, method, in, out, grpc.Header(&md.HeaderMD), grpc.Trailer(&md.TrailerMD))
		annotated = runtime.NewServerMetadataContext(annotated, md)
		if err != nil {
			runtime.HTTPError(annotated, mux, outbound, w, r, err)
			return
		}

		runtime.ForwardResponseMessage(annotated, mux, outbound, w, r, out)
	}
}

func decodeBody(m runtime.Marshaler, r *http.Request, _ map[string]string) (*structpb.Struct, error) {
	in := &structpb.Struct{}
	if err := m.NewDecoder(r.Body).Decode(in); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	return in, nil
}

func decodeQuery(keys ...string) requestDecoder {
	return func(_ runtime.Marshaler, r *http.Request, _ map[string]string) (*structpb.Struct, error) {
		query := r.URL.Query()
		fields := make(map[string]any, len(keys))
		for _, key := range keys {
			if v := query.Get(key); v != "" {
				fields[key] = v
			}
		}
		return structpb.NewStruct(fields)
	}
}

func decodePath(keys ...string) requestDecoder {
	return func(_ runtime.Marshaler, _ *http.Request, params map[string]string) (*structpb.Struct, error) {
		fields := make(map[string]any, len(keys))
		for _, key := range keys {
			v, ok := params[key]
			if !ok {
				return nil, fmt.Errorf("missing parameter %q", key)
			}
			fields[key] = v
		}
		return structpb.NewStruct(fields)
	}
}
