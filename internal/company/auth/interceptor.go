// Package auth secures the company service: a gRPC unary interceptor and
// an HTTP middleware check bearer tokens on protected calls, and
// Accounts issues those tokens.
package auth

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey struct{}

// ProtectedMethods lists the gRPC methods that require a bearer token.
var ProtectedMethods = []string{
	"/insightdesk.v1.CompanyService/SubmitCompany",
	"/insightdesk.v1.CompanyService/SearchCompanies",
	"/insightdesk.v1.CompanyService/EnrichCompany",
	"/insightdesk.v1.CompanyService/ProcessText",
	"/insightdesk.v1.CompanyService/GetContent",
}

// Interceptor authenticates calls to ProtectedMethods.
type Interceptor struct {
	jwtSecret string
	protected map[string]struct{}
}

func NewAuthInterceptor(jwtSecret string) *Interceptor {
	protected := make(map[string]struct{}, len(ProtectedMethods))
	for _, m := range ProtectedMethods {
		protected[m] = struct{}{}
	}
	return &Interceptor{jwtSecret: jwtSecret, protected: protected}
}

func (i *Interceptor) isProtected(fullMethod string) bool {
	_, ok := i.protected[fullMethod]
	return ok
}

// Unary returns a gRPC unary interceptor. Unprotected methods pass
// through untouched; protected ones get the caller's user id in ctx.
func (i *Interceptor) Unary() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if !i.isProtected(info.FullMethod) {
			return handler(ctx, req)
		}
		ctx, err := i.authenticate(ctx)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

func (i *Interceptor) authenticate(ctx context.Context) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "metadata missing")
	}
	tokenString, err := extractTokenFromMetadata(md)
	if err != nil {
		return nil, err
	}
	claims, err := validateToken(tokenString, i.jwtSecret)
	if err != nil {
		return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
	}
	return withUserID(ctx, claims.Subject), nil
}

func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserIDFromContext returns the subject of the validated token, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(contextKey{}).(string)
	return userID, ok && userID != ""
}

func extractTokenFromMetadata(md metadata.MD) (string, error) {
	values := md.Get("authorization")
	if len(values) == 0 {
		return "", status.Error(codes.Unauthenticated, "authorization header missing")
	}
	tokenString, err := bearerToken(values[0])
	if err != nil {
		return "", status.Error(codes.Unauthenticated, err.Error())
	}
	return tokenString, nil
}

var (
	errNoBearerPrefix = errors.New("invalid authorization format: missing Bearer prefix")
	errEmptyToken     = errors.New("invalid authorization format: empty token")
)

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, error) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", errNoBearerPrefix
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errEmptyToken
	}
	return token, nil
}
