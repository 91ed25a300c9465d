package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	submitMethod = "/insightdesk.v1.CompanyService/SubmitCompany"
	getMethod    = "/insightdesk.v1.CompanyService/GetCompany"
)

func signedToken(t *testing.T, secret, sub string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	tokenString, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return tokenString
}

func TestAuthInterceptor(t *testing.T) {
	const (
		validSecret   = "test-secret"
		invalidSecret = "wrong-secret"
		userID        = "test-user"
	)

	tests := []struct {
		name        string
		fullMethod  string
		token       string
		expectedErr codes.Code
	}{
		{
			name:        "protected method valid token",
			fullMethod:  submitMethod,
			token:       signedToken(t, validSecret, userID, time.Now().Add(time.Hour)),
			expectedErr: codes.OK,
		},
		{
			name:        "protected method invalid token",
			fullMethod:  submitMethod,
			token:       signedToken(t, invalidSecret, userID, time.Now().Add(time.Hour)),
			expectedErr: codes.Unauthenticated,
		},
		{
			name:        "protected method expired token",
			fullMethod:  submitMethod,
			token:       signedToken(t, validSecret, userID, time.Now().Add(-time.Hour)),
			expectedErr: codes.Unauthenticated,
		},
		{
			name:        "protected method token without subject",
			fullMethod:  submitMethod,
			token:       signedToken(t, validSecret, "", time.Now().Add(time.Hour)),
			expectedErr: codes.Unauthenticated,
		},
		{
			name:        "protected method missing metadata",
			fullMethod:  submitMethod,
			expectedErr: codes.Unauthenticated,
		},
		{
			name:        "unprotected method no token",
			fullMethod:  getMethod,
			expectedErr: codes.OK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unaryInterceptor := NewAuthInterceptor(validSecret).Unary()

			ctx := context.Background()
			if tt.token != "" {
				ctx = metadata.NewIncomingContext(ctx, metadata.Pairs("authorization", "Bearer "+tt.token))
			}

			handler := func(ctx context.Context, _ interface{}) (interface{}, error) {
				if tt.fullMethod == submitMethod {
					sub, ok := UserIDFromContext(ctx)
					if !ok || sub != userID {
						return nil, status.Error(codes.Unauthenticated, "claims not in context")
					}
				}
				return "response", nil
			}

			info := &grpc.UnaryServerInfo{FullMethod: tt.fullMethod}
			resp, err := unaryInterceptor(ctx, nil, info, handler)

			if tt.expectedErr != codes.OK {
				require.Error(t, err)
				assert.Equal(t, tt.expectedErr, status.Code(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "response", resp)
		})
	}
}

func TestExtractTokenFromMetadata(t *testing.T) {
	tests := []struct {
		name        string
		metadata    metadata.MD
		wantToken   string
		wantErrCode codes.Code
	}{
		{
			name:        "valid authorization header",
			metadata:    metadata.Pairs("authorization", "Bearer valid-token"),
			wantToken:   "valid-token",
			wantErrCode: codes.OK,
		},
		{
			name:        "scheme is case-insensitive",
			metadata:    metadata.Pairs("authorization", "bearer valid-token"),
			wantToken:   "valid-token",
			wantErrCode: codes.OK,
		},
		{
			name:        "missing authorization header",
			metadata:    metadata.MD{},
			wantErrCode: codes.Unauthenticated,
		},
		{
			name:        "malformed authorization header",
			metadata:    metadata.Pairs("authorization", "InvalidPrefix valid-token"),
			wantErrCode: codes.Unauthenticated,
		},
		{
			name:        "empty bearer token",
			metadata:    metadata.Pairs("authorization", "Bearer "),
			wantErrCode: codes.Unauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := extractTokenFromMetadata(tt.metadata)

			if tt.wantErrCode != codes.OK {
				require.Error(t, err)
				assert.Equal(t, tt.wantErrCode, status.Code(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestValidateToken(t *testing.T) {
	const validSecret = "test-secret"
	validTokenString := signedToken(t, validSecret, "user123", time.Now().Add(time.Hour))

	tests := []struct {
		name        string
		tokenString string
		secret      string
		wantValid   bool
	}{
		{name: "valid token", tokenString: validTokenString, secret: validSecret, wantValid: true},
		{name: "invalid signature", tokenString: validTokenString, secret: "wrong-secret"},
		{
			name:        "expired token",
			tokenString: signedToken(t, validSecret, "user123", time.Now().Add(-time.Hour)),
			secret:      validSecret,
		},
		{name: "malformed token", tokenString: "invalid.token.string", secret: validSecret},
		{
			name:        "missing subject",
			tokenString: signedToken(t, validSecret, "", time.Now().Add(time.Hour)),
			secret:      validSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := validateToken(tt.tokenString, tt.secret)
			if !tt.wantValid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user123", claims.Subject)
		})
	}
}

func TestNewAuthInterceptor(t *testing.T) {
	interceptor := NewAuthInterceptor("test-secret")
	assert.Equal(t, "test-secret", interceptor.jwtSecret)

	for _, method := range ProtectedMethods {
		assert.True(t, interceptor.isProtected(method), method)
	}
	assert.True(t, interceptor.isProtected("/insightdesk.v1.CompanyService/SearchCompanies"))
	assert.False(t, interceptor.isProtected(getMethod))
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken("user-42", "s3cret", time.Minute)
	require.NoError(t, err)

	claims, err := validateToken(token, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.Subject)
	assert.Equal(t, "insightdesk", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Minute), claims.ExpiresAt.Time, 5*time.Second)

	token, err = GenerateToken("user-42", "s3cret", 0)
	require.NoError(t, err)
	claims, err = validateToken(token, "s3cret")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultTokenTTL), claims.ExpiresAt.Time, 5*time.Second)
}
