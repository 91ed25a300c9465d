// Package handlers provides gRPC and HTTP server implementations for
// serving the CompanyService, bridging the transport layer and business
// logic and translating between JSON messages and domain models.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gartstein/insightdesk/internal/company/auth"
	"github.com/gartstein/insightdesk/internal/company/completeness"
	"github.com/gartstein/insightdesk/internal/company/controller"
	"github.com/gartstein/insightdesk/internal/company/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// CompanyController defines the business logic interface
// that the gRPC/HTTP handlers will invoke.
type CompanyController interface {
	SubmitCompany(ctx context.Context, company *models.Company) (*controller.SubmitResult, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, completeness.Report, error)
	SearchCompanies(ctx context.Context, userID, query string, companyType models.CompanyType) (*controller.SearchResult, error)
	EnrichCompany(ctx context.Context, name string, save bool) (*models.Company, *controller.SubmitResult, error)
	ProcessText(ctx context.Context, sub controller.TextSubmission) (*models.ContentItem, error)
	GetContent(ctx context.Context, userID string, id uuid.UUID) (*models.ContentItem, error)
}

// Server holds references to both a gRPC server and an HTTP server.
type Server struct {
	grpcServer   *grpc.Server
	httpServer   *http.Server
	gatewayConn  *grpc.ClientConn
	logger       *zap.Logger
	grpcEndpoint string
	httpEndpoint string
	stopped      chan struct{}
	stopOnce     sync.Once
}

// NewServer constructs a Server with separate endpoints for gRPC and HTTP.
func NewServer(
	grpcPort int,
	httpPort int,
	logger *zap.Logger,
	grpcOpts ...grpc.ServerOption,
) *Server {
	return &Server{
		grpcServer:   grpc.NewServer(grpcOpts...),
		httpServer:   &http.Server{ReadHeaderTimeout: 10 * time.Second},
		logger:       logger,
		grpcEndpoint: fmt.Sprintf(":%d", grpcPort),
		httpEndpoint: fmt.Sprintf(":%d", httpPort),
		stopped:      make(chan struct{}),
	}
}

// RegisterGRPCHandler registers the gRPC handler for the CompanyService.
func (s *Server) RegisterGRPCHandler(h CompanyServiceServer) {
	s.grpcServer.RegisterService(&CompanyServiceDesc, h)
}

// RegisterHTTPGateway sets up the HTTP reverse-proxy (gRPC-Gateway) with the specified dial options.
func (s *Server) RegisterHTTPGateway(_ context.Context, dialOpts []grpc.DialOption, jwtSecret string) error {
	conn, err := grpc.NewClient("localhost"+s.grpcEndpoint, dialOpts...)
	if err != nil {
		return fmt.Errorf("gateway client: %w", err)
	}

	mux, err := newGatewayMux(conn)
	if err != nil {
		_ = conn.Close()
		return err
	}

	s.gatewayConn = conn
	s.httpServer.Handler = auth.HTTPMiddleware(mux, jwtSecret)
	s.httpServer.Addr = s.httpEndpoint
	return nil
}

// Start runs the gRPC and HTTP servers concurrently. A failure of either
// one stops the other and is returned.
func (s *Server) Start() error {
	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		s.logger.Info("Starting gRPC server", zap.String("endpoint", s.grpcEndpoint))
		lis, err := net.Listen("tcp", s.grpcEndpoint)
		if err != nil {
			return fmt.Errorf("gRPC listen error: %w", err)
		}
		if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("gRPC serve error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.logger.Info("Starting HTTP server", zap.String("endpoint", s.httpEndpoint))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP serve error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.stopped:
		}
		return nil
	})

	return g.Wait()
}

// Stop gracefully shuts down both gRPC and HTTP servers.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Shutting down servers...")
		close(s.stopped)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
		s.grpcServer.GracefulStop()
		if s.gatewayConn != nil {
			_ = s.gatewayConn.Close()
		}

		s.logger.Info("Servers stopped")
	})
}
