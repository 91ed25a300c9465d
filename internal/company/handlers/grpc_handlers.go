package handlers

import (
	"context"
	"strings"

	"github.com/gartstein/insightdesk/internal/company/auth"
	"github.com/gartstein/insightdesk/internal/company/controller"
	"github.com/gartstein/insightdesk/internal/company/models"
	"github.com/gartstein/insightdesk/internal/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// CompanyHandler provides gRPC methods for Company operations,
// mapping requests to a CompanyController interface.
type CompanyHandler struct {
	service CompanyController
	logger  *zap.Logger
}

var _ CompanyServiceServer = (*CompanyHandler)(nil)

// NewCompanyHandler constructs a new CompanyHandler with the given service and logger.
func NewCompanyHandler(service CompanyController, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		service: service,
		logger:  logger.Named("grpc_handler"),
	}
}

// SubmitCompany creates, merges or rejects the submitted company.
func (h *CompanyHandler) SubmitCompany(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	company, err := structToCompany(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	res, err := h.service.SubmitCompany(ctx, company)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return h.respond(toSubmitResponse(res))
}

// GetCompany fetches a Company by ID, returning an error if not found.
func (h *CompanyHandler) GetCompany(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := parseID(req)
	if err != nil {
		return nil, err
	}

	company, report, err := h.service.GetCompany(ctx, id)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return h.respond(companyResponse{Company: company, Completeness: report})
}

// SearchCompanies matches companies by name and the caller's content by text.
func (h *CompanyHandler) SearchCompanies(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "user required")
	}
	companyType := normalizeCompanyType(models.CompanyType(stringField(req, "type")))

	res, err := h.service.SearchCompanies(ctx, userID, stringField(req, "q"), companyType)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return h.respond(toSearchResponse(res))
}

// EnrichCompany previews an enriched profile and optionally saves it.
func (h *CompanyHandler) EnrichCompany(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in enrichRequest
	if err := decodeStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	preview, res, err := h.service.EnrichCompany(ctx, in.CompanyName, in.Save)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return h.respond(enrichResponse{Company: preview, Saved: toSubmitResponse(res)})
}

func (h *CompanyHandler) ProcessText(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "user required")
	}

	var in textRequest
	if err := decodeStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	sub := controller.TextSubmission{UserID: userID, Title: in.Title, Text: in.Text}
	if strings.TrimSpace(in.CompanyID) != "" {
		companyID, err := uuid.Parse(in.CompanyID)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "invalid companyId")
		}
		sub.CompanyID = utils.Ptr(companyID)
	}

	item, err := h.service.ProcessText(ctx, sub)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return h.respond(contentResponse{Content: item})
}

func (h *CompanyHandler) GetContent(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "user required")
	}
	id, err := parseID(req)
	if err != nil {
		return nil, err
	}

	item, err := h.service.GetContent(ctx, userID, id)
	if err != nil {
		return nil, h.mapServiceError(err)
	}
	return h.respond(contentResponse{Content: item})
}
