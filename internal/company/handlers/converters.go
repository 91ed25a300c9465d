package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gartstein/insightdesk/internal/company/completeness"
	"github.com/gartstein/insightdesk/internal/company/controller"
	e "github.com/gartstein/insightdesk/internal/company/errors"
	"github.com/gartstein/insightdesk/internal/company/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type submitResponse struct {
	Outcome      controller.Outcome  `json:"outcome"`
	Company      *models.Company     `json:"company"`
	Completeness completeness.Report `json:"completeness"`
}

type companyResponse struct {
	Company      *models.Company     `json:"company"`
	Completeness completeness.Report `json:"completeness"`
}

type searchResponse struct {
	Query          string               `json:"query"`
	Companies      []models.Company     `json:"companies"`
	RelatedContent []models.ContentItem `json:"relatedContent"`
}

// toSearchResponse renders empty result sets as empty lists.
func toSearchResponse(res *controller.SearchResult) searchResponse {
	out := searchResponse{
		Query:          res.Query,
		Companies:      res.Companies,
		RelatedContent: res.RelatedContent,
	}
	if out.Companies == nil {
		out.Companies = []models.Company{}
	}
	if out.RelatedContent == nil {
		out.RelatedContent = []models.ContentItem{}
	}
	return out
}

type enrichResponse struct {
	Company *models.Company `json:"company"`
	Saved   *submitResponse `json:"saved,omitempty"`
}

type contentResponse struct {
	Content *models.ContentItem `json:"content"`
}

type enrichRequest struct {
	CompanyName string `json:"companyName"`
	Save        bool   `json:"save"`
}

type textRequest struct {
	Title     string `json:"title"`
	Text      string `json:"text"`
	CompanyID string `json:"companyId"`
}

// decodeStruct fills out from the JSON form of s.
func decodeStruct(s *structpb.Struct, out any) error {
	if s == nil {
		return errors.New("request body required")
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// encodeStruct converts v to a structpb.Struct via its JSON form.
func encodeStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

// structToCompany decodes a submitted company, accepting the type in any case.
func structToCompany(s *structpb.Struct) (*models.Company, error) {
	var company models.Company
	if err := decodeStruct(s, &company); err != nil {
		return nil, fmt.Errorf("invalid company: %w", err)
	}
	company.Type = normalizeCompanyType(company.Type)
	return &company, nil
}

func normalizeCompanyType(t models.CompanyType) models.CompanyType {
	return models.CompanyType(strings.ToUpper(strings.TrimSpace(string(t))))
}

func stringField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	return s.GetFields()[key].GetStringValue()
}

func parseID(s *structpb.Struct) (uuid.UUID, error) {
	id, err := uuid.Parse(stringField(s, "id"))
	if err != nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, "invalid id")
	}
	return id, nil
}

func toSubmitResponse(res *controller.SubmitResult) *submitResponse {
	if res == nil {
		return nil
	}
	return &submitResponse{
		Outcome:      res.Outcome,
		Company:      res.Company,
		Completeness: res.Completeness,
	}
}

// mapServiceError maps domain or repository errors to appropriate gRPC status codes.
func (h *CompanyHandler) mapServiceError(err error) error {
	switch {
	case errors.Is(err, e.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, e.ErrDuplicateComplete), errors.Is(err, e.ErrDuplicateEmail):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, e.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, e.ErrConflict):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, e.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		return status.Error(codes.Internal, "internal server error")
	}
}

func (h *CompanyHandler) respond(v any) (*structpb.Struct, error) {
	out, err := encodeStruct(v)
	if err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}
