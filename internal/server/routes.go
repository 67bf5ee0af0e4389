// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cleardesk-hq/cleardesk/internal/ingest"
	"github.com/cleardesk-hq/cleardesk/internal/rbac"
	"github.com/cleardesk-hq/cleardesk/internal/retrieve"
	"github.com/cleardesk-hq/cleardesk/internal/vectorstore"
	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
)

// Services are the domain dependencies behind the REST routes.
type Services struct {
	Pipeline  *ingest.Pipeline
	Retriever *retrieve.Retriever
	Guard     *rbac.Middleware
}

// RegisterServices sets the service dependencies and registers REST
// routes.
func (s *Server) RegisterServices(svc *Services) {
	s.services = svc
	s.registerRoutes()
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "ingest-document",
		Method:      http.MethodPost,
		Path:        "/api/v1/documents",
		Summary:     "Ingest a document",
		Description: "Parses, PII-masks, chunks, and indexes a text document.",
		Tags:        []string{"documents"},
	}, s.handleIngestDocument)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-document",
		Method:      http.MethodDelete,
		Path:        "/api/v1/documents/{id}",
		Summary:     "Delete a document",
		Description: "Removes every indexed passage of the document.",
		Tags:        []string{"documents"},
	}, s.handleDeleteDocument)

	huma.Register(s.api, huma.Operation{
		OperationID: "query",
		Method:      http.MethodPost,
		Path:        "/api/v1/query",
		Summary:     "Query indexed documents",
		Description: "Semantic search with role-based result filtering.",
		Tags:        []string{"retrieval"},
	}, s.handleQuery)

	huma.Register(s.api, huma.Operation{
		OperationID: "stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Index statistics",
		Tags:        []string{"system"},
	}, s.handleStats)
}

// IngestDocumentRequest is the ingest operation input.
type IngestDocumentRequest struct {
	Body struct {
		Filename    string   `json:"filename" minLength:"1" doc:"Filename including extension (.txt or .md)"`
		Content     string   `json:"content" minLength:"1" doc:"Document text content"`
		UploadedBy  string   `json:"uploaded_by,omitempty" doc:"Uploader identifier"`
		Department  string   `json:"department,omitempty" doc:"Owning department"`
		AccessRoles []string `json:"access_roles,omitempty" doc:"Roles allowed to read; empty means public"`
	}
}

// IngestDocumentResponse reports the indexed document.
type IngestDocumentResponse struct {
	Body struct {
		Document      ingest.DocumentMetadata `json:"document"`
		ChunksIndexed int                     `json:"chunks_indexed"`
	}
}

func (s *Server) handleIngestDocument(ctx context.Context, input *IngestDocumentRequest) (*IngestDocumentResponse, error) {
	doc, err := s.services.Pipeline.Ingest([]byte(input.Body.Content), input.Body.Filename, ingest.Options{
		UploadedBy:  input.Body.UploadedBy,
		Department:  input.Body.Department,
		AccessRoles: input.Body.AccessRoles,
	})
	if err != nil {
		return nil, humaError(err)
	}

	indexed, err := s.services.Retriever.IndexChunks(ctx, doc.Chunks, doc.Metadata.DocumentID)
	if err != nil {
		return nil, humaError(err)
	}

	resp := &IngestDocumentResponse{}
	resp.Body.Document = doc.Metadata
	resp.Body.ChunksIndexed = indexed
	return resp, nil
}

// DeleteDocumentRequest identifies the document to remove.
type DeleteDocumentRequest struct {
	ID string `path:"id" doc:"Document ID"`
}

// DeleteDocumentResponse reports how many passages were removed.
type DeleteDocumentResponse struct {
	Body struct {
		DocumentID      string `json:"document_id"`
		PassagesDeleted int    `json:"passages_deleted"`
	}
}

func (s *Server) handleDeleteDocument(ctx context.Context, input *DeleteDocumentRequest) (*DeleteDocumentResponse, error) {
	deleted, err := s.services.Retriever.DeleteDocument(ctx, input.ID)
	if err != nil {
		return nil, humaError(err)
	}
	if deleted == 0 {
		return nil, huma.Error404NotFound("document " + input.ID + " not found")
	}

	resp := &DeleteDocumentResponse{}
	resp.Body.DocumentID = input.ID
	resp.Body.PassagesDeleted = deleted
	return resp, nil
}

// QueryUser identifies the caller for RBAC filtering.
type QueryUser struct {
	ID          string   `json:"id,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Department  string   `json:"department,omitempty"`
}

// QueryRequest is the retrieval operation input.
type QueryRequest struct {
	Body struct {
		Query      string     `json:"query" minLength:"1" doc:"Search query"`
		TopK       int        `json:"top_k,omitempty" minimum:"0" maximum:"100" doc:"Results to return; 0 uses the configured default"`
		Department string     `json:"department,omitempty" doc:"Restrict to one department"`
		User       *QueryUser `json:"user,omitempty" doc:"Caller identity; an absent user sees only public documents"`
	}
}

// QueryHit is one scored passage in a query response.
type QueryHit struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// QueryResponse is the retrieval operation output.
type QueryResponse struct {
	Body struct {
		Query        string     `json:"query"`
		Hits         []QueryHit `json:"hits"`
		TotalResults int        `json:"total_results"`
	}
}

func (s *Server) handleQuery(ctx context.Context, input *QueryRequest) (*QueryResponse, error) {
	var filters map[string]any
	if input.Body.Department != "" {
		filters = map[string]any{"department": input.Body.Department}
	}

	var user rbac.User
	if u := input.Body.User; u != nil {
		user = rbac.User{ID: u.ID, DisplayName: u.DisplayName, Roles: u.Roles, Department: u.Department}
	}

	result, err := s.services.Guard.RetrieveAsUser(ctx, input.Body.Query, user, input.Body.TopK, filters)
	if err != nil {
		return nil, humaError(err)
	}

	resp := &QueryResponse{}
	resp.Body.Query = result.Query
	resp.Body.Hits = toQueryHits(result.Hits)
	resp.Body.TotalResults = result.TotalResults
	return resp, nil
}

// StatsResponse reports index state and retrieval configuration.
type StatsResponse struct {
	Body retrieve.Stats
}

func (s *Server) handleStats(ctx context.Context, _ *struct{}) (*StatsResponse, error) {
	stats, err := s.services.Retriever.Stats(ctx)
	if err != nil {
		return nil, humaError(err)
	}
	return &StatsResponse{Body: stats}, nil
}

func toQueryHits(hits []vectorstore.Hit) []QueryHit {
	out := make([]QueryHit, len(hits))
	for i, h := range hits {
		out[i] = QueryHit{ID: h.ID, Text: h.Text, Score: h.Score, Metadata: h.Metadata}
	}
	return out
}

// humaError converts a domain error to the matching huma status error.
func humaError(err error) error {
	switch cderr.HTTPStatus(err) {
	case http.StatusBadRequest:
		return huma.Error400BadRequest(err.Error())
	case http.StatusNotFound:
		return huma.Error404NotFound(err.Error())
	case http.StatusBadGateway:
		return huma.Error502BadGateway(err.Error())
	default:
		return huma.Error500InternalServerError("internal error", err)
	}
}
