// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

// Package rbac gates retrieval results by role. Users carry roles,
// passages carry access_roles metadata, and a hit survives filtering
// only when the two overlap or the passage is public.
package rbac

import (
	"context"
	"log/slog"
	"sort"

	"github.com/cleardesk-hq/cleardesk/internal/retrieve"
	"github.com/cleardesk-hq/cleardesk/internal/vectorstore"
)

// AllStaffRole grants access to every authenticated user when present
// in a passage's access roles.
const AllStaffRole = "all_staff"

// RolesField is the metadata key carrying a passage's access roles.
const RolesField = "access_roles"

// fetchMultiplier over-fetches raw hits before filtering, since RBAC is
// expected to drop some fraction and naive topK-then-filter under-fills.
const fetchMultiplier = 3

// User is an authenticated caller.
type User struct {
	ID          string
	DisplayName string
	Roles       []string
	Department  string
}

// HasRole reports whether the user holds the role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the user holds at least one of the roles.
func (u User) HasAnyRole(roles []string) bool {
	for _, r := range roles {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}

// Service answers access questions.
type Service struct {
	publicRoles []string
	logger      *slog.Logger
}

// NewService creates a service. Empty publicRoles defaults to
// {all_staff}; a nil logger falls back to slog.Default.
func NewService(publicRoles []string, logger *slog.Logger) *Service {
	if len(publicRoles) == 0 {
		publicRoles = []string{AllStaffRole}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{publicRoles: publicRoles, logger: logger}
}

// CanAccess grants access when the document role set is empty (public),
// contains a configured public role, or overlaps the user's roles.
func (s *Service) CanAccess(user User, documentRoles []string) bool {
	if len(documentRoles) == 0 {
		return true
	}
	for _, public := range s.publicRoles {
		for _, dr := range documentRoles {
			if dr == public {
				return true
			}
		}
	}
	return user.HasAnyRole(documentRoles)
}

// FilterResults keeps only hits the user may access. A hit whose
// metadata lacks a valid access_roles entry is denied, not treated as
// public.
func (s *Service) FilterResults(user User, hits []vectorstore.Hit) []vectorstore.Hit {
	filtered := make([]vectorstore.Hit, 0, len(hits))
	for _, hit := range hits {
		roles, ok := documentRoles(hit.Metadata)
		if !ok {
			s.logger.Warn("hit missing access roles, denying", "passage_id", hit.ID)
			continue
		}
		if s.CanAccess(user, roles) {
			filtered = append(filtered, hit)
		}
	}

	s.logger.Debug("filtered results",
		"user", user.ID,
		"raw", len(hits),
		"kept", len(filtered),
	)
	return filtered
}

// roleDepartments maps role names to the department they unlock.
var roleDepartments = map[string]string{
	"hr":          "HR",
	"it":          "IT",
	"finance":     "Finance",
	"engineering": "Engineering",
}

// AccessibleDepartments lists the departments a user may query: their
// own plus any unlocked by their roles. An admin gets the wildcard "*".
func (s *Service) AccessibleDepartments(user User) []string {
	set := map[string]struct{}{}
	if user.Department != "" {
		set[user.Department] = struct{}{}
	}
	for _, role := range user.Roles {
		if role == "admin" {
			return []string{"*"}
		}
		if dept, ok := roleDepartments[role]; ok {
			set[dept] = struct{}{}
		}
	}

	departments := make([]string, 0, len(set))
	for d := range set {
		departments = append(departments, d)
	}
	sort.Strings(departments)
	return departments
}

// documentRoles extracts the access role list from passage metadata.
// The second return is false when the field is missing or not a list;
// JSON decoding yields []any, direct construction []string.
func documentRoles(metadata map[string]any) ([]string, bool) {
	value, ok := metadata[RolesField]
	if !ok {
		return nil, false
	}

	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		roles := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				roles = append(roles, s)
			}
		}
		return roles, true
	default:
		return nil, false
	}
}

// Retriever is the slice of the retrieval API the middleware wraps.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int, filters map[string]any) (*retrieve.Result, error)
}

// Middleware filters retrieval results for a user.
type Middleware struct {
	retriever Retriever
	service   *Service
}

// NewMiddleware wraps a retriever. A nil service gets the defaults.
func NewMiddleware(retriever Retriever, service *Service) *Middleware {
	if service == nil {
		service = NewService(nil, nil)
	}
	return &Middleware{retriever: retriever, service: service}
}

// RetrieveAsUser over-fetches topK*3 raw hits, filters them for the
// user, and truncates back to topK.
func (m *Middleware) RetrieveAsUser(ctx context.Context, query string, user User, topK int, filters map[string]any) (*retrieve.Result, error) {
	if topK <= 0 {
		topK = retrieve.DefaultTopK
	}

	raw, err := m.retriever.Retrieve(ctx, query, topK*fetchMultiplier, filters)
	if err != nil {
		return nil, err
	}

	hits := m.service.FilterResults(user, raw.Hits)
	if len(hits) > topK {
		hits = hits[:topK]
	}

	return &retrieve.Result{
		Query:          raw.Query,
		Hits:           hits,
		TotalResults:   len(hits),
		FiltersApplied: raw.FiltersApplied,
	}, nil
}
