package services

import (
	"context"
	"net/url"

	"github.com/yigit/skillmart/internal/app/models/dto"
	"github.com/yigit/skillmart/internal/pkg/listquery"
)

// RegistrationService serves the admin instructor application table
type RegistrationService struct {
	api RegistrationAPI
}

// NewRegistrationService creates a new registration service instance
func NewRegistrationService(api RegistrationAPI) *RegistrationService {
	return &RegistrationService{api: api}
}

// List returns one page of applications. The table is not cached so that decisions show up
// immediately.
func (s *RegistrationService) List(ctx context.Context, raw url.Values) (*dto.PaginatedResponse, error) {
	q := listquery.Registrations.Parse(raw)
	page, err := s.api.ListRegistrations(ctx, q.Values())
	if err != nil {
		return nil, err
	}
	return paginated(q, page.Items, page.TotalItems), nil
}

// ChangeQuery applies toolbar changes to the current table query string
func (s *RegistrationService) ChangeQuery(current string, changes map[string]string) dto.QueryChangeResponse {
	return dto.QueryChangeResponse{Query: listquery.Registrations.ParseString(current).Apply(changes).Encode()}
}
