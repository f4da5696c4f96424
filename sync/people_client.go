// ABOUTME: Google People API client for contacts sync
// ABOUTME: Creates the People service and adapts connection listing to ContactSource
package sync

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"
)

// NewPeopleClient creates a new Google People API client.
func NewPeopleClient(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*people.Service, error) {
	if client == nil {
		return nil, fmt.Errorf("http client cannot be nil")
	}

	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	service, err := people.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create People service: %w", err)
	}

	return service, nil
}

// PeopleSource lists the authenticated user's connections.
type PeopleSource struct {
	service *people.Service
}

// NewPeopleSource wraps a People service as a ContactSource.
func NewPeopleSource(service *people.Service) *PeopleSource {
	return &PeopleSource{service: service}
}

// ListContacts fetches one page of connections.
func (s *PeopleSource) ListContacts(ctx context.Context, req ContactPageRequest) (*ContactPage, error) {
	call := s.service.People.Connections.List("people/me").
		PageSize(req.PageSize).
		PersonFields(req.PersonFields).
		Context(ctx)

	if req.PageToken != "" {
		call = call.PageToken(req.PageToken)
	}

	response, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}

	return &ContactPage{
		People:        response.Connections,
		NextPageToken: response.NextPageToken,
	}, nil
}
