package prospect

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
)

// Service implements prospect list business logic. All operations are
// admin-only; the API layer enforces that before calls reach here.
type Service struct {
	repo Repository
}

// NewService creates a prospect service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetList returns a single list.
func (s *Service) GetList(ctx context.Context, id uuid.UUID) (*domain.ProspectList, error) {
	return s.repo.GetList(ctx, id)
}

// ListLists returns all prospect lists.
func (s *Service) ListLists(ctx context.Context) ([]domain.ProspectList, error) {
	return s.repo.ListLists(ctx)
}

// ListInput holds the fields for creating a prospect list.
type ListInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// CreateList persists a new prospect list.
func (s *Service) CreateList(ctx context.Context, createdBy uuid.UUID, input ListInput) (*domain.ProspectList, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	l := &domain.ProspectList{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Source:      input.Source,
		CreatedBy:   createdBy,
	}
	if err := s.repo.CreateList(ctx, l); err != nil {
		return nil, err
	}
	return s.repo.GetList(ctx, l.ID)
}

// UpdateListInput holds the mutable list fields.
type UpdateListInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Source      *string `json:"source"`
}

// UpdateList modifies list metadata.
func (s *Service) UpdateList(ctx context.Context, id uuid.UUID, input UpdateListInput) (*domain.ProspectList, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if err := s.repo.UpdateList(ctx, id, input.Name, input.Description, input.Source); err != nil {
		return nil, err
	}
	return s.repo.GetList(ctx, id)
}

// DeleteList removes a list and all its contacts.
func (s *Service) DeleteList(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteList(ctx, id)
}

// ListContacts returns a page of contacts for the list.
func (s *Service) ListContacts(ctx context.Context, listID uuid.UUID, limit, offset int) ([]domain.ProspectContact, int, error) {
	if _, err := s.repo.GetList(ctx, listID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListContacts(ctx, listID, limit, offset)
}

// ContactInput holds the fields for adding a contact to a list.
type ContactInput struct {
	Email        string          `json:"email"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Company      string          `json:"company"`
	Title        string          `json:"title"`
	CustomFields json.RawMessage `json:"custom_fields"`
}

// AddContact validates and inserts a single contact.
func (s *Service) AddContact(ctx context.Context, listID uuid.UUID, input ContactInput) (*domain.ProspectContact, error) {
	if _, err := s.repo.GetList(ctx, listID); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !domain.ValidateEmail(email) {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(input.CustomFields) > 0 && !json.Valid(input.CustomFields) {
		return nil, fmt.Errorf("%w: custom_fields must be a JSON object", ErrInvalidInput)
	}

	c := &domain.ProspectContact{
		ID:           uuid.New(),
		ListID:       listID,
		Email:        email,
		EmailHash:    domain.HashEmail(email),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Company:      strings.TrimSpace(input.Company),
		Title:        strings.TrimSpace(input.Title),
		CustomFields: input.CustomFields,
		Status:       domain.ContactActive,
	}
	if err := s.repo.CreateContact(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.GetContact(ctx, listID, c.ID)
}

// ActiveContacts returns every active contact in the list.
func (s *Service) ActiveContacts(ctx context.Context, listID uuid.UUID) ([]domain.ProspectContact, error) {
	if _, err := s.repo.GetList(ctx, listID); err != nil {
		return nil, err
	}
	return s.repo.ActiveContacts(ctx, listID)
}

// RemoveContact deletes a contact from a list.
func (s *Service) RemoveContact(ctx context.Context, listID, contactID uuid.UUID) error {
	if _, err := s.repo.GetList(ctx, listID); err != nil {
		return err
	}
	return s.repo.DeleteContact(ctx, listID, contactID)
}

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportCSV reads a CSV with a header row (email required, first_name,
// last_name, company, title recognized, remaining columns stored as custom
// fields) and inserts contacts, deduplicating on email hash against both
// the existing list and the file itself. Row-level problems are reported,
// not fatal.
func (s *Service) ImportCSV(ctx context.Context, listID uuid.UUID, r io.Reader) (*ImportResult, error) {
	if _, err := s.repo.GetList(ctx, listID); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header row", ErrBadCSV)
	}
	cols := make([]string, len(header))
	emailIdx := -1
	for i, h := range header {
		cols[i] = strings.ToLower(strings.TrimSpace(h))
		if cols[i] == "email" {
			emailIdx = i
		}
	}
	if emailIdx < 0 {
		return nil, fmt.Errorf("%w: no email column", ErrBadCSV)
	}

	result := &ImportResult{}
	seen := make(map[string]bool)
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			result.Skipped++
			continue
		}

		email := strings.ToLower(strings.TrimSpace(record[emailIdx]))
		if !domain.ValidateEmail(email) {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: invalid email %q", line, email))
			result.Skipped++
			continue
		}

		hash := domain.HashEmail(email)
		if seen[hash] {
			result.Skipped++
			continue
		}
		seen[hash] = true

		c := &domain.ProspectContact{
			ID:        uuid.New(),
			ListID:    listID,
			Email:     email,
			EmailHash: hash,
			Status:    domain.ContactActive,
		}
		custom := make(map[string]string)
		for i, col := range cols {
			if i >= len(record) || i == emailIdx {
				continue
			}
			val := strings.TrimSpace(record[i])
			switch col {
			case "first_name":
				c.FirstName = val
			case "last_name":
				c.LastName = val
			case "company":
				c.Company = val
			case "title":
				c.Title = val
			default:
				if val != "" {
					custom[col] = val
				}
			}
		}
		if len(custom) > 0 {
			raw, err := json.Marshal(custom)
			if err == nil {
				c.CustomFields = raw
			}
		}

		if err := s.repo.CreateContact(ctx, c); err != nil {
			if errors.Is(err, ErrDuplicateContact) {
				result.Skipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			result.Skipped++
			continue
		}
		result.Imported++
	}

	log.Printf("[prospect.Service] list %s: imported %d, skipped %d", listID, result.Imported, result.Skipped)
	return result, nil
}

// RenderContext flattens a contact into the template render context:
// standard fields first, custom fields layered on top (custom wins).
func RenderContext(c *domain.ProspectContact) map[string]interface{} {
	ctx := map[string]interface{}{
		"email":      c.Email,
		"first_name": c.FirstName,
		"last_name":  c.LastName,
		"company":    c.Company,
		"title":      c.Title,
	}
	if len(c.CustomFields) > 0 {
		var custom map[string]interface{}
		if err := json.Unmarshal(c.CustomFields, &custom); err == nil {
			for k, v := range custom {
				ctx[k] = v
			}
		}
	}
	return ctx
}
