package lending

import (
	"context"
	"strings"

	"Gin_postgres_redis_av_lending/db"
	"Gin_postgres_redis_av_lending/models"
)

type PersonInput struct {
	FirstName      string            `json:"firstName" validate:"required,max=100"`
	LastName       string            `json:"lastName" validate:"required,max=100"`
	Identification string            `json:"identification" validate:"required,max=20"`
	Email          string            `json:"email" validate:"omitempty,email,max=100"`
	Phone          string            `json:"phone" validate:"omitempty,max=20"`
	Role           models.PersonRole `json:"role" validate:"required,oneof=student faculty staff"`
}

func (in PersonInput) normalized() PersonInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Identification = strings.TrimSpace(in.Identification)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	return in
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ValidatePerson rejects a duplicate identification number or email before
// any write. excludeID is the id of the person being edited, or "".
func (s *Service) ValidatePerson(ctx context.Context, in PersonInput, excludeID string) error {
	if err := validateInput(in); err != nil {
		return err
	}
	ve := &ValidationError{Fields: map[string]string{}}
	taken, err := s.repo.IdentificationTaken(ctx, in.Identification, excludeID)
	if err != nil {
		return err
	}
	if taken {
		ve.Fields["identification"] = "identification already registered"
	}
	if in.Email != "" {
		taken, err := s.repo.PersonEmailTaken(ctx, in.Email, excludeID)
		if err != nil {
			return err
		}
		if taken {
			ve.Fields["email"] = msgEmailTaken
		}
	}
	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

func personUniqueError(err error) error {
	col, dup := db.IsUniqueViolation(err)
	if !dup {
		return err
	}
	if col == "email" {
		return fieldError("email", msgEmailTaken)
	}
	return fieldError("identification", "identification already registered")
}

func (s *Service) CreatePerson(ctx context.Context, p Principal, in PersonInput) (*models.Person, error) {
	if err := p.requireUser(); err != nil {
		return nil, err
	}
	in = in.normalized()
	if err := s.ValidatePerson(ctx, in, ""); err != nil {
		return nil, err
	}
	person := &models.Person{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Identification: in.Identification,
		Email:          optional(in.Email),
		Phone:          optional(in.Phone),
		Role:           in.Role,
	}
	if err := s.repo.CreatePerson(ctx, person); err != nil {
		return nil, personUniqueError(err)
	}
	return person, nil
}

func (s *Service) UpdatePerson(ctx context.Context, p Principal, id string, in PersonInput) (*models.Person, error) {
	if err := p.requireUser(); err != nil {
		return nil, err
	}
	person, err := s.repo.FindPersonByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	in = in.normalized()
	if err := s.ValidatePerson(ctx, in, id); err != nil {
		return nil, err
	}
	person.FirstName = in.FirstName
	person.LastName = in.LastName
	person.Identification = in.Identification
	person.Email = optional(in.Email)
	person.Phone = optional(in.Phone)
	person.Role = in.Role
	if err := s.repo.UpdatePerson(ctx, person); err != nil {
		return nil, personUniqueError(err)
	}
	return person, nil
}

func (s *Service) GetPerson(ctx context.Context, p Principal, id string) (*models.Person, error) {
	if err := p.requireUser(); err != nil {
		return nil, err
	}
	person, err := s.repo.FindPersonByID(ctx, id)
	return person, notFound(err)
}

func (s *Service) ListPersons(ctx context.Context, p Principal, q string) ([]models.Person, error) {
	if err := p.requireUser(); err != nil {
		return nil, err
	}
	return s.repo.ListPersons(ctx, q)
}

func (s *Service) DeletePerson(ctx context.Context, p Principal, id string) error {
	if err := p.requireAdmin(); err != nil {
		return err
	}
	return notFound(s.repo.DeletePerson(ctx, id, p.UserID))
}
