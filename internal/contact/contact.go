package contact

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/WatchBeam/clock"
	"github.com/google/uuid"

	"github.com/trego/provider/internal/kv"
	"github.com/trego/provider/internal/validate"
)

var ErrNotFound = errors.New("contact not found")

type Kind string

const (
	KindIndividual Kind = "Individual"
	KindBusiness   Kind = "Business"
)

type Relationship string

const (
	RelationshipClient   Relationship = "Client"
	RelationshipSupplier Relationship = "Supplier"
	RelationshipPartner  Relationship = "Partner"
	RelationshipInternal Relationship = "Internal"
)

type Phone struct {
	ID          string `json:"id"`
	Label       string `json:"label"` // mobile, work, home
	Number      string `json:"number" validate:"required"`
	HasWhatsApp bool   `json:"hasWhatsApp,omitempty"`
}

type Email struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Email string `json:"email" validate:"required,email"`
}

type Address struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type Contact struct {
	ID           string       `json:"id"`
	Type         Kind         `json:"type" validate:"omitempty,oneof=Individual Business"`
	Name         string       `json:"name" validate:"required"`
	BusinessName string       `json:"businessName,omitempty"`
	Role         string       `json:"role,omitempty"`
	Phones       []Phone      `json:"phones" validate:"dive"`
	Emails       []Email      `json:"emails" validate:"dive"`
	Addresses    []Address    `json:"addresses"`
	Notes        string       `json:"notes"`
	Relationship Relationship `json:"relationship" validate:"omitempty,oneof=Client Supplier Partner Internal"`
	Tags         []string     `json:"tags"`
	NIF          string       `json:"nif,omitempty"`
	CreatedAt    *time.Time   `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time   `json:"updatedAt,omitempty"`
}

func (c *Contact) matches(q string) bool {
	for _, field := range append([]string{c.Name, c.BusinessName, c.NIF}, c.Tags...) {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Store keeps the address book as one JSON array under a fixed key.
type Store struct {
	mu    sync.Mutex
	kv    kv.Store
	clock clock.Clock
}

func NewStore(s kv.Store, c clock.Clock) *Store {
	if c == nil {
		c = clock.C
	}
	return &Store{kv: s, clock: c}
}

func (s *Store) load() ([]Contact, error) {
	var out []Contact
	if _, err := kv.GetJSON(s.kv, kv.KeyContacts, &out); err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	if out == nil {
		out = []Contact{}
	}
	return out, nil
}

func (s *Store) save(contacts []Contact) error {
	if err := kv.SetJSON(s.kv, kv.KeyContacts, contacts); err != nil {
		return fmt.Errorf("save contacts: %w", err)
	}
	return nil
}

// List returns contacts in stored order, filtered by a case-insensitive match
// on name, business name, NIF or tags when query is set.
func (s *Store) List(query string) ([]Contact, error) {
	contacts, err := s.load()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return contacts, nil
	}
	out := make([]Contact, 0, len(contacts))
	for i := range contacts {
		if contacts[i].matches(q) {
			out = append(out, contacts[i])
		}
	}
	return out, nil
}

func (s *Store) Get(id string) (*Contact, error) {
	contacts, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range contacts {
		if contacts[i].ID == id {
			return &contacts[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Save creates c, or replaces the contact with the same id. CreatedAt is
// kept from the stored copy; UpdatedAt is stamped on every save.
func (s *Store) Save(c *Contact) error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Type == "" {
		c.Type = KindIndividual
	}
	if c.Relationship == "" {
		c.Relationship = RelationshipClient
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.load()
	if err != nil {
		return err
	}
	now := s.clock.Now().UTC()
	c.UpdatedAt = &now
	for i := range contacts {
		if contacts[i].ID == c.ID {
			c.CreatedAt = contacts[i].CreatedAt
			contacts[i] = *c
			return s.save(contacts)
		}
	}
	c.CreatedAt = &now
	return s.save(append(contacts, *c))
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.load()
	if err != nil {
		return err
	}
	for i := range contacts {
		if contacts[i].ID == id {
			return s.save(append(contacts[:i], contacts[i+1:]...))
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
