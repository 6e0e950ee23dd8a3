package profile

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/trego/provider/internal/kv"
	"github.com/trego/provider/internal/validate"
)

const DefaultOrbColor = "#1E6FF7"

type PersonalityMode string

const (
	PersonalityPrecision     PersonalityMode = "precision"
	PersonalityEncouragement PersonalityMode = "encouragement"
	PersonalityHustler       PersonalityMode = "hustler"
	PersonalityQuiet         PersonalityMode = "quiet"
)

type BaseLocation struct {
	ID            string  `json:"id" yaml:"id"`
	Nickname      string  `json:"nickname,omitempty" yaml:"nickname"`
	Address       string  `json:"address" yaml:"address"`
	City          string  `json:"city,omitempty" yaml:"city"`
	ZipCode       string  `json:"zipCode,omitempty" yaml:"zipCode"`
	Lat           float64 `json:"lat,omitempty" yaml:"lat"`
	Lng           float64 `json:"lng,omitempty" yaml:"lng"`
	ServiceRadius float64 `json:"serviceRadius,omitempty" yaml:"serviceRadius"`
}

type WorkingHours struct {
	Start string `json:"start" validate:"omitempty,datetime=15:04"`
	End   string `json:"end" validate:"omitempty,datetime=15:04"`
}

func (w *WorkingHours) set() bool {
	return w != nil && w.Start != "" && w.End != ""
}

type Profile struct {
	FirstName       string          `json:"firstName" validate:"required"`
	LastName        string          `json:"lastName,omitempty"`
	AssistantName   string          `json:"assistantName,omitempty"`
	OrbColor        string          `json:"orbColor,omitempty" validate:"omitempty,hexcolor"`
	OrbPattern      string          `json:"orbPattern,omitempty" validate:"omitempty,oneof=solid breathing pulsing rotating"`
	PersonalityMode PersonalityMode `json:"personalityMode,omitempty" validate:"omitempty,oneof=precision encouragement hustler quiet"`
	ProfilePhoto    string          `json:"profilePhoto,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	EmailVerified   bool            `json:"emailVerified,omitempty"`
	Services        []string        `json:"services,omitempty"`
	CoverageRadius  float64         `json:"coverageRadius,omitempty" validate:"gte=0"`
	WorkingHours    *WorkingHours   `json:"workingHours,omitempty"`
	DaysOff         []string        `json:"daysOff,omitempty"`
	BaseLocations   []BaseLocation  `json:"baseLocations,omitempty"`
	VatNIF          string          `json:"vatNif,omitempty"`

	CalendarConnected bool `json:"calendarConnected,omitempty"`
}

// Completion returns the share of the eight onboarding items that are filled
// in, as a whole percentage.
func (p *Profile) Completion() int {
	if p == nil {
		return 0
	}
	checks := []bool{
		p.ProfilePhoto != "",
		p.FirstName != "" && p.LastName != "",
		p.Phone != "",
		p.EmailVerified,
		p.VatNIF != "",
		len(p.BaseLocations) > 0,
		p.WorkingHours.set(),
		len(p.DaysOff) > 0,
	}
	done := 0
	for _, ok := range checks {
		if ok {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(checks)) * 100))
}

type Settings struct {
	OrbColor             string `json:"orbColor" validate:"required,hexcolor"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	OnboardingComplete   bool   `json:"onboardingComplete"`
}

// Store reads through to the key-value store on every call; nothing is cached.
type Store struct {
	mu sync.Mutex
	kv kv.Store
}

func NewStore(s kv.Store) *Store {
	return &Store{kv: s}
}

// Profile returns the saved profile, or nil when onboarding never stored one.
func (s *Store) Profile() (*Profile, error) {
	var p Profile
	found, err := kv.GetJSON(s.kv, kv.KeyProviderProfile, &p)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) SaveProfile(p *Profile) error {
	if p == nil {
		return errors.New("save profile: nil profile")
	}
	if err := validate.Struct(p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := kv.SetJSON(s.kv, kv.KeyProviderProfile, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if p.OrbColor != "" {
		if err := kv.SetJSON(s.kv, kv.KeyOrbColor, p.OrbColor); err != nil {
			return fmt.Errorf("save orb color: %w", err)
		}
	}
	return nil
}

// Settings assembles the app settings from their individual keys, applying
// defaults for keys that were never written.
func (s *Store) Settings() (Settings, error) {
	out := Settings{OrbColor: DefaultOrbColor, NotificationsEnabled: true}

	if _, err := kv.GetJSON(s.kv, kv.KeyOrbColor, &out.OrbColor); err != nil {
		return Settings{}, fmt.Errorf("get orb color: %w", err)
	}
	if _, err := kv.GetJSON(s.kv, kv.KeyNotificationsEnabled, &out.NotificationsEnabled); err != nil {
		return Settings{}, fmt.Errorf("get notifications setting: %w", err)
	}
	if _, err := kv.GetJSON(s.kv, kv.KeyOnboardingComplete, &out.OnboardingComplete); err != nil {
		return Settings{}, fmt.Errorf("get onboarding flag: %w", err)
	}
	return out, nil
}

func (s *Store) SaveSettings(in Settings) error {
	if err := validate.Struct(&in); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	writes := []struct {
		key string
		val any
	}{
		{kv.KeyOrbColor, in.OrbColor},
		{kv.KeyNotificationsEnabled, in.NotificationsEnabled},
		{kv.KeyOnboardingComplete, in.OnboardingComplete},
	}
	for _, w := range writes {
		if err := kv.SetJSON(s.kv, w.key, w.val); err != nil {
			return fmt.Errorf("save %s: %w", w.key, err)
		}
	}
	return nil
}
