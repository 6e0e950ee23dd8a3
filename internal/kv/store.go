package kv

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when a key has never been set.
var ErrNotFound = errors.New("key not found")

// Storage keys used throughout the app.
const (
	KeyProviderProfile      = "trego-provider-profile"
	KeyJobs                 = "trego-provider-jobs"
	KeyContacts             = "trego-provider-contacts"
	KeyInvoices             = "trego-provider-invoices"
	KeyExpenses             = "trego-provider-expenses"
	KeyOrbColor             = "trego-provider-orb-color"
	KeyOnboardingComplete   = "trego-provider-onboarding-complete"
	KeyNotificationsEnabled = "notifications-enabled"
)

// Store is a flat key-value store. Each call is all-or-nothing.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendBadger = "badger"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// Open returns the store for the named backend rooted at dataDir.
func Open(backend, dataDir string) (Store, error) {
	switch backend {
	case BackendBadger, "":
		return NewBadgerStore(dataDir)
	case BackendBolt:
		return NewBoltStore(dataDir)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}

// GetJSON decodes the value under key into v. It reports false when the key is absent.
func GetJSON(s Store, key string, v any) (bool, error) {
	data, err := s.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key, replacing any prior value.
func SetJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.Set(key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
