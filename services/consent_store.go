// services/consent_store.go
package services

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"telecare-backend/models"

	"gorm.io/gorm"
)

// ConsentStore answers "does this guardian still want reminder copies".
// Reads may race with reactor writes; implementations guarantee a read sees
// either the pre-write or post-write record, never a torn one.
type ConsentStore interface {
	// IsActive reports whether notifications are active for the phone.
	// A missing record defaults to active.
	IsActive(phone string) (bool, error)
	SetActive(phone string, active bool) error
}

// GormConsentStore keeps consent records in the consent_records table.
type GormConsentStore struct {
	db *gorm.DB
}

func NewGormConsentStore(db *gorm.DB) *GormConsentStore {
	return &GormConsentStore{db: db}
}

func (s *GormConsentStore) IsActive(phone string) (bool, error) {
	var record models.ConsentRecord
	err := s.db.Where("recipient_phone = ?", phone).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return true, err
	}
	return record.NotificationsActive, nil
}

func (s *GormConsentStore) SetActive(phone string, active bool) error {
	var record models.ConsentRecord
	err := s.db.Where("recipient_phone = ?", phone).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record = models.ConsentRecord{
			RecipientPhone:      phone,
			NotificationsActive: active,
		}
		return s.db.Create(&record).Error
	}
	if err != nil {
		return err
	}
	record.NotificationsActive = active
	return s.db.Save(&record).Error
}

// fileConsentEntry matches the legacy pacientes.json record layout.
type fileConsentEntry struct {
	Telefone         string `json:"telefone,omitempty"`
	Responsavel      string `json:"responsavel"`
	ResponsavelAtivo *bool  `json:"responsavel_ativo,omitempty"`
}

// FileConsentStore is the whole-file JSON variant: the file is read fully on
// every lookup and rewritten fully on every mutation (temp file + rename, so
// a concurrent reader never sees a partial write).
type FileConsentStore struct {
	path string
	mu   sync.Mutex
}

func NewFileConsentStore(path string) *FileConsentStore {
	return &FileConsentStore{path: path}
}

func (s *FileConsentStore) load() ([]fileConsentEntry, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []fileConsentEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *FileConsentStore) save(entries []fileConsentEntry) error {
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".consent-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *FileConsentStore) IsActive(phone string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return true, err
	}
	for _, e := range entries {
		if e.Responsavel == phone {
			if e.ResponsavelAtivo == nil {
				return true, nil
			}
			return *e.ResponsavelAtivo, nil
		}
	}
	return true, nil
}

func (s *FileConsentStore) SetActive(phone string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	found := false
	for i := range entries {
		if entries[i].Responsavel == phone {
			entries[i].ResponsavelAtivo = &active
			found = true
		}
	}
	if !found {
		entries = append(entries, fileConsentEntry{
			Responsavel:      phone,
			ResponsavelAtivo: &active,
		})
	}

	return s.save(entries)
}

// MemoryConsentStore is the in-process variant used by tests.
type MemoryConsentStore struct {
	mu      sync.RWMutex
	records map[string]bool
}

func NewMemoryConsentStore() *MemoryConsentStore {
	return &MemoryConsentStore{records: make(map[string]bool)}
}

func (s *MemoryConsentStore) IsActive(phone string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	active, ok := s.records[phone]
	if !ok {
		return true, nil
	}
	return active, nil
}

func (s *MemoryConsentStore) SetActive(phone string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[phone] = active
	return nil
}
