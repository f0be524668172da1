// Package credstore keeps provider secrets encrypted at rest with
// nacl/secretbox. The whole record set is sealed as one blob; decrypted
// material lives only for the duration of a single call.
package credstore

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
)

const (
	keyFile  = "credstore.key"
	dataFile = "credstore.bin"
)

type Store struct {
	mu  sync.Mutex
	dir string
	key [32]byte
}

var _ ports.CredentialStore = (*Store)(nil)

// Open loads or creates the key material under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("make credstore dir: %w", err)
	}
	s := &Store{dir: dir}
	keyPath := filepath.Join(dir, keyFile)
	raw, err := os.ReadFile(keyPath)
	switch {
	case err == nil:
		if len(raw) != 32 {
			return nil, fmt.Errorf("credstore key has %d bytes, want 32", len(raw))
		}
		copy(s.key[:], raw)
	case errors.Is(err, os.ErrNotExist):
		if _, err := rand.Read(s.key[:]); err != nil {
			return nil, fmt.Errorf("generate credstore key: %w", err)
		}
		if err := os.WriteFile(keyPath, s.key[:], 0o600); err != nil {
			return nil, fmt.Errorf("write credstore key: %w", err)
		}
	default:
		return nil, fmt.Errorf("read credstore key: %w", err)
	}
	return s, nil
}

func (s *Store) Has(engine domain.EngineType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return false
	}
	_, ok := records[engine]
	return ok
}

func (s *Store) Get(engine domain.EngineType) (*domain.StoredCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return nil, err
	}
	creds, ok := records[engine]
	if !ok {
		return nil, nil
	}
	return &creds, nil
}

func (s *Store) Put(engine domain.EngineType, creds domain.StoredCredentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return err
	}
	records[engine] = creds
	return s.save(records)
}

func (s *Store) Delete(engine domain.EngineType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return err
	}
	delete(records, engine)
	return s.save(records)
}

func (s *Store) load() (map[domain.EngineType]domain.StoredCredentials, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, dataFile))
	if errors.Is(err, os.ErrNotExist) {
		return map[domain.EngineType]domain.StoredCredentials{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credstore: %w", err)
	}
	if len(raw) < 24 {
		return nil, errors.New("credstore file truncated")
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plain, ok := secretbox.Open(nil, raw[24:], &nonce, &s.key)
	if !ok {
		return nil, errors.New("credstore decryption failed")
	}
	var records map[domain.EngineType]domain.StoredCredentials
	if err := json.Unmarshal(plain, &records); err != nil {
		return nil, fmt.Errorf("decode credstore: %w", err)
	}
	return records, nil
}

func (s *Store) save(records map[domain.EngineType]domain.StoredCredentials) error {
	plain, err := json.Marshal(records)
	if err != nil {
		return err
	}
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], plain, &nonce, &s.key)
	if err := os.WriteFile(filepath.Join(s.dir, dataFile), sealed, 0o600); err != nil {
		return fmt.Errorf("write credstore: %w", err)
	}
	return nil
}
