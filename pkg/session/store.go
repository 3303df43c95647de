// Package session keeps the API token of the signed-in user.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-faster/errors"

	"github.com/iota-uz/staff-console/pkg/serrors"
)

var ErrNoSession = serrors.NewError("SESSION_NONE", "not signed in", "")

type Token struct {
	Value    string    `json:"token"`
	Email    string    `json:"email"`
	IssuedAt time.Time `json:"issued_at"`
}

func (t Token) Valid() bool {
	return t.Value != ""
}

type Store interface {
	Load() (Token, error)
	Save(Token) error
	Clear() error
}

// FileStore persists the token as a JSON file readable only by its owner.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (Token, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Token{}, ErrNoSession
	}
	if err != nil {
		return Token{}, errors.Wrap(err, "read session")
	}
	var t Token
	if err := json.Unmarshal(b, &t); err != nil {
		return Token{}, errors.Wrap(err, "decode session")
	}
	if !t.Valid() {
		return Token{}, ErrNoSession
	}
	return t, nil
}

func (s *FileStore) Save(t Token) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "create session dir")
	}
	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return errors.Wrap(err, "write session")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "replace session")
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "remove session")
	}
	return nil
}

type MemoryStore struct {
	mu    sync.Mutex
	token Token
}

func (s *MemoryStore) Load() (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.token.Valid() {
		return Token{}, ErrNoSession
	}
	return s.token, nil
}

func (s *MemoryStore) Save(t Token) error {
	s.mu.Lock()
	s.token = t
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	s.token = Token{}
	s.mu.Unlock()
	return nil
}
