package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/hrkeeper/internal/client/client"
	"github.com/dmitrijs2005/hrkeeper/internal/filex"
)

const sessionDirName = "hrkeeper"

// sessionStore keeps the session token between invocations. An empty path
// resolves to "session" in the per-user hrkeeper directory.
type sessionStore struct {
	path string
}

func newSessionStore(path string) *sessionStore {
	return &sessionStore{path: path}
}

func (s *sessionStore) resolve() (string, error) {
	if s.path != "" {
		return s.path, nil
	}
	dir, err := filex.UserDir(sessionDirName)
	if err != nil {
		return "", err
	}
	s.path = filepath.Join(dir, "session")
	return s.path, nil
}

// Load returns client.ErrNotLoggedIn when no session has been saved.
func (s *sessionStore) Load() (string, error) {
	path, err := s.resolve()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w, run hrctl login", client.ErrNotLoggedIn)
	}
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", fmt.Errorf("%w, run hrctl login", client.ErrNotLoggedIn)
	}
	return token, nil
}

func (s *sessionStore) Save(token string) error {
	path, err := s.resolve()
	if err != nil {
		return err
	}
	if _, err := filex.EnsureDir(filepath.Dir(path), ""); err != nil {
		return err
	}
	return filex.WritePrivate(path, []byte(token+"\n"))
}

func (s *sessionStore) Clear() error {
	path, err := s.resolve()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
