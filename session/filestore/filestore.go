// Package filestore persists the token record as three files in a session
// directory, one per key, shared by every process of the same user. It is the
// durable store behind the session manager; cross-process change notification
// comes from Watch.
package filestore

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/sarusarang/crm-extexhnology/session"
)

// File names inside the session directory, matching the storage keys the
// managers agree on.
const (
	tokenFile    = "token"
	nameFile     = "name"
	userTypeFile = "user_type"
)

// Store is a file-backed session.Store rooted at a directory.
type Store struct {
	dir string
}

var _ session.Store = (*Store)(nil)

// New creates the session directory if needed and returns a store over it.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("filestore.New: dir is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "filestore.New: create session dir")
	}
	return &Store{dir: dir}, nil
}

// Dir returns the session directory the store is rooted at.
func (s *Store) Dir() string {
	return s.dir
}

// Read returns the current record. Missing files read as empty strings.
func (s *Store) Read() (session.Record, error) {
	return session.Record{
		Token: s.readKey(tokenFile),
		Name:  s.readKey(nameFile),
		Role:  s.readKey(userTypeFile),
	}, nil
}

// Write sets all three keys. Each file is written via a temp file and rename
// so a concurrent reader never sees a torn value.
func (s *Store) Write(rec session.Record) error {
	entries := []struct {
		file  string
		value string
	}{
		{tokenFile, rec.Token},
		{nameFile, rec.Name},
		{userTypeFile, rec.Role},
	}
	for _, e := range entries {
		if err := s.writeKey(e.file, e.value); err != nil {
			return errors.Wrapf(err, "filestore.Write: %s", e.file)
		}
	}
	return nil
}

// Clear removes all three keys. Already-absent keys are not an error.
func (s *Store) Clear() error {
	for _, file := range []string{tokenFile, nameFile, userTypeFile} {
		if err := os.Remove(filepath.Join(s.dir, file)); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "filestore.Clear: %s", file)
		}
	}
	return nil
}

func (s *Store) readKey(file string) string {
	data, err := os.ReadFile(filepath.Join(s.dir, file))
	if err != nil {
		return ""
	}
	return string(data)
}

func (s *Store) writeKey(file, value string) error {
	path := filepath.Join(s.dir, file)

	tmp, err := os.CreateTemp(s.dir, file+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
