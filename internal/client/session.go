package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Session is the signed-in identity persisted between CLI runs.
type Session struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
}

// LoadSession reads the session at path. ok is false when none is stored.
func LoadSession(path string) (s Session, ok bool, err error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, err
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return Session{}, false, fmt.Errorf("decode session %s: %w", path, err)
	}
	return s, s.Token != "", nil
}

// SaveSession writes s to path, readable by the owner only.
func SaveSession(path string, s Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// ClearSession removes the stored session. A missing file is not an error.
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Init hydrates the client token from the session stored at path.
func (c *Client) Init(path string) (Session, bool, error) {
	s, ok, err := LoadSession(path)
	if err != nil || !ok {
		return s, ok, err
	}
	c.SetToken(s.Token)
	return s, true, nil
}
