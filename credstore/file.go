package credstore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/hkdf"
)

const (
	fileSaltLen  = 16
	fileKeyLen   = 32
	fileHKDFInfo = "dukani-credstore-v1"
)

// ErrBadSecret is returned when the sealed file cannot be opened with the
// supplied secret, or when the file is corrupt.
var ErrBadSecret = errors.New("credstore: cannot open sealed file")

// File is a Store sealed to disk with AES-GCM. The encryption key is derived
// from a caller-supplied secret via HKDF-SHA256 with a per-file random salt.
// The whole key-value map is rewritten atomically on every mutation; the
// value set is tiny (a credential pair), so this is not a bottleneck.
type File struct {
	path   string
	secret []byte

	mu sync.Mutex
}

// NewFile creates a file store at path. The file is created lazily on the
// first Set. secret must be non-empty; it is the only way to reopen the file.
func NewFile(path string, secret []byte) (*File, error) {
	if len(secret) == 0 {
		return nil, errors.New("credstore: secret required")
	}
	return &File{path: path, secret: append([]byte(nil), secret...)}, nil
}

// Get implements Store.
func (f *File) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set implements Store.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

// Delete implements Store.
func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.save(values)
}

func (f *File) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("credstore: read %s: %w", f.path, err)
	}

	if len(raw) < fileSaltLen {
		return nil, ErrBadSecret
	}
	salt, sealed := raw[:fileSaltLen], raw[fileSaltLen:]

	gcm, err := f.aead(salt)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, ErrBadSecret
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrBadSecret
	}

	values := make(map[string]string)
	if err := json.Unmarshal(plain, &values); err != nil {
		return nil, ErrBadSecret
	}
	return values, nil
}

// save seals and writes the full map, temp-file-then-rename so a crash never
// leaves a half-written credential file behind.
func (f *File) save(values map[string]string) error {
	plain, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("credstore: encode: %w", err)
	}

	salt := make([]byte, fileSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("credstore: salt: %w", err)
	}
	gcm, err := f.aead(salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("credstore: nonce: %w", err)
	}

	out := make([]byte, 0, fileSaltLen+len(nonce)+len(plain)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, plain, nil)

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".credstore-*")
	if err != nil {
		return fmt.Errorf("credstore: write %s: %w", f.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(out); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("credstore: write %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("credstore: write %s: %w", f.path, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("credstore: write %s: %w", f.path, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("credstore: write %s: %w", f.path, err)
	}
	return nil
}

func (f *File) aead(salt []byte) (cipher.AEAD, error) {
	key := make([]byte, fileKeyLen)
	kdf := hkdf.New(sha256.New, f.secret, salt, []byte(fileHKDFInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("credstore: derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
