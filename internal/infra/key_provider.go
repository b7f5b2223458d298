package infra

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

const (
	// AuditKeyFile holds the SQLCipher passphrase of the audit log, next to the database.
	AuditKeyFile = "audit.key"
	keySize      = 32
)

// FileKeyProvider keeps the audit log key as base64 text in the data dir.
// Only the owner may read it; anything looser makes the audit log refuse to open.
type FileKeyProvider struct {
	keyPath string
}

func NewFileKeyProvider(dataDir string) *FileKeyProvider {
	return &FileKeyProvider{keyPath: filepath.Join(dataDir, AuditKeyFile)}
}

func (p *FileKeyProvider) Path() string {
	return p.keyPath
}

// GetKey loads the audit key. On unix a key file with group or other
// permission bits is an error, not a warning.
func (p *FileKeyProvider) GetKey() ([]byte, error) {
	if err := checkKeyMode(p.keyPath); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(p.keyPath)
	if err != nil {
		return nil, fmt.Errorf("read audit key %s: %w", p.keyPath, err)
	}
	return decodeKey(raw)
}

// StoreKey writes key with mode 0600, creating the data dir as 0700.
func (p *FileKeyProvider) StoreKey(key []byte) error {
	if len(key) != keySize {
		return fmt.Errorf("invalid key size: got %d, want %d", len(key), keySize)
	}
	if err := os.MkdirAll(filepath.Dir(p.keyPath), 0700); err != nil {
		return fmt.Errorf("create audit key dir: %w", err)
	}
	if err := os.WriteFile(p.keyPath, []byte(base64.StdEncoding.EncodeToString(key)), 0600); err != nil {
		return fmt.Errorf("write audit key %s: %w", p.keyPath, err)
	}
	return nil
}

func (p *FileKeyProvider) KeyExists() bool {
	_, err := os.Stat(p.keyPath)
	return err == nil
}

func checkKeyMode(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("read audit key %s: %w", path, err)
	}
	if perm := info.Mode().Perm(); perm&0077 != 0 {
		return fmt.Errorf("audit key %s has permissions %o, want 0600", path, perm)
	}
	return nil
}

func decodeKey(raw []byte) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("audit key is not base64: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("invalid key size: got %d, want %d", len(key), keySize)
	}
	return key, nil
}

// GenerateKey returns keySize bytes from crypto/rand.
func GenerateKey() ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate audit key: %w", err)
	}
	return key, nil
}

// EnsureKey returns the stored audit key, creating one on first use.
func EnsureKey(provider domain.KeyProvider) ([]byte, error) {
	if provider.KeyExists() {
		return provider.GetKey()
	}
	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := provider.StoreKey(key); err != nil {
		return nil, err
	}
	return key, nil
}

// OpenAuditLog opens the encrypted audit log at dbPath with the key kept in dataDir.
func OpenAuditLog(dataDir, dbPath string) (*AuditLog, error) {
	key, err := EnsureKey(NewFileKeyProvider(dataDir))
	if err != nil {
		return nil, fmt.Errorf("failed to load audit key: %w", err)
	}
	return NewAuditLog(dbPath, key)
}

var _ domain.KeyProvider = (*FileKeyProvider)(nil)
