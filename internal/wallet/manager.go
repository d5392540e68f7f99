package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

// Errors.
var (
	ErrNameNotFound = errors.New("key name not found")
	ErrNameExists   = errors.New("key name already exists")
	ErrInvalidKey   = errors.New("invalid private key")
)

// Key holds the public metadata of an imported private key.
type Key struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	KeyRef    string `json:"key_ref"`
	CreatedAt string `json:"created_at"`
}

// Store persists key metadata.
type Store interface {
	Load() ([]*Key, error)
	Save([]*Key) error
}

// Manager imports, lists and removes named keys. Secrets go to the keystore,
// metadata to the store.
type Manager struct {
	store  Store
	ks     KeystoreBackend
	keys   map[string]*Key
	loaded bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithInMemoryStore uses an in-memory metadata store (useful for tests).
func WithInMemoryStore() Option {
	return func(m *Manager) {
		m.store = &memStore{}
	}
}

// WithStore sets a custom store.
func WithStore(s Store) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// NewManager creates a key manager over ks.
func NewManager(ks KeystoreBackend, opts ...Option) *Manager {
	m := &Manager{
		ks:    ks,
		keys:  make(map[string]*Key),
		store: &memStore{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Import validates hexKey, stores it in the keystore and records its address.
func (m *Manager) Import(name, hexKey string) (*Key, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.New("key name is required")
	}
	if _, exists := m.keys[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrNameExists, name)
	}

	privKey, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	ref, err := m.ks.Store(name, hexKey)
	if err != nil {
		return nil, fmt.Errorf("storing key: %w", err)
	}

	k := &Key{
		Name:      name,
		Address:   crypto.PubkeyToAddress(privKey.PublicKey).Hex(),
		KeyRef:    ref,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	m.keys[name] = k
	return k, m.persist()
}

// Get returns key metadata by name.
func (m *Manager) Get(name string) (*Key, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	k, ok := m.keys[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNameNotFound, name)
	}
	return k, nil
}

// Remove deletes the key from the keystore and the metadata store.
func (m *Manager) Remove(name string) error {
	k, err := m.Get(name)
	if err != nil {
		return err
	}
	if err := m.ks.Delete(k.KeyRef); err != nil {
		return fmt.Errorf("deleting key: %w", err)
	}
	delete(m.keys, name)
	return m.persist()
}

// List returns all keys sorted by name.
func (m *Manager) List() ([]*Key, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	out := make([]*Key, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- internal ---

func (m *Manager) load() error {
	if m.loaded {
		return nil
	}
	keys, err := m.store.Load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		m.keys[k.Name] = k
	}
	m.loaded = true
	return nil
}

func (m *Manager) persist() error {
	keys := make([]*Key, 0, len(m.keys))
	for _, k := range m.keys {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })
	return m.store.Save(keys)
}

// --- in-memory store ---

type memStore struct {
	keys []*Key
}

func (s *memStore) Load() ([]*Key, error) {
	return s.keys, nil
}

func (s *memStore) Save(keys []*Key) error {
	s.keys = keys
	return nil
}

// --- JSON file store ---

// JSONStore persists key metadata to a JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed key store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Load() ([]*Key, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var keys []*Key
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return keys, nil
}

func (s *JSONStore) Save(keys []*Key) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
