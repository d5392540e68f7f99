package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// SchemaVersion is the manifest format written by this build.
const SchemaVersion = 1

const manifestFile = "artifacts.json"

// Errors.
var (
	ErrNotFound = errors.New("artifact not found")
	ErrInvalid  = errors.New("invalid artifact")
)

type manifest struct {
	SchemaVersion int      `json:"schema_version"`
	Artifacts     []Record `json:"artifacts"`
}

// Store persists deployment artifacts in a directory: a versioned artifacts.json
// manifest plus one plain-text file per artifact for tools that read the bare value.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Dir returns the artifact directory.
func (s *Store) Dir() string {
	return s.dir
}

// Put validates and persists records. All records are checked before anything is written.
func (s *Store) Put(recs ...Record) error {
	for _, r := range recs {
		if err := r.validate(); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating artifact dir: %w", err)
	}

	m, err := s.load()
	if err != nil {
		return err
	}

	stamp := s.now().UTC().Format(time.RFC3339)
	for _, r := range recs {
		r.WrittenAt = stamp
		r.Checksum = checksum(r.Name, r.Value)

		if err := writeAtomic(filepath.Join(s.dir, r.Name), []byte(r.Value)); err != nil {
			return fmt.Errorf("writing %s: %w", r.Name, err)
		}
		m.upsert(r)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(filepath.Join(s.dir, manifestFile), append(data, '\n'))
}

// Get returns the named record. Records missing from the manifest are read from the
// legacy single-value file, which is how externally produced artifacts arrive.
func (s *Store) Get(name string) (Record, error) {
	m, err := s.load()
	if err != nil {
		return Record{}, err
	}

	legacy, legacyErr := s.readLegacy(name)

	rec, ok := m.find(name)
	if !ok {
		if legacyErr != nil {
			return Record{}, legacyErr
		}
		return legacy, nil
	}

	if rec.Checksum != checksum(rec.Name, rec.Value) {
		return Record{}, fmt.Errorf("%w: %s: checksum mismatch in %s", ErrInvalid, name, manifestFile)
	}
	if err := rec.validate(); err != nil {
		return Record{}, err
	}
	if legacyErr == nil && !strings.EqualFold(legacy.Value, rec.Value) {
		return Record{}, fmt.Errorf("%w: %s: file holds %s but %s records %s",
			ErrInvalid, name, legacy.Value, manifestFile, rec.Value)
	}
	return rec, nil
}

// Address returns the named artifact as an address.
func (s *Store) Address(name string) (common.Address, error) {
	rec, err := s.Get(name)
	if err != nil {
		return common.Address{}, err
	}
	return rec.Address()
}

// List returns all manifest records sorted by name.
func (s *Store) List() ([]Record, error) {
	m, err := s.load()
	if err != nil {
		return nil, err
	}
	out := append([]Record(nil), m.Artifacts...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- internal ---

func (s *Store) load() (*manifest, error) {
	m := &manifest{SchemaVersion: SchemaVersion}

	data, err := os.ReadFile(filepath.Join(s.dir, manifestFile))
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", manifestFile, err)
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalid, manifestFile, err)
	}
	if m.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("%w: %s schema version %d is newer than supported %d",
			ErrInvalid, manifestFile, m.SchemaVersion, SchemaVersion)
	}
	m.SchemaVersion = SchemaVersion
	return m, nil
}

func (s *Store) readLegacy(name string) (Record, error) {
	rec := Record{Name: name}
	if err := rec.validateName(); err != nil {
		return Record{}, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return Record{}, fmt.Errorf("%w: %s (looked in %s)", ErrNotFound, name, s.dir)
	}
	if err != nil {
		return Record{}, fmt.Errorf("reading %s: %w", name, err)
	}

	rec.Value = strings.TrimSpace(string(data))
	kind, ok := inferKind(rec.Value)
	if !ok {
		return Record{}, fmt.Errorf("%w: %s: %q is neither an address nor a transaction hash", ErrInvalid, name, rec.Value)
	}
	rec.Kind = kind
	rec.Checksum = checksum(rec.Name, rec.Value)
	return rec, nil
}

func (r Record) validateName() error {
	if r.Name == "" || strings.ContainsAny(r.Name, `/\`) {
		return fmt.Errorf("%w: bad artifact name %q", ErrInvalid, r.Name)
	}
	return nil
}

func (m *manifest) find(name string) (Record, bool) {
	for _, r := range m.Artifacts {
		if r.Name == name {
			return r, true
		}
	}
	return Record{}, false
}

func (m *manifest) upsert(rec Record) {
	for i := range m.Artifacts {
		if m.Artifacts[i].Name == rec.Name {
			m.Artifacts[i] = rec
			return
		}
	}
	m.Artifacts = append(m.Artifacts, rec)
}

// writeAtomic writes data to a temp file in the same directory and renames it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
