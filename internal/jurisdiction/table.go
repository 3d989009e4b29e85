package jurisdiction

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var builtinProfiles []byte

// Table is an immutable set of profiles with a designated default.
// It is safe for concurrent use.
type Table struct {
	profiles    map[string]Profile
	codes       []string
	defaultCode string
}

type document struct {
	Default  string    `yaml:"default"`
	Profiles []Profile `yaml:"profiles"`
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the table compiled into the binary.
// The embedded document is covered by tests, so a parse failure panics.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := parse(builtinProfiles)
		if err != nil {
			panic(fmt.Sprintf("jurisdiction: embedded profiles are invalid: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// Load parses a YAML profile document
func Load(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	return parse(data)
}

// LoadFile parses the profile document at path
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles: %w", err)
	}
	defer f.Close()

	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	if len(doc.Profiles) == 0 {
		return nil, fmt.Errorf("profile document has no profiles")
	}
	if doc.Default == "" {
		doc.Default = "US"
	}

	t := &Table{
		profiles:    make(map[string]Profile, len(doc.Profiles)),
		codes:       make([]string, 0, len(doc.Profiles)),
		defaultCode: doc.Default,
	}
	for _, p := range doc.Profiles {
		if err := p.validate(); err != nil {
			return nil, err
		}
		if _, dup := t.profiles[p.Code]; dup {
			return nil, fmt.Errorf("duplicate profile code %q", p.Code)
		}
		t.profiles[p.Code] = p
		t.codes = append(t.codes, p.Code)
	}
	sort.Strings(t.codes)

	if _, ok := t.profiles[t.defaultCode]; !ok {
		return nil, fmt.Errorf("default jurisdiction %q has no profile", t.defaultCode)
	}
	return t, nil
}

// WithDefault returns a copy of the table whose fallback is code
func (t *Table) WithDefault(code string) (*Table, error) {
	if _, ok := t.profiles[code]; !ok {
		return nil, fmt.Errorf("default jurisdiction %q has no profile", code)
	}
	return &Table{profiles: t.profiles, codes: t.codes, defaultCode: code}, nil
}

// Get looks code up exactly (case-sensitive) and falls back to the default
// profile on a miss. It never fails.
func (t *Table) Get(code string) Profile {
	if p, ok := t.profiles[code]; ok {
		return p.clone()
	}
	return t.profiles[t.defaultCode].clone()
}

// Lookup is Get without the fallback
func (t *Table) Lookup(code string) (Profile, bool) {
	p, ok := t.profiles[code]
	if !ok {
		return Profile{}, false
	}
	return p.clone(), true
}

// DefaultCode is the code Get falls back to
func (t *Table) DefaultCode() string {
	return t.defaultCode
}

// Codes lists every known code in sorted order
func (t *Table) Codes() []string {
	return append([]string(nil), t.codes...)
}

// All returns every profile sorted by code
func (t *Table) All() []Profile {
	out := make([]Profile, 0, len(t.codes))
	for _, c := range t.codes {
		out = append(out, t.profiles[c].clone())
	}
	return out
}

// Len is the number of profiles
func (t *Table) Len() int {
	return len(t.profiles)
}
