// Package policy holds immutable role definitions and resolves role lookups.
//
// Definitions load once at startup from YAML (or compiled-in defaults) and
// are read-only at request time. Reload swaps a whole new snapshot so
// concurrent readers never observe a partial policy set.
package policy

import (
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"kbgate/internal/intent"
	dErrors "kbgate/pkg/domain-errors"
)

// Store resolves role identifiers to immutable Role values. The read path is
// lock-free: lookups dereference an atomic snapshot pointer.
type Store struct {
	snapshot atomic.Pointer[map[string]Role]
}

// roleFile is the YAML wire format for role definitions.
type roleFile struct {
	Roles []roleSpec `yaml:"roles"`
}

type roleSpec struct {
	ID                  string   `yaml:"id"`
	Name                string   `yaml:"name"`
	Description         string   `yaml:"description"`
	GrantedScopes       []string `yaml:"granted_scopes"`
	DeniedScopes        []string `yaml:"denied_scopes"`
	GrantedCategories   []string `yaml:"granted_categories"`
	ForbiddenCategories []string `yaml:"forbidden_categories"`
	MaxSensitivity      int      `yaml:"max_sensitivity"`
}

// Load builds a Store from the YAML file at path, or from the compiled-in
// default personas when path is empty. A load failure is fatal for the
// process: the gateway must not serve traffic without a policy set.
func Load(path string) (*Store, error) {
	roles := DefaultRoles()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read policy file: %w", err)
		}
		roles, err = parseRoles(data)
		if err != nil {
			return nil, err
		}
	}
	return NewStore(roles)
}

// NewStore builds a Store from an explicit role list. Used by Load and by
// tests that construct policy sets inline.
func NewStore(roles []Role) (*Store, error) {
	snapshot, err := buildSnapshot(roles)
	if err != nil {
		return nil, err
	}
	s := &Store{}
	s.snapshot.Store(&snapshot)
	return s, nil
}

// Reload replaces the entire policy set atomically. In-flight readers keep
// the snapshot they already dereferenced.
func (s *Store) Reload(roles []Role) error {
	snapshot, err := buildSnapshot(roles)
	if err != nil {
		return err
	}
	s.snapshot.Store(&snapshot)
	return nil
}

// Get resolves a role by identifier.
func (s *Store) Get(roleID string) (Role, error) {
	snapshot := *s.snapshot.Load()
	role, ok := snapshot[roleID]
	if !ok {
		return Role{}, dErrors.Newf(dErrors.CodeNotFound, "unknown role: %s", roleID)
	}
	return role, nil
}

// All returns every configured role, for the persona listing endpoint.
func (s *Store) All() []Role {
	snapshot := *s.snapshot.Load()
	out := make([]Role, 0, len(snapshot))
	for _, role := range snapshot {
		out = append(out, role)
	}
	return out
}

func buildSnapshot(roles []Role) (map[string]Role, error) {
	if len(roles) == 0 {
		return nil, fmt.Errorf("policy set is empty")
	}
	snapshot := make(map[string]Role, len(roles))
	for _, role := range roles {
		if role.ID == "" {
			return nil, fmt.Errorf("role with empty id")
		}
		if _, dup := snapshot[role.ID]; dup {
			return nil, fmt.Errorf("duplicate role id %q", role.ID)
		}
		if role.MaxSensitivity < SensitivityPublic || role.MaxSensitivity > SensitivityRestricted {
			return nil, fmt.Errorf("role %q: max_sensitivity %d out of range", role.ID, role.MaxSensitivity)
		}
		snapshot[role.ID] = role
	}
	return snapshot, nil
}

func parseRoles(data []byte) ([]Role, error) {
	var file roleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}
	roles := make([]Role, 0, len(file.Roles))
	for _, spec := range file.Roles {
		roles = append(roles, Role{
			ID:                  spec.ID,
			Name:                spec.Name,
			Description:         spec.Description,
			GrantedScopes:       toScopes(spec.GrantedScopes),
			DeniedScopes:        toScopes(spec.DeniedScopes),
			GrantedCategories:   append([]string(nil), spec.GrantedCategories...),
			ForbiddenCategories: toCategories(spec.ForbiddenCategories),
			MaxSensitivity:      spec.MaxSensitivity,
		})
	}
	return roles, nil
}

func toScopes(in []string) []Scope {
	if len(in) == 0 {
		return nil
	}
	out := make([]Scope, len(in))
	for i, s := range in {
		out[i] = Scope(s)
	}
	return out
}

func toCategories(in []string) []intent.Category {
	if len(in) == 0 {
		return nil
	}
	out := make([]intent.Category, len(in))
	for i, c := range in {
		out[i] = intent.Category(c)
	}
	return out
}
