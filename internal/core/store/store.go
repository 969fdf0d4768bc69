// Package store persists named filter definitions so tools and
// services can share them across invocations. Definitions are stored
// as their JSON wire form and decoded back into trees on read.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/solatis/sieve/internal/core/db"
	"github.com/solatis/sieve/internal/filter"
	"github.com/solatis/sieve/internal/types"
)

// SavedFilter is a persisted filter definition.
type SavedFilter struct {
	FilterID   types.FilterID `db:"filter_id"`
	Name       string         `db:"name"`
	Definition []byte         `db:"definition"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

// Tree decodes the stored definition back into a filter tree.
func (f *SavedFilter) Tree() (*filter.Node, error) {
	return filter.UnmarshalDefinition(f.Definition)
}

// Store provides CRUD access to saved filters.
type Store struct {
	queries *db.Queries
}

// New creates a Store over a prepared query set.
func New(queries *db.Queries) *Store {
	return &Store{queries: queries}
}

// Save persists a new filter under the given name and returns its
// generated ID.
func (s *Store) Save(name string, root *filter.Node) (*SavedFilter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.ErrEmptyFilterName
	}

	definition, err := filter.MarshalDefinition(filter.FromNode(root))
	if err != nil {
		return nil, fmt.Errorf("failed to encode filter definition: %w", err)
	}

	now := time.Now().UTC()
	saved := &SavedFilter{
		FilterID:   types.NewFilterID(),
		Name:       name,
		Definition: definition,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.queries.Exec("create-filter", saved.FilterID, saved.Name, saved.Definition, saved.CreatedAt, saved.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to save filter %s: %w", name, err)
	}
	return saved, nil
}

// Get retrieves a filter by ID.
func (s *Store) Get(id types.FilterID) (*SavedFilter, error) {
	var saved SavedFilter
	if err := s.queries.Get("get-filter", &saved, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrFilterNotFound
		}
		return nil, fmt.Errorf("failed to load filter %s: %w", id, err)
	}
	return &saved, nil
}

// GetByName retrieves a filter by its unique name.
func (s *Store) GetByName(name string) (*SavedFilter, error) {
	var saved SavedFilter
	if err := s.queries.Get("get-filter-by-name", &saved, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrFilterNotFound
		}
		return nil, fmt.Errorf("failed to load filter %q: %w", name, err)
	}
	return &saved, nil
}

// List returns all saved filters ordered by name.
func (s *Store) List() ([]SavedFilter, error) {
	var filters []SavedFilter
	if err := s.queries.Select("list-filters", &filters); err != nil {
		return nil, fmt.Errorf("failed to list filters: %w", err)
	}
	return filters, nil
}

// Update replaces the stored definition of an existing filter.
func (s *Store) Update(id types.FilterID, root *filter.Node) error {
	definition, err := filter.MarshalDefinition(filter.FromNode(root))
	if err != nil {
		return fmt.Errorf("failed to encode filter definition: %w", err)
	}
	result, err := s.queries.Exec("update-filter", definition, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update filter %s: %w", id, err)
	}
	return requireRow(result)
}

// Rename changes the name of an existing filter.
func (s *Store) Rename(id types.FilterID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.ErrEmptyFilterName
	}
	result, err := s.queries.Exec("rename-filter", name, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to rename filter %s: %w", id, err)
	}
	return requireRow(result)
}

// Delete removes a filter by ID.
func (s *Store) Delete(id types.FilterID) error {
	result, err := s.queries.Exec("delete-filter", id)
	if err != nil {
		return fmt.Errorf("failed to delete filter %s: %w", id, err)
	}
	return requireRow(result)
}

// requireRow maps a zero-row write to ErrFilterNotFound.
func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return types.ErrFilterNotFound
	}
	return nil
}
