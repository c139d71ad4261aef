package sheets

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// MemorySource keeps collections in memory. It backs local runs through a
// YAML fixture and the tests. cellRange is ignored; whole tables are returned.
type MemorySource struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
	lists       int
}

type memCollection struct {
	order  []string
	tables map[string][][]string
}

// NewMemorySource returns an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{collections: make(map[string]*memCollection)}
}

// yamlFile mirrors the DATA_FILE layout:
//
//	collections:
//	  <id>:
//	    - title: Aereos
//	      rows: [[Origen, Destino, ...], [...]]
type yamlFile struct {
	Collections map[string][]struct {
		Title string     `yaml:"title"`
		Rows  [][]string `yaml:"rows"`
	} `yaml:"collections"`
}

// LoadYAML builds a MemorySource from a fixture file.
func LoadYAML(path string) (*MemorySource, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	var f yamlFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse data file: %w", err)
	}
	m := NewMemorySource()
	for id, tables := range f.Collections {
		for _, t := range tables {
			m.SetTable(id, t.Title, t.Rows)
		}
	}
	return m, nil
}

// SetTable creates or replaces a table.
func (m *MemorySource) SetTable(collectionID, title string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[collectionID]
	if !ok {
		c = &memCollection{tables: make(map[string][][]string)}
		m.collections[collectionID] = c
	}
	if _, exists := c.tables[title]; !exists {
		c.order = append(c.order, title)
	}
	c.tables[title] = rows
}

// Rows returns a copy of a table's rows.
func (m *MemorySource) Rows(collectionID, title string) [][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[collectionID]
	if !ok {
		return nil
	}
	out := make([][]string, len(c.tables[title]))
	copy(out, c.tables[title])
	return out
}

// ListCalls reports how many times ListTables ran.
func (m *MemorySource) ListCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lists
}

func (m *MemorySource) ListTables(_ context.Context, collectionID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	c, ok := m.collections[collectionID]
	if !ok {
		return nil, fmt.Errorf("collection %s not found", collectionID)
	}
	return append([]string(nil), c.order...), nil
}

func (m *MemorySource) ReadRange(_ context.Context, collectionID, table, _ string) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[collectionID]
	if !ok {
		return nil, fmt.Errorf("collection %s not found", collectionID)
	}
	rows, ok := c.tables[table]
	if !ok {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return rows, nil
}

func (m *MemorySource) AppendRow(_ context.Context, collectionID, table string, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[collectionID]
	if !ok {
		return fmt.Errorf("collection %s not found", collectionID)
	}
	if _, ok := c.tables[table]; !ok {
		return fmt.Errorf("table %s not found", table)
	}
	c.tables[table] = append(c.tables[table], append([]string(nil), values...))
	return nil
}
