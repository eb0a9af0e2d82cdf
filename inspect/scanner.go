package inspect

import (
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/skosovsky/conveyor"

	"golang.org/x/sync/singleflight"
)

// Scanner caches the variables of part files by path. Safe for concurrent use;
// concurrent scans of the same path read the file once.
type Scanner struct {
	mu    sync.RWMutex
	cache map[string][]string
	sf    singleflight.Group
}

// NewScanner returns an empty Scanner.
func NewScanner() *Scanner {
	return &Scanner{cache: make(map[string][]string)}
}

// Scan returns the sorted variables used in the file at path.
func (s *Scanner) Scan(path string) ([]string, error) {
	s.mu.RLock()
	vars, ok := s.cache[path]
	s.mu.RUnlock()
	if ok {
		return slices.Clone(vars), nil
	}
	v, err, _ := s.sf.Do(path, func() (any, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("inspect: scan %s: %w", path, err)
		}
		defer f.Close()
		vars, err := conveyor.ScanVariables(f)
		if err != nil {
			return nil, fmt.Errorf("inspect: scan %s: %w", path, err)
		}
		s.mu.Lock()
		s.cache[path] = vars
		s.mu.Unlock()
		return vars, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]string)), nil
}

// Forget drops every cached entry.
func (s *Scanner) Forget() {
	s.mu.Lock()
	s.cache = make(map[string][]string)
	s.mu.Unlock()
}
