package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"plantas/internal/farmer/models"
	"plantas/pkg/domain"
	"plantas/pkg/sentinel"
)

// MemoryStore keeps farmer records in process memory. Used by unit tests and
// as a development backend when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[domain.DNI]*models.Farmer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[domain.DNI]*models.Farmer)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) FindByDNI(_ context.Context, dni domain.DNI) (*models.Farmer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.records[dni]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *f
	return &copied, nil
}

func (s *MemoryStore) Exists(_ context.Context, dni domain.DNI) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[dni]
	return ok, nil
}

func (s *MemoryStore) Save(_ context.Context, f *models.Farmer) (*models.Farmer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[f.DNI]; ok {
		return nil, sentinel.ErrConflict
	}
	copied := *f
	s.records[f.DNI] = &copied
	return f, nil
}

func (s *MemoryStore) Update(_ context.Context, f *models.Farmer) (*models.Farmer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[f.DNI]; !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *f
	s.records[f.DNI] = &copied
	return f, nil
}

func (s *MemoryStore) Delete(_ context.Context, dni domain.DNI) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[dni]; !ok {
		return false, nil
	}
	delete(s.records, dni)
	return true, nil
}

func (s *MemoryStore) List(_ context.Context, limit, offset int) ([]*models.Farmer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sorted := s.sortedLocked()
	if offset >= len(sorted) {
		return []*models.Farmer{}, nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[offset:end], nil
}

func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

func (s *MemoryStore) FindByLocation(_ context.Context, filter LocationFilter) ([]*models.Farmer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []*models.Farmer{}
	for _, f := range s.sortedLocked() {
		if filter.Department != "" && !strings.EqualFold(f.Department, filter.Department) {
			continue
		}
		if filter.Province != "" && !strings.EqualFold(f.Province, filter.Province) {
			continue
		}
		if filter.District != "" && !strings.EqualFold(f.District, filter.District) {
			continue
		}
		matched = append(matched, f)
		if len(matched) == MaxLocationResults {
			break
		}
	}
	return matched, nil
}

// sortedLocked returns copies of all records in the stable listing order.
// Callers must hold at least the read lock.
func (s *MemoryStore) sortedLocked() []*models.Farmer {
	all := make([]*models.Farmer, 0, len(s.records))
	for _, f := range s.records {
		copied := *f
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Surname != all[j].Surname {
			return all[i].Surname < all[j].Surname
		}
		if all[i].GivenNames != all[j].GivenNames {
			return all[i].GivenNames < all[j].GivenNames
		}
		return all[i].DNI < all[j].DNI
	})
	return all
}
