package services

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/nightowl/sleepsite/internal/models"
)

// SleepService is the in-memory SleepStore used for local dev and tests.
type SleepService struct {
	mu     sync.RWMutex
	sleeps map[string]*models.Sleep
}

func NewSleepService() *SleepService {
	return &SleepService{
		sleeps: make(map[string]*models.Sleep),
	}
}

func (s *SleepService) Create(sleeperID string, req *models.SleepRequest) (*models.Sleep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sleep := &models.Sleep{
		ID:          uuid.New().String(),
		SleeperID:   sleeperID,
		Rating:      req.Rating,
		Feel:        req.Feel,
		Start:       req.Start,
		End:         req.End,
		SleepDate:   req.SleepDate(),
		Hours:       req.Hours(),
		MinsToSleep: req.MinsToSleep,
	}

	s.sleeps[sleep.ID] = sleep

	sleepCopy := *sleep
	return &sleepCopy, nil
}

func (s *SleepService) GetByID(id string) (*models.Sleep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sleep, exists := s.sleeps[id]
	if !exists {
		return nil, ErrSleepNotFound
	}

	sleepCopy := *sleep
	return &sleepCopy, nil
}

func (s *SleepService) Update(actorID, id string, req *models.SleepRequest) (*models.Sleep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sleep, exists := s.sleeps[id]
	if !exists {
		return nil, ErrSleepNotFound
	}

	if sleep.SleeperID != actorID {
		return nil, ErrUnauthorized
	}

	sleep.Rating = req.Rating
	sleep.Feel = req.Feel
	sleep.Start = req.Start
	sleep.End = req.End
	sleep.SleepDate = req.SleepDate()
	sleep.Hours = req.Hours()
	sleep.MinsToSleep = req.MinsToSleep

	sleepCopy := *sleep
	return &sleepCopy, nil
}

// Delete removes the entry and returns it so callers can report which
// night was dropped. No ownership check, matching the exposed route.
func (s *SleepService) Delete(id string) (*models.Sleep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sleep, exists := s.sleeps[id]
	if !exists {
		return nil, ErrSleepNotFound
	}

	delete(s.sleeps, id)

	sleepCopy := *sleep
	return &sleepCopy, nil
}

func (s *SleepService) ListAll() ([]*models.Sleep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*models.Sleep, 0, len(s.sleeps))
	for _, sleep := range s.sleeps {
		sleepCopy := *sleep
		results = append(results, &sleepCopy)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].SleepDate.Before(results[j].SleepDate)
	})

	return results, nil
}
