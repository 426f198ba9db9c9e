package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nightowl/sleepsite/internal/models"
)

// UserService is the in-memory UserStore used for local dev and tests.
type UserService struct {
	mu      sync.RWMutex
	users   map[string]*models.User
	byEmail map[string]string // email -> userID
	images  map[string]*models.UserImage
}

func NewUserService() *UserService {
	return &UserService{
		users:   make(map[string]*models.User),
		byEmail: make(map[string]string),
		images:  make(map[string]*models.UserImage),
	}
}

func (s *UserService) GetByID(id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}

	userCopy := *user
	return &userCopy, nil
}

func (s *UserService) GetByEmail(email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byEmail[email]
	if !exists {
		return nil, ErrUserNotFound
	}

	userCopy := *s.users[id]
	return &userCopy, nil
}

func (s *UserService) UpsertByEmail(profile *models.GoogleProfile) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.byEmail[profile.Email]; exists {
		// Only provider fields refresh on a repeat login; edited names
		// stay as the user left them.
		user := s.users[id]
		user.GID = profile.Sub
		user.GName = profile.Name
		user.GProfilePic = profile.Picture

		userCopy := *user
		return &userCopy, nil
	}

	user := &models.User{
		ID:          uuid.New().String(),
		GID:         profile.Sub,
		GName:       profile.Name,
		GProfilePic: profile.Picture,
		FirstName:   profile.GivenName,
		LastName:    profile.FamilyName,
		Email:       profile.Email,
		CreatedAt:   time.Now().UTC(),
	}

	s.users[user.ID] = user
	s.byEmail[user.Email] = user.ID

	userCopy := *user
	return &userCopy, nil
}

func (s *UserService) UpdateProfile(id string, req *models.ProfileRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[id]
	if !exists {
		return ErrUserNotFound
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Pronouns = req.Pronouns

	if len(req.Image) > 0 {
		// Replacing drops the prior image so nothing is orphaned.
		delete(s.images, id)
		s.images[id] = &models.UserImage{
			Data:        req.Image,
			ContentType: req.ImageContentType,
		}
	}

	return nil
}

func (s *UserService) UpdateConsent(id string, req *models.ConsentRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[id]
	if !exists {
		return ErrUserNotFound
	}

	user.Consent = req.ConsentValue()
	user.AdultFirstName = req.AdultFirstName
	user.AdultLastName = req.AdultLastName
	user.AdultEmail = req.AdultEmail

	return nil
}

func (s *UserService) Image(id string) (*models.UserImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	img, exists := s.images[id]
	if !exists {
		return nil, ErrImageNotFound
	}

	return img, nil
}
