package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jalvarez/statline/backend/models"
	"github.com/jalvarez/statline/backend/repository"
)

// AuthService tracks the currently authenticated profile. Login is a plain
// profile lookup, not a security boundary: there are no credentials, and role
// checks stay in the presentation layer.
//
// The active-profile identity is the only state that survives a restart. It is
// persisted as a signed token in a single slot file; everything else is
// re-seeded from fixture data on every process start.
type AuthService struct {
	store     *repository.Store
	tracker   *SessionTracker
	jwtSecret []byte
	slotPath  string

	mutex   sync.RWMutex
	current *models.Profile
}

// SlotClaims is the payload of the persisted active-profile token.
type SlotClaims struct {
	ProfileID string `json:"profile_id"`
	jwt.RegisteredClaims
}

func NewAuthService(store *repository.Store, tracker *SessionTracker, jwtSecret, slotPath string) *AuthService {
	return &AuthService{
		store:     store,
		tracker:   tracker,
		jwtSecret: []byte(jwtSecret),
		slotPath:  slotPath,
	}
}

// Login resolves the profile and makes it the active one, persisting the slot.
// An unresolvable id leaves the previous active profile unchanged.
func (s *AuthService) Login(ctx context.Context, profileID string) (*models.Profile, error) {
	profile, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		slog.Warn("Login ignored, profile not found", "profile_id", profileID)
		return nil, nil
	}

	s.mutex.Lock()
	s.current = profile
	s.mutex.Unlock()

	if err := s.persistSlot(profile.ID); err != nil {
		slog.Error("Failed to persist active-profile slot", "error", err, "profile_id", profile.ID)
	}

	slog.Info("Profile logged in", "profile_id", profile.ID, "full_name", profile.FullName, "role", profile.Role)
	return profile, nil
}

// Logout clears the active profile and the persisted slot. Any sessions still
// open are finalized with their elapsed time up to now, so the history is
// never left with a permanently open record.
func (s *AuthService) Logout(ctx context.Context) {
	s.mutex.Lock()
	s.current = nil
	s.mutex.Unlock()

	s.tracker.StopAll(ctx)

	if err := os.Remove(s.slotPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("Failed to clear active-profile slot", "error", err)
	}

	slog.Info("Profile logged out")
}

// ActiveProfile returns the currently authenticated profile, or nil.
func (s *AuthService) ActiveProfile() *models.Profile {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.current
}

// RestoreSlot re-establishes the active profile from the persisted slot on
// startup. The stored id must still resolve against the freshly seeded profile
// collection; otherwise the process starts unauthenticated.
func (s *AuthService) RestoreSlot(ctx context.Context) {
	raw, err := os.ReadFile(s.slotPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to read active-profile slot", "error", err)
		}
		return
	}

	claims := &SlotClaims{}
	token, err := jwt.ParseWithClaims(string(raw), claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		slog.Warn("Discarding invalid active-profile slot", "error", err)
		return
	}

	profile, err := s.store.GetProfile(ctx, claims.ProfileID)
	if err != nil || profile == nil {
		slog.Warn("Active-profile slot no longer resolvable, starting unauthenticated", "profile_id", claims.ProfileID)
		return
	}

	s.mutex.Lock()
	s.current = profile
	s.mutex.Unlock()

	slog.Info("Active profile restored from slot", "profile_id", profile.ID, "full_name", profile.FullName)
}

func (s *AuthService) persistSlot(profileID string) error {
	claims := SlotClaims{
		ProfileID: profileID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   "statline",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return err
	}
	return os.WriteFile(s.slotPath, []byte(signed), 0o600)
}
