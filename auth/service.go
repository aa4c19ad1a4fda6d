package auth

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/models"
)

// ErrUserNotFound is returned by a UserStore when no account matches the
// query. It never escapes the Service; callers see the domain errors above.
var ErrUserNotFound = errors.New("user not found")

// UserStore is the persistence contract the Service consumes. Implementations
// must enforce email uniqueness at the storage layer and apply SetRefreshHash
// as an atomic single-field update.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// SetRefreshHash overwrites the account's refresh-token hash; nil clears
	// the session. Updating an absent account is a no-op, not an error.
	SetRefreshHash(ctx context.Context, id string, hash *string) error
}

// Service owns the credential lifecycle: signup, signin, logout and
// refresh-token rotation.
type Service struct {
	store  UserStore
	hasher *Hasher
	issuer *TokenIssuer

	// sessionLocks serializes refresh rotation per account so two concurrent
	// calls with the same stale token cannot both observe the pre-rotation
	// hash. The loser of a replay race fails with ErrInvalidToken.
	sessionLocks [64]sync.Mutex
}

func NewService(store UserStore, hasher *Hasher, issuer *TokenIssuer) *Service {
	return &Service{store: store, hasher: hasher, issuer: issuer}
}

// SignUp creates an account and opens its first session. A taken email fails
// with ErrEmailTaken before anything is created or issued.
func (s *Service) SignUp(ctx context.Context, email, password, name string, role models.Role) (*TokenPair, error) {
	_, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.store.Create(ctx, &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         role,
	})
	if err != nil {
		// Create may still hit the unique index if a concurrent signup won.
		return nil, err
	}

	return s.openSession(ctx, user)
}

// SignIn verifies credentials and opens a fresh session, overwriting any
// prior one. Unknown email and wrong password fail identically.
func (s *Service) SignIn(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Compare(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.openSession(ctx, user)
}

// Logout clears the stored refresh hash. It is idempotent: logging out an
// account with no active session succeeds.
func (s *Service) Logout(ctx context.Context, userID string) (bool, error) {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.SetRefreshHash(ctx, userID, nil); err != nil {
		return false, err
	}
	return true, nil
}

// RefreshTokens exchanges a valid refresh token for a new pair and rotates
// the stored hash, so the presented token can never be exchanged again.
func (s *Service) RefreshTokens(ctx context.Context, userID, refreshToken string) (*TokenPair, error) {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	if user.RefreshTokenHash == nil {
		return nil, ErrInvalidToken
	}
	ok, err := s.hasher.Compare(refreshToken, *user.RefreshTokenHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidToken
	}

	return s.openSession(ctx, user)
}

// openSession issues a pair and persists the new refresh hash before the pair
// is returned, which is the rotation step.
func (s *Service) openSession(ctx context.Context, user *models.User) (*TokenPair, error) {
	pair, err := s.issuer.IssuePair(user.Name, user.ID.Hex())
	if err != nil {
		return nil, err
	}
	refreshHash, err := s.hasher.Hash(pair.RefreshToken)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetRefreshHash(ctx, user.ID.Hex(), &refreshHash); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *Service) lockFor(userID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return &s.sessionLocks[h.Sum32()%uint32(len(s.sessionLocks))]
}
