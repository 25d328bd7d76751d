package users

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps accounts in process memory. Used for development
// and tests; all data is lost on restart.
type MemoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*models.Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byEmail: make(map[string]*models.Account)}
}

func (r *MemoryRepository) Create(ctx context.Context, email, passwordHash, fullName string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[email]; ok {
		return nil, common.ErrorConflict
	}

	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Role:         models.RoleUser,
		CreatedAt:    now(),
	}
	r.byEmail[email] = account

	out := *account
	return &out, nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *account
	return &out, nil
}

func (r *MemoryRepository) Save(ctx context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.findByID(account.ID)
	if stored == nil {
		return nil, common.ErrorNotFound
	}
	stored.FullName = account.FullName
	stored.PasswordHash = account.PasswordHash
	stored.Role = account.Role

	out := *stored
	return &out, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, account *models.Account) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.findByID(account.ID)
	if stored == nil {
		return false, nil
	}
	delete(r.byEmail, stored.Email)
	return true, nil
}

func (r *MemoryRepository) ListAll(ctx context.Context) ([]*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Account, 0, len(r.byEmail))
	for _, account := range r.byEmail {
		out := *account
		result = append(result, &out)
	}
	sortAccounts(result)
	return result, nil
}

// findByID must be called with mu held.
func (r *MemoryRepository) findByID(id string) *models.Account {
	for _, account := range r.byEmail {
		if account.ID == id {
			return account
		}
	}
	return nil
}

func sortAccounts(accounts []*models.Account) {
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].ID < accounts[j].ID
		}
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
}
