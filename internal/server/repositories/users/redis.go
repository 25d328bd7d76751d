package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key written by RedisRepository.
const DefaultRedisPrefix = "gophauth"

// createAccountScript reserves the email and writes the account hash in one
// step, so of two racing registrations only one gets the email.
const createAccountScript = `
if redis.call("SETNX", KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[2], "id", ARGV[1], "email", ARGV[2], "hashed_password", ARGV[3],
  "full_name", ARGV[4], "role", ARGV[5], "created_at", ARGV[6])
redis.call("SADD", KEYS[3], ARGV[1])
return 1
`

const saveAccountScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "full_name", ARGV[1], "hashed_password", ARGV[2], "role", ARGV[3])
return 1
`

const deleteAccountScript = `
redis.call("SREM", KEYS[3], ARGV[1])
if redis.call("DEL", KEYS[1]) == 0 then
  return 0
end
if redis.call("GET", KEYS[2]) == ARGV[1] then
  redis.call("DEL", KEYS[2])
end
return 1
`

var (
	createAccountLua = redis.NewScript(createAccountScript)
	saveAccountLua   = redis.NewScript(saveAccountScript)
	deleteAccountLua = redis.NewScript(deleteAccountScript)
)

// RedisRepository stores each account as a hash under <prefix>:user:<id>,
// with <prefix>:email:<email> pointing at the id and <prefix>:users
// indexing every id.
type RedisRepository struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisRepository(rdb redis.UniversalClient, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisRepository{rdb: rdb, prefix: prefix}
}

func (r *RedisRepository) accountKey(id string) string { return r.prefix + ":user:" + id }
func (r *RedisRepository) emailKey(email string) string { return r.prefix + ":email:" + email }
func (r *RedisRepository) indexKey() string             { return r.prefix + ":users" }

func (r *RedisRepository) Create(ctx context.Context, email, passwordHash, fullName string) (*models.Account, error) {
	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Role:         models.RoleUser,
		CreatedAt:    now(),
	}

	keys := []string{r.emailKey(email), r.accountKey(account.ID), r.indexKey()}
	created, err := createAccountLua.Run(ctx, r.rdb, keys,
		account.ID, account.Email, account.PasswordHash, account.FullName, account.Role,
		account.CreatedAt.Format(time.RFC3339Nano),
	).Int64()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if created == 0 {
		return nil, common.ErrorConflict
	}

	return account, nil
}

func (r *RedisRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	id, err := r.rdb.Get(ctx, r.emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	fields, err := r.rdb.HGetAll(ctx, r.accountKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 {
		return nil, common.ErrorNotFound
	}
	return accountFromHash(fields)
}

func (r *RedisRepository) Save(ctx context.Context, account *models.Account) (*models.Account, error) {
	saved, err := saveAccountLua.Run(ctx, r.rdb, []string{r.accountKey(account.ID)},
		account.FullName, account.PasswordHash, account.Role,
	).Int64()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if saved == 0 {
		return nil, common.ErrorNotFound
	}

	out := *account
	return &out, nil
}

func (r *RedisRepository) Delete(ctx context.Context, account *models.Account) (bool, error) {
	keys := []string{r.accountKey(account.ID), r.emailKey(account.Email), r.indexKey()}
	deleted, err := deleteAccountLua.Run(ctx, r.rdb, keys, account.ID).Int64()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return deleted == 1, nil
}

func (r *RedisRepository) ListAll(ctx context.Context) ([]*models.Account, error) {
	ids, err := r.rdb.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(ids) == 0 {
		return []*models.Account{}, nil
	}

	pipe := r.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, r.accountKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}

	result := make([]*models.Account, 0, len(ids))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		account, err := accountFromHash(fields)
		if err != nil {
			return nil, err
		}
		result = append(result, account)
	}
	sortAccounts(result)
	return result, nil
}

func accountFromHash(fields map[string]string) (*models.Account, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("bad created_at for account %s: %w", fields["id"], err)
	}
	return &models.Account{
		ID:           fields["id"],
		Email:        fields["email"],
		PasswordHash: fields["hashed_password"],
		FullName:     fields["full_name"],
		Role:         fields["role"],
		CreatedAt:    createdAt,
	}, nil
}
