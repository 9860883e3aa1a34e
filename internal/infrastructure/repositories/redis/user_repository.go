package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"camlive/internal/core/domain"
	"camlive/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// RedisUserRepository is the credential store backed by Redis. Each
// user is a hash: profile JSON in one field, the password hash and the
// token version as separate fields so the version can be bumped with
// HINCRBY, Redis's native atomic read-modify-write. Secondary keys
// index email and username lookups.
type RedisUserRepository struct {
	client *redis.Client
	prefix string
}

const (
	fieldData     = "data"
	fieldPassword = "password_hash"
	fieldVersion  = "token_version"
)

func NewRedisUserRepository(client *redis.Client) ports.UserRepository {
	return &RedisUserRepository{
		client: client,
		prefix: "camlive:user:",
	}
}

func (r *RedisUserRepository) userKey(id domain.UserID) string {
	return r.prefix + string(id)
}

func (r *RedisUserRepository) emailKey(email string) string {
	return r.prefix + "email:" + strings.ToLower(email)
}

func (r *RedisUserRepository) usernameKey(username string) string {
	return r.prefix + "username:" + username
}

func (r *RedisUserRepository) indexKey() string {
	return r.prefix + "all"
}

func (r *RedisUserRepository) Create(ctx context.Context, user *domain.User) error {
	// Claim the unique indexes first; SETNX loses cleanly on duplicates.
	ok, err := r.client.SetNX(ctx, r.emailKey(user.Email), string(user.ID), 0).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve email index: %w", err)
	}
	if !ok {
		return domain.ErrEmailTaken
	}

	ok, err = r.client.SetNX(ctx, r.usernameKey(user.Username), string(user.ID), 0).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve username index: %w", err)
	}
	if !ok {
		r.client.Del(ctx, r.emailKey(user.Email))
		return domain.ErrUsernameTaken
	}

	data, err := marshalUser(user)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, r.userKey(user.ID),
		fieldData, data,
		fieldPassword, user.PasswordHash,
		fieldVersion, user.TokenVersion,
	)
	pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: float64(user.CreatedAt.UnixNano()), Member: string(user.ID)})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}
	return nil
}

func (r *RedisUserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	vals, err := r.client.HMGet(ctx, r.userKey(id), fieldData, fieldPassword, fieldVersion).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Redis: %w", err)
	}
	if vals[0] == nil {
		return nil, domain.ErrUserNotFound
	}

	user, err := unmarshalUser(vals[0].(string))
	if err != nil {
		return nil, err
	}
	if hash, ok := vals[1].(string); ok {
		user.PasswordHash = hash
	}
	if versionStr, ok := vals[2].(string); ok {
		version, err := strconv.Atoi(versionStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt token version for user %s: %w", id, err)
		}
		user.TokenVersion = version
	}
	return user, nil
}

func (r *RedisUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	id, err := r.client.Get(ctx, r.emailKey(email)).Result()
	if err == redis.Nil {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve email index: %w", err)
	}
	return r.GetByID(ctx, domain.UserID(id))
}

func (r *RedisUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	id, err := r.client.Get(ctx, r.usernameKey(username)).Result()
	if err == redis.Nil {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve username index: %w", err)
	}
	return r.GetByID(ctx, domain.UserID(id))
}

// Update rewrites profile data only; password hash and token version
// are owned by UpdatePassword and IncrementTokenVersion.
func (r *RedisUserRepository) Update(ctx context.Context, user *domain.User) error {
	exists, err := r.client.Exists(ctx, r.userKey(user.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists == 0 {
		return domain.ErrUserNotFound
	}

	data, err := marshalUser(user)
	if err != nil {
		return err
	}
	if err := r.client.HSet(ctx, r.userKey(user.ID), fieldData, data).Err(); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *RedisUserRepository) Delete(ctx context.Context, id domain.UserID) error {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.userKey(id))
	pipe.Del(ctx, r.emailKey(user.Email))
	pipe.Del(ctx, r.usernameKey(user.Username))
	pipe.ZRem(ctx, r.indexKey(), string(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (r *RedisUserRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(offset + limit - 1)
	}
	ids, err := r.client.ZRange(ctx, r.indexKey(), int64(offset), stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		user, err := r.GetByID(ctx, domain.UserID(id))
		if err == domain.ErrUserNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *RedisUserRepository) IncrementTokenVersion(ctx context.Context, id domain.UserID) (int, error) {
	exists, err := r.client.Exists(ctx, r.userKey(id)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists == 0 {
		return 0, domain.ErrUserNotFound
	}

	version, err := r.client.HIncrBy(ctx, r.userKey(id), fieldVersion, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment token version: %w", err)
	}
	return int(version), nil
}

func (r *RedisUserRepository) UpdatePassword(ctx context.Context, id domain.UserID, passwordHash string) (int, error) {
	exists, err := r.client.Exists(ctx, r.userKey(id)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists == 0 {
		return 0, domain.ErrUserNotFound
	}

	// Hash write and version bump execute in one MULTI/EXEC so no token
	// minted under the old version can outlive the password change.
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, r.userKey(id), fieldPassword, passwordHash)
	incr := pipe.HIncrBy(ctx, r.userKey(id), fieldVersion, 1)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to update password: %w", err)
	}
	return int(incr.Val()), nil
}

// marshalUser serializes profile fields; the password hash and token
// version are excluded by their json tags and live in their own hash
// fields.
func marshalUser(user *domain.User) (string, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("failed to marshal user: %w", err)
	}
	return string(data), nil
}

func unmarshalUser(data string) (*domain.User, error) {
	var user domain.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}
