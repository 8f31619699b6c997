package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// SchemaVersion tags every stored cart. Values written under any other
// version are discarded on load.
const SchemaVersion = 1

// Storage is the key-value contract carts are persisted through. Both
// cache implementations satisfy it.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	GenerateKey(operation, key string) string
}

type envelope struct {
	Version int    `json:"version"`
	Items   []Item `json:"items"`
}

type Store struct {
	storage Storage
	ttl     time.Duration
	logger  *zap.Logger
}

func NewStore(storage Storage, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{storage: storage, ttl: ttl, logger: logger}
}

func (s *Store) key(userID int64) string {
	return s.storage.GenerateKey("cart", strconv.FormatInt(userID, 10))
}

// Load returns the user's cart. Missing, corrupt or foreign-version data
// yields an empty cart; only storage failures are errors.
func (s *Store) Load(ctx context.Context, userID int64) (*Cart, error) {
	data, ok, err := s.storage.Get(ctx, s.key(userID))
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if !ok {
		return &Cart{}, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.Warn("discarding unreadable cart", zap.Int64("user_id", userID), zap.Error(err))
		return &Cart{}, nil
	}
	if env.Version != SchemaVersion {
		s.logger.Warn("discarding cart with unknown schema version",
			zap.Int64("user_id", userID),
			zap.Int("version", env.Version))
		return &Cart{}, nil
	}

	return &Cart{Items: env.Items}, nil
}

// Save overwrites the stored cart. Concurrent writers for one user are
// last-write-wins.
func (s *Store) Save(ctx context.Context, userID int64, c *Cart) error {
	items := c.Items
	if items == nil {
		items = []Item{}
	}

	data, err := json.Marshal(envelope{Version: SchemaVersion, Items: items})
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	if err := s.storage.Set(ctx, s.key(userID), data, s.ttl); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Update loads the cart, applies fn and saves the result.
func (s *Store) Update(ctx context.Context, userID int64, fn func(*Cart)) (*Cart, error) {
	c, err := s.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	fn(c)

	if err := s.Save(ctx, userID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) Clear(ctx context.Context, userID int64) error {
	if err := s.storage.Delete(ctx, s.key(userID)); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
