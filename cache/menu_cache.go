package cache

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"LittleLemon/models"

	"github.com/redis/go-redis/v9"
)

const MenuKey = "menu-items"

// MenuCache stores the menu in a Redis sorted set. Each member is the JSON of
// one menu item and its score is the item id, so rank order is id order.
type MenuCache struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewMenuCache returns a cache on rdb. A zero ttl keeps the set until it is invalidated.
func NewMenuCache(rdb *redis.Client, ttl time.Duration) *MenuCache {
	return &MenuCache{rdb: rdb, key: MenuKey, ttl: ttl}
}

func (c *MenuCache) Page(ctx context.Context, offset, limit int) ([]models.MenuItem, int64, error) {
	total, err := c.rdb.ZCard(ctx, c.key).Result()
	if err != nil || total == 0 {
		return nil, 0, err
	}

	members, err := c.rdb.ZRange(ctx, c.key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, 0, err
	}

	items := make([]models.MenuItem, 0, len(members))
	for _, member := range members {
		var item models.MenuItem
		if err := json.Unmarshal([]byte(member), &item); err != nil {
			log.Printf("cannot decode cached menu item: %v", err)
			continue
		}
		items = append(items, item)
	}
	return items, total, nil
}

// Fill replaces the cached menu with items.
func (c *MenuCache) Fill(ctx context.Context, items []models.MenuItem) error {
	members := make([]redis.Z, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return err
		}
		members = append(members, redis.Z{Score: float64(item.ID), Member: data})
	}

	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.key)
		if len(members) == 0 {
			return nil
		}
		pipe.ZAdd(ctx, c.key, members...)
		if c.ttl > 0 {
			pipe.Expire(ctx, c.key, c.ttl)
		}
		return nil
	})
	return err
}

// Put replaces the member scored item.ID. A cold cache is left cold so the
// next read fills it with the whole menu.
func (c *MenuCache) Put(ctx context.Context, item models.MenuItem) error {
	n, err := c.rdb.Exists(ctx, c.key).Result()
	if err != nil || n == 0 {
		return err
	}

	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	score := strconv.FormatUint(uint64(item.ID), 10)
	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, c.key, score, score)
		pipe.ZAdd(ctx, c.key, redis.Z{Score: float64(item.ID), Member: data})
		return nil
	})
	return err
}

func (c *MenuCache) Remove(ctx context.Context, id uint) error {
	score := strconv.FormatUint(uint64(id), 10)
	return c.rdb.ZRemRangeByScore(ctx, c.key, score, score).Err()
}

func (c *MenuCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, c.key).Err()
}
