package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AkshayTiwari27/LiveDocs/config"
	"github.com/AkshayTiwari27/LiveDocs/internal/model"
	"github.com/AkshayTiwari27/LiveDocs/internal/util"
	"github.com/redis/go-redis/v9"
)

type CacheRepository struct {
	client *config.RedisClient
	ttl    time.Duration
}

func NewCacheRepository(rdb *config.RedisClient, ttl time.Duration) *CacheRepository {
	return &CacheRepository{rdb, ttl}
}

func (r *CacheRepository) SetRoomList(ctx context.Context, email string, rooms []model.Room) error {
	data, err := json.Marshal(rooms)
	if err != nil {
		return util.LogError("ошибка сериализации списка комнат", err)
	}

	cmd := r.client.Client.Set(ctx, r.roomListKey(email), data, r.ttl)
	if err = cmd.Err(); err != nil {
		return util.LogError("ошибка сохранения в Redis", err)
	}
	if cmd.Val() != "OK" {
		return fmt.Errorf("неожиданный ответ Redis: %s", cmd.Val())
	}

	return nil
}

func (r *CacheRepository) GetRoomList(ctx context.Context, email string) ([]model.Room, error) {
	val, err := r.client.Client.Get(ctx, r.roomListKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil // нет в кэше
	} else if err != nil {
		return nil, util.LogError("ошибка получения списка комнат из Redis", err)
	}

	var rooms []model.Room
	if err := json.Unmarshal([]byte(val), &rooms); err != nil {
		return nil, util.LogError("ошибка десериализации списка комнат из кэша", err)
	}
	return rooms, nil
}

func (r *CacheRepository) InvalidateRoomList(ctx context.Context, email string) error {
	if err := r.client.Client.Del(ctx, r.roomListKey(email)).Err(); err != nil {
		return util.LogError("ошибка удаления списка комнат из Redis", err)
	}
	return nil
}

// InvalidateAllRoomLists : сбрасывает кэш списков у всех identity
// (аналог revalidatePath("/") — грант или удаление меняет чужие списки)
func (r *CacheRepository) InvalidateAllRoomLists(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Client.Scan(ctx, cursor, "roomlist:*", 100).Result()
		if err != nil {
			return util.LogError("ошибка SCAN по ключам кэша", err)
		}
		if len(keys) > 0 {
			if err := r.client.Client.Del(ctx, keys...).Err(); err != nil {
				return util.LogError("ошибка удаления ключей кэша", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// IncrementUnread : счётчик непрочитанных. Инкремент виден наблюдателям
// до отправки соответствующего broadcast-события.
func (r *CacheRepository) IncrementUnread(ctx context.Context, email string) (int64, error) {
	count, err := r.client.Client.Incr(ctx, r.unreadKey(email)).Result()
	if err != nil {
		return 0, util.LogError("ошибка инкремента счётчика уведомлений", err)
	}
	return count, nil
}

func (r *CacheRepository) UnreadCount(ctx context.Context, email string) (int64, error) {
	val, err := r.client.Client.Get(ctx, r.unreadKey(email)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	} else if err != nil {
		return 0, util.LogError("ошибка чтения счётчика уведомлений", err)
	}
	return val, nil
}

func (r *CacheRepository) ResetUnread(ctx context.Context, email string) error {
	if err := r.client.Client.Del(ctx, r.unreadKey(email)).Err(); err != nil {
		return util.LogError("ошибка сброса счётчика уведомлений", err)
	}
	return nil
}

func (r *CacheRepository) roomListKey(email string) string {
	return fmt.Sprintf("roomlist:%s", email)
}

func (r *CacheRepository) unreadKey(email string) string {
	return fmt.Sprintf("unread:%s", email)
}
