package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/internal/domain/shipment"
	"github.com/redis/go-redis/v9"
)

var _ repository.DraftRepository = (*DraftRepo)(nil)

// KV subconjunto de redis.Cmdable usado por el almacén.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	SAdd(ctx context.Context, key string, members ...any) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...any) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// DraftRepo guarda cada borrador como JSON bajo "<prefix>:<tipo>:<id>" con TTL.
// Los asistentes de cada usuario se indexan en el set "<prefix>:user:<id>:wizards".
type DraftRepo struct {
	kv     KV
	prefix string
	ttl    time.Duration
}

// NewClient abre el cliente a partir de una URL redis:// o de host:puerto.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	var opt *redis.Options
	if parsed, err := redis.ParseURL(addr); err == nil {
		opt = parsed
	} else {
		opt = &redis.Options{Addr: addr, Password: password, DB: db}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// NewDraftRepository construye el almacén. ttl <= 0 guarda sin expiración.
func NewDraftRepository(kv KV, prefix string, ttl time.Duration) *DraftRepo {
	if prefix == "" {
		prefix = "drafts"
	}
	if ttl < 0 {
		ttl = 0
	}
	return &DraftRepo{kv: kv, prefix: prefix, ttl: ttl}
}

func (r *DraftRepo) key(kind, id string) string {
	return r.prefix + ":" + kind + ":" + id
}

func (r *DraftRepo) put(ctx context.Context, kind, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("serializar borrador: %w", err)
	}
	if err := r.kv.Set(ctx, r.key(kind, id), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", kind, err)
	}
	return nil
}

func (r *DraftRepo) get(ctx context.Context, kind, id string, v any) (bool, error) {
	data, err := r.kv.Get(ctx, r.key(kind, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", kind, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("leer borrador: %w", err)
	}
	return true, nil
}

func (r *DraftRepo) del(ctx context.Context, kind, id string) error {
	if err := r.kv.Del(ctx, r.key(kind, id)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", kind, err)
	}
	return nil
}

func (r *DraftRepo) userKey(userID string) string {
	return r.prefix + ":user:" + userID + ":wizards"
}

func (r *DraftRepo) SaveWizard(ctx context.Context, state *entity.WizardState) error {
	if err := r.put(ctx, "wizard", state.ID, state); err != nil {
		return err
	}
	uk := r.userKey(state.UserID)
	if err := r.kv.SAdd(ctx, uk, state.ID).Err(); err != nil {
		return fmt.Errorf("redis sadd: %w", err)
	}
	if r.ttl > 0 {
		if err := r.kv.Expire(ctx, uk, r.ttl).Err(); err != nil {
			return fmt.Errorf("redis expire: %w", err)
		}
	}
	return nil
}

func (r *DraftRepo) GetWizard(ctx context.Context, id string) (*entity.WizardState, error) {
	var st entity.WizardState
	ok, err := r.get(ctx, "wizard", id, &st)
	if err != nil || !ok {
		return nil, err
	}
	return &st, nil
}

func (r *DraftRepo) DeleteWizard(ctx context.Context, id string) error {
	st, err := r.GetWizard(ctx, id)
	if err != nil {
		return err
	}
	if err := r.del(ctx, "wizard", id); err != nil {
		return err
	}
	if st != nil {
		if err := r.kv.SRem(ctx, r.userKey(st.UserID), id).Err(); err != nil {
			return fmt.Errorf("redis srem: %w", err)
		}
	}
	return nil
}

// ListWizards recorre el índice del usuario; los ids cuyo borrador ya venció se limpian del set.
func (r *DraftRepo) ListWizards(ctx context.Context, userID string) ([]entity.DraftSummary, error) {
	uk := r.userKey(userID)
	ids, err := r.kv.SMembers(ctx, uk).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	list := []entity.DraftSummary{}
	var stale []any
	for _, id := range ids {
		st, err := r.GetWizard(ctx, id)
		if err != nil {
			return nil, err
		}
		if st == nil || st.UserID != userID {
			stale = append(stale, id)
			continue
		}
		list = append(list, entity.DraftSummary{
			ID:         st.ID,
			RefCode:    st.Draft.RefCode,
			Step:       st.Step,
			TotalValue: shipment.DraftTotals(st.Draft).Value.Round(2),
			UpdatedAt:  st.UpdatedAt,
		})
	}
	if len(stale) > 0 {
		if err := r.kv.SRem(ctx, uk, stale...).Err(); err != nil {
			return nil, fmt.Errorf("redis srem: %w", err)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return list, nil
}

func (r *DraftRepo) SaveEdit(ctx context.Context, state *entity.EditState) error {
	return r.put(ctx, "edit", state.ID, state)
}

func (r *DraftRepo) GetEdit(ctx context.Context, id string) (*entity.EditState, error) {
	var st entity.EditState
	ok, err := r.get(ctx, "edit", id, &st)
	if err != nil || !ok {
		return nil, err
	}
	return &st, nil
}

func (r *DraftRepo) DeleteEdit(ctx context.Context, id string) error {
	return r.del(ctx, "edit", id)
}
