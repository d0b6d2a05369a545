package redisstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/redisstore"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKV struct {
	data map[string][]byte
	sets map[string]map[string]bool
	ttls map[string]time.Duration
	err  error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}, sets: map[string]map[string]bool{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) SAdd(_ context.Context, key string, members ...any) *redis.IntCmd {
	if f.sets[key] == nil {
		f.sets[key] = map[string]bool{}
	}
	for _, m := range members {
		f.sets[key][m.(string)] = true
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (f *fakeKV) SRem(_ context.Context, key string, members ...any) *redis.IntCmd {
	for _, m := range members {
		delete(f.sets[key], m.(string))
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (f *fakeKV) SMembers(_ context.Context, key string) *redis.StringSliceCmd {
	var out []string
	for m := range f.sets[key] {
		out = append(out, m)
	}
	return redis.NewStringSliceResult(out, nil)
}

func (f *fakeKV) Expire(_ context.Context, key string, exp time.Duration) *redis.BoolCmd {
	f.ttls[key] = exp
	return redis.NewBoolResult(true, nil)
}

func (f *fakeKV) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeKV) Set(_ context.Context, key string, value any, exp time.Duration) *redis.StatusCmd {
	f.data[key] = value.([]byte)
	f.ttls[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeKV) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestDraftRepo_GuardaConTTLYLee(t *testing.T) {
	kv := newFakeKV()
	repo := redisstore.NewDraftRepository(kv, "logistica", 30*time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.SaveWizard(ctx, &entity.WizardState{ID: "w1", UserID: "u1", Step: 1}))
	assert.Equal(t, 30*time.Minute, kv.ttls["logistica:wizard:w1"])

	st, err := repo.GetWizard(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, 1, st.Step)

	require.NoError(t, repo.DeleteWizard(ctx, "w1"))
	st, err = repo.GetWizard(ctx, "w1")
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestDraftRepo_EdicionInexistente(t *testing.T) {
	repo := redisstore.NewDraftRepository(newFakeKV(), "", 0)
	st, err := repo.GetEdit(context.Background(), "nada")
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestDraftRepo_SesionesSeparadasPorTipo(t *testing.T) {
	kv := newFakeKV()
	repo := redisstore.NewDraftRepository(kv, "", 0)
	ctx := context.Background()

	require.NoError(t, repo.SaveEdit(ctx, &entity.EditState{ID: "x", ShipmentID: "sh-1"}))
	w, err := repo.GetWizard(ctx, "x")
	require.NoError(t, err)
	assert.Nil(t, w)

	e, err := repo.GetEdit(ctx, "x")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "sh-1", e.ShipmentID)
	assert.Contains(t, kv.data, "drafts:edit:x")
}

func TestDraftRepo_ErrorDeRedis(t *testing.T) {
	kv := newFakeKV()
	kv.err = errors.New("connection refused")
	repo := redisstore.NewDraftRepository(kv, "", 0)
	_, err := repo.GetEdit(context.Background(), "x")
	assert.ErrorContains(t, err, "connection refused")
}

func TestDraftRepo_ListWizardsUsaIndiceDelUsuario(t *testing.T) {
	kv := newFakeKV()
	repo := redisstore.NewDraftRepository(kv, "logistica", time.Hour)
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveWizard(ctx, &entity.WizardState{
		ID: "a", UserID: "u1", UpdatedAt: t0,
		Draft: entity.ShipmentDraft{RefCode: "REF-A", Items: []entity.ManualItem{
			{ID: "i1", Description: "caja", Quantity: 4, TotalWeight: decimal.NewFromInt(1), UnitValue: decimal.NewFromInt(5)},
		}},
	}))
	require.NoError(t, repo.SaveWizard(ctx, &entity.WizardState{ID: "b", UserID: "u1", UpdatedAt: t0.Add(time.Minute)}))
	require.NoError(t, repo.SaveWizard(ctx, &entity.WizardState{ID: "c", UserID: "u2", UpdatedAt: t0}))
	assert.Equal(t, time.Hour, kv.ttls["logistica:user:u1:wizards"])

	// vencido en Redis: la clave desaparece pero el índice conserva el id
	delete(kv.data, "logistica:wizard:b")

	list, err := repo.ListWizards(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "REF-A", list[0].RefCode)
	assert.True(t, decimal.NewFromInt(20).Equal(list[0].TotalValue))
	assert.NotContains(t, kv.sets["logistica:user:u1:wizards"], "b", "los ids vencidos se limpian del índice")

	require.NoError(t, repo.DeleteWizard(ctx, "a"))
	assert.Empty(t, kv.sets["logistica:user:u1:wizards"])
}
