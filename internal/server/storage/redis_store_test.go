package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client)
	return store, mr
}

func TestRedisStore_SaveLoadDeleteRoom(t *testing.T) {
	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	info := &RoomInfoData{
		ID:        "R1",
		Name:      "Friday Night",
		Password:  "secret",
		Capacity:  5,
		HostName:  "Alice",
		CreatedAt: time.Now().Unix(),
	}

	// Save each field independently
	err := store.SaveRoomInfo(ctx, info.ID, info)
	require.NoError(t, err)

	players := []PlayerData{
		{Name: "Alice", Position: 0, IsHost: true, Connected: true},
		{Name: "Bob", Position: 1, Connected: true},
	}
	err = store.SavePlayers(ctx, info.ID, players)
	require.NoError(t, err)

	err = store.SaveReadyStates(ctx, info.ID, map[string]bool{"Alice": true, "Bob": false})
	require.NoError(t, err)

	// Load
	record, err := store.LoadRoom(ctx, info.ID)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "Friday Night", record.Info.Name)
	assert.Equal(t, "Alice", record.Info.HostName)
	assert.Len(t, record.Players, 2)
	assert.True(t, record.Ready["Alice"])
	assert.False(t, record.Ready["Bob"])
	assert.Nil(t, record.Game)

	// Delete
	err = store.DeleteRoom(ctx, info.ID)
	require.NoError(t, err)

	record, err = store.LoadRoom(ctx, info.ID)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestRedisStore_FieldsDoNotClobberEachOther(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	err := store.SaveRoomInfo(ctx, "R2", &RoomInfoData{ID: "R2", Capacity: 6})
	require.NoError(t, err)

	// Writing players must not erase the info field
	err = store.SavePlayers(ctx, "R2", []PlayerData{{Name: "Carol", Connected: true}})
	require.NoError(t, err)

	record, err := store.LoadRoom(ctx, "R2")
	require.NoError(t, err)
	require.NotNil(t, record.Info)
	assert.Equal(t, 6, record.Info.Capacity)
	assert.Len(t, record.Players, 1)
}

func TestRedisStore_GameStateRoundTrip(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	require.NoError(t, store.SaveRoomInfo(ctx, "R3", &RoomInfoData{ID: "R3", Capacity: 5}))

	snapshot, _ := json.Marshal(map[string]any{"isDay": true, "voteCount": 3})
	err := store.SaveGameState(ctx, "R3", snapshot)
	require.NoError(t, err)

	record, err := store.LoadRoom(ctx, "R3")
	require.NoError(t, err)
	assert.JSONEq(t, string(snapshot), string(record.Game))

	// Restart clears only the game field
	err = store.DeleteGameState(ctx, "R3")
	require.NoError(t, err)

	record, err = store.LoadRoom(ctx, "R3")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Nil(t, record.Game)
}

func TestRedisStore_RoomIDs(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, store.SaveRoomInfo(ctx, id, &RoomInfoData{ID: id}))
	}

	ids, err := store.RoomIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, ids)
}
