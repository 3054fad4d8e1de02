// internal/store/conversation_test.go
package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaiffMoh/FastTravelGraph/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func setupRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func msg(role, content string) models.Message {
	return models.Message{Role: role, Content: content}
}

// ==========================
// Memory Store Tests
// ==========================

func TestMemoryConversationStore_SeedsSystemPrompt(t *testing.T) {
	s := NewMemoryConversationStore()
	ctx := context.Background()

	err := s.Append(ctx, "thread-1", msg("user", "I want to fly to Paris"))
	require.NoError(t, err)

	history, err := s.Get(ctx, "thread-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "system", history[0].Role)
	assert.Equal(t, models.SystemPrompt, history[0].Content)
	assert.Equal(t, "user", history[1].Role)
	assert.Equal(t, "I want to fly to Paris", history[1].Content)
}

func TestMemoryConversationStore_PreservesOrder(t *testing.T) {
	s := NewMemoryConversationStore()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "thread-1", msg("user", "first")))
	require.NoError(t, s.Append(ctx, "thread-1", msg("assistant", "second")))
	require.NoError(t, s.Append(ctx, "thread-1", msg("user", "third")))

	history, err := s.Get(ctx, "thread-1")
	require.NoError(t, err)
	require.Len(t, history, 4) // system prompt + 3 messages
	assert.Equal(t, "first", history[1].Content)
	assert.Equal(t, "second", history[2].Content)
	assert.Equal(t, "third", history[3].Content)
}

func TestMemoryConversationStore_KeepsMessageKind(t *testing.T) {
	s := NewMemoryConversationStore()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "thread-1", msg("user", "fly me somewhere")))
	require.NoError(t, s.Append(ctx, "thread-1", models.Message{
		Role:    "assistant",
		Content: "Which city are you flying from?",
		Kind:    string(models.TurnQuestion),
	}))

	history, err := s.Get(ctx, "thread-1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Empty(t, history[1].Kind)
	assert.Equal(t, string(models.TurnQuestion), history[2].Kind)
}

func TestMemoryConversationStore_ThreadsAreIsolated(t *testing.T) {
	s := NewMemoryConversationStore()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "thread-a", msg("user", "hello from a")))
	require.NoError(t, s.Append(ctx, "thread-b", msg("user", "hello from b")))

	historyA, err := s.Get(ctx, "thread-a")
	require.NoError(t, err)
	historyB, err := s.Get(ctx, "thread-b")
	require.NoError(t, err)

	assert.Equal(t, "hello from a", historyA[1].Content)
	assert.Equal(t, "hello from b", historyB[1].Content)
}

func TestMemoryConversationStore_Clear(t *testing.T) {
	s := NewMemoryConversationStore()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "thread-1", msg("user", "hello")))
	require.NoError(t, s.Clear(ctx, "thread-1"))

	history, err := s.Get(ctx, "thread-1")
	require.NoError(t, err)
	assert.Empty(t, history)

	// The next append re-seeds the system prompt.
	require.NoError(t, s.Append(ctx, "thread-1", msg("user", "again")))
	history, err = s.Get(ctx, "thread-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "system", history[0].Role)
}

// ==========================
// Redis Store Tests
// ==========================

func TestRedisConversationStore_SeedsSystemPrompt(t *testing.T) {
	client := setupRedis(t)
	s := NewRedisConversationStore(client)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "thread-1", msg("user", "book me a flight")))

	history, err := s.Get(ctx, "thread-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "system", history[0].Role)
	assert.Equal(t, models.SystemPrompt, history[0].Content)
	assert.Equal(t, "book me a flight", history[1].Content)
}

func TestRedisConversationStore_SeedsOnlyOnce(t *testing.T) {
	client := setupRedis(t)
	s := NewRedisConversationStore(client)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "thread-1", msg("user", "one")))
	require.NoError(t, s.Append(ctx, "thread-1", msg("assistant", "two")))

	history, err := s.Get(ctx, "thread-1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "system", history[0].Role)
	assert.Equal(t, "one", history[1].Content)
	assert.Equal(t, "two", history[2].Content)
}

func TestRedisConversationStore_KeepsMessageKind(t *testing.T) {
	client := setupRedis(t)
	s := NewRedisConversationStore(client)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "thread-1", msg("user", "one")))
	require.NoError(t, s.Append(ctx, "thread-1", models.Message{
		Role:    "assistant",
		Content: "Here are your flights",
		Kind:    string(models.TurnResults),
	}))

	history, err := s.Get(ctx, "thread-1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, string(models.TurnResults), history[2].Kind)
}

func TestRedisConversationStore_GetMissingThread(t *testing.T) {
	client := setupRedis(t)
	s := NewRedisConversationStore(client)

	history, err := s.Get(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRedisConversationStore_Clear(t *testing.T) {
	client := setupRedis(t)
	s := NewRedisConversationStore(client)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "thread-1", msg("user", "hello")))
	require.NoError(t, s.Clear(ctx, "thread-1"))

	history, err := s.Get(ctx, "thread-1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

// ==========================
// Postgres Store Tests
// ==========================

func TestPostgresConversationStore_AppendSeedsFirstMessage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewPostgresConversationStore(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM conversation_messages`).
		WithArgs("thread-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO conversation_messages`).
		WithArgs("thread-1", "system", models.SystemPrompt, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO conversation_messages`).
		WithArgs("thread-1", "user", "find flights", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))

	require.NoError(t, s.Append(ctx, "thread-1", msg("user", "find flights")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresConversationStore_AppendSkipsSeedWhenHistoryExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewPostgresConversationStore(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM conversation_messages`).
		WithArgs("thread-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectExec(`INSERT INTO conversation_messages`).
		WithArgs("thread-1", "assistant", "Which city?", string(models.TurnQuestion), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(4, 1))

	appended := models.Message{Role: "assistant", Content: "Which city?", Kind: string(models.TurnQuestion)}
	require.NoError(t, s.Append(context.Background(), "thread-1", appended))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresConversationStore_GetReturnsOrderedHistory(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewPostgresConversationStore(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"role", "content", "kind", "created_at"}).
		AddRow("system", models.SystemPrompt, "", now).
		AddRow("user", "flights to Rome", "", now).
		AddRow("assistant", "When would you like to leave?", string(models.TurnQuestion), now)
	mock.ExpectQuery(`SELECT role, content, kind, created_at FROM conversation_messages`).
		WithArgs("thread-1").
		WillReturnRows(rows)

	history, err := s.Get(context.Background(), "thread-1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "user", history[1].Role)
	assert.Equal(t, "flights to Rome", history[1].Content)
	assert.Equal(t, string(models.TurnQuestion), history[2].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresConversationStore_Clear(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewPostgresConversationStore(db)

	mock.ExpectExec(`DELETE FROM conversation_messages`).
		WithArgs("thread-1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, s.Clear(context.Background(), "thread-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
