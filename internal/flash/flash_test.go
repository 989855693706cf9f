package flash

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_Push(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisStore(db, time.Minute)
	ctx := context.Background()

	mock.ExpectSet("flash:u1", []byte(`[{"level":"success","text":"Changes saved!"}]`), time.Minute).SetVal("OK")

	err := s.Push(ctx, "u1", Message{Level: Success, Text: "Changes saved!"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_PushSkipsAnonymousAndEmpty(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisStore(db, time.Minute)
	ctx := context.Background()

	assert.NoError(t, s.Push(ctx, "", Message{Text: "hi"}))
	assert.NoError(t, s.Push(ctx, "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Pop(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisStore(db, time.Minute)
	ctx := context.Background()

	t.Run("pending messages", func(t *testing.T) {
		mock.ExpectGetDel("flash:u1").SetVal(`[{"level":"error","text":"Your evnt was not posted. Try again."}]`)

		msgs, err := s.Pop(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, Error, msgs[0].Level)
		assert.Equal(t, "Your evnt was not posted. Try again.", msgs[0].Text)
	})

	t.Run("nothing pending", func(t *testing.T) {
		mock.ExpectGetDel("flash:u2").RedisNil()

		msgs, err := s.Pop(ctx, "u2")
		assert.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("redis failure", func(t *testing.T) {
		mock.ExpectGetDel("flash:u3").SetErr(errors.New("connection refused"))

		_, err := s.Pop(ctx, "u3")
		assert.Error(t, err)
	})

	t.Run("corrupt payload", func(t *testing.T) {
		mock.ExpectGetDel("flash:u4").SetVal("not json")

		_, err := s.Pop(ctx, "u4")
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiscard(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, Discard.Push(ctx, "u1", Message{Text: "lost"}))
	msgs, err := Discard.Pop(ctx, "u1")
	assert.NoError(t, err)
	assert.Nil(t, msgs)
}
