package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/nlquery/internal/activity"
	"github.com/matthewbaird/nlquery/internal/intent"
	"github.com/matthewbaird/nlquery/internal/keyword"
)

type capture struct{ events []ParseEvent }

func (c *capture) Publish(_ context.Context, evt ParseEvent) { c.events = append(c.events, evt) }

func TestNewQueryParsed(t *testing.T) {
	in := &intent.Query{Index: "users", Condition: intent.Leaf("年龄", keyword.OpGT, int64(18))}
	evt := NewQueryParsed(QueryParsedPayload{Query: "查users年龄大于18", Intent: in, Tokens: 3, Duration: 2 * time.Millisecond})

	assert.Equal(t, TypeQueryParsed, evt.EventType)
	assert.Equal(t, "query", evt.Kind)
	assert.Equal(t, "users", evt.Index)
	assert.False(t, evt.Failed())
	assert.NotEmpty(t, evt.ID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))
	assert.Equal(t, "查users年龄大于18", payload["query"])
	assert.Contains(t, payload["intent"], "condition")
}

func TestNewQueryFailed(t *testing.T) {
	evt := NewQueryFailed(QueryFailedPayload{Query: "年龄大于", ErrorType: "MISSING_VALUE", Position: 2, Message: "x"})
	assert.True(t, evt.Failed())
	assert.Equal(t, TypeQueryFailed, evt.EventType)
	assert.Contains(t, evt.Summary, "MISSING_VALUE")
}

func TestClip(t *testing.T) {
	assert.Equal(t, "短", clip("短"))
	long := "一二三四五六七八九十一二三四五六七八九十一二三四五六七八九十一二三四五"
	assert.Equal(t, 33, len([]rune(clip(long))))
}

func TestActivityRecorder_Record(t *testing.T) {
	ctx := context.Background()
	store := activity.NewMemoryStore()
	bus := &capture{}
	r := NewActivityRecorder(store)
	r.SetPublisher(bus)

	evt := NewQueryTranslated(QueryTranslatedPayload{Query: "年龄大于18", Target: "es", Kind: "query", Duration: 1500 * time.Microsecond})
	require.NoError(t, r.Record(ctx, evt))

	entries, _, total, err := store.Recent(ctx, activity.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, evt.ID, entries[0].EventID)
	assert.Equal(t, 1.5, entries[0].DurationMS)
	require.Len(t, bus.events, 1)
	assert.Equal(t, TypeQueryTranslated, bus.events[0].EventType)
}
