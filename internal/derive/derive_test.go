package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseDoc() map[string]any {
	return map[string]any{
		"meta": map[string]any{
			"schema":        "solarflow.hive_state.v1",
			"schemaVersion": 1.0,
			"updatedAt":     "2024-01-03T00:00:00Z",
		},
		"world": map[string]any{
			"max_minions": 20.0,
			"health":      map[string]any{"virtual_voltage": 0.8, "entropy": 0.2, "loop_risk": 0.1, "paused": true},
		},
		"minions": map[string]any{"roster": []any{
			map[string]any{"id": "BOLT", "avatar_url": "./avatars/bolt.png"},
		}},
	}
}

func feedScenario() map[string]any {
	doc := baseDoc()
	doc["agora"] = map[string]any{"messages": []any{
		map[string]any{"sender_id": "bolt", "timestamp": "2024-01-01T00:00:00Z", "intent": "HELLO", "payload": "hi"},
	}}
	doc["activities"] = map[string]any{"feed_posts": []any{
		map[string]any{"who": "ANNOUNCE", "when": "2024-01-01T12:00:00Z", "text": "curated"},
	}}
	doc["ledger"] = map[string]any{"transactions": []any{
		map[string]any{"id": "t1", "timestamp": "2024-01-02T00:00:00Z", "from": "ATLAS", "to": "BOLT", "amount": 5.0, "memo": "thanks"},
	}}
	return doc
}

func TestDerive_FeedOrdering(t *testing.T) {
	for _, order := range []FeedOrder{FeedOrderLegacy, FeedOrderStrict} {
		t.Run(string(order), func(t *testing.T) {
			opts := DefaultOptions()
			opts.FeedOrder = order

			feed := Derive(feedScenario(), opts).FeedItems

			require.Len(t, feed, 3)
			assert.Equal(t, "TXN", feed[0].Topic)
			assert.Equal(t, "curated", feed[1].Text)
			assert.Equal(t, "HELLO", feed[2].Topic)
		})
	}
}

func TestDerive_FeedProjection(t *testing.T) {
	feed := Derive(feedScenario(), DefaultOptions()).FeedItems
	require.Len(t, feed, 3)

	assert.Equal(t, FeedItem{
		ID:        "txn-t1",
		Who:       "LEDGER",
		AvatarURL: LedgerAvatar,
		When:      "2024-01-02 00:00Z",
		Topic:     "TXN",
		Status:    "done",
		Text:      "ATLAS → BOLT • 5 • thanks",
	}, feed[0])

	assert.Equal(t, FeedItem{
		ID:        "curated-ANNOUNCE-2024-01-01T12:00:00Z",
		Who:       "ANNOUNCE",
		AvatarURL: DefaultAvatar,
		When:      "2024-01-01T12:00:00Z",
		Topic:     "ANNOUNCEMENT",
		Status:    "update",
		Text:      "curated",
	}, feed[1])

	assert.Equal(t, FeedItem{
		ID:        "agora-bolt-2024-01-01T00:00:00Z",
		Who:       "bolt",
		AvatarURL: "./avatars/bolt.png",
		When:      "2024-01-01 00:00Z",
		Topic:     "HELLO",
		Status:    "update",
		Text:      "hi",
	}, feed[2])
}

func TestDerive_AvatarResolution(t *testing.T) {
	doc := baseDoc()
	doc["minions"] = map[string]any{"roster": []any{
		map[string]any{"id": "BOLT", "avatar_url": "./avatars/bolt-custom.png"},
		map[string]any{"id": "NOVA"},
	}}
	doc["agora"] = map[string]any{"messages": []any{
		map[string]any{"sender_id": "bolt", "timestamp": "2024-01-01T00:00:00Z"},
		map[string]any{"sender_id": "nova", "timestamp": "2024-01-01T00:00:01Z"},
		map[string]any{"sender_id": "ghost", "timestamp": "2024-01-01T00:00:02Z"},
	}}

	feed := Derive(doc, DefaultOptions()).FeedItems
	byWho := map[string]string{}
	for _, it := range feed {
		byWho[it.Who] = it.AvatarURL
	}

	assert.Equal(t, "./avatars/bolt-custom.png", byWho["bolt"])
	assert.Equal(t, DefaultAvatar, byWho["nova"], "roster match without avatar")
	assert.Equal(t, DefaultAvatar, byWho["ghost"], "no roster match")
}

func TestDerive_CuratedDefaults(t *testing.T) {
	doc := baseDoc()
	doc["activities"] = map[string]any{"feed_posts": []any{
		map[string]any{"who": "BOLT", "text": "hello"},
		map[string]any{},
	}}

	feed := Derive(doc, DefaultOptions()).FeedItems
	require.Len(t, feed, 2)

	for _, it := range feed {
		assert.Equal(t, "2024-01-03 00:00Z", it.When, "missing when falls back to meta.updatedAt")
		assert.Equal(t, "ANNOUNCEMENT", it.Topic)
		assert.Equal(t, "update", it.Status)
	}
	assert.Equal(t, "BOLT", feed[0].Who)
	assert.Equal(t, "./avatars/bolt.png", feed[0].AvatarURL)
	assert.Equal(t, "curated-BOLT-0", feed[0].ID)
	assert.Equal(t, "ANNOUNCE", feed[1].Who)
	assert.Equal(t, "curated-ANNOUNCE-1", feed[1].ID)
}

func TestDerive_StrictOrderDiverges(t *testing.T) {
	doc := baseDoc()
	doc["agora"] = map[string]any{"messages": []any{
		map[string]any{"sender_id": "BOLT", "timestamp": "2024-01-01T10:00:00Z", "payload": "later"},
	}}
	doc["activities"] = map[string]any{"feed_posts": []any{
		map[string]any{"when": "2024-01-01T09:00:00Z", "text": "earlier"},
		map[string]any{"when": "not a time", "text": "unparseable"},
	}}

	legacy := Derive(doc, DefaultOptions()).FeedItems
	assert.Equal(t, []string{"unparseable", "earlier", "later"}, texts(legacy))

	strict := Derive(doc, Options{FeedOrder: FeedOrderStrict, PreviewSize: 12}).FeedItems
	assert.Equal(t, []string{"later", "earlier", "unparseable"}, texts(strict))
}

func TestDerive_FeedTiesKeepInsertionOrder(t *testing.T) {
	doc := baseDoc()
	doc["agora"] = map[string]any{"messages": []any{
		map[string]any{"sender_id": "A", "timestamp": "2024-01-01T00:00:00Z", "payload": "first"},
		map[string]any{"sender_id": "B", "timestamp": "2024-01-01T00:00:30Z", "payload": "second"},
	}}

	feed := Derive(doc, DefaultOptions()).FeedItems

	// both collapse to the same minute-resolution stamp
	assert.Equal(t, []string{"first", "second"}, texts(feed))
}

func TestDerive_RosterOrdering(t *testing.T) {
	doc := baseDoc()
	doc["minions"] = map[string]any{"roster": []any{
		map[string]any{"id": "nova"},
		map[string]any{"id": "BOLT"},
		map[string]any{"id": "ATLAS"},
		map[string]any{"id": "Zed"},
	}}

	state := Derive(doc, Options{FeedOrder: FeedOrderLegacy, PreviewSize: 2})

	ids := make([]string, 0, len(state.RosterFull))
	for _, m := range state.RosterFull {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"ATLAS", "BOLT", "Zed", "nova"}, ids, "case-sensitive ascending")
	require.Len(t, state.RosterPreview, 2)
	assert.Equal(t, "ATLAS", state.RosterPreview[0].ID)
	assert.Equal(t, "BOLT", state.RosterPreview[1].ID)
}

func TestDerive_RosterStableOnDuplicates(t *testing.T) {
	doc := baseDoc()
	doc["minions"] = map[string]any{"roster": []any{
		map[string]any{"id": "B", "role": "first"},
		map[string]any{"id": "A"},
		map[string]any{"id": "B", "role": "second"},
	}}

	state := Derive(doc, DefaultOptions())

	require.Len(t, state.RosterFull, 3)
	assert.Equal(t, "first", state.RosterFull[1].Role)
	assert.Equal(t, "second", state.RosterFull[2].Role)
	assert.NotEmpty(t, state.Errors, "duplicate id is carried, not raised")
}

func TestDerive_TaskOrdering(t *testing.T) {
	doc := baseDoc()
	doc["tasks"] = map[string]any{"board": []any{
		map[string]any{"id": "T2", "title": "b"},
		map[string]any{"title": "Polish"},
		map[string]any{"id": "T1", "title": "z"},
		map[string]any{"title": "Audit"},
	}}

	tasks := Derive(doc, DefaultOptions()).Tasks

	var keys []string
	for _, task := range tasks {
		if task.ID != "" {
			keys = append(keys, task.ID)
		} else {
			keys = append(keys, task.Title)
		}
	}
	assert.Equal(t, []string{"Audit", "Polish", "T1", "T2"}, keys)
}

func TestDerive_MetersAndPassThrough(t *testing.T) {
	doc := baseDoc()
	doc["covenant"] = map[string]any{"five_articles": []any{map[string]any{"id": "I", "title": "One"}}}
	doc["agora"] = map[string]any{"mode": "LIVE", "notes": "n"}

	state := Derive(doc, DefaultOptions())

	assert.Equal(t, Meters{VirtualVoltage: 0.8, Entropy: 0.2, LoopRisk: 0.1}, state.Meters)
	assert.True(t, state.HealthStatus.Paused)
	assert.Equal(t, "2024-01-03T00:00:00Z", state.LastUpdated)
	assert.Equal(t, "LIVE", state.Agora.Mode)
	require.Len(t, state.Covenant.FiveArticles, 1)
	assert.Equal(t, "One", state.Covenant.FiveArticles[0].Title)
	assert.Empty(t, state.Errors)
	assert.Empty(t, state.Warnings)
}

func TestDerive_Deterministic(t *testing.T) {
	doc := feedScenario()
	doc["agora"].(map[string]any)["messages"] = append(doc["agora"].(map[string]any)["messages"].([]any),
		map[string]any{"sender_id": "X", "intent": "CUSTOM", "payload": map[string]any{"z": 1.0, "a": []any{"<b>"}}})

	a := Derive(doc, DefaultOptions())
	b := Derive(doc, DefaultOptions())

	assert.Equal(t, a, b)
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())
	assert.Error(t, Options{FeedOrder: "random"}.Validate())
	assert.Error(t, Options{FeedOrder: FeedOrderStrict, PreviewSize: -1}.Validate())
}

func texts(items []FeedItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Text)
	}
	return out
}
