package hivestate

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validDoc returns a minimal document that normalizes without warnings or errors.
func validDoc() map[string]any {
	return map[string]any{
		"meta": map[string]any{
			"schema":        DefaultSchema,
			"schemaVersion": float64(1),
			"updatedAt":     "2024-01-02T00:00:00Z",
		},
		"world": map[string]any{
			"max_minions": float64(3),
		},
		"minions": map[string]any{
			"roster": []any{
				map[string]any{"id": "ATLAS", "avatar_url": "./avatars/atlas.png"},
				map[string]any{"id": "BOLT", "avatar_url": "./avatars/bolt.png"},
			},
		},
	}
}

func roster(doc map[string]any, entries ...any) {
	doc["minions"].(map[string]any)["roster"] = entries
}

func TestNormalize_ValidDocument(t *testing.T) {
	res := Normalize(validDoc())

	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "2024-01-02T00:00:00Z", res.Data.Meta.UpdatedAt)
	assert.Equal(t, float64(CurrentVersion), res.Data.Meta.SchemaVersion)
	assert.Len(t, res.Data.Minions.Roster, 2)
	assert.Equal(t, float64(3), res.Data.Minions.Max, "minions.max defaults to world.max_minions")
}

func TestNormalize_NilInput(t *testing.T) {
	res := Normalize(nil)

	assert.Contains(t, res.Warnings, "hive_state root was not an object; defaults applied")
	assert.Equal(t, []string{
		"meta.schema missing",
		"meta.updatedAt missing",
		"world.max_minions must be number",
		"minions.roster must be array",
	}, res.Errors)

	d := res.Data
	assert.Equal(t, DefaultSchema, d.Meta.Schema)
	assert.Equal(t, DefaultUpdatedAt, d.Meta.UpdatedAt)
	assert.Equal(t, "unknown", d.Meta.Source)
	assert.Equal(t, float64(50), d.World.MaxMinions)
	assert.Equal(t, "./realm.html", d.World.Realm.Entry)
	assert.Equal(t, []string{"#00ffff", "#b400ff", "#60a5fa"}, d.World.Theme.Palette)
	assert.Equal(t, float64(60), d.World.Health.TickIntervalSec)
	assert.Equal(t, "unknown", d.Activities.Status.CI)
	assert.Equal(t, "SolarFlow progress", d.Activities.Status.OverallLabel)
	assert.Equal(t, "SIMULATED", d.Agora.Mode)
	assert.NotNil(t, d.Minions.Roster)
	assert.NotNil(t, d.Ledger.Transactions)
	assert.NotNil(t, d.CodeCanon.Mounted)
}

func TestNormalize_NoNullsInEncodedOutput(t *testing.T) {
	for _, raw := range []any{nil, "text", []any{1.0}, map[string]any{}} {
		res := Normalize(raw)
		data, err := json.Marshal(res.Data)
		require.NoError(t, err)
		// payload/metadata are the only opaque fields and they only appear per message
		assert.NotContains(t, string(data), "null", "input %#v", raw)
	}
}

func TestNormalize_TypeMismatchFallsBackSilently(t *testing.T) {
	doc := validDoc()
	doc["world"].(map[string]any)["name"] = float64(42)
	doc["world"].(map[string]any)["health"] = map[string]any{"entropy": "high", "paused": "yes"}
	roster(doc, map[string]any{"id": "ATLAS", "tier": "two", "specialties": []any{"x", 7.0}})

	res := Normalize(doc)

	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "SolarFlow • Minion Realm", res.Data.World.Name)
	assert.Equal(t, float64(0), res.Data.World.Health.Entropy)
	assert.False(t, res.Data.World.Health.Paused)
	assert.Equal(t, float64(0), res.Data.Minions.Roster[0].Tier)
	assert.Equal(t, []string{"x", ""}, res.Data.Minions.Roster[0].Specialties)
}

func TestNormalize_SchemaVersion(t *testing.T) {
	t.Run("missing defaults to latest with warning", func(t *testing.T) {
		doc := validDoc()
		delete(doc["meta"].(map[string]any), "schemaVersion")

		res := Normalize(doc)

		assert.Equal(t, float64(CurrentVersion), res.Data.Meta.SchemaVersion)
		require.NotEmpty(t, res.Warnings)
		assert.Contains(t, res.Warnings[0], "schemaVersion")
		assert.Empty(t, res.Errors)
	})

	t.Run("older version is migrated up", func(t *testing.T) {
		doc := validDoc()
		doc["meta"].(map[string]any)["schemaVersion"] = float64(0)

		res := Normalize(doc)

		assert.Equal(t, float64(CurrentVersion), res.Data.Meta.SchemaVersion)
		assert.Equal(t, []string{"meta.schemaVersion 0 migrated to 1"}, res.Warnings)
	})

	t.Run("newer version is never moved down", func(t *testing.T) {
		doc := validDoc()
		doc["meta"].(map[string]any)["schemaVersion"] = float64(7)

		res := Normalize(doc)

		assert.Equal(t, float64(7), res.Data.Meta.SchemaVersion)
		assert.Empty(t, res.Warnings)
	})
}

func TestNormalize_DuplicateIDs(t *testing.T) {
	doc := validDoc()
	roster(doc,
		map[string]any{"id": "ATLAS"},
		map[string]any{"id": "atlas"},
	)

	res := Normalize(doc)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "ATLAS")
	assert.Contains(t, res.Errors[0], "duplicate minion id")
}

func TestNormalize_DuplicateIDs_OneErrorPerRepeat(t *testing.T) {
	doc := validDoc()
	doc["world"].(map[string]any)["max_minions"] = float64(10)
	roster(doc,
		map[string]any{"id": "bolt"},
		map[string]any{"id": "Bolt"},
		map[string]any{"id": "BOLT"},
	)

	res := Normalize(doc)

	assert.Equal(t, []string{"duplicate minion id: BOLT", "duplicate minion id: BOLT"}, res.Errors)
}

func TestNormalize_Capacity(t *testing.T) {
	tests := []struct {
		name       string
		rosterSize int
		wantErrors int
	}{
		{name: "at capacity", rosterSize: 3, wantErrors: 0},
		{name: "one over capacity", rosterSize: 4, wantErrors: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDoc()
			entries := make([]any, 0, tt.rosterSize)
			for i := 0; i < tt.rosterSize; i++ {
				entries = append(entries, map[string]any{"id": string(rune('A' + i))})
			}
			roster(doc, entries...)

			res := Normalize(doc)

			assert.Len(t, res.Errors, tt.wantErrors)
			if tt.wantErrors > 0 {
				assert.Equal(t, "roster length 4 exceeds max_minions 3", res.Errors[0])
			}
		})
	}
}

func TestNormalize_AbsoluteAvatarURL(t *testing.T) {
	doc := validDoc()
	roster(doc, map[string]any{"id": "nova", "avatar_url": "https://example.com/x.png"})

	res := Normalize(doc)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "nova")
	assert.Contains(t, res.Errors[0], "https://example.com/x.png")
}

func TestNormalize_MissingMinionID(t *testing.T) {
	doc := validDoc()
	roster(doc,
		map[string]any{"role": "scout"},
		"not-an-object",
		map[string]any{"id": "ATLAS"},
	)

	res := Normalize(doc)

	assert.Empty(t, res.Errors)
	assert.Equal(t, []string{
		"minion[0] missing id; defaulted to empty string",
		"minion[1] missing id; defaulted to empty string",
	}, res.Warnings)
	assert.Len(t, res.Data.Minions.Roster, 3)
	assert.Equal(t, "scout", res.Data.Minions.Roster[0].Role)
}

func TestNormalize_TaskDescFallback(t *testing.T) {
	doc := validDoc()
	doc["tasks"] = map[string]any{"board": []any{
		map[string]any{"id": "T1", "description": "from description"},
		map[string]any{"id": "T2", "desc": "from desc", "description": "ignored"},
		map[string]any{"id": "T3", "desc": "", "description": "empty desc falls through"},
	}}

	board := Normalize(doc).Data.Tasks.Board

	require.Len(t, board, 3)
	assert.Equal(t, "from description", board[0].Desc)
	assert.Equal(t, "from desc", board[1].Desc)
	assert.Equal(t, "empty desc falls through", board[2].Desc)
	assert.Equal(t, "MINION", board[0].Owner)
}

func TestNormalize_OpaquePayloadIsDetached(t *testing.T) {
	payload := map[string]any{"url": "./a"}
	doc := validDoc()
	doc["agora"] = map[string]any{"messages": []any{
		map[string]any{"sender_id": "BOLT", "intent": "FETCH_RESULT", "payload": payload},
	}}

	res := Normalize(doc)
	payload["url"] = "./changed"

	got := res.Data.Agora.Messages[0].Payload.(map[string]any)
	assert.Equal(t, "./a", got["url"])
}

func TestNormalize_CodeCanon(t *testing.T) {
	doc := validDoc()
	doc["code_canon"] = map[string]any{"mounted": map[string]any{
		"core": []any{"a.go", 3.0},
		"bad":  "not-a-list",
	}}

	mounted := Normalize(doc).Data.CodeCanon.Mounted

	assert.Equal(t, []string{"a.go", ""}, mounted["core"])
	assert.Equal(t, []string{}, mounted["bad"])
}

func TestNormalize_Deterministic(t *testing.T) {
	data := []byte(`{
		"meta": {"schema": "x", "updatedAt": "2024-01-01T00:00:00Z"},
		"world": {"max_minions": 1},
		"minions": {"roster": [{"id": "a"}, {"id": "A", "avatar_url": "http://x"}]},
		"agora": {"messages": [{"payload": {"b": 1, "a": [1, 2]}}]}
	}`)
	raw, err := Unmarshal(data)
	require.NoError(t, err)

	first := Normalize(raw)
	second := Normalize(raw)

	assert.Equal(t, first, second)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestUnmarshal_InvalidJSON(t *testing.T) {
	_, err := Unmarshal([]byte(`{"meta":`))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to parse hive state JSON"))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "50", FormatNumber(50))
	assert.Equal(t, "0.75", FormatNumber(0.75))
	assert.Equal(t, "-3", FormatNumber(-3))
}
