package derive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dyluth/hive/internal/timespec"
	"github.com/dyluth/hive/pkg/hivestate"
)

const (
	// DefaultAvatar is used for agora senders and curated posts with no roster match.
	DefaultAvatar = "./avatars/bolt.png"
	// LedgerAvatar is the fixed avatar of ledger transactions.
	LedgerAvatar = "./avatars/atlas.png"

	maxPlainPayload = 200
)

// Agora intents with dedicated text rendering.
const (
	IntentFetchResult      = "FETCH_RESULT"
	IntentDiscoveryResult  = "DISCOVERY_RESULT"
	IntentValidationResult = "VALIDATION_RESULT"
)

// FeedItem is the uniform display unit merged from agora messages, ledger
// transactions and curated posts.
type FeedItem struct {
	ID        string `json:"id"`
	Who       string `json:"who"`
	AvatarURL string `json:"avatar_url"`
	When      string `json:"when"`
	Topic     string `json:"topic"`
	Status    string `json:"status"`
	Text      string `json:"text"`
}

// buildFeed projects the three sources in a fixed order (agora, ledger,
// curated) and sorts the concatenation by when, newest first.
func buildFeed(hive hivestate.State, order FeedOrder) []FeedItem {
	items := make([]FeedItem, 0,
		len(hive.Agora.Messages)+len(hive.Ledger.Transactions)+len(hive.Activities.FeedPosts))

	for i, m := range hive.Agora.Messages {
		items = append(items, messageItem(hive, i, m))
	}
	for i, t := range hive.Ledger.Transactions {
		items = append(items, transactionItem(hive, i, t))
	}
	for i, p := range hive.Activities.FeedPosts {
		items = append(items, curatedItem(hive, i, p))
	}

	sortFeed(items, order)
	return items
}

func messageItem(hive hivestate.State, index int, m hivestate.Message) FeedItem {
	who := orDefault(m.SenderID, "MINION")
	intent := orDefault(m.Intent, "UPDATE")
	return FeedItem{
		ID:        fmt.Sprintf("agora-%s-%s", orDefault(m.SenderID, "minion"), orDefault(m.Timestamp, fmt.Sprint(index))),
		Who:       who,
		AvatarURL: avatarFor(hive.Minions.Roster, who),
		When:      timespec.Display(orDefault(m.Timestamp, hive.Meta.UpdatedAt)),
		Topic:     intent,
		Status:    "update",
		Text:      messageText(intent, m.Payload),
	}
}

func transactionItem(hive hivestate.State, index int, t hivestate.Transaction) FeedItem {
	text := fmt.Sprintf("%s → %s • %s • %s",
		orDefault(t.From, "?"), orDefault(t.To, "?"), hivestate.FormatNumber(t.Amount), t.Memo)
	return FeedItem{
		ID:        fmt.Sprintf("txn-%s", orDefault(t.ID, fmt.Sprint(index))),
		Who:       "LEDGER",
		AvatarURL: LedgerAvatar,
		When:      timespec.Display(orDefault(t.Timestamp, hive.Meta.UpdatedAt)),
		Topic:     "TXN",
		Status:    "done",
		Text:      strings.TrimSpace(text),
	}
}

func curatedItem(hive hivestate.State, index int, p hivestate.FeedPost) FeedItem {
	avatar := p.AvatarURL
	if avatar == "" {
		avatar = avatarFor(hive.Minions.Roster, p.Who)
	}
	return FeedItem{
		ID:        fmt.Sprintf("curated-%s-%s", orDefault(p.Who, "announce"), orDefault(p.When, fmt.Sprint(index))),
		Who:       orDefault(p.Who, "ANNOUNCE"),
		AvatarURL: avatar,
		When:      orDefault(p.When, timespec.Display(hive.Meta.UpdatedAt)),
		Topic:     orDefault(p.Topic, "ANNOUNCEMENT"),
		Status:    orDefault(p.Status, "update"),
		Text:      p.Text,
	}
}

// avatarFor resolves a sender against the roster, case-insensitively, in
// roster order. Minions without an avatar fall back to DefaultAvatar.
func avatarFor(roster []hivestate.Minion, senderID string) string {
	for _, m := range roster {
		if strings.EqualFold(m.ID, senderID) {
			return orDefault(m.AvatarURL, DefaultAvatar)
		}
	}
	return DefaultAvatar
}

// messageText renders a payload by intent. Objects and arrays go through the
// intent formatters; scalars are stringified and cut to 200 characters.
func messageText(intent string, payload any) string {
	switch payload.(type) {
	case map[string]any, []any:
	default:
		return truncate(scalarText(payload), maxPlainPayload)
	}

	obj, _ := payload.(map[string]any)
	switch intent {
	case IntentFetchResult:
		bytesPart := ""
		if n, ok := obj["bytes"].(float64); ok && n != 0 {
			bytesPart = hivestate.FormatNumber(n) + " bytes"
		}
		return strings.TrimSpace(fmt.Sprintf("Fetched %s • %s • %s • %s",
			valueText(obj["url"]), valueText(obj["status"]), valueText(obj["content_type"]), bytesPart))
	case IntentDiscoveryResult:
		count := 0
		if c, ok := obj["candidates"].([]any); ok {
			count = len(c)
		}
		manufacturer := valueText(obj["manufacturer"])
		if manufacturer == "" {
			manufacturer = "manufacturer"
		}
		return fmt.Sprintf("Discovery for %s • candidates: %d", manufacturer, count)
	case IntentValidationResult:
		return fmt.Sprintf("Validation • match=%s • conf=%s",
			valueText(obj["model_match"]), valueText(obj["confidence"]))
	default:
		return compactJSON(payload)
	}
}

// scalarText stringifies a non-object payload. Falsy scalars render empty.
func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if !t {
			return ""
		}
		return "true"
	case float64:
		if t == 0 {
			return ""
		}
		return hivestate.FormatNumber(t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// valueText renders a payload field inside formatted text. Missing values
// render empty.
func valueText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return hivestate.FormatNumber(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return compactJSON(t)
	}
}

func compactJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
