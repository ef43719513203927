package hivestate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Result is the outcome of Normalize. Data is always fully defaulted;
// Warnings and Errors are never nil.
type Result struct {
	Data     State
	Warnings []string
	Errors   []string
}

var metaSchema = Schema[Meta]{
	String("schema", DefaultSchema, func(m *Meta) *string { return &m.Schema }),
	Number("schemaVersion", CurrentVersion, func(m *Meta) *float64 { return &m.SchemaVersion }),
	String("updatedAt", DefaultUpdatedAt, func(m *Meta) *string { return &m.UpdatedAt }),
	String("source", "unknown", func(m *Meta) *string { return &m.Source }),
	String("notes", "", func(m *Meta) *string { return &m.Notes }),
}

var worldSchema = Schema[World]{
	String("id", "solarflow-minionworld", func(w *World) *string { return &w.ID }),
	String("name", "SolarFlow • Minion Realm", func(w *World) *string { return &w.Name }),
	String("epoch", "A–Z", func(w *World) *string { return &w.Epoch }),
	String("motto", "", func(w *World) *string { return &w.Motto }),
	Number("max_minions", 50, func(w *World) *float64 { return &w.MaxMinions }),
	Nested("realm", Schema[Realm]{
		String("entry", "./realm.html", func(r *Realm) *string { return &r.Entry }),
		String("status", "./index.html", func(r *Realm) *string { return &r.Status }),
	}, func(w *World) *Realm { return &w.Realm }),
	Nested("theme", Schema[Theme]{
		Strings("palette", []string{"#00ffff", "#b400ff", "#60a5fa"}, "#00ffff", func(t *Theme) *[]string { return &t.Palette }),
		String("style", "neon-glass", func(t *Theme) *string { return &t.Style }),
	}, func(w *World) *Theme { return &w.Theme }),
	Nested("health", Schema[Health]{
		Number("virtual_voltage", 0, func(h *Health) *float64 { return &h.VirtualVoltage }),
		Number("entropy", 0, func(h *Health) *float64 { return &h.Entropy }),
		Number("loop_risk", 0, func(h *Health) *float64 { return &h.LoopRisk }),
		Number("tick_interval_sec", 60, func(h *Health) *float64 { return &h.TickIntervalSec }),
		Bool("paused", false, func(h *Health) *bool { return &h.Paused }),
	}, func(w *World) *Health { return &w.Health }),
}

var transactionSchema = Schema[Transaction]{
	String("id", "", func(t *Transaction) *string { return &t.ID }),
	String("timestamp", DefaultUpdatedAt, func(t *Transaction) *string { return &t.Timestamp }),
	String("from", "", func(t *Transaction) *string { return &t.From }),
	String("to", "", func(t *Transaction) *string { return &t.To }),
	Number("amount", 0, func(t *Transaction) *float64 { return &t.Amount }),
	String("memo", "", func(t *Transaction) *string { return &t.Memo }),
}

var ledgerSchema = Schema[Ledger]{
	String("updatedAt", DefaultUpdatedAt, func(l *Ledger) *string { return &l.UpdatedAt }),
	Number("credits_total", 0, func(l *Ledger) *float64 { return &l.CreditsTotal }),
	Number("reputation_index", 0, func(l *Ledger) *float64 { return &l.ReputationIndex }),
	Nested("rewards", Schema[Rewards]{
		Number("help_friend_bonus", 0, func(r *Rewards) *float64 { return &r.HelpFriendBonus }),
		Number("task_complete_bonus", 0, func(r *Rewards) *float64 { return &r.TaskCompleteBonus }),
		Number("audit_pass_bonus", 0, func(r *Rewards) *float64 { return &r.AuditPassBonus }),
	}, func(l *Ledger) *Rewards { return &l.Rewards }),
	List("transactions", transactionSchema, func(l *Ledger) *[]Transaction { return &l.Transactions }),
}

var minionSchema = Schema[Minion]{
	String("id", "", func(m *Minion) *string { return &m.ID }),
	Number("tier", 0, func(m *Minion) *float64 { return &m.Tier }),
	String("role", "", func(m *Minion) *string { return &m.Role }),
	String("mode", "", func(m *Minion) *string { return &m.Mode }),
	Strings("specialties", nil, "", func(m *Minion) *[]string { return &m.Specialties }),
	Number("energy_credits", 0, func(m *Minion) *float64 { return &m.EnergyCredits }),
	Number("reputation", 0, func(m *Minion) *float64 { return &m.Reputation }),
	String("avatar_url", "", func(m *Minion) *string { return &m.AvatarURL }),
	Number("happiness_sim", 0, func(m *Minion) *float64 { return &m.HappinessSim }),
}

// minions.max defaults to world.max_minions; Normalize fills it in afterwards.
var minionsSchema = Schema[Minions]{
	String("updatedAt", DefaultUpdatedAt, func(m *Minions) *string { return &m.UpdatedAt }),
	Number("max", math.NaN(), func(m *Minions) *float64 { return &m.Max }),
	List("roster", minionSchema, func(m *Minions) *[]Minion { return &m.Roster }),
}

var activitiesSchema = Schema[Activities]{
	String("updatedAt", DefaultUpdatedAt, func(a *Activities) *string { return &a.UpdatedAt }),
	Nested("status", Schema[Status]{
		String("ci", "unknown", func(s *Status) *string { return &s.CI }),
		Number("overall", 0, func(s *Status) *float64 { return &s.Overall }),
		String("overallLabel", "SolarFlow progress", func(s *Status) *string { return &s.OverallLabel }),
		List("milestones", Schema[Milestone]{
			String("id", "", func(m *Milestone) *string { return &m.ID }),
			String("label", "", func(m *Milestone) *string { return &m.Label }),
			String("status", "", func(m *Milestone) *string { return &m.Status }),
		}, func(s *Status) *[]Milestone { return &s.Milestones }),
	}, func(a *Activities) *Status { return &a.Status }),
	List("feed_posts", Schema[FeedPost]{
		String("who", "ANNOUNCE", func(p *FeedPost) *string { return &p.Who }),
		String("avatar_url", "", func(p *FeedPost) *string { return &p.AvatarURL }),
		String("when", "", func(p *FeedPost) *string { return &p.When }),
		String("topic", "ANNOUNCEMENT", func(p *FeedPost) *string { return &p.Topic }),
		String("status", "update", func(p *FeedPost) *string { return &p.Status }),
		String("text", "", func(p *FeedPost) *string { return &p.Text }),
	}, func(a *Activities) *[]FeedPost { return &a.FeedPosts }),
}

var agoraSchema = Schema[Agora]{
	String("updatedAt", DefaultUpdatedAt, func(a *Agora) *string { return &a.UpdatedAt }),
	String("mode", "SIMULATED", func(a *Agora) *string { return &a.Mode }),
	String("notes", "", func(a *Agora) *string { return &a.Notes }),
	List("messages", Schema[Message]{
		String("sender_id", "", func(m *Message) *string { return &m.SenderID }),
		Number("target_tier", 0, func(m *Message) *float64 { return &m.TargetTier }),
		String("timestamp", DefaultUpdatedAt, func(m *Message) *string { return &m.Timestamp }),
		String("intent", "UPDATE", func(m *Message) *string { return &m.Intent }),
		Opaque("payload", func(m *Message) *any { return &m.Payload }),
		Number("spark_delta", 0, func(m *Message) *float64 { return &m.SparkDelta }),
		Opaque("metadata", func(m *Message) *any { return &m.Metadata }),
	}, func(a *Agora) *[]Message { return &a.Messages }),
}

var tasksSchema = Schema[Tasks]{
	List("board", Schema[Task]{
		String("id", "", func(t *Task) *string { return &t.ID }),
		String("title", "", func(t *Task) *string { return &t.Title }),
		String("owner", "MINION", func(t *Task) *string { return &t.Owner }),
		String("status", "", func(t *Task) *string { return &t.Status }),
		FirstString([]string{"desc", "description"}, "", func(t *Task) *string { return &t.Desc }),
	}, func(t *Tasks) *[]Task { return &t.Board }),
}

var stateSchema = Schema[State]{
	Nested("meta", metaSchema, func(s *State) *Meta { return &s.Meta }),
	Nested("world", worldSchema, func(s *State) *World { return &s.World }),
	Nested("ledger", ledgerSchema, func(s *State) *Ledger { return &s.Ledger }),
	Nested("minions", minionsSchema, func(s *State) *Minions { return &s.Minions }),
	Nested("activities", activitiesSchema, func(s *State) *Activities { return &s.Activities }),
	Nested("agora", agoraSchema, func(s *State) *Agora { return &s.Agora }),
	Nested("tasks", tasksSchema, func(s *State) *Tasks { return &s.Tasks }),
	Nested("covenant", Schema[Covenant]{
		List("five_articles", Schema[Article]{
			String("id", "", func(a *Article) *string { return &a.ID }),
			String("title", "", func(a *Article) *string { return &a.Title }),
			String("text", "", func(a *Article) *string { return &a.Text }),
		}, func(c *Covenant) *[]Article { return &c.FiveArticles }),
	}, func(s *State) *Covenant { return &s.Covenant }),
	Nested("ontology_lab", Schema[OntologyLab]{
		Strings("questions", nil, "", func(o *OntologyLab) *[]string { return &o.Questions }),
		Strings("hypotheses", nil, "", func(o *OntologyLab) *[]string { return &o.Hypotheses }),
	}, func(s *State) *OntologyLab { return &s.OntologyLab }),
	Nested("mechanics", Schema[Mechanics]{
		List("active", Schema[Mechanic]{
			String("id", "", func(m *Mechanic) *string { return &m.ID }),
			String("label", "", func(m *Mechanic) *string { return &m.Label }),
			String("desc", "", func(m *Mechanic) *string { return &m.Desc }),
			String("liturgy", "", func(m *Mechanic) *string { return &m.Liturgy }),
		}, func(m *Mechanics) *[]Mechanic { return &m.Active }),
	}, func(s *State) *Mechanics { return &s.Mechanics }),
	Nested("code_canon", Schema[CodeCanon]{
		StringListMap("mounted", func(c *CodeCanon) *map[string][]string { return &c.Mounted }),
	}, func(s *State) *CodeCanon { return &s.CodeCanon }),
}

// structuralChecks are evaluated against the raw document in order.
var structuralChecks = []Check{
	{Path: "meta.schema", Kind: KindString, Message: "meta.schema missing"},
	{Path: "meta.updatedAt", Kind: KindString, Message: "meta.updatedAt missing"},
	{Path: "world.max_minions", Kind: KindNumber, Message: "world.max_minions must be number"},
	{Path: "minions.roster", Kind: KindArray, Message: "minions.roster must be array"},
}

// Normalize coerces raw into a fully-defaulted State. It never panics and
// never returns nil slices; identical input yields identical output.
func Normalize(raw any) Result {
	res := Result{Warnings: []string{}, Errors: []string{}}

	if _, ok := asObject(raw); !ok {
		res.Warnings = append(res.Warnings, "hive_state root was not an object; defaults applied")
	}

	res.Data = stateSchema.Decode(raw)
	if math.IsNaN(res.Data.Minions.Max) {
		res.Data.Minions.Max = res.Data.World.MaxMinions
	}

	migrateSchemaVersion(raw, &res)

	for _, c := range structuralChecks {
		if c.Violated(raw) {
			res.Errors = append(res.Errors, c.Message)
		}
	}

	checkRoster(&res)
	return res
}

// migrateSchemaVersion only ever moves the version upward.
func migrateSchemaVersion(raw any, res *Result) {
	v, _ := lookup(raw, []string{"meta", "schemaVersion"})
	if _, ok := asNumber(v); !ok {
		res.Warnings = append(res.Warnings, "meta.schemaVersion missing; defaulted to latest")
	}
	meta := &res.Data.Meta
	if meta.SchemaVersion < CurrentVersion {
		res.Warnings = append(res.Warnings, fmt.Sprintf("meta.schemaVersion %s migrated to %d",
			FormatNumber(meta.SchemaVersion), CurrentVersion))
		meta.SchemaVersion = CurrentVersion
	}
}

func checkRoster(res *Result) {
	roster := res.Data.Minions.Roster
	maxMinions := res.Data.World.MaxMinions

	if float64(len(roster)) > maxMinions {
		res.Errors = append(res.Errors, fmt.Sprintf("roster length %d exceeds max_minions %s",
			len(roster), FormatNumber(maxMinions)))
	}

	seen := make(map[string]bool, len(roster))
	for i, m := range roster {
		id := strings.ToUpper(m.ID)
		if id == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("minion[%d] missing id; defaulted to empty string", i))
		} else {
			if seen[id] {
				res.Errors = append(res.Errors, fmt.Sprintf("duplicate minion id: %s", id))
			}
			seen[id] = true
		}

		if IsAbsoluteURL(m.AvatarURL) {
			label := m.ID
			if label == "" {
				label = fmt.Sprintf("[%d]", i)
			}
			res.Errors = append(res.Errors, fmt.Sprintf("minion %s avatar_url must be relative (got %s)", label, m.AvatarURL))
		}
	}
}

// IsAbsoluteURL reports whether u carries an http or https scheme.
func IsAbsoluteURL(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// FormatNumber renders f the way the site's JavaScript consumers print
// numbers: integers without a fractional part, shortest round-trip otherwise.
func FormatNumber(f float64) string {
	if math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
