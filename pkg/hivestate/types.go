package hivestate

const (
	// CurrentVersion is the latest meta.schemaVersion. Older documents are
	// migrated up to it; newer ones are left alone.
	CurrentVersion = 1

	// DefaultSchema is the schema id substituted when meta.schema is unusable.
	DefaultSchema = "solarflow.hive_state.v1"

	// DefaultUpdatedAt is the fixed sentinel used for every missing timestamp.
	// No default is ever derived from the wall clock.
	DefaultUpdatedAt = "1970-01-01T00:00:00Z"
)

// State is the fully-defaulted hive state document.
// Field order matches the persisted document so encoded output stays familiar.
type State struct {
	Meta        Meta        `json:"meta"`
	World       World       `json:"world"`
	Ledger      Ledger      `json:"ledger"`
	Minions     Minions     `json:"minions"`
	Activities  Activities  `json:"activities"`
	Agora       Agora       `json:"agora"`
	Tasks       Tasks       `json:"tasks"`
	Covenant    Covenant    `json:"covenant"`
	OntologyLab OntologyLab `json:"ontology_lab"`
	Mechanics   Mechanics   `json:"mechanics"`
	CodeCanon   CodeCanon   `json:"code_canon"`
}

// Meta carries schema identity and provenance.
type Meta struct {
	Schema        string  `json:"schema"`
	SchemaVersion float64 `json:"schemaVersion"`
	UpdatedAt     string  `json:"updatedAt"`
	Source        string  `json:"source"`
	Notes         string  `json:"notes"`
}

// World describes the realm: identity, links, theme and health meters.
type World struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Epoch      string  `json:"epoch"`
	Motto      string  `json:"motto"`
	MaxMinions float64 `json:"max_minions"`
	Realm      Realm   `json:"realm"`
	Theme      Theme   `json:"theme"`
	Health     Health  `json:"health"`
}

// Realm holds the relative links into the static site.
type Realm struct {
	Entry  string `json:"entry"`
	Status string `json:"status"`
}

// Theme is the site palette.
type Theme struct {
	Palette []string `json:"palette"`
	Style   string   `json:"style"`
}

// Health holds the numeric world meters and the pause flag.
type Health struct {
	VirtualVoltage  float64 `json:"virtual_voltage"`
	Entropy         float64 `json:"entropy"`
	LoopRisk        float64 `json:"loop_risk"`
	TickIntervalSec float64 `json:"tick_interval_sec"`
	Paused          bool    `json:"paused"`
}

// Ledger holds credit totals, reward constants and the transaction log.
type Ledger struct {
	UpdatedAt       string        `json:"updatedAt"`
	CreditsTotal    float64       `json:"credits_total"`
	ReputationIndex float64       `json:"reputation_index"`
	Rewards         Rewards       `json:"rewards"`
	Transactions    []Transaction `json:"transactions"`
}

// Rewards are the fixed credit bonuses.
type Rewards struct {
	HelpFriendBonus   float64 `json:"help_friend_bonus"`
	TaskCompleteBonus float64 `json:"task_complete_bonus"`
	AuditPassBonus    float64 `json:"audit_pass_bonus"`
}

// Transaction is one ledger entry.
type Transaction struct {
	ID        string  `json:"id"`
	Timestamp string  `json:"timestamp"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Amount    float64 `json:"amount"`
	Memo      string  `json:"memo"`
}

// Minions is the roster section.
type Minions struct {
	UpdatedAt string   `json:"updatedAt"`
	Max       float64  `json:"max"`
	Roster    []Minion `json:"roster"`
}

// Minion is one actor record in the roster.
type Minion struct {
	ID            string   `json:"id"`
	Tier          float64  `json:"tier"`
	Role          string   `json:"role"`
	Mode          string   `json:"mode"`
	Specialties   []string `json:"specialties"`
	EnergyCredits float64  `json:"energy_credits"`
	Reputation    float64  `json:"reputation"`
	AvatarURL     string   `json:"avatar_url"`
	HappinessSim  float64  `json:"happiness_sim"`
}

// Activities holds the CI status block and curated feed posts.
type Activities struct {
	UpdatedAt string     `json:"updatedAt"`
	Status    Status     `json:"status"`
	FeedPosts []FeedPost `json:"feed_posts"`
}

// Status is the build/progress block rendered on the status page.
type Status struct {
	CI           string      `json:"ci"`
	Overall      float64     `json:"overall"`
	OverallLabel string      `json:"overallLabel"`
	Milestones   []Milestone `json:"milestones"`
}

// Milestone is a labelled progress checkpoint.
type Milestone struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Status string `json:"status"`
}

// FeedPost is a curated announcement.
type FeedPost struct {
	Who       string `json:"who"`
	AvatarURL string `json:"avatar_url"`
	When      string `json:"when"`
	Topic     string `json:"topic"`
	Status    string `json:"status"`
	Text      string `json:"text"`
}

// Agora is the inter-minion message board.
type Agora struct {
	UpdatedAt string    `json:"updatedAt"`
	Mode      string    `json:"mode"`
	Notes     string    `json:"notes"`
	Messages  []Message `json:"messages"`
}

// Message is one agora message. Payload and Metadata are opaque JSON values.
type Message struct {
	SenderID   string  `json:"sender_id"`
	TargetTier float64 `json:"target_tier"`
	Timestamp  string  `json:"timestamp"`
	Intent     string  `json:"intent"`
	Payload    any     `json:"payload"`
	SparkDelta float64 `json:"spark_delta"`
	Metadata   any     `json:"metadata"`
}

// Tasks is the work board.
type Tasks struct {
	Board []Task `json:"board"`
}

// Task is one work item.
type Task struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Owner  string `json:"owner"`
	Status string `json:"status"`
	Desc   string `json:"desc"`
}

// Covenant is passed through to downstream pages.
type Covenant struct {
	FiveArticles []Article `json:"five_articles"`
}

// Article is one covenant article.
type Article struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// OntologyLab is passed through to downstream pages.
type OntologyLab struct {
	Questions  []string `json:"questions"`
	Hypotheses []string `json:"hypotheses"`
}

// Mechanics is passed through to downstream pages.
type Mechanics struct {
	Active []Mechanic `json:"active"`
}

// Mechanic is one active game mechanic.
type Mechanic struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Desc    string `json:"desc"`
	Liturgy string `json:"liturgy"`
}

// CodeCanon maps a mount name to the list of mounted paths.
type CodeCanon struct {
	Mounted map[string][]string `json:"mounted"`
}
