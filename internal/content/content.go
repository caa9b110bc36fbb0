// Package content holds the static presentation tables: coaching tip
// groups, the broker directory, and the account-opening checklist. The
// tables are loaded once at startup into a Library and never mutated.
package content

// Group is one ordered set of coaching tips under a category label.
type Group struct {
	Category string   `mapstructure:"category"`
	Tips     []string `mapstructure:"tips"`
}

// Broker is one entry of the broker directory.
type Broker struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
	Note string `mapstructure:"note"`
}

// Overrides carries optional replacements for the built-in tables,
// typically unmarshalled from the config file. An empty field keeps
// the built-in table.
type Overrides struct {
	TipGroups []Group  `mapstructure:"tip_groups"`
	Brokers   []Broker `mapstructure:"brokers"`
	Documents []string `mapstructure:"documents"`
}

// Library is the immutable content table handed to the views.
type Library struct {
	groups    []Group
	brokers   []Broker
	documents []string
}

// NewLibrary builds a library from the built-in tables, replacing any
// table for which the overrides carry entries.
func NewLibrary(o Overrides) *Library {
	l := &Library{
		groups:    defaultTipGroups,
		brokers:   defaultBrokers,
		documents: defaultDocuments,
	}
	if len(o.TipGroups) > 0 {
		l.groups = o.TipGroups
	}
	if len(o.Brokers) > 0 {
		l.brokers = o.Brokers
	}
	if len(o.Documents) > 0 {
		l.documents = o.Documents
	}
	return l
}

// TipGroups returns the tip table in fixed group order. The returned
// slice is the caller's to keep.
func (l *Library) TipGroups() []Group {
	out := make([]Group, len(l.groups))
	copy(out, l.groups)
	return out
}

// Brokers returns the broker directory.
func (l *Library) Brokers() []Broker {
	out := make([]Broker, len(l.brokers))
	copy(out, l.brokers)
	return out
}

// Documents returns the account-opening checklist.
func (l *Library) Documents() []string {
	out := make([]string, len(l.documents))
	copy(out, l.documents)
	return out
}
