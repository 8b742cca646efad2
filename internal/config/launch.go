package config

import "strings"

// LaunchParams are the parameters the widget was launched with. They are
// read once, at session-creation time, and seed the initial session state.
type LaunchParams struct {
	// Email is the authenticated visitor email, if any. It drives identity
	// resolution and is persisted under the user: namespace.
	Email string `yaml:"email"`
	// CustomerID is the customer identifier from the embedding site.
	CustomerID string `yaml:"customer_id"`
	// RelatedIDs is a comma-separated set of identifiers related to the
	// customer (orders, tickets, ...).
	RelatedIDs string `yaml:"related_ids"`
	// WidgetSessionID correlates this chat with the embedding widget session.
	WidgetSessionID string `yaml:"widget_session_id"`

	// Referral context. Session-scoped (context: namespace).
	Host     string `yaml:"host"`
	Page     string `yaml:"page"`
	Referrer string `yaml:"referrer"`

	// Standard campaign-tracking parameters. Session-scoped.
	UTMSource   string `yaml:"utm_source"`
	UTMMedium   string `yaml:"utm_medium"`
	UTMCampaign string `yaml:"utm_campaign"`
	UTMTerm     string `yaml:"utm_term"`
	UTMContent  string `yaml:"utm_content"`
}

// InitialState builds the state map that seeds a newly created session.
//
// Identity fields go under the user: namespace, which the backend persists
// across sessions for one identity. Contextual fields go under the context:
// namespace and live only as long as this session. Empty values are omitted.
func (p LaunchParams) InitialState() map[string]any {
	state := make(map[string]any)

	setIf := func(key, value string) {
		if value != "" {
			state[key] = value
		}
	}

	setIf("user:email", strings.TrimSpace(strings.ToLower(p.Email)))
	setIf("user:customer_id", p.CustomerID)
	setIf("user:widget_session_id", p.WidgetSessionID)
	if ids := p.relatedIDs(); len(ids) > 0 {
		state["user:related_ids"] = ids
	}

	setIf("context:host", p.Host)
	setIf("context:page", p.Page)
	setIf("context:referrer", p.Referrer)
	setIf("context:utm_source", p.UTMSource)
	setIf("context:utm_medium", p.UTMMedium)
	setIf("context:utm_campaign", p.UTMCampaign)
	setIf("context:utm_term", p.UTMTerm)
	setIf("context:utm_content", p.UTMContent)

	return state
}

// relatedIDs splits the comma-separated RelatedIDs value, dropping empties.
func (p LaunchParams) relatedIDs() []string {
	if p.RelatedIDs == "" {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(p.RelatedIDs, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
