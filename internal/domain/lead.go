package domain

import "time"

// LeadStatus is the stage of a prospect in a broker's pipeline
type LeadStatus string

const (
	LeadNew       LeadStatus = "nouveau"
	LeadContacted LeadStatus = "contacte"
	LeadQuoted    LeadStatus = "devis"
	LeadWon       LeadStatus = "gagne"
	LeadLost      LeadStatus = "perdu"
)

// ChurnReason records why a policy was not renewed or a lead was lost
type ChurnReason string

const (
	ChurnPrice       ChurnReason = "prix"
	ChurnCompetition ChurnReason = "concurrence"
	ChurnCoverage    ChurnReason = "couverture"
	ChurnService     ChurnReason = "service"
	ChurnOther       ChurnReason = "autre"
)

// Valid reports whether the churn reason is known
func (c ChurnReason) Valid() bool {
	switch c {
	case ChurnPrice, ChurnCompetition, ChurnCoverage, ChurnService, ChurnOther:
		return true
	}
	return false
}

var leadTransitions = map[LeadStatus][]LeadStatus{
	LeadNew:       {LeadContacted, LeadQuoted, LeadLost},
	LeadContacted: {LeadQuoted, LeadLost},
	LeadQuoted:    {LeadWon, LeadLost},
	LeadWon:       {LeadQuoted}, // renewal re-quote
	LeadLost:      {LeadContacted},
}

// Valid reports whether the status is known
func (s LeadStatus) Valid() bool {
	_, ok := leadTransitions[s]
	return ok
}

// CanTransitionTo reports whether a lead may move from s to next
func (s LeadStatus) CanTransitionTo(next LeadStatus) bool {
	for _, allowed := range leadTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Lead is a prospect or renewal followed by a broker
type Lead struct {
	ID          string      `json:"id"`
	BrokerID    string      `json:"brokerId"`
	ClientName  string      `json:"clientName"`
	Phone       string      `json:"phone,omitempty"`
	Email       string      `json:"email,omitempty"`
	Product     Product     `json:"product"`
	Status      LeadStatus  `json:"status"`
	ChurnReason ChurnReason `json:"churnReason,omitempty"`
	QuoteID     string      `json:"quoteId,omitempty"`
	RenewalDate *time.Time  `json:"renewalDate,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// ChurnCount aggregates lost leads by reason
type ChurnCount struct {
	Reason ChurnReason `json:"reason"`
	Count  int         `json:"count"`
}
