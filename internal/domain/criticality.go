package domain

// Criticality is the severity label reporting attaches to a recipient.
type Criticality string

const (
	CriticalityCritical Criticality = "Critical"
	CriticalityHigh     Criticality = "High"
	CriticalityMedium   Criticality = "Medium"
	CriticalityLow      Criticality = "Low"
	CriticalityNone     Criticality = "No signal"
)

// Rank orders labels from least (0) to most (4) severe.
func (c Criticality) Rank() int {
	switch c {
	case CriticalityCritical:
		return 4
	case CriticalityHigh:
		return 3
	case CriticalityMedium:
		return 2
	case CriticalityLow:
		return 1
	}
	return 0
}

// Criticality scores a snapshot. The first matching rule wins, so a report
// outranks everything regardless of the order the events arrived in.
func (cr *CampaignRecipient) Criticality() Criticality {
	switch {
	case cr.ReportedAt != nil:
		return CriticalityCritical
	case cr.SubmitAttempted:
		return CriticalityHigh
	case cr.CTAClickCount > 0 || cr.LandingViewCount > 0 || cr.ClickCount > 0:
		return CriticalityMedium
	case cr.OpenedAt != nil || cr.OpenSeenAt != nil:
		return CriticalityLow
	}
	return CriticalityNone
}
