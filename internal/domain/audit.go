package domain

// Audit entry kinds. Corrective actions are expected, audited transformations,
// never errors.
const (
	AuditRawOverride        = "raw-override"
	AuditReplacement        = "replacement"
	AuditSpillover          = "spillover"
	AuditNormalizedOverride = "normalized-override"
	AuditUnknownCode        = "unknown-code"
)

// AuditEntry records one corrective action with enough detail to audit exactly
// which records were altered and how.
type AuditEntry struct {
	State  string
	ID     int
	Kind   string
	Fields []string
	Before []string
	After  []string
	Note   string
}

// Auditor receives every corrective action applied during extraction.
type Auditor interface {
	Record(entry AuditEntry)
}

// CollectingAuditor accumulates entries in memory. Used in tests and by the
// column-check command.
type CollectingAuditor struct {
	Entries []AuditEntry
}

func (a *CollectingAuditor) Record(entry AuditEntry) {
	a.Entries = append(a.Entries, entry)
}

// ByKind returns the collected entries matching one audit kind.
func (a *CollectingAuditor) ByKind(kind string) []AuditEntry {
	var out []AuditEntry
	for _, e := range a.Entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// NopAuditor discards all entries.
type NopAuditor struct{}

func (NopAuditor) Record(AuditEntry) {}
