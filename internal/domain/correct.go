package domain

import "strings"

// RawOverride replaces the raw text of one field on one record. These encode
// documented transcription errors in the source tables (stray punctuation,
// digit transpositions) keyed by the per-state record id.
type RawOverride struct {
	ID    int
	Field string
	Value string
	Note  string
}

// Replacement rewrites a specific literal value wherever it appears in a
// field, e.g. a sponsor code cut off by the column boundary.
type Replacement struct {
	Field string
	From  string
	To    string
}

// SpilloverRule describes one adjacent field pair (or chain) subject to
// column-spillover repair. When the first Into field holds a value outside
// Allowed, the text is taken as overflow from From: the Into values are
// concatenated onto From and the Into fields are nulled.
type SpilloverRule struct {
	From    string
	Into    []string
	Allowed []string
}

func (r SpilloverRule) allowed(text string) bool {
	for _, v := range r.Allowed {
		if v == text {
			return true
		}
	}
	return false
}

// NormalizedOverride fixes the normalized value of one field on one record,
// bypassing generic parsing. These encode irreducibly ambiguous source text
// (ranges with no midpoint convention, multiple candidate numbers) where a
// fixed editorial choice has been made; Remark states the convention used.
type NormalizedOverride struct {
	ID       int
	Field    string
	Value    float64
	Occurred bool
	Remark   string
}

// Corrections is the full per-state repair configuration, loaded alongside
// the schema so new fixes never require touching pipeline code.
type Corrections struct {
	Raw          []RawOverride
	Replacements []Replacement
	Spillovers   []SpilloverRule
	Normalized   []NormalizedOverride
}

// FindNormalized looks up the normalized override for (id, field).
func (c Corrections) FindNormalized(id int, field string) (NormalizedOverride, bool) {
	for _, ov := range c.Normalized {
		if ov.ID == id && ov.Field == field {
			return ov, true
		}
	}
	return NormalizedOverride{}, false
}

// Corrector repairs known transcription defects on raw records before any
// typed parsing occurs. Every applied action is reported to the Auditor.
type Corrector struct {
	State       string
	Corrections Corrections
	DayField    string
	TimeField   string
	Auditor     Auditor
}

// Apply runs all raw-level repairs on one record, in order: per-id overrides,
// literal replacements, spillover rules (mutually independent), the day
// sentinel, and the time punctuation fix.
func (c *Corrector) Apply(rec *Record) {
	c.applyRawOverrides(rec)
	c.applyReplacements(rec)
	for _, rule := range c.Corrections.Spillovers {
		c.applySpillover(rec, rule)
	}
	c.applyDaySentinel(rec)
	c.applyTimeFix(rec)
}

func (c *Corrector) applyRawOverrides(rec *Record) {
	for _, ov := range c.Corrections.Raw {
		if ov.ID != rec.ID {
			continue
		}
		before := rec.Fields[ov.Field]
		rec.Fields[ov.Field] = Present(ov.Value)
		c.Auditor.Record(AuditEntry{
			State:  c.State,
			ID:     rec.ID,
			Kind:   AuditRawOverride,
			Fields: []string{ov.Field},
			Before: []string{fieldText(before)},
			After:  []string{ov.Value},
			Note:   ov.Note,
		})
	}
}

func (c *Corrector) applyReplacements(rec *Record) {
	for _, rep := range c.Corrections.Replacements {
		f := rec.Fields[rep.Field]
		if !f.Present || f.Text != rep.From {
			continue
		}
		rec.Fields[rep.Field] = Present(rep.To)
		c.Auditor.Record(AuditEntry{
			State:  c.State,
			ID:     rec.ID,
			Kind:   AuditReplacement,
			Fields: []string{rep.Field},
			Before: []string{rep.From},
			After:  []string{rep.To},
		})
	}
}

// applySpillover repairs text that overflowed a fixed-width column boundary.
// Membership in the rule's vocabulary is checked on the first spill target; a
// miss with a present source field is evidence of overflow from the source.
// A miss without a present source is an unknown code: it passes through
// untouched but is reported so new legitimate codes surface.
func (c *Corrector) applySpillover(rec *Record, rule SpilloverRule) {
	if len(rule.Into) == 0 {
		return
	}
	first := rec.Fields[rule.Into[0]]
	if !first.Present || rule.allowed(first.Text) {
		return
	}

	source := rec.Fields[rule.From]
	parts := make([]string, 0, len(rule.Into))
	for _, name := range rule.Into {
		f := rec.Fields[name]
		if !f.Present {
			// A chain rule only fires when every spilled cell is populated.
			source = Absent()
			break
		}
		parts = append(parts, f.Text)
	}
	if !source.Present {
		c.Auditor.Record(AuditEntry{
			State:  c.State,
			ID:     rec.ID,
			Kind:   AuditUnknownCode,
			Fields: []string{rule.Into[0]},
			Before: []string{first.Text},
			After:  []string{first.Text},
			Note:   "value outside known vocabulary, not treated as spillover",
		})
		return
	}

	before := make([]string, 0, len(rule.Into)+1)
	after := make([]string, 0, len(rule.Into)+1)
	before = append(before, source.Text)
	joined := source.Text + strings.Join(parts, "")
	after = append(after, joined)

	rec.Fields[rule.From] = Present(joined)
	for i, name := range rule.Into {
		before = append(before, parts[i])
		after = append(after, "")
		rec.Fields[name] = Absent()
	}

	fields := append([]string{rule.From}, rule.Into...)
	c.Auditor.Record(AuditEntry{
		State:  c.State,
		ID:     rec.ID,
		Kind:   AuditSpillover,
		Fields: fields,
		Before: before,
		After:  after,
	})
}

// applyDaySentinel maps an absent day-of-month to -1 so the column can be
// typed as int.
func (c *Corrector) applyDaySentinel(rec *Record) {
	if c.DayField == "" {
		return
	}
	if f := rec.Fields[c.DayField]; !f.Present {
		rec.Fields[c.DayField] = Present("-1")
	}
}

// applyTimeFix repairs a semicolon standing in for a colon in the time field.
func (c *Corrector) applyTimeFix(rec *Record) {
	if c.TimeField == "" {
		return
	}
	f := rec.Fields[c.TimeField]
	if !f.Present || !strings.Contains(f.Text, ";") {
		return
	}
	rec.Fields[c.TimeField] = Present(strings.ReplaceAll(f.Text, ";", ":"))
}

func fieldText(f Field) string {
	if !f.Present {
		return ""
	}
	return f.Text
}
