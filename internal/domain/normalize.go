package domain

import (
	"strconv"
	"strings"
)

// Normalizer turns one compound textual field into a NormalizedField. Each of
// the four kinds shares the same parsing core with small per-kind settings:
// the occurrence letter code, unit-prefix handling, and the crater forcing
// rule.
type Normalizer struct {
	State       string
	Corrections Corrections
	Auditor     Auditor
}

// settings per normalizer kind.
type normalizerSpec struct {
	letter      string // occurrence letter code, stripped when present
	unitPrefix  bool   // k -> x1e3, M -> x1e6
	stripCuries bool   // "Ci" activity token stripped without scaling
	forcePos    bool   // strictly positive magnitude forces Occurred
}

var normalizerSpecs = map[NormalizeKind]normalizerSpec{
	NormalizeYield:    {},
	NormalizeEstYield: {},
	NormalizeVent:     {letter: "V", unitPrefix: true, stripCuries: true},
	NormalizeCrater:   {letter: "C", forcePos: true},
}

// Normalize derives the NormalizedField for one column on one record. It is
// idempotent: a record already carrying the derived field is left untouched,
// so re-entering the pipeline never double-normalizes.
func (n *Normalizer) Normalize(rec *Record, column Column) error {
	if _, done := rec.Normalized[column.Name]; done {
		return nil
	}
	spec, ok := normalizerSpecs[column.Normalize]
	if !ok {
		return nil
	}

	nf, err := n.parse(rec, column.Name, spec)
	if err != nil {
		return err
	}
	rec.Normalized[column.Name] = nf
	return nil
}

func (n *Normalizer) parse(rec *Record, field string, spec normalizerSpec) (NormalizedField, error) {
	raw := rec.Fields[field]
	nf := NormalizedField{}
	if !raw.Present {
		return nf, nil
	}
	nf.Original = strPtr(raw.Text)
	text := raw.Text

	// Occurrence letter code: marks that the event happened, regardless of
	// whether a magnitude follows.
	if spec.letter != "" && strings.Contains(text, spec.letter) {
		nf.Occurred = true
		text = strings.ReplaceAll(text, spec.letter, "")
		if strings.TrimSpace(text) == "" {
			return nf, nil
		}
	}

	// Documented per-(state,id) editorial choices beat generic parsing.
	if ov, ok := n.Corrections.FindNormalized(rec.ID, field); ok {
		nf.Value = floatPtr(ov.Value)
		nf.Occurred = nf.Occurred || ov.Occurred
		if ov.Remark != "" {
			nf.Remark = strPtr(ov.Remark)
		}
		n.Auditor.Record(AuditEntry{
			State:  n.State,
			ID:     rec.ID,
			Kind:   AuditNormalizedOverride,
			Fields: []string{field},
			Before: []string{raw.Text},
			After:  []string{strconv.FormatFloat(ov.Value, 'g', -1, 64)},
			Note:   ov.Remark,
		})
		return nf, nil
	}

	// Uncertainty marker. For craters a question mark means the crater is
	// unconfirmed, overriding an earlier letter code.
	if strings.Contains(text, "?") {
		text = strings.ReplaceAll(text, "?", "")
		nf.Remark = strPtr("?")
		if spec.forcePos {
			nf.Occurred = false
		}
		if strings.TrimSpace(text) == "" {
			return nf, nil
		}
	}

	factor := 1.0
	if spec.stripCuries {
		// Activity counts keep their raw magnitude; the curie token is
		// dropped without any unit conversion.
		text = strings.ReplaceAll(text, "Ci", "")
	}
	if spec.unitPrefix {
		switch {
		case strings.Contains(text, "k"):
			text = strings.ReplaceAll(text, "k", "")
			factor = 1e3
		case strings.Contains(text, "M"):
			text = strings.ReplaceAll(text, "M", "")
			factor = 1e6
		}
	}

	switch {
	case strings.Contains(text, "<"):
		text = strings.ReplaceAll(text, "<", "")
		nf.Remark = strPtr("<")
	case strings.Contains(text, ">"):
		text = strings.ReplaceAll(text, ">", "")
		nf.Remark = strPtr(">")
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return nf, &ResidualError{
			State:    n.State,
			ID:       rec.ID,
			Field:    field,
			Residual: strings.TrimSpace(text),
		}
	}
	v *= factor
	nf.Value = &v

	// A measured crater diameter implies a crater even when the letter code
	// was not transcribed.
	if spec.forcePos && v > 0 {
		nf.Occurred = true
	}
	return nf, nil
}

func strPtr(s string) *string { return &s }

func floatPtr(v float64) *float64 { return &v }
