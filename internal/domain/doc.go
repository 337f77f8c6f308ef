// Package domain models the fixed-width nuclear-test tables of the Johnston
// Archive and the transformations that turn them into a typed dataset.
//
// # Data Source
//
// The archive publishes per-state tables of historical nuclear tests as plain
// text inside HTML pages, column-aligned by character position rather than by
// delimiter. Each state's configuration names the source URLs, the line range
// holding the table body, and the character span of every column. Everything
// outside the configured line range is ignored.
//
// # Table Conventions
//
// Cell values:
//
//	An empty cell (or a line too short to reach the column) is an explicit
//	absence, distinct from the empty string and from "0".
//
// Yield columns (kilotons):
//
//	Plain decimal: "23" = 23 kt. A leading "<" or ">" marks a bound and is
//	kept as the value remark. A trailing "?" marks an uncertain figure.
//	Ranges like "70-130?" have no stated midpoint convention; each occurrence
//	is resolved by a documented per-record editorial override whose remark
//	states the convention chosen (e.g. "mid of range").
//
// Vent column (radioactivity release):
//
//	"V" marks that venting occurred, with or without a magnitude.
//	"k" scales by 1e3 and "M" by 1e6: "V15M" = venting, magnitude 15e6.
//	"Ci" marks an activity count in curies and is stripped without scaling;
//	the archive mixes curie counts with other magnitudes and no conversion
//	is attempted here.
//
// Crater column (diameter):
//
//	"C" marks that a crater formed. A strictly positive diameter implies a
//	crater even when the letter was not transcribed. "?" marks the crater as
//	unconfirmed and wins over the letter code.
//
// Column spillover:
//
//	Long values overflow their fixed-width span into the next column. Fields
//	with a closed code vocabulary (shot type, sponsor, device, yield remark)
//	betray this: a value outside the vocabulary is overflow from the
//	preceding field and is concatenated back onto it.
//
// Timestamps:
//
//	YEAR + three-letter month code + DAY + "HH:MM" (occasionally "HH:MM:SS",
//	occasionally with a stray ";" for ":"). A missing time yields the zero
//	time, never a guessed one. A missing day is normalized to the sentinel
//	-1 so the column can be typed as int.
//
// # Integrity Policy
//
// Corrective actions (per-record overrides, spillover repairs, replacements)
// are expected transformations and are always reported through the Auditor.
// Residual text that survives every documented rule is fatal to the run: this
// dataset is an integrity-sensitive historical record, and guessed or dropped
// values are worse than a stopped pipeline.
package domain
