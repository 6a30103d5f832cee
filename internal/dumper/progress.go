package dumper

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/casparjones/rdumper/internal/model"
)

// LogLine is one line of supervisor output, tagged with its origin stream
// and the log level the Progress Parser infers from it.
type LogLine struct {
	Stream string // "stdout" or "stderr"
	Level  string // "info", "error", or "debug"
	Text   string
	At     time.Time
}

// InferLevel classifies a raw line: lines containing error/failed/fatal
// (case-insensitive) are error, lines prefixed with the tool's info marker
// are info, otherwise debug.
func InferLevel(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "error") || strings.Contains(lower, "failed") || strings.Contains(lower, "fatal"):
		return "error"
	case strings.HasPrefix(text, "** Message:") || strings.HasPrefix(lower, "[info]"):
		return "info"
	default:
		return "debug"
	}
}

var (
	reDumpStarted   = regexp.MustCompile(`table\s+([\w.-]+)\.([` + "`" + `\w-]+)\s+dump started`)
	reDumpCompleted = regexp.MustCompile(`table\s+([\w.-]+)\.([` + "`" + `\w-]+)\s+dump completed`)
	reDumpProgress  = regexp.MustCompile(`table\s+([\w.-]+)\.([` + "`" + `\w-]+)\s+progress\s+(\d+)%`)
	reSkipped       = regexp.MustCompile(`non-innodb table\s+([` + "`" + `\w-]+)\s+skipped`)
	reErrorTable    = regexp.MustCompile("`" + `([\w-]+)` + "`")
)

// Parser is a pure fold over a line channel into a TableProgress map. The
// orchestrator owns the only instance for a given job and is the sole
// mutator of the resulting state — no callbacks cross the goroutine
// boundary, per the design note on live progress parsing.
type Parser struct {
	tables             map[string]*model.TableProgress
	dirty              bool
	lastOverallPercent int
}

func NewParser() *Parser {
	return &Parser{tables: map[string]*model.TableProgress{}, lastOverallPercent: -1}
}

func (p *Parser) ensure(name string) *model.TableProgress {
	t, ok := p.tables[name]
	if !ok {
		t = &model.TableProgress{Name: name, Status: model.TableProgressPending}
		p.tables[name] = t
	}
	return t
}

// Feed processes one log line, mutating the table map in place. It returns
// true when the line caused a state change that should be considered for a
// rate-limited persistence write: a table transitioned status, or the
// resulting overall percent changed. A bare percent tick within the same
// integer overall percent does not count, so a multi-table dump emitting
// frequent per-table progress lines doesn't force a write on every line.
func (p *Parser) Feed(line LogLine) bool {
	now := line.At
	if now.IsZero() {
		now = time.Now().UTC()
	}

	transitioned := false

	switch {
	case reDumpStarted.MatchString(line.Text):
		m := reDumpStarted.FindStringSubmatch(line.Text)
		t := p.ensure(strings.Trim(m[2], "`"))
		prevStatus := t.Status
		t.Status = model.TableProgressInProgress
		t.StartedAt = &now
		transitioned = t.Status != prevStatus

	case reDumpCompleted.MatchString(line.Text):
		m := reDumpCompleted.FindStringSubmatch(line.Text)
		t := p.ensure(strings.Trim(m[2], "`"))
		prevStatus := t.Status
		t.Status = model.TableProgressCompleted
		t.Percent = 100
		t.CompletedAt = &now
		transitioned = t.Status != prevStatus

	case reDumpProgress.MatchString(line.Text):
		m := reDumpProgress.FindStringSubmatch(line.Text)
		t := p.ensure(strings.Trim(m[2], "`"))
		pct, err := strconv.Atoi(m[3])
		if err == nil {
			prevStatus := t.Status
			if t.Status != model.TableProgressCompleted {
				t.Status = model.TableProgressInProgress
			}
			t.Percent = clampPercent(pct)
			transitioned = t.Status != prevStatus
		}

	case reSkipped.MatchString(line.Text):
		m := reSkipped.FindStringSubmatch(line.Text)
		t := p.ensure(strings.Trim(m[1], "`"))
		prevStatus := t.Status
		t.Status = model.TableProgressSkipped
		t.Percent = 100
		t.CompletedAt = &now
		transitioned = t.Status != prevStatus

	case line.Level == "error":
		if m := reErrorTable.FindStringSubmatch(line.Text); m != nil {
			t := p.ensure(m[1])
			prevStatus := t.Status
			t.Status = model.TableProgressError
			t.ErrorMessage = line.Text
			transitioned = t.Status != prevStatus
		}
	}

	percentChanged := false
	if overall := p.overallPercent(); overall != p.lastOverallPercent {
		p.lastOverallPercent = overall
		percentChanged = true
	}

	changed := transitioned || percentChanged
	if changed {
		p.dirty = true
	}
	return changed
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// OverallPercent is the arithmetic mean of per-table percents, with Skipped
// tables counted as 100 for progress purposes.
func (p *Parser) OverallPercent() int {
	return p.overallPercent()
}

func (p *Parser) overallPercent() int {
	if len(p.tables) == 0 {
		return 0
	}
	sum := 0
	for _, t := range p.tables {
		if t.Status == model.TableProgressSkipped {
			sum += 100
		} else {
			sum += t.Percent
		}
	}
	return sum / len(p.tables)
}

// ShouldPersist reports whether a write is due: the integer overall percent
// has changed since the last Feed call, or some table transitioned status,
// since the last MarkPersisted.
func (p *Parser) ShouldPersist() bool {
	return p.dirty
}

// MarkPersisted resets the rate-limit bookkeeping after a successful write.
func (p *Parser) MarkPersisted() {
	p.dirty = false
}

// Snapshot returns the current per-table rows for jobID, suitable for a
// persistence write or a detail view.
func (p *Parser) Snapshot(jobID string) []model.TableProgress {
	out := make([]model.TableProgress, 0, len(p.tables))
	for _, t := range p.tables {
		row := *t
		row.JobID = jobID
		out = append(out, row)
	}
	return out
}
