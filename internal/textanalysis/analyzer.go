// Package textanalysis scores free text with cheap, explainable heuristics
// (length, repetition, shouting, link spam). It never hides anything itself;
// callers decide what to do with a flagged result.
package textanalysis

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	StatusDisabled = "disabled"
	StatusOK       = "ok"
	StatusFlagged  = "flagged"
)

const (
	SignalTooShort       = "too_short"
	SignalLowUniqueRatio = "low_unique_ratio"
	SignalDominantWord   = "dominant_word"
	SignalRepeatedChars  = "repeated_chars"
	SignalUppercase      = "excessive_uppercase"
	SignalSymbols        = "excessive_symbols"
	SignalLinks          = "too_many_links"
	SignalLongLines      = "long_lines"
)

const maxSeverity = 2.0

var linkPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)

type Options struct {
	Title       string
	Subtitle    string
	ContentType string
}

type SignalHit struct {
	Key          string  `json:"key"`
	Weight       float64 `json:"weight"`
	Severity     float64 `json:"severity"`
	Contribution float64 `json:"contribution"`
	Detail       string  `json:"detail"`
}

type Metrics struct {
	Chars          int     `json:"chars"`
	Letters        int     `json:"letters"`
	Uppercase      int     `json:"uppercase"`
	UppercaseRatio float64 `json:"uppercase_ratio"`
	SymbolRatio    float64 `json:"symbol_ratio"`
	Links          int     `json:"links"`
	Words          int     `json:"words"`
	UniqueWords    int     `json:"unique_words"`
	UniqueRatio    float64 `json:"unique_ratio"`
	DominantWord   string  `json:"dominant_word,omitempty"`
	DominantShare  float64 `json:"dominant_share"`
	RepeatedRuns   int     `json:"repeated_runs"`
	MaxRun         int     `json:"max_run"`
	LongestLine    int     `json:"longest_line"`
}

type Result struct {
	Status    string      `json:"status"`
	Flagged   bool        `json:"flagged"`
	Score     float64     `json:"score"`
	Threshold float64     `json:"threshold"`
	Signals   []SignalHit `json:"signals"`
	Summary   string      `json:"summary"`
	Metrics   Metrics     `json:"metrics"`
}

type Analyzer struct {
	cfg Config
}

func New(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

func (a *Analyzer) Config() Config {
	return a.cfg
}

// Analyze scores body (plus optional title/subtitle) for the given content type.
func (a *Analyzer) Analyze(body string, opts Options) Result {
	profile := a.cfg.Profile(opts.ContentType)
	if !a.cfg.Enabled || profile.Disabled {
		return Result{
			Status:  StatusDisabled,
			Signals: []SignalHit{},
			Summary: "text analysis disabled",
		}
	}

	text := assemble(opts.Title, opts.Subtitle, body)
	m := measure(text, a.cfg.MinRunLength)

	hits := a.evaluate(m, profile)
	score := 0.0
	for _, h := range hits {
		score += h.Contribution
	}

	res := Result{
		Status:    StatusOK,
		Score:     score,
		Threshold: profile.ScoreThreshold,
		Metrics:   m,
	}
	res.Flagged = len(hits) > 0 && score >= profile.ScoreThreshold
	if res.Flagged {
		res.Status = StatusFlagged
	}
	res.Summary = summarize(hits, score, profile.ScoreThreshold, res.Flagged)
	res.Signals = capSignals(hits, a.cfg.MaxSignals)
	return res
}

func assemble(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return norm.NFC.String(strings.Join(kept, "\n"))
}

func measure(text string, minRun int) Metrics {
	var m Metrics
	nonSpace, symbols := 0, 0
	for _, r := range text {
		m.Chars++
		switch {
		case unicode.IsSpace(r):
			continue
		case unicode.IsLetter(r):
			m.Letters++
			if unicode.IsUpper(r) {
				m.Uppercase++
			}
		case !unicode.IsDigit(r):
			symbols++
		}
		nonSpace++
	}
	m.UppercaseRatio = ratio(m.Uppercase, m.Letters)
	m.SymbolRatio = ratio(symbols, nonSpace)
	m.Links = len(linkPattern.FindAllString(text, -1))

	words := tokenize(text)
	m.Words = len(words)
	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}
	m.UniqueWords = len(counts)
	m.UniqueRatio = ratio(m.UniqueWords, m.Words)

	top := 0
	for w, n := range counts {
		if utf8.RuneCountInString(w) < 3 {
			continue
		}
		// ties resolve alphabetically so the result is stable
		if n > top || (n == top && w < m.DominantWord) {
			top = n
			m.DominantWord = w
		}
	}
	m.DominantShare = ratio(top, m.Words)

	m.RepeatedRuns, m.MaxRun = repeatedRuns(text, minRun)
	for _, line := range strings.Split(text, "\n") {
		if n := utf8.RuneCountInString(line); n > m.LongestLine {
			m.LongestLine = n
		}
	}
	return m
}

func tokenize(text string) []string {
	stripped := strings.ToLower(linkPattern.ReplaceAllString(text, " "))
	fields := strings.FieldsFunc(stripped, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	words := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= 2 {
			words = append(words, f)
		}
	}
	return words
}

// repeatedRuns counts runs of at least minRun identical non-space runes.
func repeatedRuns(text string, minRun int) (runs, longest int) {
	var prev rune
	length := 0
	flush := func() {
		if length >= minRun {
			runs++
		}
		if length > longest {
			longest = length
		}
	}
	for _, r := range text {
		if unicode.IsSpace(r) {
			flush()
			length = 0
			continue
		}
		if length > 0 && r == prev {
			length++
			continue
		}
		flush()
		prev, length = r, 1
	}
	flush()
	return runs, longest
}

func (a *Analyzer) evaluate(m Metrics, p Profile) []SignalHit {
	s := a.cfg.Signals
	var hits []SignalHit
	add := func(key string, sig Signal, severity float64, detail string) {
		if sig.Weight <= 0 {
			return
		}
		hits = append(hits, SignalHit{
			Key:          key,
			Weight:       sig.Weight,
			Severity:     severity,
			Contribution: sig.Weight * severity,
			Detail:       detail,
		})
	}

	shortChars := p.MinChars > 0 && m.Chars < p.MinChars
	shortWords := p.MinWords > 0 && m.Words < p.MinWords
	if shortChars || shortWords {
		sev := 1.0
		var parts []string
		if shortChars {
			sev = math.Max(sev, under(float64(m.Chars), float64(p.MinChars)))
			parts = append(parts, fmt.Sprintf("%d chars < %d", m.Chars, p.MinChars))
		}
		if shortWords {
			sev = math.Max(sev, under(float64(m.Words), float64(p.MinWords)))
			parts = append(parts, fmt.Sprintf("%d words < %d", m.Words, p.MinWords))
		}
		add(SignalTooShort, s.TooShort, sev, strings.Join(parts, ", "))
	}

	if m.Words >= s.LowUniqueRatio.MinSample && m.Words > 0 && m.UniqueRatio < s.LowUniqueRatio.Threshold {
		add(SignalLowUniqueRatio, s.LowUniqueRatio, under(m.UniqueRatio, s.LowUniqueRatio.Threshold),
			fmt.Sprintf("unique word ratio %.2f < %.2f", m.UniqueRatio, s.LowUniqueRatio.Threshold))
	}

	if m.Words >= s.DominantWord.MinSample && m.DominantWord != "" && m.DominantShare > s.DominantWord.Threshold {
		add(SignalDominantWord, s.DominantWord, over(m.DominantShare, s.DominantWord.Threshold),
			fmt.Sprintf("%q is %.0f%% of all words", m.DominantWord, m.DominantShare*100))
	}

	if m.RepeatedRuns > 0 && float64(m.RepeatedRuns) >= s.RepeatedChars.Threshold {
		add(SignalRepeatedChars, s.RepeatedChars, over(float64(m.RepeatedRuns), s.RepeatedChars.Threshold),
			fmt.Sprintf("%d repeated character runs (longest %d)", m.RepeatedRuns, m.MaxRun))
	}

	if m.Letters >= s.Uppercase.MinSample && m.Letters > 0 && m.UppercaseRatio > s.Uppercase.Threshold {
		add(SignalUppercase, s.Uppercase, over(m.UppercaseRatio, s.Uppercase.Threshold),
			fmt.Sprintf("uppercase ratio %.2f > %.2f", m.UppercaseRatio, s.Uppercase.Threshold))
	}

	if m.Chars >= s.Symbols.MinSample && m.SymbolRatio > s.Symbols.Threshold {
		add(SignalSymbols, s.Symbols, over(m.SymbolRatio, s.Symbols.Threshold),
			fmt.Sprintf("symbol ratio %.2f > %.2f", m.SymbolRatio, s.Symbols.Threshold))
	}

	if float64(m.Links) > s.Links.Threshold {
		add(SignalLinks, s.Links, over(float64(m.Links), math.Max(s.Links.Threshold, 1)),
			fmt.Sprintf("%d links > %.0f allowed", m.Links, s.Links.Threshold))
	}

	if s.LongLines.Threshold > 0 && float64(m.LongestLine) > s.LongLines.Threshold {
		add(SignalLongLines, s.LongLines, over(float64(m.LongestLine), s.LongLines.Threshold),
			fmt.Sprintf("longest line %d chars > %.0f", m.LongestLine, s.LongLines.Threshold))
	}
	return hits
}

// over scales severity by how far value overshoots threshold.
func over(value, threshold float64) float64 {
	if threshold <= 0 {
		return maxSeverity
	}
	return bound(value / threshold)
}

// under scales severity by how far value falls short of threshold.
func under(value, threshold float64) float64 {
	if threshold <= 0 {
		return 1
	}
	return bound(1 + (threshold-value)/threshold)
}

func bound(v float64) float64 {
	return math.Min(maxSeverity, math.Max(1, v))
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func capSignals(hits []SignalHit, max int) []SignalHit {
	if hits == nil {
		return []SignalHit{}
	}
	if max <= 0 || len(hits) <= max {
		return hits
	}
	sorted := append([]SignalHit(nil), hits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Contribution > sorted[j].Contribution
	})
	return sorted[:max]
}

func summarize(hits []SignalHit, score, threshold float64, flagged bool) string {
	if len(hits) == 0 {
		return "no issues detected"
	}
	keys := make([]string, len(hits))
	for i, h := range hits {
		keys[i] = h.Key
	}
	verdict := "below"
	if flagged {
		verdict = "at or above"
	}
	return fmt.Sprintf("%d signal(s): %s; score %.2f %s threshold %.2f",
		len(hits), strings.Join(keys, ", "), score, verdict, threshold)
}
