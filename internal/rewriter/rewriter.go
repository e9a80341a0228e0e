// Package rewriter replaces literal references to registered assets with their data URIs.
//
// Matching is plain substring replacement. The rewriter knows nothing about
// the syntax of the text it rewrites, so references inside strings, comments
// and markup are all replaced.
package rewriter

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/Patrickazonzo/findgreetings/internal/assets"
)

// Mode selects how overlapping candidate spellings are resolved.
type Mode string

const (
	// ModeSequential walks the registry in order and replaces each spelling
	// in turn. An earlier replacement can hide a later, longer match.
	ModeSequential Mode = "sequential"
	// ModeLongest replaces all spellings in one pass; at each position the
	// longest candidate wins, so the result does not depend on registry order.
	ModeLongest Mode = "longest"
)

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSequential, ModeLongest:
		return Mode(s), nil
	case "":
		return ModeSequential, nil
	}
	return "", fmt.Errorf("unknown replace mode %q", s)
}

// Candidates returns the literal spellings source text may use to refer to
// the asset at relPath:
//
//	./images/logo.png
//	.\images\\logo.png
//	${MEDIA_BASE}logo.png
//	images/logo.png
//	images\\logo.png
//
// Every form that can contain a bare form comes before it, so sequential
// replacement consumes "./logo.png" and "${MEDIA_BASE}logo.png" whole instead
// of leaving a prefix in front of the data URI. Duplicates are dropped. An
// empty placeholder disables the placeholder form.
func Candidates(relPath, placeholder string) []string {
	normalized := strings.ReplaceAll(relPath, `\`, "/")
	alt := strings.ReplaceAll(normalized, "/", `\\`)

	spellings := []string{"./" + normalized, `.\` + alt}
	if placeholder != "" {
		spellings = append(spellings, placeholder+path.Base(normalized))
	}
	spellings = append(spellings, normalized, alt)
	return dedupe(spellings)
}

type replacement struct {
	old, new string
}

// Rewriter inlines asset references. It is immutable and safe to reuse.
type Rewriter struct {
	mode         Mode
	replacements []replacement    // sequential mode, registry order
	replacer     *strings.Replacer // longest mode
}

// New builds a Rewriter over every entry of reg.
func New(reg *assets.Registry, placeholder string, mode Mode) *Rewriter {
	r := &Rewriter{mode: mode}
	for _, e := range reg.Entries() {
		for _, c := range Candidates(e.Path, placeholder) {
			r.replacements = append(r.replacements, replacement{old: c, new: e.DataURI})
		}
	}

	if mode == ModeLongest && len(r.replacements) > 0 {
		sorted := make([]replacement, len(r.replacements))
		copy(sorted, r.replacements)
		sort.SliceStable(sorted, func(i, j int) bool {
			if len(sorted[i].old) != len(sorted[j].old) {
				return len(sorted[i].old) > len(sorted[j].old)
			}
			return sorted[i].old < sorted[j].old
		})
		// strings.Replacer tries old strings in argument order at each position,
		// so sorting longest-first yields a longest-match scan.
		pairs := make([]string, 0, 2*len(sorted))
		for _, rep := range sorted {
			pairs = append(pairs, rep.old, rep.new)
		}
		r.replacer = strings.NewReplacer(pairs...)
	}
	return r
}

// Mode returns the replacement strategy in use.
func (r *Rewriter) Mode() Mode {
	return r.mode
}

// Rewrite returns text with every recognized asset reference replaced.
func (r *Rewriter) Rewrite(text string) string {
	if r == nil || len(r.replacements) == 0 {
		return text
	}
	if r.replacer != nil {
		return r.replacer.Replace(text)
	}
	for _, rep := range r.replacements {
		text = strings.ReplaceAll(text, rep.old, rep.new)
	}
	return text
}

func dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := list[:0]
	for _, s := range list {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
