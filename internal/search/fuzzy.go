package search

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFuzzyThreshold is the largest accepted ratio of edits to query length.
const DefaultFuzzyThreshold = 0.4

// FuzzyMatcher finds approximate occurrences of a pattern inside a text.
// Algorithm: edit distance with a free starting column (Sellers), so a match
// may begin anywhere in the text.
//   - Substitution, insertion and deletion each cost one edit
//   - A candidate is accepted when edits/len(pattern) <= threshold
//   - Within a run of accepted end columns the cheapest end wins; a tie only
//     wins when it extends the current best from the same start
//   - The next search starts after the reported end, so matches never overlap
type FuzzyMatcher struct {
	threshold float64
}

// NewFuzzyMatcher creates a matcher. Thresholds outside (0, 1) fall back to
// DefaultFuzzyThreshold.
func NewFuzzyMatcher(threshold float64) *FuzzyMatcher {
	if threshold <= 0 || threshold >= 1 || math.IsNaN(threshold) {
		threshold = DefaultFuzzyThreshold
	}
	return &FuzzyMatcher{threshold: threshold}
}

// Threshold returns the configured edit ratio.
func (fm *FuzzyMatcher) Threshold() float64 {
	return fm.threshold
}

// maxEdits is the edit budget for a pattern of the given length.
func (fm *FuzzyMatcher) maxEdits(patternLen int) int {
	return int(math.Floor(fm.threshold*float64(patternLen) + 1e-9))
}

// FindAll returns every non-overlapping approximate occurrence of pattern in
// text as rune offsets relative to text. Both slices must already reflect
// any case folding.
func (fm *FuzzyMatcher) FindAll(text, pattern []rune) []Match {
	if len(pattern) == 0 || len(text) == 0 {
		return nil
	}
	budget := fm.maxEdits(len(pattern))
	if len(text)+budget < len(pattern) {
		return nil
	}

	scratch := acquireDPScratch(len(pattern) + 1)
	defer releaseDPScratch(scratch)

	var matches []Match
	from := 0
	for from < len(text) {
		start, end, dist, ok := fm.nextMatch(scratch, text[from:], pattern, budget)
		if !ok {
			break
		}
		m := Match{Start: from + start, Length: end - start + 1}
		if fuzzyDebugEnabled() {
			fuzzyLogf("pattern=%q text=%q start=%d end=%d edits=%d budget=%d",
				string(pattern), string(text), m.Start, from+end, dist, budget)
		}
		matches = append(matches, m)
		from += end + 1
	}
	return matches
}

// nextMatch returns the inclusive [start, end] of the first accepted window
// in text together with its edit count.
func (fm *FuzzyMatcher) nextMatch(s *dpScratch, text, pattern []rune, budget int) (int, int, int, bool) {
	rows := len(pattern) + 1
	prevD, curD := s.prevD[:rows], s.curD[:rows]
	prevS, curS := s.prevS[:rows], s.curS[:rows]

	for i := 0; i < rows; i++ {
		prevD[i] = i
		prevS[i] = 0
	}

	bestStart, bestEnd, bestDist := -1, -1, math.MaxInt
	inWindow := false

	for j := 1; j <= len(text); j++ {
		tr := text[j-1]
		curD[0] = 0
		curS[0] = j
		for i := 1; i < rows; i++ {
			cost := 1
			if pattern[i-1] == tr {
				cost = 0
			}
			d, st := prevD[i-1]+cost, prevS[i-1]
			if up := curD[i-1] + 1; up < d || (up == d && curS[i-1] > st) {
				d, st = up, curS[i-1]
			}
			if left := prevD[i] + 1; left < d || (left == d && prevS[i] > st) {
				d, st = left, prevS[i]
			}
			curD[i] = d
			curS[i] = st
		}

		dist, start, end := curD[rows-1], curS[rows-1], j-1
		accepted := dist <= budget && start <= end
		switch {
		case accepted && (!inWindow || dist < bestDist || (dist == bestDist && start == bestStart)):
			bestStart, bestEnd, bestDist = start, end, dist
			inWindow = true
		case !accepted && inWindow:
			return bestStart, bestEnd, bestDist, true
		}

		prevD, curD = curD, prevD
		prevS, curS = curS, prevS
	}

	if inWindow {
		return bestStart, bestEnd, bestDist, true
	}
	return 0, 0, 0, false
}

var fuzzyDebugEnv = os.Getenv("NOTEFIND_DEBUG_FUZZY") == "1"
var fuzzyDebugFile = os.Getenv("NOTEFIND_DEBUG_FUZZY_FILE")

func fuzzyDebugEnabled() bool {
	return fuzzyDebugEnv
}

type dpScratch struct {
	prevD []int
	curD  []int
	prevS []int
	curS  []int
}

var dpScratchPool = sync.Pool{
	New: func() any {
		return &dpScratch{}
	},
}

func acquireDPScratch(rows int) *dpScratch {
	s := dpScratchPool.Get().(*dpScratch)
	if cap(s.prevD) < rows {
		s.prevD = make([]int, rows)
	}
	if cap(s.curD) < rows {
		s.curD = make([]int, rows)
	}
	if cap(s.prevS) < rows {
		s.prevS = make([]int, rows)
	}
	if cap(s.curS) < rows {
		s.curS = make([]int, rows)
	}
	s.prevD = s.prevD[:rows]
	s.curD = s.curD[:rows]
	s.prevS = s.prevS[:rows]
	s.curS = s.curS[:rows]
	return s
}

func releaseDPScratch(s *dpScratch) {
	dpScratchPool.Put(s)
}

func fuzzyLogf(format string, args ...any) {
	if fuzzyDebugFile == "" {
		fmt.Fprintf(os.Stderr, "[fuzzy-debug] "+format+"\n", args...)
		return
	}
	abspath := fuzzyDebugFile
	if !filepath.IsAbs(abspath) {
		cwd, err := os.Getwd()
		if err == nil {
			abspath = filepath.Join(cwd, fuzzyDebugFile)
		}
	}
	f, err := os.OpenFile(abspath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[fuzzy-debug] open file error: %v\n", err)
		return
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "[fuzzy-debug] close file error: %v\n", cerr)
		}
	}()
	if _, err := fmt.Fprintf(f, "[fuzzy-debug] "+format+"\n", args...); err != nil {
		fmt.Fprintf(os.Stderr, "[fuzzy-debug] write file error: %v\n", err)
	}
}
