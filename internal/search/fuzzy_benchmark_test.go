package search

import (
	"strings"
	"testing"

	"github.com/kk-code-lab/notefind/internal/document"
)

func benchmarkFuzzyFindAll(b *testing.B, text, pattern string) {
	b.Helper()
	fm := NewFuzzyMatcher(DefaultFuzzyThreshold)
	textRunes := []rune(text)
	patternRunes := []rune(pattern)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if len(fm.FindAll(textRunes, patternRunes)) == 0 {
			b.Fatal("unexpected miss during benchmark")
		}
	}
}

func BenchmarkFuzzyFindAllASCII(b *testing.B) {
	text := strings.Repeat("- review the quarterly budget with finance\n", 64)
	benchmarkFuzzyFindAll(b, text, "budjet")
}

func BenchmarkFuzzyFindAllUnicode(b *testing.B) {
	text := strings.Repeat("Spotkanie: omówiliśmy budżet i harmonogram wdrożenia.\n", 64)
	benchmarkFuzzyFindAll(b, text, "budzet")
}

func BenchmarkFuzzyFindAllMiss(b *testing.B) {
	fm := NewFuzzyMatcher(DefaultFuzzyThreshold)
	text := []rune(strings.Repeat("nothing to see in these notes ", 128))
	pattern := []rune("transcript")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if len(fm.FindAll(text, pattern)) != 0 {
			b.Fatal("unexpected hit during benchmark")
		}
	}
}

func benchmarkFinder(b *testing.B, cfg Config) {
	b.Helper()
	var lines []string
	for i := 0; i < 200; i++ {
		lines = append(lines, "## Item", "- Dana owns the **budget** review", "> decision: ship on Friday")
	}
	runs := document.Scan(document.Parse(strings.Join(lines, "\n")))
	f := NewFinder()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := f.Find(runs, cfg); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFinderExact(b *testing.B) {
	benchmarkFinder(b, Config{Query: "budget"})
}

func BenchmarkFinderFuzzy(b *testing.B) {
	benchmarkFinder(b, Config{Query: "budjet", Fuzzy: true})
}

func BenchmarkFinderRegex(b *testing.B) {
	benchmarkFinder(b, Config{Query: `ship on \w+`, Regex: true})
}
