package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/scanvoca/scanvoca/internal/dictionary"
	"github.com/scanvoca/scanvoca/internal/resolver"
)

// BatchPrinter renders resolution results for a terminal.
type BatchPrinter struct {
	w       io.Writer
	bold    *color.Color
	italic  *color.Color
	sources map[resolver.Source]*color.Color
}

func NewBatchPrinter(w io.Writer) *BatchPrinter {
	return &BatchPrinter{
		w:      w,
		bold:   color.New(color.Bold),
		italic: color.New(color.Italic),
		sources: map[resolver.Source]*color.Color{
			resolver.SourceCache:     color.New(color.FgCyan),
			resolver.SourceStore:     color.New(color.FgGreen),
			resolver.SourceGenerated: color.New(color.FgYellow),
			resolver.SourceError:     color.New(color.FgRed),
		},
	}
}

// Print writes one block per outcome followed by the batch counters.
func (p *BatchPrinter) Print(batch resolver.Batch) {
	for _, o := range batch.Outcomes {
		source := p.sources[o.Source].Sprintf("[%s]", o.Source)
		if o.Record == nil {
			fmt.Fprintf(p.w, "%s %s: %s\n", source, p.bold.Sprint(o.RequestedWord), o.Error)
			continue
		}
		fmt.Fprintf(p.w, "%s %s%s\n", source, p.bold.Sprint(o.Record.Word), headline(o.Record))
		for i, m := range o.Record.Meanings {
			fmt.Fprintf(p.w, "  %d. (%s) %s", i+1, m.PartOfSpeech, m.Korean)
			if m.English != nil {
				fmt.Fprintf(p.w, " - %s", p.italic.Sprint(*m.English))
			}
			fmt.Fprintln(p.w)
			for _, ex := range m.Examples {
				fmt.Fprintf(p.w, "     %s / %s\n", ex.EN, ex.KO)
			}
		}
	}
	fmt.Fprintf(p.w, "\ncache: %d, store: %d, generated: %d, errors: %d\n",
		batch.CacheHits, batch.StoreHits, batch.GenerationCalls, batch.Errors)
}

func headline(rec *dictionary.Record) string {
	var parts []string
	if rec.Pronunciation != nil {
		parts = append(parts, *rec.Pronunciation)
	}
	if rec.Difficulty != nil {
		parts = append(parts, fmt.Sprintf("level %d", *rec.Difficulty))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, ", ")
}
