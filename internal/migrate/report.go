package migrate

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// Report summarises a completed migration run.
type Report struct {
	SourcePath string
	DestPath   string
	Lookups    LookupCounts
	Stats      Stats
	TotalPaths int64
	Elapsed    time.Duration
	DestSize   int64

	// Verification is nil when verification was skipped.
	Verification *VerifyResult
}

// Print writes the lookup counts block.
func (c LookupCounts) Print(w io.Writer) {
	fmt.Fprintf(w, "  Models:     %s\n", humanize.Comma(int64(c.Models)))
	fmt.Fprintf(w, "  Tag groups: %d\n", c.TagGroups)
	fmt.Fprintf(w, "  Tags:       %s (%d exposure + %d feature)\n", humanize.Comma(int64(c.Tags)), c.ExposureTags, c.FeatureTags)
	if c.TagCollisions > 0 {
		fmt.Fprintf(w, "  Collisions: %d tag values shared by both groups\n", c.TagCollisions)
	}
}

// Print writes the final summary. Counters that are only interesting when
// nonzero are omitted otherwise.
func (r Report) Print(w io.Writer) {
	fmt.Fprintf(w, "\nMigration complete! (%.1fs)\n", r.Elapsed.Seconds())
	fmt.Fprintf(w, "  Images:       %s\n", humanize.Comma(int64(r.Stats.Images)))
	fmt.Fprintf(w, "  Image-models: %s\n", humanize.Comma(int64(r.Stats.ImageModels)))
	fmt.Fprintf(w, "  Image-tags:   %s\n", humanize.Comma(int64(r.Stats.ImageTags)))
	if r.Stats.Skipped > 0 {
		fmt.Fprintf(w, "  Skipped:      %s\n", humanize.Comma(int64(r.Stats.Skipped)))
	}
	if r.Stats.Ambiguous > 0 {
		fmt.Fprintf(w, "  Ambiguous:    %s\n", humanize.Comma(int64(r.Stats.Ambiguous)))
	}
	if r.Stats.IgnoredRows > 0 {
		fmt.Fprintf(w, "  Ignored rows: %s\n", humanize.Comma(int64(r.Stats.IgnoredRows)))
	}
	fmt.Fprintf(w, "  New DB size:  %s\n", humanize.Bytes(uint64(r.DestSize)))

	if v := r.Verification; v != nil {
		if v.OK() {
			fmt.Fprintf(w, "  Verified:     %d checks passed\n", v.Checks)
		} else {
			fmt.Fprintf(w, "  Verified:     %d of %d checks failed\n", len(v.Problems), v.Checks)
			for _, p := range v.Problems {
				fmt.Fprintf(w, "    - %s\n", p)
			}
		}
	}
}
