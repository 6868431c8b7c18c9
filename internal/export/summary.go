package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sundaymedia/catholiccuts/internal/types"
)

// Summary is a one-line digest of a clip list for logs and terminal output.
func Summary(clips []types.Clip) string {
	if len(clips) == 0 {
		return "No clips generated."
	}

	counts := map[string]int{}
	flagged := 0
	for _, c := range clips {
		counts[c.Moment.ViralTrigger]++
		if len(c.Moment.Flags) > 0 {
			flagged++
		}
	}

	triggers := make([]string, 0, len(counts))
	for t := range counts {
		triggers = append(triggers, t)
	}
	sort.Strings(triggers)

	parts := []string{fmt.Sprintf("Generated %d viral clips", len(clips))}
	pairs := make([]string, 0, len(triggers))
	for _, t := range triggers {
		pairs = append(pairs, fmt.Sprintf("%d %s", counts[t], t))
	}
	parts = append(parts, "Triggers: "+strings.Join(pairs, ", "))
	if flagged > 0 {
		parts = append(parts, fmt.Sprintf("%d clips have special flags", flagged))
	}
	return strings.Join(parts, " · ")
}
