package main

import (
	"fmt"
	"sort"

	"github.com/conorfennell/repeat/internal/stats"
)

// report prints the collection statistics. All computation happens in the
// stats package; this is presentation only.
func report(s *stats.Stats) {
	fmt.Printf("Cards: known %d • new %d • young %d • mature %d (store rows: %d)\n",
		s.KnownCards,
		s.Lifecycles[stats.LifecycleNew],
		s.Lifecycles[stats.LifecycleYoung],
		s.Lifecycles[stats.LifecycleMature],
		s.TotalRows,
	)
	fmt.Printf("Due now: %d (%d overdue)\n", s.DueNow, s.Overdue)

	if len(s.UpcomingWeek) > 0 {
		total := 0
		for _, n := range s.UpcomingWeek {
			total += n
		}
		fmt.Printf("Due in next 7 days: %d\n", total)
		for _, day := range s.UpcomingDays() {
			fmt.Printf("  %s: %d\n", day, s.UpcomingWeek[day])
		}
	}
	fmt.Printf("Due in next 30 days: %d\n", s.UpcomingMonth)

	if len(s.Origins) > 0 {
		fmt.Println("Cards per file:")
		paths := make([]string, 0, len(s.Origins))
		for p := range s.Origins {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			fmt.Printf("  %s: %d\n", p, s.Origins[p])
		}
	}

	if s.Difficulty.Count() > 0 {
		fmt.Printf("Difficulty:      %v (mean %.2f)\n", s.Difficulty.Bins(), s.Difficulty.Mean())
	}
	if s.Retrievability.Count() > 0 {
		fmt.Printf("Retrievability:  %v (mean %.2f)\n", s.Retrievability.Bins(), s.Retrievability.Mean())
	}
}
