package app

import (
	"cmp"
	"encoding/json"
	"slices"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/focusguard/internal/models"
	"github.com/ayoisaiah/focusguard/internal/timeutil"
	"github.com/ayoisaiah/focusguard/internal/ui"
	"github.com/ayoisaiah/focusguard/report"
)

// domainCount is the number of blocked attempts for one domain.
type domainCount struct {
	Last   time.Time `json:"last"`
	Domain string    `json:"domain"`
	Count  int       `json:"count"`
}

// countByDomain groups attempts by domain, most attempted first.
func countByDomain(attempts []models.BlockedAttempt) []domainCount {
	index := make(map[string]int)

	var counts []domainCount

	for _, a := range attempts {
		i, ok := index[a.Domain]
		if !ok {
			i = len(counts)
			index[a.Domain] = i
			counts = append(counts, domainCount{Domain: a.Domain})
		}

		counts[i].Count++

		if a.Time.After(counts[i].Last) {
			counts[i].Last = a.Time
		}
	}

	slices.SortStableFunc(counts, func(a, b domainCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}

		return cmp.Compare(a.Domain, b.Domain)
	})

	return counts
}

// historyAction prints the blocked access attempts recorded by the network
// layer, optionally limited with --since.
func historyAction(ctx *cli.Context) error {
	var since time.Time

	if s := ctx.String("since"); s != "" {
		var err error

		since, err = timeutil.FromStr(s, time.Now())
		if err != nil {
			return err
		}
	}

	db, err := openStore()
	if err != nil {
		return err
	}

	defer db.Close()

	attempts, err := db.Attempts(since)
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		return json.NewEncoder(ctx.App.Writer).Encode(attempts)
	}

	if len(attempts) == 0 {
		report.Info("no blocked access attempts")
		return nil
	}

	counts := countByDomain(attempts)

	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{
			c.Domain,
			strconv.Itoa(c.Count),
			c.Last.Local().Format("Jan 02, 2006 03:04 PM"),
		})
	}

	return ui.PrintTable(ctx.App.Writer, []string{"DOMAIN", "ATTEMPTS", "LAST ATTEMPT"}, rows)
}

// historyClearAction deletes the blocked access history.
func historyClearAction(ctx *cli.Context) error {
	db, err := openStore()
	if err != nil {
		return err
	}

	defer db.Close()

	ok, err := confirm("Delete the blocked access history?", ctx.Bool("yes"))
	if err != nil || !ok {
		return err
	}

	if err := db.ClearAttempts(); err != nil {
		return err
	}

	report.Success("blocked access history cleared")

	return nil
}
