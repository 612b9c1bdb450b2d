package pipeline

import (
	"fmt"
	"sort"

	"github.com/ManeeGit/DataWithoutPeople/internal/table"
)

// OverlapRow is the exact-match overlap between one investor key column and
// one people key column.
type OverlapRow struct {
	InvestorColumn string
	PeopleColumn   string
	InvUnique      int
	PplUnique      int
	Common         int
	InvPct         float64
	PplPct         float64
}

// investorOverlapKeys and peopleOverlapKeys are the candidate join columns
// examined before falling back to fuzzy matching.
var (
	investorOverlapKeys = []string{colInvID, colInvLegalName, colInvPBID}
	peopleOverlapKeys   = []string{colPeoplePBID, colPeopleCompany}
)

// computeOverlap measures the exact-value intersection between every
// investor/people key column pair. Blank values do not count as overlap.
// Rows are sorted by intersection size descending, then by column names for
// deterministic output.
func computeOverlap(investors, people *table.Table) ([]OverlapRow, error) {
	invSets := make(map[string]map[string]struct{}, len(investorOverlapKeys))
	for _, k := range investorOverlapKeys {
		set, err := uniqueSet(investors, k)
		if err != nil {
			return nil, fmt.Errorf("overlap analysis: %w", err)
		}
		invSets[k] = set
	}
	pplSets := make(map[string]map[string]struct{}, len(peopleOverlapKeys))
	for _, k := range peopleOverlapKeys {
		set, err := uniqueSet(people, k)
		if err != nil {
			return nil, fmt.Errorf("overlap analysis: %w", err)
		}
		pplSets[k] = set
	}

	var rows []OverlapRow
	for _, ik := range investorOverlapKeys {
		for _, pk := range peopleOverlapKeys {
			common := 0
			small, large := invSets[ik], pplSets[pk]
			if len(large) < len(small) {
				small, large = large, small
			}
			for v := range small {
				if _, ok := large[v]; ok {
					common++
				}
			}
			row := OverlapRow{
				InvestorColumn: ik,
				PeopleColumn:   pk,
				InvUnique:      len(invSets[ik]),
				PplUnique:      len(pplSets[pk]),
				Common:         common,
			}
			if row.InvUnique > 0 {
				row.InvPct = float64(common) / float64(row.InvUnique)
			}
			if row.PplUnique > 0 {
				row.PplPct = float64(common) / float64(row.PplUnique)
			}
			rows = append(rows, row)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Common != rows[j].Common {
			return rows[i].Common > rows[j].Common
		}
		if rows[i].InvestorColumn != rows[j].InvestorColumn {
			return rows[i].InvestorColumn < rows[j].InvestorColumn
		}
		return rows[i].PeopleColumn < rows[j].PeopleColumn
	})
	return rows, nil
}

func uniqueSet(t *table.Table, col string) (map[string]struct{}, error) {
	vals, err := t.UniqueNonBlank(col)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		set[v] = struct{}{}
	}
	return set, nil
}

// OverlapTable renders the overlap rows as a table for CSV output.
func OverlapTable(rows []OverlapRow) *table.Table {
	out := table.MustNew("investor_col", "people_col", "inv_unique", "ppl_unique", "common", "inv_pct", "ppl_pct")
	for _, r := range rows {
		_ = out.AppendRow([]string{
			r.InvestorColumn,
			r.PeopleColumn,
			fmt.Sprintf("%d", r.InvUnique),
			fmt.Sprintf("%d", r.PplUnique),
			fmt.Sprintf("%d", r.Common),
			fmt.Sprintf("%.4f", r.InvPct),
			fmt.Sprintf("%.4f", r.PplPct),
		})
	}
	return out
}
