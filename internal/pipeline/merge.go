package pipeline

import (
	"fmt"

	"github.com/ManeeGit/DataWithoutPeople/internal/match"
	"github.com/ManeeGit/DataWithoutPeople/internal/table"
)

// attachFuzzyColumn adds the fuzzy_people helper column to the investors
// table: for each row, the people "Primary Company" value whose token-sort
// score against the investor legal name meets the threshold, or blank.
// It returns how many distinct investor names matched.
func attachFuzzyColumn(investors, people *table.Table, threshold int) (matched int, total int, err error) {
	names, err := investors.UniqueNonBlank(colInvLegalName)
	if err != nil {
		return 0, 0, fmt.Errorf("fuzzy matching: %w", err)
	}
	candidates, err := people.UniqueNonBlank(colPeopleCompany)
	if err != nil {
		return 0, 0, fmt.Errorf("fuzzy matching: %w", err)
	}

	fuzzyMap := match.BuildMap(names, candidates, threshold)

	if err := investors.AddColumn(colFuzzyPeople, ""); err != nil {
		return 0, 0, fmt.Errorf("fuzzy matching: %w", err)
	}
	for i := 0; i < investors.NumRows(); i++ {
		name := investors.Cell(i, colInvLegalName)
		if target, ok := fuzzyMap[name]; ok {
			if err := investors.SetCell(i, colFuzzyPeople, target); err != nil {
				return 0, 0, err
			}
		}
	}
	return len(fuzzyMap), len(names), nil
}

// mergeAll performs the sequential left joins:
// mapping -> deals -> investors -> companies -> people.
func mergeAll(tables map[string]*table.Table) (*table.Table, error) {
	mapping := tables[CategoryMapping]

	m1, err := mapping.LeftJoin(tables[CategoryDeals], colMapDealID, colDealID, "_p2")
	if err != nil {
		return nil, fmt.Errorf("merging deals: %w", err)
	}
	m2, err := m1.LeftJoin(tables[CategoryInvestors], colMapInvestorID, colInvID, "_p2")
	if err != nil {
		return nil, fmt.Errorf("merging investors: %w", err)
	}
	m3, err := m2.LeftJoin(tables[CategoryCompanies], colMapCompanyID, colCompanyID, "_p2")
	if err != nil {
		return nil, fmt.Errorf("merging companies: %w", err)
	}
	merged, err := m3.LeftJoin(tables[CategoryPeople], colFuzzyPeople, colPeopleCompany, "_p2")
	if err != nil {
		return nil, fmt.Errorf("merging people: %w", err)
	}
	return merged, nil
}

// cleanupMerged rewrites the deal-investor linkage and de-duplicates:
// the mapping investor ID becomes deals.Investor ID, the mapping join keys
// and the fuzzy helper column are dropped, and rows are de-duplicated on the
// (deal, investor, company) ID triple keeping the first occurrence.
func cleanupMerged(merged *table.Table) error {
	if !merged.HasColumn(colDealInvestorID) {
		if err := merged.AddColumn(colDealInvestorID, ""); err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
	}
	for i := 0; i < merged.NumRows(); i++ {
		if err := merged.SetCell(i, colDealInvestorID, merged.Cell(i, colMapInvestorID)); err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
	}
	// Deals exports normally carry a Company ID column; backfill from the
	// mapping when they do not, so the output ID triple is always present.
	if !merged.HasColumn(colDealCompanyID) {
		if err := merged.AddColumn(colDealCompanyID, ""); err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
		for i := 0; i < merged.NumRows(); i++ {
			if err := merged.SetCell(i, colDealCompanyID, merged.Cell(i, colMapCompanyID)); err != nil {
				return fmt.Errorf("cleanup: %w", err)
			}
		}
	}
	merged.DropColumns(colMapDealID, colMapCompanyID, colMapInvestorID, colFuzzyPeople)

	if err := merged.DedupeBy(colDealID, colDealInvestorID, colDealCompanyID); err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	return nil
}

// reorderMerged applies the output column ordering: the ID triple first,
// then the remaining columns grouped by category prefix, provenance columns
// last.
func reorderMerged(merged *table.Table) error {
	return merged.ReorderGroups(
		[]string{colDealID, colDealCompanyID, colDealInvestorID},
		[]string{"deals.", "inv.", "comp.", "people."},
		[]string{suffixFileSource, suffixFileSourceType},
	)
}
