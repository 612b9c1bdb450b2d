package pipeline

// Category names. These match the file_source_type provenance values.
const (
	CategoryDeals     = "deals"
	CategoryCompanies = "companies"
	CategoryInvestors = "investors"
	CategoryPeople    = "people"
	CategoryMapping   = "mapping"
)

// Standard column names produced by the loader and consumed by the merge
// stages.
const (
	colDealID         = "deals.Deal ID"
	colDealCompanyID  = "deals.Company ID"
	colDealInvestorID = "deals.Investor ID"
	colCompanyID      = "comp.Company ID"
	colInvID          = "inv.Investor ID"
	colInvLegalName   = "inv.Investor Legal Name"
	colInvPBID        = "inv.PBId"
	colPeoplePBID     = "people.PBId"
	colPeopleCompany  = "people.Primary Company"
	colMapDealID      = "map.Deal ID"
	colMapCompanyID   = "map.Company ID"
	colMapInvestorID  = "map.Investor ID"
	colFuzzyPeople    = "fuzzy_people"

	suffixFileSource     = ".file_source"
	suffixFileSourceType = ".file_source_type"
)

// Category describes one class of input workbooks.
type Category struct {
	// Name is the category identifier ("deals", "investors", ...).
	Name string
	// Prefix is prepended to every column of the category ("deals.").
	Prefix string
	// Patterns are the file globs, relative to the input directory.
	Patterns []string
	// IDColumns identify the header row: a preview row containing any of
	// them is the header.
	IDColumns []string
	// UseColumns, when non-empty, restricts the loaded table to these
	// columns (before prefixing).
	UseColumns []string
}

// DefaultCategories returns the PitchBook export categories with their
// conventional file name patterns.
func DefaultCategories() []Category {
	return []Category{
		{
			Name:      CategoryDeals,
			Prefix:    "deals.",
			Patterns:  []string{"deals_*.xlsx"},
			IDColumns: []string{"Deal ID"},
		},
		{
			Name:      CategoryCompanies,
			Prefix:    "comp.",
			Patterns:  []string{"companies_*.xlsx"},
			IDColumns: []string{"Company ID"},
		},
		{
			Name:      CategoryInvestors,
			Prefix:    "inv.",
			Patterns:  []string{"investors*.xlsx"},
			IDColumns: []string{"Investor ID", "Investor Legal Name", "PBId"},
		},
		{
			Name:      CategoryPeople,
			Prefix:    "people.",
			Patterns:  []string{"people_*.xlsx"},
			IDColumns: []string{"PBId", "Primary Company"},
		},
		{
			Name:       CategoryMapping,
			Prefix:     "map.",
			Patterns:   []string{"*Deal_Investors*.xlsx"},
			IDColumns:  []string{"Deal ID", "Company ID", "Investor ID"},
			UseColumns: []string{"Deal ID", "Company ID", "Investor ID"},
		},
	}
}
