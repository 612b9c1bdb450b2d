package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManeeGit/DataWithoutPeople/internal/table"
)

func TestComputeOverlap(t *testing.T) {
	inv := table.MustNew(colInvID, colInvLegalName, colInvPBID)
	require.NoError(t, inv.AppendRow([]string{"i1", "Acme Capital", "pb1"}))
	require.NoError(t, inv.AppendRow([]string{"i2", "Globex Partners", "pb2"}))
	require.NoError(t, inv.AppendRow([]string{"i3", "Initech Ventures", ""}))

	ppl := table.MustNew(colPeoplePBID, colPeopleCompany)
	require.NoError(t, ppl.AppendRow([]string{"pb1", "Acme Capital"}))
	require.NoError(t, ppl.AppendRow([]string{"pb9", "Hooli"}))
	require.NoError(t, ppl.AppendRow([]string{"", "Hooli"}))

	rows, err := computeOverlap(inv, ppl)
	require.NoError(t, err)
	require.Len(t, rows, 6)

	// Best pairs first: PBId/PBId and Legal Name/Primary Company share one
	// value each.
	assert.Equal(t, 1, rows[0].Common)
	assert.Equal(t, 1, rows[1].Common)

	byPair := make(map[[2]string]OverlapRow, len(rows))
	for _, r := range rows {
		byPair[[2]string{r.InvestorColumn, r.PeopleColumn}] = r
	}

	pbid := byPair[[2]string{colInvPBID, colPeoplePBID}]
	assert.Equal(t, 2, pbid.InvUnique, "blank PBId must not count")
	assert.Equal(t, 2, pbid.PplUnique)
	assert.Equal(t, 1, pbid.Common)
	assert.InDelta(t, 0.5, pbid.InvPct, 1e-9)
	assert.InDelta(t, 0.5, pbid.PplPct, 1e-9)

	name := byPair[[2]string{colInvLegalName, colPeopleCompany}]
	assert.Equal(t, 1, name.Common)
	assert.InDelta(t, 1.0/3.0, name.InvPct, 1e-9)

	id := byPair[[2]string{colInvID, colPeoplePBID}]
	assert.Equal(t, 0, id.Common)
	assert.Zero(t, id.InvPct)
}

func TestOverlapTable(t *testing.T) {
	tbl := OverlapTable([]OverlapRow{{
		InvestorColumn: colInvPBID,
		PeopleColumn:   colPeoplePBID,
		InvUnique:      2,
		PplUnique:      4,
		Common:         1,
		InvPct:         0.5,
		PplPct:         0.25,
	}})
	require.Equal(t, 1, tbl.NumRows())
	assert.Equal(t, "0.5000", tbl.Cell(0, "inv_pct"))
	assert.Equal(t, "0.2500", tbl.Cell(0, "ppl_pct"))
	assert.Equal(t, "1", tbl.Cell(0, "common"))
}
