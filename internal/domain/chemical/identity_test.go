package chemical

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func testMaster(t *testing.T, name string, expiry time.Time) *MasterRecord {
	t.Helper()
	m, err := NewMasterRecord(name, decimal.NewFromInt(10), "mL", expiry, "BATCH-20260301-001", "Sigma", decimal.NewFromInt(5), "chemistry")
	require.NoError(t, err)
	return m
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "Acetone", BaseName("Acetone"))
	assert.Equal(t, "Acetone", BaseName("Acetone - A"))
	assert.Equal(t, "Acetone", BaseName("Acetone - b"))
	assert.Equal(t, "Acetone-A", BaseName("Acetone-A"), "no spaced separator, not a suffix")
	assert.Equal(t, "Acetone - AB", BaseName("Acetone - AB"), "multi-letter tail is part of the name")
}

func TestSuffixOf(t *testing.T) {
	r, ok := SuffixOf("Acetone", "Acetone - C")
	require.True(t, ok)
	assert.Equal(t, 'C', r)

	r, ok = SuffixOf("acetone", "ACETONE - d")
	require.True(t, ok)
	assert.Equal(t, 'D', r, "suffix comparison ignores case and normalizes to upper")

	_, ok = SuffixOf("Acetone", "Acetone")
	assert.False(t, ok)

	_, ok = SuffixOf("Acetone", "Ethanol - A")
	assert.False(t, ok)
}

func TestUsedSuffixes(t *testing.T) {
	used := UsedSuffixes("Acetone", []string{"Acetone", "Acetone - A", "acetone - c", "Ethanol - B"})
	assert.ElementsMatch(t, []rune{'A', 'C'}, used)
}

func TestNextSuffix(t *testing.T) {
	assert.Equal(t, 'A', NextSuffix(nil))
	assert.Equal(t, 'B', NextSuffix([]rune{'A'}))
	assert.Equal(t, 'D', NextSuffix([]rune{'C', 'A'}))
	assert.Equal(t, 'D', NextSuffix([]rune{'A', 'C'}), "gaps are not reused")
}

func TestMatchesIdentity(t *testing.T) {
	m := testMaster(t, "Acetone - A", day(10))
	c := Candidate{Name: "acetone", Vendor: "sigma", Unit: "mL", Expiry: day(5)}

	assert.True(t, MatchesIdentity(c, m))

	c.Unit = "L"
	assert.False(t, MatchesIdentity(c, m), "unit must match exactly")
}

func TestResolve_NoExisting(t *testing.T) {
	res := Resolve(Candidate{Name: "Acetone", Expiry: day(10)}, nil, nil)

	assert.Equal(t, MatchNew, res.Kind)
	assert.Equal(t, "Acetone", res.AssignedName)
	assert.Empty(t, res.Renames)
}

func TestResolve_ExactExpiryMerges(t *testing.T) {
	existing := testMaster(t, "Acetone", day(10))

	res := Resolve(Candidate{Name: "Acetone", Expiry: day(10)}, []*MasterRecord{existing}, nil)

	assert.Equal(t, MatchMerge, res.Kind)
	require.NotNil(t, res.Target)
	assert.Equal(t, existing.ID, res.Target.ID)
}

func TestResolve_LaterExpiryGetsSuffix(t *testing.T) {
	existing := testMaster(t, "Acetone", day(10))

	res := Resolve(Candidate{Name: "Acetone", Expiry: day(20)}, []*MasterRecord{existing}, nil)

	assert.Equal(t, MatchSuffix, res.Kind)
	assert.Equal(t, "Acetone - A", res.AssignedName)
	assert.Empty(t, res.Renames, "existing records keep their names")
}

func TestResolve_SuffixSkipsTakenLetters(t *testing.T) {
	base := testMaster(t, "Acetone", day(10))
	suffixed := testMaster(t, "Acetone - A", day(15))

	res := Resolve(
		Candidate{Name: "Acetone", Expiry: day(20)},
		[]*MasterRecord{base, suffixed},
		[]rune{'A'},
	)

	assert.Equal(t, MatchSuffix, res.Kind)
	assert.Equal(t, "Acetone - B", res.AssignedName)
}

func TestResolve_EarlierExpiryTakesBaseName(t *testing.T) {
	existing := testMaster(t, "Acetone", day(20))

	res := Resolve(Candidate{Name: "Acetone", Expiry: day(10)}, []*MasterRecord{existing}, nil)

	assert.Equal(t, MatchRebase, res.Kind)
	assert.Equal(t, "Acetone", res.AssignedName)
	require.Len(t, res.Renames, 1)
	assert.Equal(t, existing.ID, res.Renames[0].RecordID)
	assert.Equal(t, "Acetone - A", res.Renames[0].NewName)
}

func TestResolve_RebaseAssignsDistinctSuffixes(t *testing.T) {
	// Two records somehow both hold the bare base name; each one must move
	// to its own suffix so stored names stay unique.
	first := testMaster(t, "Acetone", day(20))
	second := testMaster(t, "Acetone", day(30))

	res := Resolve(Candidate{Name: "Acetone", Expiry: day(10)}, []*MasterRecord{second, first}, nil)

	require.Equal(t, MatchRebase, res.Kind)
	require.Len(t, res.Renames, 2)
	assert.Equal(t, first.ID, res.Renames[0].RecordID, "earliest expiry renamed first")
	assert.Equal(t, "Acetone - A", res.Renames[0].NewName)
	assert.Equal(t, second.ID, res.Renames[1].RecordID)
	assert.Equal(t, "Acetone - B", res.Renames[1].NewName)
}

func TestResolve_RebaseKeepsExistingSuffixes(t *testing.T) {
	base := testMaster(t, "Acetone", day(20))
	suffixed := testMaster(t, "Acetone - A", day(30))

	res := Resolve(
		Candidate{Name: "Acetone", Expiry: day(10)},
		[]*MasterRecord{base, suffixed},
		[]rune{'A'},
	)

	require.Equal(t, MatchRebase, res.Kind)
	require.Len(t, res.Renames, 1, "already-suffixed records are untouched")
	assert.Equal(t, base.ID, res.Renames[0].RecordID)
	assert.Equal(t, "Acetone - B", res.Renames[0].NewName)
}

func TestResolve_MergeWinsOverSuffix(t *testing.T) {
	earlier := testMaster(t, "Acetone", day(5))
	same := testMaster(t, "Acetone - A", day(10))

	res := Resolve(Candidate{Name: "Acetone", Expiry: day(10)}, []*MasterRecord{earlier, same}, []rune{'A'})

	assert.Equal(t, MatchMerge, res.Kind)
	require.NotNil(t, res.Target)
	assert.Equal(t, same.ID, res.Target.ID)
}
