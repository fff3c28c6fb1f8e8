package chemical

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Identity resolution decides what happens when an intake entry meets the
// master records already on file for the same base name, vendor and unit.
// Two lots of the same chemical with different expiry dates must end up under
// distinct stored names; the lot expiring first holds the plain base name and
// later lots carry " - A", " - B", ... suffixes. All functions here are pure.

// Candidate is the identity of an incoming intake entry.
type Candidate struct {
	Name   string
	Vendor string
	Unit   string
	Expiry time.Time
}

// MatchKind classifies the outcome of resolving a candidate.
type MatchKind int

const (
	// MatchNew means no comparable record exists; the candidate keeps the
	// base name.
	MatchNew MatchKind = iota
	// MatchMerge means a record with the identical expiry exists; the
	// candidate's quantity folds into Target.
	MatchMerge
	// MatchSuffix means an existing lot expires earlier; the candidate is
	// stored under the next free suffix.
	MatchSuffix
	// MatchRebase means the candidate expires before every existing lot; it
	// claims the base name and the current base-name holder is suffixed.
	MatchRebase
)

// Rename is an instruction to restore name uniqueness during a rebase.
type Rename struct {
	RecordID uuid.UUID
	NewName  string
}

// Resolution is the resolver's verdict for one candidate.
type Resolution struct {
	Kind         MatchKind
	Target       *MasterRecord // the record to merge into, for MatchMerge
	AssignedName string        // stored name for the incoming record, except for MatchMerge
	Renames      []Rename      // renames to apply first, for MatchRebase
}

var suffixPattern = regexp.MustCompile(`(?i)^(.*) - ([A-Z])$`)

// BaseName strips a single " - X" disambiguation suffix. Names without a
// suffix come back unchanged.
func BaseName(name string) string {
	if m := suffixPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return name
}

// SuffixOf extracts the disambiguation suffix of name relative to base,
// normalized to upper case. ok is false when name is not base plus a suffix.
func SuffixOf(base, name string) (rune, bool) {
	m := suffixPattern.FindStringSubmatch(name)
	if m == nil || !strings.EqualFold(m[1], base) {
		return 0, false
	}
	r := rune(strings.ToUpper(m[2])[0])
	return r, true
}

// UsedSuffixes collects the suffixes already taken for a base name,
// case-insensitively. Names equal to the bare base contribute nothing.
func UsedSuffixes(base string, names []string) []rune {
	var used []rune
	for _, name := range names {
		if r, ok := SuffixOf(base, name); ok {
			used = append(used, r)
		}
	}
	return used
}

// NextSuffix returns 'A' when no suffix is taken, otherwise the letter after
// the highest taken one.
func NextSuffix(used []rune) rune {
	next := 'A'
	for _, r := range used {
		if r >= next {
			next = r + 1
		}
	}
	return next
}

// MatchesIdentity reports whether a master record shares the candidate's
// identity: same base name (suffix ignored, case-insensitive), same vendor
// and same unit.
func MatchesIdentity(c Candidate, m *MasterRecord) bool {
	return strings.EqualFold(BaseName(m.ChemicalName), BaseName(c.Name)) &&
		strings.EqualFold(m.Vendor, c.Vendor) &&
		m.Unit == c.Unit
}

// Resolve classifies a candidate against the records sharing its identity.
// existing must contain every master whose identity matches the candidate;
// usedSuffixes holds every suffix taken for the base name, across all
// vendors and units, so a freed suffix is never reissued.
func Resolve(c Candidate, existing []*MasterRecord, usedSuffixes []rune) Resolution {
	base := BaseName(c.Name)

	if len(existing) == 0 {
		return Resolution{Kind: MatchNew, AssignedName: base}
	}

	for _, m := range existing {
		if m.ExpiryDate.Equal(c.Expiry) {
			return Resolution{Kind: MatchMerge, Target: m}
		}
	}

	for _, m := range existing {
		if m.ExpiryDate.Before(c.Expiry) {
			suffix := NextSuffix(usedSuffixes)
			return Resolution{
				Kind:         MatchSuffix,
				AssignedName: base + " - " + string(suffix),
			}
		}
	}

	// The candidate expires before everything on file: it takes the base
	// name and each record still holding the bare base name moves to its
	// own fresh suffix. Records already suffixed keep their suffix.
	holders := make([]*MasterRecord, 0, len(existing))
	for _, m := range existing {
		if strings.EqualFold(m.ChemicalName, base) {
			holders = append(holders, m)
		}
	}
	sort.Slice(holders, func(i, j int) bool {
		return holders[i].ExpiryDate.Before(holders[j].ExpiryDate)
	})

	used := append([]rune(nil), usedSuffixes...)
	renames := make([]Rename, 0, len(holders))
	for _, m := range holders {
		suffix := NextSuffix(used)
		used = append(used, suffix)
		renames = append(renames, Rename{
			RecordID: m.ID,
			NewName:  base + " - " + string(suffix),
		})
	}

	return Resolution{
		Kind:         MatchRebase,
		AssignedName: base,
		Renames:      renames,
	}
}
