package chemical

// PoolID identifies a physical stock location: the central repository or a lab.
type PoolID string

// CentralPool is the intake pool. All stock enters here and is only ever
// moved out by allocation.
const CentralPool PoolID = "central-lab"

// Lab pools that may receive allocations.
const (
	PoolLab01 PoolID = "LAB01"
	PoolLab02 PoolID = "LAB02"
	PoolLab03 PoolID = "LAB03"
	PoolLab04 PoolID = "LAB04"
	PoolLab05 PoolID = "LAB05"
	PoolLab06 PoolID = "LAB06"
	PoolLab07 PoolID = "LAB07"
	PoolLab08 PoolID = "LAB08"
)

// LabPools lists every allocatable lab pool in display order.
var LabPools = []PoolID{
	PoolLab01, PoolLab02, PoolLab03, PoolLab04,
	PoolLab05, PoolLab06, PoolLab07, PoolLab08,
}

// KnownPools lists the central pool followed by all lab pools.
func KnownPools() []PoolID {
	pools := make([]PoolID, 0, len(LabPools)+1)
	pools = append(pools, CentralPool)
	pools = append(pools, LabPools...)
	return pools
}

// IsLabPool reports whether id names a lab that can be an allocation target.
// The central pool is never a valid target.
func IsLabPool(id PoolID) bool {
	for _, lab := range LabPools {
		if id == lab {
			return true
		}
	}
	return false
}

// IsKnownPool reports whether id names any pool, central included.
func IsKnownPool(id PoolID) bool {
	return id == CentralPool || IsLabPool(id)
}

func (p PoolID) String() string {
	return string(p)
}
