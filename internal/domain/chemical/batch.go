package chemical

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"
)

// Batch ids group the master records created or merged by one intake
// request: BATCH-YYYYMMDD-NNN with a random three-digit discriminator.

var batchIDPattern = regexp.MustCompile(`^BATCH-\d{8}-\d{3}$`)

// NewBatchID generates a batch id for an intake happening at the given time.
func NewBatchID(at time.Time) string {
	return fmt.Sprintf("BATCH-%s-%03d", at.Format("20060102"), rand.Intn(1000))
}

// IsValidBatchID reports whether id has the BATCH-YYYYMMDD-NNN shape.
func IsValidBatchID(id string) bool {
	return batchIDPattern.MatchString(id)
}
