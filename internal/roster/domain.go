package roster

import (
	"fmt"
	"hash/fnv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Institution domains are allocated from this number upward.
const domainSeq = 1001

// NormalizeInstitution canonicalizes an institution name for comparison and
// domain lookup. Korean input arrives in mixed Unicode normal forms depending
// on the client OS, so names are folded to NFC before anything else.
func NormalizeInstitution(name string) string {
	return strings.TrimSpace(norm.NFC.String(name))
}

// fallbackDomain derives a stable domain from the institution name alone,
// for stores that cannot hand out sequence numbers.
func fallbackDomain(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return fmt.Sprintf("institute%04d", h.Sum32()%9000+1000)
}

// StudentEmail builds the synthetic login email for a student id within an
// institution domain.
func StudentEmail(studentID, domain string) string {
	return fmt.Sprintf("%s@%s", strings.TrimSpace(studentID), domain)
}
