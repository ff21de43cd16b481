package pengembalian

import "strings"

// Vocabulary for condition classification. Matching is lower-cased
// substring containment, never equality, so "Hilang 1 pcs" and
// "barang hilang" both classify as lost.
var lostWords = []string{
	"hilang",
	"tidak kembali",
	"tidak dikembalikan",
	"belum kembali",
	"tidak balik",
	"lost",
}

var damageWords = []string{
	"rusak",
	"robek",
	"sobek",
	"noda",
	"kotor",
	"luntur",
	"pudar",
	"jamur",
	"bolong",
}

// IsLost reports whether a free-text end condition describes an item
// that was not physically returned. Anything not matching is treated
// as returned; that is a valid answer, not a failure.
func IsLost(kondisi string) bool {
	return containsAny(kondisi, lostWords)
}

// IsDamaged reports whether a returned condition describes damage short
// of total loss. A lost condition is not damaged; loss takes precedence.
func IsDamaged(kondisi string) bool {
	if IsLost(kondisi) {
		return false
	}
	return containsAny(kondisi, damageWords)
}

func containsAny(s string, words []string) bool {
	low := strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(low, w) {
			return true
		}
	}
	return false
}
