package wizards

import (
	"strings"
	"time"

	"github.com/yigit/skillmart/internal/pkg/validation"
)

const dateLayout = "2006-01-02"

var now = time.Now

func present(s string) bool {
	return validation.Check(s, validation.NotBlankTag)
}

func allPresent(values ...string) bool {
	for _, v := range values {
		if !present(v) {
			return false
		}
	}
	return true
}

// runesBetween checks the trimmed rune length of s against a validator range tag
func runesBetween(s, tag string) bool {
	return validation.Check(strings.TrimSpace(s), tag)
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	return t, err == nil
}
