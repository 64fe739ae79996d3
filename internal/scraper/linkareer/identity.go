package linkareer

import (
	"strconv"
	"strings"
)

// ResolveID returns the posting id encoded in the trailing path segment of a
// detail link. Links outside ActivityPrefix or with a non-numeric tail have
// no id; that is a normal outcome and callers skip the link.
func ResolveID(link string) (int64, bool) {
	rest, ok := strings.CutPrefix(link, ActivityPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
