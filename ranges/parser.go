package ranges

import (
	"fmt"
	"range-server/domain"
	"range-server/errors"
	"strconv"
	"strings"
)

const unit = "bytes="

// Parse turns a Range header into a RangeSet for a file of the given size.
//
// ok is false when the header carries no byte ranges, or when ifRange is set
// and differs from etag; the caller then serves the full body. A set where even
// one token is invalid is rejected as a whole with ErrRangeUnsatisfiable.
func Parse(header, ifRange string, etag domain.ETag, size uint64) (set domain.RangeSet, ok bool, err error) {
	raw, found := specifier(header)
	if !found {
		return nil, false, nil
	}
	if ifRange != "" && !etag.Matches(ifRange) {
		return nil, false, nil
	}

	tokens := strings.Split(raw, ",")
	set = make(domain.RangeSet, 0, len(tokens))
	for _, token := range tokens {
		spec, valid := parseToken(token, size)
		if !valid {
			continue
		}
		set = append(set, spec)
	}

	if len(set) != len(tokens) {
		return nil, true, fmt.Errorf("%d of %d ranges unsatisfiable for size %d: %w",
			len(tokens)-len(set), len(tokens), size, errors.ErrRangeUnsatisfiable)
	}
	return set, true, nil
}

// specifier returns what follows the first case-insensitive "bytes=".
func specifier(header string) (string, bool) {
	trimmed := strings.TrimSpace(header)
	i := strings.Index(strings.ToLower(trimmed), unit)
	if i < 0 {
		return "", false
	}
	return trimmed[i+len(unit):], true
}

func parseToken(token string, size uint64) (domain.RangeSpec, bool) {
	bounds := strings.Split(token, "-")
	if len(bounds) != 2 || size == 0 {
		return domain.RangeSpec{}, false
	}
	first := strings.TrimSpace(bounds[0])
	last := strings.TrimSpace(bounds[1])
	end := size - 1

	switch {
	case first == "" && isNumeric(last):
		suffix, err := strconv.ParseUint(last, 10, 64)
		if suffix == 0 {
			return domain.RangeSpec{}, false
		}
		if err != nil || suffix > size {
			suffix = size
		}
		return domain.RangeSpec{First: size - suffix, Last: end}, true

	case isNumeric(first) && last == "":
		from, err := strconv.ParseUint(first, 10, 64)
		if err != nil || from > end {
			return domain.RangeSpec{}, false
		}
		return domain.RangeSpec{First: from, Last: end}, true

	case isNumeric(first) && isNumeric(last):
		from, err := strconv.ParseUint(first, 10, 64)
		if err != nil {
			return domain.RangeSpec{}, false
		}
		to, err := strconv.ParseUint(last, 10, 64)
		if err != nil {
			// Larger than any file, clipped below.
			to = end
		}
		if from > to || from > end {
			return domain.RangeSpec{}, false
		}
		if to > end {
			to = end
		}
		return domain.RangeSpec{First: from, Last: to}, true

	default:
		return domain.RangeSpec{}, false
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
