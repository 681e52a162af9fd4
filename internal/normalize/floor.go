package normalize

import (
	"strconv"
	"strings"

	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
)

// ParseFloor splits a floor designator into its parts. It always returns a
// record; fields that cannot be read stay unset and Raw keeps the input.
//
//	"5/18"  -> current "5", total 18
//	"1-2/2" -> duplex 1..2, total 2
//	"-1"    -> basement
func ParseFloor(raw string) entity.FloorInfo {
	s := Compact(raw)
	info := entity.FloorInfo{Raw: raw, Current: s}
	if s == "" {
		return info
	}

	cur := s
	if i := strings.IndexByte(s, '/'); i >= 0 {
		cur = s[:i]
		if t, ok := leadingInt(trimFloorWords(s[i+1:])); ok {
			info.Total = &t
		}
	}
	cur = trimFloorWords(cur)
	info.Current = cur

	switch {
	case strings.HasPrefix(cur, "地下"):
		info.IsBasement = true
	case strings.HasPrefix(cur, "-"):
		if !strings.Contains(cur[1:], "-") {
			info.IsBasement = true
		}
	case strings.Contains(cur, "-"):
		info.IsDuplex = true
		parts := strings.SplitN(cur, "-", 2)
		if a, ok := leadingInt(parts[0]); ok {
			info.DuplexStart = &a
		}
		if b, ok := leadingInt(parts[1]); ok {
			info.DuplexEnd = &b
		}
	}
	return info
}

func trimFloorWords(s string) string {
	s = strings.TrimPrefix(s, "第")
	s = strings.TrimSuffix(s, "层")
	s = strings.TrimSuffix(s, "楼")
	s = strings.TrimPrefix(s, "共")
	return s
}

func leadingInt(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return v, true
}
