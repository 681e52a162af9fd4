package normalize

import "regexp"

var (
	districtPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:省|市|^)(\p{Han}{1,4}?[区县])`),
		regexp.MustCompile(`(\p{Han}{2,4}[区县])`),
		regexp.MustCompile(`(?:省|^)(\p{Han}{2,4}?市)`),
	}
	streetPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\p{Han}{2,6}?街道)`),
		regexp.MustCompile(`(\p{Han}{2,4}?镇)`),
		regexp.MustCompile(`(\p{Han}{2,4}?乡)`),
	}
)

// SplitAddress derives the district (区/县/市) and street (街道/镇/乡) of an address.
func SplitAddress(address string) (district, street string) {
	s := Compact(address)
	rest := s
	for _, re := range districtPatterns {
		if loc := re.FindStringSubmatchIndex(s); loc != nil {
			district = s[loc[2]:loc[3]]
			rest = s[loc[3]:]
			break
		}
	}
	for _, re := range streetPatterns {
		if m := re.FindStringSubmatch(rest); m != nil {
			street = m[1]
			break
		}
	}
	return district, street
}
