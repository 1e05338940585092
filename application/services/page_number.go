package services

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var digitsRegexp = regexp.MustCompile(`\d+`)

// pageNumber returns the last run of digits in the base name of fileName
// without its extension, so page.003.png, slide_page_03.wav and
// slide_3.mp3 all map to page 3.
func pageNumber(fileName string) (int, bool) {
	base := filepath.Base(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	matches := digitsRegexp.FindAllString(base, -1)
	if len(matches) == 0 {
		return 0, false
	}
	number, err := strconv.Atoi(matches[len(matches)-1])
	if err != nil {
		return 0, false
	}
	return number, true
}
