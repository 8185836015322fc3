package metrics

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	hexSegmentRE   = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
	tokenSegmentRE = regexp.MustCompile(`^[A-Za-z0-9_-]{24,}$`)
)

// NormalizePath reemplaza segmentos dinámicos (IDs, tokens) por ":param" para
// no explotar la cardinalidad del label path.
func NormalizePath(p string) string {
	clean := strings.SplitN(p, "?", 2)[0]
	if clean == "" {
		return "/"
	}
	var out []string
	for _, seg := range strings.Split(clean, "/") {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 || hexSegmentRE.MatchString(seg) || tokenSegmentRE.MatchString(seg) {
		return true
	}
	_, err := strconv.Atoi(seg)
	return err == nil
}
