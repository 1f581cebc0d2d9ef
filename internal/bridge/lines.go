package bridge

import (
	"strconv"
	"strings"

	"github.com/ironsheep/frame-bridge/internal/detection"
)

// Separators of the line wire format.
const (
	pairSep  = ";"
	fieldSep = ","
)

// FormatLines serializes lines as "rho,theta;" pairs in the given order.
//
// Numbers use six significant digits, the default precision of a C++
// ostream, so hosts written against the native library parse the same
// text. An empty slice yields the empty string.
func FormatLines(lines []detection.Line) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(formatFloat(l.Rho))
		sb.WriteString(fieldSep)
		sb.WriteString(formatFloat(l.Theta))
		sb.WriteString(pairSep)
	}
	return sb.String()
}

// ParseLines reads the output of FormatLines back into lines.
//
// Parsing is lenient the way the camera host is: segments without a comma,
// with more than two fields, or with fields that are not numbers are
// skipped rather than reported. Votes are not part of the format and come
// back as zero.
func ParseLines(s string) []detection.Line {
	lines := make([]detection.Line, 0)
	for _, seg := range strings.Split(s, pairSep) {
		if !strings.Contains(seg, fieldSep) {
			continue
		}
		parts := strings.Split(seg, fieldSep)
		if len(parts) != 2 {
			continue
		}
		rho, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 32)
		if err != nil {
			continue
		}
		theta, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 32)
		if err != nil {
			continue
		}
		lines = append(lines, detection.Line{Rho: float32(rho), Theta: float32(theta)})
	}
	return lines
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', 6, 32)
}
