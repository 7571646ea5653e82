package recon

import (
	"regexp"
	"strings"
)

// Share listing grammar (net view \\host /all):
//
//	listing  = { line }
//	share    = name SEP type [ SEP used-as ] [ SEP comment ]
//	SEP      = two or more whitespace characters
//
// Columns are padded with runs of spaces while a share name holds at most
// single spaces, so a row is split on runs of two or more. A row is a disk
// share when its second column is exactly DiskShareMarker; the first column
// is the name. A name that fills its column leaves only one space before
// the type, so a first column of exactly two fields ending in the marker
// is read as name and type. Header, separator and status lines never carry
// the marker in the type column.
const (
	DiskShareMarker   = "Disk"
	UnreachableMarker = "error 53"
)

var columnSep = regexp.MustCompile(`\s{2,}`)

// ParseShares returns the disk share names in listing order
func ParseShares(output string) []string {
	var shares []string
	for _, line := range strings.Split(output, "\n") {
		if name, ok := diskShare(strings.TrimSpace(line)); ok {
			shares = append(shares, name)
		}
	}
	return shares
}

func diskShare(line string) (string, bool) {
	if line == "" {
		return "", false
	}
	cols := columnSep.Split(line, -1)
	if len(cols) >= 2 && cols[1] == DiskShareMarker {
		return cols[0], true
	}
	if fields := strings.Fields(cols[0]); len(fields) == 2 && fields[1] == DiskShareMarker {
		return fields[0], true
	}
	return "", false
}

// IsUnreachable reports whether a failed listing says the host could not
// be reached (network path not found)
func IsUnreachable(output string) bool {
	return strings.Contains(strings.ToLower(output), UnreachableMarker)
}

// firstLine returns the first non-blank line of s
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
