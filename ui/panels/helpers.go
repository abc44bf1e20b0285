package panels

import (
	"sort"
	"strings"

	"floorplan-mapper/internal/layout"
)

// roomLabel is the list text for a room: its name, or its id when unnamed,
// followed by the type.
func roomLabel(r layout.Room) string {
	name := r.Name
	if name == "" {
		name = r.ID
	}
	if r.Type == "" {
		return name
	}
	return name + " (" + r.Type + ")"
}

// sortRooms orders rooms by label using natural numeric ordering.
func sortRooms(rooms []layout.Room) {
	sort.SliceStable(rooms, func(i, j int) bool {
		return naturalLess(roomLabel(rooms[i]), roomLabel(rooms[j]))
	})
}

// naturalLess compares two strings using natural numeric ordering.
// "Office 2" < "Office 10".
func naturalLess(a, b string) bool {
	chunksA := splitNatural(a)
	chunksB := splitNatural(b)
	for i := 0; i < len(chunksA) && i < len(chunksB); i++ {
		ca, cb := chunksA[i], chunksB[i]
		if isNumeric(ca) && isNumeric(cb) {
			na := parseNum(ca)
			nb := parseNum(cb)
			if na != nb {
				return na < nb
			}
		} else {
			cmp := strings.Compare(strings.ToUpper(ca), strings.ToUpper(cb))
			if cmp != 0 {
				return cmp < 0
			}
		}
	}
	return len(chunksA) < len(chunksB)
}

func splitNatural(s string) []string {
	var chunks []string
	var current strings.Builder
	wasDigit := false
	for i, r := range s {
		isDigit := r >= '0' && r <= '9'
		if i > 0 && isDigit != wasDigit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteRune(r)
		wasDigit = isDigit
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func parseNum(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n = n*10 + int(r-'0')
		}
	}
	return n
}
