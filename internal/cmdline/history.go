package cmdline

// DefaultMinLength is the shortest command kept in history. Shorter
// commands are kept only when they are all digits.
const DefaultMinLength = 4

// History is the command history. Slot 0 holds the line being edited;
// older commands follow, most recent first. Edits made while browsing
// are written back into the slot being shown.
type History struct {
	MinLength int

	entries []string
	pos     int
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{MinLength: DefaultMinLength, entries: []string{""}}
}

// Previous saves current into the shown slot and returns the next older
// entry. It reports false at the oldest entry.
func (h *History) Previous(current string) (string, bool) {
	if h.pos >= len(h.entries)-1 {
		return "", false
	}
	h.entries[h.pos] = current
	h.pos++
	return h.entries[h.pos], true
}

// Next saves current into the shown slot and returns the next newer
// entry. From the draft slot a non-empty line is pushed into history and
// the draft is cleared.
func (h *History) Next(current string) (string, bool) {
	if h.pos == 0 {
		if current == "" {
			return "", false
		}
		h.entries[0] = current
		h.entries = append([]string{""}, h.entries...)
		return "", true
	}
	h.entries[h.pos] = current
	h.pos--
	return h.entries[h.pos], true
}

// Commit records a sent command and returns to the draft slot.
func (h *History) Commit(cmd string) {
	h.pos = 0
	h.entries[0] = ""
	if len(cmd) < h.MinLength && !allDigits(cmd) {
		return
	}
	if len(h.entries) > 1 && h.entries[1] == cmd {
		return
	}
	h.entries = append([]string{"", cmd}, h.entries[1:]...)
}

// Recent returns the nth most recent command, 1 being the last.
func (h *History) Recent(n int) (string, bool) {
	if n < 1 || n >= len(h.entries) {
		return "", false
	}
	return h.entries[n], true
}

// Len is the number of stored commands.
func (h *History) Len() int { return len(h.entries) - 1 }

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
