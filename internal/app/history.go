package app

import "strings"

// history is the in-memory list of submitted inputs. Browsing is filtered
// by whatever was typed before the first Up.
type history struct {
	entries []string
	index   int // -1 when not browsing
	prefix  string
}

func newHistory() history {
	return history{index: -1}
}

func (h *history) add(entry string) {
	h.index = -1
	if strings.TrimSpace(entry) == "" {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return
	}
	h.entries = append(h.entries, entry)
}

// reset stops browsing; the next up starts from the newest entry again.
func (h *history) reset() {
	h.index = -1
}

// up returns the previous entry matching the prefix.
func (h *history) up(current string) (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.index == -1 {
		h.prefix = current
		h.index = len(h.entries)
	}
	for i := h.index - 1; i >= 0; i-- {
		if strings.HasPrefix(h.entries[i], h.prefix) {
			h.index = i
			return h.entries[i], true
		}
	}
	return "", false
}

// down returns the next newer match, or the saved prefix once the newest
// entry is passed.
func (h *history) down() (string, bool) {
	if h.index == -1 {
		return "", false
	}
	for i := h.index + 1; i < len(h.entries); i++ {
		if strings.HasPrefix(h.entries[i], h.prefix) {
			h.index = i
			return h.entries[i], true
		}
	}
	h.index = -1
	return h.prefix, true
}
