package bot

import "strings"

// Telegram caps messages at 4096 characters; leave room for fences and escapes.
const maxMessageLength = 3800

const fence = "```"

// splitMessage breaks text into chunks of at most limit bytes on line boundaries. A code
// block cut by a boundary is closed at the end of one chunk and reopened in the next.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	inFence := false
	hasContent := false

	flush := func() {
		if !hasContent {
			return
		}
		if inFence {
			if !strings.HasSuffix(current.String(), "\n") {
				current.WriteString("\n")
			}
			current.WriteString(fence)
		}
		chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
		current.Reset()
		hasContent = false
		if inFence {
			current.WriteString(fence + "\n")
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		reserve := 0
		if inFence && strings.TrimSpace(line) != fence {
			reserve = len(fence) + 1
		}
		for len(line) > 0 && current.Len()+len(line)+reserve > limit {
			if hasContent {
				flush()
				continue
			}
			// A single line longer than a message is cut where it overflows.
			n := max(limit-current.Len()-reserve, 1)
			current.WriteString(line[:n])
			line = line[n:]
			hasContent = true
			flush()
		}
		if line == "" {
			continue
		}
		current.WriteString(line)
		hasContent = true
		if strings.TrimSpace(line) == fence {
			inFence = !inFence
		}
	}
	flush()

	return chunks
}
