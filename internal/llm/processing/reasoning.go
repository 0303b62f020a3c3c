package processing

import "strings"

// TagPair delimits an inline reasoning block inside model output.
type TagPair struct {
	Open  string
	Close string
}

// ThinkTags is the delimiter pair emitted by DeepSeek-style reasoning models.
var ThinkTags = TagPair{Open: "<think>", Close: "</think>"}

// ExtractThinking splits a complete message into visible content and
// reasoning using the default think tags.
func ExtractThinking(text string) (content string, reasoning string) {
	return SplitTagged(text, ThinkTags)
}

// SplitTagged separates everything inside tag blocks from everything outside
// them. Multiple blocks concatenate, and an unclosed block runs to the end
// of the input.
func SplitTagged(text string, tags TagPair) (content string, reasoning string) {
	var visible, thought strings.Builder

	inBlock := false
	for len(text) > 0 {
		tag := tags.Open
		dst := &visible
		if inBlock {
			tag = tags.Close
			dst = &thought
		}

		idx := strings.Index(text, tag)
		if idx < 0 {
			dst.WriteString(text)
			break
		}
		dst.WriteString(text[:idx])
		text = text[idx+len(tag):]
		inBlock = !inBlock
	}

	return visible.String(), thought.String()
}

// StreamParser is the chunkwise form of SplitTagged. It carries state across
// Process calls so a tag split between two chunks is still recognized.
type StreamParser struct {
	tags    TagPair
	inBlock bool
	carry   string
}

func NewStreamParser() *StreamParser {
	return NewTagParser(ThinkTags)
}

// NewTagParser builds a parser for a custom delimiter pair.
func NewTagParser(tags TagPair) *StreamParser {
	return &StreamParser{tags: tags}
}

// Process consumes one chunk and returns the visible and reasoning text it
// completed. Trailing bytes that could be the start of a tag are held back
// until the next chunk.
func (p *StreamParser) Process(input string) (content string, reasoning string) {
	text := p.carry + input
	p.carry = ""

	var visible, thought strings.Builder

	for len(text) > 0 {
		tag := p.tags.Open
		dst := &visible
		if p.inBlock {
			tag = p.tags.Close
			dst = &thought
		}

		if idx := strings.Index(text, tag); idx >= 0 {
			dst.WriteString(text[:idx])
			text = text[idx+len(tag):]
			p.inBlock = !p.inBlock
			continue
		}

		held := partialTagSuffix(text, tag)
		dst.WriteString(text[:len(text)-held])
		p.carry = text[len(text)-held:]
		break
	}

	return visible.String(), thought.String()
}

// partialTagSuffix reports how many trailing bytes of text form a proper
// prefix of tag. Those bytes cannot be emitted yet.
func partialTagSuffix(text, tag string) int {
	max := len(tag) - 1
	if len(text) < max {
		max = len(text)
	}
	for i := max; i > 0; i-- {
		if strings.HasPrefix(tag, text[len(text)-i:]) {
			return i
		}
	}
	return 0
}
