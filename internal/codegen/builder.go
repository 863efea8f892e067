package codegen

import "fmt"

// line is one emitted ZAP line: a label, an instruction, or both combined.
type line struct {
	label string // "" if none
	text  string // "" if this line is a bare label
}

// builder emits one routine's body. Label and temp counters are scoped to
// the builder's lifetime (one per routine), matching the generator's
// "scoped context... restores the temp counter and stack base when a
// routine or sub-expression region ends" rule.
type builder struct {
	lines      []line
	tempN      int
	labelN     int
	stackDepth int
	loopEnds   []string // RETURN targets, innermost last
	pendingLbl string
}

func newBuilder() *builder { return &builder{} }

// newTemp returns a fresh TEMP name, scoped to this routine.
func (b *builder) newTemp() string {
	b.tempN++
	return fmt.Sprintf("TEMP%d", b.tempN)
}

// newLabel returns a fresh ?PREFIXn label name.
func (b *builder) newLabel(prefix string) string {
	b.labelN++
	return fmt.Sprintf("?%s%d", prefix, b.labelN)
}

// useStack reports whether the next intermediate result should be pushed
// to the value stack rather than stored in a temp, per the depth < 8
// stack-preference policy.
func (b *builder) useStack() bool { return b.stackDepth < 8 }

func (b *builder) push() { b.stackDepth++ }
func (b *builder) pop()  { b.stackDepth-- }

// label attaches a standalone label to the next emitted instruction
// (combined post-hoc into "LABEL:\tOP\targs" per the formatter).
func (b *builder) label(name string) {
	if b.pendingLbl != "" {
		// Two labels in a row: emit the first as a bare label line so
		// neither is lost.
		b.lines = append(b.lines, line{label: b.pendingLbl})
	}
	b.pendingLbl = name
}

func (b *builder) emit(format string, args ...any) {
	b.lines = append(b.lines, line{label: b.pendingLbl, text: fmt.Sprintf(format, args...)})
	b.pendingLbl = ""
}

func (b *builder) pushLoopEnd(end string) { b.loopEnds = append(b.loopEnds, end) }
func (b *builder) popLoopEnd()            { b.loopEnds = b.loopEnds[:len(b.loopEnds)-1] }
func (b *builder) currentLoopEnd() string {
	if len(b.loopEnds) == 0 {
		return ""
	}
	return b.loopEnds[len(b.loopEnds)-1]
}

// lastIsReturnForm reports whether the most recently emitted instruction
// is one of the forms that makes an implicit trailing RTRUE unnecessary.
func (b *builder) lastIsReturnForm() bool {
	for i := len(b.lines) - 1; i >= 0; i-- {
		if b.lines[i].text == "" {
			continue
		}
		t := b.lines[i].text
		for _, prefix := range []string{"RTRUE", "RFALSE", "RETURN", "PRINTRET", "QUIT", "RESTART"} {
			if len(t) >= len(prefix) && t[:len(prefix)] == prefix {
				return true
			}
		}
		return false
	}
	return false
}

// render flattens the builder's lines into ZAP text, one instruction per
// line with a leading tab and a tab between mnemonic and operands;
// standalone labels are combined with the following instruction line.
func (b *builder) render() []string {
	if b.pendingLbl != "" {
		b.lines = append(b.lines, line{label: b.pendingLbl})
	}
	var out []string
	for _, l := range b.lines {
		switch {
		case l.label != "" && l.text != "":
			out = append(out, l.label+":\t"+l.text)
		case l.label != "":
			out = append(out, l.label+":")
		default:
			out = append(out, "\t"+l.text)
		}
	}
	return out
}
