package logger

// lineWindow keeps the newest lines written to a log file. The file is
// compacted down to the window once it holds twice the window's lines.
type lineWindow struct {
	lines  []string
	next   int
	filled int
	onDisk int
}

func newLineWindow(size int) *lineWindow {
	return &lineWindow{lines: make([]string, size)}
}

// push records a line that was just appended to the file.
func (lw *lineWindow) push(line string) {
	lw.lines[lw.next] = line
	lw.next = (lw.next + 1) % len(lw.lines)
	lw.filled = min(lw.filled+1, len(lw.lines))
	lw.onDisk++
}

// needsCompaction reports whether the file has grown to twice the window.
func (lw *lineWindow) needsCompaction() bool {
	return lw.onDisk >= 2*len(lw.lines)
}

// compacted records that the file now holds only the window.
func (lw *lineWindow) compacted() {
	lw.onDisk = lw.filled
}

// snapshot returns the window oldest first.
func (lw *lineWindow) snapshot() []string {
	out := make([]string, 0, lw.filled)
	start := lw.next - lw.filled
	if start < 0 {
		start += len(lw.lines)
	}
	for i := range lw.filled {
		out = append(out, lw.lines[(start+i)%len(lw.lines)])
	}
	return out
}
