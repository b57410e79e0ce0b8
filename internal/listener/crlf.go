package listener

import (
	"bytes"
	"io"
)

// lineEndings adapts a connection to the game's line discipline: reads are
// normalized to \n and writes are expanded to \r\n. Telnet clients send
// \r\n, SSH clients without a PTY send \r, and the session layer only ever
// deals in \n.
type lineEndings struct {
	rw io.ReadWriter
}

func newCRLFReadWriter(rw io.ReadWriter) io.ReadWriter {
	return &lineEndings{rw: rw}
}

func (l *lineEndings) Read(p []byte) (int, error) {
	n, err := l.rw.Read(p)
	if n > 0 {
		data := bytes.ReplaceAll(p[:n], []byte("\r\n"), []byte("\n"))
		data = bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
		n = copy(p, data)
	}
	return n, err
}

func (l *lineEndings) Write(p []byte) (int, error) {
	// Normalize first so already-terminated lines don't become \r\r\n.
	out := bytes.ReplaceAll(p, []byte("\r\n"), []byte("\n"))
	out = bytes.ReplaceAll(out, []byte("\n"), []byte("\r\n"))
	_, err := l.rw.Write(out)
	// Report the caller's length; the expansion is invisible to them.
	return len(p), err
}
