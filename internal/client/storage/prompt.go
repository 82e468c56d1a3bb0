package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ReadPassword prints prompt to out and reads a password from in. Input is
// not echoed when in is a terminal; otherwise one line is read from lines.
func ReadPassword(prompt string, in *os.File, lines *bufio.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, prompt)
	if fd := int(in.Fd()); term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return ReadLine(lines)
}

// ReadLine reads one line without its trailing newline. A final line
// without a newline is returned as is.
func ReadLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
