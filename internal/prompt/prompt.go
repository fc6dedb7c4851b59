// Package prompt asks the operator for values missing from configuration.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/agentstation/gradesync/pkg/errors"
)

// Interactive reports whether f is attached to a terminal.
func Interactive(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Ask writes label to out and reads one trimmed line from in.
// An empty answer falls back to def.
func Ask(in io.Reader, out io.Writer, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || response == "") {
		return "", errors.WrapIO("read", "stdin", err)
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return def, nil
	}
	return response, nil
}

// Required keeps asking until a non-empty answer arrives or input ends.
func Required(in io.Reader, out io.Writer, label string) (string, error) {
	reader := bufio.NewReader(in)
	for {
		answer, err := Ask(reader, out, label, "")
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
	}
}
