package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// GetSimpleText prints a prompt to w and reads a single line of input from
// reader. The trailing newline is trimmed. If EOF occurs after some input
// was read, the partial line is returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetMultiline prints a prompt to w and reads multiple lines until an empty
// line is entered. The collected text is joined with '\n'.
func GetMultiline(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, _ := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// GetOptionalInt reads a line and parses it as an int in [min, max]. An
// empty line means "skip" and returns nil.
func GetOptionalInt(reader *bufio.Reader, prompt string, min, max int, w io.Writer) (*int, error) {
	for {
		s, err := GetSimpleText(reader, prompt, w)
		if err != nil {
			return nil, err
		}
		if s == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < min || n > max {
			fmt.Fprintf(w, "Enter a number between %d and %d, or leave empty\n", min, max)
			continue
		}
		return &n, nil
	}
}

// GetDateTime reads a local "YYYY-MM-DD HH:MM" or date-only "YYYY-MM-DD"
// timestamp. An empty line means the current moment.
func GetDateTime(reader *bufio.Reader, prompt string, w io.Writer) (time.Time, error) {
	for {
		s, err := GetSimpleText(reader, prompt, w)
		if err != nil {
			return time.Time{}, err
		}
		if s == "" {
			return time.Now(), nil
		}
		if t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local); err == nil {
			return t, nil
		}
		if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
			return t, nil
		}
		fmt.Fprintln(w, "Enter YYYY-MM-DD HH:MM or YYYY-MM-DD, or leave empty for now")
	}
}

// GetYesNo reads a y/n answer. An empty line returns the default.
func GetYesNo(reader *bufio.Reader, prompt string, def bool, w io.Writer) (bool, error) {
	suffix := " [y/N]"
	if def {
		suffix = " [Y/n]"
	}
	for {
		s, err := GetSimpleText(reader, prompt+suffix, w)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(s) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(w, "Answer y or n")
	}
}
