package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"study-assistant/internal/backend"
)

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  login <token> | logout")
	fmt.Fprintln(out, "  generate")
	fmt.Fprintln(out, "  start")
	fmt.Fprintln(out, "  show")
	fmt.Fprintln(out, "  answer <letter> | answer <question> <letter>")
	fmt.Fprintln(out, "  next | prev | goto <question>")
	fmt.Fprintln(out, "  time")
	fmt.Fprintln(out, "  submit")
	fmt.Fprintln(out, "  exit")
	fmt.Fprintln(out, "  retake | new")
	fmt.Fprintln(out, "  history [limit] | stats")
	fmt.Fprintln(out, "  attempts | available [subject]")
	fmt.Fprintln(out, "  quit")
}

// promptLine reads one line; an empty answer yields fallback.
func promptLine(reader *bufio.Reader, out io.Writer, prompt, fallback string) (string, error) {
	if fallback != "" {
		fmt.Fprintf(out, "%s [%s]: ", prompt, fallback)
	} else {
		fmt.Fprintf(out, "%s: ", prompt)
	}

	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	value := strings.TrimSpace(line)
	if value == "" {
		return fallback, nil
	}
	return value, nil
}

func promptYesNo(reader *bufio.Reader, out io.Writer, prompt string) (bool, error) {
	for {
		fmt.Fprint(out, prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		switch answer {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Fprintln(out, "Please answer yes or no.")
		}
	}
}

func parsePositiveLimit(args []string, index int, defaultValue int) (int, error) {
	if len(args) <= index {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(args[index])
	if err != nil || value <= 0 {
		return 0, errors.New("must be a positive integer")
	}
	return value, nil
}

// parseQuestionNumber turns a 1-based question number into an index.
func parseQuestionNumber(value string) (int, error) {
	number, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || number <= 0 {
		return 0, errors.New("question number must be a positive integer")
	}
	return number - 1, nil
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func describeClientError(err error, serverURL string) error {
	if errors.Is(err, backend.ErrServiceUnavailable) {
		return fmt.Errorf("quiz backend unavailable at %s", serverURL)
	}
	return err
}
