package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/repeat/internal/card"
)

func runCreate(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: repeat create <card-path.md>")
	}
	path, err := card.ValidatePath(args[0])
	if err != nil {
		return err
	}
	return createCard(path, os.Stdin, os.Stdout)
}

// createCard appends a card body to path, creating the file (after a
// confirmation prompt) if it does not exist.
func createCard(path string, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(out, "Card file '%s' does not exist. Create it? [y/N]: ", path)
		answer, readErr := reader.ReadString('\n')
		if readErr != nil && answer == "" {
			return readErr
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(out, "Aborting; card not created.")
			return nil
		}
		if parent := filepath.Dir(path); parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return err
			}
		}
	}

	fmt.Fprintln(out, "Enter the card (Q:/A:/C: lines). Finish with a single '.' line:")
	body, err := captureBody(reader)
	if err != nil {
		return err
	}
	if strings.TrimSpace(body) == "" {
		fmt.Fprintln(out, "No text captured; nothing written.")
		return nil
	}

	if err := appendToCard(path, body); err != nil {
		return err
	}
	fmt.Fprintf(out, "Card updated: %s\n", path)
	return nil
}

func captureBody(reader *bufio.Reader) (string, error) {
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		trimmed := strings.TrimRight(line, "\n")
		if trimmed == "." {
			break
		}
		if trimmed != "" || err == nil {
			lines = append(lines, trimmed)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.Join(lines, "\n"), nil
}

// appendToCard writes the body to the end of the file, separated from any
// existing content by a blank line.
func appendToCard(path, body string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	body = strings.TrimRight(body, "\n")
	if body == "" {
		return nil
	}

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.Size() > 0 {
		if _, err := fmt.Fprintln(file); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(file, body)
	return err
}
