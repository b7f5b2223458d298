package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// DeleteAllPhrase must be typed to delete everything with the safety gate off.
const DeleteAllPhrase = "DELETE ALL"

// Prompter asks line-based questions when no TUI is available.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question; anything but y/yes is no.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// ConfirmPhrase asks the user to type phrase exactly.
func (p *Prompter) ConfirmPhrase(warning, phrase string) (bool, error) {
	fmt.Fprintf(p.out, "%s\nType '%s' to confirm: ", warning, phrase)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	return answer == phrase, nil
}

// Review walks recs one by one. Answers: y keeps the file for deletion,
// n skips it, q stops reviewing, a takes this file and all remaining.
func (p *Prompter) Review(recs []*domain.FileRecord) ([]*domain.FileRecord, error) {
	var picked []*domain.FileRecord
	fmt.Fprintln(p.out, "(y=delete, n=skip, q=quit review, a=delete all remaining)")

	for i, rec := range recs {
		fmt.Fprintf(p.out, "\n[%d/%d] %s - %s (%s, %s)\n", i+1, len(recs), FormatSize(rec.Size), rec.Path, rec.Category, rec.Safety)

		var answer string
		for {
			fmt.Fprint(p.out, "Delete this file? (y/n/q/a): ")
			line, err := p.readLine()
			if err != nil {
				return picked, err
			}
			answer = strings.ToLower(line)
			if answer == "y" || answer == "n" || answer == "q" || answer == "a" {
				break
			}
			fmt.Fprintln(p.out, "Please enter y, n, q, or a")
		}

		switch answer {
		case "y":
			picked = append(picked, rec)
		case "q":
			return picked, nil
		case "a":
			picked = append(picked, recs[i:]...)
			fmt.Fprintf(p.out, "Marked all remaining %d files for deletion.\n", len(recs)-i)
			return picked, nil
		}
	}
	return picked, nil
}
