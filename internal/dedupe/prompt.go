package dedupe

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"dupefinder/internal/media"
)

// ChoiceKind enumerates the operator's possible answers to a duplicate
// prompt.
type ChoiceKind int

const (
	// ChoiceSkip leaves the whole group untouched.
	ChoiceSkip ChoiceKind = iota
	// ChoiceBest keeps the top-ranked candidate.
	ChoiceBest
	// ChoiceOverride keeps the authority-preferred candidate.
	ChoiceOverride
	// ChoiceRank keeps the candidate at an explicit rank (1-based).
	ChoiceRank
	// ChoiceInvalid is any unrecognized or out-of-range answer. It is
	// handled exactly like a skip, with a different message.
	ChoiceInvalid
)

// Choice is one parsed prompt answer.
type Choice struct {
	Kind ChoiceKind
	Rank int
}

// Prompter asks the operator which candidate to keep for one group.
type Prompter interface {
	Choose(group *media.Group, ranked []*media.Candidate, overrideID int64, hasOverride bool) Choice
}

// ParseChoice maps raw operator input to a choice. "s" and "0" skip the
// group, "b" keeps the best-ranked, "r" keeps the authority override when
// one resolved, and a number in [1, n] keeps that rank. Anything else is
// invalid, which the engine treats as a skip rather than re-prompting.
func ParseChoice(input string, n int, hasOverride bool) Choice {
	input = strings.ToLower(strings.TrimSpace(input))
	switch input {
	case "s", "0":
		return Choice{Kind: ChoiceSkip}
	case "b":
		return Choice{Kind: ChoiceBest}
	case "r":
		if hasOverride {
			return Choice{Kind: ChoiceOverride}
		}
		return Choice{Kind: ChoiceInvalid}
	}
	rank, err := strconv.Atoi(input)
	if err != nil || rank < 1 || rank > n {
		return Choice{Kind: ChoiceInvalid}
	}
	return Choice{Kind: ChoiceRank, Rank: rank}
}

// TerminalPrompter prints the ranked candidate table and reads one answer
// per group from the terminal. The read blocks with no timeout; cancelling
// the process is the only way out, matching single-operator use.
type TerminalPrompter struct {
	in        *bufio.Reader
	out       io.Writer
	showScore bool
}

// NewTerminalPrompter wires a prompter to the given streams. showScore
// controls whether the score column appears; it is off when duplicates are
// matched by file path alone.
func NewTerminalPrompter(in io.Reader, out io.Writer, showScore bool) *TerminalPrompter {
	return &TerminalPrompter{
		in:        bufio.NewReader(in),
		out:       out,
		showScore: showScore,
	}
}

func (p *TerminalPrompter) Choose(group *media.Group, ranked []*media.Candidate, overrideID int64, hasOverride bool) Choice {
	fmt.Fprintf(p.out, "\nWhich media item do you wish to keep for %q ?\n\n", group.Title)
	fmt.Fprintln(p.out, RenderGroupTable(ranked, overrideID, hasOverride, p.showScore))

	prompt := "\nChoose item to keep (0 or s = skip | 1 or b = best"
	if hasOverride {
		prompt += " | r = authority preferred"
	}
	prompt += "): "
	fmt.Fprint(p.out, prompt)

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return Choice{Kind: ChoiceSkip}
	}
	return ParseChoice(line, len(ranked), hasOverride)
}
