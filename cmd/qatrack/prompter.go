package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// stdinPrompter answers policy prompts from the terminal. An empty line
// accepts the shown default, a lone "-" submits an empty answer, and EOF
// (Ctrl+D) cancels.
type stdinPrompter struct {
	r *bufio.Reader
}

func newStdinPrompter() *stdinPrompter {
	return &stdinPrompter{r: bufio.NewReader(os.Stdin)}
}

// Ask implements policy.Prompter.
func (p *stdinPrompter) Ask(prompt, def string) (string, bool) {
	fmt.Printf("%s [%s] (enter accepts, - clears, Ctrl+D cancels): ", prompt, def)
	line, err := p.r.ReadString('\n')
	if err != nil {
		fmt.Println()
		return "", false
	}
	line = strings.TrimRight(line, "\r\n")
	switch line {
	case "":
		return def, true
	case "-":
		return "", true
	}
	return line, true
}
