package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/cuemby/foundry/pkg/requirement"
)

// promptOverwrite is the --ask-overwrite policy: prompt on stdin and
// accept only the literal answer "yes".
func promptOverwrite(req requirement.Requirement) bool {
	fmt.Printf("resource of kind %q already exists and was not created by this engine. Overwrite? [yes/N]: ", req.Kind())
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line) == "yes"
}
