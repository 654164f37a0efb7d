// Command doclint checks the README's tutorial index against the examples
// tree: every tutorial program must be linked exactly once, every link must
// point at an existing file, and the tutorial numbering must be strictly
// increasing with no gaps.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

var tutorialLink = regexp.MustCompile(`^examples/(\d+)_[a-z0-9_]+/main\.go$`)

// extractTutorialLinks walks the markdown AST and returns every link
// destination that looks like a tutorial program, in document order.
func extractTutorialLinks(source []byte) []string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse(source)

	var links []string
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if link, ok := node.(*ast.Link); ok && entering {
			dest := string(link.Destination)
			if tutorialLink.MatchString(dest) {
				links = append(links, dest)
			}
		}
		return ast.GoToNext
	})
	return links
}

// lintIndex verifies the linked tutorials against the ones present on disk.
func lintIndex(links []string, present []string) []error {
	var problems []error

	seen := make(map[string]int)
	for _, l := range links {
		seen[l]++
	}
	for link, count := range seen {
		if count > 1 {
			problems = append(problems, fmt.Errorf("%s is linked %d times, want exactly once", link, count))
		}
	}

	onDisk := make(map[string]bool, len(present))
	for _, p := range present {
		onDisk[p] = true
		if seen[p] == 0 {
			problems = append(problems, fmt.Errorf("%s exists but is not linked in the README", p))
		}
	}
	for _, l := range links {
		if !onDisk[l] {
			problems = append(problems, fmt.Errorf("%s is linked but does not exist", l))
		}
	}

	// Numbering: strictly increasing in document order, no gaps.
	prev := 0
	for _, l := range links {
		m := tutorialLink.FindStringSubmatch(l)
		var n int
		fmt.Sscanf(m[1], "%d", &n)
		switch {
		case n <= prev:
			problems = append(problems, fmt.Errorf("tutorial %02d is listed after %02d, numbering must be strictly increasing", n, prev))
		case n != prev+1:
			problems = append(problems, fmt.Errorf("numbering jumps from %02d to %02d, no gaps allowed", prev, n))
		}
		prev = n
	}

	sort.Slice(problems, func(i, j int) bool { return problems[i].Error() < problems[j].Error() })
	return problems
}

// presentTutorials lists the tutorial programs that exist under the root.
func presentTutorials(root string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(root, "examples", "*", "main.go"))
	if err != nil {
		return nil, err
	}

	var out []string
	for _, m := range matches {
		rel, err := filepath.Rel(root, m)
		if err != nil {
			return nil, err
		}
		rel = filepath.ToSlash(rel)
		if tutorialLink.MatchString(rel) {
			out = append(out, rel)
		}
	}
	sort.Strings(out)
	return out, nil
}

func main() {
	readme := flag.String("readme", "README.md", "path to the README to lint")
	root := flag.String("root", ".", "repository root the links are relative to")
	flag.Parse()

	source, err := os.ReadFile(*readme)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	present, err := presentTutorials(*root)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	problems := lintIndex(extractTutorialLinks(source), present)
	for _, p := range problems {
		fmt.Fprintln(os.Stderr, "doclint:", p)
	}
	if len(problems) > 0 {
		os.Exit(1)
	}

	fmt.Printf("doclint: %s ok (%d tutorials)\n", *readme, len(present))
}
