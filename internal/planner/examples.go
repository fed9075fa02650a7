package planner

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/orchestra-ai/orchestra/internal/types"
)

// ExampleRetriever supplies a worked planning example for a request, or
// empty when nothing relevant exists. Retrieval quality is the
// retriever's problem; the planner only splices whatever comes back
// into the prompt.
type ExampleRetriever interface {
	Lookup(ctx context.Context, request string) (string, error)
}

// NoExamples is the retriever used when no example library is
// configured.
type NoExamples struct{}

func (NoExamples) Lookup(context.Context, string) (string, error) { return "", nil }

// Example is one worked planning example from a library file.
type Example struct {
	Request string `yaml:"request"`
	Plan    string `yaml:"plan"`
}

// FileLibrary is a fixed example library loaded from a YAML file. Lookup
// scores each example by token overlap with the request and returns the
// best match, or empty when nothing overlaps at all. The scoring is
// deliberately naive; swap in a smarter retriever via the
// ExampleRetriever interface when the library grows past a handful of
// entries.
type FileLibrary struct {
	examples []Example
}

// LoadFileLibrary reads a YAML example library. The file holds a list
// of {request, plan} entries.
func LoadFileLibrary(path string) (*FileLibrary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED,
			fmt.Sprintf("reading example library %s", path), err)
	}

	var examples []Example
	if err := yaml.Unmarshal(data, &examples); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED,
			fmt.Sprintf("parsing example library %s", path), err)
	}
	return NewFileLibrary(examples), nil
}

// NewFileLibrary builds a library from in-memory examples, dropping
// entries with an empty request or plan.
func NewFileLibrary(examples []Example) *FileLibrary {
	kept := make([]Example, 0, len(examples))
	for _, ex := range examples {
		if strings.TrimSpace(ex.Request) == "" || strings.TrimSpace(ex.Plan) == "" {
			continue
		}
		kept = append(kept, ex)
	}
	return &FileLibrary{examples: kept}
}

// Len returns the number of usable examples.
func (l *FileLibrary) Len() int { return len(l.examples) }

// Lookup implements ExampleRetriever.
func (l *FileLibrary) Lookup(_ context.Context, request string) (string, error) {
	if len(l.examples) == 0 {
		return "", nil
	}

	reqTokens := tokenize(request)
	if len(reqTokens) == 0 {
		return "", nil
	}

	type scored struct {
		idx   int
		score int
	}
	candidates := make([]scored, 0, len(l.examples))
	for i, ex := range l.examples {
		if s := overlap(reqTokens, tokenize(ex.Request)); s > 0 {
			candidates = append(candidates, scored{idx: i, score: s})
		}
	}
	if len(candidates) == 0 {
		return "", nil
	}

	// Stable best-match selection: highest overlap wins, earlier entry
	// breaks ties.
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})
	best := l.examples[candidates[0].idx]
	return fmt.Sprintf("Request: %s\nPlan:\n%s", best.Request, best.Plan), nil
}

func tokenize(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.Fields(strings.ToLower(s)) {
		field = strings.Trim(field, ".,;:!?()[]{}\"'")
		if len(field) > 2 {
			tokens[field] = struct{}{}
		}
	}
	return tokens
}

func overlap(a, b map[string]struct{}) int {
	n := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			n++
		}
	}
	return n
}

var (
	_ ExampleRetriever = (*FileLibrary)(nil)
	_ ExampleRetriever = NoExamples{}
)
