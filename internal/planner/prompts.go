package planner

import (
	"fmt"
	"strings"
)

const plannerSystemPrompt = `You are a planning assistant. Decompose the request into an ordered
list of subtasks, each assigned to exactly one of the available workers.
Later subtasks see the outputs of earlier ones, so order them by
dependency.

Respond with exactly two regions:

<analysis>
Your reasoning about how to decompose the request.
</analysis>

<plan>
[{"agent_name": "<worker role>", "task": "<instruction for that worker>"}]
</plan>

Rules:
- agent_name must be one of the available workers listed below. Never
  invent a worker.
- The plan region must be a JSON list, even when empty. An empty list
  means the request needs no worker involvement.
- Keep each task self-contained: the worker sees the original request,
  prior outputs, and its task text, nothing else.`

const clarifyInstruction = `Your previous response could not be parsed. Respond again, strictly
following the required format: an <analysis> region, then a <plan>
region containing only a JSON list of {"agent_name", "task"} objects.
Do not include any other text.`

// buildPrompt composes the planning prompt from the request, the
// available worker roles, and an optional worked example.
func buildPrompt(request string, roles []string, example string) string {
	var b strings.Builder
	b.WriteString(plannerSystemPrompt)
	b.WriteString("\n\n# Available workers\n")
	for _, role := range roles {
		fmt.Fprintf(&b, "- %s\n", role)
	}

	if example != "" {
		b.WriteString("\n# Worked example\n")
		b.WriteString(example)
		b.WriteString("\n")
	}

	b.WriteString("\n# Request\n")
	b.WriteString(request)
	return b.String()
}
