package planner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/orchestra-ai/orchestra/internal/brain"
	"github.com/orchestra-ai/orchestra/internal/task"
	"github.com/orchestra-ai/orchestra/internal/types"
)

// planItem is one entry of the plan block as the planning brain emits
// it: which worker handles the step and what the step is.
type planItem struct {
	AgentName string `json:"agent_name"`
	Task      string `json:"task"`
}

var (
	analysisPattern = regexp.MustCompile(`(?s)<analysis>(.*?)</analysis>`)
	planPattern     = regexp.MustCompile(`(?s)<plan>(.*?)</plan>`)
)

// parseResponse turns a raw planning-brain response into a Plan. The
// response must contain an <analysis> region and a <plan> region whose
// body is a JSON list of {agent_name, task} records. A missing analysis
// region is tolerated (empty rationale); a missing or malformed plan
// region is a parse failure, which the caller retries with a clarifying
// re-prompt.
//
// An empty plan list is valid: the brain decided the request needs no
// worker involvement and the run proceeds straight to reporting.
func parseResponse(response string) (task.Plan, error) {
	if strings.TrimSpace(response) == "" {
		return task.Plan{}, types.NewRetryableError(types.PLANNING_PARSE_FAILED,
			"planning response is empty")
	}

	var analysis string
	if m := analysisPattern.FindStringSubmatch(response); m != nil {
		analysis = strings.TrimSpace(m[1])
	}

	rawPlan, err := extractPlanBlock(response)
	if err != nil {
		return task.Plan{}, err
	}

	var items []planItem
	if err := json.Unmarshal([]byte(rawPlan), &items); err != nil {
		return task.Plan{}, types.WrapRetryableError(types.PLANNING_PARSE_FAILED,
			"plan block is not a valid JSON list", err)
	}

	subtasks := make([]task.Subtask, 0, len(items))
	for i, item := range items {
		role := strings.TrimSpace(item.AgentName)
		instruction := strings.TrimSpace(item.Task)
		if role == "" || instruction == "" {
			return task.Plan{}, types.NewRetryableError(types.PLANNING_PARSE_FAILED,
				fmt.Sprintf("plan item %d is missing agent_name or task", i))
		}
		subtasks = append(subtasks, task.Subtask{
			WorkerRole:  role,
			Instruction: instruction,
		})
	}

	return task.Plan{Analysis: analysis, Subtasks: subtasks}, nil
}

// extractPlanBlock locates the JSON list of plan items. The tagged
// <plan> region is authoritative; when the brain forgets the tags but
// still produced a JSON list somewhere in the response, that list is
// accepted rather than burning a retry on formatting alone.
func extractPlanBlock(response string) (string, error) {
	if m := planPattern.FindStringSubmatch(response); m != nil {
		body := strings.TrimSpace(m[1])
		// The plan body itself may arrive fenced.
		if extracted, err := brain.ExtractJSON(body); err == nil {
			return extracted, nil
		}
		return body, nil
	}

	extracted, err := brain.ExtractJSON(response)
	if err != nil {
		return "", types.WrapRetryableError(types.PLANNING_PARSE_FAILED,
			"planning response contains no <plan> region and no JSON list", err)
	}
	if !strings.HasPrefix(extracted, "[") {
		return "", types.NewRetryableError(types.PLANNING_PARSE_FAILED,
			"planning response JSON is not a list")
	}
	return extracted, nil
}
