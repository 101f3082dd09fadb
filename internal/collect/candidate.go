package collect

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/effortless-metrics/mtpcompat/internal/logger"
	"github.com/effortless-metrics/mtpcompat/internal/pipeline"
	"github.com/effortless-metrics/mtpcompat/internal/runner"
)

const rawPreviewLimit = 500

// Candidate collects the candidate toolchain's view of the device through
// its JSON-emitting CLI (probe --json, ls --json, push).
type Candidate struct {
	runner  *runner.Runner
	command []string
	target  string
	log     logger.Logger
}

// NewCandidate creates a candidate-side collector. command is the CLI
// invocation prefix (e.g. ["swiftmtp"] or ["swift", "run", "swiftmtp"]);
// target is appended as --device vid:pid when non-empty.
func NewCandidate(r *runner.Runner, command []string, target string, log logger.Logger) *Candidate {
	if log == nil {
		log = logger.Nop()
	}
	return &Candidate{runner: r, command: command, target: target, log: log}
}

func (c *Candidate) args(sub ...string) (string, []string) {
	args := append([]string{}, c.command[1:]...)
	if c.target != "" {
		args = append(args, "--device", c.target)
	}
	return c.command[0], append(args, sub...)
}

// Collect runs probe and ls and decodes their JSON. A decode failure
// degrades to an error-shaped record carrying a preview of the raw output;
// it is never fatal.
func (c *Candidate) Collect(ctx context.Context) (pipeline.RawCandidate, error) {
	var raw pipeline.RawCandidate

	name, args := c.args("probe", "--json")
	probe := c.runner.Run(ctx, name, args...)
	raw.Probe = decodeObject(probe)
	c.log.Info("candidate probe", logger.Bool("ok", raw.Probe["error"] == nil))

	name, args = c.args("ls", "--json")
	ls := c.runner.Run(ctx, name, args...)
	raw.List = decodeListing(ls)

	raw.Log = "=== probe ===\n" + probe.Output() + "\n=== ls ===\n" + ls.Output()
	return raw, nil
}

// Push uploads a local file to the device via the candidate toolchain.
func (c *Candidate) Push(ctx context.Context, localPath, remotePath string) (bool, string) {
	name, args := c.args("push", localPath, remotePath)
	res := c.runner.Run(ctx, name, args...)
	return res.ExitCode == 0, res.Output()
}

func decodeObject(res runner.Result) map[string]interface{} {
	if res.ExitCode == runner.ExitNotFound {
		return map[string]interface{}{"error": res.Stderr}
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(res.Stdout), &out); err != nil {
		return map[string]interface{}{
			"error": fmt.Sprintf("JSON parse error: %v", err),
			"raw":   preview(res.Stdout),
		}
	}
	return out
}

func decodeListing(res runner.Result) interface{} {
	if res.ExitCode == runner.ExitNotFound {
		return []interface{}{}
	}
	var out interface{}
	if err := json.Unmarshal([]byte(res.Stdout), &out); err != nil {
		return map[string]interface{}{
			"error": fmt.Sprintf("JSON parse error: %v", err),
			"raw":   preview(res.Stdout),
		}
	}
	return out
}

func preview(s string) string {
	if len(s) > rawPreviewLimit {
		return s[:rawPreviewLimit]
	}
	return s
}
