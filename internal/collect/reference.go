// Package collect gathers raw records from the two toolchains under
// comparison: the libmtp CLI tools on the reference side and the project's
// own JSON-emitting CLI on the candidate side. Tool failures degrade to
// empty records and are preserved in the raw logs; nothing here aborts a
// run.
package collect

import (
	"context"

	"github.com/effortless-metrics/mtpcompat/internal/logger"
	"github.com/effortless-metrics/mtpcompat/internal/pipeline"
	"github.com/effortless-metrics/mtpcompat/internal/runner"
)

// ReferenceCommands names the libmtp CLI tools the reference side invokes.
type ReferenceCommands struct {
	Detect   string `yaml:"detect" json:"detect"`
	Folders  string `yaml:"folders" json:"folders"`
	Files    string `yaml:"files" json:"files"`
	SendFile string `yaml:"sendfile" json:"sendfile"`
}

// DefaultReferenceCommands returns the stock libmtp tool names.
func DefaultReferenceCommands() ReferenceCommands {
	return ReferenceCommands{
		Detect:   "mtp-detect",
		Folders:  "mtp-folders",
		Files:    "mtp-files",
		SendFile: "mtp-sendfile",
	}
}

// Reference collects the reference toolchain's view of the device.
type Reference struct {
	runner   *runner.Runner
	commands ReferenceCommands
	target   string
	log      logger.Logger
}

// NewReference creates a reference-side collector targeting the given
// vid:pid (empty for first detected device).
func NewReference(r *runner.Runner, commands ReferenceCommands, target string, log logger.Logger) *Reference {
	if log == nil {
		log = logger.Nop()
	}
	return &Reference{runner: r, commands: commands, target: target, log: log}
}

// Collect runs detection plus folder and file listings and parses them into
// structured records. The raw stdout+stderr of every tool is concatenated
// into the log for the evidence bundle.
func (c *Reference) Collect(ctx context.Context) (pipeline.RawReference, error) {
	var raw pipeline.RawReference

	detect := c.runner.Run(ctx, c.commands.Detect)
	raw.Detect = ParseDetect(detect.Output(), c.target)
	if detect.ExitCode == runner.ExitNotFound {
		raw.Detect.Error = c.commands.Detect + " not found"
	}
	c.log.Info("reference detect", logger.Int("devices", len(raw.Detect.Devices)))

	folders := c.runner.Run(ctx, c.commands.Folders)
	raw.Folders = ParseFolders(folders.Output())
	c.log.Info("reference folders", logger.Int("folders", len(raw.Folders)))

	files := c.runner.Run(ctx, c.commands.Files)
	raw.Files = ParseFiles(files.Output())
	c.log.Info("reference files", logger.Int("files", len(raw.Files)))

	raw.Log = "=== " + c.commands.Detect + " ===\n" + detect.Output() +
		"\n=== " + c.commands.Folders + " ===\n" + folders.Output() +
		"\n=== " + c.commands.Files + " ===\n" + files.Output()

	return raw, nil
}

// SendFile uploads a local file to the device via the reference toolchain.
func (c *Reference) SendFile(ctx context.Context, localPath, remoteName string) (bool, string) {
	res := c.runner.Run(ctx, c.commands.SendFile, localPath, remoteName)
	return res.ExitCode == 0, res.Output()
}
