package collect

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/effortless-metrics/mtpcompat/internal/logger"
	"github.com/effortless-metrics/mtpcompat/internal/report"
)

const writeTestFilename = "mtpcompat-write-test.txt"

// RunWriteTests uploads a small sentinel file through both toolchains and
// records pass/fail for each. Only enabled behind an explicit flag: it
// mutates the device.
func RunWriteTests(ctx context.Context, ref *Reference, cand *Candidate, log logger.Logger) []report.WriteTest {
	if log == nil {
		log = logger.Nop()
	}

	content := fmt.Sprintf("mtpcompat write-test sentinel\nTimestamp: %s\n",
		time.Now().UTC().Format(time.RFC3339))

	tmp, err := os.CreateTemp("", "mtpcompat-*.txt")
	if err != nil {
		log.Error("write test setup failed", logger.Error(err))
		return []report.WriteTest{{Name: "setup", Success: false, Output: err.Error()}}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		log.Error("write test setup failed", logger.Error(err))
		return []report.WriteTest{{Name: "setup", Success: false, Output: err.Error()}}
	}
	tmp.Close()

	results := make([]report.WriteTest, 0, 2)

	log.Info("write test: candidate push", logger.String("remote", writeTestFilename))
	ok, out := cand.Push(ctx, tmpPath, writeTestFilename)
	results = append(results, report.WriteTest{Name: "candidate_push", Success: ok, Output: out})

	refName := strings.Replace(writeTestFilename, ".txt", "-reference.txt", 1)
	log.Info("write test: reference sendfile", logger.String("remote", refName))
	ok, out = ref.SendFile(ctx, tmpPath, refName)
	results = append(results, report.WriteTest{Name: "reference_sendfile", Success: ok, Output: out})

	return results
}
