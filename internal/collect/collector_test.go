package collect

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/effortless-metrics/mtpcompat/internal/runner"
)

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func testRunner() *runner.Runner {
	return runner.New(10*time.Second, nil)
}

func TestCandidateCollect(t *testing.T) {
	script := writeScript(t, "fakemtp", `
for arg in "$@"; do
  case "$arg" in
    probe) echo '{"manufacturer":"Google Inc.","model":"Pixel 7"}'; exit 0 ;;
    ls) echo '[{"name":"a.txt","sizeBytes":7}]'; exit 0 ;;
  esac
done
exit 1
`)

	c := NewCandidate(testRunner(), []string{script}, "", nil)
	raw, err := c.Collect(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Google Inc.", raw.Probe["manufacturer"])
	list, ok := raw.List.([]interface{})
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Contains(t, raw.Log, "=== probe ===")
	assert.Contains(t, raw.Log, "=== ls ===")
}

func TestCandidateCollect_TargetFlag(t *testing.T) {
	script := writeScript(t, "fakemtp", `echo "{\"args\":\"$*\"}"`)

	c := NewCandidate(testRunner(), []string{script}, "18d1:4ee1", nil)
	raw, err := c.Collect(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "--device 18d1:4ee1 probe --json", raw.Probe["args"])
}

func TestCandidateCollect_BadJSONDegrades(t *testing.T) {
	script := writeScript(t, "fakemtp", `echo 'this is not json'`)

	c := NewCandidate(testRunner(), []string{script}, "", nil)
	raw, err := c.Collect(context.Background())

	require.NoError(t, err)
	assert.Contains(t, raw.Probe["error"], "JSON parse error")
	assert.Contains(t, raw.Probe["raw"], "this is not json")

	list, ok := raw.List.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, list["error"], "JSON parse error")
}

func TestCandidateCollect_MissingBinaryDegrades(t *testing.T) {
	c := NewCandidate(testRunner(), []string{"mtpcompat-no-such-tool-xyz"}, "", nil)
	raw, err := c.Collect(context.Background())

	require.NoError(t, err)
	assert.Contains(t, raw.Probe["error"], "command not found")
	assert.Equal(t, []interface{}{}, raw.List)
}

func TestCandidatePush(t *testing.T) {
	script := writeScript(t, "fakemtp", `
case "$1" in
  push) echo "pushed $2 to $3"; exit 0 ;;
esac
exit 1
`)

	c := NewCandidate(testRunner(), []string{script}, "", nil)
	ok, out := c.Push(context.Background(), "/tmp/local.txt", "remote.txt")

	assert.True(t, ok)
	assert.Contains(t, out, "pushed /tmp/local.txt to remote.txt")
}

func TestReferenceCollect(t *testing.T) {
	detect := writeScript(t, "mtp-detect", `cat <<'EOF'
Device 0 (VID=18d1 and PID=4ee1) is a Google Inc Pixel.
   Manufacturer: Google Inc.
   Model: Pixel 7
EOF`)
	folders := writeScript(t, "mtp-folders", `echo 'Folder 1 (parent: 0), Name: DCIM'`)
	files := writeScript(t, "mtp-files", `cat <<'EOF'
File: 100 (parent: 1)
   Filename: IMG_0001.JPG
   File size 204800 (0x32000) bytes
EOF`)

	commands := ReferenceCommands{Detect: detect, Folders: folders, Files: files}
	c := NewReference(testRunner(), commands, "", nil)
	raw, err := c.Collect(context.Background())

	require.NoError(t, err)
	require.Len(t, raw.Detect.Devices, 1)
	assert.Equal(t, "Pixel 7", raw.Detect.Devices[0].Model)
	require.Len(t, raw.Folders, 1)
	assert.Equal(t, "DCIM", raw.Folders[0].Name)
	require.Len(t, raw.Files, 1)
	assert.Equal(t, uint64(204800), raw.Files[0].SizeBytes)
	assert.Contains(t, raw.Log, "=== "+detect+" ===")
}

func TestReferenceCollect_MissingTools(t *testing.T) {
	commands := ReferenceCommands{
		Detect:  "mtpcompat-no-such-tool-xyz",
		Folders: "mtpcompat-no-such-tool-xyz",
		Files:   "mtpcompat-no-such-tool-xyz",
	}
	c := NewReference(testRunner(), commands, "", nil)
	raw, err := c.Collect(context.Background())

	require.NoError(t, err)
	assert.Empty(t, raw.Detect.Devices)
	assert.Contains(t, raw.Detect.Error, "not found")
	assert.Empty(t, raw.Folders)
	assert.Empty(t, raw.Files)
}

func TestRunWriteTests(t *testing.T) {
	candScript := writeScript(t, "fakemtp", `
case "$1" in
  push) exit 0 ;;
esac
exit 1
`)
	sendfile := writeScript(t, "mtp-sendfile", `echo "send failed" >&2; exit 1`)

	cand := NewCandidate(testRunner(), []string{candScript}, "", nil)
	ref := NewReference(testRunner(), ReferenceCommands{SendFile: sendfile}, "", nil)

	results := RunWriteTests(context.Background(), ref, cand, nil)

	require.Len(t, results, 2)
	assert.Equal(t, "candidate_push", results[0].Name)
	assert.True(t, results[0].Success)
	assert.Equal(t, "reference_sendfile", results[1].Name)
	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Output, "send failed")
}
