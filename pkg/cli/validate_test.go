package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/formloom/formloom/pkg/cli"
)

const surveyDefinition = `{
  "title": "Customer Survey",
  "fields": [
    {"uuid": "f-name", "type": "text", "name": "name", "label": "Name", "required": true},
    {"uuid": "f-rating", "type": "dropdown", "name": "rating", "label": "Rating",
     "options": [{"label": "Good", "value": "good"}, {"label": "Bad", "value": "bad"}]}
  ]
}`

const feedbackDefinition = `{
  "title": "Feedback",
  "fields": [
    {"uuid": "f-comment", "type": "textarea", "name": "comment", "label": "Comment"}
  ]
}`

func writeDefinitions(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600)
		gt.NoError(t, err).Required()
	}
	return dir
}

func TestRun_ValidateCommand_ValidDefinitions(t *testing.T) {
	dir := writeDefinitions(t, map[string]string{
		"survey.json":   surveyDefinition,
		"feedback.json": feedbackDefinition,
	})

	err := cli.Run(context.Background(), []string{"formloom", "validate", "--definitions", dir}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_DefinitionIssue(t *testing.T) {
	// A dropdown without options loads fine but fails validation
	dir := writeDefinitions(t, map[string]string{
		"broken.json": `{
  "title": "Broken Survey",
  "fields": [
    {"uuid": "f-pick", "type": "dropdown", "name": "pick", "label": "Pick"}
  ]
}`,
	})

	err := cli.Run(context.Background(), []string{"formloom", "validate", "--definitions", dir}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_MalformedJSON(t *testing.T) {
	dir := writeDefinitions(t, map[string]string{
		"broken.json": `{not json`,
	})

	err := cli.Run(context.Background(), []string{"formloom", "validate", "--definitions", dir}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_MissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nonexistent")

	err := cli.Run(context.Background(), []string{"formloom", "validate", "--definitions", dir}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_NoSource(t *testing.T) {
	err := cli.Run(context.Background(), []string{"formloom", "validate"}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_DBCheckWithMemory(t *testing.T) {
	dir := writeDefinitions(t, map[string]string{
		"survey.json": surveyDefinition,
	})

	// Empty memory DB passes the consistency check
	err := cli.Run(context.Background(), []string{
		"formloom", "validate",
		"--definitions", dir,
		"--check-db",
		"--repository-backend", "memory",
	}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_Manifest(t *testing.T) {
	root := t.TempDir()

	surveyDir := filepath.Join(root, "surveys")
	gt.NoError(t, os.Mkdir(surveyDir, 0o755)).Required()
	err := os.WriteFile(filepath.Join(surveyDir, "survey.json"), []byte(surveyDefinition), 0o600)
	gt.NoError(t, err).Required()

	manifestPath := filepath.Join(root, "sources.toml")
	manifest := `
[[source]]
name = "surveys"
dir = "./surveys"
`
	gt.NoError(t, os.WriteFile(manifestPath, []byte(manifest), 0o600)).Required()

	err = cli.Run(context.Background(), []string{"formloom", "validate", "--sources", manifestPath}, "test")
	gt.NoError(t, err)
}

func TestRun_InvalidLogLevel(t *testing.T) {
	dir := writeDefinitions(t, map[string]string{
		"survey.json": surveyDefinition,
	})

	err := cli.Run(context.Background(), []string{
		"formloom", "--log-level", "verbose", "validate", "--definitions", dir,
	}, "test")
	gt.Value(t, err).NotNil()
}
