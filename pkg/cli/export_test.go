package cli_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/formloom/formloom/pkg/cli"
)

func TestRun_ExportCommand_MissingForm(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"formloom", "export",
		"--form", "no-such-form",
		"--out", t.TempDir(),
		"--repository-backend", "memory",
	}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ExportCommand_NoDestination(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"formloom", "export",
		"--form", "customer-survey",
		"--repository-backend", "memory",
	}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ExportCommand_ConflictingDestinations(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"formloom", "export",
		"--form", "customer-survey",
		"--out", t.TempDir(),
		"--gcs-bucket", "formloom-exports",
		"--repository-backend", "memory",
	}, "test")
	gt.Value(t, err).NotNil()
}
