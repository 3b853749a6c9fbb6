package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/formloom/formloom/pkg/cli/config"
	"github.com/formloom/formloom/pkg/usecase"
	"github.com/formloom/formloom/pkg/utils/logging"
)

func cmdValidate() *cli.Command {
	var checkDB bool
	var repoCfg config.Repository
	var srcCfg config.Sources

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "check-db",
			Usage:       "Also check stored entries for consistency with their form definitions",
			Destination: &checkDB,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, srcCfg.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate form definition files and optionally check DB consistency",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if !srcCfg.Configured() {
				return goerr.New("no form definition source configured (use --definitions or --sources)")
			}

			// Step 1: Load and validate definition files
			forms, err := srcCfg.Load()
			if err != nil {
				return goerr.Wrap(err, "definition validation failed")
			}

			issueCount := 0
			for _, form := range forms {
				issues := usecase.ValidateFormDefinition(form)
				for _, issue := range issues {
					logger.Warn("Definition issue found",
						"form_id", issue.FormID,
						"field_uuid", issue.FieldUUID,
						"message", issue.Message,
					)
				}
				issueCount += len(issues)

				if len(issues) == 0 {
					logger.Info("Form definition validated",
						"id", form.ID,
						"title", form.Title,
						"field_count", len(form.Fields),
					)
				}
			}

			if issueCount > 0 {
				return fmt.Errorf("definition validation found %d issue(s)", issueCount)
			}

			logger.Info("Definition validation passed", "form_count", len(forms))

			// Step 2: If requested, check stored entries against their forms
			if !checkDB {
				logger.Info("No DB check requested, skipping consistency check")
				return nil
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo)
			report, err := uc.ValidateDB(ctx)
			if err != nil {
				return goerr.Wrap(err, "DB consistency check failed")
			}

			if report.HasIssues() {
				for _, issue := range report.Issues {
					logger.Warn("DB consistency issue found",
						"form_id", issue.FormID,
						"entry_id", issue.EntryID,
						"field_uuid", issue.FieldUUID,
						"message", issue.Message,
					)
				}

				return fmt.Errorf("DB consistency check found %d issue(s)", len(report.Issues))
			}

			logger.Info("DB consistency check passed")
			return nil
		},
	}
}
