package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/formloom/formloom/pkg/cli/config"
	"github.com/formloom/formloom/pkg/usecase"
	"github.com/formloom/formloom/pkg/utils/logging"
)

func cmdSeed() *cli.Command {
	var replace bool
	var repoCfg config.Repository
	var srcCfg config.Sources

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "replace",
			Usage:       "Replace the stored form set even when forms already exist (destructive)",
			Destination: &replace,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, srcCfg.Flags()...)

	return &cli.Command{
		Name:  "seed",
		Usage: "Load form definitions into the repository",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if !srcCfg.Configured() {
				return goerr.New("no form definition source configured (use --definitions or --sources)")
			}

			forms, err := srcCfg.Load()
			if err != nil {
				return goerr.Wrap(err, "failed to load form definitions")
			}
			if len(forms) == 0 {
				return goerr.New("no form definitions found")
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

			if replace {
				if err := uc.Form.LoadFromSources(ctx, forms); err != nil {
					return goerr.Wrap(err, "failed to replace form set")
				}
				logger.Info("Replaced form set", "count", len(forms))
			} else {
				seeded, err := uc.Form.EnsureSeeded(ctx, forms)
				if err != nil {
					return goerr.Wrap(err, "failed to seed form definitions")
				}
				if !seeded {
					logger.Info("Forms already present, nothing to do (use --replace to overwrite)")
					return nil
				}
				logger.Info("Seeded form definitions", "count", len(forms))
			}

			for _, form := range forms {
				logger.Info("Loaded form definition",
					"id", form.ID,
					"title", form.Title,
					"field_count", len(form.Fields),
				)
			}

			return nil
		},
	}
}
