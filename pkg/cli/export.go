package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/formloom/formloom/pkg/cli/config"
	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/formloom/formloom/pkg/service/sink"
	"github.com/formloom/formloom/pkg/usecase"
	"github.com/formloom/formloom/pkg/utils/logging"
	"github.com/formloom/formloom/pkg/utils/safe"
)

func cmdExport() *cli.Command {
	var formID string
	var outDir string
	var gcsBucket string
	var gcsPrefix string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "form",
			Usage:       "ID of the form whose entries are exported",
			Required:    true,
			Destination: &formID,
		},
		&cli.StringFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "Local directory for exported entry files",
			Destination: &outDir,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "GCS bucket for exported entry files",
			Sources:     cli.EnvVars("FORMLOOM_GCS_BUCKET"),
			Destination: &gcsBucket,
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix within the GCS bucket",
			Sources:     cli.EnvVars("FORMLOOM_GCS_PREFIX"),
			Destination: &gcsPrefix,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "export",
		Aliases: []string{"e"},
		Usage:   "Export a form's entries as JSON records",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			s, err := buildSink(ctx, outDir, gcsBucket, gcsPrefix)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, s)

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

			results, err := uc.Entry.ExportEntries(ctx, model.FormID(formID), s)
			if err != nil {
				return goerr.Wrap(err, "export failed", goerr.V("form_id", formID))
			}

			for _, res := range results {
				if res.Failed() {
					color.Red("failed  %s  (%v)", res.EntryID, res.Err)
				} else {
					color.Green("ok      %s", res.EntryID)
				}
			}

			if failed := usecase.CountFailed(results); failed > 0 {
				color.Red("%d of %d entries failed", failed, len(results))
				return goerr.New("export completed with failures",
					goerr.V("form_id", formID),
					goerr.V("failed", failed),
					goerr.V("total", len(results)))
			}

			color.Green("exported %d entries", len(results))
			return nil
		},
	}
}

// buildSink selects the export destination. Exactly one of the local
// directory and the GCS bucket must be set.
func buildSink(ctx context.Context, outDir, gcsBucket, gcsPrefix string) (sink.Sink, error) {
	switch {
	case outDir != "" && gcsBucket != "":
		return nil, goerr.New("only one of --out and --gcs-bucket can be set")

	case outDir != "":
		return sink.NewDir(outDir), nil

	case gcsBucket != "":
		var opts []sink.GCSOption
		if gcsPrefix != "" {
			opts = append(opts, sink.WithObjectPrefix(gcsPrefix))
		}
		s, err := sink.NewGCS(ctx, gcsBucket, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open GCS sink", goerr.V("bucket", gcsBucket))
		}
		return s, nil

	default:
		return nil, goerr.New("an export destination is required (--out or --gcs-bucket)")
	}
}
