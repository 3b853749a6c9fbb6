package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/formloom/formloom/pkg/cli/config"
)

func TestSentryConfigure_Disabled(t *testing.T) {
	cfg := config.NewSentryForTest("", "")
	gt.Bool(t, cfg.Enabled()).False()

	closer, err := cfg.Configure("test")
	gt.NoError(t, err).Required()
	closer()
}

func TestSentryConfigure_InvalidDSN(t *testing.T) {
	cfg := config.NewSentryForTest("not-a-dsn", "test")
	gt.Bool(t, cfg.Enabled()).True()

	_, err := cfg.Configure("test")
	gt.Value(t, err).NotNil()
}
