package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/formloom/formloom/pkg/cli/config"
)

func TestRepositoryConfigure_Memory(t *testing.T) {
	cfg := config.NewRepositoryForTest("memory", "", "", "")

	repo, err := cfg.Configure(context.Background())
	gt.NoError(t, err).Required()
	gt.Value(t, repo).NotNil()
	gt.NoError(t, repo.Close())
}

func TestRepositoryConfigure_FirestoreWithoutProjectID(t *testing.T) {
	cfg := config.NewRepositoryForTest("firestore", "", "", "")

	_, err := cfg.Configure(context.Background())
	gt.Value(t, err).NotNil()
}

func TestRepositoryConfigure_UnknownBackend(t *testing.T) {
	cfg := config.NewRepositoryForTest("cassandra", "", "", "")

	_, err := cfg.Configure(context.Background())
	gt.Value(t, err).NotNil()
}
