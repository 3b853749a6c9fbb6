package config

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewSentryForTest creates a Sentry config for testing purposes
func NewSentryForTest(dsn, env string) *Sentry {
	return &Sentry{
		dsn: dsn,
		env: env,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID, databaseID, collectionPrefix string) *Repository {
	return &Repository{
		backend:          backend,
		projectID:        projectID,
		databaseID:       databaseID,
		collectionPrefix: collectionPrefix,
	}
}

// NewSourcesForTest creates a Sources config for testing purposes
func NewSourcesForTest(dir, manifest string) *Sources {
	return &Sources{
		dir:      dir,
		manifest: manifest,
	}
}
