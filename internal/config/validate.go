package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRecon(); err != nil {
		return err
	}
	if err := c.validateIndex(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRecon() error {
	if c.Recon.Binary == "" {
		return errors.New("recon.binary must be set")
	}
	if c.Recon.Concurrency <= 0 {
		return errors.New("recon.concurrency must be positive")
	}
	if c.Recon.SubjectsDirEnv == "" {
		return errors.New("recon.subjects_dir_env must be set")
	}
	return nil
}

func (c *Config) validateIndex() error {
	required := map[string]string{
		"index.identifier_column":  c.Index.IdentifierColumn,
		"index.subject_column":     c.Index.SubjectColumn,
		"index.description_column": c.Index.DescriptionColumn,
		"index.date_column":        c.Index.DateColumn,
	}
	for _, key := range []string{"index.identifier_column", "index.subject_column", "index.description_column", "index.date_column"} {
		if required[key] == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	for _, dropped := range c.Index.DropColumns {
		for key, column := range required {
			if dropped == column {
				return fmt.Errorf("index.drop_columns cannot include %s (%q)", key, column)
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
