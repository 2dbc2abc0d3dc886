package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeRecon(); err != nil {
		return err
	}
	c.normalizeIndex()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRecon() error {
	c.Recon.Binary = strings.TrimSpace(c.Recon.Binary)
	if c.Recon.Binary == "" {
		c.Recon.Binary = defaultReconBinary
	}
	c.Recon.ToolEnv = strings.TrimSpace(c.Recon.ToolEnv)
	c.Recon.SubjectsDirEnv = strings.TrimSpace(c.Recon.SubjectsDirEnv)
	if value, ok := os.LookupEnv("POOLRECON_CONCURRENCY"); ok && strings.TrimSpace(value) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("POOLRECON_CONCURRENCY: %w", err)
		}
		c.Recon.Concurrency = n
	}
	if strings.TrimSpace(c.Recon.ToolLogDir) != "" {
		var err error
		if c.Recon.ToolLogDir, err = expandPath(strings.TrimSpace(c.Recon.ToolLogDir)); err != nil {
			return fmt.Errorf("recon.tool_log_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeIndex() {
	c.Index.IdentifierColumn = strings.TrimSpace(c.Index.IdentifierColumn)
	c.Index.SubjectColumn = strings.TrimSpace(c.Index.SubjectColumn)
	c.Index.DescriptionColumn = strings.TrimSpace(c.Index.DescriptionColumn)
	c.Index.DateColumn = strings.TrimSpace(c.Index.DateColumn)
	c.Index.DropColumns = trimList(c.Index.DropColumns)
	c.Index.DuplicateMarkers = trimList(c.Index.DuplicateMarkers)

	ext := strings.TrimSpace(c.Index.ImageExtension)
	if ext == "" {
		ext = defaultImageExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Index.ImageExtension = ext
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
