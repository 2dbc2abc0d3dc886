package config

const (
	defaultLogDir            = "~/.local/share/poolrecon/logs"
	defaultReconBinary       = "recon-all"
	defaultReconConcurrency  = 12
	defaultToolEnv           = "FREESURFER"
	defaultSubjectsDirEnv    = "SUBJECTS_DIR"
	defaultIdentifierColumn  = "Image Data ID"
	defaultSubjectColumn     = "Subject"
	defaultDescriptionColumn = "Description"
	defaultDateColumn        = "Acq Date"
	defaultImageExtension    = ".nii"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Recon: Recon{
			Binary:           defaultReconBinary,
			Concurrency:      defaultReconConcurrency,
			ToolEnv:          defaultToolEnv,
			SubjectsDirEnv:   defaultSubjectsDirEnv,
			ReclaimAbandoned: true,
		},
		Index: Index{
			IdentifierColumn:  defaultIdentifierColumn,
			SubjectColumn:     defaultSubjectColumn,
			DescriptionColumn: defaultDescriptionColumn,
			DateColumn:        defaultDateColumn,
			DropColumns:       []string{"Visit", "Type", "Modality", "Format", "Downloaded"},
			DuplicateMarkers:  []string{"_2"},
			ImageExtension:    defaultImageExtension,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
