package domain

const (
	// ConfigFileName is the name of the optional project configuration file.
	ConfigFileName = "corejs-upgrade.yaml"

	// EnvFileName is the dotenv file loaded from the working directory.
	EnvFileName = ".env"

	// EnvResolveFrom overrides the resolveFrom option when set.
	EnvResolveFrom = "COREJS_UPGRADE_RESOLVE_FROM"

	// ConfigVersion is the only supported config file version.
	ConfigVersion = "1"

	// DefaultOutdir receives build output when neither outdir nor outfile is set.
	DefaultOutdir = "dist"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)
