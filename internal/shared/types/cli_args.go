package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile  string
	FixedMonth  bool
	Period      string
	BaseURL     string
	DownloadDir string
	MaxLookback int
	Quiet       bool
	ReportName  string
	ReportType  []string
	Dir         string
}
