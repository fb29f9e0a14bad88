package config

// Log holds the logging flags, embedded under the "log." prefix.
type Log struct {
	Level        string `help:"Log level: trace, debug, info, warn, error" default:"info" enum:"trace,debug,info,warn,error" env:"RSBRIDGE_LOG_LEVEL"`
	File         string `help:"Additional log file path" type:"path" env:"RSBRIDGE_LOG_FILE"`
	Format       string `help:"Console log format; auto picks text on a terminal and json otherwise" default:"auto" enum:"auto,text,json" env:"RSBRIDGE_LOG_FORMAT"`
	ArtifactFile string `help:"Dump intermediate artifacts (reference document, header) to this file" type:"path" env:"RSBRIDGE_LOG_ARTIFACT_FILE"`
}
