package version

// Build metadata, overridable at link time with -ldflags.
var (
	AppName     = "interactkit"
	AppFullName = "InteractKit Demo Bot"
	Version     = "dev"
)
