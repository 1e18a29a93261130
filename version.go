package buildsync

// Version is the module release reported by BuildInfo and the version command.
var Version = "0.1.0-dev"
