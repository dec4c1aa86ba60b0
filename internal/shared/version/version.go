package version

// Version is overridden at build time with
// -ldflags "-X verylcheck/internal/shared/version.Version=...".
var Version = "0.1.0"
