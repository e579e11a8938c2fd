package cli

// Version is the rsmith release version. Builds override it with
// -ldflags "-X github.com/reportsmith/reportsmith/pkg/cli.Version=...".
var Version = "dev"
