package version

// Version holds the application version. It is overridden at build time via:
//   -ldflags "-X github.com/arencloud/chione/internal/version.Version=vX.Y.Z"
var Version = "dev"
