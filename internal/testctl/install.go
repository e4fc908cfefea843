package testctl

import "context"

func installGo(ctx context.Context) error {
	info("Downloading Go modules...")
	return runCmdVerbose(ctx, "go", "mod", "download")
}

func installSwag(ctx context.Context) error {
	info("Installing swag CLI...")
	return runCmdVerbose(ctx, "go", "install", "github.com/swaggo/swag/cmd/swag@v1.16.6")
}

// genDocs regenerates docs/ from the handler annotations.
func genDocs(ctx context.Context) error {
	info("Generating swagger docs...")
	return runCmdVerbose(ctx, "swag", "init", "-g", "cmd/shufflerd/docs.go", "-o", "docs", "--parseDependency", "--parseInternal")
}
