package testctl

// Indirection layer to allow stubbing in tests

var (
	fnInstallGo   = installGo
	fnInstallSwag = installSwag
	fnGenDocs     = genDocs

	fnRunGoTests       = runGoTests
	fnRunBlackboxTests = runBlackboxTests
	fnRunE2ETests      = runE2ETests
	fnRunGeminiLive    = runGeminiLive
	fnRunSwaggerBuild  = runSwaggerBuild

	fnRunSmoke    = runSmoke
	fnEnsurePorts = ensurePorts
)
