package version

import "runtime/debug"

// ApplyBuildInfo exposes apply for testing.
func ApplyBuildInfo(mainVersion string, settings []debug.BuildSetting) { apply(mainVersion, settings) }
