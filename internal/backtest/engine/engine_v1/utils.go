package engine

import (
	"fmt"
	"path/filepath"
	"strings"
)

// getResultFolder returns <results>/<config name>[/<start>_<end>]/<data file name>.
func getResultFolder(configName string, dataPath string, b *BacktestEngineV1) string {
	configFolder := filepath.Join(b.config.ResultsFolder, sanitizeFolderName(configName))

	// Create data folder with time range if specified
	var dataFolder string

	if b.config.StartTime.IsSome() || b.config.EndTime.IsSome() {
		startTimeStr := "all"
		endTimeStr := "all"

		if b.config.StartTime.IsSome() {
			startTimeStr = b.config.StartTime.Unwrap().Format("20060102")
		}

		if b.config.EndTime.IsSome() {
			endTimeStr = b.config.EndTime.Unwrap().Format("20060102")
		}

		timeRange := fmt.Sprintf("%s_%s", startTimeStr, endTimeStr)
		dataFolder = filepath.Join(configFolder, timeRange)
	} else {
		dataFolder = configFolder
	}

	// Add data file name as the final folder
	dataFileName := strings.TrimSuffix(filepath.Base(dataPath), filepath.Ext(dataPath))

	return filepath.Join(dataFolder, dataFileName)
}

// sanitizeFolderName replaces path separators and spaces so a strategy entry name is a single folder.
func sanitizeFolderName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_", "..", "_")

	return replacer.Replace(strings.TrimSpace(name))
}

// hasGlobMeta reports whether pattern contains any of the characters filepath.Match treats specially.
func hasGlobMeta(pattern string) bool {
	return strings.ContainsAny(pattern, `*?[\`)
}
